/*
Package internship tracks internship sessions and the hours students earn in them.

PURPOSE:
  A session is a dated, topic-labelled block of hours attended by a set of
  students. Students are referenced by canonical identifier only; nothing
  is stored on the student side.

PARTICIPANTS:
  ParticipantSet is a real set (no duplicates, no order) with explicit
  membership operations. It serializes as a sorted JSON array.

SEE ALSO:
  - hours.go: Per-student hour and topic aggregation
*/
package internship

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/warp/tuition-engine/generic"
)

// =============================================================================
// PARTICIPANT SET
// =============================================================================

type ParticipantSet struct {
	members map[string]struct{}
}

func NewParticipantSet(ids ...string) ParticipantSet {
	s := ParticipantSet{}
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add inserts id; blank IDs are ignored. Returns true if id was new.
func (s *ParticipantSet) Add(id string) bool {
	id = strings.TrimSpace(id)
	if id == "" {
		return false
	}
	if s.members == nil {
		s.members = make(map[string]struct{})
	}
	if _, ok := s.members[id]; ok {
		return false
	}
	s.members[id] = struct{}{}
	return true
}

// Remove deletes id. Returns true if it was present.
func (s *ParticipantSet) Remove(id string) bool {
	if _, ok := s.members[id]; !ok {
		return false
	}
	delete(s.members, id)
	return true
}

// Contains is an exact match; no normalization happens here.
func (s ParticipantSet) Contains(id string) bool {
	_, ok := s.members[id]
	return ok
}

func (s ParticipantSet) Len() int { return len(s.members) }

// Slice returns members sorted ascending.
func (s ParticipantSet) Slice() []string {
	out := make([]string, 0, len(s.members))
	for id := range s.members {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (s ParticipantSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Slice())
}

func (s *ParticipantSet) UnmarshalJSON(data []byte) error {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = NewParticipantSet(ids...)
	return nil
}

// =============================================================================
// SESSION
// =============================================================================

type SessionID string

type Session struct {
	ID           SessionID
	Date         generic.TimePoint
	Topic        string
	Duration     generic.Amount // hours
	Participants ParticipantSet
	Notes        string
}

func NewSessionID() SessionID {
	return SessionID(uuid.NewString())
}

// Validate requires a date, a topic and a positive duration.
func (s Session) Validate() error {
	if s.Date.IsZero() {
		return fmt.Errorf("%w: missing date", generic.ErrInvalidSession)
	}
	if strings.TrimSpace(s.Topic) == "" {
		return fmt.Errorf("%w: missing topic", generic.ErrInvalidSession)
	}
	if !s.Duration.IsPositive() {
		return fmt.Errorf("%w: duration must be positive, got %s", generic.ErrInvalidSession, s.Duration)
	}
	return nil
}

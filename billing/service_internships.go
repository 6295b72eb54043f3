package billing

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/samber/lo"
	"github.com/warp/tuition-engine/generic"
	"github.com/warp/tuition-engine/internship"
)

func (s *Service) loadSessions(ctx context.Context) ([]internship.Session, error) {
	sessions, err := s.Store.LoadInternships(ctx)
	if err != nil {
		return nil, &generic.PersistenceError{Op: "load", Table: "internships", Err: err}
	}
	return sessions, nil
}

func (s *Service) saveSessions(ctx context.Context, sessions []internship.Session) error {
	if err := s.Store.SaveInternships(ctx, sessions); err != nil {
		return &generic.PersistenceError{Op: "save", Table: "internships", Err: err}
	}
	return nil
}

func findSession(sessions []internship.Session, id internship.SessionID) (int, error) {
	_, idx, ok := lo.FindIndexOf(sessions, func(s internship.Session) bool { return s.ID == id })
	if !ok {
		return -1, fmt.Errorf("%w: %s", generic.ErrSessionNotFound, id)
	}
	return idx, nil
}

// canonicalParticipants maps raw phone numbers to canonical student IDs.
func canonicalParticipants(raw []string) internship.ParticipantSet {
	set := internship.NewParticipantSet()
	for _, phone := range raw {
		set.Add(string(CanonicalID(phone)))
	}
	return set
}

// SessionInput is the editable content of an internship session.
// Participants may be given in any phone format.
type SessionInput struct {
	Date         generic.TimePoint
	Topic        string
	Hours        generic.Amount
	Participants []string
	Notes        string
}

func (in SessionInput) session(id internship.SessionID) internship.Session {
	hours := in.Hours
	hours.Unit = generic.UnitHours
	return internship.Session{
		ID:           id,
		Date:         in.Date,
		Topic:        strings.TrimSpace(in.Topic),
		Duration:     hours,
		Participants: canonicalParticipants(in.Participants),
		Notes:        in.Notes,
	}
}

// ListSessions returns sessions newest first.
func (s *Service) ListSessions(ctx context.Context) ([]internship.Session, error) {
	sessions, err := s.loadSessions(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].Date.After(sessions[j].Date)
	})
	return sessions, nil
}

func (s *Service) AddSession(ctx context.Context, rc RequestContext, in SessionInput) (internship.Session, error) {
	session := in.session(internship.NewSessionID())
	if err := session.Validate(); err != nil {
		return internship.Session{}, err
	}
	sessions, err := s.loadSessions(ctx)
	if err != nil {
		return internship.Session{}, err
	}
	if err := s.saveSessions(ctx, append(sessions, session)); err != nil {
		return session, err
	}
	log.Printf("[Service] %s added internship session %s (%s, %d participants)",
		rc.actor(), session.ID, session.Topic, session.Participants.Len())
	return session, nil
}

func (s *Service) UpdateSession(ctx context.Context, rc RequestContext, id internship.SessionID, in SessionInput) (internship.Session, error) {
	session := in.session(id)
	if err := session.Validate(); err != nil {
		return internship.Session{}, err
	}
	sessions, err := s.loadSessions(ctx)
	if err != nil {
		return internship.Session{}, err
	}
	idx, err := findSession(sessions, id)
	if err != nil {
		return internship.Session{}, err
	}
	sessions[idx] = session
	if err := s.saveSessions(ctx, sessions); err != nil {
		return session, err
	}
	log.Printf("[Service] %s updated internship session %s", rc.actor(), id)
	return session, nil
}

func (s *Service) DeleteSession(ctx context.Context, rc RequestContext, id internship.SessionID) error {
	sessions, err := s.loadSessions(ctx)
	if err != nil {
		return err
	}
	idx, err := findSession(sessions, id)
	if err != nil {
		return err
	}
	sessions = append(sessions[:idx], sessions[idx+1:]...)
	if err := s.saveSessions(ctx, sessions); err != nil {
		return err
	}
	log.Printf("[Service] %s deleted internship session %s", rc.actor(), id)
	return nil
}

// StudentHours is the per-student internship summary.
type StudentHours struct {
	StudentID StudentID
	Hours     generic.Amount
	Topics    []string
}

// StudentHours totals internship hours for any phone format of the student's
// number. The student does not have to be registered.
func (s *Service) StudentHours(ctx context.Context, phone string) (StudentHours, error) {
	id := CanonicalID(phone)
	sessions, err := s.loadSessions(ctx)
	if err != nil {
		return StudentHours{}, err
	}
	return StudentHours{
		StudentID: id,
		Hours:     internship.HoursFor(sessions, string(id)),
		Topics:    internship.TopicsFor(sessions, string(id)),
	}, nil
}

// Participation ranks every session participant by hours.
func (s *Service) Participation(ctx context.Context) ([]internship.StudentParticipation, error) {
	sessions, err := s.loadSessions(ctx)
	if err != nil {
		return nil, err
	}
	return internship.Participation(sessions), nil
}

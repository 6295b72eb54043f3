package internship

import (
	"sort"

	"github.com/samber/lo"
	"github.com/warp/tuition-engine/generic"
)

// HoursFor sums the duration of every session the student took part in.
// The identifier must already be canonical. No match yields zero hours.
func HoursFor(sessions []Session, studentID string) generic.Amount {
	durations := lo.FilterMap(sessions, func(s Session, _ int) (generic.Amount, bool) {
		return s.Duration, s.Participants.Contains(studentID)
	})
	return generic.Sum(generic.UnitHours, durations...)
}

// TopicsFor lists the distinct topics of the student's sessions in the
// order they first appear.
func TopicsFor(sessions []Session, studentID string) []string {
	topics := lo.FilterMap(sessions, func(s Session, _ int) (string, bool) {
		return s.Topic, s.Participants.Contains(studentID)
	})
	return lo.Uniq(topics)
}

// StudentParticipation is one row of the participation report.
type StudentParticipation struct {
	StudentID string
	Sessions  int
	Hours     generic.Amount
}

// Participation ranks every participant by total hours, most first;
// ties fall back to identifier order.
func Participation(sessions []Session) []StudentParticipation {
	rows := make(map[string]*StudentParticipation)
	for _, s := range sessions {
		for _, id := range s.Participants.Slice() {
			row, ok := rows[id]
			if !ok {
				row = &StudentParticipation{StudentID: id, Hours: generic.Hours(0)}
				rows[id] = row
			}
			row.Sessions++
			row.Hours = row.Hours.Add(s.Duration)
		}
	}

	out := make([]StudentParticipation, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Hours.Equal(out[j].Hours) {
			return out[i].Hours.GreaterThan(out[j].Hours)
		}
		return out[i].StudentID < out[j].StudentID
	})
	return out
}

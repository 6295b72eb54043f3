package internship_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/tuition-engine/generic"
	"github.com/warp/tuition-engine/internship"
)

func session(topic string, hours float64, ids ...string) internship.Session {
	return internship.Session{
		ID:           internship.NewSessionID(),
		Date:         generic.NewTimePoint(2024, time.March, 1),
		Topic:        topic,
		Duration:     generic.Hours(hours),
		Participants: internship.NewParticipantSet(ids...),
	}
}

func TestHoursFor_SumsSessionsTheStudentAttended(t *testing.T) {
	// GIVEN: 1.5h and 2.5h sessions with the student, 3h without
	sessions := []internship.Session{
		session("Patient intake", 1.5, "11987654321", "11900000000"),
		session("Clinical records", 2.5, "11987654321"),
		session("Triage", 3, "11900000000"),
	}

	// WHEN / THEN
	assert.True(t, internship.HoursFor(sessions, "11987654321").Equal(generic.Hours(4)))
	assert.True(t, internship.HoursFor(sessions, "11900000000").Equal(generic.Hours(4.5)))
}

func TestHoursFor_NoMatchIsZero(t *testing.T) {
	sessions := []internship.Session{session("Triage", 2, "11900000000")}

	hours := internship.HoursFor(sessions, "11987654321")

	assert.True(t, hours.IsZero())
	assert.Equal(t, generic.UnitHours, hours.Unit)
	assert.True(t, internship.HoursFor(nil, "11987654321").IsZero())
}

func TestHoursFor_ExactMatchOnly(t *testing.T) {
	sessions := []internship.Session{session("Triage", 2, "11987654321")}

	assert.True(t, internship.HoursFor(sessions, "(11) 98765-4321").IsZero())
}

func TestTopicsFor_DistinctInFirstSeenOrder(t *testing.T) {
	sessions := []internship.Session{
		session("Patient intake", 1, "11987654321"),
		session("Triage", 1, "11900000000"),
		session("Clinical records", 1, "11987654321"),
		session("Patient intake", 1, "11987654321"),
	}

	assert.Equal(t, []string{"Patient intake", "Clinical records"}, internship.TopicsFor(sessions, "11987654321"))
	assert.Empty(t, internship.TopicsFor(sessions, "31999999999"))
}

func TestParticipation_RanksByHoursThenID(t *testing.T) {
	sessions := []internship.Session{
		session("A", 2, "3", "1"),
		session("B", 1, "2", "1"),
		session("C", 1, "2"),
	}

	rows := internship.Participation(sessions)

	require.Len(t, rows, 3)
	assert.Equal(t, "1", rows[0].StudentID)
	assert.Equal(t, 2, rows[0].Sessions)
	assert.True(t, rows[0].Hours.Equal(generic.Hours(3)))
	// 2 and 3 tie on hours; ID order breaks it
	assert.Equal(t, "2", rows[1].StudentID)
	assert.Equal(t, "3", rows[2].StudentID)
}

func TestParticipantSet_Membership(t *testing.T) {
	set := internship.NewParticipantSet("b", "a", "b", " ")

	assert.Equal(t, 2, set.Len())
	assert.Equal(t, []string{"a", "b"}, set.Slice())
	assert.False(t, set.Add("a"))
	assert.True(t, set.Add("c"))
	assert.True(t, set.Remove("a"))
	assert.False(t, set.Remove("a"))
	assert.False(t, set.Contains("a"))
	assert.True(t, set.Contains("c"))

	var empty internship.ParticipantSet
	assert.False(t, empty.Contains("a"))
	assert.Empty(t, empty.Slice())
}

func TestParticipantSet_JSON(t *testing.T) {
	data, err := json.Marshal(internship.NewParticipantSet("31987652002", "31987652001"))
	require.NoError(t, err)
	assert.JSONEq(t, `["31987652001","31987652002"]`, string(data))

	var set internship.ParticipantSet
	require.NoError(t, json.Unmarshal([]byte(`["x","y","x"]`), &set))
	assert.Equal(t, []string{"x", "y"}, set.Slice())
}

func TestSession_Validate(t *testing.T) {
	ok := session("Triage", 1)
	assert.NoError(t, ok.Validate())

	noTopic := session("  ", 1)
	assert.ErrorIs(t, noTopic.Validate(), generic.ErrInvalidSession)

	zero := session("Triage", 0)
	assert.ErrorIs(t, zero.Validate(), generic.ErrInvalidSession)

	noDate := session("Triage", 1)
	noDate.Date = generic.TimePoint{}
	assert.ErrorIs(t, noDate.Validate(), generic.ErrInvalidSession)
}

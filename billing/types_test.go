package billing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/tuition-engine/billing"
	"github.com/warp/tuition-engine/generic"
)

func TestParseStudentID(t *testing.T) {
	for _, in := range []string{"(11) 98765-4321", "11 98765 4321", "11987654321", "+11.98765.4321"} {
		id, err := billing.ParseStudentID(in)
		require.NoError(t, err, in)
		assert.Equal(t, billing.StudentID("11987654321"), id)
	}

	id, err := billing.ParseStudentID("(11) 3456-7890")
	require.NoError(t, err)
	assert.Equal(t, "(11) 3456-7890", id.Display())

	for _, in := range []string{"", "12345", "5511987654321", "phone"} {
		_, err := billing.ParseStudentID(in)
		assert.ErrorIs(t, err, generic.ErrInvalidPhone, in)
	}
}

func TestStudentID_Display(t *testing.T) {
	assert.Equal(t, "(11) 98765-4321", billing.StudentID("11987654321").Display())
	assert.Equal(t, "123", billing.StudentID("123").Display())
}

func TestStudent_WithDefaults(t *testing.T) {
	s := billing.Student{ID: "11987654321", EnrollmentDate: date(2024, time.January, 5)}.WithDefaults()

	assert.Equal(t, billing.StudentActive, s.Status)
	assert.Equal(t, billing.DefaultPlanLength, s.Options.PlanLength)
	assert.Equal(t, billing.DefaultDueDay, s.Options.DueDay)
	assert.Equal(t, billing.DefaultCourseType, s.Options.CourseType)
	assert.Equal(t, generic.UnitCurrency, s.MonthlyFee.Unit)
}

func TestStudent_Validate(t *testing.T) {
	enrolled := date(2024, time.January, 5)

	ok := activeStudent("11987654321", enrolled, 300)
	assert.NoError(t, ok.Validate())

	negative := activeStudent("11987654321", enrolled, -1)
	assert.ErrorIs(t, negative.Validate(), generic.ErrInvalidFee)

	noDate := activeStudent("11987654321", enrolled, 300)
	noDate.Status = billing.StudentCanceled
	assert.ErrorIs(t, noDate.Validate(), generic.ErrInvalidCancellation)

	early := canceledStudent("11987654321", enrolled, date(2023, time.December, 1), 300)
	assert.ErrorIs(t, early.Validate(), generic.ErrInvalidCancellation)

	stale := activeStudent("11987654321", enrolled, 300)
	stale.CancellationDate = &enrolled
	assert.ErrorIs(t, stale.Validate(), generic.ErrInvalidCancellation)
}

func TestStudent_EnrolledBy(t *testing.T) {
	s := activeStudent("11987654321", date(2024, time.April, 30), 300)

	assert.False(t, s.EnrolledBy(ref(2024, time.March)))
	assert.True(t, s.EnrolledBy(ref(2024, time.April)))
	assert.True(t, s.EnrolledBy(ref(2025, time.January)))
}

func TestValidatePeriods_RejectsDuplicateMonth(t *testing.T) {
	periods := []billing.BillingPeriod{
		period("11987654321", ref(2024, time.April), date(2024, time.April, 10), 300, billing.StatusPending),
		period("11987654321", ref(2024, time.April), date(2024, time.April, 20), 300, billing.StatusPending),
	}

	err := billing.ValidatePeriods(periods)

	var dup *generic.DuplicatePeriodError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, ref(2024, time.April), dup.Ref)
	assert.ErrorIs(t, err, generic.ErrDuplicatePeriod)
}

func TestParsePeriodStatus(t *testing.T) {
	st, err := billing.ParsePeriodStatus(" Paid ")
	require.NoError(t, err)
	assert.Equal(t, billing.StatusPaid, st)

	_, err = billing.ParsePeriodStatus("late")
	assert.ErrorIs(t, err, generic.ErrInvalidStatus)
}

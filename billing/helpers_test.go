package billing_test

import (
	"time"

	"github.com/warp/tuition-engine/billing"
	"github.com/warp/tuition-engine/generic"
)

func date(y int, m time.Month, d int) generic.TimePoint {
	return generic.NewTimePoint(y, m, d)
}

func ref(y int, m time.Month) generic.MonthRef {
	return generic.NewMonthRef(y, m)
}

func activeStudent(id string, enrolled generic.TimePoint, fee float64) billing.Student {
	return billing.Student{
		ID:             billing.StudentID(id),
		Name:           "Student " + id,
		EnrollmentDate: enrolled,
		MonthlyFee:     generic.Money(fee),
		Status:         billing.StudentActive,
	}.WithDefaults()
}

func canceledStudent(id string, enrolled, canceledOn generic.TimePoint, fee float64) billing.Student {
	s := activeStudent(id, enrolled, fee)
	s.Status = billing.StudentCanceled
	s.CancellationDate = &canceledOn
	return s
}

func period(studentID string, r generic.MonthRef, due generic.TimePoint, amount float64, status billing.PeriodStatus) billing.BillingPeriod {
	p := billing.BillingPeriod{
		ID:        billing.NewPeriodID(),
		StudentID: billing.StudentID(studentID),
		Ref:       r,
		DueDate:   due,
		Amount:    generic.Money(amount),
		Status:    status,
	}
	if status == billing.StatusPaid {
		paid := due
		p.PaymentDate = &paid
	}
	return p
}

func refs(periods []billing.BillingPeriod) []generic.MonthRef {
	out := make([]generic.MonthRef, len(periods))
	for i, p := range periods {
		out[i] = p.Ref
	}
	return out
}

/*
schedule.go - Installment schedule generation

PURPOSE:
  Builds the ordered list of billing periods for a student's plan. Called
  once at enrollment and again when a plan is regenerated.

ALGORITHM:
  1. End date defaults to enrollment + N calendar months
  2. Enumerate months in [enrollment, end] (generic.MonthSequence)
  3. Drop the enrollment month if enrollment day > due-day
  4. Keep at most N months
  5. One pending period per month, due on the due-day

SKIP RULE:
  Enrolling on Jan 15 with due-day 10 means January's installment was due
  before the student existed. That month is omitted; the plan still gets N
  installments because the cap is applied after the skip, so the schedule
  simply ends one month later.

  Enrolled 2024-03-20, due-day 10, 12 installments:
    Apr/2024 (due 2024-04-10) ... Mar/2025 (due 2025-03-10)

DEGRADATION:
  A zero enrollment date (unparseable upstream) produces an empty schedule.
  A due-day outside 1-28 silently becomes 10. Neither is an error.

SEE ALSO:
  - generic/period.go: MonthSequence
  - batch.go: One-month batch generation for all active students
*/
package billing

import (
	"github.com/google/uuid"
	"github.com/warp/tuition-engine/generic"
)

// SchedulePlan holds the inputs of one schedule generation.
type SchedulePlan struct {
	StudentID      StudentID
	MonthlyFee     generic.Amount
	EnrollmentDate generic.TimePoint
	PlanLength     int                // < 1 means DefaultPlanLength
	EndDate        *generic.TimePoint // nil means enrollment + PlanLength months
	DueDay         int                // outside 1-28 means DefaultDueDay
}

// PlanFor derives the schedule plan from a student record.
func PlanFor(s Student) SchedulePlan {
	return SchedulePlan{
		StudentID:      s.ID,
		MonthlyFee:     s.MonthlyFee,
		EnrollmentDate: s.EnrollmentDate,
		PlanLength:     s.PlanLength(),
		DueDay:         s.DueDay(),
	}
}

// GenerateSchedule returns the plan's billing periods in chronological order.
func GenerateSchedule(plan SchedulePlan) []BillingPeriod {
	if plan.EnrollmentDate.IsZero() {
		return nil
	}

	n := NormalizePlanLength(plan.PlanLength)
	dueDay := ClampDueDay(plan.DueDay)

	end := plan.EnrollmentDate.AddMonths(n)
	if plan.EndDate != nil && !plan.EndDate.IsZero() {
		end = *plan.EndDate
	}

	enrollMonth := plan.EnrollmentDate.MonthRef()
	lateEnrollment := plan.EnrollmentDate.Day() > dueDay

	fee := plan.MonthlyFee
	if fee.Unit == "" {
		fee.Unit = generic.UnitCurrency
	}

	periods := make([]BillingPeriod, 0, n)
	for ref := range generic.NewMonthSequence(plan.EnrollmentDate, end).All() {
		if len(periods) == n {
			break
		}
		if ref == enrollMonth && lateEnrollment {
			continue
		}
		periods = append(periods, BillingPeriod{
			ID:        NewPeriodID(),
			StudentID: plan.StudentID,
			Ref:       ref,
			DueDate:   ref.Day(dueDay),
			Amount:    fee,
			Status:    StatusPending,
			Note:      InstallmentNote(ref),
		})
	}
	return periods
}

// NewPeriodID returns a fresh random period identifier.
func NewPeriodID() PeriodID {
	return PeriodID(uuid.NewString())
}

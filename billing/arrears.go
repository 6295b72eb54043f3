/*
arrears.go - Delinquency detection

PURPOSE:
  Finds active students with at least one installment past due and reports
  how late the oldest one is.

RULES:
  - Canceled students are never evaluated.
  - A period counts when its stored status is not paid or canceled and its
    due date is strictly before today. A period due today is not late.
  - The oldest qualifying period (earliest due date, first in input order on
    ties) sets LastDueDate and DaysOverdue = today - due date.
  - A student with no periods at all is treated as owing 30 days after
    enrollment: overdue once more than 30 days have passed, with
    DaysOverdue = (today - enrollment) - 30.

  The past-due test runs inline on DueDate. A stored "overdue" status is
  not consulted, so a stale cache cannot make a student look current.

OUTPUT:
  One ArrearsRecord per delinquent student, most days overdue first,
  student ID ascending on ties.

SEE ALSO:
  - status.go: Classify uses the same strict before-today test
*/
package billing

import (
	"sort"

	"github.com/samber/lo"
	"github.com/warp/tuition-engine/generic"
)

// ImplicitGraceDays is how long a student without any schedule may go
// before being flagged.
const ImplicitGraceDays = 30

// ArrearsRecord describes one delinquent student.
type ArrearsRecord struct {
	Student     Student
	LastDueDate generic.TimePoint
	DaysOverdue int

	// Oldest is the period that set LastDueDate; nil for the no-schedule fallback.
	Oldest *BillingPeriod

	// OverdueCount and Outstanding cover every qualifying period, not only the oldest.
	OverdueCount int
	Outstanding  generic.Amount
}

// DetectArrears evaluates every active student against all periods.
func DetectArrears(students []Student, periods []BillingPeriod, today generic.TimePoint) []ArrearsRecord {
	byStudent := lo.GroupBy(periods, func(p BillingPeriod) StudentID { return p.StudentID })

	var records []ArrearsRecord
	for _, s := range students {
		if rec, ok := evaluate(s, byStudent[s.ID], today); ok {
			records = append(records, rec)
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		if records[i].DaysOverdue != records[j].DaysOverdue {
			return records[i].DaysOverdue > records[j].DaysOverdue
		}
		return records[i].Student.ID < records[j].Student.ID
	})
	return records
}

// EvaluateStudent checks one student. periods may contain other students'
// periods; only the student's own are considered.
func EvaluateStudent(s Student, periods []BillingPeriod, today generic.TimePoint) (ArrearsRecord, bool) {
	own := lo.Filter(periods, func(p BillingPeriod, _ int) bool { return p.StudentID == s.ID })
	return evaluate(s, own, today)
}

func evaluate(s Student, own []BillingPeriod, today generic.TimePoint) (ArrearsRecord, bool) {
	if !s.IsActive() {
		return ArrearsRecord{}, false
	}

	if len(own) == 0 {
		return implicitArrears(s, today)
	}

	var (
		oldest      *BillingPeriod
		count       int
		outstanding = generic.Money(0)
	)
	for i := range own {
		p := own[i]
		if IsSettled(p) || !p.DueDate.Before(today) {
			continue
		}
		count++
		outstanding = outstanding.Add(p.Amount)
		if oldest == nil || p.DueDate.Before(oldest.DueDate) {
			oldest = &own[i]
		}
	}
	if oldest == nil {
		return ArrearsRecord{}, false
	}

	found := *oldest
	return ArrearsRecord{
		Student:      s,
		LastDueDate:  found.DueDate,
		DaysOverdue:  generic.DaysBetween(found.DueDate, today),
		Oldest:       &found,
		OverdueCount: count,
		Outstanding:  outstanding,
	}, true
}

func implicitArrears(s Student, today generic.TimePoint) (ArrearsRecord, bool) {
	if s.EnrollmentDate.IsZero() {
		return ArrearsRecord{}, false
	}
	elapsed := generic.DaysBetween(s.EnrollmentDate, today)
	if elapsed <= ImplicitGraceDays {
		return ArrearsRecord{}, false
	}
	return ArrearsRecord{
		Student:      s,
		LastDueDate:  s.EnrollmentDate.AddDays(ImplicitGraceDays),
		DaysOverdue:  elapsed - ImplicitGraceDays,
		OverdueCount: 1,
		Outstanding:  s.MonthlyFee,
	}, true
}

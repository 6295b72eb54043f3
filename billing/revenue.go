/*
revenue.go - Monthly revenue projection

PURPOSE:
  Answers "how much is still to be collected for month M/Y?".

ALGORITHM:
  Expected  = sum of MonthlyFee over active students enrolled on or before
              the last day of M/Y (enrollment month <= M/Y)
  Collected = sum of Amount over paid periods referencing M/Y that belong
              to those same students, one period per student
  Remaining = Expected - Collected      <- the published figure

  Collected is scoped to the students in Expected so a month with nobody
  enrolled projects 0 even if stray payments reference it (canceled
  students, imports). A student with two paid periods for the same month
  is counted once; the first one in input order wins.

  Remaining is not clamped. A negative value means more was collected
  than the fees imply and is reported as-is.

SEE ALSO:
  - summary.go: Totals per status over a due-date window
*/
package billing

import (
	"github.com/warp/tuition-engine/generic"
)

// MaxRevenueMonths bounds a range projection.
const MaxRevenueMonths = 36

// RevenueProjection is the result for one month.
type RevenueProjection struct {
	Ref       generic.MonthRef
	Students  int
	Expected  generic.Amount
	Collected generic.Amount
	Remaining generic.Amount
}

// ProjectRevenue computes the projection for ref.
func ProjectRevenue(students []Student, periods []BillingPeriod, ref generic.MonthRef) RevenueProjection {
	var fees []generic.Amount
	counted := make(map[StudentID]bool)
	for _, s := range students {
		if !s.IsActive() || !s.EnrolledBy(ref) {
			continue
		}
		if counted[s.ID] {
			continue
		}
		counted[s.ID] = true
		fees = append(fees, s.MonthlyFee)
	}

	var payments []generic.Amount
	paidFor := make(map[StudentID]bool)
	for _, p := range periods {
		if p.Status != StatusPaid || p.Ref != ref {
			continue
		}
		if !counted[p.StudentID] || paidFor[p.StudentID] {
			continue
		}
		paidFor[p.StudentID] = true
		payments = append(payments, p.Amount)
	}

	expected := generic.Sum(generic.UnitCurrency, fees...)
	collected := generic.Sum(generic.UnitCurrency, payments...)

	return RevenueProjection{
		Ref:       ref,
		Students:  len(counted),
		Expected:  expected,
		Collected: collected,
		Remaining: expected.Sub(collected),
	}
}

// ProjectRevenueRange projects every month from 'from' to 'to' inclusive.
func ProjectRevenueRange(students []Student, periods []BillingPeriod, from, to generic.MonthRef) []RevenueProjection {
	var out []RevenueProjection
	for ref := range generic.NewMonthSequence(from.Start(), to.Start()).All() {
		out = append(out, ProjectRevenue(students, periods, ref))
	}
	return out
}

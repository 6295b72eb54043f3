package billing

import (
	"sort"

	"github.com/warp/tuition-engine/generic"
)

// StatusTotals counts and sums periods per read-time status.
type StatusTotals struct {
	Count  map[PeriodStatus]int
	Amount map[PeriodStatus]generic.Amount
	Total  generic.Amount
}

func newStatusTotals() StatusTotals {
	t := StatusTotals{
		Count:  make(map[PeriodStatus]int, len(AllStatuses)),
		Amount: make(map[PeriodStatus]generic.Amount, len(AllStatuses)),
		Total:  generic.Money(0),
	}
	for _, st := range AllStatuses {
		t.Amount[st] = generic.Money(0)
	}
	return t
}

func (t *StatusTotals) add(status PeriodStatus, amount generic.Amount) {
	t.Count[status]++
	t.Amount[status] = t.Amount[status].Add(amount)
	t.Total = t.Total.Add(amount)
}

// MonthTotals is one row of the monthly breakdown, keyed by due-date month.
type MonthTotals struct {
	Ref generic.MonthRef
	StatusTotals
}

// Summary is the financial report over a due-date window.
type Summary struct {
	Window generic.Period
	StatusTotals
	Months []MonthTotals
}

// Summarize totals periods whose due date falls within window, classified
// as of today. Months are ordered chronologically.
func Summarize(periods []BillingPeriod, window generic.Period, today generic.TimePoint) Summary {
	sum := Summary{Window: window, StatusTotals: newStatusTotals()}
	months := make(map[generic.MonthRef]*MonthTotals)

	for _, p := range periods {
		if !window.Contains(p.DueDate) {
			continue
		}
		status := Classify(p, today)
		sum.add(status, p.Amount)

		ref := p.DueDate.MonthRef()
		mt, ok := months[ref]
		if !ok {
			mt = &MonthTotals{Ref: ref, StatusTotals: newStatusTotals()}
			months[ref] = mt
		}
		mt.add(status, p.Amount)
	}

	for _, mt := range months {
		sum.Months = append(sum.Months, *mt)
	}
	sort.Slice(sum.Months, func(i, j int) bool {
		return sum.Months[i].Ref.Before(sum.Months[j].Ref)
	})
	return sum
}

package billing

import "github.com/warp/tuition-engine/generic"

// Classify maps a period to its lifecycle state as of today.
//
// Paid and canceled are final. Anything else is overdue when its due date is
// strictly before today and pending otherwise, so a stored "overdue" is only
// a cache and is recomputed here rather than trusted.
func Classify(p BillingPeriod, today generic.TimePoint) PeriodStatus {
	switch p.Status {
	case StatusPaid, StatusCanceled:
		return p.Status
	}
	if p.DueDate.Before(today) {
		return StatusOverdue
	}
	return StatusPending
}

// IsSettled reports whether the period no longer expects money: paid or canceled.
func IsSettled(p BillingPeriod) bool {
	return p.Status == StatusPaid || p.Status == StatusCanceled
}

// ClassifyAll returns copies of periods with Status replaced by the
// read-time classification. The input is not modified.
func ClassifyAll(periods []BillingPeriod, today generic.TimePoint) []BillingPeriod {
	out := make([]BillingPeriod, len(periods))
	for i, p := range periods {
		p.Status = Classify(p, today)
		out[i] = p
	}
	return out
}

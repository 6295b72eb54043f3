package billing

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/warp/tuition-engine/generic"
)

// BatchRequest is the operator-invoked "generate this month for everyone" action.
type BatchRequest struct {
	Ref           generic.MonthRef
	DueDay        int          // outside 1-28 means DefaultDueDay
	InitialStatus PeriodStatus // empty means pending
	Override      bool         // replace an existing period for the month
}

type BatchResult struct {
	Created  int
	Replaced int
	Skipped  int
}

// GenerateBatch creates one period per active student for req.Ref and
// returns the full, updated period table.
//
// A student who already has a period for the month is skipped unless
// Override is set, in which case that period is rewritten in place and keeps
// its ID. A paid initial status stamps today as the payment date.
func GenerateBatch(students []Student, periods []BillingPeriod, req BatchRequest, today generic.TimePoint) ([]BillingPeriod, BatchResult, error) {
	var result BatchResult
	if !req.Ref.Valid() {
		return periods, result, fmt.Errorf("%w: month %d", generic.ErrInvalidDate, req.Ref.Month)
	}

	status := req.InitialStatus
	if status == "" {
		status = StatusPending
	}
	if _, err := ParsePeriodStatus(string(status)); err != nil {
		return periods, result, err
	}
	dueDay := ClampDueDay(req.DueDay)

	out := make([]BillingPeriod, len(periods))
	copy(out, periods)

	existing := make(map[StudentID]int)
	for i, p := range out {
		if p.Ref != req.Ref {
			continue
		}
		if _, ok := existing[p.StudentID]; !ok {
			existing[p.StudentID] = i
		}
	}

	active := lo.Filter(students, func(s Student, _ int) bool { return s.IsActive() })
	for _, s := range active {
		period := BillingPeriod{
			StudentID: s.ID,
			Ref:       req.Ref,
			DueDate:   req.Ref.Day(dueDay),
			Amount:    s.MonthlyFee,
			Note:      InstallmentNote(req.Ref),
		}
		period.SetStatus(status, today)

		idx, found := existing[s.ID]
		switch {
		case found && !req.Override:
			result.Skipped++
		case found:
			period.ID = out[idx].ID
			out[idx] = period
			result.Replaced++
		default:
			period.ID = NewPeriodID()
			out = append(out, period)
			existing[s.ID] = len(out) - 1
			result.Created++
		}
	}
	return out, result, nil
}

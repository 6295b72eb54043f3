package billing

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/samber/lo"
	"github.com/warp/tuition-engine/generic"
)

// =============================================================================
// PERIOD QUERIES
// =============================================================================

// PeriodFilter narrows ListPeriods. Zero fields match everything. Status is
// matched against the read-time classification.
type PeriodFilter struct {
	StudentID StudentID
	Status    PeriodStatus
	Ref       *generic.MonthRef
}

// ListPeriods returns classified periods ordered by due date, then student.
func (s *Service) ListPeriods(ctx context.Context, rc RequestContext, filter PeriodFilter) ([]BillingPeriod, error) {
	periods, err := s.loadPayments(ctx)
	if err != nil {
		return nil, err
	}
	out := lo.Filter(ClassifyAll(periods, rc.Date()), func(p BillingPeriod, _ int) bool {
		if filter.StudentID != "" && p.StudentID != filter.StudentID {
			return false
		}
		if filter.Status != "" && p.Status != filter.Status {
			return false
		}
		if filter.Ref != nil && p.Ref != *filter.Ref {
			return false
		}
		return true
	})
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].DueDate.Equal(out[j].DueDate) {
			return out[i].DueDate.Before(out[j].DueDate)
		}
		return out[i].StudentID < out[j].StudentID
	})
	return out, nil
}

// StudentPeriods returns one student's schedule in month order, classified.
func (s *Service) StudentPeriods(ctx context.Context, rc RequestContext, id StudentID) ([]BillingPeriod, error) {
	if _, err := s.GetStudent(ctx, id); err != nil {
		return nil, err
	}
	periods, err := s.loadPayments(ctx)
	if err != nil {
		return nil, err
	}
	own := lo.Filter(periods, func(p BillingPeriod, _ int) bool { return p.StudentID == id })
	sort.SliceStable(own, func(i, j int) bool { return own[i].Ref.Before(own[j].Ref) })
	return ClassifyAll(own, rc.Date()), nil
}

func findPeriod(periods []BillingPeriod, id PeriodID) (int, error) {
	_, idx, ok := lo.FindIndexOf(periods, func(p BillingPeriod) bool { return p.ID == id })
	if !ok {
		return -1, fmt.Errorf("%w: %s", generic.ErrPeriodNotFound, id)
	}
	return idx, nil
}

// =============================================================================
// PERIOD MUTATIONS
// =============================================================================

// NewPeriod is a manually entered installment.
type NewPeriod struct {
	StudentID   StudentID
	Ref         generic.MonthRef
	DueDate     generic.TimePoint // zero means the student's due day in Ref
	Amount      *generic.Amount   // nil means the student's monthly fee
	Status      PeriodStatus      // empty means pending
	PaymentDate generic.TimePoint // used when Status is paid; zero means today
	Note        string
}

// AddPeriod inserts one period for a registered student. A second period
// for the same month is rejected with a DuplicatePeriodError.
func (s *Service) AddPeriod(ctx context.Context, rc RequestContext, in NewPeriod) (BillingPeriod, error) {
	if !in.Ref.Valid() {
		return BillingPeriod{}, fmt.Errorf("%w: month %d", generic.ErrInvalidDate, in.Ref.Month)
	}
	status := in.Status
	if status == "" {
		status = StatusPending
	}
	if _, err := ParsePeriodStatus(string(status)); err != nil {
		return BillingPeriod{}, err
	}

	student, err := s.GetStudent(ctx, in.StudentID)
	if err != nil {
		return BillingPeriod{}, err
	}
	periods, err := s.loadPayments(ctx)
	if err != nil {
		return BillingPeriod{}, err
	}

	p := BillingPeriod{
		ID:        NewPeriodID(),
		StudentID: student.ID,
		Ref:       in.Ref,
		DueDate:   in.DueDate,
		Amount:    student.MonthlyFee,
		Note:      in.Note,
	}
	if p.DueDate.IsZero() {
		p.DueDate = in.Ref.Day(student.DueDay())
	}
	if in.Amount != nil {
		p.Amount = *in.Amount
	}
	if p.Amount.IsNegative() {
		return BillingPeriod{}, fmt.Errorf("%w: amount %s", generic.ErrInvalidFee, p.Amount)
	}
	if strings.TrimSpace(p.Note) == "" {
		p.Note = InstallmentNote(in.Ref)
	}
	paidOn := in.PaymentDate
	if paidOn.IsZero() {
		paidOn = rc.Date()
	}
	p.SetStatus(status, paidOn)

	if err := s.savePayments(ctx, append(periods, p)); err != nil {
		return p, err
	}
	log.Printf("[Service] %s added period %s for %s (%s)", rc.actor(), p.Ref, p.StudentID, p.Status)
	return p, nil
}

// Payment records money received for a period.
type Payment struct {
	Date   generic.TimePoint // zero means today
	Amount *generic.Amount   // nil keeps the billed amount
	Note   string
}

// RecordPayment marks a period paid. Recording against an already paid
// period updates its payment date and amount.
func (s *Service) RecordPayment(ctx context.Context, rc RequestContext, id PeriodID, pay Payment) (BillingPeriod, error) {
	periods, err := s.loadPayments(ctx)
	if err != nil {
		return BillingPeriod{}, err
	}
	idx, err := findPeriod(periods, id)
	if err != nil {
		return BillingPeriod{}, err
	}

	p := periods[idx]
	if p.Status == StatusCanceled {
		return BillingPeriod{}, fmt.Errorf("%w: period %s is canceled", generic.ErrInvalidStatus, id)
	}
	if pay.Amount != nil {
		if pay.Amount.IsNegative() {
			return BillingPeriod{}, fmt.Errorf("%w: amount %s", generic.ErrInvalidFee, *pay.Amount)
		}
		p.Amount = *pay.Amount
	}
	date := pay.Date
	if date.IsZero() {
		date = rc.Date()
	}
	p.MarkPaid(date)
	if pay.Note != "" {
		p.Note = appendNote(p.Note, pay.Note)
	}

	periods[idx] = p
	if err := s.savePayments(ctx, periods); err != nil {
		return p, err
	}
	log.Printf("[Service] %s recorded payment of %s for %s %s", rc.actor(), p.Amount, p.StudentID, p.Ref)
	return p, nil
}

// PeriodUpdate carries administrative edits; nil means unchanged.
type PeriodUpdate struct {
	Status      *PeriodStatus
	PaymentDate *generic.TimePoint
	DueDate     *generic.TimePoint
	Amount      *generic.Amount
	Note        *string
}

// UpdatePeriod applies an administrative edit. Setting status to paid
// stamps PaymentDate (or today); any other status clears it. Storing
// "overdue" is accepted but reads still classify from the due date.
func (s *Service) UpdatePeriod(ctx context.Context, rc RequestContext, id PeriodID, upd PeriodUpdate) (BillingPeriod, error) {
	periods, err := s.loadPayments(ctx)
	if err != nil {
		return BillingPeriod{}, err
	}
	idx, err := findPeriod(periods, id)
	if err != nil {
		return BillingPeriod{}, err
	}

	p := periods[idx]
	if upd.Amount != nil {
		if upd.Amount.IsNegative() {
			return BillingPeriod{}, fmt.Errorf("%w: amount %s", generic.ErrInvalidFee, *upd.Amount)
		}
		p.Amount = *upd.Amount
	}
	if upd.DueDate != nil {
		if upd.DueDate.IsZero() {
			return BillingPeriod{}, fmt.Errorf("%w: empty due date", generic.ErrInvalidDate)
		}
		p.DueDate = *upd.DueDate
	}
	if upd.Note != nil {
		p.Note = *upd.Note
	}

	status := p.Status
	if upd.Status != nil {
		status, err = ParsePeriodStatus(string(*upd.Status))
		if err != nil {
			return BillingPeriod{}, err
		}
	}
	paidOn := rc.Date()
	switch {
	case upd.PaymentDate != nil && !upd.PaymentDate.IsZero():
		paidOn = *upd.PaymentDate
	case p.PaymentDate != nil:
		paidOn = *p.PaymentDate
	}
	p.SetStatus(status, paidOn)

	periods[idx] = p
	if err := s.savePayments(ctx, periods); err != nil {
		return p, err
	}
	log.Printf("[Service] %s updated period %s (%s)", rc.actor(), id, p.Status)
	return p, nil
}

// GenerateBatch creates the month's installment for every active student.
func (s *Service) GenerateBatch(ctx context.Context, rc RequestContext, req BatchRequest) (BatchResult, error) {
	students, err := s.loadStudents(ctx)
	if err != nil {
		return BatchResult{}, err
	}
	periods, err := s.loadPayments(ctx)
	if err != nil {
		return BatchResult{}, err
	}

	updated, result, err := GenerateBatch(students, periods, req, rc.Date())
	if err != nil {
		return result, err
	}
	if err := s.savePayments(ctx, updated); err != nil {
		return result, err
	}
	log.Printf("[Service] %s generated batch %s: created=%d replaced=%d skipped=%d",
		rc.actor(), req.Ref, result.Created, result.Replaced, result.Skipped)
	return result, nil
}

// =============================================================================
// REPORTS
// =============================================================================

// Arrears lists delinquent students as of the request date.
func (s *Service) Arrears(ctx context.Context, rc RequestContext) ([]ArrearsRecord, error) {
	students, err := s.loadStudents(ctx)
	if err != nil {
		return nil, err
	}
	periods, err := s.loadPayments(ctx)
	if err != nil {
		return nil, err
	}
	return DetectArrears(students, periods, rc.Date()), nil
}

// StudentArrears evaluates a single student. The bool is false when the
// student is not overdue.
func (s *Service) StudentArrears(ctx context.Context, rc RequestContext, id StudentID) (ArrearsRecord, bool, error) {
	students, err := s.loadStudents(ctx)
	if err != nil {
		return ArrearsRecord{}, false, err
	}
	idx, err := findStudent(students, id)
	if err != nil {
		return ArrearsRecord{}, false, err
	}
	periods, err := s.loadPayments(ctx)
	if err != nil {
		return ArrearsRecord{}, false, err
	}
	rec, late := EvaluateStudent(students[idx], periods, rc.Date())
	return rec, late, nil
}

// ProjectRevenue projects collections for one month.
func (s *Service) ProjectRevenue(ctx context.Context, ref generic.MonthRef) (RevenueProjection, error) {
	if !ref.Valid() {
		return RevenueProjection{}, fmt.Errorf("%w: month %d", generic.ErrInvalidDate, ref.Month)
	}
	students, err := s.loadStudents(ctx)
	if err != nil {
		return RevenueProjection{}, err
	}
	periods, err := s.loadPayments(ctx)
	if err != nil {
		return RevenueProjection{}, err
	}
	return ProjectRevenue(students, periods, ref), nil
}

// ProjectRevenueRange projects every month from 'from' to 'to' inclusive.
func (s *Service) ProjectRevenueRange(ctx context.Context, from, to generic.MonthRef) ([]RevenueProjection, error) {
	if !from.Valid() || !to.Valid() {
		return nil, fmt.Errorf("%w: range %s..%s", generic.ErrInvalidDate, from, to)
	}
	if to.Before(from) {
		return nil, fmt.Errorf("%w: range ends %s before it starts %s", generic.ErrInvalidDate, to, from)
	}
	if to.Index()-from.Index() >= MaxRevenueMonths {
		return nil, fmt.Errorf("%w: range %s..%s exceeds %d months", generic.ErrInvalidDate, from, to, MaxRevenueMonths)
	}
	students, err := s.loadStudents(ctx)
	if err != nil {
		return nil, err
	}
	periods, err := s.loadPayments(ctx)
	if err != nil {
		return nil, err
	}
	return ProjectRevenueRange(students, periods, from, to), nil
}

// Summarize totals periods due within window, classified as of the request date.
func (s *Service) Summarize(ctx context.Context, rc RequestContext, window generic.Period) (Summary, error) {
	if !window.Valid() {
		return Summary{}, fmt.Errorf("%w: window %s", generic.ErrInvalidDate, window)
	}
	periods, err := s.loadPayments(ctx)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(periods, window, rc.Date()), nil
}

/*
service.go - Request-per-interaction orchestration over a Store

PURPOSE:
  Each operator action (register a student, record a payment, generate a
  monthly batch, open a report) is one Service call: load the tables it
  needs, run the pure engine functions, save the tables it changed.

REQUEST CONTEXT:
  Who is acting and what "today" is are passed explicitly in a
  RequestContext on every call. Nothing is remembered between calls, so
  there is no "current user" or "record being edited" state to go stale.

PERSISTENCE FAILURES:
  A failed save returns an error wrapping generic.ErrPersistence together
  with the computed result. The result is correct; only durable state is
  stale until the caller retries.

SEE ALSO:
  - service_payments.go: Billing period operations and reports
  - service_internships.go: Internship session operations
*/
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
// REQUEST CONTEXT
// =============================================================================

// RequestContext carries per-request facts into every operation.
type RequestContext struct {
	Actor string
	Today generic.TimePoint // zero means the wall-clock date
}

// Date is the request's "today".
func (rc RequestContext) Date() generic.TimePoint {
	if rc.Today.IsZero() {
		return generic.Today()
	}
	return rc.Today
}

func (rc RequestContext) actor() string {
	if rc.Actor == "" {
		return "system"
	}
	return rc.Actor
}

// =============================================================================
// SERVICE
// =============================================================================

type Service struct {
	Store Store
}

func NewService(store Store) *Service {
	return &Service{Store: store}
}

func (s *Service) loadStudents(ctx context.Context) ([]Student, error) {
	students, err := s.Store.LoadStudents(ctx)
	if err != nil {
		return nil, &generic.PersistenceError{Op: "load", Table: "students", Err: err}
	}
	for i := range students {
		students[i] = students[i].WithDefaults()
	}
	return students, nil
}

func (s *Service) saveStudents(ctx context.Context, students []Student) error {
	if err := s.Store.SaveStudents(ctx, students); err != nil {
		return &generic.PersistenceError{Op: "save", Table: "students", Err: err}
	}
	return nil
}

func (s *Service) loadPayments(ctx context.Context) ([]BillingPeriod, error) {
	periods, err := s.Store.LoadPayments(ctx)
	if err != nil {
		return nil, &generic.PersistenceError{Op: "load", Table: "payments", Err: err}
	}
	return periods, nil
}

func (s *Service) savePayments(ctx context.Context, periods []BillingPeriod) error {
	if err := ValidatePeriods(periods); err != nil {
		return err
	}
	if err := s.Store.SavePayments(ctx, periods); err != nil {
		return &generic.PersistenceError{Op: "save", Table: "payments", Err: err}
	}
	return nil
}

func findStudent(students []Student, id StudentID) (int, error) {
	_, idx, ok := lo.FindIndexOf(students, func(st Student) bool { return st.ID == id })
	if !ok {
		return -1, fmt.Errorf("%w: %s", generic.ErrStudentNotFound, id)
	}
	return idx, nil
}

// =============================================================================
// STUDENT OPERATIONS
// =============================================================================

// NewStudent is the registration input. Phone is canonicalized into the ID.
type NewStudent struct {
	Phone          string
	Name           string
	Email          string
	Notes          string
	EnrollmentDate generic.TimePoint
	MonthlyFee     generic.Amount
	Options        StudentOptions
}

// Registration is what RegisterStudent computed, returned even when saving failed.
type Registration struct {
	Student Student
	Periods []BillingPeriod
}

// RegisterStudent creates an active student and generates their schedule.
func (s *Service) RegisterStudent(ctx context.Context, rc RequestContext, in NewStudent) (*Registration, error) {
	id, err := ParseStudentID(in.Phone)
	if err != nil {
		return nil, err
	}
	if in.EnrollmentDate.IsZero() {
		return nil, fmt.Errorf("%w: missing enrollment date", generic.ErrInvalidDate)
	}

	student := Student{
		ID:             id,
		Name:           strings.TrimSpace(in.Name),
		Email:          strings.TrimSpace(in.Email),
		Notes:          in.Notes,
		EnrollmentDate: in.EnrollmentDate,
		MonthlyFee:     in.MonthlyFee,
		Status:         StudentActive,
		Options:        in.Options,
	}.WithDefaults()
	if err := student.Validate(); err != nil {
		return nil, err
	}

	students, err := s.loadStudents(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := findStudent(students, id); err == nil {
		return nil, fmt.Errorf("%w: %s", generic.ErrDuplicateStudent, id.Display())
	}
	periods, err := s.loadPayments(ctx)
	if err != nil {
		return nil, err
	}

	generated := withoutTakenMonths(GenerateSchedule(PlanFor(student)), periods, id)
	reg := &Registration{Student: student, Periods: generated}

	if err := s.saveStudents(ctx, append(students, student)); err != nil {
		return reg, err
	}
	if err := s.savePayments(ctx, append(periods, generated...)); err != nil {
		return reg, err
	}

	log.Printf("[Service] %s registered student %s with %d installments", rc.actor(), id, len(generated))
	return reg, nil
}

// withoutTakenMonths drops generated periods whose month the student already has.
func withoutTakenMonths(generated, existing []BillingPeriod, id StudentID) []BillingPeriod {
	taken := make(map[generic.MonthRef]bool)
	for _, p := range existing {
		if p.StudentID == id {
			taken[p.Ref] = true
		}
	}
	return lo.Filter(generated, func(p BillingPeriod, _ int) bool { return !taken[p.Ref] })
}

// StudentFilter narrows ListStudents. Empty Status means all.
type StudentFilter struct {
	Status StudentStatus
}

// ListStudents returns students sorted by name, then ID.
func (s *Service) ListStudents(ctx context.Context, filter StudentFilter) ([]Student, error) {
	students, err := s.loadStudents(ctx)
	if err != nil {
		return nil, err
	}
	if filter.Status != "" {
		students = lo.Filter(students, func(st Student, _ int) bool { return st.Status == filter.Status })
	}
	sort.SliceStable(students, func(i, j int) bool {
		if students[i].Name != students[j].Name {
			return students[i].Name < students[j].Name
		}
		return students[i].ID < students[j].ID
	})
	return students, nil
}

func (s *Service) GetStudent(ctx context.Context, id StudentID) (Student, error) {
	students, err := s.loadStudents(ctx)
	if err != nil {
		return Student{}, err
	}
	idx, err := findStudent(students, id)
	if err != nil {
		return Student{}, err
	}
	return students[idx], nil
}

// StudentUpdate carries the editable fields; nil means unchanged.
type StudentUpdate struct {
	Name       *string
	Email      *string
	Notes      *string
	MonthlyFee *generic.Amount
	Options    *StudentOptions
}

// UpdateStudent edits contact and plan fields. Existing periods keep their
// amounts; a fee change applies from the next regeneration or batch.
func (s *Service) UpdateStudent(ctx context.Context, rc RequestContext, id StudentID, upd StudentUpdate) (Student, error) {
	students, err := s.loadStudents(ctx)
	if err != nil {
		return Student{}, err
	}
	idx, err := findStudent(students, id)
	if err != nil {
		return Student{}, err
	}

	st := students[idx]
	if upd.Name != nil {
		st.Name = strings.TrimSpace(*upd.Name)
	}
	if upd.Email != nil {
		st.Email = strings.TrimSpace(*upd.Email)
	}
	if upd.Notes != nil {
		st.Notes = *upd.Notes
	}
	if upd.MonthlyFee != nil {
		st.MonthlyFee = *upd.MonthlyFee
	}
	if upd.Options != nil {
		st.Options = *upd.Options
	}
	st = st.WithDefaults()
	if err := st.Validate(); err != nil {
		return Student{}, err
	}

	students[idx] = st
	if err := s.saveStudents(ctx, students); err != nil {
		return st, err
	}
	log.Printf("[Service] %s updated student %s", rc.actor(), id)
	return st, nil
}

// Cancellation describes an enrollment cancellation.
type Cancellation struct {
	Date    generic.TimePoint
	FeePaid bool
	Reason  string
}

// CancelStudent moves an active student to canceled. The reason is appended
// to the student's notes with the cancellation date.
func (s *Service) CancelStudent(ctx context.Context, rc RequestContext, id StudentID, c Cancellation) (Student, error) {
	students, err := s.loadStudents(ctx)
	if err != nil {
		return Student{}, err
	}
	idx, err := findStudent(students, id)
	if err != nil {
		return Student{}, err
	}

	st := students[idx]
	if !st.IsActive() {
		return Student{}, fmt.Errorf("%w: student %s is already canceled", generic.ErrInvalidCancellation, id)
	}
	date := c.Date
	if date.IsZero() {
		date = rc.Date()
	}

	st.Status = StudentCanceled
	st.CancellationDate = &date
	st.CancellationFeePaid = c.FeePaid
	st.Notes = appendNote(st.Notes, fmt.Sprintf("CANCELLATION (%s):\n%s", date.Time.Format("02/01/2006"), c.Reason))
	if err := st.Validate(); err != nil {
		return Student{}, err
	}

	students[idx] = st
	if err := s.saveStudents(ctx, students); err != nil {
		return st, err
	}
	log.Printf("[Service] %s canceled student %s on %s", rc.actor(), id, date)
	return st, nil
}

// ReactivateStudent reverses a cancellation.
func (s *Service) ReactivateStudent(ctx context.Context, rc RequestContext, id StudentID) (Student, error) {
	students, err := s.loadStudents(ctx)
	if err != nil {
		return Student{}, err
	}
	idx, err := findStudent(students, id)
	if err != nil {
		return Student{}, err
	}

	st := students[idx]
	if st.IsActive() {
		return Student{}, fmt.Errorf("%w: student %s is not canceled", generic.ErrInvalidCancellation, id)
	}
	st.Status = StudentActive
	st.CancellationDate = nil
	st.CancellationFeePaid = false

	students[idx] = st
	if err := s.saveStudents(ctx, students); err != nil {
		return st, err
	}
	log.Printf("[Service] %s reactivated student %s", rc.actor(), id)
	return st, nil
}

// DeleteStudent removes the student and every billing period they own.
// Internship sessions keep their participant IDs.
func (s *Service) DeleteStudent(ctx context.Context, rc RequestContext, id StudentID) error {
	students, err := s.loadStudents(ctx)
	if err != nil {
		return err
	}
	idx, err := findStudent(students, id)
	if err != nil {
		return err
	}
	periods, err := s.loadPayments(ctx)
	if err != nil {
		return err
	}

	students = append(students[:idx], students[idx+1:]...)
	periods = lo.Reject(periods, func(p BillingPeriod, _ int) bool { return p.StudentID == id })

	if err := s.saveStudents(ctx, students); err != nil {
		return err
	}
	if err := s.savePayments(ctx, periods); err != nil {
		return err
	}
	log.Printf("[Service] %s deleted student %s", rc.actor(), id)
	return nil
}

// RegenerateSchedule rebuilds a student's unpaid installments from their
// current plan. Paid and canceled periods are kept and their months are not
// generated again. end overrides the plan's computed end date when set.
func (s *Service) RegenerateSchedule(ctx context.Context, rc RequestContext, id StudentID, end *generic.TimePoint) ([]BillingPeriod, error) {
	students, err := s.loadStudents(ctx)
	if err != nil {
		return nil, err
	}
	idx, err := findStudent(students, id)
	if err != nil {
		return nil, err
	}
	periods, err := s.loadPayments(ctx)
	if err != nil {
		return nil, err
	}

	kept := lo.Reject(periods, func(p BillingPeriod, _ int) bool {
		return p.StudentID == id && !IsSettled(p)
	})

	plan := PlanFor(students[idx])
	plan.EndDate = end
	generated := withoutTakenMonths(GenerateSchedule(plan), kept, id)

	if err := s.savePayments(ctx, append(kept, generated...)); err != nil {
		return generated, err
	}
	log.Printf("[Service] %s regenerated %d installments for %s", rc.actor(), len(generated), id)
	return generated, nil
}

func appendNote(existing, note string) string {
	if strings.TrimSpace(existing) == "" {
		return note
	}
	return existing + "\n\n" + note
}

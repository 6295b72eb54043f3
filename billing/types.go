/*
Package billing implements the tuition billing-schedule and arrears engine.

PURPOSE:
  Generates each student's installment schedule, classifies installments
  into lifecycle states, finds delinquent students and projects what is
  still to be collected for a month. Everything here is a pure function of
  in-memory records; Service wires those functions to a Store.

KEY CONCEPTS IN THIS FILE (types.go):
  - StudentID: Canonical (digits-only) phone number, the student's key
  - Student: Enrollment record with fee, plan length and due-day
  - BillingPeriod: One installment for one (month, year)
  - PeriodStatus: pending, paid, overdue, canceled

OPTIONAL FIELDS:
  Older records may not carry CPF, course type, plan length or due-day.
  They are grouped in StudentOptions and resolved through WithDefaults(),
  never by probing for field presence at read time.

SEE ALSO:
  - schedule.go: Schedule generation
  - status.go: Read-time status classification
  - arrears.go: Delinquency detection
  - revenue.go: Monthly revenue projection
*/
package billing

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/warp/tuition-engine/generic"
)

// =============================================================================
// DEFAULTS
// =============================================================================

const (
	// DefaultPlanLength is the installment count when none is recorded.
	DefaultPlanLength = 12

	// DefaultDueDay is used whenever a due-day is missing or outside 1-28.
	DefaultDueDay = 10

	// MaxDueDay keeps due dates valid in every month, February included.
	MaxDueDay = 28

	// DefaultCourseType applies to legacy records without a course type.
	DefaultCourseType = "regular"
)

// ClampDueDay maps out-of-range due-days to DefaultDueDay.
func ClampDueDay(day int) int {
	if day < 1 || day > MaxDueDay {
		return DefaultDueDay
	}
	return day
}

// NormalizePlanLength maps non-positive plan lengths to DefaultPlanLength.
func NormalizePlanLength(n int) int {
	if n < 1 {
		return DefaultPlanLength
	}
	return n
}

// =============================================================================
// STUDENT ID - Canonical phone number
// =============================================================================

type StudentID string

// CanonicalID strips everything but digits. Lookups anywhere in the engine
// compare canonical IDs by exact match, so callers canonicalize first.
func CanonicalID(phone string) StudentID {
	var b strings.Builder
	for _, r := range phone {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return StudentID(b.String())
}

// ParseStudentID canonicalizes and validates a phone number: area code plus
// an 8 digit landline or 9 digit mobile number.
func ParseStudentID(phone string) (StudentID, error) {
	id := CanonicalID(phone)
	if n := len(id); n != 10 && n != 11 {
		return "", fmt.Errorf("%w: %q", generic.ErrInvalidPhone, phone)
	}
	return id, nil
}

// Display renders "(11) 98765-4321" or "(11) 3456-7890"; anything else is
// returned as stored.
func (id StudentID) Display() string {
	s := string(id)
	switch len(s) {
	case 11:
		return fmt.Sprintf("(%s) %s-%s", s[:2], s[2:7], s[7:])
	case 10:
		return fmt.Sprintf("(%s) %s-%s", s[:2], s[2:6], s[6:])
	default:
		return s
	}
}

// =============================================================================
// STUDENT
// =============================================================================

type StudentStatus string

const (
	StudentActive   StudentStatus = "active"
	StudentCanceled StudentStatus = "canceled"
)

func (s StudentStatus) Valid() bool {
	return s == StudentActive || s == StudentCanceled
}

// StudentOptions holds fields that legacy records may lack. Zero values
// mean "not recorded".
type StudentOptions struct {
	CPF        string
	CourseType string
	PlanLength int
	DueDay     int
}

type Student struct {
	ID             StudentID
	Name           string
	Email          string
	Notes          string
	EnrollmentDate generic.TimePoint
	MonthlyFee     generic.Amount
	Status         StudentStatus

	// Set iff Status == StudentCanceled.
	CancellationDate    *generic.TimePoint
	CancellationFeePaid bool

	Options StudentOptions
}

// WithDefaults returns a copy with every optional field resolved.
func (s Student) WithDefaults() Student {
	s.Options.PlanLength = NormalizePlanLength(s.Options.PlanLength)
	s.Options.DueDay = ClampDueDay(s.Options.DueDay)
	if s.Options.CourseType == "" {
		s.Options.CourseType = DefaultCourseType
	}
	if s.Status == "" {
		s.Status = StudentActive
	}
	if s.MonthlyFee.Unit == "" {
		s.MonthlyFee.Unit = generic.UnitCurrency
	}
	return s
}

func (s Student) IsActive() bool { return s.Status == StudentActive }

// PlanLength is the resolved installment count.
func (s Student) PlanLength() int { return NormalizePlanLength(s.Options.PlanLength) }

// DueDay is the resolved due day-of-month.
func (s Student) DueDay() int { return ClampDueDay(s.Options.DueDay) }

// EnrolledBy reports whether enrollment happened on or before the last day of ref.
func (s Student) EnrolledBy(ref generic.MonthRef) bool {
	return !s.EnrollmentDate.MonthRef().After(ref)
}

// Validate checks the lifecycle invariant between status and cancellation date.
func (s Student) Validate() error {
	if !s.Status.Valid() {
		return fmt.Errorf("%w: student status %q", generic.ErrInvalidStatus, s.Status)
	}
	if s.MonthlyFee.IsNegative() {
		return fmt.Errorf("%w: negative monthly fee for %s", generic.ErrInvalidFee, s.ID)
	}
	switch s.Status {
	case StudentCanceled:
		if s.CancellationDate == nil {
			return fmt.Errorf("%w: canceled student %s has no cancellation date", generic.ErrInvalidCancellation, s.ID)
		}
		if s.CancellationDate.Before(s.EnrollmentDate) {
			return fmt.Errorf("%w: cancellation %s precedes enrollment %s", generic.ErrInvalidCancellation, s.CancellationDate, s.EnrollmentDate)
		}
	case StudentActive:
		if s.CancellationDate != nil {
			return fmt.Errorf("%w: active student %s has a cancellation date", generic.ErrInvalidCancellation, s.ID)
		}
	}
	return nil
}

// =============================================================================
// BILLING PERIOD
// =============================================================================

type PeriodStatus string

const (
	StatusPending  PeriodStatus = "pending"
	StatusPaid     PeriodStatus = "paid"
	StatusOverdue  PeriodStatus = "overdue"
	StatusCanceled PeriodStatus = "canceled"
)

// AllStatuses lists statuses in report order.
var AllStatuses = []PeriodStatus{StatusPaid, StatusPending, StatusOverdue, StatusCanceled}

func ParsePeriodStatus(s string) (PeriodStatus, error) {
	st := PeriodStatus(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case StatusPending, StatusPaid, StatusOverdue, StatusCanceled:
		return st, nil
	}
	return "", fmt.Errorf("%w: period status %q", generic.ErrInvalidStatus, s)
}

type PeriodID string

type BillingPeriod struct {
	ID        PeriodID
	StudentID StudentID
	Ref       generic.MonthRef
	DueDate   generic.TimePoint
	Amount    generic.Amount

	// Set iff Status == StatusPaid.
	PaymentDate *generic.TimePoint

	// Stored status. Overdue is derived at read time; see Classify.
	Status PeriodStatus
	Note   string
}

// InstallmentNote is the human-readable label for generated periods.
func InstallmentNote(ref generic.MonthRef) string {
	return "Installment for " + ref.Label()
}

// MarkPaid sets the payment date and status.
func (p *BillingPeriod) MarkPaid(on generic.TimePoint) {
	paid := on
	p.PaymentDate = &paid
	p.Status = StatusPaid
}

// SetStatus applies an administrative status change, keeping the payment
// date consistent with the paid flag.
func (p *BillingPeriod) SetStatus(status PeriodStatus, paymentDate generic.TimePoint) {
	if status == StatusPaid {
		p.MarkPaid(paymentDate)
		return
	}
	p.Status = status
	p.PaymentDate = nil
}

// ValidatePeriods enforces (student, month, year) uniqueness.
func ValidatePeriods(periods []BillingPeriod) error {
	type key struct {
		student StudentID
		ref     generic.MonthRef
	}
	seen := make(map[key]bool, len(periods))
	for _, p := range periods {
		k := key{p.StudentID, p.Ref}
		if seen[k] {
			return &generic.DuplicatePeriodError{StudentID: string(p.StudentID), Ref: p.Ref}
		}
		seen[k] = true
	}
	return nil
}

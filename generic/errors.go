/*
errors.go - Centralized error types for the tuition engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Domain packages wrap these errors with additional context.

ERROR CATEGORIES:
  1. Parse errors - Unparseable dates/phones (usually degraded, not surfaced)
  2. Client errors - Business rule violations on explicit user actions
  3. Not-found errors - Referenced record missing
  4. Persistence errors - Store write/read failures

DEGRADATION:
  The calculation core never returns these for malformed input. Schedule
  generation yields an empty schedule, the detector falls back to the
  enrollment date, hours sum to zero. Errors only cross the boundary for
  explicit actions (register, record payment, save).

USAGE:
  if errors.Is(err, generic.ErrPersistence) {
      // computed result is still valid, durable state is stale: retry save
  }

SEE ALSO:
  - billing/service.go: Wraps store failures in ErrPersistence
  - api/handlers.go: Maps errors to HTTP status codes
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidDate is returned when a date string cannot be parsed.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidPhone is returned when a phone number has no valid canonical form.
	ErrInvalidPhone = errors.New("invalid phone number")

	// ErrStudentNotFound is returned when a referenced student doesn't exist.
	ErrStudentNotFound = errors.New("student not found")

	// ErrPeriodNotFound is returned when a referenced billing period doesn't exist.
	ErrPeriodNotFound = errors.New("billing period not found")

	// ErrSessionNotFound is returned when a referenced internship session doesn't exist.
	ErrSessionNotFound = errors.New("internship session not found")

	// ErrDuplicateStudent is returned when registering an identifier that is taken.
	ErrDuplicateStudent = errors.New("student already exists")

	// ErrDuplicatePeriod is returned when a student would get two periods
	// for the same (month, year).
	ErrDuplicatePeriod = errors.New("duplicate billing period")

	// ErrInvalidCancellation is returned for cancellations that break the
	// student lifecycle (already canceled, date before enrollment).
	ErrInvalidCancellation = errors.New("invalid cancellation")

	// ErrInvalidFee is returned for negative fees or amounts.
	ErrInvalidFee = errors.New("invalid fee")

	// ErrInvalidStatus is returned for unknown status values.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrInvalidSession is returned for malformed internship sessions.
	ErrInvalidSession = errors.New("invalid internship session")

	// ErrPersistence is returned when the store could not load or save.
	// In-memory results computed before the failure remain valid.
	ErrPersistence = errors.New("persistence failure")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// DuplicatePeriodError names the student and month that collided.
type DuplicatePeriodError struct {
	StudentID string
	Ref       MonthRef
}

func (e *DuplicatePeriodError) Error() string {
	return fmt.Sprintf("duplicate billing period: %s for %s", e.Ref, e.StudentID)
}

func (e *DuplicatePeriodError) Unwrap() error {
	return ErrDuplicatePeriod
}

// PersistenceError records which table failed to load or save.
type PersistenceError struct {
	Op    string // "load" or "save"
	Table string
	Err   error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Table, e.Err)
}

func (e *PersistenceError) Unwrap() []error {
	return []error{ErrPersistence, e.Err}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsSaveFailure reports whether err is a failed write. The operation's
// result was computed but not stored.
func IsSaveFailure(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe) && pe.Op == "save"
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidPhone) ||
		errors.Is(err, ErrDuplicateStudent) ||
		errors.Is(err, ErrDuplicatePeriod) ||
		errors.Is(err, ErrInvalidCancellation) ||
		errors.Is(err, ErrInvalidStatus) ||
		errors.Is(err, ErrInvalidFee) ||
		errors.Is(err, ErrInvalidSession)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrStudentNotFound) ||
		errors.Is(err, ErrPeriodNotFound) ||
		errors.Is(err, ErrSessionNotFound)
}

// IsConflict returns true for uniqueness violations.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateStudent) ||
		errors.Is(err, ErrDuplicatePeriod)
}

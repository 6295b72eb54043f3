/*
store.go - Persistence interface for students, billing periods and sessions

PURPOSE:
  Defines the boundary between the engine and whatever holds the tables.
  The engine does not care whether that is SQLite, memory or a remote
  table service.

FULL-TABLE CONTRACT:
  Every interaction loads the whole table it needs, computes, and saves
  the whole table back:
  - LoadX(): Returns every record
  - SaveX(): Replaces every record with the given set

  There is no partial update, no locking and no conflict detection. Two
  concurrent savers race and the last one wins; callers serialize writes
  (one operator session at a time).

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite, each save in one SQL transaction
  - store/memory/memory.go: In-memory for tests and demos

SEE ALSO:
  - service.go: The only caller
*/
package billing

import (
	"context"

	"github.com/warp/tuition-engine/internship"
)

// Store loads and replaces whole tables.
type Store interface {
	LoadStudents(ctx context.Context) ([]Student, error)
	SaveStudents(ctx context.Context, students []Student) error

	LoadPayments(ctx context.Context) ([]BillingPeriod, error)
	SavePayments(ctx context.Context, periods []BillingPeriod) error

	LoadInternships(ctx context.Context) ([]internship.Session, error)
	SaveInternships(ctx context.Context, sessions []internship.Session) error
}

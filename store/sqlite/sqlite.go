/*
Package sqlite provides a SQLite-backed implementation of billing.Store.

PURPOSE:
  Holds the three tables of the tuition engine: students, payments
  (billing periods) and internships. Every Save replaces its table inside
  one SQL transaction, so a failed save leaves the previous contents intact.

KEY TABLES:
  students:    One row per canonical phone number
  payments:    Billing periods; UNIQUE(student_id, year_ref, month_ref)
  internships: Sessions; participants stored as a JSON array

OPTIONAL COLUMNS:
  Columns that older records may lack (cpf, course_type, plan_length,
  due_day, payment_date, cancellation_date) are nullable. NULL loads as
  the zero value and billing.Student.WithDefaults resolves it.

AMOUNTS:
  Stored as decimal strings, never REAL, so fees round-trip exactly.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. Cross-process writers are not
  coordinated; the last full-table save wins.

WAL MODE:
  Opened with WAL so readers do not block the single writer.

USAGE:
  store, err := sqlite.New("./data/tuition.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  svc := billing.NewService(store)

SEE ALSO:
  - billing/store.go: Interface definition
  - store/memory: In-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/warp/tuition-engine/billing"
	"github.com/warp/tuition-engine/generic"
	"github.com/warp/tuition-engine/internship"
)

var _ billing.Store = (*Store)(nil)

// Store implements billing.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// every connection to ":memory:" is a separate database
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS students (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		notes TEXT,
		enrollment_date TEXT NOT NULL,
		monthly_fee TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'active',
		cancellation_date TEXT,
		cancellation_fee_paid BOOLEAN DEFAULT FALSE,
		cpf TEXT,
		course_type TEXT,
		plan_length INTEGER,
		due_day INTEGER
	);

	CREATE INDEX IF NOT EXISTS idx_students_status
		ON students(status);

	CREATE TABLE IF NOT EXISTS payments (
		id TEXT PRIMARY KEY,
		student_id TEXT NOT NULL,
		year_ref INTEGER NOT NULL,
		month_ref INTEGER NOT NULL,
		due_date TEXT NOT NULL,
		amount TEXT NOT NULL,
		payment_date TEXT,
		status TEXT NOT NULL DEFAULT 'pending',
		note TEXT,
		UNIQUE(student_id, year_ref, month_ref)
	);

	CREATE INDEX IF NOT EXISTS idx_payments_due_date
		ON payments(due_date);

	CREATE TABLE IF NOT EXISTS internships (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL,
		topic TEXT NOT NULL,
		hours TEXT NOT NULL,
		participants_json TEXT NOT NULL DEFAULT '[]',
		notes TEXT
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// replaceTable deletes every row and calls insert inside one transaction.
func (s *Store) replaceTable(ctx context.Context, table string, insert func(tx execer) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if _, err := sqlTx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return fmt.Errorf("failed to clear %s: %w", table, err)
	}
	if err := insert(sqlTx); err != nil {
		return err
	}
	return sqlTx.Commit()
}

// =============================================================================
// STUDENTS
// =============================================================================

func (s *Store) LoadStudents(ctx context.Context) ([]billing.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, notes, enrollment_date, monthly_fee, status,
		       cancellation_date, cancellation_fee_paid, cpf, course_type, plan_length, due_day
		FROM students
		ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query students: %w", err)
	}
	defer rows.Close()

	var students []billing.Student
	for rows.Next() {
		st, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, st)
	}
	return students, rows.Err()
}

func scanStudent(rows *sql.Rows) (billing.Student, error) {
	var (
		st               billing.Student
		email, notes     sql.NullString
		enrollmentDate   string
		monthlyFee       string
		status           string
		cancellationDate sql.NullString
		feePaid          sql.NullBool
		cpf, courseType  sql.NullString
		planLength       sql.NullInt64
		dueDay           sql.NullInt64
	)

	err := rows.Scan(
		&st.ID, &st.Name, &email, &notes, &enrollmentDate, &monthlyFee, &status,
		&cancellationDate, &feePaid, &cpf, &courseType, &planLength, &dueDay,
	)
	if err != nil {
		return st, fmt.Errorf("failed to scan student: %w", err)
	}

	st.Email = email.String
	st.Notes = notes.String
	st.EnrollmentDate = generic.ParseDateOrZero(enrollmentDate)
	st.MonthlyFee = generic.ParseAmount(monthlyFee, generic.UnitCurrency)
	st.Status = billing.StudentStatus(status)
	st.CancellationDate = parseNullDate(cancellationDate)
	st.CancellationFeePaid = feePaid.Bool
	st.Options = billing.StudentOptions{
		CPF:        cpf.String,
		CourseType: courseType.String,
		PlanLength: int(planLength.Int64),
		DueDay:     int(dueDay.Int64),
	}
	return st, nil
}

func (s *Store) SaveStudents(ctx context.Context, students []billing.Student) error {
	return s.replaceTable(ctx, "students", func(tx execer) error {
		for _, st := range students {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO students (id, name, email, notes, enrollment_date, monthly_fee, status,
					cancellation_date, cancellation_fee_paid, cpf, course_type, plan_length, due_day)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			`,
				string(st.ID), st.Name, nullString(st.Email), nullString(st.Notes),
				st.EnrollmentDate.String(), st.MonthlyFee.Value.String(), string(st.Status),
				nullDate(st.CancellationDate), st.CancellationFeePaid,
				nullString(st.Options.CPF), nullString(st.Options.CourseType),
				nullInt(st.Options.PlanLength), nullInt(st.Options.DueDay),
			)
			if err != nil {
				if isUniqueConstraintError(err) {
					return fmt.Errorf("%w: %s", generic.ErrDuplicateStudent, st.ID)
				}
				return fmt.Errorf("failed to insert student %s: %w", st.ID, err)
			}
		}
		return nil
	})
}

// =============================================================================
// PAYMENTS
// =============================================================================

func (s *Store) LoadPayments(ctx context.Context) ([]billing.BillingPeriod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, student_id, year_ref, month_ref, due_date, amount, payment_date, status, note
		FROM payments
		ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	var periods []billing.BillingPeriod
	for rows.Next() {
		var (
			p           billing.BillingPeriod
			year, month int
			dueDate     string
			amount      string
			paymentDate sql.NullString
			status      string
			note        sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.StudentID, &year, &month, &dueDate, &amount, &paymentDate, &status, &note); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		p.Ref = generic.NewMonthRef(year, time.Month(month))
		p.DueDate = generic.ParseDateOrZero(dueDate)
		p.Amount = generic.ParseAmount(amount, generic.UnitCurrency)
		p.PaymentDate = parseNullDate(paymentDate)
		p.Status = billing.PeriodStatus(status)
		p.Note = note.String
		periods = append(periods, p)
	}
	return periods, rows.Err()
}

func (s *Store) SavePayments(ctx context.Context, periods []billing.BillingPeriod) error {
	return s.replaceTable(ctx, "payments", func(tx execer) error {
		for _, p := range periods {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO payments (id, student_id, year_ref, month_ref, due_date, amount, payment_date, status, note)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			`,
				string(p.ID), string(p.StudentID), p.Ref.Year, int(p.Ref.Month),
				p.DueDate.String(), p.Amount.Value.String(), nullDate(p.PaymentDate),
				string(p.Status), nullString(p.Note),
			)
			if err != nil {
				if isUniqueIndexError(err) {
					return &generic.DuplicatePeriodError{StudentID: string(p.StudentID), Ref: p.Ref}
				}
				return fmt.Errorf("failed to insert payment %s: %w", p.ID, err)
			}
		}
		return nil
	})
}

// =============================================================================
// INTERNSHIPS
// =============================================================================

func (s *Store) LoadInternships(ctx context.Context) ([]internship.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, topic, hours, participants_json, notes
		FROM internships
		ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query internships: %w", err)
	}
	defer rows.Close()

	var sessions []internship.Session
	for rows.Next() {
		var (
			sess         internship.Session
			date         string
			hours        string
			participants string
			notes        sql.NullString
		)
		if err := rows.Scan(&sess.ID, &date, &sess.Topic, &hours, &participants, &notes); err != nil {
			return nil, fmt.Errorf("failed to scan internship: %w", err)
		}
		sess.Date = generic.ParseDateOrZero(date)
		sess.Duration = generic.ParseAmount(hours, generic.UnitHours)
		if err := json.Unmarshal([]byte(participants), &sess.Participants); err != nil {
			return nil, fmt.Errorf("failed to decode participants of %s: %w", sess.ID, err)
		}
		sess.Notes = notes.String
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

func (s *Store) SaveInternships(ctx context.Context, sessions []internship.Session) error {
	return s.replaceTable(ctx, "internships", func(tx execer) error {
		for _, sess := range sessions {
			participants, err := json.Marshal(sess.Participants)
			if err != nil {
				return fmt.Errorf("failed to encode participants of %s: %w", sess.ID, err)
			}
			_, err = tx.ExecContext(ctx, `
				INSERT INTO internships (id, date, topic, hours, participants_json, notes)
				VALUES (?, ?, ?, ?, ?, ?)
			`,
				string(sess.ID), sess.Date.String(), sess.Topic, sess.Duration.Value.String(),
				string(participants), nullString(sess.Notes),
			)
			if err != nil {
				return fmt.Errorf("failed to insert internship %s: %w", sess.ID, err)
			}
		}
		return nil
	})
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"payments", "students", "internships"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// Helper functions

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullInt(n int) sql.NullInt64 {
	if n == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(n), Valid: true}
}

func nullDate(tp *generic.TimePoint) sql.NullString {
	if tp == nil || tp.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: tp.String(), Valid: true}
}

func parseNullDate(ns sql.NullString) *generic.TimePoint {
	if !ns.Valid {
		return nil
	}
	tp := generic.ParseDateOrZero(ns.String)
	if tp.IsZero() {
		return nil
	}
	return &tp
}

// isUniqueIndexError matches UNIQUE violations only. A primary-key
// collision is reported separately by SQLite.
func isUniqueIndexError(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

func isUniqueConstraintError(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// Package memory provides an in-memory billing.Store for tests and demos.
package memory

import (
	"context"
	"sync"

	"github.com/warp/tuition-engine/billing"
	"github.com/warp/tuition-engine/generic"
	"github.com/warp/tuition-engine/internship"
)

var _ billing.Store = (*Memory)(nil)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu          sync.RWMutex
	students    []billing.Student
	payments    []billing.BillingPeriod
	internships []internship.Session

	// saveErr, when set, is returned by every Save and nothing is written.
	saveErr error
}

func NewMemory() *Memory {
	return &Memory{}
}

// FailSaves makes every subsequent Save return err. Pass nil to recover.
func (m *Memory) FailSaves(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveErr = err
}

func (m *Memory) LoadStudents(_ context.Context) ([]billing.Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]billing.Student, len(m.students))
	for i, st := range m.students {
		st.CancellationDate = copyDate(st.CancellationDate)
		result[i] = st
	}
	return result, nil
}

func (m *Memory) SaveStudents(_ context.Context, students []billing.Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}

	m.students = make([]billing.Student, len(students))
	for i, st := range students {
		st.CancellationDate = copyDate(st.CancellationDate)
		m.students[i] = st
	}
	return nil
}

func (m *Memory) LoadPayments(_ context.Context) ([]billing.BillingPeriod, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]billing.BillingPeriod, len(m.payments))
	for i, p := range m.payments {
		p.PaymentDate = copyDate(p.PaymentDate)
		result[i] = p
	}
	return result, nil
}

// SavePayments enforces the same (student, month) uniqueness the SQL schema does.
func (m *Memory) SavePayments(_ context.Context, periods []billing.BillingPeriod) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	if err := billing.ValidatePeriods(periods); err != nil {
		return err
	}

	m.payments = make([]billing.BillingPeriod, len(periods))
	for i, p := range periods {
		p.PaymentDate = copyDate(p.PaymentDate)
		m.payments[i] = p
	}
	return nil
}

func (m *Memory) LoadInternships(_ context.Context) ([]internship.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copySessions(m.internships), nil
}

func (m *Memory) SaveInternships(_ context.Context, sessions []internship.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.internships = copySessions(sessions)
	return nil
}

// Reset clears all data.
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.students, m.payments, m.internships = nil, nil, nil
	return nil
}

func copyDate(tp *generic.TimePoint) *generic.TimePoint {
	if tp == nil {
		return nil
	}
	c := *tp
	return &c
}

// copySessions rebuilds participant sets so callers never share the map.
func copySessions(sessions []internship.Session) []internship.Session {
	result := make([]internship.Session, len(sessions))
	for i, s := range sessions {
		s.Participants = internship.NewParticipantSet(s.Participants.Slice()...)
		result[i] = s
	}
	return result
}

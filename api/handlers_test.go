package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/tuition-engine/store/memory"
)

func newTestRouter(t *testing.T) *chi.Mux {
	t.Helper()
	return NewRouter(NewHandler(memory.NewMemory()), RouterOptions{})
}

// call issues a request with X-Today pinned and decodes the JSON response into out.
func call(t *testing.T, router http.Handler, method, path, today string, body, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerActor, "tester")
	if today != "" {
		req.Header.Set(headerToday, today)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if out != nil && rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
	}
	return rec.Code
}

func createAna(t *testing.T, router http.Handler) RegistrationDTO {
	t.Helper()
	var reg RegistrationDTO
	code := call(t, router, http.MethodPost, "/api/students", "2024-03-20", CreateStudentRequest{
		Phone: "(11) 98765-4321", Name: "Ana Souza", EnrollmentDate: "20/03/2024", MonthlyFee: 300, DueDay: 10,
	}, &reg)
	require.Equal(t, http.StatusCreated, code)
	return reg
}

// =============================================================================
// STUDENTS
// =============================================================================

func TestCreateStudent(t *testing.T) {
	router := newTestRouter(t)

	reg := createAna(t, router)

	assert.Equal(t, "11987654321", reg.Student.ID)
	assert.Equal(t, "(11) 98765-4321", reg.Student.Phone)
	assert.Equal(t, "2024-03-20", reg.Student.EnrollmentDate)
	assert.Equal(t, 12, reg.Student.PlanLength)
	require.Len(t, reg.Periods, 12)
	assert.Equal(t, 4, reg.Periods[0].Month)
	assert.Equal(t, "2024-04-10", reg.Periods[0].DueDate)
	assert.Equal(t, 3, reg.Periods[11].Month)
	assert.Equal(t, 2025, reg.Periods[11].Year)
}

func TestCreateStudent_ValidationErrors(t *testing.T) {
	router := newTestRouter(t)

	var resp ErrorResponse
	code := call(t, router, http.MethodPost, "/api/students", "", CreateStudentRequest{
		Phone: "123", Name: "  ", EnrollmentDate: "yesterday", MonthlyFee: -1,
	}, &resp)

	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, resp.Fields, "phone")
	assert.Contains(t, resp.Fields, "name")
	assert.Contains(t, resp.Fields, "enrollment_date")
	assert.Contains(t, resp.Fields, "monthly_fee")
}

func TestCreateStudent_DuplicateIsConflict(t *testing.T) {
	router := newTestRouter(t)
	createAna(t, router)

	code := call(t, router, http.MethodPost, "/api/students", "", CreateStudentRequest{
		Phone: "11987654321", Name: "Ana again", EnrollmentDate: "2024-04-01", MonthlyFee: 300,
	}, nil)

	assert.Equal(t, http.StatusConflict, code)
}

func TestGetStudent_NotFound(t *testing.T) {
	router := newTestRouter(t)

	var resp ErrorResponse
	code := call(t, router, http.MethodGet, "/api/students/11000000000", "", nil, &resp)

	assert.Equal(t, http.StatusNotFound, code)
	assert.NotEmpty(t, resp.Details)
}

func TestCancelAndListStudents(t *testing.T) {
	router := newTestRouter(t)
	createAna(t, router)

	var st StudentDTO
	code := call(t, router, http.MethodPost, "/api/students/11987654321/cancel", "2024-05-03",
		CancelStudentRequest{Reason: "moved away"}, &st)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "canceled", st.Status)
	assert.Equal(t, "2024-05-03", st.CancellationDate)

	var active []StudentDTO
	require.Equal(t, http.StatusOK, call(t, router, http.MethodGet, "/api/students?status=active", "", nil, &active))
	assert.Empty(t, active)

	assert.Equal(t, http.StatusBadRequest, call(t, router, http.MethodGet, "/api/students?status=gone", "", nil, nil))
	assert.Equal(t, http.StatusBadRequest,
		call(t, router, http.MethodPost, "/api/students/11987654321/cancel", "", CancelStudentRequest{}, nil))
}

// =============================================================================
// PAYMENTS
// =============================================================================

func TestRecordPaymentAndFilter(t *testing.T) {
	router := newTestRouter(t)
	reg := createAna(t, router)

	var p PeriodDTO
	code := call(t, router, http.MethodPost, "/api/payments/"+reg.Periods[0].ID+"/pay", "2024-04-08", nil, &p)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "paid", p.Status)
	assert.Equal(t, "2024-04-08", p.PaymentDate)

	var overdue []PeriodDTO
	code = call(t, router, http.MethodGet, "/api/payments?status=overdue", "2024-06-11", nil, &overdue)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, overdue, 2)
	assert.Equal(t, "2024-05-10", overdue[0].DueDate)

	assert.Equal(t, http.StatusNotFound, call(t, router, http.MethodPost, "/api/payments/missing/pay", "", nil, nil))
}

func TestCreatePayment_DuplicateMonthIsConflict(t *testing.T) {
	router := newTestRouter(t)
	createAna(t, router)

	code := call(t, router, http.MethodPost, "/api/payments", "", CreatePeriodRequest{
		StudentID: "11987654321", Month: 4, Year: 2024,
	}, nil)
	assert.Equal(t, http.StatusConflict, code)

	var p PeriodDTO
	code = call(t, router, http.MethodPost, "/api/payments", "", CreatePeriodRequest{
		StudentID: "(11) 98765-4321", Month: 4, Year: 2025,
	}, &p)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "2025-04-10", p.DueDate)
	assert.Equal(t, 300.0, p.Amount)
}

func TestGenerateBatch(t *testing.T) {
	router := newTestRouter(t)
	createAna(t, router)

	var result BatchResultDTO
	code := call(t, router, http.MethodPost, "/api/payments/batch", "2025-04-01", BatchRequest{Month: 4, Year: 2025, DueDay: 5}, &result)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, result.Created)

	code = call(t, router, http.MethodPost, "/api/payments/batch", "2025-04-01", BatchRequest{Month: 4, Year: 2025}, &result)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, result.Skipped)

	assert.Equal(t, http.StatusBadRequest,
		call(t, router, http.MethodPost, "/api/payments/batch", "", BatchRequest{Month: 13, Year: 2025}, nil))
}

// =============================================================================
// REPORTS
// =============================================================================

func TestGetArrears_UsesRequestDate(t *testing.T) {
	router := newTestRouter(t)
	createAna(t, router)

	var records []ArrearsDTO
	code := call(t, router, http.MethodGet, "/api/reports/arrears", "2024-05-31", nil, &records)

	require.Equal(t, http.StatusOK, code)
	require.Len(t, records, 1)
	assert.Equal(t, "11987654321", records[0].StudentID)
	assert.Equal(t, "2024-04-10", records[0].LastDueDate)
	assert.Equal(t, 51, records[0].DaysOverdue)
	assert.Equal(t, 2, records[0].OverdueCount)
	assert.Equal(t, 600.0, records[0].Outstanding)

	// due today is not late
	code = call(t, router, http.MethodGet, "/api/reports/arrears", "2024-04-10", nil, &records)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, records)
}

func TestBadTodayHeader(t *testing.T) {
	router := newTestRouter(t)

	code := call(t, router, http.MethodGet, "/api/reports/arrears", "31-31-2024", nil, nil)

	assert.Equal(t, http.StatusBadRequest, code)
}

func TestGetRevenue(t *testing.T) {
	router := newTestRouter(t)
	createAna(t, router)

	var rev RevenueDTO
	code := call(t, router, http.MethodGet, "/api/reports/revenue", "2024-04-20", nil, &rev)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 4, rev.Month)
	assert.Equal(t, 300.0, rev.Expected)
	assert.Equal(t, 300.0, rev.Remaining)

	code = call(t, router, http.MethodGet, "/api/reports/revenue?month=2&year=2024", "", nil, &rev)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 0, rev.Students)
	assert.Equal(t, 0.0, rev.Remaining)

	assert.Equal(t, http.StatusBadRequest,
		call(t, router, http.MethodGet, "/api/reports/revenue?month=x&year=2024", "", nil, nil))
}

func TestGetRevenueRange(t *testing.T) {
	router := newTestRouter(t)
	createAna(t, router)

	var months []RevenueDTO
	code := call(t, router, http.MethodGet, "/api/reports/revenue/range?from=2024-02&to=2024-04", "", nil, &months)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, months, 3)
	assert.Equal(t, 2, months[0].Month)
	assert.Equal(t, 0.0, months[0].Expected)
	assert.Equal(t, 300.0, months[1].Expected)
	assert.Equal(t, 4, months[2].Month)
	assert.Equal(t, 300.0, months[2].Remaining)

	// both bounds default to the request month
	code = call(t, router, http.MethodGet, "/api/reports/revenue/range", "2024-04-20", nil, &months)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, months, 1)
	assert.Equal(t, 4, months[0].Month)

	assert.Equal(t, http.StatusBadRequest,
		call(t, router, http.MethodGet, "/api/reports/revenue/range?from=2024-04&to=2024-02", "", nil, nil))
	assert.Equal(t, http.StatusBadRequest,
		call(t, router, http.MethodGet, "/api/reports/revenue/range?from=april", "", nil, nil))
}

func TestGetStudentArrears(t *testing.T) {
	router := newTestRouter(t)
	createAna(t, router)

	var resp StudentArrearsDTO
	code := call(t, router, http.MethodGet, "/api/students/11987654321/arrears", "2024-05-31", nil, &resp)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, resp.Overdue)
	require.NotNil(t, resp.Arrears)
	assert.Equal(t, "2024-04-10", resp.Arrears.LastDueDate)
	assert.Equal(t, 51, resp.Arrears.DaysOverdue)

	resp = StudentArrearsDTO{}
	code = call(t, router, http.MethodGet, "/api/students/11987654321/arrears", "2024-04-10", nil, &resp)
	require.Equal(t, http.StatusOK, code)
	assert.False(t, resp.Overdue)
	assert.Nil(t, resp.Arrears)

	assert.Equal(t, http.StatusNotFound,
		call(t, router, http.MethodGet, "/api/students/11911111111/arrears", "2024-05-31", nil, nil))
}

func TestGetSummary(t *testing.T) {
	router := newTestRouter(t)
	createAna(t, router)

	var sum SummaryDTO
	code := call(t, router, http.MethodGet, "/api/reports/summary?from=2024-04-01&to=2024-06-30", "2024-05-31", nil, &sum)

	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 2, sum.Totals.Count["overdue"])
	assert.Equal(t, 1, sum.Totals.Count["pending"])
	assert.Equal(t, 900.0, sum.Totals.Total)
	assert.Len(t, sum.Months, 3)
}

// =============================================================================
// INTERNSHIPS
// =============================================================================

func TestSessionsAndHours(t *testing.T) {
	router := newTestRouter(t)

	var s SessionDTO
	code := call(t, router, http.MethodPost, "/api/internships", "", SessionRequest{
		Date: "2024-04-02", Topic: "Patient intake", Hours: 1.5,
		Participants: []string{"(31) 98765-2001", "31987652002"},
	}, &s)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, []string{"31987652001", "31987652002"}, s.Participants)

	code = call(t, router, http.MethodPost, "/api/internships", "", SessionRequest{
		Date: "2024-04-09", Topic: "Clinical records", Hours: 2.5, Participants: []string{"31 98765 2001"},
	}, nil)
	require.Equal(t, http.StatusCreated, code)

	var hours HoursDTO
	code = call(t, router, http.MethodGet, "/api/students/31987652001/hours", "", nil, &hours)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 4.0, hours.Hours)
	assert.Equal(t, []string{"Patient intake", "Clinical records"}, hours.Topics)

	var ranking []ParticipationDTO
	code = call(t, router, http.MethodGet, "/api/reports/participation", "", nil, &ranking)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, ranking, 2)
	assert.Equal(t, "31987652001", ranking[0].StudentID)

	var resp ErrorResponse
	code = call(t, router, http.MethodPost, "/api/internships", "", SessionRequest{
		Date: "2024-04-09", Topic: "Triage", Hours: 0, Participants: []string{"12"},
	}, &resp)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, resp.Fields, "hours")

	assert.Equal(t, http.StatusNotFound, call(t, router, http.MethodDelete, "/api/internships/missing", "", nil, nil))
}

// =============================================================================
// SAVE FAILURES
// =============================================================================

func TestSaveFailure_ReturnsComputedResult(t *testing.T) {
	store := memory.NewMemory()
	router := NewRouter(NewHandler(store), RouterOptions{})
	reg := createAna(t, router)

	// GIVEN: every save fails from now on
	store.FailSaves(errors.New("disk full"))

	// WHEN: a payment is recorded
	var resp struct {
		Error   string    `json:"error"`
		Details string    `json:"details"`
		Result  PeriodDTO `json:"result"`
	}
	code := call(t, router, http.MethodPost, "/api/payments/"+reg.Periods[0].ID+"/pay", "2024-04-08", nil, &resp)

	// THEN: 500 with the period as it would have been stored
	require.Equal(t, http.StatusInternalServerError, code)
	assert.Contains(t, resp.Details, "disk full")
	assert.Equal(t, reg.Periods[0].ID, resp.Result.ID)
	assert.Equal(t, "paid", resp.Result.Status)
	assert.Equal(t, "2024-04-08", resp.Result.PaymentDate)

	// AND: client errors carry no result
	var plain map[string]any
	code = call(t, router, http.MethodPost, "/api/payments/nope/pay", "2024-04-08", nil, &plain)
	require.Equal(t, http.StatusNotFound, code)
	assert.NotContains(t, plain, "result")
}

func TestSaveFailure_RegistrationResult(t *testing.T) {
	store := memory.NewMemory()
	store.FailSaves(errors.New("disk full"))
	router := NewRouter(NewHandler(store), RouterOptions{})

	var resp struct {
		Result RegistrationDTO `json:"result"`
	}
	code := call(t, router, http.MethodPost, "/api/students", "2024-03-20", CreateStudentRequest{
		Phone: "(11) 98765-4321", Name: "Ana Souza", EnrollmentDate: "20/03/2024", MonthlyFee: 300, DueDay: 10,
	}, &resp)

	require.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "11987654321", resp.Result.Student.ID)
	assert.Len(t, resp.Result.Periods, 12)
}

// =============================================================================
// ROUTER
// =============================================================================

func TestNewRouter_RequestLogOnlyInDebug(t *testing.T) {
	var buf bytes.Buffer
	saved := middleware.DefaultLogger
	middleware.DefaultLogger = middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  log.New(&buf, "", 0),
		NoColor: true,
	})
	t.Cleanup(func() { middleware.DefaultLogger = saved })

	quiet := NewRouter(NewHandler(memory.NewMemory()), RouterOptions{})
	require.Equal(t, http.StatusOK, call(t, quiet, http.MethodGet, "/api/students", "", nil, nil))
	assert.Zero(t, buf.Len())

	verbose := NewRouter(NewHandler(memory.NewMemory()), RouterOptions{Debug: true})
	require.Equal(t, http.StatusOK, call(t, verbose, http.MethodGet, "/api/students", "", nil, nil))
	assert.Contains(t, buf.String(), "/api/students")
}

// =============================================================================
// SCENARIOS
// =============================================================================

func TestLoadScenario_Arrears(t *testing.T) {
	router := newTestRouter(t)

	code := call(t, router, http.MethodPost, "/api/scenarios/load", "2024-06-15", LoadScenarioRequest{ScenarioID: "arrears"}, nil)
	require.Equal(t, http.StatusOK, code)

	var records []ArrearsDTO
	code = call(t, router, http.MethodGet, "/api/reports/arrears", "2024-06-15", nil, &records)
	require.Equal(t, http.StatusOK, code)

	// paid-up student absent; imported student without schedule last
	require.Len(t, records, 3)
	assert.Equal(t, "11987650002", records[0].StudentID)
	assert.Equal(t, 66, records[0].DaysOverdue)
	assert.Equal(t, "1134567890", records[1].StudentID)
	assert.Equal(t, 61, records[1].DaysOverdue)
	assert.Equal(t, "11987650004", records[2].StudentID)
	assert.Equal(t, 15, records[2].DaysOverdue)
	assert.False(t, records[2].HasSchedule)

	var current ScenarioDTO
	require.Equal(t, http.StatusOK, call(t, router, http.MethodGet, "/api/scenarios/current", "", nil, &current))
	assert.Equal(t, "arrears", current.ID)
}

func TestLoadScenario_AllScenariosLoad(t *testing.T) {
	router := newTestRouter(t)

	for _, s := range scenarios {
		code := call(t, router, http.MethodPost, "/api/scenarios/load", "2024-06-15", LoadScenarioRequest{ScenarioID: s.ID}, nil)
		assert.Equal(t, http.StatusOK, code, s.ID)
	}

	assert.Equal(t, http.StatusBadRequest,
		call(t, router, http.MethodPost, "/api/scenarios/load", "", LoadScenarioRequest{ScenarioID: "nope"}, nil))
}

func TestResetDatabase(t *testing.T) {
	router := newTestRouter(t)
	createAna(t, router)

	require.Equal(t, http.StatusOK, call(t, router, http.MethodPost, "/api/scenarios/reset", "", nil, nil))

	var students []StudentDTO
	require.Equal(t, http.StatusOK, call(t, router, http.MethodGet, "/api/students", "", nil, &students))
	assert.Empty(t, students)
}

func TestScenarios_ConcurrentLoadAndReset(t *testing.T) {
	router := newTestRouter(t)

	send := func(method, path string, body any) int {
		var buf bytes.Buffer
		if body != nil {
			_ = json.NewEncoder(&buf).Encode(body)
		}
		req := httptest.NewRequest(method, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(headerToday, "2024-06-15")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec.Code
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			assert.Equal(t, http.StatusOK, send(http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "arrears"}))
		}()
		go func() {
			defer wg.Done()
			assert.Equal(t, http.StatusOK, send(http.MethodPost, "/api/scenarios/reset", nil))
		}()
		go func() {
			defer wg.Done()
			assert.Equal(t, http.StatusOK, send(http.MethodGet, "/api/scenarios/current", nil))
		}()
	}
	wg.Wait()

	// a final load leaves store and current scenario in agreement
	require.Equal(t, http.StatusOK, send(http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "arrears"}))
	var current ScenarioDTO
	require.Equal(t, http.StatusOK, call(t, router, http.MethodGet, "/api/scenarios/current", "", nil, &current))
	assert.Equal(t, "arrears", current.ID)
}

/*
handlers.go - HTTP API handlers for the tuition engine

PURPOSE:
  Exposes billing.Service via REST API. Handles HTTP request/response,
  JSON serialization and validation, and delegates to the service.

ENDPOINTS:
  Students:
    GET    /api/students                  List students (?status=active|canceled)
    POST   /api/students                  Register student + generate schedule
    GET    /api/students/{id}             Get student
    PUT    /api/students/{id}             Update student
    DELETE /api/students/{id}             Delete student and their periods
    POST   /api/students/{id}/cancel      Cancel enrollment
    POST   /api/students/{id}/reactivate  Reactivate enrollment
    POST   /api/students/{id}/schedule    Regenerate unpaid installments
    GET    /api/students/{id}/payments    Student schedule
    GET    /api/students/{id}/hours       Internship hours

  Payments:
    GET    /api/payments                  List (?status=&month=&year=&student_id=)
    POST   /api/payments                  Add a period manually
    PUT    /api/payments/{id}             Administrative edit
    POST   /api/payments/{id}/pay         Record payment
    POST   /api/payments/batch            Generate a month for all active students

  Reports:
    GET    /api/reports/arrears
    GET    /api/reports/revenue?month=&year=
    GET    /api/reports/summary?from=&to=
    GET    /api/reports/participation

  Internships:
    GET    /api/internships
    POST   /api/internships
    PUT    /api/internships/{id}
    DELETE /api/internships/{id}

REQUEST CONTEXT:
  X-Actor names who is acting (logged with each mutation).
  X-Today (YYYY-MM-DD) pins "today" for classification and arrears.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Student, period or session not found
  - 409: Duplicate student or duplicate period for a month
  - 500: Persistence failures

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"
	"github.com/warp/tuition-engine/billing"
	"github.com/warp/tuition-engine/generic"
	"github.com/warp/tuition-engine/internship"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Store is what the API needs from persistence: the billing tables plus Reset
// for demo scenarios.
type Store interface {
	billing.Store
	Reset(ctx context.Context) error
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   Store
	Service *billing.Service

	// Track currently loaded scenario
	scenarioMu      sync.RWMutex
	currentScenario string
}

// NewHandler creates a new handler with the given store.
func NewHandler(store Store) *Handler {
	return &Handler{
		Store:   store,
		Service: billing.NewService(store),
	}
}

const (
	headerActor = "X-Actor"
	headerToday = "X-Today"
)

// requestContext builds the per-request billing context from headers.
func requestContext(r *http.Request) (billing.RequestContext, error) {
	rc := billing.RequestContext{Actor: strings.TrimSpace(r.Header.Get(headerActor))}
	if raw := r.Header.Get(headerToday); raw != "" {
		today, err := generic.ParseDate(raw)
		if err != nil {
			return rc, err
		}
		rc.Today = today
	}
	return rc, nil
}

// decode reads a JSON body and validates it. It writes the error response
// itself and returns false on failure.
func decode(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	if fields := validateRequest(req); fields != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Validation failed", Fields: fields})
		return false
	}
	return true
}

// begin resolves the request context, writing a 400 for a bad X-Today.
func begin(w http.ResponseWriter, r *http.Request) (billing.RequestContext, bool) {
	rc, err := requestContext(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid "+headerToday+" header", err)
		return rc, false
	}
	return rc, true
}

func studentIDParam(r *http.Request) billing.StudentID {
	return billing.CanonicalID(chi.URLParam(r, "id"))
}

// =============================================================================
// STUDENT HANDLERS
// =============================================================================

// ListStudents returns all students, optionally filtered by status.
func (h *Handler) ListStudents(w http.ResponseWriter, r *http.Request) {
	filter := billing.StudentFilter{Status: billing.StudentStatus(r.URL.Query().Get("status"))}
	if filter.Status != "" && !filter.Status.Valid() {
		writeError(w, http.StatusBadRequest, "Invalid status filter", nil)
		return
	}

	students, err := h.Service.ListStudents(r.Context(), filter)
	if err != nil {
		writeServiceError(w, "Failed to list students", err)
		return
	}
	writeJSON(w, http.StatusOK, lo.Map(students, func(s billing.Student, _ int) StudentDTO { return toStudentDTO(s) }))
}

// GetStudent returns a single student.
func (h *Handler) GetStudent(w http.ResponseWriter, r *http.Request) {
	st, err := h.Service.GetStudent(r.Context(), studentIDParam(r))
	if err != nil {
		writeServiceError(w, "Failed to get student", err)
		return
	}
	writeJSON(w, http.StatusOK, toStudentDTO(st))
}

// CreateStudent registers a student and generates their schedule.
func (h *Handler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	rc, ok := begin(w, r)
	if !ok {
		return
	}
	var req CreateStudentRequest
	if !decode(w, r, &req) {
		return
	}

	reg, err := h.Service.RegisterStudent(r.Context(), rc, billing.NewStudent{
		Phone:          req.Phone,
		Name:           req.Name,
		Email:          req.Email,
		Notes:          req.Notes,
		EnrollmentDate: generic.ParseDateOrZero(req.EnrollmentDate),
		MonthlyFee:     generic.Money(req.MonthlyFee),
		Options: billing.StudentOptions{
			CPF:        req.CPF,
			CourseType: req.CourseType,
			PlanLength: req.PlanLength,
			DueDay:     req.DueDay,
		},
	})
	if err != nil {
		writeUnsaved(w, "Failed to register student", err, func() any { return toRegistrationDTO(reg) })
		return
	}

	writeJSON(w, http.StatusCreated, toRegistrationDTO(reg))
}

// UpdateStudent edits a student's contact and plan fields.
func (h *Handler) UpdateStudent(w http.ResponseWriter, r *http.Request) {
	rc, ok := begin(w, r)
	if !ok {
		return
	}
	var req UpdateStudentRequest
	if !decode(w, r, &req) {
		return
	}
	ctx := r.Context()
	id := studentIDParam(r)

	upd := billing.StudentUpdate{Name: req.Name, Email: req.Email, Notes: req.Notes}
	if req.MonthlyFee != nil {
		fee := generic.Money(*req.MonthlyFee)
		upd.MonthlyFee = &fee
	}
	if req.CPF != nil || req.CourseType != nil || req.PlanLength != nil || req.DueDay != nil {
		current, err := h.Service.GetStudent(ctx, id)
		if err != nil {
			writeServiceError(w, "Failed to update student", err)
			return
		}
		opts := current.Options
		if req.CPF != nil {
			opts.CPF = *req.CPF
		}
		if req.CourseType != nil {
			opts.CourseType = *req.CourseType
		}
		if req.PlanLength != nil {
			opts.PlanLength = *req.PlanLength
		}
		if req.DueDay != nil {
			opts.DueDay = *req.DueDay
		}
		upd.Options = &opts
	}

	st, err := h.Service.UpdateStudent(ctx, rc, id, upd)
	if err != nil {
		writeUnsaved(w, "Failed to update student", err, func() any { return toStudentDTO(st) })
		return
	}
	writeJSON(w, http.StatusOK, toStudentDTO(st))
}

// DeleteStudent removes a student and their billing periods.
func (h *Handler) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	rc, ok := begin(w, r)
	if !ok {
		return
	}
	if err := h.Service.DeleteStudent(r.Context(), rc, studentIDParam(r)); err != nil {
		writeServiceError(w, "Failed to delete student", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CancelStudent cancels an enrollment.
func (h *Handler) CancelStudent(w http.ResponseWriter, r *http.Request) {
	rc, ok := begin(w, r)
	if !ok {
		return
	}
	var req CancelStudentRequest
	if !decode(w, r, &req) {
		return
	}

	st, err := h.Service.CancelStudent(r.Context(), rc, studentIDParam(r), billing.Cancellation{
		Date:    generic.ParseDateOrZero(req.Date),
		FeePaid: req.FeePaid,
		Reason:  req.Reason,
	})
	if err != nil {
		writeUnsaved(w, "Failed to cancel student", err, func() any { return toStudentDTO(st) })
		return
	}
	writeJSON(w, http.StatusOK, toStudentDTO(st))
}

// ReactivateStudent reverses a cancellation.
func (h *Handler) ReactivateStudent(w http.ResponseWriter, r *http.Request) {
	rc, ok := begin(w, r)
	if !ok {
		return
	}
	st, err := h.Service.ReactivateStudent(r.Context(), rc, studentIDParam(r))
	if err != nil {
		writeUnsaved(w, "Failed to reactivate student", err, func() any { return toStudentDTO(st) })
		return
	}
	writeJSON(w, http.StatusOK, toStudentDTO(st))
}

// RegenerateSchedule rebuilds a student's unpaid installments.
func (h *Handler) RegenerateSchedule(w http.ResponseWriter, r *http.Request) {
	rc, ok := begin(w, r)
	if !ok {
		return
	}
	var req RegenerateScheduleRequest
	if r.ContentLength != 0 && !decode(w, r, &req) {
		return
	}

	var end *generic.TimePoint
	if req.EndDate != "" {
		tp := generic.ParseDateOrZero(req.EndDate)
		end = &tp
	}
	periods, err := h.Service.RegenerateSchedule(r.Context(), rc, studentIDParam(r), end)
	if err != nil {
		writeUnsaved(w, "Failed to regenerate schedule", err, func() any { return toPeriodDTOs(periods) })
		return
	}
	writeJSON(w, http.StatusOK, toPeriodDTOs(periods))
}

// GetStudentPayments returns the student's schedule, classified as of today.
func (h *Handler) GetStudentPayments(w http.ResponseWriter, r *http.Request) {
	rc, ok := begin(w, r)
	if !ok {
		return
	}
	periods, err := h.Service.StudentPeriods(r.Context(), rc, studentIDParam(r))
	if err != nil {
		writeServiceError(w, "Failed to get payments", err)
		return
	}
	writeJSON(w, http.StatusOK, toPeriodDTOs(periods))
}

// GetStudentArrears reports whether one student is overdue as of today.
func (h *Handler) GetStudentArrears(w http.ResponseWriter, r *http.Request) {
	rc, ok := begin(w, r)
	if !ok {
		return
	}
	id := studentIDParam(r)
	rec, late, err := h.Service.StudentArrears(r.Context(), rc, id)
	if err != nil {
		writeServiceError(w, "Failed to compute arrears", err)
		return
	}
	resp := StudentArrearsDTO{StudentID: string(id), Overdue: late}
	if late {
		resp.Arrears = lo.ToPtr(toArrearsDTO(rec))
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetStudentHours returns internship hours for any phone format.
func (h *Handler) GetStudentHours(w http.ResponseWriter, r *http.Request) {
	hours, err := h.Service.StudentHours(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, "Failed to get hours", err)
		return
	}
	topics := hours.Topics
	if topics == nil {
		topics = []string{}
	}
	writeJSON(w, http.StatusOK, HoursDTO{
		StudentID: string(hours.StudentID),
		Hours:     hours.Hours.Float64(),
		Topics:    topics,
	})
}

// =============================================================================
// PAYMENT HANDLERS
// =============================================================================

// ListPayments returns periods filtered by query parameters.
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	rc, ok := begin(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()

	filter := billing.PeriodFilter{StudentID: billing.CanonicalID(q.Get("student_id"))}
	if raw := q.Get("status"); raw != "" {
		st, err := billing.ParsePeriodStatus(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid status filter", err)
			return
		}
		filter.Status = st
	}
	if q.Get("month") != "" || q.Get("year") != "" {
		ref, err := parseMonthRef(q.Get("month"), q.Get("year"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid month/year", err)
			return
		}
		filter.Ref = &ref
	}

	periods, err := h.Service.ListPeriods(r.Context(), rc, filter)
	if err != nil {
		writeServiceError(w, "Failed to list payments", err)
		return
	}
	writeJSON(w, http.StatusOK, toPeriodDTOs(periods))
}

// CreatePayment adds one billing period manually.
func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	rc, ok := begin(w, r)
	if !ok {
		return
	}
	var req CreatePeriodRequest
	if !decode(w, r, &req) {
		return
	}

	in := billing.NewPeriod{
		StudentID:   billing.CanonicalID(req.StudentID),
		Ref:         generic.NewMonthRef(req.Year, time.Month(req.Month)),
		DueDate:     generic.ParseDateOrZero(req.DueDate),
		Status:      billing.PeriodStatus(req.Status),
		PaymentDate: generic.ParseDateOrZero(req.PaymentDate),
		Note:        req.Note,
	}
	if req.Amount != nil {
		amount := generic.Money(*req.Amount)
		in.Amount = &amount
	}

	p, err := h.Service.AddPeriod(r.Context(), rc, in)
	if err != nil {
		writeUnsaved(w, "Failed to add payment", err, func() any { return toPeriodDTO(p) })
		return
	}
	writeJSON(w, http.StatusCreated, toPeriodDTO(p))
}

// UpdatePayment applies an administrative edit to a period.
func (h *Handler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	rc, ok := begin(w, r)
	if !ok {
		return
	}
	var req UpdatePeriodRequest
	if !decode(w, r, &req) {
		return
	}

	upd := billing.PeriodUpdate{Note: req.Note}
	if req.Status != nil {
		st := billing.PeriodStatus(*req.Status)
		upd.Status = &st
	}
	if req.PaymentDate != nil {
		tp := generic.ParseDateOrZero(*req.PaymentDate)
		upd.PaymentDate = &tp
	}
	if req.DueDate != nil {
		tp := generic.ParseDateOrZero(*req.DueDate)
		upd.DueDate = &tp
	}
	if req.Amount != nil {
		amount := generic.Money(*req.Amount)
		upd.Amount = &amount
	}

	p, err := h.Service.UpdatePeriod(r.Context(), rc, billing.PeriodID(chi.URLParam(r, "id")), upd)
	if err != nil {
		writeUnsaved(w, "Failed to update payment", err, func() any { return toPeriodDTO(p) })
		return
	}
	writeJSON(w, http.StatusOK, toPeriodDTO(p))
}

// RecordPayment marks a period paid.
func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	rc, ok := begin(w, r)
	if !ok {
		return
	}
	var req PaymentRequest
	if r.ContentLength != 0 && !decode(w, r, &req) {
		return
	}

	pay := billing.Payment{Date: generic.ParseDateOrZero(req.Date), Note: req.Note}
	if req.Amount != nil {
		amount := generic.Money(*req.Amount)
		pay.Amount = &amount
	}

	p, err := h.Service.RecordPayment(r.Context(), rc, billing.PeriodID(chi.URLParam(r, "id")), pay)
	if err != nil {
		writeUnsaved(w, "Failed to record payment", err, func() any { return toPeriodDTO(p) })
		return
	}
	writeJSON(w, http.StatusOK, toPeriodDTO(p))
}

// GenerateBatch creates a month's installment for every active student.
func (h *Handler) GenerateBatch(w http.ResponseWriter, r *http.Request) {
	rc, ok := begin(w, r)
	if !ok {
		return
	}
	var req BatchRequest
	if !decode(w, r, &req) {
		return
	}

	ref := generic.NewMonthRef(req.Year, time.Month(req.Month))
	result, err := h.Service.GenerateBatch(r.Context(), rc, billing.BatchRequest{
		Ref:           ref,
		DueDay:        req.DueDay,
		InitialStatus: billing.PeriodStatus(req.Status),
		Override:      req.Override,
	})
	dto := func() any {
		return BatchResultDTO{
			Month:    req.Month,
			Year:     req.Year,
			Created:  result.Created,
			Replaced: result.Replaced,
			Skipped:  result.Skipped,
		}
	}
	if err != nil {
		writeUnsaved(w, "Failed to generate batch", err, dto)
		return
	}
	writeJSON(w, http.StatusOK, dto())
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

// GetArrears lists delinquent students, most overdue first.
func (h *Handler) GetArrears(w http.ResponseWriter, r *http.Request) {
	rc, ok := begin(w, r)
	if !ok {
		return
	}
	records, err := h.Service.Arrears(r.Context(), rc)
	if err != nil {
		writeServiceError(w, "Failed to compute arrears", err)
		return
	}
	writeJSON(w, http.StatusOK, lo.Map(records, func(rec billing.ArrearsRecord, _ int) ArrearsDTO { return toArrearsDTO(rec) }))
}

// GetRevenue projects collections for ?month=&year= (default: current month).
func (h *Handler) GetRevenue(w http.ResponseWriter, r *http.Request) {
	rc, ok := begin(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()

	ref := rc.Date().MonthRef()
	if q.Get("month") != "" || q.Get("year") != "" {
		var err error
		if ref, err = parseMonthRef(q.Get("month"), q.Get("year")); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid month/year", err)
			return
		}
	}

	proj, err := h.Service.ProjectRevenue(r.Context(), ref)
	if err != nil {
		writeServiceError(w, "Failed to project revenue", err)
		return
	}
	writeJSON(w, http.StatusOK, toRevenueDTO(proj))
}

// GetRevenueRange projects every month in ?from=YYYY-MM&to=YYYY-MM.
// A missing bound defaults to the current month.
func (h *Handler) GetRevenueRange(w http.ResponseWriter, r *http.Request) {
	rc, ok := begin(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()

	from, to := rc.Date().MonthRef(), rc.Date().MonthRef()
	var err error
	if raw := q.Get("from"); raw != "" {
		if from, err = generic.ParseMonthRef(raw); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid from month", err)
			return
		}
	}
	if raw := q.Get("to"); raw != "" {
		if to, err = generic.ParseMonthRef(raw); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid to month", err)
			return
		}
	}

	months, err := h.Service.ProjectRevenueRange(r.Context(), from, to)
	if err != nil {
		writeServiceError(w, "Failed to project revenue", err)
		return
	}
	writeJSON(w, http.StatusOK, lo.Map(months, func(proj billing.RevenueProjection, _ int) RevenueDTO { return toRevenueDTO(proj) }))
}

// GetSummary totals periods due within ?from=&to= (default: current month).
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	rc, ok := begin(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()

	month := rc.Date().MonthRef()
	window := generic.Period{Start: month.Start(), End: month.End()}
	if raw := q.Get("from"); raw != "" {
		from, err := generic.ParseDate(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid from date", err)
			return
		}
		window.Start = from
	}
	if raw := q.Get("to"); raw != "" {
		to, err := generic.ParseDate(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid to date", err)
			return
		}
		window.End = to
	}

	summary, err := h.Service.Summarize(r.Context(), rc, window)
	if err != nil {
		writeServiceError(w, "Failed to summarize", err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryDTO(summary))
}

// GetParticipation ranks internship participants by hours.
func (h *Handler) GetParticipation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rows, err := h.Service.Participation(ctx)
	if err != nil {
		writeServiceError(w, "Failed to compute participation", err)
		return
	}
	students, err := h.Service.ListStudents(ctx, billing.StudentFilter{})
	if err != nil {
		writeServiceError(w, "Failed to compute participation", err)
		return
	}
	names := lo.SliceToMap(students, func(s billing.Student) (string, string) { return string(s.ID), s.Name })

	writeJSON(w, http.StatusOK, lo.Map(rows, func(row internship.StudentParticipation, _ int) ParticipationDTO {
		return ParticipationDTO{
			StudentID: row.StudentID,
			Name:      names[row.StudentID],
			Sessions:  row.Sessions,
			Hours:     row.Hours.Float64(),
		}
	}))
}

// =============================================================================
// INTERNSHIP HANDLERS
// =============================================================================

func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.Service.ListSessions(r.Context())
	if err != nil {
		writeServiceError(w, "Failed to list sessions", err)
		return
	}
	writeJSON(w, http.StatusOK, lo.Map(sessions, func(s internship.Session, _ int) SessionDTO { return toSessionDTO(s) }))
}

func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	rc, ok := begin(w, r)
	if !ok {
		return
	}
	var req SessionRequest
	if !decode(w, r, &req) {
		return
	}
	s, err := h.Service.AddSession(r.Context(), rc, req.toInput())
	if err != nil {
		writeUnsaved(w, "Failed to add session", err, func() any { return toSessionDTO(s) })
		return
	}
	writeJSON(w, http.StatusCreated, toSessionDTO(s))
}

func (h *Handler) UpdateSession(w http.ResponseWriter, r *http.Request) {
	rc, ok := begin(w, r)
	if !ok {
		return
	}
	var req SessionRequest
	if !decode(w, r, &req) {
		return
	}
	s, err := h.Service.UpdateSession(r.Context(), rc, internship.SessionID(chi.URLParam(r, "id")), req.toInput())
	if err != nil {
		writeUnsaved(w, "Failed to update session", err, func() any { return toSessionDTO(s) })
		return
	}
	writeJSON(w, http.StatusOK, toSessionDTO(s))
}

func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	rc, ok := begin(w, r)
	if !ok {
		return
	}
	if err := h.Service.DeleteSession(r.Context(), rc, internship.SessionID(chi.URLParam(r, "id"))); err != nil {
		writeServiceError(w, "Failed to delete session", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// HELPERS
// =============================================================================

func parseMonthRef(month, year string) (generic.MonthRef, error) {
	m, err := strconv.Atoi(month)
	if err != nil {
		return generic.MonthRef{}, errors.Join(generic.ErrInvalidDate, err)
	}
	y, err := strconv.Atoi(year)
	if err != nil {
		return generic.MonthRef{}, errors.Join(generic.ErrInvalidDate, err)
	}
	ref := generic.NewMonthRef(y, time.Month(m))
	if !ref.Valid() {
		return generic.MonthRef{}, generic.ErrInvalidDate
	}
	return ref, nil
}

// ResetDatabase clears all data.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	h.scenarioMu.Lock()
	defer h.scenarioMu.Unlock()

	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeServiceError maps service errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, message string, err error) {
	writeError(w, serviceStatus(err), message, err)
}

// writeUnsaved is writeServiceError for mutations. When the failure is a
// save, the service still returned its computed value and result renders it
// into the 500 body.
func writeUnsaved(w http.ResponseWriter, message string, err error, result func() any) {
	if !generic.IsSaveFailure(err) {
		writeServiceError(w, message, err)
		return
	}
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   message,
		Details: err.Error(),
		Result:  result(),
	})
}

func serviceStatus(err error) int {
	switch {
	case errors.Is(err, generic.ErrPersistence):
		return http.StatusInternalServerError
	case generic.IsNotFound(err):
		return http.StatusNotFound
	case generic.IsConflict(err):
		return http.StatusConflict
	case generic.IsClientError(err):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

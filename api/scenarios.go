/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:
	Provides pre-built scenarios that populate the store with realistic
	data for demos. Each scenario registers students through the service
	(so schedules are generated exactly as in production), then records
	payments and internship sessions.

AVAILABLE SCENARIOS:
	new-enrollment:  One student enrolled after the due day (first month skipped)
	arrears:         A class with paid, late and never-scheduled students
	monthly-batch:   Monthly batches settling last month and filling this month
	internships:     Internship sessions and the participation ranking

HOW SCENARIOS WORK:
 1. Reset store (clear all data)
 2. Register students relative to today
 3. Record payments / generate batches
 4. Add internship sessions

USAGE VIA API:
	POST /api/scenarios/load
	{"scenario_id": "arrears"}

NOTE:
	Scenarios reset the store. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: ResetDatabase handler
*/
package api

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/warp/tuition-engine/billing"
	"github.com/warp/tuition-engine/generic"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "new-enrollment",
		Name:        "New Enrollment",
		Description: "Student enrolled after the due day: the enrollment month is skipped, 12 installments follow",
	},
	{
		ID:          "arrears",
		Name:        "Arrears",
		Description: "Paid, late and never-scheduled students; the arrears report orders them by days overdue",
	},
	{
		ID:          "monthly-batch",
		Name:        "Monthly Batch",
		Description: "Batch marks last month paid for everyone and fills any gaps in the current month",
	},
	{
		ID:          "internships",
		Name:        "Internships",
		Description: "Internship sessions with overlapping participants and the hours ranking",
	},
}

type scenarioLoader func(ctx context.Context, h *Handler, rc billing.RequestContext) error

var scenarioLoaders = map[string]scenarioLoader{
	"new-enrollment": loadNewEnrollmentScenario,
	"arrears":        loadArrearsScenario,
	"monthly-batch":  loadMonthlyBatchScenario,
	"internships":    loadInternshipsScenario,
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.scenarioMu.RLock()
	current := h.currentScenario
	h.scenarioMu.RUnlock()

	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario resets the store and loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	rc, ok := begin(w, r)
	if !ok {
		return
	}
	var req LoadScenarioRequest
	if !decode(w, r, &req) {
		return
	}
	load, found := scenarioLoaders[req.ScenarioID]
	if !found {
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	// Loads and resets are serialized so the store and currentScenario agree.
	h.scenarioMu.Lock()
	defer h.scenarioMu.Unlock()

	ctx := r.Context()
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""

	if rc.Actor == "" {
		rc.Actor = "scenario"
	}
	if err := load(ctx, h, rc); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}

	h.currentScenario = req.ScenarioID
	log.Printf("[Scenario] loaded %s", req.ScenarioID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

type demoStudent struct {
	phone    string
	name     string
	enrolled generic.TimePoint
	fee      float64
	dueDay   int
}

func (h *Handler) register(ctx context.Context, rc billing.RequestContext, d demoStudent) (*billing.Registration, error) {
	return h.Service.RegisterStudent(ctx, rc, billing.NewStudent{
		Phone:          d.phone,
		Name:           d.name,
		EnrollmentDate: d.enrolled,
		MonthlyFee:     generic.Money(d.fee),
		Options:        billing.StudentOptions{DueDay: d.dueDay},
	})
}

// payFirst records payment for the first n installments on their due dates.
func (h *Handler) payFirst(ctx context.Context, rc billing.RequestContext, reg *billing.Registration, n int) error {
	for i, p := range reg.Periods {
		if i >= n {
			break
		}
		if _, err := h.Service.RecordPayment(ctx, rc, p.ID, billing.Payment{Date: p.DueDate}); err != nil {
			return err
		}
	}
	return nil
}

func loadNewEnrollmentScenario(ctx context.Context, h *Handler, rc billing.RequestContext) error {
	today := rc.Date()
	enrolled := generic.NewTimePoint(today.Year(), today.Month(), 20)
	if enrolled.After(today) {
		enrolled = enrolled.AddMonths(-1)
	}
	_, err := h.register(ctx, rc, demoStudent{
		phone: "(11) 98765-4321", name: "Ana Souza", enrolled: enrolled, fee: 300, dueDay: 10,
	})
	return err
}

func loadArrearsScenario(ctx context.Context, h *Handler, rc billing.RequestContext) error {
	today := rc.Date()

	// fully paid up to this month
	onTime, err := h.register(ctx, rc, demoStudent{
		phone: "11987650001", name: "Bruno Lima", enrolled: today.AddMonths(-4).AddDays(-5), fee: 300, dueDay: 5,
	})
	if err != nil {
		return err
	}
	if err := h.payFirst(ctx, rc, onTime, 5); err != nil {
		return err
	}

	// paid the first installment only
	late, err := h.register(ctx, rc, demoStudent{
		phone: "11987650002", name: "Carla Dias", enrolled: today.AddMonths(-4), fee: 350, dueDay: 10,
	})
	if err != nil {
		return err
	}
	if err := h.payFirst(ctx, rc, late, 1); err != nil {
		return err
	}

	// never paid
	if _, err := h.register(ctx, rc, demoStudent{
		phone: "1134567890", name: "Diego Rocha", enrolled: today.AddMonths(-2), fee: 280, dueDay: 15,
	}); err != nil {
		return err
	}

	// imported record with no schedule: falls back to enrollment + 30 days
	return h.importStudent(ctx, billing.Student{
		ID:             "11987650004",
		Name:           "Elisa Prado",
		EnrollmentDate: today.AddDays(-45),
		MonthlyFee:     generic.Money(320),
		Status:         billing.StudentActive,
	})
}

// importStudent writes a student straight to the store without a schedule,
// the way records arrive from a legacy spreadsheet.
func (h *Handler) importStudent(ctx context.Context, st billing.Student) error {
	students, err := h.Store.LoadStudents(ctx)
	if err != nil {
		return err
	}
	return h.Store.SaveStudents(ctx, append(students, st.WithDefaults()))
}

func loadMonthlyBatchScenario(ctx context.Context, h *Handler, rc billing.RequestContext) error {
	today := rc.Date()
	students := []demoStudent{
		{phone: "21987651001", name: "Fabio Nunes", enrolled: today.AddMonths(-3), fee: 250, dueDay: 10},
		{phone: "21987651002", name: "Gabi Torres", enrolled: today.AddMonths(-2), fee: 275, dueDay: 10},
		{phone: "21987651003", name: "Heitor Alves", enrolled: today.AddMonths(-1), fee: 300, dueDay: 28},
	}
	for _, d := range students {
		if _, err := h.register(ctx, rc, d); err != nil {
			return err
		}
	}

	// last month settled for everyone, replacing the generated installments
	prev := today.AddMonths(-1).MonthRef()
	if _, err := h.Service.GenerateBatch(ctx, rc, billing.BatchRequest{
		Ref: prev, DueDay: 10, InitialStatus: billing.StatusPaid, Override: true,
	}); err != nil {
		return err
	}
	// this month only fills gaps
	_, err := h.Service.GenerateBatch(ctx, rc, billing.BatchRequest{Ref: today.MonthRef(), DueDay: 10})
	return err
}

func loadInternshipsScenario(ctx context.Context, h *Handler, rc billing.RequestContext) error {
	today := rc.Date()
	for _, d := range []demoStudent{
		{phone: "31987652001", name: "Iara Campos", enrolled: today.AddMonths(-6), fee: 300, dueDay: 10},
		{phone: "31987652002", name: "João Mendes", enrolled: today.AddMonths(-6), fee: 300, dueDay: 10},
		{phone: "31987652003", name: "Kelly Ramos", enrolled: today.AddMonths(-5), fee: 300, dueDay: 10},
	} {
		if _, err := h.register(ctx, rc, d); err != nil {
			return err
		}
	}

	sessions := []billing.SessionInput{
		{Date: today.AddDays(-30), Topic: "Patient intake", Hours: generic.Hours(1.5),
			Participants: []string{"(31) 98765-2001", "31987652002"}},
		{Date: today.AddDays(-20), Topic: "Clinical records", Hours: generic.Hours(2.5),
			Participants: []string{"31 98765 2001", "(31) 98765-2003"}},
		{Date: today.AddDays(-10), Topic: "Patient intake", Hours: generic.Hours(3),
			Participants: []string{"31987652002", "31987652003"}},
	}
	for _, s := range sessions {
		if _, err := h.Service.AddSession(ctx, rc, s); err != nil {
			return err
		}
	}
	return nil
}

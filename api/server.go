/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging (debug only)
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the operator frontend

ROUTE GROUPS:
  /api/students/*     Enrollment lifecycle and schedules
  /api/payments/*     Billing periods, payments, monthly batches
  /api/reports/*      Arrears, revenue, summary, participation
  /api/internships/*  Internship sessions
  /api/scenarios/*    Demo scenarios

SECURITY NOTE:
  No authentication middleware. X-Actor is trusted as sent and only
  used for logging.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// DefaultCORSOrigins are allowed when the caller passes none.
var DefaultCORSOrigins = []string{"http://localhost:5173", "http://localhost:8080"}

// RouterOptions configures NewRouter. The zero value is a quiet router
// with the default CORS origins.
type RouterOptions struct {
	CORSOrigins []string
	// Debug turns on per-request logging.
	Debug bool
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	corsOrigins := opts.CORSOrigins
	if len(corsOrigins) == 0 {
		corsOrigins = DefaultCORSOrigins
	}

	r := chi.NewRouter()

	// Middleware
	if opts.Debug {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", headerActor, headerToday},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/students", func(r chi.Router) {
			r.Get("/", h.ListStudents)
			r.Post("/", h.CreateStudent)
			r.Get("/{id}", h.GetStudent)
			r.Put("/{id}", h.UpdateStudent)
			r.Delete("/{id}", h.DeleteStudent)
			r.Post("/{id}/cancel", h.CancelStudent)
			r.Post("/{id}/reactivate", h.ReactivateStudent)
			r.Post("/{id}/schedule", h.RegenerateSchedule)
			r.Get("/{id}/payments", h.GetStudentPayments)
			r.Get("/{id}/arrears", h.GetStudentArrears)
			r.Get("/{id}/hours", h.GetStudentHours)
		})

		r.Route("/payments", func(r chi.Router) {
			r.Get("/", h.ListPayments)
			r.Post("/", h.CreatePayment)
			r.Post("/batch", h.GenerateBatch)
			r.Put("/{id}", h.UpdatePayment)
			r.Post("/{id}/pay", h.RecordPayment)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/arrears", h.GetArrears)
			r.Get("/revenue", h.GetRevenue)
			r.Get("/revenue/range", h.GetRevenueRange)
			r.Get("/summary", h.GetSummary)
			r.Get("/participation", h.GetParticipation)
		})

		r.Route("/internships", func(r chi.Router) {
			r.Get("/", h.ListSessions)
			r.Post("/", h.CreateSession)
			r.Put("/{id}", h.UpdateSession)
			r.Delete("/{id}", h.DeleteSession)
		})

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetDatabase)
		})
	})

	return r
}

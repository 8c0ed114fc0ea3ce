/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/schedule      Resolved timeline for a window
  /api/patterns/*    Rotation pattern management
  /api/instances     Manual shift instances
  /api/leave         Leave records
  /api/requests/*    Exception requests and approvals
  /api/subjects/*    Compensation profiles and pay previews
  /api/holidays      Public holiday calendar

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

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

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Resolved schedule
		r.Get("/schedule", h.GetSchedule)

		// Rotation patterns
		r.Route("/patterns", func(r chi.Router) {
			r.Get("/", h.ListPatterns)
			r.Post("/", h.CreatePattern)
			r.Post("/import", h.ImportRoster)
			r.Delete("/{id}", h.DeletePattern)
			r.Post("/{id}/exceptions", h.CreateException)
		})

		// Manual instances
		r.Post("/instances", h.CreateInstance)

		// Leave
		r.Route("/leave", func(r chi.Router) {
			r.Get("/", h.ListLeave)
			r.Post("/", h.CreateLeave)
		})

		// Exception requests
		r.Route("/requests", func(r chi.Router) {
			r.Get("/pending", h.ListPendingRequests)
			r.Post("/", h.SubmitRequest)
			r.Post("/{id}/approve", h.ApproveRequest)
			r.Post("/{id}/reject", h.RejectRequest)
		})

		// Compensation
		r.Route("/subjects", func(r chi.Router) {
			r.Post("/{id}/profile", h.SaveProfile)
			r.Get("/{id}/pay-preview", h.GetPayPreview)
		})
		r.Post("/holidays", h.CreateHoliday)
	})

	return r
}

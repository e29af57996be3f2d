/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. CORS:       Cross-origin requests for the frontends
  4. zerolog:    Structured request logging

ROUTE GROUPS:
  /api/tickets/*    Ticket records
  /api/invoices/*   Invoice records
  /api/stats        Cross-family aggregation
  /api/demo/*       Demo data seeding (dev only)

SECURITY NOTE:
  No authentication middleware. An identity layer in front of this API
  supplies the X-Actor-ID header.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/warp/record-engine/billing"
	"github.com/warp/record-engine/tickets"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, corsOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Actor-ID"},
		AllowCredentials: true,
	}))
	r.Use(requestLogger(h.Log))

	r.Route("/api", func(r chi.Router) {
		r.Route("/tickets", func(r chi.Router) {
			r.Get("/", h.ListRecords(tickets.Kind))
			r.Post("/", h.CreateTicket)
			r.Get("/stats", h.KindStats(tickets.Kind))
			r.Get("/{id}", h.GetRecord)
			r.Put("/{id}", h.UpdateRecord)
			r.Delete("/{id}", h.DeleteRecord)
			r.Post("/{id}/comments", h.AddComment)
		})

		r.Route("/invoices", func(r chi.Router) {
			r.Get("/", h.ListRecords(billing.Kind))
			r.Post("/", h.CreateInvoice)
			r.Get("/stats", h.KindStats(billing.Kind))
			r.Get("/{id}", h.GetRecord)
			r.Put("/{id}", h.UpdateRecord)
			r.Delete("/{id}", h.DeleteRecord)
			r.Post("/{id}/comments", h.AddComment)
		})

		r.Get("/stats", h.Stats)

		r.Route("/demo", func(r chi.Router) {
			r.Post("/seed", h.SeedDemo)
		})
	})

	return r
}

// requestLogger logs one line per request with method, path, status, and
// duration.
func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("request")
		})
	}
}

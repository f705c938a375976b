// internal/app/features/cron/routes.go
package cron

import (
	"github.com/go-chi/chi/v5"
)

// Routes mounts the cron endpoints. Typically: r.Mount("/api/cron", cron.Routes(h)).
// No session middleware here; the shared secret is the only gate.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(h.RequireSecret)

	r.Get("/emr-presentations", h.HandleEmrPresentations)
	r.Get("/evaluations", h.HandleEvaluations)
	r.Get("/incentive-followups", h.HandleIncentiveFollowups)

	return r
}

// internal/app/features/incentives/routes.go
package incentives

import (
	"github.com/campusworks/researchdesk/internal/app/system/auth"
	"github.com/campusworks/researchdesk/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the incentive endpoints. Typically: r.Mount("/api/incentives", incentives.Routes(h, sm)).
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Post("/claims", h.HandleSubmit)
	r.Get("/claims", h.HandleListMine)
	r.Get("/claims/{id}", h.HandleGet)
	r.Get("/score", h.HandleScore)

	r.Group(func(ar chi.Router) {
		ar.Use(sm.RequireRole(authz.RoleNameCRO, authz.RoleNameAdmin, authz.RoleNameSuperAdmin))
		ar.Get("/claims/pending", h.HandleListPending)
		ar.Post("/claims/{id}/decision", h.HandleDecide)
	})

	return r
}

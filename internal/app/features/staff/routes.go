// internal/app/features/staff/routes.go
package staff

import (
	"github.com/campusworks/researchdesk/internal/app/system/auth"
	"github.com/campusworks/researchdesk/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the staff directory endpoints. Lookup is available to any
// signed-in user (profile setup autofills from it); imports are restricted
// to CRO and admin roles. Typically: r.Mount("/api/staff", staff.Routes(h, sm)).
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Get("/lookup", h.HandleLookup)

	r.Group(func(ar chi.Router) {
		ar.Use(sm.RequireRole(authz.RoleNameCRO, authz.RoleNameAdmin, authz.RoleNameSuperAdmin))
		ar.Post("/import", h.HandleImport)
	})

	return r
}

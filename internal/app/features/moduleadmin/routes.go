// internal/app/features/moduleadmin/routes.go
package moduleadmin

import (
	"github.com/campusworks/researchdesk/internal/app/system/auth"
	"github.com/campusworks/researchdesk/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the account administration endpoints, super admin only.
// Typically: r.Mount("/api/admin", moduleadmin.Routes(h, sm)).
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Use(sm.RequireRole(authz.RoleNameSuperAdmin))

	r.Get("/users", h.HandleListUsers)
	r.Post("/users/{id}/role", h.HandleSetRole)
	r.Post("/users/{id}/modules", h.HandleSetModules)

	return r
}

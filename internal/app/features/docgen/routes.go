// internal/app/features/docgen/routes.go
package docgen

import (
	"github.com/campusworks/researchdesk/internal/app/system/auth"
	"github.com/campusworks/researchdesk/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the document endpoints. Typically: r.Mount("/api/docs", docgen.Routes(h, sm)).
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Get("/claims/{id}", h.HandleClaimApproval)

	r.Group(func(ar chi.Router) {
		ar.Use(sm.RequireRole(authz.RoleNameCRO, authz.RoleNameAdmin, authz.RoleNameSuperAdmin))
		ar.Get("/projects/{id}/sanction", h.HandleProjectSanction)
		ar.Get("/projects/{id}/completion", h.HandleProjectCompletion)
		ar.Get("/applications/{id}/offer", h.HandleOfferLetter)
	})

	return r
}

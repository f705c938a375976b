// internal/app/features/recruitment/routes.go
package recruitment

import (
	"github.com/campusworks/researchdesk/internal/app/system/auth"
	"github.com/campusworks/researchdesk/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the recruitment endpoints. Browsing open postings and
// applying are public; everything else needs a session.
// Typically: r.Mount("/api/recruitment", recruitment.Routes(h, sm)).
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Get("/postings", h.HandleListOpen)
	r.Get("/postings/{id}", h.HandleGetPosting)
	r.Post("/postings/{id}/apply", h.HandleApply)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Post("/postings", h.HandleCreatePosting)
		pr.Get("/postings/mine", h.HandleListMine)
		pr.Get("/postings/{id}/applications", h.HandleListApplications)
		pr.Post("/applications/{id}/status", h.HandleSetApplicationStatus)
	})

	r.Group(func(ar chi.Router) {
		ar.Use(sm.RequireSignedIn)
		ar.Use(sm.RequireRole(authz.RoleNameAdmin, authz.RoleNameSuperAdmin))
		ar.Get("/postings/pending", h.HandleListPendingApproval)
		ar.Post("/postings/{id}/status", h.HandleSetPostingStatus)
	})

	return r
}

// internal/app/features/projects/routes.go
package projects

import (
	"github.com/campusworks/researchdesk/internal/app/system/auth"
	"github.com/campusworks/researchdesk/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the project endpoints. Typically: r.Mount("/api/projects", projects.Routes(h, sm)).
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Post("/", h.HandleCreate)
	r.Get("/", h.HandleList)
	r.Get("/{id}", h.HandleGet)
	r.Put("/{id}", h.HandleUpdate)
	r.Post("/{id}/submit", h.HandleSubmit)
	r.Post("/{id}/evaluation", h.HandleSubmitEvaluation)

	r.Group(func(ar chi.Router) {
		ar.Use(sm.RequireRole(authz.RoleNameCRO, authz.RoleNameAdmin, authz.RoleNameSuperAdmin))
		ar.Post("/{id}/status", h.HandleUpdateStatus)
		ar.Post("/{id}/evaluators", h.HandleAssignEvaluators)
		ar.Post("/{id}/meeting", h.HandleScheduleMeeting)
		ar.Post("/{id}/sanction", h.HandleSetSanction)
		ar.Post("/{id}/disburse", h.HandleDisbursePhase)
		ar.Delete("/{id}", h.HandleDelete)
	})

	return r
}

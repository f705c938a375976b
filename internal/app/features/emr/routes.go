// internal/app/features/emr/routes.go
package emr

import (
	"github.com/campusworks/researchdesk/internal/app/system/auth"
	"github.com/campusworks/researchdesk/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the EMR endpoints. Typically: r.Mount("/api/emr", emr.Routes(h, sm)).
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Get("/calls", h.HandleListCalls)
	r.Get("/calls/{id}", h.HandleGetCall)
	r.Post("/calls/{id}/interest", h.HandleRegisterInterest)
	r.Get("/interests", h.HandleListMyInterests)
	r.Post("/interests/{id}/presentation", h.HandleSetPresentation)
	r.Post("/interests/{id}/status", h.HandleUpdateInterestStatus)

	r.Group(func(ar chi.Router) {
		ar.Use(sm.RequireRole(authz.RoleNameCRO, authz.RoleNameAdmin, authz.RoleNameSuperAdmin))
		ar.Post("/calls", h.HandleCreateCall)
		ar.Put("/calls/{id}", h.HandleUpdateCall)
		ar.Delete("/calls/{id}", h.HandleDeleteCall)
		ar.Post("/calls/{id}/slots", h.HandleSetSlots)
		ar.Get("/calls/{id}/interests", h.HandleListCallInterests)
		ar.Post("/interests/{id}/meeting", h.HandleScheduleInterestMeeting)
		ar.Post("/interests/{id}/sanction", h.HandleSetInterestSanction)
	})

	return r
}

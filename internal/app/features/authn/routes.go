// internal/app/features/authn/routes.go
package authn

import (
	"github.com/campusworks/researchdesk/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the auth endpoints. Typically: r.Mount("/api/auth", authn.Routes(h, sm)).
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Post("/signup", h.HandleSignup)
	r.Post("/login", h.HandleLogin)
	r.Get("/check-user-exists", h.HandleCheckUserExists)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Post("/logout", h.HandleLogout)
		pr.Get("/me", h.HandleMe)
		pr.Post("/profile-setup", h.HandleProfileSetup)
	})

	return r
}

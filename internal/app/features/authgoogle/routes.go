// internal/app/features/authgoogle/routes.go
package authgoogle

import "github.com/go-chi/chi/v5"

// Routes mounts the Google OAuth endpoints.
// Typically: r.Mount("/auth/google", authgoogle.Routes(h))
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeLogin)
	r.Get("/callback", h.ServeCallback)
	return r
}

// internal/app/features/uploads/routes.go
package uploads

import (
	"github.com/campusworks/researchdesk/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the upload endpoints. Typically: r.Mount("/api/uploads", uploads.Routes(h, sm)).
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Post("/{kind}", h.HandleUpload)
	r.Get("/{kind}", h.HandleDownload)

	return r
}

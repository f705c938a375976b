// internal/app/features/recruitment/applications.go
package recruitment

import (
	"context"
	"net/http"
	"strings"

	recruitstore "github.com/campusworks/researchdesk/internal/app/store/recruitments"
	"github.com/campusworks/researchdesk/internal/app/system/authz"
	"github.com/campusworks/researchdesk/internal/app/system/httpjson"
	"github.com/campusworks/researchdesk/internal/app/system/timeouts"
	"github.com/campusworks/researchdesk/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type applicationRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	ResumeURL string `json:"resume_url"`
	CoverNote string `json:"cover_note"`
}

// HandleApply records a candidate's application. No sign-in required:
// applicants are external candidates, not portal users.
// POST /api/recruitment/postings/{id}/apply.
func (h *Handler) HandleApply(w http.ResponseWriter, r *http.Request) {
	var req applicationRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.BadRequest(w, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" {
		httpjson.BadRequest(w, "name and email are required")
		return
	}

	p, done := h.loadPosting(w, r)
	if done {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	created, err := h.Store.Apply(ctx, models.RecruitmentApplication{
		RecruitmentID:  p.ID,
		ApplicantName:  strings.TrimSpace(req.Name),
		ApplicantEmail: req.Email,
		Phone:          req.Phone,
		ResumeURL:      req.ResumeURL,
		CoverNote:      h.sanitize.Sanitize(req.CoverNote),
	})
	if err != nil {
		if err == recruitstore.ErrNotOpen {
			httpjson.Error(w, http.StatusUnprocessableEntity, "posting is not accepting applications")
			return
		}
		h.Log.Error("application failed", zap.Error(err))
		httpjson.ServerError(w, "could not record application")
		return
	}

	h.AuditLog.Event(ctx, "recruitment.apply", "application received", nil, created.ApplicantName,
		map[string]string{"posting_id": p.ID.Hex(), "application_id": created.ID.Hex()})
	httpjson.Created(w, httpjson.Envelope{"application": created})
}

// HandleListApplications returns a posting's applications for its poster or a
// reviewer role. GET /api/recruitment/postings/{id}/applications.
func (h *Handler) HandleListApplications(w http.ResponseWriter, r *http.Request) {
	role, _, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	p, done := h.loadPosting(w, r)
	if done {
		return
	}

	reviewer := role == authz.RoleCRO || role == authz.RoleAdmin || role == authz.RoleSuperAdmin
	if !reviewer && p.PostedByID != userID {
		httpjson.Error(w, http.StatusForbidden, "insufficient privileges")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Store.ListApplications(ctx, p.ID)
	if err != nil {
		h.Log.Error("application list failed", zap.Error(err))
		httpjson.ServerError(w, "could not list applications")
		return
	}
	httpjson.OK(w, httpjson.Envelope{"applications": list})
}

type applicationStatusRequest struct {
	Status string `json:"status"`
}

// HandleSetApplicationStatus moves an application through screening.
// POST /api/recruitment/applications/{id}/status.
func (h *Handler) HandleSetApplicationStatus(w http.ResponseWriter, r *http.Request) {
	_, name, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req applicationStatusRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.BadRequest(w, "invalid request body")
		return
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.BadRequest(w, "invalid application id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Store.SetApplicationStatus(ctx, id, req.Status); err != nil {
		if err == mongo.ErrNoDocuments {
			httpjson.NotFound(w, "application not found")
			return
		}
		httpjson.BadRequest(w, "unknown application status")
		return
	}

	h.AuditLog.Event(ctx, "recruitment.screen", "application status changed", &userID, name,
		map[string]string{"application_id": id.Hex(), "status": req.Status})
	httpjson.OK(w, nil)
}

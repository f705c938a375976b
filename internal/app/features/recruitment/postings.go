// internal/app/features/recruitment/postings.go
package recruitment

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/campusworks/researchdesk/internal/app/system/authz"
	"github.com/campusworks/researchdesk/internal/app/system/httpjson"
	"github.com/campusworks/researchdesk/internal/app/system/timeouts"
	"github.com/campusworks/researchdesk/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type postingRequest struct {
	Title           string    `json:"title"`
	ProjectID       string    `json:"project_id"`
	ProjectTitle    string    `json:"project_title"`
	Qualifications  string    `json:"qualifications"`
	StipendPerMonth float64   `json:"stipend_per_month"`
	ApplyDeadline   time.Time `json:"apply_deadline"`
}

// HandleCreatePosting files a job posting awaiting admin approval.
// POST /api/recruitment/postings.
func (h *Handler) HandleCreatePosting(w http.ResponseWriter, r *http.Request) {
	_, name, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req postingRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.BadRequest(w, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		httpjson.BadRequest(w, "title is required")
		return
	}
	if req.ApplyDeadline.IsZero() || req.ApplyDeadline.Before(time.Now()) {
		httpjson.BadRequest(w, "apply_deadline must be in the future")
		return
	}

	var projectID *primitive.ObjectID
	if req.ProjectID != "" {
		id, err := primitive.ObjectIDFromHex(req.ProjectID)
		if err != nil {
			httpjson.BadRequest(w, "invalid project_id")
			return
		}
		projectID = &id
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	created, err := h.Store.CreatePosting(ctx, models.ProjectRecruitment{
		Title:           strings.TrimSpace(req.Title),
		ProjectID:       projectID,
		ProjectTitle:    req.ProjectTitle,
		PostedByID:      userID,
		PostedByName:    name,
		Qualifications:  h.sanitize.Sanitize(req.Qualifications),
		StipendPerMonth: req.StipendPerMonth,
		ApplyDeadline:   req.ApplyDeadline,
	})
	if err != nil {
		h.Log.Error("posting create failed", zap.Error(err))
		httpjson.ServerError(w, "could not create posting")
		return
	}

	h.AuditLog.Event(ctx, "recruitment.post", "posting filed", &userID, name,
		map[string]string{"posting_id": created.ID.Hex(), "title": created.Title})
	httpjson.Created(w, httpjson.Envelope{"posting": created})
}

// HandleListOpen returns open postings. This endpoint is public so external
// candidates can browse positions. GET /api/recruitment/postings.
func (h *Handler) HandleListOpen(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Store.ListOpen(ctx, time.Now())
	if err != nil {
		h.Log.Error("posting list failed", zap.Error(err))
		httpjson.ServerError(w, "could not list postings")
		return
	}
	httpjson.OK(w, httpjson.Envelope{"postings": list})
}

// HandleListMine returns the caller's own postings in any status.
// GET /api/recruitment/postings/mine.
func (h *Handler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Store.ListByPoster(ctx, userID)
	if err != nil {
		h.Log.Error("posting list failed", zap.Error(err))
		httpjson.ServerError(w, "could not list postings")
		return
	}
	httpjson.OK(w, httpjson.Envelope{"postings": list})
}

// HandleListPendingApproval returns postings awaiting an admin decision.
// GET /api/recruitment/postings/pending.
func (h *Handler) HandleListPendingApproval(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Store.ListPendingApproval(ctx)
	if err != nil {
		h.Log.Error("pending posting list failed", zap.Error(err))
		httpjson.ServerError(w, "could not list pending postings")
		return
	}
	httpjson.OK(w, httpjson.Envelope{"postings": list})
}

// HandleGetPosting returns one posting. Public for open postings; anything
// not yet approved is only visible to its poster and reviewer roles.
// GET /api/recruitment/postings/{id}.
func (h *Handler) HandleGetPosting(w http.ResponseWriter, r *http.Request) {
	p, done := h.loadPosting(w, r)
	if done {
		return
	}

	if p.Status != models.RecruitmentOpen {
		role, _, userID, ok := authz.UserCtx(r)
		reviewer := role == authz.RoleCRO || role == authz.RoleAdmin || role == authz.RoleSuperAdmin
		if !ok || (!reviewer && p.PostedByID != userID) {
			httpjson.NotFound(w, "posting not found")
			return
		}
	}
	httpjson.OK(w, httpjson.Envelope{"posting": p})
}

type postingStatusRequest struct {
	Status string `json:"status"`
}

// HandleSetPostingStatus approves, rejects, or closes a posting.
// POST /api/recruitment/postings/{id}/status.
func (h *Handler) HandleSetPostingStatus(w http.ResponseWriter, r *http.Request) {
	_, name, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req postingStatusRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.BadRequest(w, "invalid request body")
		return
	}

	p, done := h.loadPosting(w, r)
	if done {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Store.SetPostingStatus(ctx, p.ID, req.Status); err != nil {
		if err == mongo.ErrNoDocuments {
			httpjson.NotFound(w, "posting not found")
			return
		}
		httpjson.BadRequest(w, "unknown posting status")
		return
	}

	h.AuditLog.Event(ctx, "recruitment.status", "posting status changed", &userID, name,
		map[string]string{"posting_id": p.ID.Hex(), "status": req.Status})
	httpjson.OK(w, nil)
}

func (h *Handler) loadPosting(w http.ResponseWriter, r *http.Request) (*models.ProjectRecruitment, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.BadRequest(w, "invalid posting id")
		return nil, true
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Store.GetPosting(ctx, id)
	if err == mongo.ErrNoDocuments {
		httpjson.NotFound(w, "posting not found")
		return nil, true
	}
	if err != nil {
		h.Log.Error("posting load failed", zap.Error(err))
		httpjson.ServerError(w, "could not load posting")
		return nil, true
	}
	return p, false
}

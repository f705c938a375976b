// internal/app/features/projects/proposals.go
package projects

import (
	"context"
	"net/http"
	"strings"

	"github.com/campusworks/researchdesk/internal/app/policy/projectpolicy"
	projectstore "github.com/campusworks/researchdesk/internal/app/store/projects"
	"github.com/campusworks/researchdesk/internal/app/system/auth"
	"github.com/campusworks/researchdesk/internal/app/system/authz"
	"github.com/campusworks/researchdesk/internal/app/system/httpjson"
	"github.com/campusworks/researchdesk/internal/app/system/timeouts"
	"github.com/campusworks/researchdesk/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type proposalRequest struct {
	Title     string   `json:"title"`
	Abstract  string   `json:"abstract"`
	CoPIIDs   []string `json:"co_pi_ids"`
	Faculty   string   `json:"faculty"`
	Institute string   `json:"institute"`
}

// HandleCreate creates a draft proposal for the signed-in faculty member.
// POST /api/projects.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_, name, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	su, _ := auth.CurrentUser(r)

	var req proposalRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.BadRequest(w, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		httpjson.BadRequest(w, "title is required")
		return
	}

	coPIs, err := parseObjectIDs(req.CoPIIDs)
	if err != nil {
		httpjson.BadRequest(w, "co_pi_ids contains an invalid id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	created, err := h.Projects.Create(ctx, models.Project{
		Title:     strings.TrimSpace(req.Title),
		Abstract:  h.sanitize.Sanitize(req.Abstract),
		PIID:      userID,
		PIName:    name,
		PIEmail:   su.Email,
		CoPIIDs:   coPIs,
		Faculty:   req.Faculty,
		Institute: req.Institute,
	})
	if err != nil {
		h.Log.Error("project create failed", zap.Error(err))
		httpjson.ServerError(w, "could not create project")
		return
	}

	h.AuditLog.Event(ctx, "project.create", "draft created", &userID, name,
		map[string]string{"project_id": created.ID.Hex()})
	httpjson.Created(w, httpjson.Envelope{"project": created})
}

// HandleList returns projects scoped to the caller's role: faculty see their
// own, evaluators their assignments, and admins/CRO either one status
// (?status=…) or the submitted queue. GET /api/projects.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	role, _, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var (
		list []models.Project
		err  error
	)
	switch role {
	case authz.RoleFaculty:
		list, err = h.Projects.ListByPI(ctx, userID)
	case authz.RoleEvaluator:
		list, err = h.Projects.ListByEvaluator(ctx, userID)
	case authz.RoleCRO, authz.RoleAdmin, authz.RoleSuperAdmin:
		status := r.URL.Query().Get("status")
		if status == "" {
			status = models.ProjectSubmitted
		}
		if !projectpolicy.ValidStatus(status) {
			httpjson.BadRequest(w, "unknown status")
			return
		}
		list, err = h.Projects.ListByStatus(ctx, status)
	default:
		httpjson.Error(w, http.StatusForbidden, "insufficient privileges")
		return
	}
	if err != nil {
		h.Log.Error("project list failed", zap.Error(err))
		httpjson.ServerError(w, "could not list projects")
		return
	}
	httpjson.OK(w, httpjson.Envelope{"projects": list})
}

// HandleGet returns one project if the caller may see it. GET /api/projects/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	role, _, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	p, done := h.loadProject(w, r)
	if done {
		return
	}

	if !canView(role, userID, p) {
		httpjson.Error(w, http.StatusForbidden, "insufficient privileges")
		return
	}
	httpjson.OK(w, httpjson.Envelope{"project": p})
}

// HandleUpdate rewrites the proposal fields while the project is editable.
// PUT /api/projects/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	role, name, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	p, done := h.loadProject(w, r)
	if done {
		return
	}

	if !projectpolicy.CanEdit(role, p.PIID == userID, p.Status) {
		httpjson.Error(w, http.StatusForbidden, "project is not editable")
		return
	}

	var req proposalRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.BadRequest(w, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		httpjson.BadRequest(w, "title is required")
		return
	}
	coPIs, err := parseObjectIDs(req.CoPIIDs)
	if err != nil {
		httpjson.BadRequest(w, "co_pi_ids contains an invalid id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	err = h.Projects.UpdateProposal(ctx, p.ID,
		strings.TrimSpace(req.Title), h.sanitize.Sanitize(req.Abstract), coPIs)
	if err != nil {
		h.Log.Error("project update failed", zap.Error(err))
		httpjson.ServerError(w, "could not update project")
		return
	}

	h.AuditLog.Event(ctx, "project.update", "proposal edited", &userID, name,
		map[string]string{"project_id": p.ID.Hex()})
	httpjson.OK(w, nil)
}

// HandleDelete removes a project. Admin only, and only before work starts.
// DELETE /api/projects/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	role, name, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	p, done := h.loadProject(w, r)
	if done {
		return
	}

	if !projectpolicy.CanDelete(role, p.Status) {
		httpjson.Error(w, http.StatusForbidden, "project cannot be deleted")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if _, err := h.Projects.Delete(ctx, p.ID); err != nil {
		h.Log.Error("project delete failed", zap.Error(err))
		httpjson.ServerError(w, "could not delete project")
		return
	}

	h.AuditLog.Event(ctx, "project.delete", "project deleted", &userID, name,
		map[string]string{"project_id": p.ID.Hex(), "title": p.Title})
	httpjson.OK(w, nil)
}

// loadProject resolves {id} and fetches the project, writing the error
// response itself. done=true means a response was already written.
func (h *Handler) loadProject(w http.ResponseWriter, r *http.Request) (*models.Project, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.BadRequest(w, "invalid project id")
		return nil, true
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Projects.GetByID(ctx, id)
	if err == mongo.ErrNoDocuments {
		httpjson.NotFound(w, "project not found")
		return nil, true
	}
	if err != nil {
		h.Log.Error("project load failed", zap.Error(err))
		httpjson.ServerError(w, "could not load project")
		return nil, true
	}
	return p, false
}

func canView(role authz.Role, userID primitive.ObjectID, p *models.Project) bool {
	switch role {
	case authz.RoleAdmin, authz.RoleSuperAdmin, authz.RoleCRO:
		return true
	case authz.RoleEvaluator:
		return p.HasEvaluator(userID)
	case authz.RoleFaculty:
		if p.PIID == userID {
			return true
		}
		for _, id := range p.CoPIIDs {
			if id == userID {
				return true
			}
		}
	}
	return false
}

func parseObjectIDs(hexes []string) ([]primitive.ObjectID, error) {
	if len(hexes) == 0 {
		return nil, nil
	}
	out := make([]primitive.ObjectID, 0, len(hexes))
	for _, s := range hexes {
		id, err := primitive.ObjectIDFromHex(s)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

// statusConflict maps the store's compare-and-set failure to a 409.
func statusConflict(w http.ResponseWriter, err error) bool {
	if err == projectstore.ErrStatusConflict {
		httpjson.Conflict(w, "project status changed, reload and retry")
		return true
	}
	return false
}

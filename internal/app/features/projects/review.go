// internal/app/features/projects/review.go
package projects

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/campusworks/researchdesk/internal/app/policy/projectpolicy"
	"github.com/campusworks/researchdesk/internal/app/system/authz"
	"github.com/campusworks/researchdesk/internal/app/system/httpjson"
	"github.com/campusworks/researchdesk/internal/app/system/timeouts"
	"github.com/campusworks/researchdesk/internal/domain/models"
	"go.uber.org/zap"
)

// HandleSubmit moves the caller's own draft into the review queue.
// POST /api/projects/{id}/submit.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	role, name, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	p, done := h.loadProject(w, r)
	if done {
		return
	}

	if !projectpolicy.CanActorTransition(role, p.PIID == userID, p.Status, models.ProjectSubmitted) {
		httpjson.Error(w, http.StatusForbidden, "project cannot be submitted")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Projects.TransitionStatus(ctx, p.ID, p.Status, models.ProjectSubmitted); err != nil {
		if statusConflict(w, err) {
			return
		}
		h.Log.Error("project submit failed", zap.Error(err))
		httpjson.ServerError(w, "could not submit project")
		return
	}

	h.AuditLog.Event(ctx, "project.submit", "proposal submitted", &userID, name,
		map[string]string{"project_id": p.ID.Hex()})
	httpjson.OK(w, httpjson.Envelope{"status": models.ProjectSubmitted})
}

type statusRequest struct {
	Status string `json:"status"`
}

// HandleUpdateStatus applies a review-side status transition.
// POST /api/projects/{id}/status.
func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	role, name, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req statusRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.BadRequest(w, "invalid request body")
		return
	}
	if !projectpolicy.ValidStatus(req.Status) {
		httpjson.BadRequest(w, "unknown status")
		return
	}

	p, done := h.loadProject(w, r)
	if done {
		return
	}

	if !projectpolicy.CanActorTransition(role, p.PIID == userID, p.Status, req.Status) {
		httpjson.Error(w, http.StatusForbidden,
			fmt.Sprintf("cannot move project from %q to %q", p.Status, req.Status))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Projects.TransitionStatus(ctx, p.ID, p.Status, req.Status); err != nil {
		if statusConflict(w, err) {
			return
		}
		h.Log.Error("status transition failed", zap.Error(err))
		httpjson.ServerError(w, "could not update status")
		return
	}

	h.AuditLog.Event(ctx, "project.status", "status changed", &userID, name,
		map[string]string{"project_id": p.ID.Hex(), "from": p.Status, "to": req.Status})
	httpjson.OK(w, httpjson.Envelope{"status": req.Status})
}

type evaluatorsRequest struct {
	EvaluatorIDs []string `json:"evaluator_ids"`
}

// HandleAssignEvaluators sets the evaluator panel. Each ID must belong to a
// user with the evaluator role. POST /api/projects/{id}/evaluators.
func (h *Handler) HandleAssignEvaluators(w http.ResponseWriter, r *http.Request) {
	_, name, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req evaluatorsRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.BadRequest(w, "invalid request body")
		return
	}
	ids, err := parseObjectIDs(req.EvaluatorIDs)
	if err != nil || len(ids) == 0 {
		httpjson.BadRequest(w, "evaluator_ids must be a non-empty list of ids")
		return
	}

	p, done := h.loadProject(w, r)
	if done {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	for _, id := range ids {
		u, err := h.Users.GetByID(ctx, id)
		if err != nil || authz.ParseRole(u.Role) != authz.RoleEvaluator {
			httpjson.BadRequest(w, "evaluator_ids must reference evaluator accounts")
			return
		}
	}

	if err := h.Projects.AssignEvaluators(ctx, p.ID, ids); err != nil {
		h.Log.Error("assign evaluators failed", zap.Error(err))
		httpjson.ServerError(w, "could not assign evaluators")
		return
	}

	h.AuditLog.Event(ctx, "project.evaluators", "evaluator panel assigned", &userID, name,
		map[string]string{"project_id": p.ID.Hex()})
	httpjson.OK(w, nil)
}

type meetingRequest struct {
	Date  time.Time `json:"date"`
	Time  string    `json:"time"`
	Venue string    `json:"venue"`
}

// HandleScheduleMeeting books the evaluation meeting and notifies the PI in
// one transaction. POST /api/projects/{id}/meeting.
func (h *Handler) HandleScheduleMeeting(w http.ResponseWriter, r *http.Request) {
	_, name, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req meetingRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.BadRequest(w, "invalid request body")
		return
	}
	if req.Date.IsZero() {
		httpjson.BadRequest(w, "date is required")
		return
	}

	p, done := h.loadProject(w, r)
	if done {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	slot := models.MeetingSlot{Date: req.Date, Time: req.Time, Venue: req.Venue}
	msg := fmt.Sprintf("Evaluation meeting for %q scheduled on %s", p.Title, req.Date.Format("02 Jan 2006"))
	if err := h.Projects.ScheduleMeeting(ctx, p, slot, msg); err != nil {
		h.Log.Error("schedule meeting failed", zap.Error(err))
		httpjson.ServerError(w, "could not schedule meeting")
		return
	}

	h.AuditLog.Event(ctx, "project.meeting", "evaluation meeting scheduled", &userID, name,
		map[string]string{"project_id": p.ID.Hex(), "date": req.Date.Format("2006-01-02")})
	httpjson.OK(w, nil)
}

type evaluationRequest struct {
	Comments    string `json:"comments"`
	Recommended bool   `json:"recommended"`
}

// HandleSubmitEvaluation records the signed-in evaluator's verdict.
// POST /api/projects/{id}/evaluation.
func (h *Handler) HandleSubmitEvaluation(w http.ResponseWriter, r *http.Request) {
	_, name, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	p, done := h.loadProject(w, r)
	if done {
		return
	}

	if !p.HasEvaluator(userID) {
		httpjson.Error(w, http.StatusForbidden, "not assigned to this project")
		return
	}

	var req evaluationRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.BadRequest(w, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	ev := models.Evaluation{
		EvaluatorID: userID,
		Comments:    req.Comments,
		Recommended: req.Recommended,
		SubmittedAt: time.Now(),
	}
	if err := h.Projects.AddEvaluation(ctx, p.ID, ev); err != nil {
		h.Log.Error("evaluation submit failed", zap.Error(err))
		httpjson.ServerError(w, "could not record evaluation")
		return
	}

	h.AuditLog.Event(ctx, "project.evaluation", "evaluation recorded", &userID, name,
		map[string]string{"project_id": p.ID.Hex()})
	httpjson.OK(w, nil)
}

type sanctionRequest struct {
	Amount float64 `json:"amount"`
	Phases []struct {
		Name   string  `json:"name"`
		Amount float64 `json:"amount"`
	} `json:"phases"`
}

// HandleSetSanction records the sanctioned amount and disbursement phases.
// POST /api/projects/{id}/sanction.
func (h *Handler) HandleSetSanction(w http.ResponseWriter, r *http.Request) {
	_, name, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req sanctionRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.BadRequest(w, "invalid request body")
		return
	}
	if req.Amount <= 0 {
		httpjson.BadRequest(w, "amount must be positive")
		return
	}

	p, done := h.loadProject(w, r)
	if done {
		return
	}

	phases := make([]models.GrantPhase, 0, len(req.Phases))
	for _, ph := range req.Phases {
		phases = append(phases, models.GrantPhase{Name: ph.Name, Amount: ph.Amount})
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Projects.SetSanction(ctx, p.ID, req.Amount, phases); err != nil {
		h.Log.Error("set sanction failed", zap.Error(err))
		httpjson.ServerError(w, "could not record sanction")
		return
	}

	h.AuditLog.Event(ctx, "project.sanction", "grant sanctioned", &userID, name,
		map[string]string{"project_id": p.ID.Hex()})
	httpjson.OK(w, nil)
}

type disburseRequest struct {
	Phase string `json:"phase"`
}

// HandleDisbursePhase stamps a grant phase as disbursed.
// POST /api/projects/{id}/disburse.
func (h *Handler) HandleDisbursePhase(w http.ResponseWriter, r *http.Request) {
	_, name, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req disburseRequest
	if err := httpjson.Decode(r, &req); err != nil || req.Phase == "" {
		httpjson.BadRequest(w, "phase is required")
		return
	}

	p, done := h.loadProject(w, r)
	if done {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Projects.MarkPhaseDisbursed(ctx, p.ID, req.Phase); err != nil {
		httpjson.NotFound(w, "phase not found")
		return
	}

	h.AuditLog.Event(ctx, "project.disburse", "grant phase disbursed", &userID, name,
		map[string]string{"project_id": p.ID.Hex(), "phase": req.Phase})
	httpjson.OK(w, nil)
}

// internal/app/features/docgen/docs.go
package docgen

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"github.com/campusworks/researchdesk/internal/app/system/authz"
	"github.com/campusworks/researchdesk/internal/app/system/docrender"
	"github.com/campusworks/researchdesk/internal/app/system/httpjson"
	"github.com/campusworks/researchdesk/internal/app/system/timeouts"
	"github.com/campusworks/researchdesk/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const letterDate = "02 January 2006"

// HandleClaimApproval renders the incentive approval office note for a
// claim. GET /api/docs/claims/{id}.
func (h *Handler) HandleClaimApproval(w http.ResponseWriter, r *http.Request) {
	role, _, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.BadRequest(w, "invalid claim id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	c, err := h.Claims.GetByID(ctx, id)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			httpjson.NotFound(w, "claim not found")
			return
		}
		httpjson.ServerError(w, "could not load claim")
		return
	}

	if c.UserID != userID && !reviewerRole(role) {
		httpjson.Error(w, http.StatusForbidden, "you cannot generate documents for this claim")
		return
	}

	values := map[string]string{
		"faculty_name": c.UserName,
		"email":        c.UserEmail,
		"claim_type":   c.ClaimType,
		"item_title":   claimItemTitle(c),
		"claim_year":   fmt.Sprintf("%d", c.ClaimYear),
		"status":       c.Status,
		"points":       fmt.Sprintf("%.1f", c.AcceptedPoints),
		"remarks":      c.AdminRemarks,
		"date":         time.Now().Format(letterDate),
	}
	if u, err := h.Users.GetByID(ctx, c.UserID); err == nil {
		values["designation"] = u.Designation
		values["department"] = u.Department
		values["institute"] = u.Institute
	}

	h.respond(w, r, docrender.FormIncentiveApproval, values, c.ID.Hex()[:8])
}

// HandleProjectSanction renders the grant sanction letter for a project.
// GET /api/docs/projects/{id}/sanction.
func (h *Handler) HandleProjectSanction(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadProject(w, r)
	if !ok {
		return
	}
	if p.SanctionedAmount <= 0 {
		httpjson.Error(w, http.StatusUnprocessableEntity, "project has no sanctioned grant")
		return
	}

	values := map[string]string{
		"pi_name":           p.PIName,
		"pi_email":          p.PIEmail,
		"project_title":     p.Title,
		"institute":         p.Institute,
		"sanctioned_amount": formatRupees(p.SanctionedAmount),
		"phases":            phaseSummary(p.GrantPhases),
		"date":              time.Now().Format(letterDate),
	}
	h.respond(w, r, docrender.FormProjectSanction, values, p.ID.Hex()[:8])
}

// HandleProjectCompletion renders the completion certificate.
// GET /api/docs/projects/{id}/completion.
func (h *Handler) HandleProjectCompletion(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadProject(w, r)
	if !ok {
		return
	}
	if p.Status != models.ProjectCompleted {
		httpjson.Error(w, http.StatusUnprocessableEntity, "project is not completed")
		return
	}

	values := map[string]string{
		"pi_name":           p.PIName,
		"project_title":     p.Title,
		"institute":         p.Institute,
		"sanctioned_amount": formatRupees(p.SanctionedAmount),
		"date":              time.Now().Format(letterDate),
	}
	h.respond(w, r, docrender.FormProjectCompletion, values, p.ID.Hex()[:8])
}

// HandleOfferLetter renders the offer letter for a selected applicant.
// GET /api/docs/applications/{id}/offer.
func (h *Handler) HandleOfferLetter(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.BadRequest(w, "invalid application id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	a, err := h.Recruits.GetApplication(ctx, id)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			httpjson.NotFound(w, "application not found")
			return
		}
		httpjson.ServerError(w, "could not load application")
		return
	}
	if a.Status != models.ApplicationSelected {
		httpjson.Error(w, http.StatusUnprocessableEntity, "applicant has not been selected")
		return
	}

	values := map[string]string{
		"applicant_name": a.ApplicantName,
		"date":           time.Now().Format(letterDate),
	}
	if p, err := h.Recruits.GetPosting(ctx, a.RecruitmentID); err == nil {
		values["posting_title"] = p.Title
		values["project_title"] = p.ProjectTitle
		values["stipend"] = formatRupees(p.StipendPerMonth)
	}

	h.respond(w, r, docrender.FormRecruitmentOffer, values, a.ID.Hex()[:8])
}

func (h *Handler) loadProject(w http.ResponseWriter, r *http.Request) (*models.Project, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.BadRequest(w, "invalid project id")
		return nil, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, err := h.Projects.GetByID(ctx, id)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			httpjson.NotFound(w, "project not found")
			return nil, false
		}
		httpjson.ServerError(w, "could not load project")
		return nil, false
	}
	return p, true
}

func reviewerRole(role authz.Role) bool {
	return role == authz.RoleCRO || role == authz.RoleAdmin || role == authz.RoleSuperAdmin
}

func claimItemTitle(c *models.IncentiveClaim) string {
	switch c.ClaimType {
	case models.ClaimResearchPaper:
		return c.PaperTitle
	case models.ClaimPatent:
		return c.PatentTitle
	case models.ClaimBook:
		return c.BookTitle
	case models.ClaimConference:
		return c.ConferenceName
	case models.ClaimMembership:
		return c.MembershipBody
	default:
		return ""
	}
}

func phaseSummary(phases []models.GrantPhase) string {
	if len(phases) == 0 {
		return ""
	}
	summary := ""
	for i, ph := range phases {
		if i > 0 {
			summary += "; "
		}
		summary += fmt.Sprintf("%s: %s", ph.Name, formatRupees(ph.Amount))
	}
	return summary
}

func formatRupees(amount float64) string {
	if amount <= 0 {
		return ""
	}
	return fmt.Sprintf("Rs. %.2f", amount)
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, form docrender.Form, values map[string]string, ref string) {
	data, err := h.Renderer.Render(form, values)
	if err != nil {
		h.Log.Error("document render failed",
			zap.String("form", string(form)), zap.Error(err))
		httpjson.ServerError(w, "could not render document")
		return
	}

	_, name, userID, _ := authz.UserCtx(r)
	h.AuditLog.Event(r.Context(), "docgen.render", "document rendered", &userID, name,
		map[string]string{"form": string(form), "ref": ref})

	httpjson.OK(w, httpjson.Envelope{
		"file_name": docrender.FileName(form, ref),
		"data":      base64.StdEncoding.EncodeToString(data),
	})
}

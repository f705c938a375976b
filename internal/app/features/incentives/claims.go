// internal/app/features/incentives/claims.go
package incentives

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/campusworks/researchdesk/internal/app/policy/arpspolicy"
	claimstore "github.com/campusworks/researchdesk/internal/app/store/claims"
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

type claimRequest struct {
	ClaimType string `json:"claim_type"`
	ClaimYear int    `json:"claim_year"`

	PaperTitle     string `json:"paper_title"`
	JournalName    string `json:"journal_name"`
	Quartile       string `json:"quartile"`
	IndexedIn      string `json:"indexed_in"`
	AuthorType     string `json:"author_type"`
	AuthorPosition int    `json:"author_position"`
	DOI            string `json:"doi"`

	PatentTitle       string `json:"patent_title"`
	PatentStatus      string `json:"patent_status"`
	PatentLocale      string `json:"patent_locale"`
	FiledInPuName     bool   `json:"filed_in_pu_name"`
	IsPuSoleApplicant bool   `json:"is_pu_sole_applicant"`

	BookTitle string `json:"book_title"`
	BookType  string `json:"book_type"`
	Publisher string `json:"publisher"`
	ISBN      string `json:"isbn"`

	ConferenceName  string `json:"conference_name"`
	ConferenceVenue string `json:"conference_venue"`

	MembershipBody string  `json:"membership_body"`
	MembershipFee  float64 `json:"membership_fee"`

	APCAmount float64 `json:"apc_amount"`

	ProofURL string `json:"proof_url"`
}

// HandleSubmit files a new incentive claim for the signed-in faculty member.
// POST /api/incentives/claims.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	_, name, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	su, _ := auth.CurrentUser(r)

	var req claimRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.BadRequest(w, "invalid request body")
		return
	}
	if strings.TrimSpace(req.ClaimType) == "" {
		httpjson.BadRequest(w, "claim_type is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	created, err := h.Claims.Create(ctx, models.IncentiveClaim{
		UserID:    userID,
		UserName:  name,
		UserEmail: su.Email,
		ClaimType: req.ClaimType,
		ClaimYear: req.ClaimYear,

		PaperTitle:     req.PaperTitle,
		JournalName:    req.JournalName,
		Quartile:       req.Quartile,
		IndexedIn:      req.IndexedIn,
		AuthorType:     req.AuthorType,
		AuthorPosition: req.AuthorPosition,
		DOI:            req.DOI,

		PatentTitle:       req.PatentTitle,
		PatentStatus:      req.PatentStatus,
		PatentLocale:      req.PatentLocale,
		FiledInPuName:     req.FiledInPuName,
		IsPuSoleApplicant: req.IsPuSoleApplicant,

		BookTitle: req.BookTitle,
		BookType:  req.BookType,
		Publisher: req.Publisher,
		ISBN:      req.ISBN,

		ConferenceName:  req.ConferenceName,
		ConferenceVenue: req.ConferenceVenue,

		MembershipBody: req.MembershipBody,
		MembershipFee:  req.MembershipFee,

		APCAmount: req.APCAmount,
		ProofURL:  req.ProofURL,
	})
	if err != nil {
		httpjson.BadRequest(w, "unknown claim type")
		return
	}

	h.AuditLog.Event(ctx, "incentive.submit", "claim filed", &userID, name,
		map[string]string{"claim_id": created.ID.Hex(), "claim_type": created.ClaimType})
	httpjson.Created(w, httpjson.Envelope{"claim": created})
}

// HandleListMine returns the caller's own claims, newest first. ?year=
// restricts to one claim year. GET /api/incentives/claims.
func (h *Handler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	year := 0
	if s := r.URL.Query().Get("year"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			httpjson.BadRequest(w, "year must be a number")
			return
		}
		year = n
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Claims.ListByUser(ctx, userID, year)
	if err != nil {
		h.Log.Error("claim list failed", zap.Error(err))
		httpjson.ServerError(w, "could not list claims")
		return
	}
	httpjson.OK(w, httpjson.Envelope{"claims": list})
}

// HandleListPending returns the admin review queue, oldest first.
// GET /api/incentives/claims/pending.
func (h *Handler) HandleListPending(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Claims.ListPending(ctx)
	if err != nil {
		h.Log.Error("pending claim list failed", zap.Error(err))
		httpjson.ServerError(w, "could not list pending claims")
		return
	}
	httpjson.OK(w, httpjson.Envelope{"claims": list})
}

// HandleGet returns one claim: its owner or any reviewer role.
// GET /api/incentives/claims/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	role, _, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	c, done := h.loadClaim(w, r)
	if done {
		return
	}

	if c.UserID != userID {
		switch role {
		case authz.RoleAdmin, authz.RoleSuperAdmin, authz.RoleCRO:
		default:
			httpjson.Error(w, http.StatusForbidden, "insufficient privileges")
			return
		}
	}
	httpjson.OK(w, httpjson.Envelope{"claim": c})
}

type decisionRequest struct {
	Status  string   `json:"status"`
	Points  *float64 `json:"points"`
	Remarks string   `json:"remarks"`
}

// HandleDecide accepts or rejects a pending claim. When accepting without an
// explicit points value, the current incentive table prices the claim; the
// result is frozen on the document either way.
// POST /api/incentives/claims/{id}/decision.
func (h *Handler) HandleDecide(w http.ResponseWriter, r *http.Request) {
	_, name, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req decisionRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.BadRequest(w, "invalid request body")
		return
	}
	if req.Status != models.ClaimAccepted && req.Status != models.ClaimRejected {
		httpjson.BadRequest(w, `status must be "Accepted" or "Rejected"`)
		return
	}

	c, done := h.loadClaim(w, r)
	if done {
		return
	}

	var points float64
	if req.Status == models.ClaimAccepted {
		if req.Points != nil {
			points = *req.Points
		} else {
			points = suggestedPoints(*c)
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Claims.Decide(ctx, c.ID, req.Status, points, req.Remarks); err != nil {
		if err == claimstore.ErrAlreadyDecided {
			httpjson.Conflict(w, "claim has already been decided")
			return
		}
		h.Log.Error("claim decision failed", zap.Error(err))
		httpjson.ServerError(w, "could not record decision")
		return
	}

	h.AuditLog.Event(ctx, "incentive.decide", "claim decided", &userID, name,
		map[string]string{"claim_id": c.ID.Hex(), "status": req.Status})
	httpjson.OK(w, httpjson.Envelope{"status": req.Status, "points": points})
}

// suggestedPoints prices a claim with the scoring table. Membership and APC
// claims are reimbursements, not scored research output.
func suggestedPoints(c models.IncentiveClaim) float64 {
	switch c.ClaimType {
	case models.ClaimResearchPaper, models.ClaimBook, models.ClaimConference:
		return arpspolicy.PublicationPoints(c)
	case models.ClaimPatent:
		return arpspolicy.PatentPoints(c)
	}
	return 0
}

func (h *Handler) loadClaim(w http.ResponseWriter, r *http.Request) (*models.IncentiveClaim, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.BadRequest(w, "invalid claim id")
		return nil, true
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	c, err := h.Claims.GetByID(ctx, id)
	if err == mongo.ErrNoDocuments {
		httpjson.NotFound(w, "claim not found")
		return nil, true
	}
	if err != nil {
		h.Log.Error("claim load failed", zap.Error(err))
		httpjson.ServerError(w, "could not load claim")
		return nil, true
	}
	return c, false
}

// internal/app/features/emr/interests.go
package emr

import (
	"context"
	"net/http"
	"strings"
	"time"

	intereststore "github.com/campusworks/researchdesk/internal/app/store/emrinterests"
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

type interestRequest struct {
	Institute string `json:"institute"`
	IsPI      bool   `json:"is_pi"`
}

// HandleRegisterInterest registers the caller's interest in a funding call.
// Registering twice for the same call is a conflict, not a second document.
// POST /api/emr/calls/{id}/interest.
func (h *Handler) HandleRegisterInterest(w http.ResponseWriter, r *http.Request) {
	_, name, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	su, _ := auth.CurrentUser(r)

	var req interestRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.BadRequest(w, "invalid request body")
		return
	}

	fc, done := h.loadCall(w, r)
	if done {
		return
	}
	if time.Now().After(fc.InterestDeadline) {
		httpjson.Error(w, http.StatusUnprocessableEntity, "interest deadline has passed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	created, err := h.Interests.Register(ctx, models.EmrInterest{
		CallID:    fc.ID,
		UserID:    userID,
		UserName:  name,
		UserEmail: su.Email,
		Institute: req.Institute,
		IsPI:      req.IsPI,
	})
	if err != nil {
		if err == intereststore.ErrAlreadyRegistered {
			httpjson.Conflict(w, "interest already registered for this call")
			return
		}
		h.Log.Error("interest register failed", zap.Error(err))
		httpjson.ServerError(w, "could not register interest")
		return
	}

	h.AuditLog.Event(ctx, "emr.interest.register", "interest registered", &userID, name,
		map[string]string{"call_id": fc.ID.Hex(), "interest_id": created.ID.Hex()})
	httpjson.Created(w, httpjson.Envelope{"interest": created})
}

// HandleListMyInterests returns the caller's registrations across calls.
// GET /api/emr/interests.
func (h *Handler) HandleListMyInterests(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Interests.ListByUser(ctx, userID)
	if err != nil {
		h.Log.Error("interest list failed", zap.Error(err))
		httpjson.ServerError(w, "could not list interests")
		return
	}
	httpjson.OK(w, httpjson.Envelope{"interests": list})
}

// HandleListCallInterests returns every registration for one call.
// GET /api/emr/calls/{id}/interests.
func (h *Handler) HandleListCallInterests(w http.ResponseWriter, r *http.Request) {
	fc, done := h.loadCall(w, r)
	if done {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Interests.ListByCall(ctx, fc.ID)
	if err != nil {
		h.Log.Error("interest list failed", zap.Error(err))
		httpjson.ServerError(w, "could not list interests")
		return
	}
	httpjson.OK(w, httpjson.Envelope{"interests": list})
}

type interestMeetingRequest struct {
	Date  time.Time `json:"date"`
	Time  string    `json:"time"`
	Venue string    `json:"venue"`
}

// HandleScheduleInterestMeeting books a presentation slot for one
// registration. POST /api/emr/interests/{id}/meeting.
func (h *Handler) HandleScheduleInterestMeeting(w http.ResponseWriter, r *http.Request) {
	_, name, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req interestMeetingRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.BadRequest(w, "invalid request body")
		return
	}
	if req.Date.IsZero() {
		httpjson.BadRequest(w, "date is required")
		return
	}

	in, done := h.loadInterest(w, r)
	if done {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	slot := models.MeetingSlot{Date: req.Date, Time: req.Time, Venue: req.Venue}
	if err := h.Interests.ScheduleMeeting(ctx, in.ID, slot); err != nil {
		h.Log.Error("interest meeting failed", zap.Error(err))
		httpjson.ServerError(w, "could not schedule meeting")
		return
	}

	h.AuditLog.Event(ctx, "emr.interest.meeting", "presentation slot booked", &userID, name,
		map[string]string{"interest_id": in.ID.Hex(), "date": req.Date.Format("2006-01-02")})
	httpjson.OK(w, nil)
}

type presentationRequest struct {
	URL string `json:"url"`
}

// HandleSetPresentation records the uploaded presentation file for the
// caller's own registration. POST /api/emr/interests/{id}/presentation.
func (h *Handler) HandleSetPresentation(w http.ResponseWriter, r *http.Request) {
	_, name, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req presentationRequest
	if err := httpjson.Decode(r, &req); err != nil || strings.TrimSpace(req.URL) == "" {
		httpjson.BadRequest(w, "url is required")
		return
	}

	in, done := h.loadInterest(w, r)
	if done {
		return
	}
	if in.UserID != userID {
		httpjson.Error(w, http.StatusForbidden, "not your registration")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Interests.SetPresentation(ctx, in.ID, strings.TrimSpace(req.URL)); err != nil {
		h.Log.Error("presentation update failed", zap.Error(err))
		httpjson.ServerError(w, "could not record presentation")
		return
	}

	h.AuditLog.Event(ctx, "emr.interest.presentation", "presentation uploaded", &userID, name,
		map[string]string{"interest_id": in.ID.Hex()})
	httpjson.OK(w, nil)
}

type interestStatusRequest struct {
	Status string `json:"status"`
}

// HandleUpdateInterestStatus moves a registration through its review states.
// Owners may only withdraw; reviewer roles may set any status.
// POST /api/emr/interests/{id}/status.
func (h *Handler) HandleUpdateInterestStatus(w http.ResponseWriter, r *http.Request) {
	role, name, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req interestStatusRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.BadRequest(w, "invalid request body")
		return
	}

	in, done := h.loadInterest(w, r)
	if done {
		return
	}

	reviewer := role == authz.RoleCRO || role == authz.RoleAdmin || role == authz.RoleSuperAdmin
	if !reviewer {
		if in.UserID != userID || req.Status != models.InterestWithdrawn {
			httpjson.Error(w, http.StatusForbidden, "insufficient privileges")
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Interests.UpdateStatus(ctx, in.ID, req.Status); err != nil {
		if err == mongo.ErrNoDocuments {
			httpjson.NotFound(w, "registration not found")
			return
		}
		httpjson.BadRequest(w, "unknown interest status")
		return
	}

	h.AuditLog.Event(ctx, "emr.interest.status", "interest status changed", &userID, name,
		map[string]string{"interest_id": in.ID.Hex(), "status": req.Status})
	httpjson.OK(w, nil)
}

type interestSanctionRequest struct {
	Amount float64 `json:"amount"`
}

// HandleSetInterestSanction records that the agency sanctioned the proposal.
// POST /api/emr/interests/{id}/sanction.
func (h *Handler) HandleSetInterestSanction(w http.ResponseWriter, r *http.Request) {
	_, name, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req interestSanctionRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.BadRequest(w, "invalid request body")
		return
	}
	if req.Amount <= 0 {
		httpjson.BadRequest(w, "amount must be positive")
		return
	}

	in, done := h.loadInterest(w, r)
	if done {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Interests.SetSanction(ctx, in.ID, req.Amount); err != nil {
		h.Log.Error("sanction update failed", zap.Error(err))
		httpjson.ServerError(w, "could not record sanction")
		return
	}

	h.AuditLog.Event(ctx, "emr.interest.sanction", "grant sanctioned", &userID, name,
		map[string]string{"interest_id": in.ID.Hex()})
	httpjson.OK(w, nil)
}

func (h *Handler) loadInterest(w http.ResponseWriter, r *http.Request) (*models.EmrInterest, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.BadRequest(w, "invalid registration id")
		return nil, true
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	in, err := h.Interests.GetByID(ctx, id)
	if err == mongo.ErrNoDocuments {
		httpjson.NotFound(w, "registration not found")
		return nil, true
	}
	if err != nil {
		h.Log.Error("registration load failed", zap.Error(err))
		httpjson.ServerError(w, "could not load registration")
		return nil, true
	}
	return in, false
}

// internal/app/features/emr/calls.go
package emr

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

type callRequest struct {
	Title            string    `json:"title"`
	Agency           string    `json:"agency"`
	Description      string    `json:"description"`
	DetailsURL       string    `json:"details_url"`
	InterestDeadline time.Time `json:"interest_deadline"`
}

// HandleCreateCall announces a new funding call. POST /api/emr/calls.
func (h *Handler) HandleCreateCall(w http.ResponseWriter, r *http.Request) {
	_, name, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req callRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.BadRequest(w, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Agency) == "" {
		httpjson.BadRequest(w, "title and agency are required")
		return
	}
	if req.InterestDeadline.IsZero() {
		httpjson.BadRequest(w, "interest_deadline is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	created, err := h.Calls.Create(ctx, models.FundingCall{
		Title:            strings.TrimSpace(req.Title),
		Agency:           strings.TrimSpace(req.Agency),
		Description:      h.sanitize.Sanitize(req.Description),
		DetailsURL:       req.DetailsURL,
		InterestDeadline: req.InterestDeadline,
		CreatedByID:      userID,
	})
	if err != nil {
		h.Log.Error("funding call create failed", zap.Error(err))
		httpjson.ServerError(w, "could not create funding call")
		return
	}

	h.AuditLog.Event(ctx, "emr.call.create", "funding call announced", &userID, name,
		map[string]string{"call_id": created.ID.Hex(), "title": created.Title})
	httpjson.Created(w, httpjson.Envelope{"call": created})
}

// HandleListCalls returns funding calls. Default is calls still open for
// interest; ?all=true returns everything for admin screens.
// GET /api/emr/calls.
func (h *Handler) HandleListCalls(w http.ResponseWriter, r *http.Request) {
	role, _, _, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var (
		list []models.FundingCall
		err  error
	)
	all := r.URL.Query().Get("all") == "true"
	switch {
	case all && (role == authz.RoleCRO || role == authz.RoleAdmin || role == authz.RoleSuperAdmin):
		list, err = h.Calls.ListAll(ctx)
	default:
		list, err = h.Calls.ListOpen(ctx, time.Now())
	}
	if err != nil {
		h.Log.Error("funding call list failed", zap.Error(err))
		httpjson.ServerError(w, "could not list funding calls")
		return
	}
	httpjson.OK(w, httpjson.Envelope{"calls": list})
}

// HandleGetCall returns one funding call. GET /api/emr/calls/{id}.
func (h *Handler) HandleGetCall(w http.ResponseWriter, r *http.Request) {
	fc, done := h.loadCall(w, r)
	if done {
		return
	}
	httpjson.OK(w, httpjson.Envelope{"call": fc})
}

// HandleUpdateCall rewrites a funding call's announcement fields.
// PUT /api/emr/calls/{id}.
func (h *Handler) HandleUpdateCall(w http.ResponseWriter, r *http.Request) {
	_, name, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req callRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.BadRequest(w, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Agency) == "" {
		httpjson.BadRequest(w, "title and agency are required")
		return
	}

	fc, done := h.loadCall(w, r)
	if done {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	err := h.Calls.Update(ctx, fc.ID,
		strings.TrimSpace(req.Title), strings.TrimSpace(req.Agency),
		h.sanitize.Sanitize(req.Description), req.DetailsURL, req.InterestDeadline)
	if err != nil {
		h.Log.Error("funding call update failed", zap.Error(err))
		httpjson.ServerError(w, "could not update funding call")
		return
	}

	h.AuditLog.Event(ctx, "emr.call.update", "funding call edited", &userID, name,
		map[string]string{"call_id": fc.ID.Hex()})
	httpjson.OK(w, nil)
}

type slotsRequest struct {
	Slots []struct {
		Date  time.Time `json:"date"`
		Time  string    `json:"time"`
		Venue string    `json:"venue"`
	} `json:"slots"`
}

// HandleSetSlots publishes the presentation meeting slots offered for a call.
// POST /api/emr/calls/{id}/slots.
func (h *Handler) HandleSetSlots(w http.ResponseWriter, r *http.Request) {
	_, name, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req slotsRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.BadRequest(w, "invalid request body")
		return
	}

	fc, done := h.loadCall(w, r)
	if done {
		return
	}

	slots := make([]models.MeetingSlot, 0, len(req.Slots))
	for _, s := range req.Slots {
		if s.Date.IsZero() {
			httpjson.BadRequest(w, "every slot needs a date")
			return
		}
		slots = append(slots, models.MeetingSlot{Date: s.Date, Time: s.Time, Venue: s.Venue})
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Calls.SetMeetingSlots(ctx, fc.ID, slots); err != nil {
		h.Log.Error("slot update failed", zap.Error(err))
		httpjson.ServerError(w, "could not set meeting slots")
		return
	}

	h.AuditLog.Event(ctx, "emr.call.slots", "meeting slots published", &userID, name,
		map[string]string{"call_id": fc.ID.Hex()})
	httpjson.OK(w, nil)
}

// HandleDeleteCall removes a funding call. DELETE /api/emr/calls/{id}.
func (h *Handler) HandleDeleteCall(w http.ResponseWriter, r *http.Request) {
	_, name, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	fc, done := h.loadCall(w, r)
	if done {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if _, err := h.Calls.Delete(ctx, fc.ID); err != nil {
		h.Log.Error("funding call delete failed", zap.Error(err))
		httpjson.ServerError(w, "could not delete funding call")
		return
	}

	h.AuditLog.Event(ctx, "emr.call.delete", "funding call deleted", &userID, name,
		map[string]string{"call_id": fc.ID.Hex(), "title": fc.Title})
	httpjson.OK(w, nil)
}

func (h *Handler) loadCall(w http.ResponseWriter, r *http.Request) (*models.FundingCall, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.BadRequest(w, "invalid call id")
		return nil, true
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	fc, err := h.Calls.GetByID(ctx, id)
	if err == mongo.ErrNoDocuments {
		httpjson.NotFound(w, "funding call not found")
		return nil, true
	}
	if err != nil {
		h.Log.Error("funding call load failed", zap.Error(err))
		httpjson.ServerError(w, "could not load funding call")
		return nil, true
	}
	return fc, false
}

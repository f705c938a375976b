// internal/app/features/authn/profile.go
package authn

import (
	"context"
	"net/http"
	"strings"

	userstore "github.com/campusworks/researchdesk/internal/app/store/users"
	"github.com/campusworks/researchdesk/internal/app/system/auth"
	"github.com/campusworks/researchdesk/internal/app/system/httpjson"
	"github.com/campusworks/researchdesk/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// HandleMe returns the signed-in user's full record. GET /api/auth/me.
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	su, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	oid, err := primitive.ObjectIDFromHex(su.ID)
	if err != nil {
		httpjson.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByID(ctx, oid)
	if err == mongo.ErrNoDocuments {
		httpjson.NotFound(w, "account no longer exists")
		return
	}
	if err != nil {
		h.Log.Error("me lookup failed", zap.Error(err))
		httpjson.ServerError(w, "lookup failed")
		return
	}
	httpjson.OK(w, httpjson.Envelope{"user": u})
}

type profileRequest struct {
	FullName    string `json:"full_name"`
	MID         string `json:"mid"`
	CampusID    string `json:"campus_id"`
	Designation string `json:"designation"`
	Institute   string `json:"institute"`
	Department  string `json:"department"`
	Phone       string `json:"phone"`
	OrcidID     string `json:"orcid_id"`
	ScopusID    string `json:"scopus_id"`
	VidwanID    string `json:"vidwan_id"`
}

// HandleProfileSetup completes the signed-in user's profile.
// POST /api/auth/profile-setup.
func (h *Handler) HandleProfileSetup(w http.ResponseWriter, r *http.Request) {
	su, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	oid, err := primitive.ObjectIDFromHex(su.ID)
	if err != nil {
		httpjson.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req profileRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.BadRequest(w, "invalid request body")
		return
	}
	if strings.TrimSpace(req.FullName) == "" {
		httpjson.BadRequest(w, "full_name is required")
		return
	}
	if strings.TrimSpace(req.Institute) == "" || strings.TrimSpace(req.Department) == "" {
		httpjson.BadRequest(w, "institute and department are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	err = h.Users.CompleteProfile(ctx, oid, userstore.ProfileUpdate{
		FullName:    req.FullName,
		MID:         req.MID,
		CampusID:    req.CampusID,
		Designation: req.Designation,
		Institute:   req.Institute,
		Department:  req.Department,
		Phone:       req.Phone,
		OrcidID:     req.OrcidID,
		ScopusID:    req.ScopusID,
		VidwanID:    req.VidwanID,
	})
	if err == mongo.ErrNoDocuments {
		httpjson.NotFound(w, "account no longer exists")
		return
	}
	if err != nil {
		h.Log.Error("profile setup failed", zap.Error(err))
		httpjson.ServerError(w, "profile update failed")
		return
	}

	h.AuditLog.Event(ctx, "auth.profile_setup", "profile completed", &oid, su.Email, nil)
	httpjson.OK(w, nil)
}

// internal/app/features/authn/account.go
package authn

import (
	"context"
	"net/http"
	"strings"

	userstore "github.com/campusworks/researchdesk/internal/app/store/users"
	"github.com/campusworks/researchdesk/internal/app/system/authz"
	"github.com/campusworks/researchdesk/internal/app/system/httpjson"
	"github.com/campusworks/researchdesk/internal/app/system/normalize"
	"github.com/campusworks/researchdesk/internal/app/system/timeouts"
	"github.com/campusworks/researchdesk/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type signupRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleSignup creates a faculty account with an email and password, and
// signs the new user in. POST /api/auth/signup.
func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.BadRequest(w, "invalid request body")
		return
	}

	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = normalize.Email(req.Email)
	if req.FullName == "" || req.Email == "" {
		httpjson.BadRequest(w, "full_name and email are required")
		return
	}
	if len(req.Password) < 8 {
		httpjson.BadRequest(w, "password must be at least 8 characters")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		h.Log.Error("bcrypt hash failed", zap.Error(err))
		httpjson.ServerError(w, "could not create account")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	created, err := h.Users.Create(ctx, models.User{
		FullName:     req.FullName,
		Email:        req.Email,
		Role:         authz.RoleNameFaculty,
		PasswordHash: string(hash),
	})
	if err == userstore.ErrDuplicateEmail {
		httpjson.Conflict(w, "an account with this email already exists")
		return
	}
	if err != nil {
		h.Log.Error("signup insert failed", zap.Error(err))
		httpjson.ServerError(w, "could not create account")
		return
	}

	if err := h.SessionMgr.SignIn(w, r, created.ID.Hex()); err != nil {
		h.Log.Error("sign-in after signup failed", zap.Error(err))
		httpjson.ServerError(w, "account created but sign-in failed")
		return
	}

	h.AuditLog.Event(ctx, "auth.signup", "account created", &created.ID, created.Email, nil)
	httpjson.Created(w, httpjson.Envelope{"user": created})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin verifies an email/password pair and starts a session.
// POST /api/auth/login.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.BadRequest(w, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err == mongo.ErrNoDocuments {
		httpjson.Error(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	if err != nil {
		h.Log.Error("login lookup failed", zap.Error(err))
		httpjson.ServerError(w, "sign-in failed")
		return
	}

	if u.PasswordHash == "" {
		// Google account; no password to check.
		httpjson.Error(w, http.StatusUnauthorized, "this account signs in with Google")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		h.AuditLog.Warn(ctx, "auth.login_failed", "wrong password", &u.ID, u.Email, nil)
		httpjson.Error(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	if err := h.SessionMgr.SignIn(w, r, u.ID.Hex()); err != nil {
		h.Log.Error("session save failed", zap.Error(err))
		httpjson.ServerError(w, "sign-in failed")
		return
	}

	h.AuditLog.Event(ctx, "auth.login", "signed in", &u.ID, u.Email, nil)
	httpjson.OK(w, httpjson.Envelope{"user": u})
}

// HandleLogout ends the session. POST /api/auth/logout.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.SessionMgr.SignOut(w, r); err != nil {
		h.Log.Warn("sign-out failed", zap.Error(err))
	}
	httpjson.OK(w, nil)
}

// HandleCheckUserExists reports whether an account exists for the email.
// GET /api/auth/check-user-exists?email=…
func (h *Handler) HandleCheckUserExists(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if strings.TrimSpace(email) == "" {
		httpjson.BadRequest(w, "email is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	exists, err := h.Users.EmailExists(ctx, email)
	if err != nil {
		h.Log.Error("exists lookup failed", zap.Error(err))
		httpjson.ServerError(w, "lookup failed")
		return
	}
	httpjson.OK(w, httpjson.Envelope{"exists": exists})
}

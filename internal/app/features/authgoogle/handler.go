// internal/app/features/authgoogle/handler.go
package authgoogle

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/campusworks/researchdesk/internal/app/store/oauthstate"
	userstore "github.com/campusworks/researchdesk/internal/app/store/users"
	"github.com/campusworks/researchdesk/internal/app/system/auditlog"
	"github.com/campusworks/researchdesk/internal/app/system/auth"
	"github.com/campusworks/researchdesk/internal/app/system/authz"
	"github.com/campusworks/researchdesk/internal/app/system/timeouts"
	"github.com/campusworks/researchdesk/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Handler handles Google OAuth authentication. Accounts are provisioned on
// first sign-in with the faculty role; admins are promoted afterwards.
type Handler struct {
	DB         *mongo.Database
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	AuditLog   *auditlog.Logger
	Users      *userstore.Store
	StateStore *oauthstate.Store

	ClientID     string
	ClientSecret string
	RedirectURL  string // e.g. "https://researchdesk.example.edu/auth/google/callback"
}

// NewHandler creates a new Google OAuth handler.
func NewHandler(
	db *mongo.Database,
	sessionMgr *auth.SessionManager,
	audit *auditlog.Logger,
	clientID, clientSecret, baseURL string,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		DB:           db,
		Log:          logger,
		SessionMgr:   sessionMgr,
		AuditLog:     audit,
		Users:        userstore.New(db),
		StateStore:   oauthstate.New(db),
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  baseURL + "/auth/google/callback",
	}
}

// oauth2Config returns the Google OAuth2 configuration.
func (h *Handler) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.ClientID,
		ClientSecret: h.ClientSecret,
		RedirectURL:  h.RedirectURL,
		Scopes: []string{
			"openid",
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

// IsConfigured returns true if Google OAuth is configured.
func (h *Handler) IsConfigured() bool {
	return h.ClientID != "" && h.ClientSecret != ""
}

// ServeLogin initiates the Google OAuth flow. GET /auth/google.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if !h.IsConfigured() {
		h.Log.Warn("Google OAuth not configured")
		http.Redirect(w, r, "/login?error=google_not_configured", http.StatusSeeOther)
		return
	}

	state, err := generateState()
	if err != nil {
		h.Log.Error("failed to generate OAuth state", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}

	returnURL := r.URL.Query().Get("return")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	expiresAt := time.Now().UTC().Add(10 * time.Minute)
	if err := h.StateStore.Save(ctx, state, returnURL, expiresAt); err != nil {
		h.Log.Error("failed to save OAuth state", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}

	url := h.oauth2Config().AuthCodeURL(state)
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

// ServeCallback handles the OAuth callback from Google: validates state,
// exchanges the code, fetches user info, provisions or loads the account,
// and starts the session. GET /auth/google/callback.
func (h *Handler) ServeCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.Log.Warn("Google OAuth error",
			zap.String("error", errParam),
			zap.String("description", r.URL.Query().Get("error_description")))
		http.Redirect(w, r, "/login?error=google_denied", http.StatusSeeOther)
		return
	}

	state := r.URL.Query().Get("state")
	if state == "" {
		http.Redirect(w, r, "/login?error=invalid_state", http.StatusSeeOther)
		return
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	returnURL, valid, err := h.StateStore.Validate(ctxTimeout, state)
	if err != nil {
		h.Log.Error("failed to validate OAuth state", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}
	if !valid {
		h.Log.Warn("invalid or expired OAuth state")
		http.Redirect(w, r, "/login?error=invalid_state", http.StatusSeeOther)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Redirect(w, r, "/login?error=invalid_code", http.StatusSeeOther)
		return
	}

	token, err := h.oauth2Config().Exchange(ctx, code)
	if err != nil {
		h.Log.Error("failed to exchange OAuth code", zap.Error(err))
		http.Redirect(w, r, "/login?error=token_exchange", http.StatusSeeOther)
		return
	}

	googleUser, err := fetchGoogleUserInfo(ctx, token)
	if err != nil {
		h.Log.Error("failed to fetch Google user info", zap.Error(err))
		http.Redirect(w, r, "/login?error=user_info", http.StatusSeeOther)
		return
	}
	if !googleUser.EmailVerified {
		h.Log.Warn("Google account email not verified", zap.String("email", googleUser.Email))
		http.Redirect(w, r, "/login?error=email_unverified", http.StatusSeeOther)
		return
	}

	user, err := h.findOrCreateUser(ctxTimeout, googleUser)
	if err != nil {
		h.Log.Error("failed to resolve Google user", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}

	if err := h.SessionMgr.SignIn(w, r, user.ID.Hex()); err != nil {
		h.Log.Error("session save failed", zap.Error(err), zap.String("user_id", user.ID.Hex()))
		http.Redirect(w, r, "/login?error=session", http.StatusSeeOther)
		return
	}

	h.AuditLog.Event(ctx, "auth.login", "signed in via Google", &user.ID, user.Email, nil)

	// New accounts land on profile setup before anything else.
	dest := urlutil.SafeReturn(returnURL, "", "/dashboard")
	if !user.ProfileComplete {
		dest = "/profile-setup"
	}
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

// googleUserInfo represents user info returned from Google.
type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"verified_email"`
	Name          string `json:"name"`
}

// fetchGoogleUserInfo retrieves user information from Google's userinfo endpoint.
func fetchGoogleUserInfo(ctx context.Context, token *oauth2.Token) (*googleUserInfo, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}
	return &info, nil
}

// findOrCreateUser looks the account up by Google subject, then by email
// (linking the subject on first Google sign-in), and provisions a faculty
// account when neither exists.
func (h *Handler) findOrCreateUser(ctx context.Context, gu *googleUserInfo) (*models.User, error) {
	u, err := h.Users.GetByGoogleSubject(ctx, gu.ID)
	if err == nil {
		return u, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}

	u, err = h.Users.GetByEmail(ctx, gu.Email)
	if err == nil {
		if u.GoogleSubject == "" {
			if linkErr := h.linkGoogleSubject(ctx, u, gu.ID); linkErr != nil {
				h.Log.Warn("failed to link Google subject",
					zap.Error(linkErr), zap.String("user_id", u.ID.Hex()))
			}
		}
		return u, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}

	created, err := h.Users.Create(ctx, models.User{
		FullName:      gu.Name,
		Email:         gu.Email,
		Role:          authz.RoleNameFaculty,
		GoogleSubject: gu.ID,
	})
	if err != nil {
		return nil, err
	}
	h.AuditLog.Event(ctx, "auth.signup", "account provisioned via Google", &created.ID, created.Email, nil)
	return &created, nil
}

func (h *Handler) linkGoogleSubject(ctx context.Context, u *models.User, subject string) error {
	_, err := h.DB.Collection("users").UpdateOne(ctx,
		bson.M{"_id": u.ID},
		bson.M{"$set": bson.M{"google_subject": subject}})
	return err
}

// generateState creates a cryptographically secure random state string.
func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

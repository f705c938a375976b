// internal/app/system/auth/auth.go
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

// Session value keys.
const (
	isAuthKey = "is_authenticated"
	userIDKey = "user_id"
)

// SessionUser is the per-request view of the signed-in user, fetched fresh
// from the database on each request so role and module changes take effect
// immediately.
type SessionUser struct {
	ID              string
	Name            string
	Email           string
	Role            string
	ProfileComplete bool
	AllowedModules  []string
}

// UserFetcher loads fresh user data for the given user ID. Returning nil
// means "treat the request as signed out" (unknown, disabled, or error).
type UserFetcher interface {
	FetchUser(ctx context.Context, userID string) *SessionUser
}

// SessionManager owns the cookie store and the auth middleware chain.
type SessionManager struct {
	store       *sessions.CookieStore
	sessionName string
	fetcher     UserFetcher
	log         *zap.Logger
}

// NewSessionManager builds a SessionManager over a gorilla cookie store.
// Secure cookies are enabled in production; dev over http://localhost needs
// secure=false so browsers accept the cookie.
func NewSessionManager(sessionKey, sessionName, domain string, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide 32+ random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	opts := &sessions.Options{
		Domain:   domain,
		Path:     "/",
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if secure {
		opts.SameSite = http.SameSiteNoneMode
	}
	store.Options = opts

	return &SessionManager{
		store:       store,
		sessionName: sessionName,
		log:         logger,
	}, nil
}

// SetUserFetcher wires the per-request user lookup. Until set,
// LoadSessionUser only trusts the cookie's user ID with no profile data.
func (sm *SessionManager) SetUserFetcher(f UserFetcher) {
	sm.fetcher = f
}

// SignIn marks the session as authenticated for the given user ID. A stale
// or undecodable cookie is replaced with a fresh session rather than failing
// the sign-in.
func (sm *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, userID string) error {
	sess, err := sm.store.Get(r, sm.sessionName)
	if err != nil {
		if scErr, ok := err.(securecookie.Error); ok && scErr.IsDecode() {
			sm.log.Warn("session cookie invalid, using fresh session",
				zap.Error(err), zap.String("user_id", userID))
		} else {
			sm.log.Error("session store error during sign-in, using fresh session",
				zap.Error(err), zap.String("user_id", userID))
		}
	}
	sess.Values[isAuthKey] = true
	sess.Values[userIDKey] = userID
	return sess.Save(r, w)
}

// SignOut clears the session cookie.
func (sm *SessionManager) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess, _ := sm.store.Get(r, sm.sessionName)
	sess.Values = map[any]any{}
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// LoadSessionUser injects the current user into the request context if the
// session cookie is valid. It never rejects a request by itself.
func (sm *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, _ := sm.store.Get(r, sm.sessionName)

		if isAuth, _ := sess.Values[isAuthKey].(bool); isAuth {
			userID, _ := sess.Values[userIDKey].(string)
			if userID != "" && sm.fetcher != nil {
				if u := sm.fetcher.FetchUser(r.Context(), userID); u != nil {
					r = withUser(r, u)
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSignedIn rejects requests without a user in context with a 401
// JSON envelope.
func (sm *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); !ok {
			writeAuthError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole rejects signed-in users whose role is not in the allowed set
// with a 403 JSON envelope. Roles are compared case-insensitively.
func (sm *SessionManager) RequireRole(allowed ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		set[strings.ToLower(strings.TrimSpace(role))] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r)
			if !ok {
				writeAuthError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			if _, has := set[strings.ToLower(u.Role)]; !has {
				writeAuthError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

/* context plumbing */

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user from the request context and a found flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok
}

// WithTestUser injects a user into the request context, bypassing the
// session middleware. Test helper only.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

// writeAuthError emits the same envelope as httpjson without importing it,
// keeping auth free of feature-layer dependencies.
func writeAuthError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprintf(w, `{"success":false,"error":%q}`, msg)
}

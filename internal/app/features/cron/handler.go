// internal/app/features/cron/handler.go
package cron

import (
	"crypto/subtle"
	"net/http"

	claimstore "github.com/campusworks/researchdesk/internal/app/store/claims"
	intereststore "github.com/campusworks/researchdesk/internal/app/store/emrinterests"
	callstore "github.com/campusworks/researchdesk/internal/app/store/fundingcalls"
	notificationstore "github.com/campusworks/researchdesk/internal/app/store/notifications"
	projectstore "github.com/campusworks/researchdesk/internal/app/store/projects"
	userstore "github.com/campusworks/researchdesk/internal/app/store/users"
	"github.com/campusworks/researchdesk/internal/app/system/httpjson"
	"github.com/campusworks/researchdesk/internal/app/system/mailer"
	"github.com/campusworks/researchdesk/internal/app/system/metrics"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// secretHeader carries the shared secret that gates the cron endpoints.
const secretHeader = "X-Cron-Secret"

// Sender is the slice of mailer.Mailer the reminder jobs need.
type Sender interface {
	Send(e mailer.Email) error
}

// Handler runs the scheduled reminder jobs. The endpoints are hit by an
// external scheduler (systemd timer, GitHub Actions, cloud cron) with a
// shared secret; they are not user-facing.
type Handler struct {
	Secret   string
	SiteName string
	BaseURL  string

	Log     *zap.Logger
	Mail    Sender
	Metrics *metrics.Metrics

	Claims    *claimstore.Store
	Calls     *callstore.Store
	Interests *intereststore.Store
	Projects  *projectstore.Store
	Users     *userstore.Store
	Notices   *notificationstore.Store
}

// Config carries the cron handler's settings out of bootstrap.
type Config struct {
	Secret   string
	SiteName string
	BaseURL  string
}

func NewHandler(client *mongo.Client, db *mongo.Database, cfg Config, mail Sender, m *metrics.Metrics, logger *zap.Logger) *Handler {
	return &Handler{
		Secret:    cfg.Secret,
		SiteName:  cfg.SiteName,
		BaseURL:   cfg.BaseURL,
		Log:       logger,
		Mail:      mail,
		Metrics:   m,
		Claims:    claimstore.New(db),
		Calls:     callstore.New(db),
		Interests: intereststore.New(db),
		Projects:  projectstore.New(client, db),
		Users:     userstore.New(db),
		Notices:   notificationstore.New(db),
	}
}

// RequireSecret rejects requests whose X-Cron-Secret header does not match
// the configured secret. An empty configured secret disables the endpoints
// entirely rather than leaving them open.
func (h *Handler) RequireSecret(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Secret == "" {
			httpjson.Error(w, http.StatusServiceUnavailable, "cron endpoints are not configured")
			return
		}
		got := r.Header.Get(secretHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(h.Secret)) != 1 {
			httpjson.Error(w, http.StatusForbidden, "invalid cron secret")
			return
		}
		next.ServeHTTP(w, r)
	})
}

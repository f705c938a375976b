// internal/app/features/authn/handler.go
package authn

import (
	userstore "github.com/campusworks/researchdesk/internal/app/store/users"
	"github.com/campusworks/researchdesk/internal/app/system/auditlog"
	"github.com/campusworks/researchdesk/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// bcryptCost matches the cost used for stored password hashes.
const bcryptCost = 12

// Handler serves email/password authentication and profile setup.
type Handler struct {
	DB         *mongo.Database
	Log        *zap.Logger
	AuditLog   *auditlog.Logger
	SessionMgr *auth.SessionManager
	Users      *userstore.Store
}

func NewHandler(db *mongo.Database, sessionMgr *auth.SessionManager, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:         db,
		Log:        logger,
		AuditLog:   audit,
		SessionMgr: sessionMgr,
		Users:      userstore.New(db),
	}
}

// internal/app/features/projects/handler.go
package projects

import (
	projectstore "github.com/campusworks/researchdesk/internal/app/store/projects"
	userstore "github.com/campusworks/researchdesk/internal/app/store/users"
	"github.com/campusworks/researchdesk/internal/app/system/auditlog"
	"github.com/microcosm-cc/bluemonday"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the IMR project proposal workflow: drafting, submission,
// review, evaluation, sanction, and completion.
type Handler struct {
	DB       *mongo.Database
	Log      *zap.Logger
	AuditLog *auditlog.Logger
	Projects *projectstore.Store
	Users    *userstore.Store

	// sanitize cleans faculty-provided HTML (abstracts) before storage.
	sanitize *bluemonday.Policy
}

func NewHandler(client *mongo.Client, db *mongo.Database, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Log:      logger,
		AuditLog: audit,
		Projects: projectstore.New(client, db),
		Users:    userstore.New(db),
		sanitize: bluemonday.UGCPolicy(),
	}
}

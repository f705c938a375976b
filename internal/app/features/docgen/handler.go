// internal/app/features/docgen/handler.go
package docgen

import (
	claimstore "github.com/campusworks/researchdesk/internal/app/store/claims"
	projectstore "github.com/campusworks/researchdesk/internal/app/store/projects"
	recruitstore "github.com/campusworks/researchdesk/internal/app/store/recruitments"
	userstore "github.com/campusworks/researchdesk/internal/app/store/users"
	"github.com/campusworks/researchdesk/internal/app/system/auditlog"
	"github.com/campusworks/researchdesk/internal/app/system/docrender"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler renders office documents (sanction letters, completion
// certificates, incentive approval notes, offer letters) from .docx
// templates and returns them base64 encoded.
type Handler struct {
	DB       *mongo.Database
	Log      *zap.Logger
	AuditLog *auditlog.Logger
	Renderer *docrender.Renderer

	Claims   *claimstore.Store
	Projects *projectstore.Store
	Recruits *recruitstore.Store
	Users    *userstore.Store
}

func NewHandler(client *mongo.Client, db *mongo.Database, renderer *docrender.Renderer, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Log:      logger,
		AuditLog: audit,
		Renderer: renderer,
		Claims:   claimstore.New(db),
		Projects: projectstore.New(client, db),
		Recruits: recruitstore.New(db),
		Users:    userstore.New(db),
	}
}

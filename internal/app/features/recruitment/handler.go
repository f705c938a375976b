// internal/app/features/recruitment/handler.go
package recruitment

import (
	recruitstore "github.com/campusworks/researchdesk/internal/app/store/recruitments"
	"github.com/campusworks/researchdesk/internal/app/system/auditlog"
	"github.com/microcosm-cc/bluemonday"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves project staff recruitment: faculty post positions, admins
// approve them, and candidates apply without signing in.
type Handler struct {
	DB       *mongo.Database
	Log      *zap.Logger
	AuditLog *auditlog.Logger
	Store    *recruitstore.Store

	sanitize *bluemonday.Policy
}

func NewHandler(db *mongo.Database, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Log:      logger,
		AuditLog: audit,
		Store:    recruitstore.New(db),
		sanitize: bluemonday.UGCPolicy(),
	}
}

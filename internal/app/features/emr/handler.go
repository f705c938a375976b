// internal/app/features/emr/handler.go
package emr

import (
	intereststore "github.com/campusworks/researchdesk/internal/app/store/emrinterests"
	callstore "github.com/campusworks/researchdesk/internal/app/store/fundingcalls"
	"github.com/campusworks/researchdesk/internal/app/system/auditlog"
	"github.com/microcosm-cc/bluemonday"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the extramural (EMR) funding workflow: announcing funding
// calls, registering faculty interest, scheduling presentation meetings, and
// recording sanctioned grants.
type Handler struct {
	DB        *mongo.Database
	Log       *zap.Logger
	AuditLog  *auditlog.Logger
	Calls     *callstore.Store
	Interests *intereststore.Store

	sanitize *bluemonday.Policy
}

func NewHandler(db *mongo.Database, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:        db,
		Log:       logger,
		AuditLog:  audit,
		Calls:     callstore.New(db),
		Interests: intereststore.New(db),
		sanitize:  bluemonday.UGCPolicy(),
	}
}

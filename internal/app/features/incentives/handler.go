// internal/app/features/incentives/handler.go
package incentives

import (
	claimstore "github.com/campusworks/researchdesk/internal/app/store/claims"
	intereststore "github.com/campusworks/researchdesk/internal/app/store/emrinterests"
	"github.com/campusworks/researchdesk/internal/app/system/auditlog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves incentive claims and the yearly ARPS (Annual Research
// Performance Score) computed from accepted claims and sanctioned EMR grants.
type Handler struct {
	DB       *mongo.Database
	Log      *zap.Logger
	AuditLog *auditlog.Logger
	Claims   *claimstore.Store
	EMR      *intereststore.Store
}

func NewHandler(db *mongo.Database, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Log:      logger,
		AuditLog: audit,
		Claims:   claimstore.New(db),
		EMR:      intereststore.New(db),
	}
}

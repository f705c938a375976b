// internal/app/features/staff/handler.go
package staff

import (
	"context"
	"net/http"
	"strings"

	userstore "github.com/campusworks/researchdesk/internal/app/store/users"
	"github.com/campusworks/researchdesk/internal/app/system/auditlog"
	"github.com/campusworks/researchdesk/internal/app/system/httpjson"
	"github.com/campusworks/researchdesk/internal/app/system/timeouts"
	"github.com/campusworks/researchdesk/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the staff directory: single-record lookups by institutional
// ID and bulk XLSX imports of the university staff master list.
type Handler struct {
	DB       *mongo.Database
	Log      *zap.Logger
	AuditLog *auditlog.Logger
	Users    *userstore.Store
}

func NewHandler(db *mongo.Database, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Log: logger, AuditLog: audit, Users: userstore.New(db)}
}

// staffView is the directory subset exposed by lookups. Credentials and
// module grants stay internal.
type staffView struct {
	MID         string `json:"mid"`
	CampusID    string `json:"campus_id,omitempty"`
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	Designation string `json:"designation,omitempty"`
	Institute   string `json:"institute,omitempty"`
	Department  string `json:"department,omitempty"`
	Phone       string `json:"phone,omitempty"`
}

func viewOf(u *models.User) staffView {
	return staffView{
		MID:         u.MID,
		CampusID:    u.CampusID,
		FullName:    u.FullName,
		Email:       u.Email,
		Designation: u.Designation,
		Institute:   u.Institute,
		Department:  u.Department,
		Phone:       u.Phone,
	}
}

// HandleLookup resolves a staff record by ?mid= or ?campus_id=.
// GET /api/staff/lookup.
func (h *Handler) HandleLookup(w http.ResponseWriter, r *http.Request) {
	mid := strings.TrimSpace(r.URL.Query().Get("mid"))
	campusID := strings.TrimSpace(r.URL.Query().Get("campus_id"))
	if mid == "" && campusID == "" {
		httpjson.BadRequest(w, "mid or campus_id is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	var (
		u   *models.User
		err error
	)
	if mid != "" {
		u, err = h.Users.GetByMID(ctx, mid)
	} else {
		u, err = h.Users.GetByCampusID(ctx, campusID)
	}
	if err == mongo.ErrNoDocuments {
		httpjson.NotFound(w, "no staff record found")
		return
	}
	if err != nil {
		h.Log.Error("staff lookup failed", zap.Error(err))
		httpjson.ServerError(w, "could not look up staff record")
		return
	}
	httpjson.OK(w, httpjson.Envelope{"staff": viewOf(u)})
}

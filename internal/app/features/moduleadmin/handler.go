// internal/app/features/moduleadmin/handler.go
package moduleadmin

import (
	"context"
	"net/http"

	userstore "github.com/campusworks/researchdesk/internal/app/store/users"
	"github.com/campusworks/researchdesk/internal/app/system/auditlog"
	"github.com/campusworks/researchdesk/internal/app/system/authz"
	"github.com/campusworks/researchdesk/internal/app/system/httpjson"
	"github.com/campusworks/researchdesk/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves super-admin account administration: role assignment and
// per-user module grants.
type Handler struct {
	DB       *mongo.Database
	Log      *zap.Logger
	AuditLog *auditlog.Logger
	Users    *userstore.Store
}

func NewHandler(db *mongo.Database, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Log: logger, AuditLog: audit, Users: userstore.New(db)}
}

// HandleListUsers returns users with the given role. GET /api/admin/users?role=.
func (h *Handler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	role := r.URL.Query().Get("role")
	if authz.ParseRole(role) == authz.RoleUnknown {
		httpjson.BadRequest(w, "role query parameter is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Users.ListByRole(ctx, role)
	if err != nil {
		h.Log.Error("user list failed", zap.Error(err))
		httpjson.ServerError(w, "could not list users")
		return
	}
	httpjson.OK(w, httpjson.Envelope{"users": list})
}

type roleRequest struct {
	Role string `json:"role"`
}

// HandleSetRole changes a user's role. POST /api/admin/users/{id}/role.
func (h *Handler) HandleSetRole(w http.ResponseWriter, r *http.Request) {
	_, name, actorID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req roleRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.BadRequest(w, "invalid request body")
		return
	}
	if authz.ParseRole(req.Role) == authz.RoleUnknown {
		httpjson.BadRequest(w, "unknown role")
		return
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.BadRequest(w, "invalid user id")
		return
	}
	if id == actorID {
		httpjson.Error(w, http.StatusUnprocessableEntity, "cannot change your own role")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Users.SetRole(ctx, id, req.Role); err != nil {
		if err == mongo.ErrNoDocuments {
			httpjson.NotFound(w, "user not found")
			return
		}
		h.Log.Error("role update failed", zap.Error(err))
		httpjson.ServerError(w, "could not update role")
		return
	}

	h.AuditLog.Event(ctx, "admin.role", "user role changed", &actorID, name,
		map[string]string{"user_id": id.Hex(), "role": req.Role})
	httpjson.OK(w, nil)
}

type modulesRequest struct {
	Modules []string `json:"modules"`
}

// HandleSetModules replaces a user's explicit module grants.
// POST /api/admin/users/{id}/modules.
func (h *Handler) HandleSetModules(w http.ResponseWriter, r *http.Request) {
	_, name, actorID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req modulesRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.BadRequest(w, "invalid request body")
		return
	}
	for _, m := range req.Modules {
		if !authz.ValidModule(m) {
			httpjson.BadRequest(w, "unknown module: "+m)
			return
		}
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.BadRequest(w, "invalid user id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Users.SetAllowedModules(ctx, id, req.Modules); err != nil {
		if err == mongo.ErrNoDocuments {
			httpjson.NotFound(w, "user not found")
			return
		}
		h.Log.Error("module grant failed", zap.Error(err))
		httpjson.ServerError(w, "could not update module grants")
		return
	}

	h.AuditLog.Event(ctx, "admin.modules", "module grants changed", &actorID, name,
		map[string]string{"user_id": id.Hex()})
	httpjson.OK(w, nil)
}

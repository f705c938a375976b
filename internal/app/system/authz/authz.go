// internal/app/system/authz/authz.go
package authz

import (
	"net/http"

	"github.com/campusworks/researchdesk/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the current user's parsed role, name, Mongo ObjectID, and
// a found flag. ok=true guarantees a valid, authenticated user with a valid
// ObjectID; anything malformed fails closed.
func UserCtx(r *http.Request) (role Role, name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return RoleUnknown, "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed user ID in session; indicates session corruption.
		return RoleUnknown, "", primitive.NilObjectID, false
	}
	return ParseRole(user.Role), user.Name, userID, true
}

// IsAdmin reports whether the current user is an admin or super admin.
func IsAdmin(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && (role == RoleAdmin || role == RoleSuperAdmin)
}

// IsSuperAdmin reports whether the current user is a super admin.
func IsSuperAdmin(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == RoleSuperAdmin
}

// IsCRO reports whether the current user is CRO staff.
func IsCRO(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == RoleCRO
}

// CanUseModule reports whether the current user may use the given module,
// combining the role capability table with per-user grants.
func CanUseModule(r *http.Request, module string) bool {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return false
	}
	return HasModule(ParseRole(user.Role), user.AllowedModules, module)
}

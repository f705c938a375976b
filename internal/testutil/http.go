package testutil

import (
	"context"
	"net/http"
	"net/http/httptest"

	"github.com/campusworks/researchdesk/internal/app/system/auth"
	"github.com/campusworks/researchdesk/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// TestUser represents user data for testing HTTP handlers.
type TestUser struct {
	ID    string
	Name  string
	Email string
	Role  string
}

// FacultyUser returns a TestUser with faculty role.
func FacultyUser() TestUser {
	return TestUser{
		ID:    primitive.NewObjectID().Hex(),
		Name:  "Test Faculty",
		Email: "faculty@test.edu",
		Role:  authz.RoleNameFaculty,
	}
}

// EvaluatorUser returns a TestUser with evaluator role.
func EvaluatorUser() TestUser {
	return TestUser{
		ID:    primitive.NewObjectID().Hex(),
		Name:  "Test Evaluator",
		Email: "evaluator@test.edu",
		Role:  authz.RoleNameEvaluator,
	}
}

// CROUser returns a TestUser with cro role.
func CROUser() TestUser {
	return TestUser{
		ID:    primitive.NewObjectID().Hex(),
		Name:  "Test CRO",
		Email: "cro@test.edu",
		Role:  authz.RoleNameCRO,
	}
}

// AdminUser returns a TestUser with admin role.
func AdminUser() TestUser {
	return TestUser{
		ID:    primitive.NewObjectID().Hex(),
		Name:  "Test Admin",
		Email: "admin@test.edu",
		Role:  authz.RoleNameAdmin,
	}
}

// SuperAdminUser returns a TestUser with super_admin role.
func SuperAdminUser() TestUser {
	return TestUser{
		ID:    primitive.NewObjectID().Hex(),
		Name:  "Test Super Admin",
		Email: "superadmin@test.edu",
		Role:  authz.RoleNameSuperAdmin,
	}
}

// WithUser adds a user to the request context for testing authenticated handlers.
// This bypasses the session middleware and injects the user directly.
func WithUser(r *http.Request, user TestUser) *http.Request {
	sessionUser := &auth.SessionUser{
		ID:              user.ID,
		Name:            user.Name,
		Email:           user.Email,
		Role:            user.Role,
		ProfileComplete: true,
	}
	return auth.WithTestUser(r, sessionUser)
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

package authz_test

import (
	"net/http/httptest"
	"testing"

	"github.com/campusworks/researchdesk/internal/app/system/auth"
	"github.com/campusworks/researchdesk/internal/app/system/authz"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestParseRole_RoundTrip(t *testing.T) {
	roles := []authz.Role{
		authz.RoleFaculty, authz.RoleEvaluator, authz.RoleCRO,
		authz.RoleAdmin, authz.RoleSuperAdmin,
	}
	for _, r := range roles {
		if got := authz.ParseRole(r.String()); got != r {
			t.Errorf("ParseRole(%q) = %v, want %v", r.String(), got, r)
		}
	}
	if got := authz.ParseRole("janitor"); got != authz.RoleUnknown {
		t.Errorf("ParseRole(janitor) = %v, want RoleUnknown", got)
	}
}

func TestModulesFor(t *testing.T) {
	tests := []struct {
		role   authz.Role
		module string
		want   bool
	}{
		{authz.RoleFaculty, authz.ModuleProjects, true},
		{authz.RoleFaculty, authz.ModuleModuleAdmin, false},
		{authz.RoleEvaluator, authz.ModuleProjects, true},
		{authz.RoleEvaluator, authz.ModuleIncentives, false},
		{authz.RoleCRO, authz.ModuleStaffData, true},
		{authz.RoleAdmin, authz.ModuleDocuments, true},
		{authz.RoleAdmin, authz.ModuleModuleAdmin, false},
		{authz.RoleSuperAdmin, authz.ModuleModuleAdmin, true},
		{authz.RoleUnknown, authz.ModuleProjects, false},
	}
	for _, tt := range tests {
		got := false
		for _, m := range authz.ModulesFor(tt.role) {
			if m == tt.module {
				got = true
			}
		}
		if got != tt.want {
			t.Errorf("ModulesFor(%v) contains %q = %v, want %v", tt.role, tt.module, got, tt.want)
		}
	}
}

func TestHasModule_ExplicitGrant(t *testing.T) {
	// An evaluator has no incentives access by default but can be granted it.
	if authz.HasModule(authz.RoleEvaluator, nil, authz.ModuleIncentives) {
		t.Error("evaluator should not have incentives by default")
	}
	if !authz.HasModule(authz.RoleEvaluator, []string{authz.ModuleIncentives}, authz.ModuleIncentives) {
		t.Error("explicit grant should enable the module")
	}
}

func TestUserCtx(t *testing.T) {
	oid := primitive.NewObjectID()

	req := httptest.NewRequest("GET", "/api/projects", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{
		ID:   oid.Hex(),
		Name: "Dr. Asha K",
		Role: "faculty",
	})

	role, name, userID, ok := authz.UserCtx(req)
	if !ok {
		t.Fatal("UserCtx should find the user")
	}
	if role != authz.RoleFaculty {
		t.Errorf("role: got %v, want RoleFaculty", role)
	}
	if name != "Dr. Asha K" {
		t.Errorf("name: got %q", name)
	}
	if userID != oid {
		t.Errorf("userID: got %v, want %v", userID, oid)
	}
}

func TestUserCtx_MalformedID(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/projects", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{ID: "not-an-oid", Role: "admin"})

	if _, _, _, ok := authz.UserCtx(req); ok {
		t.Error("UserCtx should fail closed on a malformed user ID")
	}
}

func TestCanUseModule(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/emr/calls", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{
		ID:             primitive.NewObjectID().Hex(),
		Role:           "evaluator",
		AllowedModules: []string{authz.ModuleEMR},
	})

	if !authz.CanUseModule(req, authz.ModuleEMR) {
		t.Error("granted module should be usable")
	}
	if authz.CanUseModule(req, authz.ModuleRecruitment) {
		t.Error("ungranted module should not be usable")
	}
}

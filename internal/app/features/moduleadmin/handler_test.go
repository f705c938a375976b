// internal/app/features/moduleadmin/handler_test.go
package moduleadmin

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/campusworks/researchdesk/internal/domain/models"
	"github.com/campusworks/researchdesk/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return NewHandler(db, nil, zap.NewNop()), testutil.NewFixtures(t, db)
}

func jsonRequest(method, target, body string) *http.Request {
	r := httptest.NewRequest(method, target, strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	return r
}

func TestHandleSetRole(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	target := fx.CreateUser(ctx, "Asha Rao", "asha@test.edu", "faculty")
	super := testutil.SuperAdminUser()

	req := testutil.WithUser(jsonRequest(http.MethodPost, "/api/admin/users/x/role", `{"role":"evaluator"}`), super)
	req = testutil.WithChiURLParam(req, "id", target.ID.Hex())
	rec := httptest.NewRecorder()
	h.HandleSetRole(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	got, err := h.Users.GetByID(ctx, target.ID)
	if err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if got.Role != "evaluator" {
		t.Errorf("role = %q, want evaluator", got.Role)
	}

	// Unknown roles are rejected before touching the store.
	req = testutil.WithUser(jsonRequest(http.MethodPost, "/api/admin/users/x/role", `{"role":"dean"}`), super)
	req = testutil.WithChiURLParam(req, "id", target.ID.Hex())
	rec = httptest.NewRecorder()
	h.HandleSetRole(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown role status = %d, want 400", rec.Code)
	}
}

func TestHandleSetRoleRefusesSelf(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	self := fx.CreateUser(ctx, "Root Admin", "root@test.edu", "super_admin")
	tu := testutil.TestUser{ID: self.ID.Hex(), Name: self.FullName, Email: self.Email, Role: self.Role}

	req := testutil.WithUser(jsonRequest(http.MethodPost, "/api/admin/users/x/role", `{"role":"faculty"}`), tu)
	req = testutil.WithChiURLParam(req, "id", self.ID.Hex())
	rec := httptest.NewRecorder()
	h.HandleSetRole(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

func TestHandleSetModulesValidates(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	target := fx.CreateUser(ctx, "Asha Rao", "asha@test.edu", "evaluator")
	super := testutil.SuperAdminUser()

	req := testutil.WithUser(jsonRequest(http.MethodPost, "/api/admin/users/x/modules", `{"modules":["timetables"]}`), super)
	req = testutil.WithChiURLParam(req, "id", target.ID.Hex())
	rec := httptest.NewRecorder()
	h.HandleSetModules(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown module status = %d, want 400", rec.Code)
	}

	req = testutil.WithUser(jsonRequest(http.MethodPost, "/api/admin/users/x/modules", `{"modules":["incentives","documents"]}`), super)
	req = testutil.WithChiURLParam(req, "id", target.ID.Hex())
	rec = httptest.NewRecorder()
	h.HandleSetModules(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	got, err := h.Users.GetByID(ctx, target.ID)
	if err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if len(got.AllowedModules) != 2 {
		t.Errorf("allowed_modules = %v, want two entries", got.AllowedModules)
	}
}

func TestHandleListUsersByRole(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateUser(ctx, "Eva One", "eva1@test.edu", "evaluator")
	fx.CreateUser(ctx, "Eva Two", "eva2@test.edu", "evaluator")
	fx.CreateUser(ctx, "Asha Rao", "asha@test.edu", "faculty")

	req := testutil.WithUser(testutil.NewRequest(http.MethodGet, "/api/admin/users?role=evaluator"), testutil.SuperAdminUser())
	rec := httptest.NewRecorder()
	h.HandleListUsers(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Users []models.User `json:"users"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Users) != 2 {
		t.Errorf("listed %d users, want 2", len(resp.Users))
	}
	for _, u := range resp.Users {
		if u.Role != "evaluator" {
			t.Errorf("user %s has role %q", u.Email, u.Role)
		}
	}
}

// internal/app/features/staff/handler_test.go
package staff

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	userstore "github.com/campusworks/researchdesk/internal/app/store/users"
	"github.com/campusworks/researchdesk/internal/testutil"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return NewHandler(db, nil, zap.NewNop()), testutil.NewFixtures(t, db)
}

// buildWorkbook returns a multipart body with an xlsx file whose first sheet
// holds the given rows.
func buildWorkbook(t *testing.T, rows [][]string) (*bytes.Buffer, string) {
	t.Helper()

	wb := excelize.NewFile()
	sheet := wb.GetSheetName(0)
	for i, row := range rows {
		for j, cell := range row {
			ref, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			if err := wb.SetCellValue(sheet, ref, cell); err != nil {
				t.Fatalf("set cell: %v", err)
			}
		}
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "staff.xlsx")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if err := wb.Write(fw); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	return &body, mw.FormDataContentType()
}

func TestHandleImport(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fx.CreateUser(ctx, "Admin One", "admin@test.edu", "admin")

	body, contentType := buildWorkbook(t, [][]string{
		{"MID", "Full Name", "Email", "Designation", "Institute"},
		{"M1001", "Asha Rao", "asha.rao@test.edu", "Professor", "Engineering"},
		{"M1002", "Vik Nair", "vik.nair@test.edu", "Assistant Professor", "Sciences"},
		{"", "No MID", "nomid@test.edu", "", ""},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/staff/import", body)
	req.Header.Set("Content-Type", contentType)
	req = testutil.WithUser(req, testutil.TestUser{
		ID: admin.ID.Hex(), Name: admin.FullName, Email: admin.Email, Role: admin.Role,
	})
	rec := httptest.NewRecorder()
	h.HandleImport(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Created int `json:"created"`
		Updated int `json:"updated"`
		Errors  []struct {
			Row int `json:"row"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Created != 2 {
		t.Errorf("created = %d, want 2", resp.Created)
	}
	if len(resp.Errors) != 1 || resp.Errors[0].Row != 4 {
		t.Errorf("errors = %+v, want one error on row 4", resp.Errors)
	}

	u, err := h.Users.GetByMID(ctx, "M1001")
	if err != nil {
		t.Fatalf("lookup imported staff: %v", err)
	}
	if u.FullName != "Asha Rao" || u.Role != "faculty" {
		t.Errorf("imported record = %q role %q", u.FullName, u.Role)
	}

	// A second import of the same MID updates rather than duplicating.
	body, contentType = buildWorkbook(t, [][]string{
		{"MID", "Full Name", "Email"},
		{"M1001", "Asha R. Rao", "asha.rao@test.edu"},
	})
	req = httptest.NewRequest(http.MethodPost, "/api/staff/import", body)
	req.Header.Set("Content-Type", contentType)
	req = testutil.WithUser(req, testutil.TestUser{
		ID: admin.ID.Hex(), Name: admin.FullName, Email: admin.Email, Role: admin.Role,
	})
	rec = httptest.NewRecorder()
	h.HandleImport(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("re-import status = %d: %s", rec.Code, rec.Body.String())
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Created != 0 || resp.Updated != 1 {
		t.Errorf("re-import created=%d updated=%d, want 0/1", resp.Created, resp.Updated)
	}
}

func TestHandleImportRejectsMissingColumns(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fx.CreateUser(ctx, "Admin One", "admin@test.edu", "admin")

	body, contentType := buildWorkbook(t, [][]string{
		{"Full Name", "Phone"},
		{"Asha Rao", "9000000000"},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/staff/import", body)
	req.Header.Set("Content-Type", contentType)
	req = testutil.WithUser(req, testutil.TestUser{
		ID: admin.ID.Hex(), Name: admin.FullName, Email: admin.Email, Role: admin.Role,
	})
	rec := httptest.NewRecorder()
	h.HandleImport(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleLookup(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	viewer := fx.CreateUser(ctx, "Viewer", "viewer@test.edu", "faculty")
	if _, err := h.Users.UpsertStaff(ctx, userstore.StaffRow{
		MID: "M2001", FullName: "Ravi Menon", Email: "ravi@test.edu",
	}); err != nil {
		t.Fatalf("seed staff: %v", err)
	}

	req := testutil.WithUser(testutil.NewRequest(http.MethodGet, "/api/staff/lookup?mid=M2001"),
		testutil.TestUser{ID: viewer.ID.Hex(), Name: viewer.FullName, Email: viewer.Email, Role: viewer.Role})
	rec := httptest.NewRecorder()
	h.HandleLookup(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	req = testutil.WithUser(testutil.NewRequest(http.MethodGet, "/api/staff/lookup?mid=M9999"),
		testutil.TestUser{ID: viewer.ID.Hex(), Name: viewer.FullName, Email: viewer.Email, Role: viewer.Role})
	rec = httptest.NewRecorder()
	h.HandleLookup(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing mid status = %d, want 404", rec.Code)
	}
}

// internal/app/features/docgen/handler_test.go
package docgen

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/campusworks/researchdesk/internal/app/system/docrender"
	"github.com/campusworks/researchdesk/internal/domain/models"
	"github.com/campusworks/researchdesk/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*Handler, *testutil.Fixtures) {
	t.Helper()
	client, db := testutil.SetupTestClient(t)
	renderer, err := docrender.New(t.TempDir())
	if err != nil {
		t.Fatalf("docrender.New: %v", err)
	}
	return NewHandler(client, db, renderer, nil, zap.NewNop()), testutil.NewFixtures(t, db)
}

func asTestUser(u models.User) testutil.TestUser {
	return testutil.TestUser{ID: u.ID.Hex(), Name: u.FullName, Email: u.Email, Role: u.Role}
}

func TestHandleClaimApprovalForbidsOtherFaculty(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateUser(ctx, "Asha Rao", "asha@test.edu", "faculty")
	peer := fx.CreateUser(ctx, "Vikram Nair", "vikram@test.edu", "faculty")

	c, err := h.Claims.Create(ctx, models.IncentiveClaim{
		UserID:     owner.ID,
		UserName:   owner.FullName,
		UserEmail:  owner.Email,
		ClaimType:  models.ClaimBook,
		BookTitle:  "Applied Cryptography Notes",
		BookType:   "book",
		ClaimYear:  time.Now().Year(),
	})
	if err != nil {
		t.Fatalf("create claim: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/docs/claims/"+c.ID.Hex(), nil)
	req = testutil.WithUser(req, asTestUser(peer))
	req = testutil.WithChiURLParam(req, "id", c.ID.Hex())

	rec := httptest.NewRecorder()
	h.HandleClaimApproval(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestHandleClaimApprovalMissingTemplate(t *testing.T) {
	// The renderer's template directory is empty, so an authorized request
	// must surface the missing template as a server error.
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateUser(ctx, "Asha Rao", "asha2@test.edu", "faculty")
	c, err := h.Claims.Create(ctx, models.IncentiveClaim{
		UserID:    owner.ID,
		UserName:  owner.FullName,
		UserEmail: owner.Email,
		ClaimType: models.ClaimConference,
		ClaimYear: time.Now().Year(),
	})
	if err != nil {
		t.Fatalf("create claim: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/docs/claims/"+c.ID.Hex(), nil)
	req = testutil.WithUser(req, asTestUser(owner))
	req = testutil.WithChiURLParam(req, "id", c.ID.Hex())

	rec := httptest.NewRecorder()
	h.HandleClaimApproval(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusInternalServerError, rec.Body.String())
	}
}

func TestHandleProjectCompletionRequiresCompletedStatus(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	pi := fx.CreateUser(ctx, "Meera Iyer", "meera@test.edu", "faculty")
	p := fx.CreateProject(ctx, "Soil Sensor Network", pi, models.ProjectInProgress)

	req := httptest.NewRequest(http.MethodGet, "/api/docs/projects/"+p.ID.Hex()+"/completion", nil)
	req = testutil.WithUser(req, testutil.CROUser())
	req = testutil.WithChiURLParam(req, "id", p.ID.Hex())

	rec := httptest.NewRecorder()
	h.HandleProjectCompletion(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
}

func TestHandleProjectSanctionRequiresGrant(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	pi := fx.CreateUser(ctx, "Meera Iyer", "meera2@test.edu", "faculty")
	p := fx.CreateProject(ctx, "Soil Sensor Network", pi, models.ProjectRecommended)

	req := httptest.NewRequest(http.MethodGet, "/api/docs/projects/"+p.ID.Hex()+"/sanction", nil)
	req = testutil.WithUser(req, testutil.CROUser())
	req = testutil.WithChiURLParam(req, "id", p.ID.Hex())

	rec := httptest.NewRecorder()
	h.HandleProjectSanction(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
}

func TestHandleOfferLetterRequiresSelection(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	poster := fx.CreateUser(ctx, "Meera Iyer", "meera3@test.edu", "faculty")
	posting, err := h.Recruits.CreatePosting(ctx, models.ProjectRecruitment{
		Title:         "JRF, Sensor Lab",
		PostedByID:    poster.ID,
		PostedByName:  poster.FullName,
		ApplyDeadline: time.Now().Add(48 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create posting: %v", err)
	}
	if err := h.Recruits.SetPostingStatus(ctx, posting.ID, models.RecruitmentOpen); err != nil {
		t.Fatalf("open posting: %v", err)
	}
	app, err := h.Recruits.Apply(ctx, models.RecruitmentApplication{
		RecruitmentID:  posting.ID,
		ApplicantName:  "Kiran S",
		ApplicantEmail: "kiran@example.com",
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/docs/applications/"+app.ID.Hex()+"/offer", nil)
	req = testutil.WithUser(req, testutil.AdminUser())
	req = testutil.WithChiURLParam(req, "id", app.ID.Hex())

	rec := httptest.NewRecorder()
	h.HandleOfferLetter(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
}

func TestClaimItemTitle(t *testing.T) {
	cases := []struct {
		claim models.IncentiveClaim
		want  string
	}{
		{models.IncentiveClaim{ClaimType: models.ClaimResearchPaper, PaperTitle: "Edge Caching"}, "Edge Caching"},
		{models.IncentiveClaim{ClaimType: models.ClaimPatent, PatentTitle: "Low-power ADC"}, "Low-power ADC"},
		{models.IncentiveClaim{ClaimType: models.ClaimMembership, MembershipBody: "IEEE"}, "IEEE"},
		{models.IncentiveClaim{ClaimType: models.ClaimAPC}, ""},
	}
	for _, c := range cases {
		if got := claimItemTitle(&c.claim); got != c.want {
			t.Errorf("claimItemTitle(%s) = %q, want %q", c.claim.ClaimType, got, c.want)
		}
	}
}

func TestPhaseSummary(t *testing.T) {
	phases := []models.GrantPhase{
		{Name: "Phase 1", Amount: 200000},
		{Name: "Phase 2", Amount: 100000},
	}
	want := "Phase 1: Rs. 200000.00; Phase 2: Rs. 100000.00"
	if got := phaseSummary(phases); got != want {
		t.Errorf("phaseSummary = %q, want %q", got, want)
	}
	if got := phaseSummary(nil); got != "" {
		t.Errorf("phaseSummary(nil) = %q, want empty", got)
	}
}

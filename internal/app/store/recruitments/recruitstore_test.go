package recruitstore_test

import (
	"testing"
	"time"

	recruitstore "github.com/campusworks/researchdesk/internal/app/store/recruitments"
	"github.com/campusworks/researchdesk/internal/domain/models"
	"github.com/campusworks/researchdesk/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func openPosting(t *testing.T, store *recruitstore.Store) models.ProjectRecruitment {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p, err := store.CreatePosting(ctx, models.ProjectRecruitment{
		Title:         "JRF - Sensor Networks",
		PostedByID:    primitive.NewObjectID(),
		PostedByName:  "Dr. Rao",
		ApplyDeadline: time.Now().Add(14 * 24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("CreatePosting failed: %v", err)
	}
	if err := store.SetPostingStatus(ctx, p.ID, models.RecruitmentOpen); err != nil {
		t.Fatalf("SetPostingStatus failed: %v", err)
	}
	return p
}

func TestStore_CreatePosting_StartsPending(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := recruitstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.CreatePosting(ctx, models.ProjectRecruitment{
		Title:         "SRF - Materials Lab",
		PostedByID:    primitive.NewObjectID(),
		ApplyDeadline: time.Now().Add(7 * 24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("CreatePosting failed: %v", err)
	}
	if created.Status != models.RecruitmentPending {
		t.Errorf("Status: got %q, want Pending Approval", created.Status)
	}

	pending, err := store.ListPendingApproval(ctx)
	if err != nil {
		t.Fatalf("ListPendingApproval failed: %v", err)
	}
	if len(pending) != 1 {
		t.Errorf("pending postings: got %d, want 1", len(pending))
	}
}

func TestStore_Apply(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := recruitstore.New(db)
	posting := openPosting(t, store)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	app, err := store.Apply(ctx, models.RecruitmentApplication{
		RecruitmentID:  posting.ID,
		ApplicantName:  "Kavya N",
		ApplicantEmail: "Kavya@Example.COM",
	})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if app.Status != models.ApplicationReceived {
		t.Errorf("Status: %q", app.Status)
	}
	if app.ApplicantEmail != "kavya@example.com" {
		t.Errorf("email not normalized: %q", app.ApplicantEmail)
	}

	apps, err := store.ListApplications(ctx, posting.ID)
	if err != nil {
		t.Fatalf("ListApplications failed: %v", err)
	}
	if len(apps) != 1 {
		t.Errorf("applications: got %d, want 1", len(apps))
	}
}

func TestStore_Apply_ClosedPosting(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := recruitstore.New(db)
	posting := openPosting(t, store)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.SetPostingStatus(ctx, posting.ID, models.RecruitmentClosed); err != nil {
		t.Fatalf("SetPostingStatus failed: %v", err)
	}

	_, err := store.Apply(ctx, models.RecruitmentApplication{
		RecruitmentID:  posting.ID,
		ApplicantName:  "Late Applicant",
		ApplicantEmail: "late@example.com",
	})
	if err != recruitstore.ErrNotOpen {
		t.Errorf("expected ErrNotOpen, got %v", err)
	}
}

func TestStore_Apply_PastDeadline(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := recruitstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p, err := store.CreatePosting(ctx, models.ProjectRecruitment{
		Title:         "Expired",
		PostedByID:    primitive.NewObjectID(),
		ApplyDeadline: time.Now().Add(-time.Hour),
	})
	if err != nil {
		t.Fatalf("CreatePosting failed: %v", err)
	}
	if err := store.SetPostingStatus(ctx, p.ID, models.RecruitmentOpen); err != nil {
		t.Fatalf("SetPostingStatus failed: %v", err)
	}

	_, err = store.Apply(ctx, models.RecruitmentApplication{
		RecruitmentID:  p.ID,
		ApplicantName:  "Too Late",
		ApplicantEmail: "toolate@example.com",
	})
	if err != recruitstore.ErrNotOpen {
		t.Errorf("expected ErrNotOpen past deadline, got %v", err)
	}
}

func TestStore_SetApplicationStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := recruitstore.New(db)
	posting := openPosting(t, store)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	app, err := store.Apply(ctx, models.RecruitmentApplication{
		RecruitmentID:  posting.ID,
		ApplicantName:  "Kavya N",
		ApplicantEmail: "kavya@example.com",
	})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if err := store.SetApplicationStatus(ctx, app.ID, models.ApplicationShortlisted); err != nil {
		t.Fatalf("SetApplicationStatus failed: %v", err)
	}
	if err := store.SetApplicationStatus(ctx, app.ID, "On Hold"); err == nil {
		t.Error("expected error for unknown status")
	}

	apps, _ := store.ListApplications(ctx, posting.ID)
	if apps[0].Status != models.ApplicationShortlisted {
		t.Errorf("Status: %q", apps[0].Status)
	}
}

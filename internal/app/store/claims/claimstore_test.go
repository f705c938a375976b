package claimstore_test

import (
	"testing"
	"time"

	claimstore "github.com/campusworks/researchdesk/internal/app/store/claims"
	"github.com/campusworks/researchdesk/internal/domain/models"
	"github.com/campusworks/researchdesk/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Create_Paper(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := claimstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.IncentiveClaim{
		UserID:     primitive.NewObjectID(),
		ClaimType:  models.ClaimResearchPaper,
		PaperTitle: "A Study",
		Quartile:   "Q2",
		AuthorType: models.AuthorFirst,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.Status != models.ClaimPending {
		t.Errorf("Status: got %q, want Pending", created.Status)
	}
	if created.ClaimYear != time.Now().Year() {
		t.Errorf("ClaimYear: got %d", created.ClaimYear)
	}
}

func TestStore_Create_UnknownType(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := claimstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.Create(ctx, models.IncentiveClaim{
		UserID:    primitive.NewObjectID(),
		ClaimType: "Grants",
	})
	if err == nil {
		t.Fatal("expected error for unknown claim type")
	}
}

func TestStore_Decide(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := claimstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.IncentiveClaim{
		UserID:     primitive.NewObjectID(),
		ClaimType:  models.ClaimResearchPaper,
		Quartile:   "Q1",
		AuthorType: models.AuthorFirst,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.Decide(ctx, created.ID, models.ClaimAccepted, 70, "verified"); err != nil {
		t.Fatalf("Decide failed: %v", err)
	}

	found, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if found.Status != models.ClaimAccepted {
		t.Errorf("Status: %q", found.Status)
	}
	if found.AcceptedPoints != 70 {
		t.Errorf("AcceptedPoints: %v", found.AcceptedPoints)
	}
	if found.DecidedAt == nil {
		t.Error("expected DecidedAt stamped")
	}

	// A second decision must not overwrite the first.
	err = store.Decide(ctx, created.ID, models.ClaimRejected, 0, "changed my mind")
	if err != claimstore.ErrAlreadyDecided {
		t.Errorf("expected ErrAlreadyDecided, got %v", err)
	}
}

func TestStore_Decide_BadStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := claimstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.Decide(ctx, primitive.NewObjectID(), "Maybe", 0, ""); err == nil {
		t.Fatal("expected error for bad status")
	}
}

func TestStore_AcceptedByUserYear(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := claimstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := primitive.NewObjectID()

	accepted, err := store.Create(ctx, models.IncentiveClaim{
		UserID: user, ClaimType: models.ClaimResearchPaper, ClaimYear: 2025,
		Quartile: "Q1", AuthorType: models.AuthorFirst,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := store.Decide(ctx, accepted.ID, models.ClaimAccepted, 70, ""); err != nil {
		t.Fatalf("Decide failed: %v", err)
	}

	// Pending claim in the same year, and an accepted one in another year.
	if _, err := store.Create(ctx, models.IncentiveClaim{
		UserID: user, ClaimType: models.ClaimBook, ClaimYear: 2025,
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	other, err := store.Create(ctx, models.IncentiveClaim{
		UserID: user, ClaimType: models.ClaimConference, ClaimYear: 2024,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := store.Decide(ctx, other.ID, models.ClaimAccepted, 14, ""); err != nil {
		t.Fatalf("Decide failed: %v", err)
	}

	got, err := store.AcceptedByUserYear(ctx, user, 2025)
	if err != nil {
		t.Fatalf("AcceptedByUserYear failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != accepted.ID {
		t.Errorf("AcceptedByUserYear: got %d claims", len(got))
	}
}

func TestStore_PendingOlderThan(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := claimstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	stale, err := store.Create(ctx, models.IncentiveClaim{
		UserID: primitive.NewObjectID(), ClaimType: models.ClaimMembership,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := store.PendingOlderThan(ctx, time.Now().Add(time.Minute))
	if err != nil {
		t.Fatalf("PendingOlderThan failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != stale.ID {
		t.Errorf("PendingOlderThan: got %d claims", len(got))
	}

	got, err = store.PendingOlderThan(ctx, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("PendingOlderThan failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no claims older than an hour, got %d", len(got))
	}
}

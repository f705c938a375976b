package notificationstore_test

import (
	"testing"
	"time"

	notificationstore "github.com/campusworks/researchdesk/internal/app/store/notifications"
	"github.com/campusworks/researchdesk/internal/domain/models"
	"github.com/campusworks/researchdesk/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_AddAndList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notificationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := primitive.NewObjectID()
	for _, title := range []string{"one", "two", "three"} {
		if _, err := store.Add(ctx, models.Notification{UserID: user, Title: title}); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	got, err := store.ListForUser(ctx, user, 2)
	if err != nil {
		t.Fatalf("ListForUser failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("ListForUser: got %d, want 2 (limit)", len(got))
	}

	n, err := store.UnreadCount(ctx, user)
	if err != nil {
		t.Fatalf("UnreadCount failed: %v", err)
	}
	if n != 3 {
		t.Errorf("UnreadCount: got %d, want 3", n)
	}
}

func TestStore_MarkRead_OwnerOnly(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notificationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := primitive.NewObjectID()
	created, err := store.Add(ctx, models.Notification{UserID: owner, Title: "hello"})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	// Another user cannot mark it read.
	if err := store.MarkRead(ctx, created.ID, primitive.NewObjectID()); err != mongo.ErrNoDocuments {
		t.Errorf("expected mongo.ErrNoDocuments for foreign user, got %v", err)
	}

	if err := store.MarkRead(ctx, created.ID, owner); err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}

	n, _ := store.UnreadCount(ctx, owner)
	if n != 0 {
		t.Errorf("UnreadCount after MarkRead: got %d, want 0", n)
	}
}

func TestStore_MarkReminder_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notificationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	record := primitive.NewObjectID()
	day := time.Date(2026, 9, 15, 10, 30, 0, 0, time.UTC)

	if err := store.MarkReminder(ctx, "emr-presentation", record, day, "pi@example.edu"); err != nil {
		t.Fatalf("MarkReminder failed: %v", err)
	}

	// Same window again: the marker blocks a double-send.
	err := store.MarkReminder(ctx, "emr-presentation", record, day, "pi@example.edu")
	if err != notificationstore.ErrReminderAlreadySent {
		t.Errorf("expected ErrReminderAlreadySent, got %v", err)
	}

	// A different recipient, day, or kind is a fresh slot.
	if err := store.MarkReminder(ctx, "emr-presentation", record, day, "copi@example.edu"); err != nil {
		t.Errorf("different recipient: %v", err)
	}
	if err := store.MarkReminder(ctx, "emr-presentation", record, day.AddDate(0, 0, 1), "pi@example.edu"); err != nil {
		t.Errorf("different day: %v", err)
	}
	if err := store.MarkReminder(ctx, "evaluation", record, day, "pi@example.edu"); err != nil {
		t.Errorf("different kind: %v", err)
	}
}

func TestStore_UnmarkReminder_ReleasesSlot(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notificationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	record := primitive.NewObjectID()
	day := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)

	if err := store.MarkReminder(ctx, "evaluation", record, day, "ev@example.edu"); err != nil {
		t.Fatalf("MarkReminder failed: %v", err)
	}
	if err := store.UnmarkReminder(ctx, "evaluation", record, day, "ev@example.edu"); err != nil {
		t.Fatalf("UnmarkReminder failed: %v", err)
	}
	if err := store.MarkReminder(ctx, "evaluation", record, day, "ev@example.edu"); err != nil {
		t.Errorf("slot should be free after Unmark: %v", err)
	}
}

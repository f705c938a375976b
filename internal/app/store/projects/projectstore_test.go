package projectstore_test

import (
	"testing"
	"time"

	projectstore "github.com/campusworks/researchdesk/internal/app/store/projects"
	"github.com/campusworks/researchdesk/internal/domain/models"
	"github.com/campusworks/researchdesk/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func newStore(t *testing.T) (*projectstore.Store, *testutil.Fixtures) {
	t.Helper()
	client, db := testutil.SetupTestClient(t)
	return projectstore.New(client, db), testutil.NewFixtures(t, db)
}

func TestStore_Create_Defaults(t *testing.T) {
	store, _ := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Project{
		Title:  "Low-Cost Soil Sensors",
		PIID:   primitive.NewObjectID(),
		PIName: "Dr. Rao",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.Status != models.ProjectDraft {
		t.Errorf("Status: got %q, want Draft", created.Status)
	}
	if created.TitleCI == "" {
		t.Error("expected TitleCI to be set")
	}
	if created.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}

func TestStore_TransitionStatus(t *testing.T) {
	store, _ := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Project{Title: "P", PIID: primitive.NewObjectID()})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.TransitionStatus(ctx, created.ID, models.ProjectDraft, models.ProjectSubmitted); err != nil {
		t.Fatalf("TransitionStatus failed: %v", err)
	}

	found, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if found.Status != models.ProjectSubmitted {
		t.Errorf("Status: got %q, want Submitted", found.Status)
	}
	if found.SubmittedAt == nil {
		t.Error("expected SubmittedAt stamped on submission")
	}
}

func TestStore_TransitionStatus_Conflict(t *testing.T) {
	store, _ := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Project{Title: "P", PIID: primitive.NewObjectID()})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// The project is in Draft, so a Submitted -> Under Review write must
	// report a conflict rather than apply.
	err = store.TransitionStatus(ctx, created.ID, models.ProjectSubmitted, models.ProjectUnderReview)
	if err != projectstore.ErrStatusConflict {
		t.Errorf("expected ErrStatusConflict, got %v", err)
	}

	found, _ := store.GetByID(ctx, created.ID)
	if found.Status != models.ProjectDraft {
		t.Errorf("Status must be untouched, got %q", found.Status)
	}
}

func TestStore_TransitionStatus_NotFound(t *testing.T) {
	store, _ := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := store.TransitionStatus(ctx, primitive.NewObjectID(), models.ProjectDraft, models.ProjectSubmitted)
	if err != mongo.ErrNoDocuments {
		t.Errorf("expected mongo.ErrNoDocuments, got %v", err)
	}
}

func TestStore_AddEvaluation_ReplacesEarlierVerdict(t *testing.T) {
	store, _ := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	evaluator := primitive.NewObjectID()
	created, err := store.Create(ctx, models.Project{Title: "P", PIID: primitive.NewObjectID()})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	first := models.Evaluation{EvaluatorID: evaluator, Recommended: false, Comments: "weak", SubmittedAt: time.Now()}
	if err := store.AddEvaluation(ctx, created.ID, first); err != nil {
		t.Fatalf("AddEvaluation failed: %v", err)
	}
	second := models.Evaluation{EvaluatorID: evaluator, Recommended: true, Comments: "revised", SubmittedAt: time.Now()}
	if err := store.AddEvaluation(ctx, created.ID, second); err != nil {
		t.Fatalf("AddEvaluation (second) failed: %v", err)
	}

	found, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(found.Evaluations) != 1 {
		t.Fatalf("Evaluations: got %d, want 1", len(found.Evaluations))
	}
	if !found.Evaluations[0].Recommended {
		t.Error("expected the replacement verdict to stick")
	}
}

func TestStore_ScheduleMeeting_WritesNotification(t *testing.T) {
	store, fixtures := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	pi := primitive.NewObjectID()
	created, err := store.Create(ctx, models.Project{Title: "P", PIID: pi})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	slot := models.MeetingSlot{Date: time.Now().Add(48 * time.Hour), Time: "10:30", Venue: "Senate Hall"}
	if err := store.ScheduleMeeting(ctx, &created, slot, "Your evaluation meeting is scheduled."); err != nil {
		t.Fatalf("ScheduleMeeting failed: %v", err)
	}

	found, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if found.Meeting == nil || found.Meeting.Venue != "Senate Hall" {
		t.Errorf("Meeting: %+v", found.Meeting)
	}

	n := fixtures.CountNotifications(ctx, pi)
	if n != 1 {
		t.Errorf("notifications for PI: got %d, want 1", n)
	}
}

func TestStore_MarkPhaseDisbursed(t *testing.T) {
	store, _ := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Project{Title: "P", PIID: primitive.NewObjectID()})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	phases := []models.GrantPhase{{Name: "Phase 1", Amount: 200000}, {Name: "Phase 2", Amount: 100000}}
	if err := store.SetSanction(ctx, created.ID, 300000, phases); err != nil {
		t.Fatalf("SetSanction failed: %v", err)
	}
	if err := store.MarkPhaseDisbursed(ctx, created.ID, "Phase 1"); err != nil {
		t.Fatalf("MarkPhaseDisbursed failed: %v", err)
	}

	found, _ := store.GetByID(ctx, created.ID)
	if found.GrantPhases[0].DisbursedAt == nil {
		t.Error("Phase 1 should be stamped")
	}
	if found.GrantPhases[1].DisbursedAt != nil {
		t.Error("Phase 2 must be untouched")
	}

	if err := store.MarkPhaseDisbursed(ctx, created.ID, "Phase 9"); err != mongo.ErrNoDocuments {
		t.Errorf("unknown phase: expected mongo.ErrNoDocuments, got %v", err)
	}
}

func TestStore_MeetingsOnDay(t *testing.T) {
	store, _ := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	day := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)

	onDay, err := store.Create(ctx, models.Project{Title: "On day", PIID: primitive.NewObjectID()})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := store.ScheduleMeeting(ctx, &onDay, models.MeetingSlot{Date: day.Add(11 * time.Hour)}, "m"); err != nil {
		t.Fatalf("ScheduleMeeting failed: %v", err)
	}

	offDay, err := store.Create(ctx, models.Project{Title: "Off day", PIID: primitive.NewObjectID()})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := store.ScheduleMeeting(ctx, &offDay, models.MeetingSlot{Date: day.Add(30 * time.Hour)}, "m"); err != nil {
		t.Fatalf("ScheduleMeeting failed: %v", err)
	}

	got, err := store.MeetingsOnDay(ctx, day)
	if err != nil {
		t.Fatalf("MeetingsOnDay failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != onDay.ID {
		t.Errorf("MeetingsOnDay: got %d projects", len(got))
	}
}

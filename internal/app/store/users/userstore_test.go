package userstore_test

import (
	"testing"

	userstore "github.com/campusworks/researchdesk/internal/app/store/users"
	"github.com/campusworks/researchdesk/internal/app/system/authz"
	"github.com/campusworks/researchdesk/internal/domain/models"
	"github.com/campusworks/researchdesk/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_Create_Faculty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := models.User{
		FullName: "Dr. Meera Iyer",
		Email:    "Meera.Iyer@Example.EDU",
		Role:     authz.RoleNameFaculty,
	}

	created, err := store.Create(ctx, user)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.Email != "meera.iyer@example.edu" {
		t.Errorf("Email not normalized: %q", created.Email)
	}
	if created.FullNameCI == "" {
		t.Error("expected FullNameCI to be set")
	}
	if created.ProfileComplete {
		t.Error("new accounts must start with an incomplete profile")
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
}

func TestStore_Create_InvalidRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.Create(ctx, models.User{
		FullName: "Nobody",
		Email:    "nobody@example.edu",
		Role:     "registrar",
	})
	if err == nil {
		t.Fatal("expected error for invalid role")
	}
}

func TestStore_Create_DuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.Create(ctx, models.User{
		FullName: "User One", Email: "dup@example.edu", Role: authz.RoleNameFaculty,
	})
	if err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	_, err = store.Create(ctx, models.User{
		FullName: "User Two", Email: "DUP@example.edu", Role: authz.RoleNameFaculty,
	})
	if err != userstore.ErrDuplicateEmail {
		t.Errorf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestStore_GetByEmail_CaseInsensitive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.User{
		FullName: "Find Me", Email: "FindMe@Example.EDU", Role: authz.RoleNameEvaluator,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	found, err := store.GetByEmail(ctx, "findme@example.edu")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("ID: got %v, want %v", found.ID, created.ID)
	}
}

func TestStore_GetByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.GetByID(ctx, primitive.NewObjectID()); err != mongo.ErrNoDocuments {
		t.Errorf("expected mongo.ErrNoDocuments, got %v", err)
	}
}

func TestStore_CompleteProfile(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.User{
		FullName: "Dr. Arjun Rao", Email: "arjun@example.edu", Role: authz.RoleNameFaculty,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	upd := userstore.ProfileUpdate{
		FullName:    "Dr. Arjun Rao",
		MID:         " m1042 ",
		Designation: "Associate Professor",
		Institute:   "Institute of Engineering",
		Department:  "Computer Science",
		OrcidID:     "0000-0002-1825-0097",
	}
	if err := store.CompleteProfile(ctx, created.ID, upd); err != nil {
		t.Fatalf("CompleteProfile failed: %v", err)
	}

	found, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if !found.ProfileComplete {
		t.Error("expected ProfileComplete after setup")
	}
	if found.MID != "M1042" {
		t.Errorf("MID not normalized: %q", found.MID)
	}
	if found.OrcidID != "0000-0002-1825-0097" {
		t.Errorf("OrcidID: %q", found.OrcidID)
	}
}

func TestStore_CompleteProfile_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := store.CompleteProfile(ctx, primitive.NewObjectID(), userstore.ProfileUpdate{FullName: "X"})
	if err != mongo.ErrNoDocuments {
		t.Errorf("expected mongo.ErrNoDocuments, got %v", err)
	}
}

func TestStore_SetAllowedModules(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.User{
		FullName: "Mod User", Email: "mod@example.edu", Role: authz.RoleNameFaculty,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	mods := []string{authz.ModuleProjects, authz.ModuleIncentives}
	if err := store.SetAllowedModules(ctx, created.ID, mods); err != nil {
		t.Fatalf("SetAllowedModules failed: %v", err)
	}

	found, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(found.AllowedModules) != 2 {
		t.Errorf("AllowedModules: %v", found.AllowedModules)
	}
}

func TestFetcher_FetchUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fetcher := userstore.NewFetcher(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.User{
		FullName: "Session User", Email: "session@example.edu", Role: authz.RoleNameCRO,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	su := fetcher.FetchUser(ctx, created.ID.Hex())
	if su == nil {
		t.Fatal("expected a session user")
	}
	if su.Role != authz.RoleNameCRO {
		t.Errorf("Role: %q", su.Role)
	}
	if su.Email != "session@example.edu" {
		t.Errorf("Email: %q", su.Email)
	}

	if got := fetcher.FetchUser(ctx, "not-a-hex-id"); got != nil {
		t.Error("malformed ID must yield nil")
	}
	if got := fetcher.FetchUser(ctx, primitive.NewObjectID().Hex()); got != nil {
		t.Error("unknown ID must yield nil")
	}
}

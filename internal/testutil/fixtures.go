package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/campusworks/researchdesk/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser creates a test user with the given role and a complete profile.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, email, role string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:              primitive.NewObjectID(),
		FullName:        fullName,
		FullNameCI:      text.Fold(fullName),
		Email:           email,
		EmailCI:         email,
		Role:            role,
		ProfileComplete: true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateProject creates a test project in the given status for the PI.
func (f *Fixtures) CreateProject(ctx context.Context, title string, pi models.User, status string) models.Project {
	f.t.Helper()

	now := time.Now().UTC()
	p := models.Project{
		ID:        primitive.NewObjectID(),
		Title:     title,
		TitleCI:   text.Fold(title),
		PIID:      pi.ID,
		PIName:    pi.FullName,
		PIEmail:   pi.Email,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := f.db.Collection("projects").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("failed to create test project: %v", err)
	}
	return p
}

// CreateFundingCall creates a test funding call with the given deadline.
func (f *Fixtures) CreateFundingCall(ctx context.Context, title string, deadline time.Time) models.FundingCall {
	f.t.Helper()

	now := time.Now().UTC()
	fc := models.FundingCall{
		ID:               primitive.NewObjectID(),
		Title:            title,
		TitleCI:          text.Fold(title),
		Agency:           "Test Agency",
		InterestDeadline: deadline,
		CreatedByID:      primitive.NewObjectID(),
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if _, err := f.db.Collection("fundingCalls").InsertOne(ctx, fc); err != nil {
		f.t.Fatalf("failed to create test funding call: %v", err)
	}
	return fc
}

// CountNotifications counts notifications addressed to the given user.
func (f *Fixtures) CountNotifications(ctx context.Context, userID primitive.ObjectID) int64 {
	f.t.Helper()

	n, err := f.db.Collection("notifications").CountDocuments(ctx, bson.M{"user_id": userID})
	if err != nil {
		f.t.Fatalf("failed to count notifications: %v", err)
	}
	return n
}

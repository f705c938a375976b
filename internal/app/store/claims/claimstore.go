package claimstore

import (
	"context"
	"errors"
	"time"

	"github.com/campusworks/researchdesk/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	errBadClaimType = errors.New("unknown claim type")

	// ErrAlreadyDecided is returned when accepting or rejecting a claim
	// that is no longer pending.
	ErrAlreadyDecided = errors.New("claim has already been decided")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("incentiveClaims")}
}

// Create inserts a new pending claim.
func (s *Store) Create(ctx context.Context, c models.IncentiveClaim) (models.IncentiveClaim, error) {
	switch c.ClaimType {
	case models.ClaimResearchPaper, models.ClaimPatent, models.ClaimBook,
		models.ClaimConference, models.ClaimMembership, models.ClaimAPC:
		// ok
	default:
		return models.IncentiveClaim{}, errBadClaimType
	}

	c.ID = primitive.NewObjectID()
	c.Status = models.ClaimPending
	if c.ClaimYear == 0 {
		c.ClaimYear = time.Now().Year()
	}
	now := time.Now()
	c.SubmittedAt = now
	c.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, c); err != nil {
		return models.IncentiveClaim{}, err
	}
	return c, nil
}

// GetByID loads a claim by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.IncentiveClaim, error) {
	var c models.IncentiveClaim
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Decide accepts or rejects a pending claim, freezing the awarded points and
// the reviewer's remarks. The filter on Pending makes racing decisions
// mutually exclusive.
func (s *Store) Decide(ctx context.Context, id primitive.ObjectID, status string, points float64, remarks string) error {
	if status != models.ClaimAccepted && status != models.ClaimRejected {
		return errors.New(`status must be "Accepted" or "Rejected"`)
	}

	now := time.Now()
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.ClaimPending},
		bson.M{"$set": bson.M{
			"status":          status,
			"accepted_points": points,
			"admin_remarks":   remarks,
			"decided_at":      now,
			"updated_at":      now,
		}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		if err := s.c.FindOne(ctx, bson.M{"_id": id}).Err(); err != nil {
			return err
		}
		return ErrAlreadyDecided
	}
	return nil
}

// ListByUser returns a user's claims, optionally restricted to a year.
// year == 0 means all years.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID, year int) ([]models.IncentiveClaim, error) {
	filter := bson.M{"user_id": userID}
	if year != 0 {
		filter["claim_year"] = year
	}
	return s.list(ctx, filter)
}

// ListPending returns all pending claims, oldest first, for the review queue.
func (s *Store) ListPending(ctx context.Context) ([]models.IncentiveClaim, error) {
	opts := options.Find().SetSort(bson.D{{Key: "submitted_at", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"status": models.ClaimPending}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.IncentiveClaim
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AcceptedByUserYear returns a user's accepted claims for one year. Scoring
// runs over this set.
func (s *Store) AcceptedByUserYear(ctx context.Context, userID primitive.ObjectID, year int) ([]models.IncentiveClaim, error) {
	return s.list(ctx, bson.M{
		"user_id":    userID,
		"claim_year": year,
		"status":     models.ClaimAccepted,
	})
}

// PendingOlderThan returns pending claims submitted before the cutoff, used
// by the follow-up reminder job.
func (s *Store) PendingOlderThan(ctx context.Context, cutoff time.Time) ([]models.IncentiveClaim, error) {
	return s.list(ctx, bson.M{
		"status":       models.ClaimPending,
		"submitted_at": bson.M{"$lt": cutoff},
	})
}

func (s *Store) list(ctx context.Context, filter bson.M) ([]models.IncentiveClaim, error) {
	opts := options.Find().SetSort(bson.D{{Key: "submitted_at", Value: -1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.IncentiveClaim
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

package callstore

import (
	"context"
	"time"

	"github.com/campusworks/researchdesk/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("fundingCalls")}
}

// Create inserts a new funding call announcement.
func (s *Store) Create(ctx context.Context, fc models.FundingCall) (models.FundingCall, error) {
	fc.ID = primitive.NewObjectID()
	fc.TitleCI = text.Fold(fc.Title)
	now := time.Now()
	fc.CreatedAt = now
	fc.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, fc); err != nil {
		return models.FundingCall{}, err
	}
	return fc, nil
}

// GetByID loads a funding call by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.FundingCall, error) {
	var fc models.FundingCall
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&fc); err != nil {
		return nil, err
	}
	return &fc, nil
}

// Update rewrites the announcement fields.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, title, agency, description, detailsURL string, deadline time.Time) error {
	set := bson.M{
		"title":             title,
		"title_ci":          text.Fold(title),
		"agency":            agency,
		"description":       description,
		"details_url":       detailsURL,
		"interest_deadline": deadline,
		"updated_at":        time.Now(),
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// SetMeetingSlots replaces the presentation slot list offered to registrants.
func (s *Store) SetMeetingSlots(ctx context.Context, id primitive.ObjectID, slots []models.MeetingSlot) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"meeting_slots": slots,
		"updated_at":    time.Now(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ListOpen returns calls whose interest deadline has not passed, soonest
// deadline first.
func (s *Store) ListOpen(ctx context.Context, now time.Time) ([]models.FundingCall, error) {
	return s.list(ctx, bson.M{"interest_deadline": bson.M{"$gte": now}})
}

// ListAll returns every call, soonest deadline first.
func (s *Store) ListAll(ctx context.Context) ([]models.FundingCall, error) {
	return s.list(ctx, bson.M{})
}

// Delete removes a call announcement.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (s *Store) list(ctx context.Context, filter bson.M) ([]models.FundingCall, error) {
	opts := options.Find().SetSort(bson.D{{Key: "interest_deadline", Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.FundingCall
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

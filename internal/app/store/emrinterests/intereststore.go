package intereststore

import (
	"context"
	"errors"
	"time"

	"github.com/campusworks/researchdesk/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrAlreadyRegistered is returned when a user registers interest in a call
// twice. The unique (call_id, user_id) index makes the insert itself the
// dedupe check, so two concurrent registrations cannot both land.
var ErrAlreadyRegistered = errors.New("interest already registered for this call")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("emrInterests")}
}

// Register inserts a new interest registration. Duplicate (call, user) pairs
// surface as ErrAlreadyRegistered.
func (s *Store) Register(ctx context.Context, in models.EmrInterest) (models.EmrInterest, error) {
	in.ID = primitive.NewObjectID()
	in.Status = models.InterestRegistered
	now := time.Now()
	in.RegisteredAt = now
	in.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, in); err != nil {
		if wafflemongo.IsDup(err) {
			return models.EmrInterest{}, ErrAlreadyRegistered
		}
		return models.EmrInterest{}, err
	}
	return in, nil
}

// GetByID loads an interest by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.EmrInterest, error) {
	var in models.EmrInterest
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&in); err != nil {
		return nil, err
	}
	return &in, nil
}

// GetByCallAndUser loads one user's registration for a call.
func (s *Store) GetByCallAndUser(ctx context.Context, callID, userID primitive.ObjectID) (*models.EmrInterest, error) {
	var in models.EmrInterest
	if err := s.c.FindOne(ctx, bson.M{"call_id": callID, "user_id": userID}).Decode(&in); err != nil {
		return nil, err
	}
	return &in, nil
}

// UpdateStatus writes a new interest status.
func (s *Store) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	switch status {
	case models.InterestRegistered, models.InterestScheduled, models.InterestEndorsed,
		models.InterestDeclined, models.InterestWithdrawn:
		// ok
	default:
		return errors.New("unknown interest status")
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"status":     status,
		"updated_at": time.Now(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ScheduleMeeting assigns a presentation slot and moves the interest to
// Meeting Scheduled.
func (s *Store) ScheduleMeeting(ctx context.Context, id primitive.ObjectID, slot models.MeetingSlot) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"meeting":    slot,
		"status":     models.InterestScheduled,
		"updated_at": time.Now(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// SetPresentation records the uploaded presentation file.
func (s *Store) SetPresentation(ctx context.Context, id primitive.ObjectID, url string) error {
	now := time.Now()
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"presentation_url":         url,
		"presentation_uploaded_at": now,
		"updated_at":               now,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// SetSanction records that the external agency sanctioned the project.
func (s *Store) SetSanction(ctx context.Context, id primitive.ObjectID, amount float64) error {
	now := time.Now()
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"sanctioned_amount": amount,
		"sanctioned_at":     now,
		"updated_at":        now,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ListByCall returns all registrations for a call.
func (s *Store) ListByCall(ctx context.Context, callID primitive.ObjectID) ([]models.EmrInterest, error) {
	return s.list(ctx, bson.M{"call_id": callID})
}

// ListByUser returns one user's registrations across calls.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.EmrInterest, error) {
	return s.list(ctx, bson.M{"user_id": userID})
}

// MeetingsOnDay returns interests whose presentation meeting falls on the
// given calendar day (UTC). The presentation reminder job runs over this.
func (s *Store) MeetingsOnDay(ctx context.Context, day time.Time) ([]models.EmrInterest, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)
	return s.list(ctx, bson.M{"meeting.date": bson.M{"$gte": start, "$lt": end}})
}

// SanctionedInYear returns a user's registrations sanctioned in the given
// year. Scoring runs over this.
func (s *Store) SanctionedInYear(ctx context.Context, userID primitive.ObjectID, year int) ([]models.EmrInterest, error) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)
	return s.list(ctx, bson.M{
		"user_id":       userID,
		"sanctioned_at": bson.M{"$gte": start, "$lt": end},
	})
}

func (s *Store) list(ctx context.Context, filter bson.M) ([]models.EmrInterest, error) {
	opts := options.Find().SetSort(bson.D{{Key: "registered_at", Value: -1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.EmrInterest
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

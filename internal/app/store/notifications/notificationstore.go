package notificationstore

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

// ErrReminderAlreadySent is returned by MarkReminder when the same
// (kind, record, day, recipient) marker already exists. The reminder jobs
// treat it as "skip this recipient".
var ErrReminderAlreadySent = errors.New("reminder already sent for this window")

type Store struct {
	notifications *mongo.Collection
	reminders     *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		notifications: db.Collection("notifications"),
		reminders:     db.Collection("remindersSent"),
	}
}

// Add inserts an in-app notification for a user.
func (s *Store) Add(ctx context.Context, n models.Notification) (models.Notification, error) {
	n.ID = primitive.NewObjectID()
	n.CreatedAt = time.Now()
	if _, err := s.notifications.InsertOne(ctx, n); err != nil {
		return models.Notification{}, err
	}
	return n, nil
}

// ListForUser returns a user's notifications, newest first, capped at limit.
func (s *Store) ListForUser(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.Notification, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)
	cur, err := s.notifications.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Notification
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkRead marks one of the user's notifications read. The user filter keeps
// one user from marking another's notifications.
func (s *Store) MarkRead(ctx context.Context, id, userID primitive.ObjectID) error {
	res, err := s.notifications.UpdateOne(ctx,
		bson.M{"_id": id, "user_id": userID},
		bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// UnreadCount returns how many unread notifications a user has.
func (s *Store) UnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.notifications.CountDocuments(ctx, bson.M{"user_id": userID, "read": false})
}

// MarkReminder claims the send slot for one reminder email. The unique index
// on (kind, record_id, target_day, recipient) makes the claim atomic: if the
// insert succeeds the caller owns the send, and a rerun of the same cron
// window gets ErrReminderAlreadySent instead of a second email.
func (s *Store) MarkReminder(ctx context.Context, kind string, recordID primitive.ObjectID, targetDay time.Time, recipient string) error {
	rec := models.ReminderRecord{
		ID:        primitive.NewObjectID(),
		Kind:      kind,
		RecordID:  recordID,
		TargetDay: targetDay.UTC().Format("2006-01-02"),
		Recipient: recipient,
		SentAt:    time.Now(),
	}
	if _, err := s.reminders.InsertOne(ctx, rec); err != nil {
		if wafflemongo.IsDup(err) {
			return ErrReminderAlreadySent
		}
		return err
	}
	return nil
}

// UnmarkReminder releases a claimed send slot after a failed send, so the
// next cron run retries the recipient.
func (s *Store) UnmarkReminder(ctx context.Context, kind string, recordID primitive.ObjectID, targetDay time.Time, recipient string) error {
	_, err := s.reminders.DeleteOne(ctx, bson.M{
		"kind":       kind,
		"record_id":  recordID,
		"target_day": targetDay.UTC().Format("2006-01-02"),
		"recipient":  recipient,
	})
	return err
}

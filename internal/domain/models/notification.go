// internal/domain/models/notification.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification is an in-app message for one user. Notifications that
// accompany a status change are written in the same transaction as the
// change itself.
type Notification struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID primitive.ObjectID `bson:"user_id" json:"user_id"`

	Title string `bson:"title" json:"title"`
	Body  string `bson:"body,omitempty" json:"body,omitempty"`
	Link  string `bson:"link,omitempty" json:"link,omitempty"`

	Read bool `bson:"read" json:"read"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// ReminderRecord marks that a reminder email of a given kind was sent for a
// record on a target date. Cron endpoints consult it so a job retriggered
// for the same window does not double-send.
type ReminderRecord struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Kind      string             `bson:"kind" json:"kind"`
	RecordID  primitive.ObjectID `bson:"record_id" json:"record_id"`
	TargetDay string             `bson:"target_day" json:"target_day"` // YYYY-MM-DD
	Recipient string             `bson:"recipient" json:"recipient"`
	SentAt    time.Time          `bson:"sent_at" json:"sent_at"`
}

// SystemLog is an audit/log entry persisted to the logs collection.
type SystemLog struct {
	ID      primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Level   string              `bson:"level" json:"level"` // info | warn | error
	Event   string              `bson:"event" json:"event"`
	Message string              `bson:"message,omitempty" json:"message,omitempty"`
	ActorID *primitive.ObjectID `bson:"actor_id,omitempty" json:"actor_id,omitempty"`
	Actor   string              `bson:"actor,omitempty" json:"actor,omitempty"`
	Context map[string]string   `bson:"context,omitempty" json:"context,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

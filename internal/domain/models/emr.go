// internal/domain/models/emr.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EMR interest statuses.
const (
	InterestRegistered = "Registered"
	InterestScheduled  = "Meeting Scheduled"
	InterestEndorsed   = "Endorsed"
	InterestDeclined   = "Declined"
	InterestWithdrawn  = "Withdrawn"
)

// FundingCall is an external (extramural) grant opportunity announced to
// faculty. Interested faculty register an EmrInterest before the deadline.
type FundingCall struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title   string             `bson:"title" json:"title"`
	TitleCI string             `bson:"title_ci" json:"title_ci"`

	Agency      string `bson:"agency" json:"agency"`
	Description string `bson:"description,omitempty" json:"description,omitempty"` // sanitized HTML
	DetailsURL  string `bson:"details_url,omitempty" json:"details_url,omitempty"`

	InterestDeadline time.Time     `bson:"interest_deadline" json:"interest_deadline"`
	MeetingSlots     []MeetingSlot `bson:"meeting_slots,omitempty" json:"meeting_slots,omitempty"`

	CreatedByID primitive.ObjectID `bson:"created_by_id" json:"created_by_id"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// EmrInterest is one faculty member's registration of interest in a funding
// call. The (call_id, user_id) pair is unique-indexed so concurrent duplicate
// submissions collapse into one document instead of racing check-then-write.
type EmrInterest struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CallID primitive.ObjectID `bson:"call_id" json:"call_id"`
	UserID primitive.ObjectID `bson:"user_id" json:"user_id"`

	UserName  string `bson:"user_name" json:"user_name"`
	UserEmail string `bson:"user_email" json:"user_email"`
	Institute string `bson:"institute,omitempty" json:"institute,omitempty"`

	Status string `bson:"status" json:"status"`
	IsPI   bool   `bson:"is_pi" json:"is_pi"` // PI vs co-PI on the eventual proposal

	Meeting *MeetingSlot `bson:"meeting,omitempty" json:"meeting,omitempty"`

	PresentationURL        string     `bson:"presentation_url,omitempty" json:"presentation_url,omitempty"`
	PresentationUploadedAt *time.Time `bson:"presentation_uploaded_at,omitempty" json:"presentation_uploaded_at,omitempty"`

	// Set once the external agency sanctions the project; feeds ARPS.
	SanctionedAmount float64    `bson:"sanctioned_amount,omitempty" json:"sanctioned_amount,omitempty"`
	SanctionedAt     *time.Time `bson:"sanctioned_at,omitempty" json:"sanctioned_at,omitempty"`

	RegisteredAt time.Time `bson:"registered_at" json:"registered_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}

// HasPresentation reports whether a presentation file has been uploaded.
func (e *EmrInterest) HasPresentation() bool {
	return e.PresentationURL != ""
}

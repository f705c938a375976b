// internal/domain/models/project.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Project statuses. Transitions are enforced by projectpolicy.CanTransition;
// handlers never write a status the table does not allow.
const (
	ProjectDraft          = "Draft"
	ProjectSubmitted      = "Submitted"
	ProjectUnderReview    = "Under Review"
	ProjectRevisionNeeded = "Revision Needed"
	ProjectRecommended    = "Recommended"
	ProjectNotRecommended = "Not Recommended"
	ProjectInProgress     = "In Progress"
	ProjectCompleted      = "Completed"
)

// GrantPhase is one disbursement tranche of a sanctioned project grant.
type GrantPhase struct {
	Name        string     `bson:"name" json:"name"`
	Amount      float64    `bson:"amount" json:"amount"`
	DisbursedAt *time.Time `bson:"disbursed_at,omitempty" json:"disbursed_at,omitempty"`
}

// Evaluation is one evaluator's recorded verdict on a project.
type Evaluation struct {
	EvaluatorID primitive.ObjectID `bson:"evaluator_id" json:"evaluator_id"`
	Comments    string             `bson:"comments,omitempty" json:"comments,omitempty"`
	Recommended bool               `bson:"recommended" json:"recommended"`
	SubmittedAt time.Time          `bson:"submitted_at" json:"submitted_at"`
}

// MeetingSlot is a scheduled evaluation (IMR) or presentation (EMR) meeting.
type MeetingSlot struct {
	Date  time.Time `bson:"date" json:"date"`
	Time  string    `bson:"time,omitempty" json:"time,omitempty"`
	Venue string    `bson:"venue,omitempty" json:"venue,omitempty"`
}

// Project is an intramural (IMR) research project proposal.
type Project struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title   string             `bson:"title" json:"title"`
	TitleCI string             `bson:"title_ci" json:"title_ci"` // lowercase, diacritics-stripped

	Abstract string `bson:"abstract,omitempty" json:"abstract,omitempty"` // sanitized HTML

	PIID      primitive.ObjectID   `bson:"pi_id" json:"pi_id"`
	PIName    string               `bson:"pi_name" json:"pi_name"`
	PIEmail   string               `bson:"pi_email" json:"pi_email"`
	CoPIIDs   []primitive.ObjectID `bson:"co_pi_ids,omitempty" json:"co_pi_ids,omitempty"`
	Faculty   string               `bson:"faculty,omitempty" json:"faculty,omitempty"`
	Institute string               `bson:"institute,omitempty" json:"institute,omitempty"`

	Status string `bson:"status" json:"status"`

	EvaluatorIDs []primitive.ObjectID `bson:"evaluator_ids,omitempty" json:"evaluator_ids,omitempty"`
	Evaluations  []Evaluation         `bson:"evaluations,omitempty" json:"evaluations,omitempty"`
	Meeting      *MeetingSlot         `bson:"meeting,omitempty" json:"meeting,omitempty"`

	SanctionedAmount float64      `bson:"sanctioned_amount,omitempty" json:"sanctioned_amount,omitempty"`
	GrantPhases      []GrantPhase `bson:"grant_phases,omitempty" json:"grant_phases,omitempty"`

	ProposalURL string `bson:"proposal_url,omitempty" json:"proposal_url,omitempty"`

	SubmittedAt *time.Time `bson:"submitted_at,omitempty" json:"submitted_at,omitempty"`
	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"updated_at"`
}

// HasEvaluator reports whether the given user is assigned as an evaluator.
func (p *Project) HasEvaluator(id primitive.ObjectID) bool {
	for _, eid := range p.EvaluatorIDs {
		if eid == id {
			return true
		}
	}
	return false
}

// EvaluationBy returns the evaluation submitted by the given evaluator, if any.
func (p *Project) EvaluationBy(id primitive.ObjectID) (Evaluation, bool) {
	for _, ev := range p.Evaluations {
		if ev.EvaluatorID == id {
			return ev, true
		}
	}
	return Evaluation{}, false
}

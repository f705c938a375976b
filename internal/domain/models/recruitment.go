// internal/domain/models/recruitment.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Recruitment posting statuses. New postings start Pending Approval and only
// become visible to applicants once an admin opens them.
const (
	RecruitmentPending  = "Pending Approval"
	RecruitmentOpen     = "Open"
	RecruitmentClosed   = "Closed"
	RecruitmentRejected = "Rejected"
)

// Application statuses.
const (
	ApplicationReceived    = "Received"
	ApplicationShortlisted = "Shortlisted"
	ApplicationSelected    = "Selected"
	ApplicationNotSelected = "Not Selected"
)

// ProjectRecruitment is a job posting (JRF/SRF/project staff) attached to a
// research project.
type ProjectRecruitment struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title   string             `bson:"title" json:"title"`
	TitleCI string             `bson:"title_ci" json:"title_ci"`

	ProjectID    *primitive.ObjectID `bson:"project_id,omitempty" json:"project_id,omitempty"`
	ProjectTitle string              `bson:"project_title,omitempty" json:"project_title,omitempty"`

	PostedByID   primitive.ObjectID `bson:"posted_by_id" json:"posted_by_id"`
	PostedByName string             `bson:"posted_by_name" json:"posted_by_name"`

	Qualifications  string    `bson:"qualifications,omitempty" json:"qualifications,omitempty"` // sanitized HTML
	StipendPerMonth float64   `bson:"stipend_per_month,omitempty" json:"stipend_per_month,omitempty"`
	ApplyDeadline   time.Time `bson:"apply_deadline" json:"apply_deadline"`

	Status string `bson:"status" json:"status"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// RecruitmentApplication is one candidate's application to a posting.
type RecruitmentApplication struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RecruitmentID primitive.ObjectID `bson:"recruitment_id" json:"recruitment_id"`

	ApplicantName  string `bson:"applicant_name" json:"applicant_name"`
	ApplicantEmail string `bson:"applicant_email" json:"applicant_email"`
	Phone          string `bson:"phone,omitempty" json:"phone,omitempty"`
	ResumeURL      string `bson:"resume_url,omitempty" json:"resume_url,omitempty"`
	CoverNote      string `bson:"cover_note,omitempty" json:"cover_note,omitempty"`

	Status string `bson:"status" json:"status"`

	AppliedAt time.Time `bson:"applied_at" json:"applied_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

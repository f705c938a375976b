// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents faculty, evaluators, CRO staff, and administrators.
//
// NOTE:
//   - AllowedModules gates feature access on top of the role defaults;
//     see authz.ModulesFor for the role capability table.
//   - PasswordHash is empty for Google sign-in accounts (GoogleSubject set).
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName   string             `bson:"full_name" json:"full_name"`
	FullNameCI string             `bson:"full_name_ci" json:"full_name_ci"` // lowercase, diacritics-stripped
	Email      string             `bson:"email" json:"email"`
	EmailCI    string             `bson:"email_ci" json:"email_ci"`

	Role   string `bson:"role" json:"role"` // faculty | evaluator | cro | admin | super_admin
	Status string `bson:"status,omitempty" json:"status,omitempty"`

	// Credentials: exactly one of PasswordHash or GoogleSubject is set.
	PasswordHash  string `bson:"password_hash,omitempty" json:"-"`
	GoogleSubject string `bson:"google_subject,omitempty" json:"-"`

	// Institutional identity
	MID         string `bson:"mid,omitempty" json:"mid,omitempty"` // staff ID issued by the university
	CampusID    string `bson:"campus_id,omitempty" json:"campus_id,omitempty"`
	Designation string `bson:"designation,omitempty" json:"designation,omitempty"`
	Institute   string `bson:"institute,omitempty" json:"institute,omitempty"`
	Department  string `bson:"department,omitempty" json:"department,omitempty"`
	Phone       string `bson:"phone,omitempty" json:"phone,omitempty"`

	// Bibliographic identifiers captured during profile setup
	OrcidID  string `bson:"orcid_id,omitempty" json:"orcid_id,omitempty"`
	ScopusID string `bson:"scopus_id,omitempty" json:"scopus_id,omitempty"`
	VidwanID string `bson:"vidwan_id,omitempty" json:"vidwan_id,omitempty"`

	ProfileComplete bool     `bson:"profile_complete" json:"profile_complete"`
	AllowedModules  []string `bson:"allowed_modules,omitempty" json:"allowed_modules,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

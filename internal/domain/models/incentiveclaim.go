// internal/domain/models/incentiveclaim.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Claim categories. Each category uses its own field subset on
// IncentiveClaim; the rest stay zero-valued.
const (
	ClaimResearchPaper = "Research Papers"
	ClaimPatent        = "Patents"
	ClaimBook          = "Books"
	ClaimConference    = "Conference Presentations"
	ClaimMembership    = "Professional Body Memberships"
	ClaimAPC           = "Seed Money for APC"
)

// Claim statuses.
const (
	ClaimPending  = "Pending"
	ClaimAccepted = "Accepted"
	ClaimRejected = "Rejected"
)

// Author roles on a research paper claim.
const (
	AuthorFirst         = "First Author"
	AuthorCorresponding = "Corresponding Author"
	AuthorCo            = "Co-Author"
)

// Patent fields.
const (
	PatentFiled         = "Filed"
	PatentPublished     = "Published"
	PatentGranted       = "Granted"
	PatentLocaleNation  = "National"
	PatentLocaleForeign = "International"
)

// IncentiveClaim is a faculty incentive application. It is a tagged union
// over ClaimType: paper, patent, book, conference, membership, and APC
// claims each populate their own field group.
type IncentiveClaim struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	UserName  string             `bson:"user_name" json:"user_name"`
	UserEmail string             `bson:"user_email" json:"user_email"`

	ClaimType string `bson:"claim_type" json:"claim_type"`
	Status    string `bson:"status" json:"status"`
	ClaimYear int    `bson:"claim_year" json:"claim_year"`

	// Research paper
	PaperTitle     string `bson:"paper_title,omitempty" json:"paper_title,omitempty"`
	JournalName    string `bson:"journal_name,omitempty" json:"journal_name,omitempty"`
	Quartile       string `bson:"quartile,omitempty" json:"quartile,omitempty"` // Q1..Q4
	IndexedIn      string `bson:"indexed_in,omitempty" json:"indexed_in,omitempty"`
	AuthorType     string `bson:"author_type,omitempty" json:"author_type,omitempty"`
	AuthorPosition int    `bson:"author_position,omitempty" json:"author_position,omitempty"`
	DOI            string `bson:"doi,omitempty" json:"doi,omitempty"`

	// Patent
	PatentTitle       string `bson:"patent_title,omitempty" json:"patent_title,omitempty"`
	PatentStatus      string `bson:"patent_status,omitempty" json:"patent_status,omitempty"`
	PatentLocale      string `bson:"patent_locale,omitempty" json:"patent_locale,omitempty"`
	FiledInPuName     bool   `bson:"filed_in_pu_name,omitempty" json:"filed_in_pu_name,omitempty"`
	IsPuSoleApplicant bool   `bson:"is_pu_sole_applicant,omitempty" json:"is_pu_sole_applicant,omitempty"`

	// Book / chapter
	BookTitle string `bson:"book_title,omitempty" json:"book_title,omitempty"`
	BookType  string `bson:"book_type,omitempty" json:"book_type,omitempty"` // book | chapter
	Publisher string `bson:"publisher,omitempty" json:"publisher,omitempty"`
	ISBN      string `bson:"isbn,omitempty" json:"isbn,omitempty"`

	// Conference
	ConferenceName  string `bson:"conference_name,omitempty" json:"conference_name,omitempty"`
	ConferenceVenue string `bson:"conference_venue,omitempty" json:"conference_venue,omitempty"`

	// Professional body membership
	MembershipBody string  `bson:"membership_body,omitempty" json:"membership_body,omitempty"`
	MembershipFee  float64 `bson:"membership_fee,omitempty" json:"membership_fee,omitempty"`

	// APC (article processing charge) seed money
	APCAmount float64 `bson:"apc_amount,omitempty" json:"apc_amount,omitempty"`

	// Supporting document in blob storage
	ProofURL string `bson:"proof_url,omitempty" json:"proof_url,omitempty"`

	// Point value frozen at acceptance time so later table changes do not
	// rewrite history.
	AcceptedPoints float64 `bson:"accepted_points,omitempty" json:"accepted_points,omitempty"`

	AdminRemarks string     `bson:"admin_remarks,omitempty" json:"admin_remarks,omitempty"`
	DecidedAt    *time.Time `bson:"decided_at,omitempty" json:"decided_at,omitempty"`

	SubmittedAt time.Time `bson:"submitted_at" json:"submitted_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}

package recruitstore

import (
	"context"
	"errors"
	"time"

	"github.com/campusworks/researchdesk/internal/app/system/normalize"
	"github.com/campusworks/researchdesk/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotOpen is returned when applying to a posting that is not accepting
// applications.
var ErrNotOpen = errors.New("posting is not open for applications")

type Store struct {
	postings     *mongo.Collection
	applications *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		postings:     db.Collection("projectRecruitments"),
		applications: db.Collection("recruitmentApplications"),
	}
}

// CreatePosting inserts a new posting awaiting admin approval.
func (s *Store) CreatePosting(ctx context.Context, p models.ProjectRecruitment) (models.ProjectRecruitment, error) {
	p.ID = primitive.NewObjectID()
	p.TitleCI = text.Fold(p.Title)
	p.Status = models.RecruitmentPending
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	if _, err := s.postings.InsertOne(ctx, p); err != nil {
		return models.ProjectRecruitment{}, err
	}
	return p, nil
}

// GetPosting loads a posting by ObjectID.
func (s *Store) GetPosting(ctx context.Context, id primitive.ObjectID) (*models.ProjectRecruitment, error) {
	var p models.ProjectRecruitment
	if err := s.postings.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// SetPostingStatus moves a posting between approval states.
func (s *Store) SetPostingStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	switch status {
	case models.RecruitmentPending, models.RecruitmentOpen,
		models.RecruitmentClosed, models.RecruitmentRejected:
		// ok
	default:
		return errors.New("unknown posting status")
	}
	res, err := s.postings.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
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

// ListOpen returns postings accepting applications, nearest deadline first.
func (s *Store) ListOpen(ctx context.Context, now time.Time) ([]models.ProjectRecruitment, error) {
	return s.listPostings(ctx, bson.M{
		"status":         models.RecruitmentOpen,
		"apply_deadline": bson.M{"$gte": now},
	})
}

// ListByPoster returns postings created by the given user.
func (s *Store) ListByPoster(ctx context.Context, posterID primitive.ObjectID) ([]models.ProjectRecruitment, error) {
	return s.listPostings(ctx, bson.M{"posted_by_id": posterID})
}

// ListPendingApproval returns postings awaiting an admin decision.
func (s *Store) ListPendingApproval(ctx context.Context) ([]models.ProjectRecruitment, error) {
	return s.listPostings(ctx, bson.M{"status": models.RecruitmentPending})
}

// Apply records a candidate's application against an open posting. The
// posting's status and deadline are checked first; a closed or expired
// posting yields ErrNotOpen.
func (s *Store) Apply(ctx context.Context, a models.RecruitmentApplication) (models.RecruitmentApplication, error) {
	var p models.ProjectRecruitment
	if err := s.postings.FindOne(ctx, bson.M{"_id": a.RecruitmentID}).Decode(&p); err != nil {
		return models.RecruitmentApplication{}, err
	}
	if p.Status != models.RecruitmentOpen || time.Now().After(p.ApplyDeadline) {
		return models.RecruitmentApplication{}, ErrNotOpen
	}

	a.ID = primitive.NewObjectID()
	a.ApplicantEmail = normalize.Email(a.ApplicantEmail)
	a.Status = models.ApplicationReceived
	now := time.Now()
	a.AppliedAt = now
	a.UpdatedAt = now

	if _, err := s.applications.InsertOne(ctx, a); err != nil {
		return models.RecruitmentApplication{}, err
	}
	return a, nil
}

// ListApplications returns a posting's applications, newest first.
func (s *Store) ListApplications(ctx context.Context, recruitmentID primitive.ObjectID) ([]models.RecruitmentApplication, error) {
	opts := options.Find().SetSort(bson.D{{Key: "applied_at", Value: -1}})
	cur, err := s.applications.Find(ctx, bson.M{"recruitment_id": recruitmentID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.RecruitmentApplication
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetApplication returns a single application by ID.
func (s *Store) GetApplication(ctx context.Context, id primitive.ObjectID) (*models.RecruitmentApplication, error) {
	var a models.RecruitmentApplication
	if err := s.applications.FindOne(ctx, bson.M{"_id": id}).Decode(&a); err != nil {
		return nil, err
	}
	return &a, nil
}

// SetApplicationStatus moves an application through the screening pipeline.
func (s *Store) SetApplicationStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	switch status {
	case models.ApplicationReceived, models.ApplicationShortlisted,
		models.ApplicationSelected, models.ApplicationNotSelected:
		// ok
	default:
		return errors.New("unknown application status")
	}
	res, err := s.applications.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
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

func (s *Store) listPostings(ctx context.Context, filter bson.M) ([]models.ProjectRecruitment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "apply_deadline", Value: 1}})
	cur, err := s.postings.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.ProjectRecruitment
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

package projectstore

import (
	"context"
	"errors"
	"time"

	"github.com/campusworks/researchdesk/internal/app/system/txn"
	"github.com/campusworks/researchdesk/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrStatusConflict is returned when a status transition loses a race: the
// project was no longer in the expected status when the write applied.
var ErrStatusConflict = errors.New("project status changed concurrently")

type Store struct {
	client        *mongo.Client
	c             *mongo.Collection
	notifications *mongo.Collection
}

func New(client *mongo.Client, db *mongo.Database) *Store {
	return &Store{
		client:        client,
		c:             db.Collection("projects"),
		notifications: db.Collection("notifications"),
	}
}

// Create inserts a new draft proposal.
func (s *Store) Create(ctx context.Context, p models.Project) (models.Project, error) {
	p.ID = primitive.NewObjectID()
	p.TitleCI = text.Fold(p.Title)
	if p.Status == "" {
		p.Status = models.ProjectDraft
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return models.Project{}, err
	}
	return p, nil
}

// GetByID loads a project by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Project, error) {
	var p models.Project
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProposal rewrites the editable proposal fields.
func (s *Store) UpdateProposal(ctx context.Context, id primitive.ObjectID, title, abstract string, coPIIDs []primitive.ObjectID) error {
	set := bson.M{
		"title":      title,
		"title_ci":   text.Fold(title),
		"abstract":   abstract,
		"co_pi_ids":  coPIIDs,
		"updated_at": time.Now(),
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

// TransitionStatus moves a project from one status to another with a
// compare-and-set on the current status, so two racing review decisions
// cannot both apply. The legality of the move is the caller's concern.
func (s *Store) TransitionStatus(ctx context.Context, id primitive.ObjectID, from, to string) error {
	set := bson.M{"status": to, "updated_at": time.Now()}
	if from == models.ProjectDraft && to == models.ProjectSubmitted {
		now := time.Now()
		set["submitted_at"] = now
	}

	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id, "status": from}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// Either the project is gone or its status moved under us.
		if err := s.c.FindOne(ctx, bson.M{"_id": id}).Err(); err != nil {
			return err
		}
		return ErrStatusConflict
	}
	return nil
}

// AssignEvaluators replaces the evaluator panel.
func (s *Store) AssignEvaluators(ctx context.Context, id primitive.ObjectID, evaluatorIDs []primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"evaluator_ids": evaluatorIDs,
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

// AddEvaluation records one evaluator's verdict, replacing any earlier
// evaluation by the same evaluator.
func (s *Store) AddEvaluation(ctx context.Context, id primitive.ObjectID, ev models.Evaluation) error {
	// Drop a previous verdict by this evaluator, then push the new one.
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$pull": bson.M{"evaluations": bson.M{"evaluator_id": ev.EvaluatorID}},
	})
	if err != nil {
		return err
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$push": bson.M{"evaluations": ev},
		"$set":  bson.M{"updated_at": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ScheduleMeeting writes the meeting slot and the PI's notification as one
// transactional unit, so a notification never points at an unscheduled
// project.
func (s *Store) ScheduleMeeting(ctx context.Context, p *models.Project, slot models.MeetingSlot, message string) error {
	return txn.WithTransaction(ctx, s.client, func(ctx context.Context) error {
		res, err := s.c.UpdateOne(ctx, bson.M{"_id": p.ID}, bson.M{"$set": bson.M{
			"meeting":    slot,
			"updated_at": time.Now(),
		}})
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			return mongo.ErrNoDocuments
		}

		n := models.Notification{
			ID:        primitive.NewObjectID(),
			UserID:    p.PIID,
			Title:     "Evaluation meeting scheduled",
			Body:      message,
			Link:      "/projects/" + p.ID.Hex(),
			CreatedAt: time.Now(),
		}
		_, err = s.notifications.InsertOne(ctx, n)
		return err
	})
}

// SetSanction records the sanctioned amount and the disbursement plan.
func (s *Store) SetSanction(ctx context.Context, id primitive.ObjectID, amount float64, phases []models.GrantPhase) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"sanctioned_amount": amount,
		"grant_phases":      phases,
		"updated_at":        time.Now(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// MarkPhaseDisbursed stamps one named grant phase as disbursed.
func (s *Store) MarkPhaseDisbursed(ctx context.Context, id primitive.ObjectID, phaseName string) error {
	now := time.Now()
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "grant_phases.name": phaseName},
		bson.M{"$set": bson.M{
			"grant_phases.$.disbursed_at": now,
			"updated_at":                  now,
		}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete removes a project.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ListByPI returns a faculty member's own proposals, newest first.
func (s *Store) ListByPI(ctx context.Context, piID primitive.ObjectID) ([]models.Project, error) {
	return s.list(ctx, bson.M{"pi_id": piID})
}

// ListByEvaluator returns projects assigned to the given evaluator.
func (s *Store) ListByEvaluator(ctx context.Context, evaluatorID primitive.ObjectID) ([]models.Project, error) {
	return s.list(ctx, bson.M{"evaluator_ids": evaluatorID})
}

// ListByStatus returns projects in the given status.
func (s *Store) ListByStatus(ctx context.Context, status string) ([]models.Project, error) {
	return s.list(ctx, bson.M{"status": status})
}

// MeetingsOnDay returns projects whose evaluation meeting falls on the given
// calendar day (UTC), regardless of status.
func (s *Store) MeetingsOnDay(ctx context.Context, day time.Time) ([]models.Project, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)
	return s.list(ctx, bson.M{"meeting.date": bson.M{"$gte": start, "$lt": end}})
}

func (s *Store) list(ctx context.Context, filter bson.M) ([]models.Project, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Project
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

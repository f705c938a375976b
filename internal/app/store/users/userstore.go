package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/campusworks/researchdesk/internal/app/system/authz"
	"github.com/campusworks/researchdesk/internal/app/system/normalize"
	"github.com/campusworks/researchdesk/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

var (
	// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	errBadRole        = errors.New(`role must be "faculty"|"evaluator"|"cro"|"admin"|"super_admin"`)
)

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by case-insensitive email. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email_ci": normalize.Email(email)}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByGoogleSubject looks up a Google sign-in account by its OIDC subject.
func (s *Store) GetByGoogleSubject(ctx context.Context, subject string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"google_subject": subject}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// EmailExists reports whether any account uses the given email.
func (s *Store) EmailExists(ctx context.Context, email string) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"email_ci": normalize.Email(email)}).Err()
	if err == nil {
		return true, nil
	}
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	return false, err
}

// Create inserts a new user after normalizing and validating fields. New
// accounts start with an incomplete profile until profile setup runs.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.FullName = normalize.Name(u.FullName)
	u.FullNameCI = text.Fold(u.FullName)
	u.Email = normalize.Email(u.Email)
	u.EmailCI = u.Email
	u.MID = normalize.MID(u.MID)

	if authz.ParseRole(u.Role) == authz.RoleUnknown {
		return models.User{}, errBadRole
	}

	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// ProfileUpdate holds the fields a user may change during profile setup.
type ProfileUpdate struct {
	FullName    string
	MID         string
	CampusID    string
	Designation string
	Institute   string
	Department  string
	Phone       string
	OrcidID     string
	ScopusID    string
	VidwanID    string
}

// CompleteProfile writes the profile fields and marks the profile complete.
func (s *Store) CompleteProfile(ctx context.Context, id primitive.ObjectID, upd ProfileUpdate) error {
	name := normalize.Name(upd.FullName)
	set := bson.M{
		"full_name":        name,
		"full_name_ci":     text.Fold(name),
		"mid":              normalize.MID(upd.MID),
		"campus_id":        upd.CampusID,
		"designation":      upd.Designation,
		"institute":        upd.Institute,
		"department":       upd.Department,
		"phone":            upd.Phone,
		"orcid_id":         upd.OrcidID,
		"scopus_id":        upd.ScopusID,
		"vidwan_id":        upd.VidwanID,
		"profile_complete": true,
		"updated_at":       time.Now(),
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

// SetAllowedModules replaces a user's module grant list.
func (s *Store) SetAllowedModules(ctx context.Context, id primitive.ObjectID, modules []string) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"allowed_modules": modules,
		"updated_at":      time.Now(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// SetRole changes a user's role.
func (s *Store) SetRole(ctx context.Context, id primitive.ObjectID, role string) error {
	if authz.ParseRole(role) == authz.RoleUnknown {
		return errBadRole
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"role":       role,
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

// ListByRole returns users with the given role, sorted by folded name.
func (s *Store) ListByRole(ctx context.Context, role string) ([]models.User, error) {
	cur, err := s.c.Find(ctx, bson.M{"role": role})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.User
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

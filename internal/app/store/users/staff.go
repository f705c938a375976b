// internal/app/store/users/staff.go
package userstore

import (
	"context"
	"time"

	"github.com/campusworks/researchdesk/internal/app/system/authz"
	"github.com/campusworks/researchdesk/internal/app/system/normalize"
	"github.com/campusworks/researchdesk/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GetByMID looks up a staff record by university staff ID.
func (s *Store) GetByMID(ctx context.Context, mid string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"mid": normalize.MID(mid)}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByCampusID looks up a staff record by campus ID.
func (s *Store) GetByCampusID(ctx context.Context, campusID string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"campus_id": campusID}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// StaffRow is one row of a staff directory import.
type StaffRow struct {
	MID         string
	FullName    string
	Email       string
	Designation string
	Institute   string
	Department  string
	Phone       string
}

// UpsertStaff writes one imported staff row, keyed by MID. A new MID creates
// a faculty account without credentials; the owner signs in with Google (or
// sets a password) using the imported email. Returns whether a document was
// created. Email collisions with a different MID surface as ErrDuplicateEmail.
func (s *Store) UpsertStaff(ctx context.Context, row StaffRow) (bool, error) {
	mid := normalize.MID(row.MID)
	name := normalize.Name(row.FullName)
	email := normalize.Email(row.Email)
	now := time.Now()

	res, err := s.c.UpdateOne(ctx,
		bson.M{"mid": mid},
		bson.M{
			"$set": bson.M{
				"full_name":    name,
				"full_name_ci": text.Fold(name),
				"email":        email,
				"email_ci":     email,
				"designation":  row.Designation,
				"institute":    row.Institute,
				"department":   row.Department,
				"phone":        row.Phone,
				"updated_at":   now,
			},
			"$setOnInsert": bson.M{
				"_id":              primitive.NewObjectID(),
				"role":             authz.RoleNameFaculty,
				"profile_complete": false,
				"created_at":       now,
			},
		},
		options.Update().SetUpsert(true))
	if err != nil {
		if wafflemongo.IsDup(err) {
			return false, ErrDuplicateEmail
		}
		return false, err
	}
	return res.UpsertedCount > 0, nil
}

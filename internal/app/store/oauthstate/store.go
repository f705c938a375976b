package oauthstate

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store persists OAuth state tokens so the callback can verify that the
// flow started here. States are single-use and expire.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("oauthStates")}
}

type stateDoc struct {
	State     string    `bson:"state"`
	ReturnURL string    `bson:"return_url,omitempty"`
	ExpiresAt time.Time `bson:"expires_at"`
}

// Save stores a state token with its return URL and expiry.
func (s *Store) Save(ctx context.Context, state, returnURL string, expiresAt time.Time) error {
	_, err := s.c.InsertOne(ctx, stateDoc{
		State:     state,
		ReturnURL: returnURL,
		ExpiresAt: expiresAt,
	})
	return err
}

// Validate consumes a state token. It returns the stored return URL and
// whether the state was known and unexpired. The delete makes each state
// single-use even under concurrent callbacks.
func (s *Store) Validate(ctx context.Context, state string) (string, bool, error) {
	var doc stateDoc
	err := s.c.FindOneAndDelete(ctx, bson.M{"state": state}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if time.Now().After(doc.ExpiresAt) {
		return "", false, nil
	}
	return doc.ReturnURL, true, nil
}

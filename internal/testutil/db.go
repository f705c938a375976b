package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/campusworks/researchdesk/internal/app/system/indexes"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Store tests run against a real MongoDB. Set RESEARCHDESK_TEST_MONGO_URI to
// point somewhere else; tests skip when no server is reachable.
const defaultTestMongoURI = "mongodb://localhost:27017"

// TestContext returns a context with the standard test deadline.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// SetupTestDB connects to the test MongoDB server and returns a fresh,
// uniquely named database with all indexes ensured. The database is dropped
// and the client disconnected when the test finishes. Skips the test if no
// server is reachable.
func SetupTestDB(t *testing.T) *mongo.Database {
	t.Helper()
	_, db := SetupTestClient(t)
	return db
}

// SetupTestClient is SetupTestDB for stores that also need the client, e.g.
// for transactions.
func SetupTestClient(t *testing.T) (*mongo.Client, *mongo.Database) {
	t.Helper()

	uri := os.Getenv("RESEARCHDESK_TEST_MONGO_URI")
	if uri == "" {
		uri = defaultTestMongoURI
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Skipf("mongo not available at %s: %v", uri, err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		t.Skipf("mongo not reachable at %s: %v", uri, err)
	}

	name := fmt.Sprintf("researchdesk_test_%d", time.Now().UnixNano())
	db := client.Database(name)

	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})

	return client, db
}

// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/campusworks/researchdesk/internal/app/system/indexes"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB establishes the MongoDB connection and bundles it into DBDeps.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return DBDeps{}, fmt.Errorf("mongo ping: %w", err)
	}

	logger.Info("connected to MongoDB", zap.String("database", appCfg.MongoDatabase))
	return DBDeps{
		MongoClient:   client,
		MongoDatabase: client.Database(appCfg.MongoDatabase),
	}, nil
}

// EnsureSchema reconciles the collection indexes at startup, including the
// unique indexes the handlers rely on for atomic insert-if-absent semantics.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	return indexes.EnsureAll(ctx, deps.MongoDatabase, logger)
}

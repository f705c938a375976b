// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"time"

	"github.com/campusworks/researchdesk/internal/app/system/authz"
	"github.com/campusworks/researchdesk/internal/app/system/normalize"
	"github.com/campusworks/researchdesk/internal/app/system/timeouts"
	"github.com/campusworks/researchdesk/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{
		Short: appCfg.TimeoutShort,
		Long:  appCfg.TimeoutLong,
	})

	if appCfg.SuperAdminEmail != "" {
		if err := ensureSuperAdmin(ctx, deps, appCfg.SuperAdminEmail, logger); err != nil {
			return err
		}
	}
	return nil
}

// ensureSuperAdmin promotes the configured account to super_admin, creating
// it if it does not exist. The created account has no password; its owner
// signs in with Google using the same address.
func ensureSuperAdmin(ctx context.Context, deps DBDeps, email string, logger *zap.Logger) error {
	email = normalize.Email(email)
	users := deps.MongoDatabase.Collection("users")

	var existing models.User
	err := users.FindOne(ctx, bson.M{"email_ci": email}).Decode(&existing)
	switch {
	case err == mongo.ErrNoDocuments:
		now := time.Now().UTC()
		u := models.User{
			ID:         primitive.NewObjectID(),
			FullName:   "Super Admin",
			FullNameCI: text.Fold("Super Admin"),
			Email:      email,
			EmailCI:    email,
			Role:       authz.RoleNameSuperAdmin,
			Status:     "active",
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if _, err := users.InsertOne(ctx, u); err != nil {
			return err
		}
		logger.Info("created superadmin account", zap.String("email", email))
		return nil
	case err != nil:
		return err
	}

	if existing.Role == authz.RoleNameSuperAdmin {
		return nil
	}
	_, err = users.UpdateOne(ctx, bson.M{"_id": existing.ID}, bson.M{"$set": bson.M{
		"role":       authz.RoleNameSuperAdmin,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	logger.Info("promoted account to superadmin", zap.String("email", email))
	return nil
}

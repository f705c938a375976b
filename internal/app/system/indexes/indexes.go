// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
Errors are aggregated so every problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	var problems []string

	if err := ensureUsers(ctx, db); err != nil {
		problems = append(problems, "users: "+err.Error())
	}
	if err := ensureProjects(ctx, db); err != nil {
		problems = append(problems, "projects: "+err.Error())
	}
	if err := ensureIncentiveClaims(ctx, db); err != nil {
		problems = append(problems, "incentiveClaims: "+err.Error())
	}
	if err := ensureFundingCalls(ctx, db); err != nil {
		problems = append(problems, "fundingCalls: "+err.Error())
	}
	if err := ensureEmrInterests(ctx, db); err != nil {
		problems = append(problems, "emrInterests: "+err.Error())
	}
	if err := ensureRecruitments(ctx, db); err != nil {
		problems = append(problems, "projectRecruitments: "+err.Error())
	}
	if err := ensureNotifications(ctx, db); err != nil {
		problems = append(problems, "notifications: "+err.Error())
	}
	if err := ensureReminders(ctx, db); err != nil {
		problems = append(problems, "remindersSent: "+err.Error())
	}
	if err := ensureLogs(ctx, db); err != nil {
		problems = append(problems, "logs: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	logger.Info("database indexes ensured")
	return nil
}

func createIndexes(ctx context.Context, db *mongo.Database, coll string, idx []mongo.IndexModel) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	_, err := db.Collection(coll).Indexes().CreateMany(ctx, idx)
	return err
}

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	return createIndexes(ctx, db, "users", []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_email_ci"),
		},
		{
			Keys: bson.D{{Key: "mid", Value: 1}},
			Options: options.Index().SetName("by_mid").
				SetPartialFilterExpression(bson.M{"mid": bson.M{"$type": "string"}}),
		},
		{
			Keys:    bson.D{{Key: "role", Value: 1}},
			Options: options.Index().SetName("by_role"),
		},
	})
}

func ensureProjects(ctx context.Context, db *mongo.Database) error {
	return createIndexes(ctx, db, "projects", []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "pi_id", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("by_pi_status"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "meeting.date", Value: 1}},
			Options: options.Index().SetName("by_status_meeting_date"),
		},
		{
			Keys:    bson.D{{Key: "evaluator_ids", Value: 1}},
			Options: options.Index().SetName("by_evaluator"),
		},
	})
}

func ensureIncentiveClaims(ctx context.Context, db *mongo.Database) error {
	return createIndexes(ctx, db, "incentiveClaims", []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "claim_year", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("by_user_year_status"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "submitted_at", Value: 1}},
			Options: options.Index().SetName("by_status_submitted"),
		},
	})
}

func ensureFundingCalls(ctx context.Context, db *mongo.Database) error {
	return createIndexes(ctx, db, "fundingCalls", []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "interest_deadline", Value: 1}},
			Options: options.Index().SetName("by_deadline"),
		},
	})
}

// ensureEmrInterests creates the unique (call_id, user_id) index that turns
// "register interest" into an atomic insert-if-absent. Two concurrent
// submissions for the same call collapse into one document; the loser gets
// a duplicate-key error instead of silently creating a second record.
func ensureEmrInterests(ctx context.Context, db *mongo.Database) error {
	return createIndexes(ctx, db, "emrInterests", []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "call_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_call_user"),
		},
		{
			Keys:    bson.D{{Key: "meeting.date", Value: 1}},
			Options: options.Index().SetName("by_meeting_date"),
		},
	})
}

func ensureRecruitments(ctx context.Context, db *mongo.Database) error {
	if err := createIndexes(ctx, db, "projectRecruitments", []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "apply_deadline", Value: 1}},
			Options: options.Index().SetName("by_status_deadline"),
		},
	}); err != nil {
		return err
	}
	return createIndexes(ctx, db, "recruitmentApplications", []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "recruitment_id", Value: 1}, {Key: "applied_at", Value: -1}},
			Options: options.Index().SetName("by_recruitment"),
		},
	})
}

func ensureNotifications(ctx context.Context, db *mongo.Database) error {
	return createIndexes(ctx, db, "notifications", []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "read", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("by_user_read"),
		},
	})
}

func ensureReminders(ctx context.Context, db *mongo.Database) error {
	return createIndexes(ctx, db, "remindersSent", []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "kind", Value: 1},
				{Key: "record_id", Value: 1},
				{Key: "target_day", Value: 1},
				{Key: "recipient", Value: 1},
			},
			Options: options.Index().SetUnique(true).SetName("uniq_reminder"),
		},
		{
			// Reminder markers are only needed around their window.
			Keys:    bson.D{{Key: "sent_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(60 * 60 * 24 * 30).SetName("ttl_sent_at"),
		},
	})
}

func ensureLogs(ctx context.Context, db *mongo.Database) error {
	return createIndexes(ctx, db, "logs", []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("by_created"),
		},
		{
			Keys:    bson.D{{Key: "event", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("by_event"),
		},
	})
}

// internal/app/system/auditlog/auditlog.go
package auditlog

import (
	"context"
	"time"

	"github.com/campusworks/researchdesk/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Logger records audit events to the logs collection and to zap. A nil
// *Logger is safe to call; events then go nowhere, which keeps handlers
// testable without a database.
type Logger struct {
	logs   inserter
	zapLog *zap.Logger
}

// inserter is the slice of mongo.Collection the logger needs; narrowed so
// tests can substitute a recorder.
type inserter interface {
	InsertOne(ctx context.Context, document interface{}, opts ...interface{}) error
}

type collInserter struct {
	insert func(ctx context.Context, document interface{}) error
}

func (c collInserter) InsertOne(ctx context.Context, document interface{}, _ ...interface{}) error {
	return c.insert(ctx, document)
}

// New creates an audit Logger writing to the given insert function
// (normally a closure over db.Collection("logs").InsertOne) and zap.
func New(insert func(ctx context.Context, document interface{}) error, zapLog *zap.Logger) *Logger {
	return &Logger{logs: collInserter{insert: insert}, zapLog: zapLog}
}

// Event writes an info-level audit entry.
func (l *Logger) Event(ctx context.Context, event, message string, actorID *primitive.ObjectID, actor string, kv map[string]string) {
	l.write(ctx, "info", event, message, actorID, actor, kv)
}

// Warn writes a warn-level audit entry.
func (l *Logger) Warn(ctx context.Context, event, message string, actorID *primitive.ObjectID, actor string, kv map[string]string) {
	l.write(ctx, "warn", event, message, actorID, actor, kv)
}

// Error writes an error-level audit entry.
func (l *Logger) Error(ctx context.Context, event, message string, actorID *primitive.ObjectID, actor string, kv map[string]string) {
	l.write(ctx, "error", event, message, actorID, actor, kv)
}

func (l *Logger) write(ctx context.Context, level, event, message string, actorID *primitive.ObjectID, actor string, kv map[string]string) {
	if l == nil {
		return
	}

	if l.zapLog != nil {
		fields := []zap.Field{
			zap.String("event", event),
			zap.String("actor", actor),
		}
		for k, v := range kv {
			fields = append(fields, zap.String(k, v))
		}
		switch level {
		case "error":
			l.zapLog.Error(message, fields...)
		case "warn":
			l.zapLog.Warn(message, fields...)
		default:
			l.zapLog.Info(message, fields...)
		}
	}

	if l.logs == nil {
		return
	}
	entry := models.SystemLog{
		Level:     level,
		Event:     event,
		Message:   message,
		ActorID:   actorID,
		Actor:     actor,
		Context:   kv,
		CreatedAt: time.Now().UTC(),
	}
	if err := l.logs.InsertOne(ctx, entry); err != nil && l.zapLog != nil {
		// The audit trail must never take a request down with it.
		l.zapLog.Warn("audit log insert failed", zap.Error(err), zap.String("event", event))
	}
}

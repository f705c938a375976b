// Package txn wraps multi-document MongoDB writes in a transaction, with a
// sequential fallback for standalone servers that do not support sessions.
//
// Scheduling a meeting, for example, writes the project document and one
// notification per participant; the transaction keeps those writes
// all-or-nothing on replica-set deployments. On a standalone dev server,
// the same function runs without transactional guarantees rather than
// failing outright.
package txn

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
)

// Mongo command error codes returned when transactions are unavailable.
const (
	codeIllegalOperation      = 20
	codeCommandNotSupported   = 51
	codeOperationNotSupported = 263
)

// WithTransaction runs fn inside a Mongo transaction. If the server does not
// support transactions (standalone deployments), fn runs once outside a
// transaction instead. fn receives the context to pass to every database
// call it makes; inside a transaction that context carries the session.
func WithTransaction(ctx context.Context, client *mongo.Client, fn func(ctx context.Context) error) error {
	session, err := client.StartSession()
	if err != nil {
		if IsNotSupported(err) {
			return fn(ctx)
		}
		return err
	}
	defer session.EndSession(ctx)

	err = mongo.WithSession(ctx, session, func(sc mongo.SessionContext) error {
		if err := session.StartTransaction(); err != nil {
			return err
		}
		if err := fn(sc); err != nil {
			_ = session.AbortTransaction(sc)
			return err
		}
		return session.CommitTransaction(sc)
	})
	if err != nil && IsNotSupported(err) {
		return fn(ctx)
	}
	return err
}

// IsNotSupported reports whether the error indicates a deployment that
// cannot run multi-document transactions (standalone server, no replica
// set). Matches on known command error codes and on message keywords for
// drivers that surface plain errors.
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var cmdErr mongo.CommandError
	if ok := asCommandError(err, &cmdErr); ok {
		switch cmdErr.Code {
		case codeIllegalOperation, codeCommandNotSupported, codeOperationNotSupported:
			return true
		}
		return false
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "transaction") || strings.Contains(msg, "session") {
		for _, kw := range []string{"replica set", "not supported", "illegal operation", "session"} {
			if kw != "session" && strings.Contains(msg, kw) {
				return true
			}
		}
		// "transaction" together with "session" also indicates an
		// unsupported deployment rather than an application error.
		if strings.Contains(msg, "transaction") && strings.Contains(msg, "session") {
			return true
		}
	}
	return false
}

func asCommandError(err error, target *mongo.CommandError) bool {
	ce, ok := err.(mongo.CommandError)
	if ok {
		*target = ce
	}
	return ok
}

// Package txn runs multi-document work inside a Mongo transaction when
// the deployment supports one, and falls back to sequential execution
// when it does not (standalone servers have no replica set, so no
// transactions).
package txn

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Run executes fn transactionally when possible. On a deployment
// without transaction support it retries fn outside a session; callers
// must make fn safe to run that way (idempotent per-step writes).
func Run(ctx context.Context, client *mongo.Client, logger *zap.Logger, fn func(ctx context.Context) error) error {
	session, err := client.StartSession()
	if err != nil {
		if IsNotSupported(err) {
			logger.Warn("transactions unavailable, running without session", zap.Error(err))
			return fn(ctx)
		}
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		logger.Warn("transactions unavailable, running without session", zap.Error(err))
		return fn(ctx)
	}
	return err
}

// IsNotSupported reports whether err indicates the deployment cannot
// run transactions, as opposed to the transaction failing for a real
// reason. Covers the server error codes a standalone mongod returns
// plus the message shapes older drivers surface.
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	if ce, ok := err.(mongo.CommandError); ok {
		switch ce.Code {
		case 20, 51, 263:
			return true
		}
	}

	s := strings.ToLower(err.Error())
	if strings.Contains(s, "transaction") &&
		(strings.Contains(s, "replica set") || strings.Contains(s, "session")) {
		return true
	}
	if strings.Contains(s, "session") && strings.Contains(s, "not supported") {
		return true
	}
	return strings.Contains(s, "illegal operation")
}

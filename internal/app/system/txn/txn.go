// Package txn runs multi-document writes in a MongoDB transaction when the
// deployment supports one, and otherwise in plain sequence.
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Server codes returned when sessions or transactions are unavailable:
// 20 IllegalOperation, 51 (transactions on a standalone), 263 OperationNotSupportedInTransaction.
var notSupportedCodes = map[int32]bool{20: true, 51: true, 263: true}

var notSupportedHints = []string{
	"transaction",
	"replica set",
	"session",
	"not supported",
	"illegal operation",
}

// IsNotSupported reports whether err means the server cannot run a
// transaction. Errors without a recognised code must mention at least two
// hints to count.
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		if notSupportedCodes[ce.Code] {
			return true
		}
	}
	msg := strings.ToLower(err.Error())
	hits := 0
	for _, h := range notSupportedHints {
		if strings.Contains(msg, h) {
			hits++
		}
	}
	return hits >= 2
}

// Run executes fn inside a transaction on client. If the deployment cannot
// run transactions (standalone server) fn is executed again without one, so
// fn must apply its writes in a safe order.
func Run(ctx context.Context, client *mongo.Client, log *zap.Logger, fn func(ctx context.Context) error) error {
	if client == nil {
		return fn(ctx)
	}
	sess, err := client.StartSession()
	if err != nil {
		if IsNotSupported(err) {
			return fn(ctx)
		}
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		if log != nil {
			log.Debug("transactions unavailable, running writes sequentially", zap.Error(err))
		}
		return fn(ctx)
	}
	return err
}

package mongo

import (
	"context"
	"errors"
	"fmt"

	apperrors "resort/pkg/errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

const (
	writeConflictCode         = 112
	transientTransactionLabel = "TransientTransactionError"
)

type TransactionFunc func(ctx mongo.SessionContext) error

type TransactionManager interface {
	ExecuteTransaction(ctx context.Context, fn TransactionFunc) error
}

type mongoTransactionManager struct {
	client *mongo.Client
}

func NewTransactionManager(client *mongo.Client) TransactionManager {
	return &mongoTransactionManager{
		client: client,
	}
}

// ExecuteTransaction runs fn inside a snapshot transaction. Application errors
// returned by fn abort the transaction and are passed through untouched; write
// conflicts reported by the server surface as retryable concurrency conflicts.
func (m *mongoTransactionManager) ExecuteTransaction(ctx context.Context, fn TransactionFunc) error {
	session, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	txnOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (any, error) {
		return nil, fn(sessCtx)
	}, txnOpts)

	if err != nil {
		if apperrors.IsAppError(err) {
			return err
		}
		if IsWriteConflict(err) {
			return apperrors.ConcurrencyConflict("concurrent update, please retry", err)
		}
		return fmt.Errorf("transaction failed: %w", err)
	}

	return nil
}

// IsWriteConflict reports whether err carries the server's transient
// transaction label or a write conflict code.
func IsWriteConflict(err error) bool {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && (cmdErr.Code == writeConflictCode || cmdErr.HasErrorLabel(transientTransactionLabel)) {
		return true
	}
	var labeled mongo.LabeledError
	return errors.As(err, &labeled) && labeled.HasErrorLabel(transientTransactionLabel)
}

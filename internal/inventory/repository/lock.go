package repository

import (
	"context"
	"fmt"
	"time"

	inventoryerrors "resort/internal/inventory/errors"
	"resort/pkg/config"
	mongotx "resort/pkg/db/mongo"
	"resort/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	LockCollectionName = "Ledger_locks"
)

// LockRepository stores advisory lock documents. Uniqueness of _id makes
// insertion the acquire step.
type LockRepository interface {
	Acquire(ctx context.Context, name, owner string, ttl time.Duration) error
	Release(ctx context.Context, name, owner string) error
}

type mongoLockRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoLockRepository(cfg *config.Config) LockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoLockRepository{
		cfg:        cfg,
		collection: db.Collection(LockCollectionName),
	}
}

// Acquire inserts the lock document. A lock left behind by a crashed holder
// is taken over once it has expired, without waiting for the TTL monitor.
func (r *mongoLockRepository) Acquire(ctx context.Context, name, owner string, ttl time.Duration) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	lock := &model.LedgerLock{
		ID:        name,
		Owner:     owner,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}

	_, err := r.collection.InsertOne(ctx, lock)
	if err == nil {
		return nil
	}
	if !mongotx.IsDuplicateKey(err) {
		return fmt.Errorf("failed to acquire lock %s: %w", name, err)
	}

	if _, delErr := r.collection.DeleteOne(ctx, bson.M{"_id": name, "expires_at": bson.M{"$lt": now}}); delErr != nil {
		return fmt.Errorf("failed to reap expired lock %s: %w", name, delErr)
	}

	if _, err = r.collection.InsertOne(ctx, lock); err != nil {
		if mongotx.IsDuplicateKey(err) {
			return fmt.Errorf("%w: %s", inventoryerrors.ErrLockHeld, name)
		}
		return fmt.Errorf("failed to acquire lock %s: %w", name, err)
	}
	return nil
}

func (r *mongoLockRepository) Release(ctx context.Context, name, owner string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": name, "owner": owner})
	if err != nil {
		return fmt.Errorf("failed to release lock %s: %w", name, err)
	}
	return nil
}

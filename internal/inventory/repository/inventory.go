package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	inventoryerrors "resort/internal/inventory/errors"
	"resort/pkg/config"
	mongotx "resort/pkg/db/mongo"
	"resort/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Inventory"
)

// Mutation mirrors the planner output: conditional updates and deletes keyed
// by the version they were read at, plus new records.
type Mutation struct {
	Updates []*model.Inventory
	Inserts []*model.Inventory
	Deletes []*model.Inventory
}

func (m Mutation) Empty() bool {
	return len(m.Updates) == 0 && len(m.Inserts) == 0 && len(m.Deletes) == 0
}

type InventoryRepository interface {
	// FindOverlapping returns the records of a rate plan sharing at least one
	// day with the inclusive range [from, to].
	FindOverlapping(ctx context.Context, ratePlanID string, from, to time.Time) ([]*model.Inventory, error)
	Apply(ctx context.Context, m Mutation) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoInventoryRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoInventoryRepository(cfg *config.Config) InventoryRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoInventoryRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoInventoryRepository) FindOverlapping(ctx context.Context, ratePlanID string, from, to time.Time) ([]*model.Inventory, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"rate_plan_id": ratePlanID,
		"start_date":   bson.M{"$lte": to},
		"end_date":     bson.M{"$gte": from},
	}
	opts := options.Find().SetSort(bson.D{
		{Key: "start_date", Value: 1},
		{Key: "created_at", Value: 1},
		{Key: "_id", Value: 1},
	})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find inventory: %w", err)
	}
	defer cursor.Close(ctx)

	var records []*model.Inventory
	if err = cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode inventory: %w", err)
	}

	return records, nil
}

// Apply performs the writes of m. Every update and delete is conditional on
// the stored version; a miss means another writer got there first.
func (r *mongoInventoryRepository) Apply(ctx context.Context, m Mutation) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	for _, rec := range m.Updates {
		objectID, err := primitive.ObjectIDFromHex(rec.ID)
		if err != nil {
			return fmt.Errorf("%w: %s", inventoryerrors.ErrInvalidID, rec.ID)
		}

		filter := bson.M{"_id": objectID, "version": rec.Version}
		update := bson.M{
			"$set": bson.M{
				"start_date":      rec.StartDate,
				"end_date":        rec.EndDate,
				"available_rooms": rec.AvailableRooms,
				"blocked":         rec.Blocked,
				"updated_at":      rec.UpdatedAt,
			},
			"$inc": bson.M{"version": 1},
		}

		result, err := r.collection.UpdateOne(ctx, filter, update)
		if err != nil {
			return fmt.Errorf("failed to update inventory %s: %w", rec.ID, err)
		}
		if result.MatchedCount == 0 {
			return fmt.Errorf("%w: %s@%d", inventoryerrors.ErrVersionConflict, rec.ID, rec.Version)
		}
	}

	for _, rec := range m.Deletes {
		objectID, err := primitive.ObjectIDFromHex(rec.ID)
		if err != nil {
			return fmt.Errorf("%w: %s", inventoryerrors.ErrInvalidID, rec.ID)
		}

		result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID, "version": rec.Version})
		if err != nil {
			return fmt.Errorf("failed to delete inventory %s: %w", rec.ID, err)
		}
		if result.DeletedCount == 0 {
			return fmt.Errorf("%w: %s@%d", inventoryerrors.ErrVersionConflict, rec.ID, rec.Version)
		}
	}

	if len(m.Inserts) > 0 {
		docs := make([]any, 0, len(m.Inserts))
		for _, rec := range m.Inserts {
			rec.CreatedAt = rec.CreatedAt.UTC().Truncate(time.Millisecond)
			docs = append(docs, rec)
		}
		result, err := r.collection.InsertMany(ctx, docs)
		if err != nil {
			return fmt.Errorf("failed to insert inventory: %w", err)
		}
		for i, id := range result.InsertedIDs {
			if oid, ok := id.(primitive.ObjectID); ok {
				m.Inserts[i].ID = oid.Hex()
			}
		}
	}

	return nil
}

func (r *mongoInventoryRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}

// IsVersionConflict reports whether err came from a failed conditional write.
func IsVersionConflict(err error) bool {
	return errors.Is(err, inventoryerrors.ErrVersionConflict)
}

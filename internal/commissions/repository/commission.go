package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	commerrors "resort/internal/commissions/errors"
	"resort/pkg/config"
	mongotx "resort/pkg/db/mongo"
	"resort/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Commissions"
)

type CommissionRepository interface {
	Create(ctx context.Context, commission *model.Commission) error
	FindByID(ctx context.Context, id string) (*model.Commission, error)
	// FindByIDs skips malformed and unknown IDs.
	FindByIDs(ctx context.Context, ids []string) ([]*model.Commission, error)
	FindAll(ctx context.Context, agentID string, limit int, offset int64) ([]*model.Commission, error)
	Count(ctx context.Context, agentID string) (int64, error)
	Update(ctx context.Context, id string, commission *model.Commission) error
}

type mongoCommissionRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoCommissionRepository(cfg *config.Config) CommissionRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoCommissionRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoCommissionRepository) Create(ctx context.Context, commission *model.Commission) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	commission.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, commission)
	if err != nil {
		return fmt.Errorf("failed to create commission: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		commission.ID = oid.Hex()
	}
	return nil
}

func (r *mongoCommissionRepository) FindByID(ctx context.Context, id string) (*model.Commission, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", commerrors.ErrInvalidID, id)
	}

	var commission model.Commission
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&commission)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, commerrors.ErrCommissionNotFound
		}
		return nil, fmt.Errorf("failed to find commission: %w", err)
	}
	return &commission, nil
}

func (r *mongoCommissionRepository) FindByIDs(ctx context.Context, ids []string) ([]*model.Commission, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			objectIDs = append(objectIDs, oid)
		}
	}
	if len(objectIDs) == 0 {
		return nil, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": objectIDs}})
	if err != nil {
		return nil, fmt.Errorf("failed to find commissions: %w", err)
	}
	defer cursor.Close(ctx)

	var commissions []*model.Commission
	if err = cursor.All(ctx, &commissions); err != nil {
		return nil, fmt.Errorf("failed to decode commissions: %w", err)
	}
	return commissions, nil
}

func (r *mongoCommissionRepository) FindAll(ctx context.Context, agentID string, limit int, offset int64) ([]*model.Commission, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, agentFilter(agentID), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find commissions: %w", err)
	}
	defer cursor.Close(ctx)

	var commissions []*model.Commission
	if err = cursor.All(ctx, &commissions); err != nil {
		return nil, fmt.Errorf("failed to decode commissions: %w", err)
	}
	return commissions, nil
}

func (r *mongoCommissionRepository) Count(ctx context.Context, agentID string) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, agentFilter(agentID))
	if err != nil {
		return 0, fmt.Errorf("failed to count commissions: %w", err)
	}
	return count, nil
}

func agentFilter(agentID string) bson.M {
	if agentID == "" {
		return bson.M{}
	}
	return bson.M{"agent_id": agentID}
}

func (r *mongoCommissionRepository) Update(ctx context.Context, id string, commission *model.Commission) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", commerrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"name":                  commission.Name,
			"commission_type":       commission.Type,
			"commission_rate":       commission.Rate,
			"fixed_amount":          commission.FixedAmount,
			"minimum_booking_value": commission.MinimumBookingValue,
			"minimum_nights":        commission.MinimumNights,
			"resort_id":             commission.ResortID,
			"room_type_ids":         commission.RoomTypeIDs,
			"valid_from":            commission.ValidFrom,
			"valid_until":           commission.ValidUntil,
			"active":                commission.Active,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update commission: %w", err)
	}
	if result.MatchedCount == 0 {
		return commerrors.ErrCommissionNotFound
	}
	return nil
}

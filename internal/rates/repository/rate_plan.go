package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	rateserrors "resort/internal/rates/errors"
	"resort/pkg/config"
	mongotx "resort/pkg/db/mongo"
	"resort/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	RatePlanCollectionName = "Rate_plans"
)

type RatePlanRepository interface {
	Create(ctx context.Context, plan *model.RatePlan) error
	FindByID(ctx context.Context, id string) (*model.RatePlan, error)
	FindAll(ctx context.Context, resortID string, limit int, offset int64) ([]*model.RatePlan, error)
	Count(ctx context.Context, resortID string) (int64, error)
	Update(ctx context.Context, id string, plan *model.RatePlan) error
	SoftDelete(ctx context.Context, id string, at time.Time) error
}

type mongoRatePlanRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoRatePlanRepository(cfg *config.Config) RatePlanRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoRatePlanRepository{
		cfg:        cfg,
		collection: db.Collection(RatePlanCollectionName),
	}
}

func (r *mongoRatePlanRepository) Create(ctx context.Context, plan *model.RatePlan) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	plan.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, plan)
	if err != nil {
		return fmt.Errorf("failed to create rate plan: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		plan.ID = oid.Hex()
	}
	return nil
}

// FindByID also returns soft-deleted plans so historical bookings resolve.
func (r *mongoRatePlanRepository) FindByID(ctx context.Context, id string) (*model.RatePlan, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", rateserrors.ErrInvalidID, id)
	}

	var plan model.RatePlan
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&plan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, rateserrors.ErrRatePlanNotFound
		}
		return nil, fmt.Errorf("failed to find rate plan: %w", err)
	}

	return &plan, nil
}

func (r *mongoRatePlanRepository) FindAll(ctx context.Context, resortID string, limit int, offset int64) ([]*model.RatePlan, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, r.listFilter(resortID), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find rate plans: %w", err)
	}
	defer cursor.Close(ctx)

	var plans []*model.RatePlan
	if err = cursor.All(ctx, &plans); err != nil {
		return nil, fmt.Errorf("failed to decode rate plans: %w", err)
	}

	return plans, nil
}

func (r *mongoRatePlanRepository) Count(ctx context.Context, resortID string) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, r.listFilter(resortID))
	if err != nil {
		return 0, fmt.Errorf("failed to count rate plans: %w", err)
	}
	return count, nil
}

func (r *mongoRatePlanRepository) listFilter(resortID string) bson.M {
	filter := bson.M{"deleted_at": bson.M{"$exists": false}}
	if resortID != "" {
		filter["resort_id"] = resortID
	}
	return filter
}

func (r *mongoRatePlanRepository) Update(ctx context.Context, id string, plan *model.RatePlan) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", rateserrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID, "deleted_at": bson.M{"$exists": false}}
	update := bson.M{
		"$set": bson.M{
			"name":                plan.Name,
			"room_type_id":        plan.RoomTypeID,
			"refundable":          plan.Refundable,
			"breakfast_included":  plan.BreakfastIncluded,
			"deposit":             plan.Deposit,
			"country_restriction": plan.CountryRestriction,
			"active":              plan.Active,
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update rate plan: %w", err)
	}
	if result.MatchedCount == 0 {
		return rateserrors.ErrRatePlanNotFound
	}
	return nil
}

func (r *mongoRatePlanRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", rateserrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID, "deleted_at": bson.M{"$exists": false}}
	update := bson.M{"$set": bson.M{"deleted_at": at, "active": false}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to delete rate plan: %w", err)
	}
	if result.MatchedCount == 0 {
		return rateserrors.ErrRatePlanNotFound
	}
	return nil
}

package repository

import (
	"context"
	"fmt"
	"time"

	"resort/pkg/config"
	mongotx "resort/pkg/db/mongo"
	"resort/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	SeasonalRateCollectionName = "Seasonal_rates"
)

type SeasonalRateRepository interface {
	Create(ctx context.Context, rate *model.SeasonalRate) error
	// FindOverlapping returns the rates of a plan whose inclusive range shares
	// a day with [from, to], newest first.
	FindOverlapping(ctx context.Context, ratePlanID string, from, to time.Time) ([]*model.SeasonalRate, error)
	FindByRatePlan(ctx context.Context, ratePlanID string) ([]*model.SeasonalRate, error)
}

type mongoSeasonalRateRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoSeasonalRateRepository(cfg *config.Config) SeasonalRateRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSeasonalRateRepository{
		cfg:        cfg,
		collection: db.Collection(SeasonalRateCollectionName),
	}
}

func (r *mongoSeasonalRateRepository) Create(ctx context.Context, rate *model.SeasonalRate) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	rate.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, rate)
	if err != nil {
		return fmt.Errorf("failed to create seasonal rate: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		rate.ID = oid.Hex()
	}
	return nil
}

func (r *mongoSeasonalRateRepository) FindOverlapping(ctx context.Context, ratePlanID string, from, to time.Time) ([]*model.SeasonalRate, error) {
	filter := bson.M{
		"rate_plan_id": ratePlanID,
		"start_date":   bson.M{"$lte": to},
		"end_date":     bson.M{"$gte": from},
	}
	return r.find(ctx, filter)
}

func (r *mongoSeasonalRateRepository) FindByRatePlan(ctx context.Context, ratePlanID string) ([]*model.SeasonalRate, error) {
	return r.find(ctx, bson.M{"rate_plan_id": ratePlanID})
}

func (r *mongoSeasonalRateRepository) find(ctx context.Context, filter bson.M) ([]*model.SeasonalRate, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{
		{Key: "created_at", Value: -1},
		{Key: "_id", Value: -1},
	})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find seasonal rates: %w", err)
	}
	defer cursor.Close(ctx)

	var rates []*model.SeasonalRate
	if err = cursor.All(ctx, &rates); err != nil {
		return nil, fmt.Errorf("failed to decode seasonal rates: %w", err)
	}
	return rates, nil
}

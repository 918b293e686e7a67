package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	promoerrors "resort/internal/promotions/errors"
	"resort/pkg/config"
	mongotx "resort/pkg/db/mongo"
	"resort/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Promotions"
)

type PromotionRepository interface {
	Create(ctx context.Context, promotion *model.Promotion) error
	FindByID(ctx context.Context, id string) (*model.Promotion, error)
	FindByCode(ctx context.Context, code string) (*model.Promotion, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Promotion, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, id string, promotion *model.Promotion) error
	// Use increments current_uses by one unless max_uses is already reached.
	Use(ctx context.Context, id string) error
	// Unuse decrements current_uses by one, never below zero.
	Unuse(ctx context.Context, id string) error
}

type mongoPromotionRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoPromotionRepository(cfg *config.Config) PromotionRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoPromotionRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoPromotionRepository) Create(ctx context.Context, promotion *model.Promotion) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	promotion.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, promotion)
	if err != nil {
		if mongotx.IsDuplicateKey(err) {
			return fmt.Errorf("%w: %s", promoerrors.ErrCodeTaken, promotion.Code)
		}
		return fmt.Errorf("failed to create promotion: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		promotion.ID = oid.Hex()
	}
	return nil
}

func (r *mongoPromotionRepository) FindByID(ctx context.Context, id string) (*model.Promotion, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", promoerrors.ErrInvalidID, id)
	}
	return r.findOne(ctx, bson.M{"_id": objectID})
}

func (r *mongoPromotionRepository) FindByCode(ctx context.Context, code string) (*model.Promotion, error) {
	return r.findOne(ctx, bson.M{"code": code})
}

func (r *mongoPromotionRepository) findOne(ctx context.Context, filter bson.M) (*model.Promotion, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var promotion model.Promotion
	err := r.collection.FindOne(ctx, filter).Decode(&promotion)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, promoerrors.ErrPromotionNotFound
		}
		return nil, fmt.Errorf("failed to find promotion: %w", err)
	}
	return &promotion, nil
}

func (r *mongoPromotionRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Promotion, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find promotions: %w", err)
	}
	defer cursor.Close(ctx)

	var promotions []*model.Promotion
	if err = cursor.All(ctx, &promotions); err != nil {
		return nil, fmt.Errorf("failed to decode promotions: %w", err)
	}
	return promotions, nil
}

func (r *mongoPromotionRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count promotions: %w", err)
	}
	return count, nil
}

// Update rewrites the promotion terms. Code and current_uses are not
// touched; usage only moves through Use and Unuse.
func (r *mongoPromotionRepository) Update(ctx context.Context, id string, promotion *model.Promotion) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", promoerrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"resort_id":          promotion.ResortID,
			"type":               promotion.Type,
			"value":              promotion.Value,
			"valid_from":         promotion.ValidFrom,
			"valid_until":        promotion.ValidUntil,
			"max_uses":           promotion.MaxUses,
			"per_customer_limit": promotion.PerCustomerLimit,
			"minimum_amount":     promotion.MinimumAmount,
			"minimum_nights":     promotion.MinimumNights,
			"rate_plan_ids":      promotion.RatePlanIDs,
			"room_type_ids":      promotion.RoomTypeIDs,
			"active":             promotion.Active,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update promotion: %w", err)
	}
	if result.MatchedCount == 0 {
		return promoerrors.ErrPromotionNotFound
	}
	return nil
}

func (r *mongoPromotionRepository) Use(ctx context.Context, id string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", promoerrors.ErrInvalidID, id)
	}

	filter := bson.M{
		"_id": objectID,
		"$or": bson.A{
			bson.M{"max_uses": nil},
			bson.M{"$expr": bson.M{"$lt": bson.A{"$current_uses", "$max_uses"}}},
		},
	}
	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{"current_uses": 1}})
	if err != nil {
		return fmt.Errorf("failed to use promotion: %w", err)
	}
	if result.MatchedCount == 1 {
		return nil
	}

	if _, err := r.findOne(ctx, bson.M{"_id": objectID}); err != nil {
		return err
	}
	return promoerrors.ErrUsageCapReached
}

func (r *mongoPromotionRepository) Unuse(ctx context.Context, id string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", promoerrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID, "current_uses": bson.M{"$gt": 0}}
	if _, err := r.collection.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{"current_uses": -1}}); err != nil {
		return fmt.Errorf("failed to release promotion use: %w", err)
	}
	return nil
}

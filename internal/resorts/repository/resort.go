package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	resorterrors "resort/internal/resorts/errors"
	"resort/pkg/config"
	mongotx "resort/pkg/db/mongo"
	"resort/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	ResortCollectionName = "Resorts"
)

type ResortRepository interface {
	Create(ctx context.Context, resort *model.Resort) error
	FindByID(ctx context.Context, id string) (*model.Resort, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Resort, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, id string, resort *model.Resort) error
}

type mongoResortRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoResortRepository(cfg *config.Config) ResortRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoResortRepository{
		cfg:        cfg,
		collection: db.Collection(ResortCollectionName),
	}
}

func (r *mongoResortRepository) Create(ctx context.Context, resort *model.Resort) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	resort.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, resort)
	if err != nil {
		return fmt.Errorf("failed to create resort: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		resort.ID = oid.Hex()
	}
	return nil
}

func (r *mongoResortRepository) FindByID(ctx context.Context, id string) (*model.Resort, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", resorterrors.ErrInvalidID, id)
	}

	var resort model.Resort
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&resort)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, resorterrors.ErrResortNotFound
		}
		return nil, fmt.Errorf("failed to find resort: %w", err)
	}
	return &resort, nil
}

func (r *mongoResortRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Resort, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find resorts: %w", err)
	}
	defer cursor.Close(ctx)

	var resorts []*model.Resort
	if err = cursor.All(ctx, &resorts); err != nil {
		return nil, fmt.Errorf("failed to decode resorts: %w", err)
	}
	return resorts, nil
}

func (r *mongoResortRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count resorts: %w", err)
	}
	return count, nil
}

func (r *mongoResortRepository) Update(ctx context.Context, id string, resort *model.Resort) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", resorterrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"name":      resort.Name,
			"currency":  resort.Currency,
			"tax_rules": resort.TaxRules,
			"active":    resort.Active,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update resort: %w", err)
	}
	if result.MatchedCount == 0 {
		return resorterrors.ErrResortNotFound
	}
	return nil
}

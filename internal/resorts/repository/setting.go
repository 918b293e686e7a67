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
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	SettingCollectionName = "Settings"
)

type SettingRepository interface {
	Get(ctx context.Context, key string) (*model.Setting, error)
	Put(ctx context.Context, setting *model.Setting) error
	FindAll(ctx context.Context) ([]*model.Setting, error)
}

type mongoSettingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoSettingRepository(cfg *config.Config) SettingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSettingRepository{
		cfg:        cfg,
		collection: db.Collection(SettingCollectionName),
	}
}

func (r *mongoSettingRepository) Get(ctx context.Context, key string) (*model.Setting, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var setting model.Setting
	err := r.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&setting)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, resorterrors.ErrSettingNotFound
		}
		return nil, fmt.Errorf("failed to find setting: %w", err)
	}
	return &setting, nil
}

// Put upserts the setting by key.
func (r *mongoSettingRepository) Put(ctx context.Context, setting *model.Setting) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	setting.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	update := bson.M{"$set": bson.M{"value": setting.Value, "updated_at": setting.UpdatedAt}}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": setting.Key}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save setting: %w", err)
	}
	return nil
}

func (r *mongoSettingRepository) FindAll(ctx context.Context) ([]*model.Setting, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find settings: %w", err)
	}
	defer cursor.Close(ctx)

	var settings []*model.Setting
	if err = cursor.All(ctx, &settings); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	return settings, nil
}

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
	TransferCollectionName = "Transfers"
)

type TransferRepository interface {
	Create(ctx context.Context, transfer *model.Transfer) error
	FindByID(ctx context.Context, id string) (*model.Transfer, error)
	FindByResort(ctx context.Context, resortID string) ([]*model.Transfer, error)
}

type mongoTransferRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoTransferRepository(cfg *config.Config) TransferRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoTransferRepository{
		cfg:        cfg,
		collection: db.Collection(TransferCollectionName),
	}
}

func (r *mongoTransferRepository) Create(ctx context.Context, transfer *model.Transfer) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	transfer.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, transfer)
	if err != nil {
		return fmt.Errorf("failed to create transfer: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		transfer.ID = oid.Hex()
	}
	return nil
}

func (r *mongoTransferRepository) FindByID(ctx context.Context, id string) (*model.Transfer, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", resorterrors.ErrInvalidID, id)
	}

	var transfer model.Transfer
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&transfer)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, resorterrors.ErrTransferNotFound
		}
		return nil, fmt.Errorf("failed to find transfer: %w", err)
	}
	return &transfer, nil
}

func (r *mongoTransferRepository) FindByResort(ctx context.Context, resortID string) ([]*model.Transfer, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"resort_id": resortID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find transfers: %w", err)
	}
	defer cursor.Close(ctx)

	var transfers []*model.Transfer
	if err = cursor.All(ctx, &transfers); err != nil {
		return nil, fmt.Errorf("failed to decode transfers: %w", err)
	}
	return transfers, nil
}

package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"resort/internal/migrations/mongo/validators"
	"resort/pkg/logger"
)

var (
	ResortsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "active", Value: 1}, {Key: "name", Value: 1}}},
	}

	RatePlansIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "resort_id", Value: 1}, {Key: "room_type_id", Value: 1}}},
		{Keys: bson.D{{Key: "deleted_at", Value: 1}}},
	}

	SeasonalRatesIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "rate_plan_id", Value: 1},
			{Key: "start_date", Value: 1},
			{Key: "end_date", Value: 1},
		}},
	}

	InventoryIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "rate_plan_id", Value: 1},
			{Key: "start_date", Value: 1},
			{Key: "end_date", Value: 1},
		}},
	}

	LedgerLocksIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	}

	PromotionsIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "code", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	CommissionsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "agent_id", Value: 1}}},
	}

	TransfersIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "resort_id", Value: 1}}},
	}

	BookingsIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "reference", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "promotion_id", Value: 1}, {Key: "guest.email", Value: 1}}},
		{Keys: bson.D{{Key: "commission_id", Value: 1}, {Key: "check_in", Value: 1}}},
		{Keys: bson.D{{Key: "rate_plan_id", Value: 1}, {Key: "check_in", Value: 1}}},
	}
)

type collectionDef struct {
	Indexes   []mongo.IndexModel
	Validator bson.M
}

// Collections maps every collection the services use to its schema and
// indexes. Settings and Ledger_locks are schemaless.
var Collections = map[string]collectionDef{
	"Resorts":        {Indexes: ResortsIndexes, Validator: validators.ResortValidator},
	"Rate_plans":     {Indexes: RatePlansIndexes, Validator: validators.RatePlanValidator},
	"Seasonal_rates": {Indexes: SeasonalRatesIndexes, Validator: validators.SeasonalRateValidator},
	"Inventory":      {Indexes: InventoryIndexes, Validator: validators.InventoryValidator},
	"Ledger_locks":   {Indexes: LedgerLocksIndexes},
	"Promotions":     {Indexes: PromotionsIndexes, Validator: validators.PromotionValidator},
	"Commissions":    {Indexes: CommissionsIndexes, Validator: validators.CommissionValidator},
	"Transfers":      {Indexes: TransfersIndexes, Validator: validators.TransferValidator},
	"Settings":       {},
	"Bookings":       {Indexes: BookingsIndexes, Validator: validators.BookingValidator},
}

func RunMigration(ctx context.Context, client *mongo.Client, dbName string, log *logger.Logger) error {
	db := client.Database(dbName)
	log.Info("Running Mongo migrations", "database", dbName)

	for name, def := range Collections {
		if err := ensureCollection(ctx, db, name, def.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", name, err)
		}
		if err := ensureIndexes(ctx, db, name, def.Indexes, log); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", name, err)
		}
	}

	log.Info("All migrations applied successfully")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection()
		if validator != nil {
			opts.SetValidator(validator)
		}
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	if validator == nil {
		return nil
	}
	log.Info("Collection exists, updating validator", "collection", name)
	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating validator", "collection", name, "error", err)
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel, log *logger.Logger) error {
	if len(models) == 0 {
		return nil
	}
	if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
		return err
	}
	log.Info("Ensured indexes", "collection", name, "count", len(models))
	return nil
}

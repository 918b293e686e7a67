package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "resort/internal/bookings/errors"
	"resort/pkg/config"
	mongotx "resort/pkg/db/mongo"
	"resort/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Bookings"
)

// Filter narrows list queries. Empty fields match everything.
type Filter struct {
	Status     string
	ResortID   string
	RatePlanID string
	Email      string
}

// StatusChange describes a conditional transition applied by UpdateStatus.
type StatusChange struct {
	From   string
	To     string
	At     time.Time
	Reason string
}

type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	FindByReference(ctx context.Context, reference string) (*model.Booking, error)
	FindAll(ctx context.Context, filter Filter, limit int, offset int64) ([]*model.Booking, error)
	Count(ctx context.Context, filter Filter) (int64, error)
	ExistsReference(ctx context.Context, reference string) (bool, error)
	// UpdateStatus moves the booking from change.From to change.To and returns
	// the updated document. ErrStatusChanged means the booking exists but was
	// not in change.From.
	UpdateStatus(ctx context.Context, id string, change StatusChange) (*model.Booking, error)
	// CountPromotionUses counts confirmed and completed bookings of a guest
	// that redeemed the promotion, excluding excludeID.
	CountPromotionUses(ctx context.Context, promotionID, email, excludeID string) (int64, error)
	FindExpiredPending(ctx context.Context, createdBefore time.Time, limit int) ([]*model.Booking, error)
	// FindForCommissionReport returns confirmed and completed bookings carrying
	// a commission reference with check-in in [from, to).
	FindForCommissionReport(ctx context.Context, from, to time.Time) ([]*model.Booking, error)
}

type mongoBookingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	booking.CreatedAt = now
	booking.UpdatedAt = now
	result, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		if mongotx.IsDuplicateKey(err) {
			return fmt.Errorf("%w: %s", bookingserrors.ErrReferenceTaken, booking.Reference)
		}
		return fmt.Errorf("failed to create booking: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		booking.ID = oid.Hex()
	}
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}
	return r.findOne(ctx, bson.M{"_id": objectID})
}

func (r *mongoBookingRepository) FindByReference(ctx context.Context, reference string) (*model.Booking, error) {
	return r.findOne(ctx, bson.M{"reference": reference})
}

func (r *mongoBookingRepository) findOne(ctx context.Context, filter bson.M) (*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var booking model.Booking
	err := r.collection.FindOne(ctx, filter).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return &booking, nil
}

func (r *mongoBookingRepository) FindAll(ctx context.Context, filter Filter, limit int, offset int64) ([]*model.Booking, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	return r.find(ctx, filter.toBSON(), opts)
}

func (r *mongoBookingRepository) Count(ctx context.Context, filter Filter) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, filter.toBSON())
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

func (r *mongoBookingRepository) ExistsReference(ctx context.Context, reference string) (bool, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"reference": reference}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check booking reference: %w", err)
	}
	return count > 0, nil
}

func (r *mongoBookingRepository) UpdateStatus(ctx context.Context, id string, change StatusChange) (*model.Booking, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	at := change.At.UTC().Truncate(time.Millisecond)
	set := bson.M{"status": change.To, "updated_at": at}
	switch change.To {
	case model.BookingStatusConfirmed:
		set["confirmed_at"] = at
	case model.BookingStatusCompleted, model.BookingStatusNoShow:
		set["completed_at"] = at
	case model.BookingStatusCancelled:
		set["cancelled_at"] = at
		if change.Reason != "" {
			set["cancellation_reason"] = change.Reason
		}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var booking model.Booking
	err = r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": objectID, "status": change.From},
		bson.M{"$set": set},
		opts,
	).Decode(&booking)
	if err == nil {
		return &booking, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}

	if _, findErr := r.findOne(ctx, bson.M{"_id": objectID}); findErr != nil {
		return nil, findErr
	}
	return nil, fmt.Errorf("%w: %s is no longer %s", bookingserrors.ErrStatusChanged, id, change.From)
}

func (r *mongoBookingRepository) CountPromotionUses(ctx context.Context, promotionID, email, excludeID string) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"promotion_id": promotionID,
		"guest.email":  email,
		"status":       bson.M{"$in": bson.A{model.BookingStatusConfirmed, model.BookingStatusCompleted}},
	}
	if oid, err := primitive.ObjectIDFromHex(excludeID); err == nil {
		filter["_id"] = bson.M{"$ne": oid}
	}

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count promotion uses: %w", err)
	}
	return count, nil
}

func (r *mongoBookingRepository) FindExpiredPending(ctx context.Context, createdBefore time.Time, limit int) ([]*model.Booking, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetLimit(int64(limit))

	return r.find(ctx, bson.M{
		"status":     model.BookingStatusPending,
		"created_at": bson.M{"$lt": createdBefore},
	}, opts)
}

func (r *mongoBookingRepository) FindForCommissionReport(ctx context.Context, from, to time.Time) ([]*model.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "check_in", Value: 1}})

	return r.find(ctx, bson.M{
		"status":        bson.M{"$in": bson.A{model.BookingStatusConfirmed, model.BookingStatusCompleted}},
		"commission_id": bson.M{"$exists": true, "$ne": ""},
		"check_in":      bson.M{"$gte": from, "$lt": to},
	}, opts)
}

func (r *mongoBookingRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var bookings []*model.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

func (f Filter) toBSON() bson.M {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.ResortID != "" {
		filter["resort_id"] = f.ResortID
	}
	if f.RatePlanID != "" {
		filter["rate_plan_id"] = f.RatePlanID
	}
	if f.Email != "" {
		filter["guest.email"] = f.Email
	}
	return filter
}

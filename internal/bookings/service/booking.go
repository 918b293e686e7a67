package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	bookingserrors "resort/internal/bookings/errors"
	"resort/internal/bookings/events"
	"resort/internal/bookings/repository"
	"resort/internal/bookings/validator"
	commissionservice "resort/internal/commissions/service"
	inventoryerrors "resort/internal/inventory/errors"
	inventoryservice "resort/internal/inventory/service"
	pricingservice "resort/internal/pricing/service"
	promoerrors "resort/internal/promotions/errors"
	promoservice "resort/internal/promotions/service"
	"resort/pkg/config"
	"resort/pkg/dates"
	apperrors "resort/pkg/errors"
	"resort/pkg/locale"
	"resort/pkg/model"
	"resort/pkg/sanitizer"
	"resort/pkg/validation"

	"golang.org/x/sync/errgroup"
)

// ExpiredReason is recorded on bookings cancelled by the expiry sweep.
const ExpiredReason = "expired"

const expiryBatchSize = 100

type BookingService interface {
	Quote(ctx context.Context, req *model.BookingRequest) (*pricingservice.Quote, error)
	Create(ctx context.Context, req *model.BookingRequest) (*model.Booking, error)
	Confirm(ctx context.Context, id string) (*model.Booking, error)
	Cancel(ctx context.Context, id string, reason string) (*model.Booking, error)
	Complete(ctx context.Context, id string) (*model.Booking, error)
	MarkNoShow(ctx context.Context, id string) (*model.Booking, error)
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	GetByReference(ctx context.Context, reference string) (*model.Booking, error)
	GetAll(ctx context.Context, filter repository.Filter, limit int, offset int64) ([]*model.Booking, int64, error)
	// ExpirePending cancels pending bookings created more than olderThan ago
	// and returns how many were cancelled.
	ExpirePending(ctx context.Context, olderThan time.Duration) (int, error)
}

type bookingService struct {
	repo         repository.BookingRepository
	quotes       pricingservice.QuoteService
	inventory    inventoryservice.InventoryService
	promotions   promoservice.PromotionService
	commissions  commissionservice.CommissionService
	publisher    events.Publisher
	validator    *validator.BookingValidator
	cfg          *config.Config
	now          func() time.Time
	newReference func() string
}

func NewBookingService(
	repo repository.BookingRepository,
	quotes pricingservice.QuoteService,
	inventory inventoryservice.InventoryService,
	promotions promoservice.PromotionService,
	commissions commissionservice.CommissionService,
	publisher events.Publisher,
	validator *validator.BookingValidator,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:         repo,
		quotes:       quotes,
		inventory:    inventory,
		promotions:   promotions,
		commissions:  commissions,
		publisher:    publisher,
		validator:    validator,
		cfg:          cfg,
		now:          func() time.Time { return time.Now().UTC() },
		newReference: NewReference,
	}
}

func (s *bookingService) Quote(ctx context.Context, req *model.BookingRequest) (*pricingservice.Quote, error) {
	pricingReq, err := s.prepare(req)
	if err != nil {
		return nil, err
	}

	quote, _, err := s.quotes.Quote(ctx, pricingReq)
	if err != nil {
		return nil, err
	}
	return quote, nil
}

func (s *bookingService) Create(ctx context.Context, req *model.BookingRequest) (*model.Booking, error) {
	pricingReq, err := s.prepare(req)
	if err != nil {
		return nil, err
	}

	quote, plan, err := s.quotes.Quote(ctx, pricingReq)
	if err != nil {
		return nil, err
	}

	country := locale.GuestCountry(req.Guest.Country, req.Guest.Phone)
	if !plan.CountryRestriction.Allows(country) {
		s.cfg.Log.Info("Booking rejected by country restriction",
			"rate_plan_id", plan.ID,
			"country", country,
		)
		return nil, apperrors.Validation("Rate plan is not available for the guest's country", map[string]any{
			"rate_plan_id": plan.ID,
			"country":      country,
		})
	}
	req.Guest.Country = country

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		available, err := s.inventory.CheckAvailability(gctx, plan.ID, pricingReq.CheckIn, pricingReq.CheckOut, 1)
		if err != nil {
			return err
		}
		if !available {
			return apperrors.CapacityExceeded("No rooms available for the requested stay", map[string]any{
				"rate_plan_id": plan.ID,
				"check_in":     req.CheckIn,
				"check_out":    req.CheckOut,
			})
		}
		return nil
	})
	if req.CommissionID != "" {
		g.Go(func() error {
			commission, err := s.commissions.GetByID(gctx, req.CommissionID)
			if err != nil {
				return err
			}
			if !commission.Active {
				return apperrors.Validation("Commission rule is not active", map[string]any{"commission_id": req.CommissionID})
			}
			if !commissionservice.AppliesTo(commission, quote.ResortID, quote.RoomTypeID, s.now()) {
				return apperrors.Validation("Commission rule does not apply to this booking", map[string]any{
					"commission_id": req.CommissionID,
					"resort_id":     quote.ResortID,
					"room_type_id":  quote.RoomTypeID,
				})
			}
			return nil
		})
	}
	if quote.PromotionID != "" {
		g.Go(func() error {
			return s.checkCustomerLimit(gctx, quote.PromotionID, req.Guest.Email, "")
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	booking := newBooking(req, quote, pricingReq)
	if err := s.insertWithReference(ctx, booking); err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"reference", booking.Reference,
		"rate_plan_id", booking.RatePlanID,
		"nights", booking.Nights,
		"total", booking.Total.StringFixed(2),
	)
	s.publish(ctx, model.EventBookingCreated, booking, "")
	return booking, nil
}

func (s *bookingService) Confirm(ctx context.Context, id string) (*model.Booking, error) {
	return s.transition(ctx, id, model.BookingStatusConfirmed, "")
}

func (s *bookingService) Cancel(ctx context.Context, id string, reason string) (*model.Booking, error) {
	return s.transition(ctx, id, model.BookingStatusCancelled, sanitizer.TrimAndNormalize(reason))
}

func (s *bookingService) Complete(ctx context.Context, id string) (*model.Booking, error) {
	return s.transition(ctx, id, model.BookingStatusCompleted, "")
}

func (s *bookingService) MarkNoShow(ctx context.Context, id string) (*model.Booking, error) {
	return s.transition(ctx, id, model.BookingStatusNoShow, "")
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translate(err, id, "Failed to retrieve booking")
	}
	return booking, nil
}

func (s *bookingService) GetByReference(ctx context.Context, reference string) (*model.Booking, error) {
	reference = strings.ToUpper(strings.TrimSpace(reference))
	if reference == "" {
		return nil, apperrors.InvalidInput("Booking reference cannot be empty")
	}
	booking, err := s.repo.FindByReference(ctx, reference)
	if err != nil {
		return nil, s.translate(err, reference, "Failed to retrieve booking")
	}
	return booking, nil
}

func (s *bookingService) GetAll(ctx context.Context, filter repository.Filter, limit int, offset int64) ([]*model.Booking, int64, error) {
	if filter.Status != "" && !isKnownStatus(filter.Status) {
		return nil, 0, apperrors.InvalidInput(fmt.Sprintf("unknown booking status: %s", filter.Status))
	}
	filter.Email = sanitizer.NormalizeEmail(filter.Email)

	var (
		count    int64
		bookings []*model.Booking
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		count, err = s.repo.Count(gctx, filter)
		if err != nil {
			s.cfg.Log.Error("Failed to count bookings", "error", err)
			return apperrors.Internal("Failed to count bookings", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		bookings, err = s.repo.FindAll(gctx, filter, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to list bookings", "limit", limit, "offset", offset, "error", err)
			return apperrors.Internal("Failed to retrieve bookings", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	return bookings, count, nil
}

func (s *bookingService) ExpirePending(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := s.now().Add(-olderThan)
	expired, err := s.repo.FindExpiredPending(ctx, cutoff, expiryBatchSize)
	if err != nil {
		s.cfg.Log.Error("Failed to load expired pending bookings", "cutoff", cutoff, "error", err)
		return 0, apperrors.Internal("Failed to load expired bookings", err)
	}

	cancelled := 0
	for _, b := range expired {
		if ctx.Err() != nil {
			return cancelled, ctx.Err()
		}
		if _, err := s.transition(ctx, b.ID, model.BookingStatusCancelled, ExpiredReason); err != nil {
			// Confirmed or cancelled since it was listed.
			if apperrors.HasCode(err, apperrors.CodeConflict) {
				continue
			}
			s.cfg.Log.Warn("Failed to expire pending booking", "id", b.ID, "error", err)
			continue
		}
		cancelled++
	}

	if cancelled > 0 {
		s.cfg.Log.Info("Expired pending bookings", "count", cancelled, "cutoff", cutoff)
	}
	return cancelled, nil
}

// transition applies a lifecycle step. Steps that touch inventory run under
// the rate plan's ledger lock inside one transaction, so the status change,
// the inventory mutation and the promotion counter commit or abort together.
// A concurrent status change reloads the booking and tries again.
func (s *bookingService) transition(ctx context.Context, id, to, reason string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	var (
		result   *model.Booking
		previous string
	)
	err := s.retry(ctx, func() error {
		current, err := s.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !model.CanTransition(current.Status, to) {
			return apperrors.Conflict(fmt.Sprintf("Booking cannot move from %s to %s", current.Status, to)).
				WithDetails(map[string]any{"id": id, "status": current.Status})
		}
		previous = current.Status

		change := repository.StatusChange{From: current.Status, To: to, At: s.now(), Reason: reason}
		if !touchesLedger(current.Status, to) {
			result, err = s.updateStatus(ctx, id, change)
			return err
		}

		return s.inventory.WithLedgerLock(ctx, current.RatePlanID, func(txCtx context.Context) error {
			updated, err := s.updateStatus(txCtx, id, change)
			if err != nil {
				return err
			}
			if err := s.applySideEffects(txCtx, updated, previous); err != nil {
				return err
			}
			result = updated
			return nil
		})
	})
	if err != nil {
		s.cfg.Log.Warn("Booking transition failed",
			"id", id,
			"to", to,
			"error", err,
		)
		return nil, err
	}

	s.cfg.Log.Info("Booking status changed",
		"id", result.ID,
		"reference", result.Reference,
		"from", previous,
		"to", to,
	)
	s.publish(ctx, eventType(to), result, previous)
	return result, nil
}

func (s *bookingService) applySideEffects(ctx context.Context, b *model.Booking, previous string) error {
	switch b.Status {
	case model.BookingStatusConfirmed:
		if err := s.inventory.Block(ctx, b.RatePlanID, b.CheckIn, b.CheckOut, 1); err != nil {
			return err
		}
		if b.PromotionID == "" {
			return nil
		}
		if err := s.checkCustomerLimit(ctx, b.PromotionID, b.Guest.Email, b.ID); err != nil {
			return err
		}
		return s.promotions.Use(ctx, b.PromotionID)

	case model.BookingStatusCancelled:
		if previous != model.BookingStatusConfirmed {
			return nil
		}
		if err := s.inventory.Release(ctx, b.RatePlanID, b.CheckIn, b.CheckOut, 1); err != nil {
			return err
		}
		if b.PromotionID != "" && s.cfg.PromotionReverseOnCancel {
			return s.promotions.Unuse(ctx, b.PromotionID)
		}
	}
	return nil
}

// retry runs fn again on retryable conflicts, up to ConflictMaxRetries times.
func (s *bookingService) retry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt <= s.cfg.ConflictMaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return apperrors.Timeout("Timed out retrying booking update")
			case <-time.After(s.cfg.ConflictRetryBackoff * time.Duration(attempt)):
			}
		}

		err = fn()
		if err == nil || !apperrors.IsRetryable(err) {
			return err
		}
		// Lock acquisition has already backed off on its own.
		if errors.Is(err, inventoryerrors.ErrLockHeld) {
			return err
		}
		s.cfg.Log.Debug("Retrying booking update after conflict", "attempt", attempt+1, "error", err)
	}
	return err
}

// --- Helpers ---

func (s *bookingService) prepare(req *model.BookingRequest) (pricingservice.Request, error) {
	rawPhone := strings.TrimSpace(req.Guest.Phone)
	s.sanitize(req)
	if err := s.validator.Validate(req); err != nil {
		s.cfg.Log.Warn("Booking request validation failed", "rate_plan_id", req.RatePlanID, "error", err)
		return pricingservice.Request{}, validation.ToAppError("Booking request validation failed", err)
	}
	if rawPhone != "" && req.Guest.Phone == "" {
		return pricingservice.Request{}, apperrors.Validation("Booking request validation failed", map[string]any{
			"fields": map[string]any{"guest.phone": "phone is not a valid phone number"},
		})
	}

	return pricingservice.Request{
		RatePlanID:    req.RatePlanID,
		CheckIn:       dates.MustParse(req.CheckIn),
		CheckOut:      dates.MustParse(req.CheckOut),
		Adults:        req.Adults,
		Children:      req.Children,
		PromotionCode: req.PromotionCode,
		TransferID:    req.TransferID,
		CurrencyCode:  req.CurrencyCode,
	}, nil
}

func (s *bookingService) sanitize(req *model.BookingRequest) {
	req.RatePlanID = strings.TrimSpace(req.RatePlanID)
	req.CheckIn = strings.TrimSpace(req.CheckIn)
	req.CheckOut = strings.TrimSpace(req.CheckOut)
	req.Guest.Name = sanitizer.NormalizeName(req.Guest.Name)
	req.Guest.Email = sanitizer.NormalizeEmail(req.Guest.Email)
	req.Guest.Phone = sanitizer.NormalizePhone(req.Guest.Phone)
	req.Guest.Country = sanitizer.NormalizeCountryCode(req.Guest.Country)
	req.PromotionCode = sanitizer.NormalizePromoCode(req.PromotionCode)
	req.TransferID = strings.TrimSpace(req.TransferID)
	req.CommissionID = strings.TrimSpace(req.CommissionID)
	req.CurrencyCode = strings.ToUpper(strings.TrimSpace(req.CurrencyCode))
	req.UserID = strings.TrimSpace(req.UserID)
}

// checkCustomerLimit rejects a guest who already redeemed the promotion as
// often as its per-customer limit allows.
func (s *bookingService) checkCustomerLimit(ctx context.Context, promotionID, email, excludeID string) error {
	promotion, err := s.promotions.GetByID(ctx, promotionID)
	if err != nil {
		return err
	}
	if promotion.PerCustomerLimit == nil {
		return nil
	}

	used, err := s.repo.CountPromotionUses(ctx, promotionID, email, excludeID)
	if err != nil {
		s.cfg.Log.Error("Failed to count promotion uses", "promotion_id", promotionID, "error", err)
		return apperrors.Internal("Failed to check promotion usage", err)
	}
	if used >= int64(*promotion.PerCustomerLimit) {
		return apperrors.Validation("Promotion is not applicable", map[string]any{
			"code":   promotion.Code,
			"reason": promoerrors.ErrCustomerLimitReached.Error(),
		}).WithCause(promoerrors.ErrCustomerLimitReached)
	}
	return nil
}

func (s *bookingService) insertWithReference(ctx context.Context, booking *model.Booking) error {
	attempts := max(s.cfg.ReferenceMaxAttempts, 1)
	for attempt := 1; attempt <= attempts; attempt++ {
		booking.ID = ""
		booking.Reference = s.newReference()

		exists, err := s.repo.ExistsReference(ctx, booking.Reference)
		if err != nil {
			s.cfg.Log.Error("Failed to check booking reference", "error", err)
			return apperrors.Internal("Failed to create booking", err)
		}
		if exists {
			s.cfg.Log.Debug("Booking reference collision", "reference", booking.Reference, "attempt", attempt)
			continue
		}

		err = s.repo.Create(ctx, booking)
		if err == nil {
			return nil
		}
		if !errors.Is(err, bookingserrors.ErrReferenceTaken) {
			s.cfg.Log.Error("Failed to create booking", "error", err)
			return apperrors.Internal("Failed to create booking", err)
		}
		s.cfg.Log.Debug("Booking reference taken on insert", "reference", booking.Reference, "attempt", attempt)
	}

	s.cfg.Log.Error("Exhausted booking reference attempts", "attempts", attempts)
	return apperrors.Internal("Failed to allocate a unique booking reference", bookingserrors.ErrReferenceTaken)
}

func (s *bookingService) updateStatus(ctx context.Context, id string, change repository.StatusChange) (*model.Booking, error) {
	updated, err := s.repo.UpdateStatus(ctx, id, change)
	if err == nil {
		return updated, nil
	}
	if errors.Is(err, bookingserrors.ErrStatusChanged) {
		return nil, apperrors.ConcurrencyConflict("Booking was modified concurrently, please retry", err)
	}
	return nil, s.translate(err, id, "Failed to update booking status")
}

func (s *bookingService) publish(ctx context.Context, eventType string, b *model.Booking, previous string) {
	if eventType == "" {
		return
	}
	// The change is committed; a lost event must not fail the request.
	if err := s.publisher.Publish(context.WithoutCancel(ctx), model.NewBookingEvent(eventType, b, previous)); err != nil {
		s.cfg.Log.Error("Failed to publish booking event",
			"type", eventType,
			"id", b.ID,
			"reference", b.Reference,
			"error", err,
		)
	}
}

func (s *bookingService) translate(err error, id, msg string) error {
	switch {
	case apperrors.IsAppError(err):
		return err
	case errors.Is(err, bookingserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Booking", id)
	case errors.Is(err, bookingserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid booking ID format")
	default:
		s.cfg.Log.Error(msg, "id", id, "error", err)
		return apperrors.Internal(msg, err)
	}
}

func newBooking(req *model.BookingRequest, quote *pricingservice.Quote, stay pricingservice.Request) *model.Booking {
	return &model.Booking{
		UserID:     req.UserID,
		Guest:      req.Guest,
		ResortID:   quote.ResortID,
		RoomTypeID: quote.RoomTypeID,
		RatePlanID: quote.RatePlanID,

		CheckIn:  stay.CheckIn,
		CheckOut: stay.CheckOut,
		Nights:   dates.Nights(stay.CheckIn, stay.CheckOut),
		Adults:   req.Adults,
		Children: req.Children,

		RoomSubtotal:   quote.RoomSubtotal,
		DiscountAmount: quote.DiscountAmount,
		Subtotal:       quote.Subtotal,
		TaxTotal:       quote.TaxTotal,
		ServiceFee:     quote.ServiceFee,
		TransferTotal:  quote.TransferTotal,
		Total:          quote.Total,
		DepositAmount:  quote.DepositAmount,
		CurrencyCode:   quote.CurrencyCode,
		CurrencyRate:   quote.CurrencyRate,

		Status:        model.BookingStatusPending,
		PromotionID:   quote.PromotionID,
		PromotionCode: quote.PromotionCode,
		TransferID:    quote.TransferID,
		CommissionID:  req.CommissionID,
		Items:         quote.Items,
	}
}

func touchesLedger(from, to string) bool {
	return to == model.BookingStatusConfirmed ||
		(to == model.BookingStatusCancelled && from == model.BookingStatusConfirmed)
}

func eventType(status string) string {
	switch status {
	case model.BookingStatusConfirmed:
		return model.EventBookingConfirmed
	case model.BookingStatusCancelled:
		return model.EventBookingCancelled
	case model.BookingStatusCompleted:
		return model.EventBookingCompleted
	case model.BookingStatusNoShow:
		return model.EventBookingNoShow
	default:
		return ""
	}
}

func isKnownStatus(status string) bool {
	switch status {
	case model.BookingStatusPending, model.BookingStatusConfirmed, model.BookingStatusCancelled,
		model.BookingStatusCompleted, model.BookingStatusNoShow:
		return true
	}
	return false
}

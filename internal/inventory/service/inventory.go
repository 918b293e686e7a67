package service

import (
	"context"
	"errors"
	"time"

	inventoryerrors "resort/internal/inventory/errors"
	"resort/internal/inventory/repository"
	"resort/pkg/config"
	"resort/pkg/dates"
	apperrors "resort/pkg/errors"
	"resort/pkg/model"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

// InventoryService owns the per-rate-plan availability ledger. Stays are
// half-open [checkIn, checkOut); admin ranges are inclusive.
type InventoryService interface {
	CheckAvailability(ctx context.Context, ratePlanID string, checkIn, checkOut time.Time, count int) (bool, error)
	Block(ctx context.Context, ratePlanID string, checkIn, checkOut time.Time, count int) error
	Release(ctx context.Context, ratePlanID string, checkIn, checkOut time.Time, count int) error
	SetAvailability(ctx context.Context, ratePlanID string, from, to time.Time, available int, blocked bool) error
	Calendar(ctx context.Context, ratePlanID string, start, end time.Time) ([]model.DayAvailability, error)
	// WithLedgerLock runs fn inside one transaction while holding the rate
	// plan's advisory lock. Block and Release called with the ctx passed to
	// fn join that transaction.
	WithLedgerLock(ctx context.Context, ratePlanID string, fn func(ctx context.Context) error) error
}

type inventoryService struct {
	repo     repository.InventoryRepository
	lockRepo repository.LockRepository
	cfg      *config.Config
	now      func() time.Time
}

func NewInventoryService(
	repo repository.InventoryRepository,
	lockRepo repository.LockRepository,
	cfg *config.Config,
) InventoryService {
	return &inventoryService{
		repo:     repo,
		lockRepo: lockRepo,
		cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

type ledgerKey struct{}

func (s *inventoryService) CheckAvailability(ctx context.Context, ratePlanID string, checkIn, checkOut time.Time, count int) (bool, error) {
	checkIn, checkOut = dates.Day(checkIn), dates.Day(checkOut)
	if err := validateStay(ratePlanID, checkIn, checkOut, count); err != nil {
		return false, err
	}

	records, err := s.repo.FindOverlapping(ctx, ratePlanID, checkIn, dates.Prev(checkOut))
	if err != nil {
		s.cfg.Log.Error("Failed to load inventory", "rate_plan_id", ratePlanID, "error", err)
		return false, apperrors.Internal("Failed to check availability", err)
	}

	return newLedger(ratePlanID, records).available(checkIn, checkOut, count), nil
}

func (s *inventoryService) Block(ctx context.Context, ratePlanID string, checkIn, checkOut time.Time, count int) error {
	checkIn, checkOut = dates.Day(checkIn), dates.Day(checkOut)
	if err := validateStay(ratePlanID, checkIn, checkOut, count); err != nil {
		return err
	}

	return s.inLedger(ctx, ratePlanID, func(ctx context.Context) error {
		l, err := s.load(ctx, ratePlanID, checkIn, dates.Prev(checkOut))
		if err != nil {
			return err
		}

		if unserved := l.block(checkIn, checkOut, count); len(unserved) > 0 {
			s.cfg.Log.Warn("Inventory block rejected",
				"rate_plan_id", ratePlanID,
				"check_in", dates.Key(checkIn),
				"check_out", dates.Key(checkOut),
				"count", count,
				"nights", dates.Keys(unserved),
			)
			return apperrors.CapacityExceeded("Not enough rooms available for the requested stay", map[string]any{
				"rate_plan_id": ratePlanID,
				"nights":       dates.Keys(unserved),
				"requested":    count,
			}).WithCause(inventoryerrors.ErrCapacityExceeded)
		}

		if err := s.apply(ctx, l); err != nil {
			return err
		}

		s.cfg.Log.Info("Inventory blocked",
			"rate_plan_id", ratePlanID,
			"check_in", dates.Key(checkIn),
			"check_out", dates.Key(checkOut),
			"count", count,
		)
		return nil
	})
}

func (s *inventoryService) Release(ctx context.Context, ratePlanID string, checkIn, checkOut time.Time, count int) error {
	checkIn, checkOut = dates.Day(checkIn), dates.Day(checkOut)
	if err := validateStay(ratePlanID, checkIn, checkOut, count); err != nil {
		return err
	}

	return s.inLedger(ctx, ratePlanID, func(ctx context.Context) error {
		l, err := s.load(ctx, ratePlanID, checkIn, dates.Prev(checkOut))
		if err != nil {
			return err
		}

		if skipped := l.release(checkIn, checkOut, count); len(skipped) > 0 {
			s.cfg.Log.Warn("Inventory release skipped uncovered nights",
				"rate_plan_id", ratePlanID,
				"nights", dates.Keys(skipped),
				"count", count,
			)
		}

		if err := s.apply(ctx, l); err != nil {
			return err
		}

		s.cfg.Log.Info("Inventory released",
			"rate_plan_id", ratePlanID,
			"check_in", dates.Key(checkIn),
			"check_out", dates.Key(checkOut),
			"count", count,
		)
		return nil
	})
}

func (s *inventoryService) SetAvailability(ctx context.Context, ratePlanID string, from, to time.Time, available int, blocked bool) error {
	from, to = dates.Day(from), dates.Day(to)
	if ratePlanID == "" {
		return apperrors.InvalidInput("Rate plan ID cannot be empty")
	}
	if to.Before(from) {
		return apperrors.InvalidInput(inventoryerrors.ErrInvalidRange.Error())
	}
	if available < 0 {
		return apperrors.InvalidInput("Available rooms cannot be negative")
	}

	return s.inLedger(ctx, ratePlanID, func(ctx context.Context) error {
		l, err := s.load(ctx, ratePlanID, from, to)
		if err != nil {
			return err
		}

		l.set(from, to, available, blocked)
		if err := s.apply(ctx, l); err != nil {
			return err
		}

		s.cfg.Log.Info("Inventory availability set",
			"rate_plan_id", ratePlanID,
			"from", dates.Key(from),
			"to", dates.Key(to),
			"available_rooms", available,
			"blocked", blocked,
		)
		return nil
	})
}

func (s *inventoryService) Calendar(ctx context.Context, ratePlanID string, start, end time.Time) ([]model.DayAvailability, error) {
	start, end = dates.Day(start), dates.Day(end)
	if ratePlanID == "" {
		return nil, apperrors.InvalidInput("Rate plan ID cannot be empty")
	}
	if !start.Before(end) {
		return nil, apperrors.InvalidInput("End date must be after start date")
	}

	records, err := s.repo.FindOverlapping(ctx, ratePlanID, start, dates.Prev(end))
	if err != nil {
		s.cfg.Log.Error("Failed to load inventory", "rate_plan_id", ratePlanID, "error", err)
		return nil, apperrors.Internal("Failed to load availability calendar", err)
	}

	return newLedger(ratePlanID, records).calendar(start, end), nil
}

func (s *inventoryService) WithLedgerLock(ctx context.Context, ratePlanID string, fn func(ctx context.Context) error) error {
	lockName := "inventory:" + ratePlanID
	owner := uuid.NewString()

	if err := s.acquire(ctx, lockName, owner); err != nil {
		return err
	}
	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.WriteTimeout)
		defer cancel()
		if err := s.lockRepo.Release(releaseCtx, lockName, owner); err != nil {
			s.cfg.Log.Warn("Failed to release ledger lock", "lock", lockName, "error", err)
		}
	}()

	return s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		return fn(context.WithValue(sessCtx, ledgerKey{}, ratePlanID))
	})
}

// inLedger joins the caller's ledger transaction for the same rate plan or
// opens a new one.
func (s *inventoryService) inLedger(ctx context.Context, ratePlanID string, fn func(ctx context.Context) error) error {
	if held, ok := ctx.Value(ledgerKey{}).(string); ok && held == ratePlanID {
		return fn(ctx)
	}
	return s.WithLedgerLock(ctx, ratePlanID, fn)
}

func (s *inventoryService) acquire(ctx context.Context, lockName, owner string) error {
	var err error
	for attempt := 0; attempt <= s.cfg.ConflictMaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return apperrors.Timeout("Timed out waiting for inventory lock")
			case <-time.After(s.cfg.ConflictRetryBackoff * time.Duration(attempt)):
			}
		}

		err = s.lockRepo.Acquire(ctx, lockName, owner, s.cfg.LedgerLockTTL)
		if err == nil {
			return nil
		}
		if !errors.Is(err, inventoryerrors.ErrLockHeld) {
			s.cfg.Log.Error("Failed to acquire ledger lock", "lock", lockName, "error", err)
			return apperrors.Internal("Failed to acquire inventory lock", err)
		}
	}

	s.cfg.Log.Warn("Ledger lock busy", "lock", lockName, "attempts", s.cfg.ConflictMaxRetries+1)
	return apperrors.ConcurrencyConflict("Inventory is being updated by another request, please retry", err)
}

func (s *inventoryService) load(ctx context.Context, ratePlanID string, from, to time.Time) (*ledger, error) {
	// One day either side so adjacent records can be coalesced.
	records, err := s.repo.FindOverlapping(ctx, ratePlanID, dates.Prev(from), dates.Next(to))
	if err != nil {
		s.cfg.Log.Error("Failed to load inventory", "rate_plan_id", ratePlanID, "error", err)
		return nil, apperrors.Internal("Failed to load inventory", err)
	}
	return newLedger(ratePlanID, records), nil
}

func (s *inventoryService) apply(ctx context.Context, l *ledger) error {
	m := l.plan(s.now())
	if m.Empty() {
		return nil
	}

	if err := s.repo.Apply(ctx, m); err != nil {
		if repository.IsVersionConflict(err) {
			s.cfg.Log.Warn("Inventory version conflict", "rate_plan_id", l.ratePlanID, "error", err)
			return apperrors.ConcurrencyConflict("Inventory changed concurrently, please retry", err)
		}
		s.cfg.Log.Error("Failed to write inventory", "rate_plan_id", l.ratePlanID, "error", err)
		return apperrors.Internal("Failed to write inventory", err)
	}

	s.cfg.Log.Debug("Inventory ledger written",
		"rate_plan_id", l.ratePlanID,
		"updates", len(m.Updates),
		"inserts", len(m.Inserts),
		"deletes", len(m.Deletes),
	)
	return nil
}

func validateStay(ratePlanID string, checkIn, checkOut time.Time, count int) error {
	if ratePlanID == "" {
		return apperrors.InvalidInput("Rate plan ID cannot be empty")
	}
	if !checkIn.Before(checkOut) {
		return apperrors.InvalidInput("Check-out must be after check-in")
	}
	if count <= 0 {
		return apperrors.InvalidInput("Room count must be positive")
	}
	return nil
}

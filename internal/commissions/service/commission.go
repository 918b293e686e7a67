package service

import (
	"context"
	"errors"

	commerrors "resort/internal/commissions/errors"
	"resort/internal/commissions/repository"
	"resort/internal/commissions/validator"
	"resort/pkg/config"
	apperrors "resort/pkg/errors"
	"resort/pkg/model"
	"resort/pkg/money"
	"resort/pkg/sanitizer"
	"resort/pkg/validation"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type CommissionService interface {
	Create(ctx context.Context, commission *model.Commission) error
	GetByID(ctx context.Context, id string) (*model.Commission, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*model.Commission, error)
	GetAll(ctx context.Context, agentID string, limit int, offset int64) ([]*model.Commission, int64, error)
	Update(ctx context.Context, id string, commission *model.Commission) error
	// Calculate evaluates the current rule against a booking value.
	Calculate(ctx context.Context, id string, bookingValue decimal.Decimal, nights int) (decimal.Decimal, error)
}

type commissionService struct {
	repo      repository.CommissionRepository
	validator *validator.CommissionValidator
	cfg       *config.Config
}

func NewCommissionService(repo repository.CommissionRepository, validator *validator.CommissionValidator, cfg *config.Config) CommissionService {
	return &commissionService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *commissionService) Create(ctx context.Context, commission *model.Commission) error {
	s.sanitize(commission)
	if err := s.validate(commission); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, commission); err != nil {
		s.cfg.Log.Error("Failed to create commission", "agent_id", commission.AgentID, "error", err)
		return apperrors.Internal("Failed to create commission", err)
	}

	s.cfg.Log.Info("Commission created successfully", "id", commission.ID, "agent_id", commission.AgentID)
	return nil
}

func (s *commissionService) GetByID(ctx context.Context, id string) (*model.Commission, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Commission ID cannot be empty")
	}
	commission, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translate(err, id, "Failed to retrieve commission")
	}
	return commission, nil
}

func (s *commissionService) GetByIDs(ctx context.Context, ids []string) (map[string]*model.Commission, error) {
	commissions, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		s.cfg.Log.Error("Failed to load commissions", "count", len(ids), "error", err)
		return nil, apperrors.Internal("Failed to retrieve commissions", err)
	}

	byID := make(map[string]*model.Commission, len(commissions))
	for _, c := range commissions {
		byID[c.ID] = c
	}
	return byID, nil
}

func (s *commissionService) GetAll(ctx context.Context, agentID string, limit int, offset int64) ([]*model.Commission, int64, error) {
	var (
		count       int64
		commissions []*model.Commission
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		count, err = s.repo.Count(gctx, agentID)
		if err != nil {
			s.cfg.Log.Error("Failed to count commissions", "error", err)
			return apperrors.Internal("Failed to count commissions", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		commissions, err = s.repo.FindAll(gctx, agentID, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to list commissions", "error", err)
			return apperrors.Internal("Failed to retrieve commissions", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return commissions, count, nil
}

// Update changes the rule in place. Reports recompute from the current rule,
// so an edit also changes historical figures.
func (s *commissionService) Update(ctx context.Context, id string, commission *model.Commission) error {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	commission.AgentID = existing.AgentID
	s.sanitize(commission)
	if err := s.validate(commission); err != nil {
		return err
	}

	if err := s.repo.Update(ctx, id, commission); err != nil {
		return s.translate(err, id, "Failed to update commission")
	}
	s.cfg.Log.Info("Commission updated successfully", "id", id)
	return nil
}

func (s *commissionService) Calculate(ctx context.Context, id string, bookingValue decimal.Decimal, nights int) (decimal.Decimal, error) {
	if bookingValue.IsNegative() || nights < 0 {
		return decimal.Zero, apperrors.InvalidInput("Booking value and nights must not be negative")
	}
	commission, err := s.GetByID(ctx, id)
	if err != nil {
		return decimal.Zero, err
	}
	return CalculateCommission(commission, bookingValue, nights), nil
}

// --- Helpers ---

func (s *commissionService) sanitize(commission *model.Commission) {
	commission.Name = sanitizer.NormalizeName(commission.Name)
	commission.AgentID = sanitizer.TrimAndNormalize(commission.AgentID)
	commission.RoomTypeIDs = sanitizer.NormalizeLabels(commission.RoomTypeIDs)
	commission.Rate = money.Round(commission.Rate)
	commission.FixedAmount = money.Round(commission.FixedAmount)
	commission.MinimumBookingValue = money.Round(commission.MinimumBookingValue)
}

func (s *commissionService) validate(commission *model.Commission) error {
	if err := s.validator.Validate(commission); err != nil {
		s.cfg.Log.Warn("Commission validation failed", "agent_id", commission.AgentID, "error", err)
		return validation.ToAppError("Commission validation failed", err)
	}
	return nil
}

func (s *commissionService) translate(err error, id, message string) error {
	if errors.Is(err, commerrors.ErrCommissionNotFound) {
		return apperrors.NotFoundWithID("Commission", id)
	}
	if errors.Is(err, commerrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid commission ID format")
	}
	s.cfg.Log.Error(message, "id", id, "error", err)
	return apperrors.Internal(message, err)
}

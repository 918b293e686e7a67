package service

import (
	"context"
	"errors"
	"time"

	rateserrors "resort/internal/rates/errors"
	"resort/internal/rates/repository"
	"resort/internal/rates/validator"
	"resort/pkg/config"
	"resort/pkg/dates"
	apperrors "resort/pkg/errors"
	"resort/pkg/model"
	"resort/pkg/money"
	"resort/pkg/sanitizer"
	"resort/pkg/validation"

	"golang.org/x/sync/errgroup"
)

type RatePlanService interface {
	Create(ctx context.Context, plan *model.RatePlan) error
	GetByID(ctx context.Context, id string) (*model.RatePlan, error)
	// GetBookable returns the plan only when it is active and not deleted.
	GetBookable(ctx context.Context, id string) (*model.RatePlan, error)
	GetAll(ctx context.Context, resortID string, limit int, offset int64) ([]*model.RatePlan, int64, error)
	Update(ctx context.Context, id string, plan *model.RatePlan) error
	Delete(ctx context.Context, id string) error
	AddSeasonalRate(ctx context.Context, ratePlanID string, req *model.SeasonalRateRequest) (*model.SeasonalRate, error)
	ListSeasonalRates(ctx context.Context, ratePlanID string) ([]*model.SeasonalRate, error)
}

type ratePlanService struct {
	repo      repository.RatePlanRepository
	rateRepo  repository.SeasonalRateRepository
	validator *validator.RatePlanValidator
	cfg       *config.Config
}

func NewRatePlanService(
	repo repository.RatePlanRepository,
	rateRepo repository.SeasonalRateRepository,
	validator *validator.RatePlanValidator,
	cfg *config.Config,
) RatePlanService {
	return &ratePlanService{
		repo:      repo,
		rateRepo:  rateRepo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *ratePlanService) Create(ctx context.Context, plan *model.RatePlan) error {
	s.sanitize(plan)
	if err := s.validate(plan); err != nil {
		return err
	}

	plan.DeletedAt = nil
	if err := s.repo.Create(ctx, plan); err != nil {
		s.cfg.Log.Error("Failed to create rate plan", "error", err)
		return apperrors.Internal("Failed to create rate plan", err)
	}

	s.cfg.Log.Info("Rate plan created successfully", "id", plan.ID, "resort_id", plan.ResortID)
	return nil
}

func (s *ratePlanService) GetByID(ctx context.Context, id string) (*model.RatePlan, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Rate plan ID cannot be empty")
	}

	plan, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translate(err, id, "Failed to retrieve rate plan")
	}
	return plan, nil
}

func (s *ratePlanService) GetBookable(ctx context.Context, id string) (*model.RatePlan, error) {
	plan, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !plan.Bookable() {
		return nil, apperrors.Validation("Rate plan is not available for booking", map[string]any{
			"rate_plan_id": id,
			"active":       plan.Active,
			"deleted":      plan.DeletedAt != nil,
		})
	}
	return plan, nil
}

func (s *ratePlanService) GetAll(ctx context.Context, resortID string, limit int, offset int64) ([]*model.RatePlan, int64, error) {
	var (
		count int64
		plans []*model.RatePlan
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		count, err = s.repo.Count(gctx, resortID)
		if err != nil {
			s.cfg.Log.Error("Failed to count rate plans", "error", err)
			return apperrors.Internal("Failed to count rate plans", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		plans, err = s.repo.FindAll(gctx, resortID, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to list rate plans", "error", err)
			return apperrors.Internal("Failed to retrieve rate plans", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	return plans, count, nil
}

func (s *ratePlanService) Update(ctx context.Context, id string, plan *model.RatePlan) error {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.DeletedAt != nil {
		return apperrors.NotFoundWithID("Rate plan", id)
	}

	plan.ResortID = existing.ResortID
	s.sanitize(plan)
	if err := s.validate(plan); err != nil {
		return err
	}

	if err := s.repo.Update(ctx, id, plan); err != nil {
		return s.translate(err, id, "Failed to update rate plan")
	}
	s.cfg.Log.Info("Rate plan updated successfully", "id", id)
	return nil
}

// Delete soft-deletes the plan; bookings keep referencing it.
func (s *ratePlanService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Rate plan ID cannot be empty")
	}
	if err := s.repo.SoftDelete(ctx, id, time.Now().UTC().Truncate(time.Millisecond)); err != nil {
		return s.translate(err, id, "Failed to delete rate plan")
	}
	s.cfg.Log.Info("Rate plan deleted successfully", "id", id)
	return nil
}

func (s *ratePlanService) AddSeasonalRate(ctx context.Context, ratePlanID string, req *model.SeasonalRateRequest) (*model.SeasonalRate, error) {
	if _, err := s.GetByID(ctx, ratePlanID); err != nil {
		return nil, err
	}

	req.Name = sanitizer.NormalizeName(req.Name)
	if err := s.validator.ValidateSeasonalRate(req); err != nil {
		return nil, validation.ToAppError("Seasonal rate validation failed", err)
	}

	start, _ := dates.Parse(req.StartDate)
	end, _ := dates.Parse(req.EndDate)
	rate := &model.SeasonalRate{
		RatePlanID:   ratePlanID,
		Name:         req.Name,
		StartDate:    start,
		EndDate:      end,
		NightlyPrice: money.Round(req.NightlyPrice),
		MinStay:      req.MinStay,
		MaxStay:      req.MaxStay,
	}
	if err := s.rateRepo.Create(ctx, rate); err != nil {
		s.cfg.Log.Error("Failed to create seasonal rate", "rate_plan_id", ratePlanID, "error", err)
		return nil, apperrors.Internal("Failed to create seasonal rate", err)
	}

	s.cfg.Log.Info("Seasonal rate created successfully",
		"id", rate.ID,
		"rate_plan_id", ratePlanID,
		"start_date", req.StartDate,
		"end_date", req.EndDate,
		"nightly_price", rate.NightlyPrice.StringFixed(2),
	)
	return rate, nil
}

func (s *ratePlanService) ListSeasonalRates(ctx context.Context, ratePlanID string) ([]*model.SeasonalRate, error) {
	if _, err := s.GetByID(ctx, ratePlanID); err != nil {
		return nil, err
	}
	rates, err := s.rateRepo.FindByRatePlan(ctx, ratePlanID)
	if err != nil {
		s.cfg.Log.Error("Failed to list seasonal rates", "rate_plan_id", ratePlanID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve seasonal rates", err)
	}
	return rates, nil
}

// --- Helpers ---

func (s *ratePlanService) sanitize(plan *model.RatePlan) {
	plan.Name = sanitizer.NormalizeName(plan.Name)
	plan.CountryRestriction.Countries = sanitizer.NormalizeCountryCodes(plan.CountryRestriction.Countries)
	if plan.CountryRestriction.Mode == "" {
		plan.CountryRestriction.Mode = model.CountryRestrictionNone
	}
	plan.Deposit.Percentage = money.Round(plan.Deposit.Percentage)
}

func (s *ratePlanService) validate(plan *model.RatePlan) error {
	if err := s.validator.Validate(plan); err != nil {
		s.cfg.Log.Warn("Rate plan validation failed", "error", err)
		return validation.ToAppError("Rate plan validation failed", err)
	}
	return nil
}

func (s *ratePlanService) translate(err error, id, message string) error {
	if errors.Is(err, rateserrors.ErrRatePlanNotFound) {
		return apperrors.NotFoundWithID("Rate plan", id)
	}
	if errors.Is(err, rateserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid rate plan ID format")
	}
	s.cfg.Log.Error(message, "id", id, "error", err)
	return apperrors.Internal(message, err)
}

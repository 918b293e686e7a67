package service

import (
	"context"
	"errors"
	"time"

	promoerrors "resort/internal/promotions/errors"
	"resort/internal/promotions/repository"
	"resort/internal/promotions/validator"
	"resort/pkg/config"
	apperrors "resort/pkg/errors"
	"resort/pkg/model"
	"resort/pkg/money"
	"resort/pkg/sanitizer"
	"resort/pkg/validation"

	"golang.org/x/sync/errgroup"
)

type PromotionService interface {
	Create(ctx context.Context, promotion *model.Promotion) error
	GetByID(ctx context.Context, id string) (*model.Promotion, error)
	GetByCode(ctx context.Context, code string) (*model.Promotion, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Promotion, int64, error)
	Update(ctx context.Context, id string, promotion *model.Promotion) error
	// Apply loads the promotion by code and checks it against the stay.
	Apply(ctx context.Context, code string, stay Eligibility, now time.Time) (*model.Promotion, error)
	Use(ctx context.Context, id string) error
	Unuse(ctx context.Context, id string) error
}

type promotionService struct {
	repo      repository.PromotionRepository
	validator *validator.PromotionValidator
	cfg       *config.Config
}

func NewPromotionService(repo repository.PromotionRepository, validator *validator.PromotionValidator, cfg *config.Config) PromotionService {
	return &promotionService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *promotionService) Create(ctx context.Context, promotion *model.Promotion) error {
	s.sanitize(promotion)
	promotion.CurrentUses = 0
	if err := s.validate(promotion); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, promotion); err != nil {
		if errors.Is(err, promoerrors.ErrCodeTaken) {
			return apperrors.Conflict("Promotion code already exists").WithDetails(map[string]any{"code": promotion.Code})
		}
		s.cfg.Log.Error("Failed to create promotion", "code", promotion.Code, "error", err)
		return apperrors.Internal("Failed to create promotion", err)
	}

	s.cfg.Log.Info("Promotion created successfully", "id", promotion.ID, "code", promotion.Code)
	return nil
}

func (s *promotionService) GetByID(ctx context.Context, id string) (*model.Promotion, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Promotion ID cannot be empty")
	}
	promotion, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translate(err, id, "Failed to retrieve promotion")
	}
	return promotion, nil
}

func (s *promotionService) GetByCode(ctx context.Context, code string) (*model.Promotion, error) {
	code = sanitizer.NormalizePromoCode(code)
	if code == "" {
		return nil, apperrors.InvalidInput("Promotion code cannot be empty")
	}
	promotion, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, s.translate(err, code, "Failed to retrieve promotion")
	}
	return promotion, nil
}

func (s *promotionService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Promotion, int64, error) {
	var (
		count      int64
		promotions []*model.Promotion
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		count, err = s.repo.Count(gctx)
		if err != nil {
			s.cfg.Log.Error("Failed to count promotions", "error", err)
			return apperrors.Internal("Failed to count promotions", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		promotions, err = s.repo.FindAll(gctx, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to list promotions", "error", err)
			return apperrors.Internal("Failed to retrieve promotions", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return promotions, count, nil
}

func (s *promotionService) Update(ctx context.Context, id string, promotion *model.Promotion) error {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	promotion.Code = existing.Code
	promotion.CurrentUses = existing.CurrentUses
	s.sanitize(promotion)
	if err := s.validate(promotion); err != nil {
		return err
	}

	if err := s.repo.Update(ctx, id, promotion); err != nil {
		return s.translate(err, id, "Failed to update promotion")
	}
	s.cfg.Log.Info("Promotion updated successfully", "id", id, "code", existing.Code)
	return nil
}

func (s *promotionService) Apply(ctx context.Context, code string, stay Eligibility, now time.Time) (*model.Promotion, error) {
	promotion, err := s.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if err := Check(promotion, stay, now); err != nil {
		s.cfg.Log.Info("Promotion rejected", "code", promotion.Code, "reason", err.Error())
		return nil, apperrors.Validation("Promotion is not applicable", map[string]any{
			"code":   promotion.Code,
			"reason": err.Error(),
		}).WithCause(err)
	}
	return promotion, nil
}

func (s *promotionService) Use(ctx context.Context, id string) error {
	if err := s.repo.Use(ctx, id); err != nil {
		if errors.Is(err, promoerrors.ErrUsageCapReached) {
			s.cfg.Log.Warn("Promotion usage cap reached", "id", id)
			return apperrors.Validation("Promotion is not applicable", map[string]any{
				"promotion_id": id,
				"reason":       err.Error(),
			}).WithCause(err)
		}
		return s.translate(err, id, "Failed to use promotion")
	}
	s.cfg.Log.Debug("Promotion used", "id", id)
	return nil
}

func (s *promotionService) Unuse(ctx context.Context, id string) error {
	if err := s.repo.Unuse(ctx, id); err != nil {
		return s.translate(err, id, "Failed to release promotion use")
	}
	s.cfg.Log.Debug("Promotion use released", "id", id)
	return nil
}

// --- Helpers ---

func (s *promotionService) sanitize(promotion *model.Promotion) {
	promotion.Code = sanitizer.NormalizePromoCode(promotion.Code)
	promotion.RatePlanIDs = sanitizer.NormalizeIDs(promotion.RatePlanIDs)
	promotion.RoomTypeIDs = sanitizer.NormalizeLabels(promotion.RoomTypeIDs)
	promotion.Value = money.Round(promotion.Value)
	promotion.MinimumAmount = money.Round(promotion.MinimumAmount)
}

func (s *promotionService) validate(promotion *model.Promotion) error {
	if err := s.validator.Validate(promotion); err != nil {
		s.cfg.Log.Warn("Promotion validation failed", "code", promotion.Code, "error", err)
		return validation.ToAppError("Promotion validation failed", err)
	}
	return nil
}

func (s *promotionService) translate(err error, id, message string) error {
	if errors.Is(err, promoerrors.ErrPromotionNotFound) {
		return apperrors.NotFoundWithID("Promotion", id)
	}
	if errors.Is(err, promoerrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid promotion ID format")
	}
	s.cfg.Log.Error(message, "id", id, "error", err)
	return apperrors.Internal(message, err)
}

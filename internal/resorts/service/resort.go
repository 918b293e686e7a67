package service

import (
	"context"
	"errors"
	"strings"

	resorterrors "resort/internal/resorts/errors"
	"resort/internal/resorts/repository"
	"resort/internal/resorts/validator"
	"resort/pkg/config"
	apperrors "resort/pkg/errors"
	"resort/pkg/model"
	"resort/pkg/money"
	"resort/pkg/sanitizer"
	"resort/pkg/validation"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type ResortService interface {
	Create(ctx context.Context, resort *model.Resort) error
	GetByID(ctx context.Context, id string) (*model.Resort, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Resort, int64, error)
	Update(ctx context.Context, id string, resort *model.Resort) error
}

type resortService struct {
	repo      repository.ResortRepository
	validator *validator.ResortValidator
	cfg       *config.Config
}

func NewResortService(repo repository.ResortRepository, validator *validator.ResortValidator, cfg *config.Config) ResortService {
	return &resortService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *resortService) Create(ctx context.Context, resort *model.Resort) error {
	s.sanitize(resort)
	if err := s.validate(resort); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, resort); err != nil {
		s.cfg.Log.Error("Failed to create resort", "name", resort.Name, "error", err)
		return apperrors.Internal("Failed to create resort", err)
	}

	s.cfg.Log.Info("Resort created successfully", "id", resort.ID, "name", resort.Name)
	return nil
}

func (s *resortService) GetByID(ctx context.Context, id string) (*model.Resort, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Resort ID cannot be empty")
	}
	resort, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translate(s.cfg, err, "Resort", id, "Failed to retrieve resort")
	}
	return resort, nil
}

func (s *resortService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Resort, int64, error) {
	var (
		count   int64
		resorts []*model.Resort
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		count, err = s.repo.Count(gctx)
		if err != nil {
			s.cfg.Log.Error("Failed to count resorts", "error", err)
			return apperrors.Internal("Failed to count resorts", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		resorts, err = s.repo.FindAll(gctx, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to list resorts", "error", err)
			return apperrors.Internal("Failed to retrieve resorts", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return resorts, count, nil
}

func (s *resortService) Update(ctx context.Context, id string, resort *model.Resort) error {
	s.sanitize(resort)
	if err := s.validate(resort); err != nil {
		return err
	}

	if err := s.repo.Update(ctx, id, resort); err != nil {
		return translate(s.cfg, err, "Resort", id, "Failed to update resort")
	}
	s.cfg.Log.Info("Resort updated successfully", "id", id)
	return nil
}

// Tax names are stored lower-case so that "GST" and "gst" are one rule.
func (s *resortService) sanitize(resort *model.Resort) {
	resort.Name = sanitizer.NormalizeName(resort.Name)
	resort.Currency = strings.ToUpper(strings.TrimSpace(resort.Currency))

	rules := make(map[string]decimal.Decimal, len(resort.TaxRules))
	for name, rate := range resort.TaxRules {
		if name = sanitizer.NormalizeLabel(name); name != "" {
			rules[name] = money.Round(rate)
		}
	}
	resort.TaxRules = rules
}

func (s *resortService) validate(resort *model.Resort) error {
	if err := s.validator.Validate(resort); err != nil {
		s.cfg.Log.Warn("Resort validation failed", "name", resort.Name, "error", err)
		return validation.ToAppError("Resort validation failed", err)
	}
	return nil
}

func translate(cfg *config.Config, err error, resource, id, message string) error {
	switch {
	case errors.Is(err, resorterrors.ErrResortNotFound),
		errors.Is(err, resorterrors.ErrTransferNotFound),
		errors.Is(err, resorterrors.ErrSettingNotFound):
		return apperrors.NotFoundWithID(resource, id)
	case errors.Is(err, resorterrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid " + strings.ToLower(resource) + " ID format")
	}
	cfg.Log.Error(message, "id", id, "error", err)
	return apperrors.Internal(message, err)
}

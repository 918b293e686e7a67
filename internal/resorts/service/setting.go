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
	"resort/pkg/validation"

	"github.com/shopspring/decimal"
)

// SettingService is the runtime configuration source for pricing: the
// tourist service fee and currency conversion rates.
type SettingService interface {
	Put(ctx context.Context, setting *model.Setting) error
	List(ctx context.Context) ([]*model.Setting, error)
	// ServiceFeeRate returns the fee percentage, falling back to the
	// configured default when the key is absent.
	ServiceFeeRate(ctx context.Context) (decimal.Decimal, error)
	// CurrencyRate returns the conversion rate for code, 1 when absent.
	CurrencyRate(ctx context.Context, code string) (decimal.Decimal, error)
}

type settingService struct {
	repo      repository.SettingRepository
	validator *validator.ResortValidator
	cfg       *config.Config
}

func NewSettingService(repo repository.SettingRepository, validator *validator.ResortValidator, cfg *config.Config) SettingService {
	return &settingService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *settingService) Put(ctx context.Context, setting *model.Setting) error {
	setting.Key = strings.TrimSpace(setting.Key)
	if strings.HasPrefix(strings.ToLower(setting.Key), model.SettingCurrencyRatePrefix) {
		setting.Key = model.SettingCurrencyRatePrefix + strings.ToUpper(setting.Key[len(model.SettingCurrencyRatePrefix):])
	}
	setting.Value = strings.TrimSpace(setting.Value)

	if err := s.validator.ValidateSetting(setting); err != nil {
		s.cfg.Log.Warn("Setting validation failed", "key", setting.Key, "error", err)
		return validation.ToAppError("Setting validation failed", err)
	}

	if err := s.repo.Put(ctx, setting); err != nil {
		s.cfg.Log.Error("Failed to save setting", "key", setting.Key, "error", err)
		return apperrors.Internal("Failed to save setting", err)
	}
	s.cfg.Log.Info("Setting saved", "key", setting.Key, "value", setting.Value)
	return nil
}

func (s *settingService) List(ctx context.Context) ([]*model.Setting, error) {
	settings, err := s.repo.FindAll(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to list settings", "error", err)
		return nil, apperrors.Internal("Failed to retrieve settings", err)
	}
	return settings, nil
}

func (s *settingService) ServiceFeeRate(ctx context.Context) (decimal.Decimal, error) {
	fee, found, err := s.decimal(ctx, model.SettingServiceFee)
	if err != nil {
		return decimal.Zero, err
	}
	if !found || fee.IsNegative() {
		return s.cfg.ServiceFeeDefault, nil
	}
	return fee, nil
}

func (s *settingService) CurrencyRate(ctx context.Context, code string) (decimal.Decimal, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return decimal.NewFromInt(1), nil
	}

	rate, found, err := s.decimal(ctx, model.SettingCurrencyRatePrefix+code)
	if err != nil {
		return decimal.Zero, err
	}
	if !found || !rate.IsPositive() {
		return decimal.NewFromInt(1), nil
	}
	return money.RoundRate(rate), nil
}

// decimal reads key as a number. Unparseable values are logged and treated
// as absent.
func (s *settingService) decimal(ctx context.Context, key string) (decimal.Decimal, bool, error) {
	setting, err := s.repo.Get(ctx, key)
	if err != nil {
		if errors.Is(err, resorterrors.ErrSettingNotFound) {
			return decimal.Zero, false, nil
		}
		s.cfg.Log.Error("Failed to read setting", "key", key, "error", err)
		return decimal.Zero, false, apperrors.Internal("Failed to read setting", err)
	}

	value, err := decimal.NewFromString(setting.Value)
	if err != nil {
		s.cfg.Log.Warn("Ignoring malformed setting", "key", key, "value", setting.Value)
		return decimal.Zero, false, nil
	}
	return value, true, nil
}

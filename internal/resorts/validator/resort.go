package validator

import (
	"strings"

	"resort/pkg/logger"
	"resort/pkg/model"
	"resort/pkg/validation"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type ResortValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewResortValidator(log *logger.Logger) *ResortValidator {
	return &ResortValidator{
		validate: validation.New(),
		logger:   log,
	}
}

func (v *ResortValidator) Validate(resort *model.Resort) error {
	if err := validation.Struct(v.validate, resort); err != nil {
		v.logger.Debug("Resort validation failed", "name", resort.Name, "error", err)
		return err
	}
	return nil
}

func (v *ResortValidator) ValidateTransfer(transfer *model.Transfer) error {
	if err := validation.Struct(v.validate, transfer); err != nil {
		v.logger.Debug("Transfer validation failed", "name", transfer.Name, "error", err)
		return err
	}
	return nil
}

// ValidateSetting checks the key and, for known keys, that the value parses.
func (v *ResortValidator) ValidateSetting(setting *model.Setting) error {
	if err := validation.Struct(v.validate, setting); err != nil {
		v.logger.Debug("Setting validation failed", "key", setting.Key, "error", err)
		return err
	}

	switch {
	case setting.Key == model.SettingServiceFee:
		fee, err := decimal.NewFromString(setting.Value)
		if err != nil || fee.IsNegative() || fee.GreaterThan(hundred) {
			return validation.ValidationErrors{{Field: "value", Message: "service fee must be a percentage between 0 and 100"}}
		}
	case strings.HasPrefix(setting.Key, model.SettingCurrencyRatePrefix):
		code := strings.TrimPrefix(setting.Key, model.SettingCurrencyRatePrefix)
		if err := v.validate.Var(code, "iso4217"); err != nil {
			return validation.ValidationErrors{{Field: "key", Message: "currency rate key must end in an ISO 4217 code"}}
		}
		rate, err := decimal.NewFromString(setting.Value)
		if err != nil || !rate.IsPositive() {
			return validation.ValidationErrors{{Field: "value", Message: "currency rate must be a positive number"}}
		}
	default:
		return validation.ValidationErrors{{Field: "key", Message: "unknown setting key"}}
	}
	return nil
}

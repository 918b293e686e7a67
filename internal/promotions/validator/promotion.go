package validator

import (
	"resort/pkg/logger"
	"resort/pkg/model"
	"resort/pkg/validation"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type PromotionValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewPromotionValidator(log *logger.Logger) *PromotionValidator {
	return &PromotionValidator{
		validate: validation.New(),
		logger:   log,
	}
}

func (v *PromotionValidator) Validate(promotion *model.Promotion) error {
	if err := validation.Struct(v.validate, promotion); err != nil {
		v.logger.Debug("Promotion validation failed", "code", promotion.Code, "error", err)
		return err
	}

	var errs validation.ValidationErrors
	if promotion.Type == model.PromotionTypePercentage && promotion.Value.GreaterThan(hundred) {
		errs = append(errs, validation.ValidationError{Field: "value", Message: "percentage value must be at most 100"})
	}
	if promotion.ValidFrom != nil && promotion.ValidUntil != nil && promotion.ValidUntil.Before(*promotion.ValidFrom) {
		errs = append(errs, validation.ValidationError{Field: "valid_until", Message: "valid_until must not be before valid_from"})
	}
	if promotion.MaxUses != nil && promotion.CurrentUses > *promotion.MaxUses {
		errs = append(errs, validation.ValidationError{Field: "current_uses", Message: "current_uses must not exceed max_uses"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

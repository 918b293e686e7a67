package validator

import (
	"resort/pkg/logger"
	"resort/pkg/model"
	"resort/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type CommissionValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewCommissionValidator(log *logger.Logger) *CommissionValidator {
	return &CommissionValidator{
		validate: validation.New(),
		logger:   log,
	}
}

func (v *CommissionValidator) Validate(commission *model.Commission) error {
	if err := validation.Struct(v.validate, commission); err != nil {
		v.logger.Debug("Commission validation failed", "agent_id", commission.AgentID, "error", err)
		return err
	}

	var errs validation.ValidationErrors
	switch commission.Type {
	case model.CommissionTypePercentage:
		if !commission.Rate.IsPositive() {
			errs = append(errs, validation.ValidationError{Field: "commission_rate", Message: "commission_rate must be positive for percentage commissions"})
		}
	case model.CommissionTypeFixed:
		if !commission.FixedAmount.IsPositive() {
			errs = append(errs, validation.ValidationError{Field: "fixed_amount", Message: "fixed_amount must be positive for fixed commissions"})
		}
	}
	if commission.ValidFrom != nil && commission.ValidUntil != nil && commission.ValidUntil.Before(*commission.ValidFrom) {
		errs = append(errs, validation.ValidationError{Field: "valid_until", Message: "valid_until must not be before valid_from"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

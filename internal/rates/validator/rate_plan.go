package validator

import (
	"resort/pkg/dates"
	"resort/pkg/logger"
	"resort/pkg/model"
	"resort/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type RatePlanValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewRatePlanValidator(log *logger.Logger) *RatePlanValidator {
	return &RatePlanValidator{
		validate: validation.New(),
		logger:   log,
	}
}

func (v *RatePlanValidator) Validate(plan *model.RatePlan) error {
	if err := validation.Struct(v.validate, plan); err != nil {
		v.logger.Debug("Rate plan validation failed", "error", err)
		return err
	}

	var errs validation.ValidationErrors
	restriction := plan.CountryRestriction
	if (restriction.Mode == model.CountryRestrictionInclude || restriction.Mode == model.CountryRestrictionExclude) && len(restriction.Countries) == 0 {
		errs = append(errs, validation.ValidationError{
			Field:   "country_restriction.countries",
			Message: "countries are required when a restriction mode is set",
		})
	}
	if plan.Deposit.Required && !plan.Deposit.Percentage.IsPositive() {
		errs = append(errs, validation.ValidationError{
			Field:   "deposit.percentage",
			Message: "percentage must be positive when a deposit is required",
		})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (v *RatePlanValidator) ValidateSeasonalRate(req *model.SeasonalRateRequest) error {
	if err := validation.Struct(v.validate, req); err != nil {
		v.logger.Debug("Seasonal rate validation failed", "error", err)
		return err
	}

	var errs validation.ValidationErrors
	start, _ := dates.Parse(req.StartDate)
	end, _ := dates.Parse(req.EndDate)
	if end.Before(start) {
		errs = append(errs, validation.ValidationError{Field: "end_date", Message: "end_date must not be before start_date"})
	}
	if req.MaxStay > 0 && req.MaxStay < req.MinStay {
		errs = append(errs, validation.ValidationError{Field: "max_stay", Message: "max_stay must be at least min_stay"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

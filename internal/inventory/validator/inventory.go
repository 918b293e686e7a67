package validator

import (
	"time"

	"resort/pkg/dates"
	"resort/pkg/logger"
	"resort/pkg/model"
	"resort/pkg/validation"

	"github.com/go-playground/validator/v10"
)

const maxRangeDays = 731

type InventoryValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewInventoryValidator(log *logger.Logger) *InventoryValidator {
	return &InventoryValidator{
		validate: validation.New(),
		logger:   log,
	}
}

// ValidateRange checks the admin payload and returns its inclusive bounds.
func (v *InventoryValidator) ValidateRange(req *model.InventoryRangeRequest) (time.Time, time.Time, error) {
	if err := validation.Struct(v.validate, req); err != nil {
		v.logger.Debug("Inventory range validation failed", "error", err)
		return time.Time{}, time.Time{}, err
	}

	from, _ := dates.Parse(req.StartDate)
	to, _ := dates.Parse(req.EndDate)

	var errs validation.ValidationErrors
	if to.Before(from) {
		errs = append(errs, validation.ValidationError{Field: "end_date", Message: "end_date must not be before start_date"})
	} else if dates.Nights(from, to) >= maxRangeDays {
		errs = append(errs, validation.ValidationError{Field: "end_date", Message: "range cannot exceed two years"})
	}
	if len(errs) > 0 {
		return time.Time{}, time.Time{}, errs
	}
	return from, to, nil
}

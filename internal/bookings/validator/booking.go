package validator

import (
	"resort/pkg/dates"
	"resort/pkg/logger"
	"resort/pkg/model"
	"resort/pkg/validation"

	"github.com/go-playground/validator/v10"
)

// MaxStayNights bounds a single booking.
const MaxStayNights = 90

type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	return &BookingValidator{
		validate: validation.New(),
		logger:   log,
	}
}

func (v *BookingValidator) Validate(req *model.BookingRequest) error {
	if err := validation.Struct(v.validate, req); err != nil {
		v.logger.Debug("Booking request validation failed", "rate_plan_id", req.RatePlanID, "error", err)
		return err
	}

	var errs validation.ValidationErrors
	checkIn, inErr := dates.Parse(req.CheckIn)
	checkOut, outErr := dates.Parse(req.CheckOut)
	if inErr != nil || outErr != nil {
		errs = append(errs, validation.ValidationError{Field: "check_in", Message: "dates must be in YYYY-MM-DD format"})
	} else if !checkOut.After(checkIn) {
		errs = append(errs, validation.ValidationError{Field: "check_out", Message: "check_out must be after check_in"})
	} else if nights := dates.Nights(checkIn, checkOut); nights > MaxStayNights {
		errs = append(errs, validation.ValidationError{Field: "check_out", Message: "stay must not exceed 90 nights"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (v *BookingValidator) ValidateCancel(req *model.CancelRequest) error {
	return validation.Struct(v.validate, req)
}

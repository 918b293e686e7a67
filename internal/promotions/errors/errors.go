package errors

import "errors"

var (
	ErrPromotionNotFound = errors.New("promotion not found")

	ErrInvalidID = errors.New("invalid promotion ID format")

	ErrCodeTaken = errors.New("promotion code already exists")

	ErrUsageCapReached = errors.New("promotion usage cap reached")
)

// Reasons a promotion does not apply to a stay. Check reports the first one
// that holds.
var (
	ErrInactive = errors.New("promotion is not active")

	ErrNotStarted = errors.New("promotion is not valid yet")

	ErrExpired = errors.New("promotion has expired")

	ErrExhausted = errors.New("promotion has no uses left")

	ErrBelowMinimumAmount = errors.New("booking amount is below the promotion minimum")

	ErrRatePlanNotEligible = errors.New("promotion does not apply to this rate plan")

	ErrRoomTypeNotEligible = errors.New("promotion does not apply to this room type")

	ErrResortNotEligible = errors.New("promotion does not apply to this resort")

	ErrBelowMinimumNights = errors.New("stay is shorter than the promotion minimum")

	ErrCustomerLimitReached = errors.New("guest has reached the promotion limit")
)

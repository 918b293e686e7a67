package errors

import "errors"

var (
	ErrRatePlanNotFound = errors.New("rate plan not found")

	ErrSeasonalRateNotFound = errors.New("seasonal rate not found")

	ErrInvalidID = errors.New("invalid rate plan ID format")

	ErrNoRateForNight = errors.New("no seasonal rate covers the night")
)

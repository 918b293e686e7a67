package errors

import "errors"

var (
	ErrCommissionNotFound = errors.New("commission not found")

	ErrInvalidID = errors.New("invalid commission ID format")
)

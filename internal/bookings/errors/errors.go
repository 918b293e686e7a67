package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	ErrReferenceTaken = errors.New("booking reference already exists")

	// ErrStatusChanged is returned by conditional status updates when the
	// booking is no longer in the expected status.
	ErrStatusChanged = errors.New("booking status changed concurrently")

	ErrInvalidStayRange = errors.New("check_out must be after check_in")
)

package errors

import "errors"

var (
	ErrNotFound = errors.New("inventory record not found")

	ErrInvalidID = errors.New("invalid inventory ID format")

	ErrInvalidRange = errors.New("end date must not be before start date")

	ErrCapacityExceeded = errors.New("not enough rooms for every night of the stay")

	ErrVersionConflict = errors.New("inventory record was modified concurrently")

	ErrLockHeld = errors.New("ledger lock is held by another writer")
)

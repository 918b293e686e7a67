package errors

import "errors"

var (
	ErrResortNotFound = errors.New("resort not found")

	ErrTransferNotFound = errors.New("transfer not found")

	ErrSettingNotFound = errors.New("setting not found")

	ErrInvalidID = errors.New("invalid ID format")
)

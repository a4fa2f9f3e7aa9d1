package contract

import "errors"

var (
	ErrNotFound           = errors.New("equipment not found")
	ErrConflict           = errors.New("equipment status changed underfoot")
	ErrBackendUnavailable = errors.New("inventory backend unavailable")
	ErrValidation         = errors.New("validation failed")
)

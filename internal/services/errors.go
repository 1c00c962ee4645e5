package services

import "errors"

// Error taxonomy shared by all services. Callers match with errors.Is;
// the wrapped message carries the detail.
var (
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInternal     = errors.New("internal error")
)

package models

import "errors"

// Sentinel errors shared by the store, service and handler layers. Callers
// wrap them with context and match with errors.Is.
var (
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrAggregation        = errors.New("aggregation failed")
)

package models

import "errors"

// Custom errors
var (
	// ErrNoResult means there is nothing to allocate: no eligible outcomes,
	// a non-positive budget, or nothing invested. Callers hide the result.
	ErrNoResult        = errors.New("no allocation result")
	ErrOutcomeNotFound = errors.New("outcome not found")
	ErrInvalidUnit     = errors.New("stake unit must be positive")
	// ErrOutOfRange means the budget or odds are too large to allocate exactly
	ErrOutOfRange      = errors.New("budget or odds out of range")
)

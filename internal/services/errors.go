package services

import (
	"errors"
	"fmt"
)

// Define common service errors
var (
	ErrNotFound          = errors.New("resource not found")
	ErrForbidden         = errors.New("forbidden")
	ErrConflict          = errors.New("conflict") // e.g., duplicate phone, state conflict
	ErrValidation        = errors.New("validation failed")
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrInvalidPin        = errors.New("invalid completion pin")

	ErrBelowMinimum        = errors.New("amount below minimum withdrawal")
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// Specific kinds wrap the general ones so callers may test either.
var (
	ErrInvalidRole          = fmt.Errorf("%w: invalid role for operation", ErrForbidden)
	ErrJobNotOpen           = fmt.Errorf("%w: job is not open", ErrConflict)
	ErrDuplicateApplication = fmt.Errorf("%w: already applied to job", ErrConflict)
	ErrApplicationNotFound  = fmt.Errorf("%w: application", ErrNotFound)
	ErrAlreadyRecorded      = fmt.Errorf("%w: completion already recorded", ErrConflict)
)

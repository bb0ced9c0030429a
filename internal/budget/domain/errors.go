package domain

import (
	"github.com/allisson/privmetrics/internal/errors"
)

var (
	// ErrInvalidEpsilon indicates a non-positive epsilon charge was requested.
	ErrInvalidEpsilon = errors.Wrap(errors.ErrInvalidInput, "epsilon must be positive")

	// ErrInvalidDelta indicates a negative delta charge was requested.
	ErrInvalidDelta = errors.Wrap(errors.ErrInvalidInput, "delta must not be negative")

	// ErrAccountNotFound indicates no budget account exists for the scope.
	ErrAccountNotFound = errors.Wrap(errors.ErrNotFound, "budget account not found")
)

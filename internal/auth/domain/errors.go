package domain

import (
	"github.com/allisson/privmetrics/internal/errors"
)

var (
	// ErrPrincipalRequired indicates the request carried no resolved principal.
	ErrPrincipalRequired = errors.Wrap(errors.ErrUnauthorized, "principal required")

	// ErrCapabilityRequired indicates the request lacks a capability the
	// operation requires.
	ErrCapabilityRequired = errors.Wrap(errors.ErrForbidden, "capability required")
)

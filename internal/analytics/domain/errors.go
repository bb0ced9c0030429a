package domain

import (
	"github.com/allisson/privmetrics/internal/errors"
)

var (
	// ErrScopeRequired indicates the request carried no organizational scope.
	ErrScopeRequired = errors.Wrap(errors.ErrInvalidInput, "scope is required")

	// ErrInvalidMetric indicates the metric kind is not supported.
	ErrInvalidMetric = errors.Wrap(errors.ErrInvalidInput, "invalid metric")

	// ErrPropertyRequired indicates a sum or avg query named no property.
	ErrPropertyRequired = errors.Wrap(errors.ErrInvalidInput, "property is required for this metric")

	// ErrInvalidClampBounds indicates the contribution bounds are not a
	// finite, non-empty interval.
	ErrInvalidClampBounds = errors.Wrap(errors.ErrInvalidInput, "invalid clamp bounds")

	// ErrFieldNotString indicates a property named in the field tokenization
	// map does not hold a string value.
	ErrFieldNotString = errors.Wrap(errors.ErrInvalidInput, "tokenized field must be a string")

	// ErrEventNotFound indicates the requested event does not exist.
	ErrEventNotFound = errors.Wrap(errors.ErrNotFound, "event not found")
)

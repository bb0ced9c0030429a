// Package validation provides custom validation rules for the application.
package validation

import (
	"math"
	"regexp"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/privmetrics/internal/errors"
	tokenizationDomain "github.com/allisson/privmetrics/internal/tokenization/domain"
)

// scopeRegex constrains organizational scopes to a safe identifier alphabet.
var scopeRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._\-]{0,254}$`)

// WrapValidationError wraps validation errors as domain ErrInvalidInput.
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// EpsilonRange validates a requested epsilon: positive, finite, and within
// the configured per-query maximum.
type EpsilonRange struct {
	Max float64
}

// Validate checks the epsilon value.
func (r EpsilonRange) Validate(value interface{}) error {
	epsilon, ok := value.(float64)
	if !ok {
		return validation.NewError("validation_epsilon_type", "epsilon must be a number")
	}
	if math.IsNaN(epsilon) || math.IsInf(epsilon, 0) || epsilon <= 0 {
		return validation.NewError("validation_epsilon_range", "epsilon must be a positive finite number")
	}
	if r.Max > 0 && epsilon > r.Max {
		return validation.NewError("validation_epsilon_max", "epsilon exceeds the per-query maximum")
	}
	return nil
}

// DeltaRange validates a requested delta: within [0, 1) and finite. Whether
// zero is acceptable depends on the mechanism and is checked there.
type DeltaRange struct{}

// Validate checks the delta value.
func (r DeltaRange) Validate(value interface{}) error {
	delta, ok := value.(float64)
	if !ok {
		return validation.NewError("validation_delta_type", "delta must be a number")
	}
	if math.IsNaN(delta) || delta < 0 || delta >= 1 {
		return validation.NewError("validation_delta_range", "delta must be in [0, 1)")
	}
	return nil
}

// FieldTypeRule validates a tokenization field type identifier.
type FieldTypeRule struct{}

// Validate checks the field type value.
func (r FieldTypeRule) Validate(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_field_type", "field type must be a string")
	}
	if !tokenizationDomain.FieldType(s).IsValid() {
		return validation.NewError(
			"validation_field_type",
			"field type must be one of: email, phone, ssn, numeric, alphanumeric",
		)
	}
	return nil
}

// ScopeFormat validates an organizational scope identifier.
type ScopeFormat struct{}

// Validate checks the scope value.
func (r ScopeFormat) Validate(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_scope", "scope must be a string")
	}
	if !scopeRegex.MatchString(s) {
		return validation.NewError(
			"validation_scope",
			"scope must start with an alphanumeric character and contain only alphanumerics, dots, dashes, and underscores",
		)
	}
	return nil
}

package noise

import (
	"math"

	apperrors "github.com/allisson/privmetrics/internal/errors"
)

// MechanismKind names a supported noise mechanism.
type MechanismKind string

const (
	MechanismLaplace  MechanismKind = "laplace"
	MechanismGaussian MechanismKind = "gaussian"
)

var (
	// ErrInvalidEpsilon indicates epsilon is not a positive finite number.
	ErrInvalidEpsilon = apperrors.Wrap(apperrors.ErrInvalidInput, "epsilon must be a positive finite number")

	// ErrInvalidSensitivity indicates sensitivity is not a positive finite number.
	ErrInvalidSensitivity = apperrors.Wrap(apperrors.ErrInvalidInput, "sensitivity must be a positive finite number")

	// ErrInvalidDelta indicates delta is outside the mechanism's admissible
	// range: exactly 0 for Laplace, strictly between 0 and 1 for Gaussian.
	ErrInvalidDelta = apperrors.Wrap(apperrors.ErrInvalidInput, "delta out of range for mechanism")

	// ErrUnknownMechanism indicates an unrecognized mechanism name.
	ErrUnknownMechanism = apperrors.Wrap(apperrors.ErrInvalidInput, "unknown noise mechanism")
)

// Mechanism adds calibrated noise to an aggregate value.
//
// Implementations validate all parameters before drawing any randomness so an
// invalid request never consumes entropy or leaks through a partial sample.
type Mechanism interface {
	// AddNoise returns value plus noise calibrated to (epsilon, delta) for
	// the given L1/L2 sensitivity.
	AddNoise(value, sensitivity, epsilon, delta float64) (float64, error)

	// Kind returns the mechanism's name.
	Kind() MechanismKind
}

// ForKind returns the mechanism registered under the given name.
func ForKind(kind MechanismKind) (Mechanism, error) {
	switch kind {
	case MechanismLaplace:
		return Laplace(), nil
	case MechanismGaussian:
		return Gaussian(), nil
	default:
		return nil, ErrUnknownMechanism
	}
}

func checkEpsilon(epsilon float64) error {
	if epsilon <= 0 || math.IsInf(epsilon, 0) || math.IsNaN(epsilon) {
		return ErrInvalidEpsilon
	}
	return nil
}

func checkSensitivity(sensitivity float64) error {
	if sensitivity <= 0 || math.IsInf(sensitivity, 0) || math.IsNaN(sensitivity) {
		return ErrInvalidSensitivity
	}
	return nil
}

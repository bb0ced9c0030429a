package noise

import (
	"math"
)

type laplace struct {
	src *source
}

// Laplace returns a Mechanism that adds Laplace noise with scale
// sensitivity/epsilon. It provides pure epsilon-differential privacy, so
// delta must be exactly 0.
func Laplace() Mechanism {
	return &laplace{src: newSource()}
}

func (l *laplace) Kind() MechanismKind {
	return MechanismLaplace
}

// AddNoise returns value plus a Laplace sample with scale sensitivity/epsilon.
func (l *laplace) AddNoise(value, sensitivity, epsilon, delta float64) (float64, error) {
	if err := checkSensitivity(sensitivity); err != nil {
		return 0, err
	}
	if err := checkEpsilon(epsilon); err != nil {
		return 0, err
	}
	if delta != 0 {
		return 0, ErrInvalidDelta
	}

	scale := sensitivity / epsilon

	sign, err := l.src.sign()
	if err != nil {
		return 0, err
	}
	u, err := l.src.uniform()
	if err != nil {
		return 0, err
	}

	// Inverse-CDF sampling: |X| ~ Exp(1/scale), symmetrized by a fair sign.
	return value + sign*scale*(-math.Log(u)), nil
}

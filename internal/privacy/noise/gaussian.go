package noise

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// sigmaAccuracy bounds the relative error of the binary search for the
// smallest sigma satisfying the (epsilon, delta) guarantee.
const sigmaAccuracy = 1e-3

type gaussian struct {
	src *source
}

// Gaussian returns a Mechanism that adds Gaussian noise calibrated with the
// analytic Gaussian mechanism. It provides (epsilon, delta)-differential
// privacy and therefore requires delta strictly between 0 and 1.
func Gaussian() Mechanism {
	return &gaussian{src: newSource()}
}

func (g *gaussian) Kind() MechanismKind {
	return MechanismGaussian
}

// AddNoise returns value plus a Gaussian sample with standard deviation
// SigmaForGaussian(sensitivity, epsilon, delta).
func (g *gaussian) AddNoise(value, sensitivity, epsilon, delta float64) (float64, error) {
	if err := checkSensitivity(sensitivity); err != nil {
		return 0, err
	}
	if err := checkEpsilon(epsilon); err != nil {
		return 0, err
	}
	if delta <= 0 || delta >= 1 || math.IsNaN(delta) {
		return 0, ErrInvalidDelta
	}

	sigma := SigmaForGaussian(sensitivity, epsilon, delta)

	sample, err := g.sampleUnit()
	if err != nil {
		return 0, err
	}
	return value + sigma*sample, nil
}

// sampleUnit draws a standard Gaussian sample via the Box-Muller transform.
func (g *gaussian) sampleUnit() (float64, error) {
	u1, err := g.src.uniform()
	if err != nil {
		return 0, err
	}
	u2, err := g.src.uniform()
	if err != nil {
		return 0, err
	}
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2), nil
}

// deltaForGaussian computes the smallest delta such that the Gaussian
// mechanism with standard deviation sigma is (epsilon, delta)-differentially
// private for the given L2 sensitivity. Based on Theorem 8 of Balle and
// Wang, "Improving the Gaussian Mechanism for Differential Privacy"
// (https://arxiv.org/abs/1805.06530v2):
//
//	delta(sigma, s, eps) = Phi(s/(2*sigma) - eps*sigma/s) - exp(eps)*Phi(-s/(2*sigma) - eps*sigma/s)
func deltaForGaussian(sigma, l2Sensitivity, epsilon float64) float64 {
	a := l2Sensitivity / (2 * sigma)
	b := epsilon * sigma / l2Sensitivity
	c := math.Exp(epsilon)

	if math.IsInf(c, +1) || math.IsInf(b, +1) {
		// delta tends to 0 as epsilon grows or sensitivity vanishes.
		return 0
	}

	return distuv.UnitNormal.CDF(a-b) - c*distuv.UnitNormal.CDF(-a-b)
}

// SigmaForGaussian calculates the standard deviation of Gaussian noise needed
// for (epsilon, delta)-differential privacy at the given L2 sensitivity.
//
// deltaForGaussian is decreasing in sigma, so the smallest admissible sigma
// is found by doubling an upper bound until it satisfies the target delta and
// then binary searching down to sigmaAccuracy relative error. The returned
// value is always an upper bound of the tight sigma, never below it.
func SigmaForGaussian(l2Sensitivity, epsilon, delta float64) float64 {
	if delta >= 1 {
		return 0
	}

	upperBound := l2Sensitivity
	var lowerBound float64

	for deltaForGaussian(upperBound, l2Sensitivity, epsilon) > delta {
		lowerBound = upperBound
		upperBound = upperBound * 2
	}

	for upperBound-lowerBound > sigmaAccuracy*lowerBound {
		middle := lowerBound*0.5 + upperBound*0.5
		if deltaForGaussian(middle, l2Sensitivity, epsilon) > delta {
			lowerBound = middle
		} else {
			upperBound = middle
		}
	}

	return upperBound
}

package noise

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"

	apperrors "github.com/allisson/privmetrics/internal/errors"
)

const sampleCount = 50000

func sampleNoise(t *testing.T, m Mechanism, sensitivity, epsilon, delta float64) []float64 {
	t.Helper()

	samples := make([]float64, sampleCount)
	for i := range samples {
		noisy, err := m.AddNoise(0, sensitivity, epsilon, delta)
		require.NoError(t, err)
		samples[i] = noisy
	}
	return samples
}

func TestForKind(t *testing.T) {
	m, err := ForKind(MechanismLaplace)
	require.NoError(t, err)
	assert.Equal(t, MechanismLaplace, m.Kind())

	m, err = ForKind(MechanismGaussian)
	require.NoError(t, err)
	assert.Equal(t, MechanismGaussian, m.Kind())

	_, err = ForKind("exponential")
	assert.ErrorIs(t, err, ErrUnknownMechanism)
}

func TestLaplace_ParameterValidation(t *testing.T) {
	m := Laplace()

	cases := []struct {
		name        string
		sensitivity float64
		epsilon     float64
		delta       float64
		wantErr     error
	}{
		{"ZeroEpsilon", 1, 0, 0, ErrInvalidEpsilon},
		{"NegativeEpsilon", 1, -1, 0, ErrInvalidEpsilon},
		{"InfiniteEpsilon", 1, math.Inf(1), 0, ErrInvalidEpsilon},
		{"NaNEpsilon", 1, math.NaN(), 0, ErrInvalidEpsilon},
		{"ZeroSensitivity", 0, 1, 0, ErrInvalidSensitivity},
		{"NegativeSensitivity", -1, 1, 0, ErrInvalidSensitivity},
		{"NonZeroDelta", 1, 1, 1e-5, ErrInvalidDelta},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := m.AddNoise(0, tc.sensitivity, tc.epsilon, tc.delta)
			assert.ErrorIs(t, err, tc.wantErr)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		})
	}
}

func TestGaussian_ParameterValidation(t *testing.T) {
	m := Gaussian()

	cases := []struct {
		name        string
		sensitivity float64
		epsilon     float64
		delta       float64
		wantErr     error
	}{
		{"ZeroEpsilon", 1, 0, 1e-5, ErrInvalidEpsilon},
		{"ZeroSensitivity", 0, 1, 1e-5, ErrInvalidSensitivity},
		{"ZeroDelta", 1, 1, 0, ErrInvalidDelta},
		{"NegativeDelta", 1, 1, -1e-5, ErrInvalidDelta},
		{"DeltaOfOne", 1, 1, 1, ErrInvalidDelta},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := m.AddNoise(0, tc.sensitivity, tc.epsilon, tc.delta)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestLaplace_NoiseDistribution(t *testing.T) {
	m := Laplace()
	samples := sampleNoise(t, m, 1.0, 1.0, 0)

	// Laplace with scale b has mean 0 and variance 2b². At scale 1 over 50k
	// samples the tolerances below sit many standard errors out.
	mean := stat.Mean(samples, nil)
	variance := stat.Variance(samples, nil)

	assert.InDelta(t, 0.0, mean, 0.05)
	assert.InDelta(t, 2.0, variance, 0.3)
}

func TestLaplace_ScaleTracksEpsilon(t *testing.T) {
	m := Laplace()

	tight := sampleNoise(t, m, 1.0, 4.0, 0) // scale 0.25
	loose := sampleNoise(t, m, 1.0, 0.5, 0) // scale 2

	assert.Less(t, stat.Variance(tight, nil), stat.Variance(loose, nil))
	assert.InDelta(t, 2*0.25*0.25, stat.Variance(tight, nil), 0.05)
	assert.InDelta(t, 2*2.0*2.0, stat.Variance(loose, nil), 1.2)
}

func TestGaussian_NoiseDistribution(t *testing.T) {
	m := Gaussian()

	sigma := SigmaForGaussian(1.0, 1.0, 1e-5)
	samples := sampleNoise(t, m, 1.0, 1.0, 1e-5)

	mean := stat.Mean(samples, nil)
	variance := stat.Variance(samples, nil)

	assert.InDelta(t, 0.0, mean, sigma*0.05)
	assert.InDelta(t, sigma*sigma, variance, sigma*sigma*0.1)
}

func TestSigmaForGaussian(t *testing.T) {
	sigma := SigmaForGaussian(1.0, 1.0, 1e-5)

	// The calibrated sigma must actually satisfy the delta target, and must
	// be tight up to the search accuracy.
	assert.LessOrEqual(t, deltaForGaussian(sigma, 1.0, 1.0), 1e-5)
	assert.Greater(t, deltaForGaussian(sigma*(1-2*sigmaAccuracy), 1.0, 1.0), 1e-5)

	// More privacy (smaller epsilon or delta) needs more noise.
	assert.Greater(t, SigmaForGaussian(1.0, 0.5, 1e-5), sigma)
	assert.Greater(t, SigmaForGaussian(1.0, 1.0, 1e-7), sigma)

	// Noise scales with sensitivity.
	assert.InDelta(t, 2*sigma, SigmaForGaussian(2.0, 1.0, 1e-5), 2*sigma*0.01)
}

func TestAddNoise_CentersOnValue(t *testing.T) {
	laplace := Laplace()
	gaussian := Gaussian()

	const value = 1234.5

	laplaceSum := 0.0
	gaussianSum := 0.0
	for i := 0; i < 2000; i++ {
		lv, err := laplace.AddNoise(value, 1.0, 1.0, 0)
		require.NoError(t, err)
		laplaceSum += lv

		gv, err := gaussian.AddNoise(value, 1.0, 1.0, 1e-5)
		require.NoError(t, err)
		gaussianSum += gv
	}

	assert.InDelta(t, value, laplaceSum/2000, 1.0)
	assert.InDelta(t, value, gaussianSum/2000, 1.0)
}

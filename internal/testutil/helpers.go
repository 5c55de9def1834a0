// Package testutil provides reusable test helpers for filter analysis and design tests.
package testutil

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Default tolerances for various test scenarios.
const (
	DefaultTolerance  = 1e-10
	RelativeTolerance = 1e-9
	DBTolerance       = 0.01
)

const halfDivisor = 2

// Hamming window coefficients used by LowPass.
const (
	hammingA0 = 0.54
	hammingA1 = 0.46
)

// AssertSymmetric verifies that a slice is symmetric (s[i] == s[n-1-i]).
func AssertSymmetric(t *testing.T, s []float64, tolerance float64) bool {
	t.Helper()
	n := len(s)
	for i := 0; i < n/halfDivisor; i++ {
		j := n - 1 - i
		if !assert.InDelta(t, s[i], s[j], tolerance,
			"slice not symmetric at i=%d: s[%d]=%g != s[%d]=%g", i, i, s[i], j, s[j]) {
			return false
		}
	}
	return true
}

// AssertNoNaNOrInf verifies that no elements in the slice are NaN or Inf.
func AssertNoNaNOrInf(t *testing.T, s []float64) bool {
	t.Helper()
	for i, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return assert.Fail(t, "non-finite value", "s[%d] = %v", i, v)
		}
	}
	return true
}

// AssertDCGain verifies that the sum of coefficients equals the expected DC gain
// within a relative tolerance.
func AssertDCGain(t *testing.T, taps []float64, expected, relTolerance float64) bool {
	t.Helper()
	var sum float64
	for _, c := range taps {
		sum += c
	}
	return AssertRelativeError(t, expected, sum, relTolerance)
}

// AssertPeakAtMost verifies that max|s[i]| ≤ limit + tolerance.
func AssertPeakAtMost(t *testing.T, s []float64, limit, tolerance float64) bool {
	t.Helper()
	peak := Peak(s)
	return assert.LessOrEqual(t, peak, limit+tolerance, "peak %g exceeds %g", peak, limit)
}

// AssertNonDecreasing verifies that s[i] ≥ s[i-1] for all i.
func AssertNonDecreasing(t *testing.T, s []float64) bool {
	t.Helper()
	for i := 1; i < len(s); i++ {
		if s[i] < s[i-1] {
			return assert.Fail(t, "not non-decreasing", "s[%d]=%g < s[%d]=%g", i, s[i], i-1, s[i-1])
		}
	}
	return true
}

// AssertCenterIsMax verifies that the center element holds the largest value.
func AssertCenterIsMax(t *testing.T, s []float64) bool {
	t.Helper()
	if len(s) == 0 {
		return assert.Fail(t, "empty slice")
	}
	center := len(s) / halfDivisor
	for i, v := range s {
		if v > s[center] {
			return assert.Fail(t, "center is not max", "s[%d]=%g > center s[%d]=%g", i, v, center, s[center])
		}
	}
	return true
}

// AssertRelativeError verifies |actual-expected|/|expected| ≤ tolerance.
// For expected == 0 the tolerance is absolute.
func AssertRelativeError(t *testing.T, expected, actual, tolerance float64) bool {
	t.Helper()
	if expected == 0 {
		return assert.InDelta(t, expected, actual, tolerance)
	}
	relError := math.Abs(actual-expected) / math.Abs(expected)
	return assert.LessOrEqual(t, relError, tolerance,
		"relative error %e exceeds tolerance %e (expected=%g, actual=%g)",
		relError, tolerance, expected, actual)
}

// AssertOddLength verifies that a slice has an odd length.
func AssertOddLength(t *testing.T, s []float64) bool {
	t.Helper()
	return assert.Equal(t, 1, len(s)%halfDivisor, "slice length %d is not odd", len(s))
}

// AssertInRange verifies that a value is within [min, max].
func AssertInRange(t *testing.T, value, minVal, maxVal float64) bool {
	t.Helper()
	if value < minVal || value > maxVal {
		return assert.Fail(t, "value out of range",
			"value %g is outside range [%g, %g]", value, minVal, maxVal)
	}
	return true
}

// Peak returns max|s[i]|, 0 for an empty slice.
func Peak(s []float64) float64 {
	var peak float64
	for _, v := range s {
		peak = math.Max(peak, math.Abs(v))
	}
	return peak
}

// LowPass builds a Hamming-windowed sinc low-pass filter with numTaps taps and
// cutoff in cycles/sample (0 < cutoff < 0.5). The center tap equals 2·cutoff.
func LowPass(numTaps int, cutoff float64) []float64 {
	taps := make([]float64, numTaps)
	center := float64(numTaps-1) / halfDivisor
	for n := range numTaps {
		x := float64(n) - center
		var sinc float64
		if x == 0 {
			sinc = 2 * cutoff
		} else {
			sinc = math.Sin(2*math.Pi*cutoff*x) / (math.Pi * x)
		}
		w := 1.0
		if numTaps > 1 {
			w = hammingA0 - hammingA1*math.Cos(2*math.Pi*float64(n)/float64(numTaps-1))
		}
		taps[n] = sinc * w
	}
	return taps
}

// RandomTaps returns n reproducible pseudo-random taps in [-amplitude, amplitude].
func RandomTaps(seed uint64, n int, amplitude float64) []float64 {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	taps := make([]float64, n)
	for i := range taps {
		taps[i] = amplitude * (2*rng.Float64() - 1)
	}
	return taps
}

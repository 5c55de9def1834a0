package filter

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"sort"

	"github.com/tphakala/go-fir-optimizer/internal/mathutil"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
)

// Curve is a magnitude response sampled on normalized frequency,
// where 0 is DC and 1 is Nyquist.
type Curve struct {
	// Frequencies are non-decreasing, starting at exactly 0 and ending at exactly 1.
	Frequencies []float64

	// Magnitude holds the non-negative linear magnitude at each frequency.
	Magnitude []float64
}

// Len returns the number of points in the curve.
func (c Curve) Len() int {
	return len(c.Frequencies)
}

// Validate checks the curve invariants.
func (c Curve) Validate() error {
	n := len(c.Frequencies)
	if n != len(c.Magnitude) {
		return fmt.Errorf("curve length mismatch: %d frequencies, %d magnitudes", n, len(c.Magnitude))
	}
	if n < 2 {
		return fmt.Errorf("curve too short: %d points (minimum 2)", n)
	}
	if c.Frequencies[0] != 0 || c.Frequencies[n-1] != 1 {
		return fmt.Errorf("curve must span [0, 1], got [%g, %g]", c.Frequencies[0], c.Frequencies[n-1])
	}
	for i := range n {
		if i > 0 && c.Frequencies[i] < c.Frequencies[i-1] {
			return fmt.Errorf("curve frequencies decrease at index %d", i)
		}
		m := c.Magnitude[i]
		if m < 0 || math.IsNaN(m) || math.IsInf(m, 0) {
			return fmt.Errorf("invalid magnitude %v at index %d", m, i)
		}
	}
	return nil
}

// Normalized returns a copy of the curve scaled so its largest magnitude is 1.
// An all-zero curve is returned unchanged.
func (c Curve) Normalized() Curve {
	out := Curve{
		Frequencies: append([]float64(nil), c.Frequencies...),
		Magnitude:   append([]float64(nil), c.Magnitude...),
	}
	if len(out.Magnitude) == 0 {
		return out
	}
	if peak := floats.Max(out.Magnitude); peak > 0 {
		floats.Scale(1/peak, out.Magnitude)
	}
	return out
}

// At returns the magnitude at normalized frequency f by linear interpolation
// between neighbouring points. Frequencies outside [0, 1] are clamped.
func (c Curve) At(f float64) float64 {
	n := len(c.Frequencies)
	if n == 0 {
		return 0
	}
	if f <= c.Frequencies[0] {
		return c.Magnitude[0]
	}
	if f >= c.Frequencies[n-1] {
		return c.Magnitude[n-1]
	}

	hi := sort.SearchFloat64s(c.Frequencies, f)
	if c.Frequencies[hi] == f {
		return c.Magnitude[hi]
	}
	lo := hi - 1
	span := c.Frequencies[hi] - c.Frequencies[lo]
	if span == 0 {
		return c.Magnitude[hi]
	}
	t := (f - c.Frequencies[lo]) / span
	return c.Magnitude[lo] + t*(c.Magnitude[hi]-c.Magnitude[lo])
}

// Analyze computes the one-sided magnitude spectrum of taps.
//
// The taps are zero-padded (or truncated) to gridSize samples and transformed
// with a real FFT. The result has gridSize/2+1 points spaced uniformly over
// normalized frequency [0, 1].
//
// Parameters:
//
//	taps: Filter coefficients
//	gridSize: FFT size, even and ≥ 2; a power of two ≥ 4× the tap count is
//	          recommended (see AnalysisGridSize, DefaultResponseGridSize).
//	          Taps beyond gridSize are dropped; callers size the grid.
//
// Returns:
//
//	Magnitude curve, or an error for empty/non-finite taps or a bad grid size
func Analyze(taps []float64, gridSize int) (Curve, error) {
	if err := checkFinite(taps); err != nil {
		return Curve{}, err
	}
	if gridSize < halfDivisor || gridSize%halfDivisor != 0 {
		return Curve{}, fmt.Errorf("invalid analysis grid size %d (must be even and ≥ 2)", gridSize)
	}

	padded := make([]float64, gridSize)
	copy(padded, taps)

	fft := fourier.NewFFT(gridSize)
	coeffs := fft.Coefficients(nil, padded)

	half := gridSize / halfDivisor
	curve := Curve{
		Frequencies: make([]float64, half+1),
		Magnitude:   make([]float64, half+1),
	}
	for k, c := range coeffs {
		curve.Frequencies[k] = float64(k) / float64(half)
		curve.Magnitude[k] = cmplx.Abs(c)
	}
	curve.Frequencies[0] = 0
	curve.Frequencies[half] = 1

	return curve, nil
}

// MagnitudeDB converts linear magnitude to decibels, flooring at -200 dB.
func MagnitudeDB(magnitude float64) float64 {
	return mathutil.AmplitudeToDB(magnitude)
}

// ShapeDeviationDB compares two curves sampled on the same grid after
// normalizing each to a peak of 1. It returns the largest absolute difference
// in dB over the bins where reference lies above floorDB (relative to its peak).
func ShapeDeviationDB(reference, candidate Curve, floorDB float64) (float64, error) {
	if reference.Len() != candidate.Len() {
		return 0, errors.New("shape comparison needs curves on the same grid")
	}
	ref := reference.Normalized()
	cand := candidate.Normalized()

	var worst float64
	for i, m := range ref.Magnitude {
		refDB := MagnitudeDB(m)
		if refDB < floorDB {
			continue
		}
		worst = math.Max(worst, math.Abs(MagnitudeDB(cand.Magnitude[i])-refDB))
	}
	return worst, nil
}

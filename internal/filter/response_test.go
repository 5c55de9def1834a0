package filter

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/mjibson/go-dsp/fft"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/go-fir-optimizer/internal/testutil"
)

func TestAnalyze_Impulse(t *testing.T) {
	curve, err := Analyze([]float64{1.0}, 64)
	require.NoError(t, err)

	require.Equal(t, 33, curve.Len())
	assert.Equal(t, 0.0, curve.Frequencies[0])
	assert.Equal(t, 1.0, curve.Frequencies[32])
	for _, m := range curve.Magnitude {
		assert.InDelta(t, 1.0, m, testutil.DefaultTolerance)
	}
	require.NoError(t, curve.Validate())
}

func TestAnalyze_DCAndNyquist(t *testing.T) {
	taps := []float64{0.25, 0.5, 0.25}
	curve, err := Analyze(taps, 256)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, curve.Magnitude[0], testutil.DefaultTolerance, "DC = sum of taps")
	assert.InDelta(t, 0.0, curve.Magnitude[128], testutil.DefaultTolerance, "[1 2 1]/4 has a Nyquist zero")
	testutil.AssertNonDecreasing(t, curve.Frequencies)
}

// TestAnalyze_MatchesReferenceFFT cross-checks against an independent FFT implementation.
func TestAnalyze_MatchesReferenceFFT(t *testing.T) {
	const gridSize = 512
	taps := testutil.RandomTaps(7, 45, 0.8)

	curve, err := Analyze(taps, gridSize)
	require.NoError(t, err)

	padded := make([]float64, gridSize)
	copy(padded, taps)
	ref := fft.FFTReal(padded)

	for k := range curve.Len() {
		assert.InDelta(t, cmplx.Abs(ref[k]), curve.Magnitude[k], 1e-9, "bin %d", k)
	}
}

// TestAnalyze_Deterministic checks that repeated analysis is bit-identical.
func TestAnalyze_Deterministic(t *testing.T) {
	taps := testutil.LowPass(63, 0.2)

	a, err := Analyze(taps, AnalysisGridSize)
	require.NoError(t, err)
	b, err := Analyze(taps, AnalysisGridSize)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestAnalyze_Truncates(t *testing.T) {
	curve, err := Analyze([]float64{1, 0, 0, 0, 5}, 4)
	require.NoError(t, err)
	for _, m := range curve.Magnitude {
		assert.InDelta(t, 1.0, m, testutil.DefaultTolerance)
	}
}

func TestAnalyze_Errors(t *testing.T) {
	_, err := Analyze(nil, 64)
	require.ErrorIs(t, err, ErrDegenerateInput)

	_, err = Analyze([]float64{1, math.Inf(1)}, 64)
	var nf *NonFiniteError
	require.ErrorAs(t, err, &nf)

	for _, size := range []int{0, 1, 63, -2} {
		_, err = Analyze([]float64{1}, size)
		assert.Error(t, err, "size %d", size)
	}
}

func TestCurve_Validate(t *testing.T) {
	tests := []struct {
		name    string
		curve   Curve
		wantErr bool
	}{
		{"valid", Curve{[]float64{0, 0.5, 1}, []float64{1, 0.5, 0}}, false},
		{"duplicates_allowed", Curve{[]float64{0, 0.5, 0.5, 1}, []float64{1, 1, 0, 0}}, false},
		{"length_mismatch", Curve{[]float64{0, 1}, []float64{1}}, true},
		{"too_short", Curve{[]float64{0}, []float64{1}}, true},
		{"not_anchored_low", Curve{[]float64{0.1, 1}, []float64{1, 1}}, true},
		{"not_anchored_high", Curve{[]float64{0, 0.9}, []float64{1, 1}}, true},
		{"decreasing", Curve{[]float64{0, 0.6, 0.4, 1}, []float64{1, 1, 1, 1}}, true},
		{"negative_magnitude", Curve{[]float64{0, 1}, []float64{1, -0.1}}, true},
		{"nan_magnitude", Curve{[]float64{0, 1}, []float64{math.NaN(), 1}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.curve.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCurve_Normalized(t *testing.T) {
	c := Curve{Frequencies: []float64{0, 0.5, 1}, Magnitude: []float64{2, 4, 1}}
	n := c.Normalized()

	assert.Equal(t, []float64{0.5, 1, 0.25}, n.Magnitude)
	assert.Equal(t, []float64{2, 4, 1}, c.Magnitude, "input must not change")

	zero := Curve{Frequencies: []float64{0, 1}, Magnitude: []float64{0, 0}}
	assert.Equal(t, []float64{0, 0}, zero.Normalized().Magnitude)
}

func TestCurve_At(t *testing.T) {
	c := Curve{
		Frequencies: []float64{0, 0.5, 0.5, 1},
		Magnitude:   []float64{1, 0.5, 0.25, 0},
	}

	assert.InDelta(t, 1.0, c.At(-0.1), testutil.DefaultTolerance)
	assert.InDelta(t, 0.75, c.At(0.25), testutil.DefaultTolerance)
	assert.InDelta(t, 0.125, c.At(0.75), testutil.DefaultTolerance)
	assert.InDelta(t, 0.0, c.At(1.5), testutil.DefaultTolerance)
	assert.Zero(t, Curve{}.At(0.5))
}

func TestMagnitudeDB(t *testing.T) {
	assert.InDelta(t, 0.0, MagnitudeDB(1), testutil.DBTolerance)
	assert.InDelta(t, -20.0, MagnitudeDB(0.1), testutil.DBTolerance)
	assert.InDelta(t, -200.0, MagnitudeDB(0), testutil.DBTolerance)
}

func TestShapeDeviationDB(t *testing.T) {
	taps := testutil.LowPass(31, 0.25)
	a, err := Analyze(taps, 1024)
	require.NoError(t, err)

	scaled := append([]float64(nil), taps...)
	for i := range scaled {
		scaled[i] *= 0.3
	}
	b, err := Analyze(scaled, 1024)
	require.NoError(t, err)

	dev, err := ShapeDeviationDB(a, b, DefaultDeviationFloorDB)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, dev, 1e-9, "gain changes do not change shape")

	short, err := Analyze(taps, 64)
	require.NoError(t, err)
	_, err = ShapeDeviationDB(a, short, DefaultDeviationFloorDB)
	assert.Error(t, err)
}

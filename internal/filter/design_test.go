package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/go-fir-optimizer/internal/testutil"
)

// brickWall returns a desired low-pass response: 1 up to pass, 0 from stop.
func brickWall(pass, stop float64) Curve {
	return Curve{
		Frequencies: []float64{0, pass, stop, 1},
		Magnitude:   []float64{1, 1, 0, 0},
	}
}

func TestDesignParams_Validate(t *testing.T) {
	tests := []struct {
		name    string
		params  DesignParams
		wantErr bool
	}{
		{"valid", DesignParams{NumTaps: 61}, false},
		{"valid_explicit_grid", DesignParams{NumTaps: 61, SpectralPoints: 1024}, false},
		{"valid_kaiser", DesignParams{NumTaps: 61, Window: WindowKaiser, Beta: 8}, false},
		{"too_short", DesignParams{NumTaps: 1}, true},
		{"even", DesignParams{NumTaps: 62}, true},
		{"negative_grid", DesignParams{NumTaps: 61, SpectralPoints: -1}, true},
		{"single_point_grid", DesignParams{NumTaps: 61, SpectralPoints: 1}, true},
		{"grid_too_coarse", DesignParams{NumTaps: 61, SpectralPoints: 16}, true},
		{"negative_beta", DesignParams{NumTaps: 61, Window: WindowKaiser, Beta: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDesignParams_DefaultSpectralPoints(t *testing.T) {
	p := DesignParams{NumTaps: 61}
	assert.Equal(t, 65, p.spectralPoints())

	p = DesignParams{NumTaps: 3}
	assert.Equal(t, 5, p.spectralPoints())

	p = DesignParams{NumTaps: 61, SpectralPoints: 1024}
	assert.Equal(t, 1024, p.spectralPoints())
}

func TestDesignFrequencySampling_LengthAndSymmetry(t *testing.T) {
	desired := brickWall(0.4, 0.5)

	for _, numTaps := range []int{3, 5, 31, 61, 101, 255} {
		for _, w := range []WindowType{WindowHamming, WindowKaiser, WindowRectangular} {
			taps, err := DesignFrequencySampling(desired, DesignParams{NumTaps: numTaps, Window: w, Beta: 6})
			require.NoError(t, err, "taps=%d window=%v", numTaps, w)

			assert.Len(t, taps, numTaps)
			testutil.AssertOddLength(t, taps)
			testutil.AssertSymmetric(t, taps, 1e-12)
			testutil.AssertNoNaNOrInf(t, taps)
		}
	}
}

// TestDesignFrequencySampling_FlatIsImpulse checks that a flat target yields
// a centered unit impulse.
func TestDesignFrequencySampling_FlatIsImpulse(t *testing.T) {
	flat := Curve{Frequencies: []float64{0, 1}, Magnitude: []float64{1, 1}}

	taps, err := DesignFrequencySampling(flat, DesignParams{NumTaps: 21})
	require.NoError(t, err)

	for n, v := range taps {
		want := 0.0
		if n == 10 {
			want = 1.0
		}
		assert.InDelta(t, want, v, 1e-12, "tap %d", n)
	}
}

func TestDesignFrequencySampling_AllZero(t *testing.T) {
	zero := Curve{Frequencies: []float64{0, 0.5, 1}, Magnitude: []float64{0, 0, 0}}

	taps, err := DesignFrequencySampling(zero, DesignParams{NumTaps: 15})
	require.NoError(t, err)
	assert.Len(t, taps, 15)
	for _, v := range taps {
		assert.Zero(t, v)
	}
}

func TestDesignFrequencySampling_LowPassResponse(t *testing.T) {
	taps, err := DesignFrequencySampling(brickWall(0.4, 0.5), DesignParams{NumTaps: 101, SpectralPoints: DefaultGridPoints})
	require.NoError(t, err)

	resp, err := Analyze(taps, 4096)
	require.NoError(t, err)
	half := resp.Len() - 1

	for _, f := range []float64{0, 0.1, 0.2, 0.3} {
		m := resp.Magnitude[int(f*float64(half))]
		assert.InDelta(t, 1.0, m, 0.01, "passband at f=%v", f)
	}
	for _, f := range []float64{0.6, 0.7, 0.9, 1.0} {
		m := resp.Magnitude[int(f*float64(half))]
		assert.Less(t, MagnitudeDB(m), -40.0, "stopband at f=%v", f)
	}
}

func TestDesignFrequencySampling_ReproducesShape(t *testing.T) {
	orig := testutil.LowPass(31, 0.2)
	curve, err := Analyze(orig, AnalysisGridSize)
	require.NoError(t, err)

	target, err := Resample(curve.Normalized(), DefaultGridPoints)
	require.NoError(t, err)

	taps, err := DesignFrequencySampling(target, DesignParams{NumTaps: 61})
	require.NoError(t, err)

	got, err := Analyze(NormalizeDC(taps, 1), AnalysisGridSize)
	require.NoError(t, err)
	half := float64(got.Len() - 1)

	ref := curve.Normalized()
	norm := got.Normalized()
	for _, f := range []float64{0, 0.1, 0.2} {
		k := int(f * half)
		assert.InDelta(t, MagnitudeDB(ref.Magnitude[k]), MagnitudeDB(norm.Magnitude[k]), 0.5, "passband at f=%v", f)
	}
	for _, f := range []float64{0.8, 0.9, 1.0} {
		k := int(f * half)
		assert.Less(t, MagnitudeDB(norm.Magnitude[k]), -30.0, "stopband at f=%v", f)
	}
}

func TestDesignFrequencySampling_Errors(t *testing.T) {
	_, err := DesignFrequencySampling(brickWall(0.4, 0.5), DesignParams{NumTaps: 4})
	assert.Error(t, err)

	bad := Curve{Frequencies: []float64{0, 0.5}, Magnitude: []float64{1, 1}}
	_, err = DesignFrequencySampling(bad, DesignParams{NumTaps: 5})
	assert.Error(t, err)
}

func BenchmarkDesignFrequencySampling(b *testing.B) {
	desired := brickWall(0.4, 0.5)
	params := DesignParams{NumTaps: 1023}
	for b.Loop() {
		_, _ = DesignFrequencySampling(desired, params)
	}
}

package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/go-fir-optimizer/internal/testutil"
)

const windowTolerance = 1e-10

func TestWindow_Symmetry(t *testing.T) {
	tests := []struct {
		name   string
		kind   WindowType
		length int
		beta   float64
	}{
		{"hamming_11", WindowHamming, 11, 0},
		{"hamming_61", WindowHamming, 61, 0},
		{"kaiser_21_beta_8", WindowKaiser, 21, 8.6},
		{"kaiser_51_beta_5", WindowKaiser, 51, 5},
		{"rectangular_7", WindowRectangular, 7, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := Window(tt.kind, tt.length, tt.beta)
			require.NoError(t, err)
			assert.Len(t, w, tt.length)
			testutil.AssertSymmetric(t, w, windowTolerance)
			testutil.AssertCenterIsMax(t, w)
			assert.InDelta(t, 1.0, w[tt.length/2], windowTolerance, "odd window peaks at 1")
		})
	}
}

func TestHammingWindow_Edges(t *testing.T) {
	w := HammingWindow(31)
	assert.InDelta(t, 0.08, w[0], 0.01)
	assert.InDelta(t, 0.08, w[30], 0.01)

	assert.Equal(t, []float64{1}, HammingWindow(1))
	assert.Empty(t, HammingWindow(0))
}

func TestKaiserWindow_EdgeCases(t *testing.T) {
	assert.Empty(t, KaiserWindow(0, 5))
	assert.Empty(t, KaiserWindow(-1, 5))
	assert.Equal(t, []float64{1}, KaiserWindow(1, 5))

	// β = 0 degenerates to a rectangular window
	for _, v := range KaiserWindow(9, 0) {
		assert.InDelta(t, 1.0, v, windowTolerance)
	}
}

func TestWindow_InvalidKaiserBeta(t *testing.T) {
	_, err := Window(WindowKaiser, 11, -1)
	assert.Error(t, err)

	_, err = Window(WindowType(42), 11, 0)
	assert.Error(t, err)
}

func TestParseWindowType(t *testing.T) {
	tests := []struct {
		in      string
		want    WindowType
		wantErr bool
	}{
		{"hamming", WindowHamming, false},
		{" Kaiser ", WindowKaiser, false},
		{"RECTANGULAR", WindowRectangular, false},
		{"boxcar", WindowRectangular, false},
		{"blackman", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseWindowType(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got.String(), windowNames[got])
		})
	}
}

func TestWindowType_TextRoundTrip(t *testing.T) {
	for _, w := range []WindowType{WindowHamming, WindowKaiser, WindowRectangular} {
		text, err := w.MarshalText()
		require.NoError(t, err)

		var back WindowType
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, w, back)
	}
	assert.Equal(t, "WindowType(9)", WindowType(9).String())
}

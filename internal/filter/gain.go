package filter

import (
	"math"

	"github.com/tphakala/simd/f64"
)

// NormalizeDC returns a copy of taps scaled so that its sum equals referenceSum.
//
// When |Σ taps| ≤ DCFloor (for example a high-pass with no DC response) the
// copy is returned unscaled.
func NormalizeDC(taps []float64, referenceSum float64) []float64 {
	out := append([]float64(nil), taps...)
	if len(out) == 0 {
		return out
	}

	sum := f64.Sum(out)
	if math.Abs(sum) > DCFloor {
		f64.Scale(out, out, referenceSum/sum)
	}
	return out
}

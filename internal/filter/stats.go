// Package filter implements FIR analysis and frequency-sampling resynthesis:
// magnitude response, grid resampling, windowed design, DC normalization and
// peak limiting.
package filter

import (
	"errors"
	"fmt"
	"math"

	"github.com/tphakala/simd/f64"
	"gonum.org/v1/gonum/floats"
)

// ErrDegenerateInput is returned when a tap sequence is empty.
var ErrDegenerateInput = errors.New("degenerate input: empty tap sequence")

// Stats summarizes a tap sequence.
type Stats struct {
	Taps   int     // number of coefficients
	Peak   float64 // max |h[n]|
	Sum    float64 // Σ h[n], the DC gain
	Energy float64 // L2 norm √Σ h[n]²
}

// ComputeStats returns tap count, peak magnitude, sum and L2 norm of taps.
func ComputeStats(taps []float64) Stats {
	if len(taps) == 0 {
		return Stats{}
	}
	return Stats{
		Taps:   len(taps),
		Peak:   floats.Norm(taps, math.Inf(1)),
		Sum:    f64.Sum(taps),
		Energy: math.Sqrt(f64.DotProduct(taps, taps)),
	}
}

// ForceOddTaps maps a requested tap count onto an odd count ≥ 3.
// Even requests step down to the odd count below them unless that would drop
// under MinDesignTaps, in which case they step up. Odd requests under
// MinDesignTaps are replaced by fallback.
func ForceOddTaps(requested, fallback int) int {
	if requested%halfDivisor == 0 {
		if requested-1 >= MinDesignTaps {
			requested--
		} else {
			requested++
		}
	}
	if requested < MinDesignTaps {
		return fallback
	}
	return requested
}

// TapsForGrowth returns the design length for an n-tap filter grown by factor:
// round(n·factor) forced odd, falling back to n. An even n falls back to n+1
// so the fallback is still a Type-I length. The result is below
// MinDesignTaps only for a one-tap filter whose growth rounds under 2.
func TapsForGrowth(n int, factor float64) int {
	fallback := n
	if fallback%halfDivisor == 0 {
		fallback++
	}
	return ForceOddTaps(int(math.Round(float64(n)*factor)), fallback)
}

func checkFinite(taps []float64) error {
	if len(taps) == 0 {
		return ErrDegenerateInput
	}
	for i, v := range taps {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &NonFiniteError{Index: i, Value: v}
		}
	}
	return nil
}

// NonFiniteError reports a NaN or Inf coefficient.
type NonFiniteError struct {
	Index int
	Value float64
}

func (e *NonFiniteError) Error() string {
	return fmt.Sprintf("non-finite tap at index %d: %v", e.Index, e.Value)
}

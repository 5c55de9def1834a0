package filter

import (
	"fmt"
	"math"
	"strings"

	"github.com/tphakala/go-fir-optimizer/internal/mathutil"
	"gonum.org/v1/gonum/dsp/window"
)

// WindowType selects the taper applied to a truncated impulse response.
type WindowType int

const (
	// WindowHamming is the default taper (≈ -43 dB first sidelobe).
	WindowHamming WindowType = iota
	// WindowKaiser uses a Kaiser window with an adjustable β.
	WindowKaiser
	// WindowRectangular applies no taper.
	WindowRectangular
)

var windowNames = map[WindowType]string{
	WindowHamming:     "hamming",
	WindowKaiser:      "kaiser",
	WindowRectangular: "rectangular",
}

func (w WindowType) String() string {
	if name, ok := windowNames[w]; ok {
		return name
	}
	return fmt.Sprintf("WindowType(%d)", int(w))
}

// ParseWindowType converts a window name (case-insensitive) to a WindowType.
func ParseWindowType(name string) (WindowType, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for w, n := range windowNames {
		if n == name {
			return w, nil
		}
	}
	if name == "boxcar" {
		return WindowRectangular, nil
	}
	return 0, fmt.Errorf("unknown window %q (want hamming, kaiser or rectangular)", name)
}

// MarshalText implements encoding.TextMarshaler.
func (w WindowType) MarshalText() ([]byte, error) {
	return []byte(w.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (w *WindowType) UnmarshalText(text []byte) error {
	parsed, err := ParseWindowType(string(text))
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}

// Window returns the symmetric window of the given type and length.
// beta is only used by WindowKaiser.
func Window(kind WindowType, length int, beta float64) ([]float64, error) {
	if length < 1 {
		return []float64{}, nil
	}
	switch kind {
	case WindowHamming:
		return HammingWindow(length), nil
	case WindowKaiser:
		if beta < 0 || math.IsNaN(beta) {
			return nil, fmt.Errorf("invalid kaiser beta: %v (must be ≥ 0)", beta)
		}
		return KaiserWindow(length, beta), nil
	case WindowRectangular:
		return ones(length), nil
	default:
		return nil, fmt.Errorf("unsupported window: %v", kind)
	}
}

// HammingWindow returns the symmetric Hamming window of the given length,
// w[n] = 0.54 − 0.46·cos(2πn/(N−1)).
func HammingWindow(length int) []float64 {
	if length < 1 {
		return []float64{}
	}
	if length == 1 {
		return []float64{1}
	}
	return window.Hamming(ones(length))
}

// KaiserWindow generates a Kaiser window of the specified length and β parameter.
//
// Parameters:
//
//	length: Number of samples in the window (odd for a Type-I filter)
//	beta: Kaiser β parameter, typically 0-15; higher values trade main lobe
//	      width for sidelobe attenuation. β = 0 is a rectangular window.
//
// Returns:
//
//	Window coefficients with peak value 1.0 at the center
//
// The window is symmetric: w[i] = w[length-1-i]
func KaiserWindow(length int, beta float64) []float64 {
	if length < 1 {
		return []float64{}
	}

	w := make([]float64, length)
	if length == 1 {
		w[0] = 1
		return w
	}

	// w[n] = I₀(β·√(1 − ((n − α)/α)²)) / I₀(β), α = (N−1)/2
	alpha := float64(length-1) / halfDivisor
	i0Beta := mathutil.BesselI0(beta)

	for n := range length {
		x := (float64(n) - alpha) / alpha
		w[n] = mathutil.BesselI0(beta*math.Sqrt(math.Max(0, 1-x*x))) / i0Beta
	}

	return w
}

func ones(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = 1
	}
	return s
}

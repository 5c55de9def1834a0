package filter

import (
	"fmt"

	"github.com/tphakala/go-fir-optimizer/internal/mathutil"
	"github.com/tphakala/simd/f64"
	"gonum.org/v1/gonum/dsp/fourier"
)

// DesignParams holds parameters for frequency-sampling design.
type DesignParams struct {
	// NumTaps is the filter length. Must be odd and ≥ 3 (Type-I linear phase).
	NumTaps int

	// SpectralPoints is the number of one-sided frequency samples used for the
	// inverse transform. Zero selects 1 + 2^ceil(log2(NumTaps)).
	SpectralPoints int

	// Window is the taper applied after truncation.
	Window WindowType

	// Beta is the Kaiser β, used only with WindowKaiser.
	Beta float64
}

// spectralPoints returns the effective one-sided spectral grid size.
func (p *DesignParams) spectralPoints() int {
	if p.SpectralPoints > 0 {
		return p.SpectralPoints
	}
	return 1 + mathutil.NextPowerOfTwo(p.NumTaps)
}

// Validate checks if design parameters are valid.
func (p *DesignParams) Validate() error {
	if p.NumTaps < MinDesignTaps {
		return fmt.Errorf("filter too short: %d taps (minimum %d)", p.NumTaps, MinDesignTaps)
	}
	if p.NumTaps%halfDivisor == 0 {
		return fmt.Errorf("filter length must be odd, got %d", p.NumTaps)
	}
	if p.SpectralPoints < 0 || p.SpectralPoints == 1 {
		return fmt.Errorf("invalid spectral point count: %d", p.SpectralPoints)
	}
	if period := halfDivisor * (p.spectralPoints() - 1); period < p.NumTaps {
		return fmt.Errorf("spectral grid too coarse: period %d < %d taps", period, p.NumTaps)
	}
	if p.Window == WindowKaiser && p.Beta < 0 {
		return fmt.Errorf("invalid kaiser beta: %v (must be ≥ 0)", p.Beta)
	}
	return nil
}

// DesignFrequencySampling designs a linear-phase FIR filter whose magnitude
// response approximates desired.
//
// This uses the frequency-sampling method:
// 1. Sample the desired magnitude (zero phase) on a uniform spectral grid
// 2. Mirror it to negative frequencies and inverse-transform to a real impulse response
// 3. Rotate the response so its center of symmetry sits at (NumTaps-1)/2
// 4. Keep NumTaps samples and apply the window to suppress Gibbs ringing
//
// The result is symmetric with group delay (NumTaps-1)/2 samples. Absolute
// gain is not controlled here; see NormalizeDC. An all-zero desired curve
// yields all-zero taps.
func DesignFrequencySampling(desired Curve, params DesignParams) ([]float64, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	points := params.spectralPoints()
	grid, err := Resample(desired, points)
	if err != nil {
		return nil, fmt.Errorf("design: %w", err)
	}

	// One-sided zero-phase spectrum; the real inverse FFT supplies the
	// conjugate-symmetric negative half.
	period := halfDivisor * (points - 1)
	spectrum := make([]complex128, points)
	for k, m := range grid.Magnitude {
		spectrum[k] = complex(m, 0)
	}

	fft := fourier.NewFFT(period)
	impulse := fft.Sequence(nil, spectrum)
	// gonum does not normalize the inverse transform
	f64.Scale(impulse, impulse, 1/float64(period))

	shift := (params.NumTaps - 1) / halfDivisor
	taps := make([]float64, params.NumTaps)
	for n := range taps {
		taps[n] = impulse[(n-shift+period)%period]
	}

	w, err := Window(params.Window, params.NumTaps, params.Beta)
	if err != nil {
		return nil, err
	}
	for n := range taps {
		taps[n] *= w[n]
	}

	return taps, nil
}

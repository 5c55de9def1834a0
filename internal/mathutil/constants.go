package mathutil

// Bessel I₀ approximation thresholds.
const (
	// |x| below this uses the power-series polynomial, above it the asymptotic form.
	besselSmallArgThreshold = 3.75
)

// Polynomial coefficients for I₀(x), Abramowitz & Stegun 9.8.1 and 9.8.2.
// Lowest order first.
var (
	besselI0Small = [...]float64{
		1.0, 3.5156229, 3.0899424, 1.2067492, 0.2659732, 0.360768e-1, 0.45813e-2,
	}
	besselI0Large = [...]float64{
		0.39894228, 0.1328592e-1, 0.225319e-2, -0.157565e-2, 0.916281e-2,
		-0.2057706e-1, 0.2635537e-1, -0.1647633e-1, 0.392377e-2,
	}
)

// Kaiser & Schafer empirical β formula.
const (
	kaiserAttHigh   = 50.0 // dB, above this the linear formula applies
	kaiserAttMedium = 21.0 // dB, below this β = 0

	kaiserBetaHighCoeff    = 0.1102
	kaiserBetaHighOffset   = 8.7
	kaiserBetaMediumCoeff1 = 0.5842
	kaiserBetaMediumPower  = 0.4
	kaiserBetaMediumCoeff2 = 0.07886

	kaiserBetaMinThreshold = 0.1
)

// Decibel conversion.
const (
	amplitudeDBMultiplier = 20.0
	minAmplitude          = 1e-10 // floor for log10, -200 dB
)

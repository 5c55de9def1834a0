// Package mathutil provides numeric helpers shared by the filter design code.
package mathutil

import (
	"math"
)

// BesselI0 computes the modified Bessel function of the first kind, order zero: I₀(x).
// It backs the Kaiser window.
//
// Polynomial approximations from Abramowitz & Stegun:
//   - |x| < 3.75: I₀(x) ≈ P((x/3.75)²)
//   - |x| ≥ 3.75: I₀(x) ≈ eˣ/√x · Q(3.75/x)
//
// Relative error is below 2e-7, plenty for window design.
func BesselI0(x float64) float64 {
	ax := math.Abs(x)

	if ax < besselSmallArgThreshold {
		t := ax / besselSmallArgThreshold
		return horner(t*t, besselI0Small[:])
	}

	t := besselSmallArgThreshold / ax
	return math.Exp(ax) * horner(t, besselI0Large[:]) / math.Sqrt(ax)
}

// horner evaluates the polynomial c[0] + c[1]·t + c[2]·t² + ...
func horner(t float64, c []float64) float64 {
	var acc float64
	for i := len(c) - 1; i >= 0; i-- {
		acc = acc*t + c[i]
	}
	return acc
}

// KaiserBeta computes the Kaiser window β parameter from the desired
// stopband attenuation in decibels.
//
// Formula from Kaiser & Schafer:
//   - att > 50 dB: β = 0.1102 · (att − 8.7)
//   - 21 dB ≤ att ≤ 50 dB: β = 0.5842 · (att − 21)^0.4 + 0.07886 · (att − 21)
//   - att < 21 dB: β = 0
func KaiserBeta(attenuation float64) float64 {
	switch {
	case attenuation > kaiserAttHigh:
		return kaiserBetaHighCoeff * (attenuation - kaiserBetaHighOffset)
	case attenuation >= kaiserAttMedium:
		delta := attenuation - kaiserAttMedium
		return kaiserBetaMediumCoeff1*math.Pow(delta, kaiserBetaMediumPower) + kaiserBetaMediumCoeff2*delta
	default:
		return 0.0
	}
}

// KaiserAttenuation is the approximate inverse of KaiserBeta for the
// high-attenuation branch: att ≈ 8.7 + β / 0.1102.
func KaiserAttenuation(beta float64) float64 {
	if beta < kaiserBetaMinThreshold {
		return 0.0
	}
	return kaiserBetaHighOffset + beta/kaiserBetaHighCoeff
}

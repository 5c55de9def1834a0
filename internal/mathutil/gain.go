package mathutil

import "math"

// AmplitudeToDB converts a linear amplitude ratio to decibels (20·log10).
// Values below 1e-10 are clamped to avoid log(0).
func AmplitudeToDB(amplitude float64) float64 {
	if amplitude < minAmplitude {
		amplitude = minAmplitude
	}
	return amplitudeDBMultiplier * math.Log10(amplitude)
}

// DBToAmplitude converts decibels to a linear amplitude ratio.
func DBToAmplitude(db float64) float64 {
	return math.Pow(10, db/amplitudeDBMultiplier)
}

// NextPowerOfTwo returns the smallest power of two ≥ n. It returns 1 for n ≤ 1.
func NextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

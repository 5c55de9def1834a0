package filter

import (
	"fmt"

	"gonum.org/v1/gonum/interp"
)

// Resample maps a curve onto numPoints uniformly spaced frequencies on [0, 1]
// by piecewise-linear interpolation.
//
// Runs of equal input frequencies collapse to their last sample. Outside the
// input's covered range the nearest end value is held. The first and last
// output frequencies are pinned to exactly 0 and 1.
func Resample(curve Curve, numPoints int) (Curve, error) {
	if err := curve.Validate(); err != nil {
		return Curve{}, fmt.Errorf("resample: %w", err)
	}
	if numPoints < halfDivisor {
		return Curve{}, fmt.Errorf("resample: invalid point count %d (minimum 2)", numPoints)
	}

	xs, ys := dedupe(curve.Frequencies, curve.Magnitude)

	var pl interp.PiecewiseLinear
	if err := pl.Fit(xs, ys); err != nil {
		return Curve{}, fmt.Errorf("resample: %w", err)
	}

	out := Curve{
		Frequencies: make([]float64, numPoints),
		Magnitude:   make([]float64, numPoints),
	}
	last := float64(numPoints - 1)
	for i := range numPoints {
		f := float64(i) / last
		out.Frequencies[i] = f
		out.Magnitude[i] = pl.Predict(f)
	}
	out.Frequencies[0] = 0
	out.Frequencies[numPoints-1] = 1

	return out, nil
}

// dedupe returns strictly increasing xs, keeping the last y of each run of
// equal xs. The inputs are not modified.
func dedupe(xs, ys []float64) ([]float64, []float64) {
	outX := make([]float64, 0, len(xs))
	outY := make([]float64, 0, len(ys))
	for i, x := range xs {
		if n := len(outX); n > 0 && outX[n-1] == x {
			outY[n-1] = ys[i]
			continue
		}
		outX = append(outX, x)
		outY = append(outY, ys[i])
	}
	return outX, outY
}

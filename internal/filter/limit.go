package filter

import (
	"math"

	"github.com/tphakala/simd/f64"
	"gonum.org/v1/gonum/floats"
)

// PeakPolicy maps a measured peak coefficient magnitude to a target peak.
//
//	m > HighThreshold              → HighTarget
//	MidThreshold < m ≤ HighThreshold → m · MidRatio
//	m ≤ MidThreshold               → m (no reduction)
type PeakPolicy struct {
	HighThreshold float64
	HighTarget    float64
	MidThreshold  float64
	MidRatio      float64
}

// DefaultPeakPolicy is the fixed three-tier headroom policy.
var DefaultPeakPolicy = PeakPolicy{
	HighThreshold: peakHighThreshold,
	HighTarget:    peakHighTarget,
	MidThreshold:  peakMidThreshold,
	MidRatio:      peakMidRatio,
}

// TargetPeak returns the peak magnitude the policy allows for a filter whose
// current peak is m.
func (p PeakPolicy) TargetPeak(m float64) float64 {
	switch {
	case m > p.HighThreshold:
		return p.HighTarget
	case m > p.MidThreshold:
		return m * p.MidRatio
	default:
		return m
	}
}

// LimitResult is the outcome of peak limiting.
type LimitResult struct {
	Taps           []float64
	Peak           float64 // peak before limiting
	TargetPeak     float64
	ScaleFactor    float64 // 1.0 when no reduction was applied
	CompensationDB float64 // gain to add downstream, ≥ 0
}

// Limit scales taps down uniformly when their peak exceeds the policy target
// and reports the make-up gain in dB. The input slice is not modified.
func (p PeakPolicy) Limit(taps []float64) LimitResult {
	res := LimitResult{
		Taps:        append([]float64(nil), taps...),
		ScaleFactor: 1.0,
	}
	if len(taps) == 0 {
		return res
	}

	res.Peak = floats.Norm(taps, math.Inf(1))
	res.TargetPeak = p.TargetPeak(res.Peak)

	if res.TargetPeak < res.Peak && res.TargetPeak > 0 {
		res.ScaleFactor = res.TargetPeak / res.Peak
		f64.Scale(res.Taps, res.Taps, res.ScaleFactor)
		res.CompensationDB = -dbMultiplier * math.Log10(res.ScaleFactor)
	}
	return res
}

// Limit applies DefaultPeakPolicy.
func Limit(taps []float64) LimitResult {
	return DefaultPeakPolicy.Limit(taps)
}

package firopt

import "github.com/tphakala/go-fir-optimizer/internal/filter"

// Record describes one optimization. It is the row type of every report
// format, so field names double as JSON keys and Parquet columns.
type Record struct {
	Source string `json:"source,omitempty" parquet:"source"`
	Output string `json:"output,omitempty" parquet:"output"`

	OriginalTaps   int     `json:"original_taps"   parquet:"original_taps"`
	OriginalPeak   float64 `json:"original_peak"   parquet:"original_peak"`
	OriginalSum    float64 `json:"original_sum"    parquet:"original_sum"`
	OriginalEnergy float64 `json:"original_energy" parquet:"original_energy"`

	NewTaps   int     `json:"new_taps"   parquet:"new_taps"`
	NewPeak   float64 `json:"new_peak"   parquet:"new_peak"`
	NewSum    float64 `json:"new_sum"    parquet:"new_sum"`
	NewEnergy float64 `json:"new_energy" parquet:"new_energy"`

	// ScaleFactor is the uniform gain applied by peak limiting (≤ 1).
	ScaleFactor float64 `json:"scale_factor" parquet:"scale_factor"`

	// CompensationDB is the make-up gain to add downstream (≥ 0).
	CompensationDB float64 `json:"comp_db" parquet:"comp_db"`

	// ShapeDeviationDB is the worst magnitude-shape error of the new filter
	// within 40 dB of the response peak.
	ShapeDeviationDB float64 `json:"shape_deviation_db" parquet:"shape_deviation_db"`

	// Passthrough is set when the filter was too short to redesign.
	Passthrough bool `json:"passthrough,omitempty" parquet:"passthrough"`
}

func (r *Record) fillOriginal(s filter.Stats) {
	r.OriginalTaps = s.Taps
	r.OriginalPeak = s.Peak
	r.OriginalSum = s.Sum
	r.OriginalEnergy = s.Energy
}

func (r *Record) fillNew(s filter.Stats) {
	r.NewTaps = s.Taps
	r.NewPeak = s.Peak
	r.NewSum = s.Sum
	r.NewEnergy = s.Energy
}

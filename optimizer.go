package firopt

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"time"

	"github.com/tphakala/go-fir-optimizer/internal/coeffs"
	"github.com/tphakala/go-fir-optimizer/internal/filter"
)

var (
	// ErrInvalidOptions indicates invalid optimization options.
	ErrInvalidOptions = errors.New("invalid optimizer options")

	// ErrDegenerateInput is returned for an empty tap sequence.
	ErrDegenerateInput = filter.ErrDegenerateInput
)

// WindowType selects the taper used by the designer.
type WindowType = filter.WindowType

// Supported windows.
const (
	WindowHamming     = filter.WindowHamming
	WindowKaiser      = filter.WindowKaiser
	WindowRectangular = filter.WindowRectangular
)

// ParseWindowType converts a window name such as "hamming" to a WindowType.
func ParseWindowType(name string) (WindowType, error) {
	return filter.ParseWindowType(name)
}

// Options controls a single optimization.
type Options struct {
	// GrowthFactor scales the tap count: the new filter has round(n·GrowthFactor)
	// taps, forced odd. 1.0 keeps the length.
	GrowthFactor float64

	// AnalysisSize is the FFT size used to measure the original response.
	AnalysisSize int

	// GridPoints is the number of uniformly spaced points of the design target.
	GridPoints int

	// SpectralPoints overrides the designer's spectral grid. Zero selects
	// 1 + 2^ceil(log2(newTaps)).
	SpectralPoints int

	// Window is the taper applied to the synthesized impulse response.
	Window WindowType

	// KaiserBeta is the Kaiser window β. Ignored for other windows.
	KaiserBeta float64
}

// DefaultOptions returns the standard options: same length,
// 32768-point analysis, 1024-point target grid, Hamming window.
func DefaultOptions() Options {
	return Options{
		GrowthFactor: DefaultGrowthFactor,
		AnalysisSize: DefaultAnalysisSize,
		GridPoints:   DefaultGridPoints,
		Window:       WindowHamming,
		KaiserBeta:   DefaultKaiserBeta,
	}
}

// Validate checks if options are valid.
func (o *Options) Validate() error {
	if math.IsNaN(o.GrowthFactor) || o.GrowthFactor <= 0 || o.GrowthFactor > maxGrowthFactor {
		return fmt.Errorf("%w: growth factor must be in (0, %v], got %v", ErrInvalidOptions, maxGrowthFactor, o.GrowthFactor)
	}
	if o.AnalysisSize < minAnalysisSize || o.AnalysisSize%2 != 0 {
		return fmt.Errorf("%w: analysis size must be even and at least %d, got %d", ErrInvalidOptions, minAnalysisSize, o.AnalysisSize)
	}
	if o.GridPoints < minGridPoints {
		return fmt.Errorf("%w: grid points must be at least %d, got %d", ErrInvalidOptions, minGridPoints, o.GridPoints)
	}
	if o.SpectralPoints < 0 || o.SpectralPoints == 1 {
		return fmt.Errorf("%w: spectral points must be 0 or at least 2, got %d", ErrInvalidOptions, o.SpectralPoints)
	}
	switch o.Window {
	case WindowHamming, WindowRectangular:
	case WindowKaiser:
		if math.IsNaN(o.KaiserBeta) || o.KaiserBeta < 0 {
			return fmt.Errorf("%w: kaiser beta must be ≥ 0, got %v", ErrInvalidOptions, o.KaiserBeta)
		}
	default:
		return fmt.Errorf("%w: unknown window %v", ErrInvalidOptions, o.Window)
	}
	return nil
}

// Result is an optimized filter and its record.
type Result struct {
	Taps   []float64
	Record Record
}

// Header renders the metadata comment block written above optimized taps.
func (r *Result) Header(now time.Time) string {
	source := r.Record.Source
	if source == "" {
		source = "memory"
	} else {
		source = filepath.Base(source)
	}
	return fmt.Sprintf("# optimized from %s on %s\n# original_taps=%d new_taps=%d\n# scale_factor=%.12g # comp_db=%.3f\n",
		source, now.Format(HeaderTimeLayout),
		r.Record.OriginalTaps, r.Record.NewTaps,
		r.Record.ScaleFactor, r.Record.CompensationDB)
}

// Optimize resynthesizes taps with the magnitude shape of the original, the
// original DC gain, and a peak coefficient bounded by the default policy.
//
// Filters longer than opts.AnalysisSize, before or after growth, are
// rejected with ErrInvalidOptions rather than truncated by the analyzer.
//
// Filters too short to redesign (fewer than three taps after the growth
// fallback) are returned unchanged with a scale factor of 1 and Passthrough
// set in the record.
func Optimize(taps []float64, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if len(taps) == 0 {
		return nil, ErrDegenerateInput
	}
	if len(taps) > opts.AnalysisSize {
		return nil, fmt.Errorf("%w: %d taps exceed analysis size %d", ErrInvalidOptions, len(taps), opts.AnalysisSize)
	}

	orig := filter.ComputeStats(taps)
	response, err := filter.Analyze(taps, opts.AnalysisSize)
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}
	shape := response.Normalized()

	numTaps := filter.TapsForGrowth(orig.Taps, opts.GrowthFactor)
	if numTaps < filter.MinDesignTaps {
		return passthrough(taps, orig), nil
	}
	if numTaps > opts.AnalysisSize {
		return nil, fmt.Errorf("%w: %d designed taps exceed analysis size %d", ErrInvalidOptions, numTaps, opts.AnalysisSize)
	}

	target, err := filter.Resample(shape, opts.GridPoints)
	if err != nil {
		return nil, err
	}

	synth, err := filter.DesignFrequencySampling(target, filter.DesignParams{
		NumTaps:        numTaps,
		SpectralPoints: opts.SpectralPoints,
		Window:         opts.Window,
		Beta:           opts.KaiserBeta,
	})
	if err != nil {
		return nil, fmt.Errorf("design: %w", err)
	}

	limited := filter.Limit(filter.NormalizeDC(synth, orig.Sum))

	newResponse, err := filter.Analyze(limited.Taps, opts.AnalysisSize)
	if err != nil {
		return nil, fmt.Errorf("analyze result: %w", err)
	}
	deviation, err := filter.ShapeDeviationDB(response, newResponse, filter.DefaultDeviationFloorDB)
	if err != nil {
		return nil, err
	}

	res := &Result{Taps: limited.Taps}
	res.Record.fillOriginal(orig)
	res.Record.fillNew(filter.ComputeStats(limited.Taps))
	res.Record.ScaleFactor = limited.ScaleFactor
	res.Record.CompensationDB = limited.CompensationDB
	res.Record.ShapeDeviationDB = deviation
	return res, nil
}

func passthrough(taps []float64, orig filter.Stats) *Result {
	res := &Result{Taps: append([]float64(nil), taps...)}
	res.Record.fillOriginal(orig)
	res.Record.fillNew(orig)
	res.Record.ScaleFactor = 1.0
	res.Record.Passthrough = true
	return res
}

// OptimizeFile loads a coefficient file (text or WAV) and optimizes it with
// the default options and the given growth factor.
func OptimizeFile(path string, growth float64) (*Result, error) {
	opts := DefaultOptions()
	opts.GrowthFactor = growth
	return OptimizeFileWithOptions(path, opts)
}

// OptimizeFileWithOptions is like OptimizeFile with full options.
func OptimizeFileWithOptions(path string, opts Options) (*Result, error) {
	taps, err := coeffs.LoadAny(path)
	if err != nil {
		return nil, err
	}
	res, err := Optimize(taps, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	res.Record.Source = path
	return res, nil
}

// SaveResult writes the optimized taps to path. Paths ending in ".wav" are
// written as a PCM impulse response; anything else as a text coefficient file
// with the metadata header. Nothing is written when saving fails.
func SaveResult(res *Result, path string, now time.Time) error {
	if coeffs.IsWAV(path) {
		if err := coeffs.SaveWAV(path, res.Taps, 0, 0); err != nil {
			return err
		}
	} else {
		err := coeffs.Save(path, res.Taps, coeffs.WriteOptions{Header: res.Header(now)})
		if err != nil {
			return err
		}
	}
	res.Record.Output = path
	return nil
}

// OutputPath returns the companion path for an optimized filter.
func OutputPath(path string) string {
	return path + OutputSuffix
}

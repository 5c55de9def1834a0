package firopt

import "github.com/tphakala/go-fir-optimizer/internal/filter"

// Optimization defaults.
const (
	// DefaultGrowthFactor keeps the original tap count.
	DefaultGrowthFactor = 1.0

	// DefaultAnalysisSize is the FFT size for measuring the original response.
	DefaultAnalysisSize = filter.AnalysisGridSize

	// DefaultGridPoints is the size of the resampled design target.
	DefaultGridPoints = filter.DefaultGridPoints

	// DefaultKaiserBeta is used when the Kaiser window is selected without a β.
	DefaultKaiserBeta = 8.6
)

// Output naming.
const (
	// OutputSuffix is appended to a source path to name its optimized file.
	OutputSuffix = ".opt.txt"

	// HeaderTimeLayout formats the generation timestamp in the metadata header.
	HeaderTimeLayout = "2006-01-02T15:04:05"
)

// Validation limits.
const (
	minAnalysisSize = 2
	minGridPoints   = 2
	maxGrowthFactor = 64.0
)

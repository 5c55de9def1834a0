package filter

const (
	// MinDesignTaps is the shortest Type-I linear-phase filter the designer produces.
	MinDesignTaps = 3

	// AnalysisGridSize is the FFT size used when analyzing a filter for resynthesis.
	AnalysisGridSize = 32768

	// DefaultResponseGridSize is the FFT size for generic response queries.
	DefaultResponseGridSize = 16384

	// DefaultGridPoints is the number of points of the resampled design target.
	DefaultGridPoints = 1024

	// DCFloor is the smallest |sum| that DC normalization will divide by.
	DCFloor = 1e-20

	// DefaultDeviationFloorDB limits shape comparison to bins within this
	// many dB of the response maximum.
	DefaultDeviationFloorDB = -40.0
)

const (
	halfDivisor = 2

	// Peak policy thresholds.
	peakHighThreshold = 0.9
	peakHighTarget    = 0.5
	peakMidThreshold  = 0.6
	peakMidRatio      = 0.7

	dbMultiplier = 20.0
)

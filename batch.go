package firopt

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Job is one filter of a batch.
type Job struct {
	// Path is the coefficient file to optimize.
	Path string

	// GrowthFactor overrides BatchConfig.Options.GrowthFactor when > 0.
	GrowthFactor float64

	// Output is where the optimized filter is written. Empty selects OutputPath(Path).
	Output string
}

// BatchConfig controls RunBatch.
type BatchConfig struct {
	// Options are the base optimization options for every job.
	Options Options

	// Workers bounds the number of filters processed at once.
	// Zero selects runtime.NumCPU().
	Workers int

	// DryRun optimizes without writing any output.
	DryRun bool

	// Logger receives per-filter events. Nil disables logging.
	Logger *zap.Logger

	// Now stamps output headers. Nil selects time.Now.
	Now func() time.Time

	// OnDone is called after each filter finishes, successfully or not.
	// It may be called from several goroutines at once.
	OnDone func(path string, err error)
}

// DefaultBatchConfig returns a config with default options and one worker per CPU.
func DefaultBatchConfig() BatchConfig {
	return BatchConfig{
		Options: DefaultOptions(),
		Workers: runtime.NumCPU(),
	}
}

// Validate checks if the batch config is valid.
func (c *BatchConfig) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must be ≥ 0, got %d", ErrInvalidOptions, c.Workers)
	}
	return c.Options.Validate()
}

type jobOutcome struct {
	record Record
	err    error
}

// RunBatch optimizes every job concurrently and collects a report in input
// order. A failing job never stops the others. Jobs that have not started
// when ctx is done are recorded as failed with ctx.Err(); running jobs are
// allowed to finish.
//
// The returned error is non-nil only for an invalid config.
func RunBatch(ctx context.Context, jobs []Job, cfg BatchConfig) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	workers := cfg.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	outcomes := make([]jobOutcome, len(jobs))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, job := range jobs {
		acquired := false
		select {
		case sem <- struct{}{}:
			acquired = true
		case <-ctx.Done():
		}
		if err := ctx.Err(); err != nil {
			if acquired {
				<-sem
			}
			outcomes[i].err = err
			logger.Warn("skipped filter", zap.String("path", job.Path), zap.Error(err))
			notify(cfg.OnDone, job.Path, err)
			continue
		}

		wg.Add(1)
		go func(idx int, job Job) {
			defer wg.Done()
			defer func() { <-sem }()

			rec, err := runJob(job, &cfg, now, logger)
			outcomes[idx] = jobOutcome{record: rec, err: err}
			notify(cfg.OnDone, job.Path, err)
		}(i, job)
	}
	wg.Wait()

	report := &Report{}
	for i, o := range outcomes {
		if o.err != nil {
			report.Failures = append(report.Failures, Failure{Path: jobs[i].Path, Err: o.err})
			continue
		}
		report.Records = append(report.Records, o.record)
	}
	return report, nil
}

func runJob(job Job, cfg *BatchConfig, now func() time.Time, logger *zap.Logger) (Record, error) {
	log := logger.With(zap.String("path", job.Path))
	opts := cfg.Options
	if job.GrowthFactor > 0 {
		opts.GrowthFactor = job.GrowthFactor
	}
	log.Debug("optimizing filter", zap.Float64("growth", opts.GrowthFactor))

	res, err := OptimizeFileWithOptions(job.Path, opts)
	if err != nil {
		log.Error("optimization failed", zap.Error(err))
		return Record{}, err
	}

	if !cfg.DryRun {
		out := job.Output
		if out == "" {
			out = OutputPath(job.Path)
		}
		if err := SaveResult(res, out, now()); err != nil {
			log.Error("write failed", zap.String("output", out), zap.Error(err))
			return Record{}, err
		}
	}

	log.Info("optimized filter",
		zap.Int("original_taps", res.Record.OriginalTaps),
		zap.Int("new_taps", res.Record.NewTaps),
		zap.Float64("original_peak", res.Record.OriginalPeak),
		zap.Float64("new_peak", res.Record.NewPeak),
		zap.Float64("scale_factor", res.Record.ScaleFactor),
		zap.Float64("comp_db", res.Record.CompensationDB),
		zap.Bool("passthrough", res.Record.Passthrough),
	)
	return res.Record, nil
}

func notify(fn func(string, error), path string, err error) {
	if fn != nil {
		fn(path, err)
	}
}

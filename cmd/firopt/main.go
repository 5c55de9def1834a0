// Command firopt optimizes FIR coefficient files: it resynthesizes each
// filter with the same magnitude shape, optionally more taps, and a safe peak
// coefficient, then prints the make-up gain to apply downstream.
//
// Usage:
//
//	firopt noise_fir_default.txt harmonic_base.txt          # writes *.opt.txt
//	firopt -growth 2 -report json noise_fir_default.txt
//	firopt -plan filters.yaml -apply                        # replace originals, keep backups
//	firopt -dry-run -report parquet -report-out run.parquet *.txt
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/cheggaaa/pb"
	firopt "github.com/tphakala/go-fir-optimizer"
	"github.com/tphakala/go-fir-optimizer/internal/coeffs"
	"github.com/tphakala/go-fir-optimizer/internal/logging"
	"github.com/tphakala/go-fir-optimizer/internal/mathutil"
	"github.com/tphakala/simd/cpu"
	"go.uber.org/zap"
)

// errFailures is returned when at least one filter failed.
var errFailures = errors.New("some filters failed")

type cliFlags struct {
	plan         string
	growth       float64
	window       string
	beta         float64
	stopbandDB   float64
	analysisSize int
	grid         int
	workers      int
	apply        bool
	dryRun       bool
	report       string
	reportOut    string
	logFormat    string
	verbose      bool
	noProgress   bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		if !errors.Is(err, errFailures) {
			fmt.Fprintf(os.Stderr, "firopt: %v\n", err)
		}
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (*cliFlags, []string, error) {
	defaults := firopt.DefaultOptions()
	f := &cliFlags{}

	fs := flag.NewFlagSet("firopt", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&f.plan, "plan", "", "YAML plan listing filters and growth factors")
	fs.Float64Var(&f.growth, "growth", defaults.GrowthFactor, "Tap growth factor (new taps = round(n*growth), forced odd)")
	fs.StringVar(&f.window, "window", defaults.Window.String(), "Design window: hamming, kaiser, rectangular")
	fs.Float64Var(&f.beta, "beta", defaults.KaiserBeta, "Kaiser window beta")
	fs.Float64Var(&f.stopbandDB, "stopband-db", 0, "Kaiser stopband attenuation in dB; derives -beta when set")
	fs.IntVar(&f.analysisSize, "analysis-size", defaults.AnalysisSize, "FFT size for analyzing the original filter")
	fs.IntVar(&f.grid, "grid", defaults.GridPoints, "Points of the resampled design target")
	fs.IntVar(&f.workers, "workers", runtime.NumCPU(), "Filters processed concurrently")
	fs.BoolVar(&f.apply, "apply", false, "Replace originals with the optimized filters (backups are kept)")
	fs.BoolVar(&f.dryRun, "dry-run", false, "Analyze and report without writing any file")
	fs.StringVar(&f.report, "report", defaultReportFormat, "Report format: text, json, parquet")
	fs.StringVar(&f.reportOut, "report-out", "", "Write the report to this file instead of stdout")
	fs.StringVar(&f.logFormat, "log-format", defaultLogFormat, "Log format: console, json")
	fs.BoolVar(&f.verbose, "v", false, "Verbose logging")
	fs.BoolVar(&f.noProgress, "no-progress", false, "Disable the progress bar")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: firopt [options] file...\n       firopt [options] -plan plan.yaml\n\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	if f.apply && f.dryRun {
		return nil, nil, errors.New("-apply and -dry-run are mutually exclusive")
	}
	if f.plan == "" && fs.NArg() == 0 {
		fs.Usage()
		return nil, nil, errors.New("no filters given")
	}
	return f, fs.Args(), nil
}

func (f *cliFlags) options() (firopt.Options, error) {
	opts := firopt.DefaultOptions()
	window, err := firopt.ParseWindowType(f.window)
	if err != nil {
		return opts, err
	}
	opts.GrowthFactor = f.growth
	opts.Window = window
	opts.KaiserBeta = f.beta
	if f.stopbandDB > 0 {
		opts.KaiserBeta = mathutil.KaiserBeta(f.stopbandDB)
	}
	opts.AnalysisSize = f.analysisSize
	opts.GridPoints = f.grid
	return opts, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	flags, files, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	format, err := firopt.ParseReportFormat(flags.report)
	if err != nil {
		return err
	}
	if format == firopt.ReportParquet && flags.reportOut == "" {
		return errors.New("-report parquet needs -report-out")
	}

	logCfg := logging.DefaultConfig(flags.verbose)
	logCfg.Format = logging.Format(flags.logFormat)
	logCfg.Output = stderr
	logger, err := logging.New(logCfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	opts, err := flags.options()
	if err != nil {
		return err
	}

	jobs, err := collectJobs(flags, files, &opts, logger)
	if err != nil {
		return err
	}
	if opts.Window == firopt.WindowKaiser {
		logger.Debug("kaiser window",
			zap.Float64("beta", opts.KaiserBeta),
			zap.Float64("approx_stopband_db", mathutil.KaiserAttenuation(opts.KaiserBeta)))
	}

	logger.Debug("starting batch",
		zap.Int("filters", len(jobs)),
		zap.Int("workers", flags.workers),
		zap.String("simd", cpu.Info()))

	cfg := firopt.BatchConfig{
		Options: opts,
		Workers: flags.workers,
		DryRun:  flags.dryRun,
		Logger:  logger,
	}

	var bar *pb.ProgressBar
	if !flags.noProgress && len(jobs) > 1 {
		bar = pb.New(len(jobs)).Prefix(progressBarPrefix)
		bar.Output = stderr
		bar.Start()
		cfg.OnDone = func(string, error) { bar.Increment() }
	}

	report, err := firopt.RunBatch(ctx, jobs, cfg)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return err
	}

	if flags.apply {
		applyResults(report, time.Now(), logger)
	}

	if err := writeReport(report, format, flags.reportOut, stdout); err != nil {
		return err
	}
	if len(report.Failures) > 0 {
		return errFailures
	}
	return nil
}

// collectJobs builds the batch from the plan file or the positional paths.
// Plan defaults override the flag options.
func collectJobs(flags *cliFlags, files []string, opts *firopt.Options, logger *zap.Logger) ([]firopt.Job, error) {
	var jobs []firopt.Job
	if flags.plan != "" {
		plan, err := firopt.LoadPlan(flags.plan)
		if err != nil {
			return nil, err
		}
		*opts = plan.Apply(*opts)

		planJobs, missing, err := plan.Jobs()
		if err != nil {
			return nil, err
		}
		for _, path := range missing {
			logger.Warn("filter listed in plan not found, skipping", zap.String("path", path))
		}
		jobs = append(jobs, planJobs...)
	}
	for _, path := range files {
		jobs = append(jobs, firopt.Job{Path: path})
	}

	// WAV impulse responses stay WAV so -apply never swaps in a text file.
	for i := range jobs {
		if jobs[i].Output == "" && coeffs.IsWAV(jobs[i].Path) {
			p := jobs[i].Path
			jobs[i].Output = strings.TrimSuffix(p, filepath.Ext(p)) + wavOutputSuffix
		}
	}
	return jobs, nil
}

func writeReport(report *firopt.Report, format firopt.ReportFormat, path string, stdout io.Writer) (err error) {
	if path == "" {
		return report.Write(stdout, format)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, reportFileMode)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()
	return report.Write(f, format)
}

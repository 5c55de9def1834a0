// Command analyze-filter prints statistics and the magnitude response of FIR
// coefficient files.
//
// Usage:
//
//	analyze-filter noise_fir_default.txt
//	analyze-filter -rate 48000 -freqs 0,1000,10000,20000 harmonic_base.txt
//	analyze-filter -growth 2 noise_fir_default.txt     # also preview the optimized filter
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	firopt "github.com/tphakala/go-fir-optimizer"
	"github.com/tphakala/go-fir-optimizer/internal/coeffs"
	"github.com/tphakala/go-fir-optimizer/internal/filter"
	"github.com/tphakala/go-fir-optimizer/internal/mathutil"
)

const (
	// Normalized probe frequencies (1.0 = Nyquist) shown by default.
	defaultFreqs = "0,0.05,0.1,0.25,0.5,0.75,0.9,1"

	minRequiredArgs = 1
	minGridSize     = 16
	nyquistDivisor  = 2.0
)

type analyzeOptions struct {
	freqs  []float64 // normalized
	rate   float64   // Hz; zero when frequencies are normalized
	grid   int
	growth float64 // zero disables the optimization preview
}

func main() {
	if err := run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "analyze-filter: %v\n", err)
		os.Exit(1)
	}
}

func run(w io.Writer, args []string) error {
	fs := flag.NewFlagSet("analyze-filter", flag.ContinueOnError)
	freqList := fs.String("freqs", defaultFreqs, "Comma-separated probe frequencies (normalized, or Hz with -rate)")
	rate := fs.Float64("rate", 0, "Sample rate in Hz; makes -freqs absolute")
	grid := fs.Int("grid", filter.DefaultResponseGridSize, "FFT size for the response")
	growth := fs.Float64("growth", 0, "Also show the optimized filter for this growth factor")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < minRequiredArgs {
		fs.Usage()
		return errors.New("no coefficient files given")
	}

	if !mathutil.IsPowerOfTwo(*grid) || *grid < minGridSize {
		return fmt.Errorf("-grid must be a power of two ≥ %d, got %d", minGridSize, *grid)
	}

	freqs, err := parseFreqs(*freqList, *rate)
	if err != nil {
		return err
	}
	opts := analyzeOptions{freqs: freqs, rate: *rate, grid: *grid, growth: *growth}

	var failed int
	for _, path := range fs.Args() {
		if err := analyzeFile(w, path, opts); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, fs.NArg())
	}
	return nil
}

// parseFreqs converts a comma-separated list into normalized frequencies.
func parseFreqs(list string, rate float64) ([]float64, error) {
	if rate < 0 {
		return nil, fmt.Errorf("invalid sample rate %v", rate)
	}
	var out []float64
	for field := range strings.SplitSeq(list, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		f, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid frequency %q: %w", field, err)
		}
		if rate > 0 {
			f /= rate / nyquistDivisor
		}
		if f < 0 || f > 1 {
			return nil, fmt.Errorf("frequency %q is outside [0, Nyquist]", field)
		}
		out = append(out, f)
	}
	if len(out) == 0 {
		return nil, errors.New("no probe frequencies")
	}
	return out, nil
}

func analyzeFile(w io.Writer, path string, opts analyzeOptions) error {
	taps, err := coeffs.LoadAny(path)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "=== %s ===\n", filepath.Base(path))
	if err := printAnalysis(w, "original", taps, opts); err != nil {
		return err
	}

	if opts.growth > 0 {
		o := firopt.DefaultOptions()
		o.GrowthFactor = opts.growth
		res, err := firopt.Optimize(taps, o)
		if err != nil {
			return err
		}
		if err := printAnalysis(w, fmt.Sprintf("optimized (growth %g)", opts.growth), res.Taps, opts); err != nil {
			return err
		}
		fmt.Fprintf(w, "  scale_factor=%.6g comp_db=%.3f shape_deviation=%.2f dB\n",
			res.Record.ScaleFactor, res.Record.CompensationDB, res.Record.ShapeDeviationDB)
	}
	fmt.Fprintln(w)
	return nil
}

func printAnalysis(w io.Writer, title string, taps []float64, opts analyzeOptions) error {
	stats := filter.ComputeStats(taps)
	curve, err := filter.Analyze(taps, opts.grid)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%s:\n", title)
	fmt.Fprintf(w, "  taps=%d max|h|=%.6g sum=%.6g L2=%.6g\n", stats.Taps, stats.Peak, stats.Sum, stats.Energy)
	fmt.Fprintf(w, "  DC gain: %.3f dB\n", filter.MagnitudeDB(math.Abs(stats.Sum)))
	for _, f := range opts.freqs {
		fmt.Fprintf(w, "  %s  %8.3f dB\n", freqLabel(f, opts.rate), filter.MagnitudeDB(curve.At(f)))
	}
	return nil
}

func freqLabel(f, rate float64) string {
	if rate > 0 {
		return fmt.Sprintf("%9.1f Hz", f*rate/nyquistDivisor)
	}
	return fmt.Sprintf("f=%6.4f", f)
}

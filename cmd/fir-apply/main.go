// Command fir-apply filters a WAV file through an FIR coefficient file.
//
// It is used to audition an optimized filter against the original: the
// optimizer reports a make-up gain (comp_db) that restores the level lost to
// peak limiting, and -gain-db applies it here.
//
// Usage:
//
//	fir-apply -fir noise_fir_default.txt input.wav output.wav
//	fir-apply -fir noise_fir_default.txt.opt.txt -gain-db 5.575 input.wav output.wav
//	fir-apply -fir ir.wav -tail input.wav output.wav     # keep the filter's decay
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tphakala/go-fir-optimizer/internal/coeffs"
	"github.com/tphakala/go-fir-optimizer/internal/logging"
	"go.uber.org/zap"
)

const (
	minRequiredArgs = 2
	percentScale    = 100
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fir-apply: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	firPath := flag.String("fir", "", "Coefficient file (text or WAV impulse response)")
	gainDB := flag.Float64("gain-db", 0, "Make-up gain in dB applied after filtering")
	tail := flag.Bool("tail", false, "Keep the full convolution tail instead of compensating the filter delay")
	parallel := flag.Bool("parallel", true, "Filter channels concurrently")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	args := flag.Args()
	if *firPath == "" || len(args) < minRequiredArgs {
		fmt.Fprintf(os.Stderr, "Usage: %s -fir coeffs.txt [options] input.wav output.wav\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		return errors.New("insufficient arguments")
	}

	logger, err := logging.New(logging.DefaultConfig(*verbose))
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	taps, err := coeffs.LoadAny(*firPath)
	if err != nil {
		return err
	}
	logger.Debug("loaded filter", zap.String("path", *firPath), zap.Int("taps", len(taps)))

	inputPath, outputPath := args[0], args[1]
	start := time.Now()
	stats, err := applyFIR(inputPath, outputPath, taps, applyOptions{
		gainDB:   *gainDB,
		tail:     *tail,
		parallel: *parallel,
	})
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("Filtered %s -> %s\n", filepath.Base(inputPath), filepath.Base(outputPath))
	fmt.Printf("  %d Hz, %d channels, %d-bit, %d taps\n", stats.rate, stats.channels, stats.bitDepth, len(taps))
	fmt.Printf("  %d frames -> %d frames, gain %+.3f dB\n", stats.inputFrames, stats.outputFrames, *gainDB)
	fmt.Printf("  output peak %.2f dBFS\n", stats.peakDB)
	if stats.clipped > 0 {
		fmt.Printf("  WARNING: %d samples clipped (%.4f%%)\n",
			stats.clipped, float64(stats.clipped)*percentScale/float64(stats.outputFrames*stats.channels))
	}
	logger.Debug("done", zap.Duration("elapsed", elapsed))
	return nil
}

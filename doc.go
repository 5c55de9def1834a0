// Package firopt analyzes FIR filters and resynthesizes them with a safer
// coefficient peak.
//
// Given an arbitrary set of FIR taps, the optimizer measures the filter's
// magnitude response, designs a new linear-phase filter (optionally longer)
// whose response has the same shape, restores the original DC gain, and
// then scales the result down when its largest coefficient is too close to
// full scale. The scale-down is reported as a make-up gain in dB so the
// substitution can be made transparent elsewhere in the signal chain.
//
// # Quick Start
//
// Optimize taps already in memory:
//
//	opts := firopt.DefaultOptions()
//	opts.GrowthFactor = 2.0
//	res, err := firopt.Optimize(taps, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%d -> %d taps, add %.3f dB\n",
//	    res.Record.OriginalTaps, res.Record.NewTaps, res.Record.CompensationDB)
//
// Optimize a coefficient file and write the ".opt.txt" companion:
//
//	res, err := firopt.OptimizeFile("noise_fir_default.txt", 2.0)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = firopt.SaveResult(res, firopt.OutputPath("noise_fir_default.txt"), time.Now())
//
// # Pipeline
//
// Each filter goes through the same pure, deterministic stages:
//
//  1. Analyze: zero-padded real FFT (32768 points) of the original taps
//  2. Normalize the magnitude curve to a peak of 1 (shape only)
//  3. Resample the curve onto a 1024-point uniform grid with pinned endpoints
//  4. Frequency-sampling design: inverse FFT, centering, Hamming window
//  5. Rescale so the coefficient sum matches the original DC gain
//  6. Peak limiting with a fixed three-tier headroom policy
//
// # File Format
//
// Coefficient files hold one number per line. Blank lines and lines starting
// with '#' are ignored. Optimized files start with a metadata header:
//
//	# optimized from noise_fir_default.txt on 2026-10-17T10:00:00
//	# original_taps=31 new_taps=61
//	# scale_factor=0.526315789474 # comp_db=5.575
//
// PCM WAV impulse responses (".wav") are accepted wherever a coefficient
// file is.
//
// # Batches
//
// [RunBatch] optimizes many files concurrently, one goroutine per filter.
// A failing filter is reported in [Report.Failures] and does not stop the
// others. [LoadPlan] reads a YAML batch description.
package firopt

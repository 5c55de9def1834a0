package main

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sync"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/tphakala/go-fir-optimizer/internal/convolve"
	"github.com/tphakala/go-fir-optimizer/internal/mathutil"
)

const (
	wavFormatPCM = 1

	bitsPerSample16 = 16
	bitsPerSample24 = 24
	bitsPerSample32 = 32
)

type applyOptions struct {
	gainDB   float64
	tail     bool
	parallel bool
}

type applyStats struct {
	rate         int
	channels     int
	bitDepth     int
	inputFrames  int
	outputFrames int
	clipped      int
	peakDB       float64
}

// wavInput is a fully decoded PCM WAV file.
type wavInput struct {
	rate     int
	channels int
	bitDepth int
	data     []int
}

// readWAV opens and decodes a PCM WAV file.
func readWAV(path string) (*wavInput, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer func() { _ = f.Close() }()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file: %s", path)
	}
	if decoder.WavAudioFormat != wavFormatPCM {
		return nil, fmt.Errorf("unsupported WAV format %d (want PCM)", decoder.WavAudioFormat)
	}

	bitDepth := int(decoder.BitDepth)
	if _, err := maxValue(bitDepth); err != nil {
		return nil, err
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	channels := int(decoder.NumChans)
	if channels < 1 {
		return nil, fmt.Errorf("invalid channel count %d", channels)
	}

	return &wavInput{
		rate:     int(decoder.SampleRate),
		channels: channels,
		bitDepth: bitDepth,
		data:     buf.Data,
	}, nil
}

// writeWAV encodes interleaved samples to path.
func writeWAV(path string, data []int, rate, bitDepth, channels int) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	encoder := wav.NewEncoder(f, rate, bitDepth, channels, wavFormatPCM)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: rate},
		Data:           data,
		SourceBitDepth: bitDepth,
	}
	if err := encoder.Write(buf); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return encoder.Close()
}

// applyFIR filters every channel of inputPath with taps and writes outputPath
// in the input's format.
func applyFIR(inputPath, outputPath string, taps []float64, opts applyOptions) (*applyStats, error) {
	if len(taps) == 0 {
		return nil, errors.New("empty filter")
	}
	in, err := readWAV(inputPath)
	if err != nil {
		return nil, err
	}

	maxVal, _ := maxValue(in.bitDepth)
	channelBufs := deinterleave(in.data, in.channels, 1/maxVal)

	var filtered [][]float64
	if opts.parallel && in.channels > 1 {
		filtered, err = filterParallel(channelBufs, taps, opts.tail)
	} else {
		filtered, err = filterSequential(channelBufs, taps, opts.tail)
	}
	if err != nil {
		return nil, err
	}

	gain := mathutil.DBToAmplitude(opts.gainDB)
	out, clipped, peak := interleave(filtered, gain, maxVal)
	if err := writeWAV(outputPath, out, in.rate, in.bitDepth, in.channels); err != nil {
		return nil, err
	}

	stats := &applyStats{
		rate:        in.rate,
		channels:    in.channels,
		bitDepth:    in.bitDepth,
		inputFrames: len(in.data) / in.channels,
		clipped:     clipped,
		peakDB:      mathutil.AmplitudeToDB(peak),
	}
	if len(filtered) > 0 {
		stats.outputFrames = len(filtered[0])
	}
	return stats, nil
}

func filterChannel(samples, taps []float64, tail bool) ([]float64, error) {
	if tail {
		return convolve.Full(samples, taps)
	}
	return convolve.Centered(samples, taps)
}

// filterParallel filters channels concurrently.
func filterParallel(channels [][]float64, taps []float64, tail bool) ([][]float64, error) {
	out := make([][]float64, len(channels))
	var wg sync.WaitGroup
	var firstErr error
	var errMu sync.Mutex

	for ch := range channels {
		wg.Add(1)
		go func(channel int) {
			defer wg.Done()
			res, err := filterChannel(channels[channel], taps, tail)
			if err != nil {
				errMu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("filtering failed on channel %d: %w", channel, err)
				}
				errMu.Unlock()
				return
			}
			out[channel] = res
		}(ch)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}

// filterSequential filters channels one by one.
func filterSequential(channels [][]float64, taps []float64, tail bool) ([][]float64, error) {
	out := make([][]float64, len(channels))
	for ch, samples := range channels {
		res, err := filterChannel(samples, taps, tail)
		if err != nil {
			return nil, fmt.Errorf("filtering failed on channel %d: %w", ch, err)
		}
		out[ch] = res
	}
	return out, nil
}

// maxValue returns the full-scale sample value for the given bit depth.
func maxValue(bitDepth int) (float64, error) {
	switch bitDepth {
	case bitsPerSample16, bitsPerSample24, bitsPerSample32:
		return float64(int64(1)<<(bitDepth-1)) - 1, nil
	default:
		return 0, fmt.Errorf("unsupported bit depth %d", bitDepth)
	}
}

// deinterleave converts interleaved int samples to per-channel float slices.
func deinterleave(data []int, numChannels int, invMaxVal float64) [][]float64 {
	frames := len(data) / numChannels
	out := make([][]float64, numChannels)
	for ch := range out {
		out[ch] = make([]float64, frames)
	}
	for i := range frames {
		base := i * numChannels
		for ch := range numChannels {
			out[ch][i] = float64(data[base+ch]) * invMaxVal
		}
	}
	return out
}

// interleave applies gain, clamps to [-1, 1] and converts back to int
// samples. It returns the number of clamped samples and the peak magnitude
// before clamping.
func interleave(channels [][]float64, gain, maxVal float64) (data []int, clipped int, peak float64) {
	if len(channels) == 0 {
		return nil, 0, 0
	}
	numChannels := len(channels)
	frames := len(channels[0])
	data = make([]int, frames*numChannels)

	for i := range frames {
		for ch := range numChannels {
			sample := channels[ch][i] * gain
			peak = math.Max(peak, math.Abs(sample))
			if sample > 1.0 {
				sample = 1.0
				clipped++
			} else if sample < -1.0 {
				sample = -1.0
				clipped++
			}
			data[i*numChannels+ch] = int(math.Round(sample * maxVal))
		}
	}
	return data, clipped, peak
}

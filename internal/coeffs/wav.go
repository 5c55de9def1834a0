package coeffs

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	wavFormatPCM = 1

	// DefaultIRSampleRate is used when saving an impulse response without a rate.
	DefaultIRSampleRate = 48000

	// DefaultIRBitDepth is the PCM bit depth for saved impulse responses.
	DefaultIRBitDepth = 24

	monoChannels = 1
)

var (
	// ErrClipping is returned when a tap cannot be represented as PCM in [-1, 1].
	ErrClipping = errors.New("coefficient outside [-1, 1] cannot be stored as PCM")

	// ErrUnsupportedWAV is returned for WAV files the loader cannot decode.
	ErrUnsupportedWAV = errors.New("unsupported WAV impulse response")
)

// LoadWAV decodes a PCM WAV impulse response into taps scaled to [-1, 1).
// Only the first channel of multi-channel files is used.
func LoadWAV(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open impulse response: %w", err)
	}
	defer func() { _ = f.Close() }()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("%s: invalid WAV file", filepath.Base(path))
	}
	if decoder.WavAudioFormat != wavFormatPCM {
		return nil, fmt.Errorf("%s: %w: audio format %d (want PCM)", filepath.Base(path), ErrUnsupportedWAV, decoder.WavAudioFormat)
	}

	bitDepth := int(decoder.BitDepth)
	switch bitDepth {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("%s: %w: %d-bit samples", filepath.Base(path), ErrUnsupportedWAV, bitDepth)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%s: decode: %w", filepath.Base(path), err)
	}

	channels := max(int(decoder.NumChans), monoChannels)
	frames := len(buf.Data) / channels
	if frames == 0 {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrEmpty)
	}

	fullScale := pcmFullScale(bitDepth)
	taps := make([]float64, frames)
	for i := range frames {
		taps[i] = float64(buf.Data[i*channels]) / fullScale
	}
	return taps, nil
}

// SaveWAV encodes taps as a mono PCM WAV impulse response. A zero sampleRate
// or bitDepth selects the defaults. Like Save, the file appears only after a
// complete write.
func SaveWAV(path string, taps []float64, sampleRate, bitDepth int) (err error) {
	if sampleRate <= 0 {
		sampleRate = DefaultIRSampleRate
	}
	if bitDepth == 0 {
		bitDepth = DefaultIRBitDepth
	}
	switch bitDepth {
	case 16, 24, 32:
	default:
		return fmt.Errorf("%w: %d-bit samples", ErrUnsupportedWAV, bitDepth)
	}

	fullScale := pcmFullScale(bitDepth)
	maxCode := fullScale - 1
	data := make([]int, len(taps))
	for i, v := range taps {
		if math.IsNaN(v) || v < -1 || v > 1 {
			return fmt.Errorf("tap %d = %v: %w", i, v, ErrClipping)
		}
		data[i] = int(math.Max(-fullScale, math.Min(maxCode, math.Round(v*fullScale))))
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	encoder := wav.NewEncoder(tmp, sampleRate, bitDepth, monoChannels, wavFormatPCM)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: monoChannels, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: bitDepth,
	}
	if err = encoder.Write(buf); err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err = encoder.Close(); err != nil {
		return fmt.Errorf("finalize %s: %w", filepath.Base(path), err)
	}
	return commitTemp(tmp, path)
}

func pcmFullScale(bitDepth int) float64 {
	return float64(int64(1) << (bitDepth - 1))
}

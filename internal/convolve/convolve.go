// Package convolve implements linear convolution of a signal with an FIR
// kernel, switching between direct SIMD convolution for short kernels and
// overlap-save FFT convolution for long ones.
package convolve

import (
	"errors"

	"github.com/tphakala/simd/c128"
	"github.com/tphakala/simd/f64"
	"gonum.org/v1/gonum/dsp/fourier"
)

const (
	// MinKernelForFFT is the kernel length from which FFT convolution is used.
	// Below it direct SIMD convolution is faster.
	MinKernelForFFT = 400

	// Smallest FFT block; grown to the next power of two ≥ 2·kernel length.
	defaultFFTBlockSize = 512

	// A real FFT of size N has N/2+1 unique coefficients.
	hermitianDivisor = 2
)

// ErrEmptyKernel is returned when convolving with an empty kernel.
var ErrEmptyKernel = errors.New("convolve: empty kernel")

// FFTConvolver performs overlap-save FFT convolution with a fixed kernel.
//
// Each block of fftSize input samples yields fftSize-kernelLen+1 valid output
// samples; the first kernelLen-1 samples of every inverse transform are
// circular wrap-around and are discarded.
type FFTConvolver struct {
	fft       *fourier.FFT
	fftSize   int
	blockSize int

	kernelFFT []complex128
	kernelLen int
	scale     float64 // gonum's inverse FFT is unnormalized

	block      []float64
	blockFFT   []complex128
	productFFT []complex128
	ifftResult []float64
}

// NewFFTConvolver transforms kernel once for reuse across calls.
func NewFFTConvolver(kernel []float64) (*FFTConvolver, error) {
	kernelLen := len(kernel)
	if kernelLen == 0 {
		return nil, ErrEmptyKernel
	}

	fftSize := defaultFFTBlockSize
	for fftSize < hermitianDivisor*kernelLen {
		fftSize *= 2
	}

	fft := fourier.NewFFT(fftSize)
	padded := make([]float64, fftSize)
	copy(padded, kernel)

	fftLen := fftSize/hermitianDivisor + 1
	return &FFTConvolver{
		fft:        fft,
		fftSize:    fftSize,
		blockSize:  fftSize - kernelLen + 1,
		kernelFFT:  fft.Coefficients(nil, padded),
		kernelLen:  kernelLen,
		scale:      1.0 / float64(fftSize),
		block:      make([]float64, fftSize),
		blockFFT:   make([]complex128, fftLen),
		productFFT: make([]complex128, fftLen),
		ifftResult: make([]float64, fftSize),
	}, nil
}

// KernelLen returns the kernel length.
func (c *FFTConvolver) KernelLen() int {
	return c.kernelLen
}

// Valid computes the valid part of the linear convolution:
//
//	dst[i] = Σ_k kernel[k] · signal[i + kernelLen-1 - k]
//
// for i in [0, len(signal)-kernelLen]. dst must hold at least that many
// samples; nothing is written when the signal is shorter than the kernel.
func (c *FFTConvolver) Valid(dst, signal []float64) {
	signalLen := len(signal)
	outputLen := signalLen - c.kernelLen + 1
	if outputLen <= 0 || len(dst) < outputLen {
		return
	}

	overlap := c.kernelLen - 1
	for outIdx := 0; outIdx < outputLen; {
		clear(c.block)
		copy(c.block, signal[outIdx:min(outIdx+c.fftSize, signalLen)])

		c.blockFFT = c.fft.Coefficients(c.blockFFT, c.block)
		c128.Mul(c.productFFT, c.blockFFT, c.kernelFFT)
		c.ifftResult = c.fft.Sequence(c.ifftResult, c.productFFT)
		f64.Scale(c.ifftResult, c.ifftResult, c.scale)

		n := min(c.blockSize, outputLen-outIdx)
		copy(dst[outIdx:outIdx+n], c.ifftResult[overlap:overlap+n])
		outIdx += n
	}
}

// Full returns the full linear convolution of signal with the kernel,
// len(signal)+kernelLen-1 samples long.
func (c *FFTConvolver) Full(signal []float64) []float64 {
	if len(signal) == 0 {
		return []float64{}
	}
	padded := zeroPad(signal, c.kernelLen-1)
	out := make([]float64, len(signal)+c.kernelLen-1)
	c.Valid(out, padded)
	return out
}

// Full returns the full linear convolution of signal and kernel, picking the
// direct or FFT method by kernel length.
func Full(signal, kernel []float64) ([]float64, error) {
	if len(kernel) == 0 {
		return nil, ErrEmptyKernel
	}
	if len(kernel) >= MinKernelForFFT {
		conv, err := NewFFTConvolver(kernel)
		if err != nil {
			return nil, err
		}
		return conv.Full(signal), nil
	}
	return Direct(signal, kernel), nil
}

// Centered returns len(signal) samples of the full convolution starting at
// the kernel's center, which removes the (len(kernel)-1)/2 sample delay of a
// linear-phase filter.
func Centered(signal, kernel []float64) ([]float64, error) {
	full, err := Full(signal, kernel)
	if err != nil {
		return nil, err
	}
	start := (len(kernel) - 1) / hermitianDivisor
	return full[start : start+len(signal)], nil
}

// Direct returns the full linear convolution computed in the time domain.
func Direct(signal, kernel []float64) []float64 {
	if len(signal) == 0 || len(kernel) == 0 {
		return []float64{}
	}
	// f64.ConvolveValid correlates, so the kernel is reversed.
	reversed := make([]float64, len(kernel))
	for i, v := range kernel {
		reversed[len(kernel)-1-i] = v
	}

	padded := zeroPad(signal, len(kernel)-1)
	out := make([]float64, len(signal)+len(kernel)-1)
	f64.ConvolveValid(out, padded, reversed)
	return out
}

// zeroPad returns s with pad zeros on both sides.
func zeroPad(s []float64, pad int) []float64 {
	out := make([]float64, len(s)+2*pad)
	copy(out[pad:], s)
	return out
}

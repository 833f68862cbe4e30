// Package waveform generates the transmitted ultrasonic pulse and its
// matched-filter kernel.
//
// The pulse is a linear frequency-modulated (LFM) chirp: the instantaneous
// frequency sweeps from StartFreq to EndFreq over the pulse duration. A Hann
// taper suppresses the spectral sidelobes that a hard-keyed tone would leak
// into neighbouring bands. The matched kernel is the time reversal of the
// chirp; correlating a received trace against it concentrates the echo energy
// into a narrow peak (pulse compression).
package waveform

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
)

// Errors returned by waveform functions.
var (
	ErrInvalidSampleRate = errors.New("waveform: sample rate must be positive")
	ErrInvalidDuration   = errors.New("waveform: duration must be positive")
	ErrInvalidFrequency  = errors.New("waveform: frequencies must be positive")
	ErrFrequencyOrder    = errors.New("waveform: start frequency must be below end frequency")
	ErrEmptyInput        = errors.New("waveform: empty input")
)

// Chirp describes a linear frequency-modulated pulse.
type Chirp struct {
	SampleRate float64 // Hz
	Duration   float64 // s
	StartFreq  float64 // Hz
	EndFreq    float64 // Hz
}

// DefaultChirp returns the reference design pulse: 1 ms sweep from
// 38 kHz to 42 kHz sampled at 200 kHz.
func DefaultChirp() Chirp {
	return Chirp{
		SampleRate: 200000,
		Duration:   0.001,
		StartFreq:  38000,
		EndFreq:    42000,
	}
}

// Validate checks that the chirp parameters are valid.
func (c Chirp) Validate() error {
	if c.SampleRate <= 0 {
		return ErrInvalidSampleRate
	}

	if c.Duration <= 0 {
		return ErrInvalidDuration
	}

	if c.StartFreq <= 0 || c.EndFreq <= 0 {
		return ErrInvalidFrequency
	}

	if c.StartFreq >= c.EndFreq {
		return ErrFrequencyOrder
	}

	return nil
}

// Bandwidth returns the swept bandwidth in Hz.
func (c Chirp) Bandwidth() float64 {
	return c.EndFreq - c.StartFreq
}

// samples returns the pulse length in samples.
func (c Chirp) samples() int {
	return int(c.SampleRate * c.Duration)
}

// Generate creates the tapered chirp samples.
//
// The instantaneous phase follows
//
//	phi(t) = 2*pi * (f0*t + 0.5*k*t^2),  k = (f1-f0)/T
//
// evaluated at samples() instants spanning [0, Duration] inclusive, and the
// cosine is multiplied by a Hann taper of the same length.
func (c Chirp) Generate() ([]float64, error) {
	err := c.Validate()
	if err != nil {
		return nil, err
	}

	n := c.samples()
	if n == 0 {
		return nil, ErrInvalidDuration
	}

	rate := c.Bandwidth() / c.Duration

	out := make([]float64, n)
	step := 0.0
	if n > 1 {
		step = c.Duration / float64(n-1)
	}
	for i := range out {
		t := float64(i) * step
		phase := 2 * math.Pi * (c.StartFreq*t + 0.5*rate*t*t)
		out[i] = math.Cos(phase)
	}

	vecmath.MulBlockInPlace(out, hann(n))
	return out, nil
}

// MatchedKernel returns the time-reversed chirp used for pulse compression.
func (c Chirp) MatchedKernel() ([]float64, error) {
	chirp, err := c.Generate()
	if err != nil {
		return nil, err
	}
	return Reverse(chirp), nil
}

// Reverse returns a time-reversed copy of x.
func Reverse(x []float64) []float64 {
	out := make([]float64, len(x))
	for i := range x {
		out[i] = x[len(x)-1-i]
	}
	return out
}

// hann returns the symmetric raised-cosine taper of length n.
func hann(n int) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}

	for i := range w {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}
	return w
}

// PeakFrequency returns the dominant spectral component of sig in Hz.
func PeakFrequency(sig []float64, sampleRate float64) (float64, error) {
	if len(sig) == 0 {
		return 0, ErrEmptyInput
	}

	if sampleRate <= 0 {
		return 0, ErrInvalidSampleRate
	}

	fftSize := nextPowerOf2(len(sig))

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return 0, fmt.Errorf("waveform: failed to create FFT plan: %w", err)
	}

	in := make([]complex128, fftSize)
	for i, v := range sig {
		in[i] = complex(v, 0)
	}

	spec := make([]complex128, fftSize)
	err = plan.Forward(spec, in)
	if err != nil {
		return 0, fmt.Errorf("waveform: forward FFT failed: %w", err)
	}

	// Non-negative-frequency bins only.
	binCount := fftSize/2 + 1
	re := make([]float64, binCount)
	im := make([]float64, binCount)
	for i := 0; i < binCount; i++ {
		re[i] = real(spec[i])
		im[i] = imag(spec[i])
	}

	mag := make([]float64, binCount)
	vecmath.Magnitude(mag, re, im)

	peakBin := 0
	peakMag := mag[0]
	for i, v := range mag {
		if v > peakMag {
			peakBin = i
			peakMag = v
		}
	}

	return float64(peakBin) * sampleRate / float64(fftSize), nil
}

// nextPowerOf2 returns the next power of 2 >= n.
func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p *= 2
	}
	return p
}

// Package snr estimates the signal-to-noise ratio of a received trace from
// two caller-chosen sample windows: one believed to contain the echo, one
// believed to contain noise only.
package snr

import (
	"errors"
	"math"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-sonar/sonar/core"
)

// Errors returned by SNR measurement.
var (
	ErrEmptyInput    = errors.New("snr: empty input")
	ErrInvalidWindow = errors.New("snr: invalid window bounds")
)

// Window is a half-open sample interval [Start, End).
type Window struct {
	Start int
	End   int
}

// Len returns the number of samples the window spans.
func (w Window) Len() int {
	return w.End - w.Start
}

// Validate checks that the window is non-empty and lies within a trace of n
// samples.
func (w Window) Validate(n int) error {
	if w.Start < 0 || w.End > n || w.Start >= w.End {
		return ErrInvalidWindow
	}
	return nil
}

// Measure returns the ratio of mean power in the signal window to mean power
// in the noise window, in dB. A noise window with zero power yields +Inf.
func Measure(trace []float64, signal, noise Window) (float64, error) {
	if len(trace) == 0 {
		return 0, ErrEmptyInput
	}
	if err := signal.Validate(len(trace)); err != nil {
		return 0, err
	}
	if err := noise.Validate(len(trace)); err != nil {
		return 0, err
	}

	signalPower := meanPower(trace[signal.Start:signal.End])
	noisePower := meanPower(trace[noise.Start:noise.End])

	if noisePower == 0 {
		return math.Inf(1), nil
	}
	return core.LinearPowerToDB(signalPower / noisePower), nil
}

// meanPower returns the average of x[i]^2.
func meanPower(x []float64) float64 {
	sq := make([]float64, len(x))
	vecmath.MulBlock(sq, x, x)

	sum := 0.0
	for _, v := range sq {
		sum += v
	}
	return sum / float64(len(x))
}

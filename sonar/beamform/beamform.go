// Package beamform implements classical delay-and-sum beamforming over the
// receiver array. Each channel is shifted to compensate the geometric delay a
// plane wave from the steering direction would incur, then all channels are
// averaged. Constructive summation occurs only when the steering direction
// matches the true arrival direction, because only then do the applied shifts
// cancel the true inter-sensor propagation-time differences.
package beamform

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-sonar/sonar/array"
	"github.com/cwbudde/algo-sonar/sonar/core"
)

// Errors returned by beamforming.
var (
	ErrEmptyInput      = errors.New("beamform: empty input")
	ErrChannelMismatch = errors.New("beamform: channel count does not match geometry")
	ErrLengthMismatch  = errors.New("beamform: channels must share one length")
	ErrNilGeometry     = errors.New("beamform: geometry must not be nil")
)

// Beamformer combines multi-channel traces under a steering hypothesis.
type Beamformer struct {
	cfg  core.Config
	geom *array.Geometry
}

// New creates a beamformer for the given configuration and geometry.
func New(cfg core.Config, geom *array.Geometry) (*Beamformer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("beamform: invalid config: %w", err)
	}
	if geom == nil {
		return nil, ErrNilGeometry
	}
	return &Beamformer{cfg: cfg, geom: geom}, nil
}

// Steer forms the delay-and-sum combination of channels for the steering
// direction (azimuth, elevation). Each channel is shifted by its geometric
// delay, quantized toward zero exactly like the simulated TDOA shifts, with
// the shared truncate-and-zero-fill edge policy; the shifted channels are
// then summed and divided by the channel count. The matching quantization in
// both paths is what lets steering at the true arrival direction recover the
// exact inter-sensor alignment.
//
// Steer is read-only with respect to channels and safe for concurrent use.
func (b *Beamformer) Steer(channels [][]float64, azimuth, elevation float64) ([]float64, error) {
	if len(channels) == 0 {
		return nil, ErrEmptyInput
	}
	if len(channels) != b.geom.Len() {
		return nil, ErrChannelMismatch
	}

	n := len(channels[0])
	if n == 0 {
		return nil, ErrEmptyInput
	}
	for _, ch := range channels {
		if len(ch) != n {
			return nil, ErrLengthMismatch
		}
	}

	delays := b.geom.SteeringDelays(azimuth, elevation, b.cfg.SpeedOfSound)

	sum := make([]float64, n)
	shifted := make([]float64, n)
	for i, ch := range channels {
		core.ShiftZeroFill(shifted, ch, int(delays[i]*b.cfg.SampleRate))
		vecmath.AddBlockInPlace(sum, shifted)
	}

	vecmath.ScaleBlockInPlace(sum, 1.0/float64(len(channels)))
	return sum, nil
}

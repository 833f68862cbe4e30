// Package echo simulates the multi-channel receive path of an active sonar:
// a chirp is transmitted, reflects off a single point target, and arrives at
// each microphone delayed by the round-trip time of flight plus the
// per-sensor time-difference-of-arrival, attenuated by an inverse-square law
// and corrupted by Gaussian noise.
package echo

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/cwbudde/algo-sonar/sonar/array"
	"github.com/cwbudde/algo-sonar/sonar/core"
	"github.com/cwbudde/algo-sonar/sonar/waveform"
)

// Errors returned by echo simulation.
var (
	ErrInvalidRange        = errors.New("echo: target range must be positive")
	ErrInvalidReflectivity = errors.New("echo: target reflectivity must be non-negative")
	ErrInvalidNoisePower   = errors.New("echo: noise power must be non-negative")
)

const defaultArraySpacing = 0.01 // 1 cm

// Target describes a point reflector in the sonar's field of view.
// Reflectivity is a radar-cross-section style scalar; the received amplitude
// follows sqrt(Reflectivity)/Range^2, a simplified propagation model.
type Target struct {
	Range        float64 // m
	Azimuth      float64 // rad, 0 = forward
	Elevation    float64 // rad, 0 = horizontal
	Reflectivity float64
}

// Simulator owns the immutable configuration of one sonar instance: the
// acoustic settings, the array geometry, and the generated chirp with its
// matched kernel. All operation methods are pure with respect to this state;
// only the injected noise source advances between calls, so Simulate with a
// non-zero noise power is not safe for concurrent use.
type Simulator struct {
	cfg    core.Config
	params waveform.Chirp
	geom   *array.Geometry
	chirp  []float64
	kernel []float64
	rng    *rand.Rand
}

// Option configures a Simulator.
type Option func(*settings)

type settings struct {
	duration  float64
	startFreq float64
	endFreq   float64
	geom      *array.Geometry
	seed      int64
}

// WithChirp sets the pulse duration and sweep band.
func WithChirp(duration, startFreq, endFreq float64) Option {
	return func(s *settings) {
		s.duration = duration
		s.startFreq = startFreq
		s.endFreq = endFreq
	}
}

// WithGeometry replaces the default 2x2 square array.
func WithGeometry(g *array.Geometry) Option {
	return func(s *settings) {
		if g != nil {
			s.geom = g
		}
	}
}

// WithSeed sets the deterministic seed for noise generation.
func WithSeed(seed int64) Option {
	return func(s *settings) {
		s.seed = seed
	}
}

// New creates a simulator from shared acoustic options plus simulator-specific
// options. The zero-argument form yields the reference design: 200 kHz
// sampling, 1 ms 38-42 kHz chirp, 1 cm square array, seed 1.
func New(coreOpts []core.Option, opts ...Option) (*Simulator, error) {
	cfg := core.ApplyOptions(coreOpts...)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("echo: invalid config: %w", err)
	}

	def := waveform.DefaultChirp()
	s := settings{
		duration:  def.Duration,
		startFreq: def.StartFreq,
		endFreq:   def.EndFreq,
		seed:      1,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}

	params := waveform.Chirp{
		SampleRate: cfg.SampleRate,
		Duration:   s.duration,
		StartFreq:  s.startFreq,
		EndFreq:    s.endFreq,
	}

	chirp, err := params.Generate()
	if err != nil {
		return nil, fmt.Errorf("echo: invalid chirp: %w", err)
	}

	geom := s.geom
	if geom == nil {
		geom, err = array.NewSquare(defaultArraySpacing)
		if err != nil {
			return nil, fmt.Errorf("echo: default geometry: %w", err)
		}
	}

	return &Simulator{
		cfg:    cfg,
		params: params,
		geom:   geom,
		chirp:  chirp,
		kernel: waveform.Reverse(chirp),
		rng:    rand.New(rand.NewSource(s.seed)),
	}, nil
}

// Config returns the acoustic configuration.
func (s *Simulator) Config() core.Config {
	return s.cfg
}

// ChirpParams returns the pulse parameters.
func (s *Simulator) ChirpParams() waveform.Chirp {
	return s.params
}

// Geometry returns the receiver array geometry.
func (s *Simulator) Geometry() *array.Geometry {
	return s.geom
}

// Chirp returns a copy of the transmitted pulse samples.
func (s *Simulator) Chirp() []float64 {
	out := make([]float64, len(s.chirp))
	copy(out, s.chirp)
	return out
}

// MatchedKernel returns a copy of the pulse-compression kernel.
func (s *Simulator) MatchedKernel() []float64 {
	out := make([]float64, len(s.kernel))
	copy(out, s.kernel)
	return out
}

// TimeVector returns the sample instants of one snapshot in seconds.
func (s *Simulator) TimeVector() []float64 {
	return s.cfg.TimeVector()
}

// Simulate produces one received snapshot for the given target: a buffer of
// one trace per sensor plus the shared time vector.
//
// The echo is written at the round-trip time-of-flight index; if the pulse
// would run past the end of the listening window the buffer stays silent (no
// target visible, not an error). Each sensor's trace is the echo shifted by
// its time-difference-of-arrival relative to sensor 0, with zero-mean
// Gaussian noise of variance noisePower added per sample. With noisePower 0
// the noise source is untouched and repeated calls are bit-identical.
func (s *Simulator) Simulate(target Target, noisePower float64) ([][]float64, []float64, error) {
	if target.Range <= 0 {
		return nil, nil, ErrInvalidRange
	}
	if target.Reflectivity < 0 {
		return nil, nil, ErrInvalidReflectivity
	}
	if noisePower < 0 {
		return nil, nil, ErrInvalidNoisePower
	}

	n := s.cfg.WindowSamples()
	t := s.cfg.TimeVector()

	tof := 2 * target.Range / s.cfg.SpeedOfSound
	amplitude := math.Sqrt(target.Reflectivity) / (target.Range * target.Range)

	template := make([]float64, n)
	start := int(tof * s.cfg.SampleRate)
	if end := start + len(s.chirp); end < n {
		for i, v := range s.chirp {
			template[start+i] = amplitude * v
		}
	}

	pos := array.Spherical(target.Range, target.Azimuth, target.Elevation)
	tdoas := s.geom.TDOAs(pos, s.cfg.SpeedOfSound)

	sigma := math.Sqrt(noisePower)
	out := make([][]float64, s.geom.Len())
	for i := range out {
		trace := make([]float64, n)
		core.ShiftZeroFill(trace, template, int(tdoas[i]*s.cfg.SampleRate))

		if noisePower > 0 {
			for j := range trace {
				trace[j] += s.rng.NormFloat64() * sigma
			}
		}

		out[i] = trace
	}

	return out, t, nil
}

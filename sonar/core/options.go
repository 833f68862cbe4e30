package core

import "errors"

// Errors returned by configuration validation.
var (
	ErrInvalidSampleRate   = errors.New("core: sample rate must be positive")
	ErrInvalidSpeedOfSound = errors.New("core: speed of sound must be positive")
	ErrInvalidMaxRange     = errors.New("core: max range must be positive")
)

// Config defines the shared acoustic processing settings.
//
// MaxRange bounds the unambiguous listening window: every simulated or
// processed snapshot spans the round-trip time [0, 2*MaxRange/SpeedOfSound)
// at SampleRate.
type Config struct {
	SampleRate   float64 // Hz
	SpeedOfSound float64 // m/s
	MaxRange     float64 // m
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns the settings of the reference ultrasonic design:
// 200 kHz sampling, sound speed at 20 degrees C, 5 m listening window.
func DefaultConfig() Config {
	return Config{
		SampleRate:   200000,
		SpeedOfSound: 343.0,
		MaxRange:     5.0,
	}
}

// WithSampleRate sets the sampling rate in Hz.
func WithSampleRate(sampleRate float64) Option {
	return func(cfg *Config) {
		if sampleRate > 0 {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithSpeedOfSound sets the propagation speed in m/s.
func WithSpeedOfSound(c float64) Option {
	return func(cfg *Config) {
		if c > 0 {
			cfg.SpeedOfSound = c
		}
	}
}

// WithMaxRange sets the maximum unambiguous range in meters.
func WithMaxRange(r float64) Option {
	return func(cfg *Config) {
		if r > 0 {
			cfg.MaxRange = r
		}
	}
}

// ApplyOptions applies zero or more options to the default config.
func ApplyOptions(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// Validate checks that all configuration fields are usable.
func (cfg Config) Validate() error {
	if cfg.SampleRate <= 0 {
		return ErrInvalidSampleRate
	}
	if cfg.SpeedOfSound <= 0 {
		return ErrInvalidSpeedOfSound
	}
	if cfg.MaxRange <= 0 {
		return ErrInvalidMaxRange
	}
	return nil
}

// WindowSamples returns the snapshot length in samples for the configured
// listening window.
func (cfg Config) WindowSamples() int {
	return int(2 * cfg.MaxRange / cfg.SpeedOfSound * cfg.SampleRate)
}

// TimeVector returns the sample instants of one snapshot in seconds.
func (cfg Config) TimeVector() []float64 {
	n := cfg.WindowSamples()
	t := make([]float64, n)
	for i := range t {
		t[i] = float64(i) / cfg.SampleRate
	}
	return t
}

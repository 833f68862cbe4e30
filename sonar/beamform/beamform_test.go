package beamform

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-sonar/internal/testutil"
	"github.com/cwbudde/algo-sonar/sonar/array"
	"github.com/cwbudde/algo-sonar/sonar/core"
)

// endfire line array along +X with spacing large enough for multi-sample
// steering delays at 200 kHz.
func lineArray(t *testing.T) *array.Geometry {
	t.Helper()
	g, err := array.New([]array.Position{
		{X: 0}, {X: 0.1}, {X: 0.2}, {X: 0.3},
	})
	if err != nil {
		t.Fatalf("array.New: %v", err)
	}
	return g
}

func TestNewValidates(t *testing.T) {
	cfg := core.DefaultConfig()

	if _, err := New(cfg, nil); !errors.Is(err, ErrNilGeometry) {
		t.Fatalf("nil geometry err = %v, want ErrNilGeometry", err)
	}

	bad := cfg
	bad.SampleRate = 0
	if _, err := New(bad, lineArray(t)); !errors.Is(err, core.ErrInvalidSampleRate) {
		t.Fatalf("invalid config err = %v, want ErrInvalidSampleRate", err)
	}
}

func TestSteerRealignsKnownArrivals(t *testing.T) {
	cfg := core.DefaultConfig()
	geom := lineArray(t)

	bf, err := New(cfg, geom)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// Build channels carrying a unit impulse, each advanced by the exact
	// steering shift for an endfire arrival (azimuth 0). Steering back at the
	// arrival direction must stack all four impulses onto one sample.
	const n = 1000
	const idx0 = 600

	delays := geom.SteeringDelays(0, 0, cfg.SpeedOfSound)
	channels := make([][]float64, geom.Len())
	for i := range channels {
		channels[i] = testutil.Impulse(n, idx0-int(delays[i]*cfg.SampleRate))
	}

	on, err := bf.Steer(channels, 0, 0)
	if err != nil {
		t.Fatalf("Steer: %v", err)
	}

	if on[idx0] != 1 {
		t.Fatalf("on-axis sum at %d = %v, want 1", idx0, on[idx0])
	}

	// Broadside steering applies no shifts, leaving the impulses scattered.
	off, err := bf.Steer(channels, math.Pi/2, 0)
	if err != nil {
		t.Fatalf("Steer: %v", err)
	}

	_, offPeak := core.PeakAbs(off)
	if offPeak != 0.25 {
		t.Fatalf("off-axis peak = %v, want 0.25", offPeak)
	}
}

func TestSteerAveragesChannels(t *testing.T) {
	cfg := core.DefaultConfig()
	geom := lineArray(t)

	bf, err := New(cfg, geom)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// Broadside arrival: zero delays for a line array on the X axis, so the
	// output is the plain channel mean.
	channels := [][]float64{
		{1, 2}, {1, 2}, {1, 2}, {5, 2},
	}

	out, err := bf.Steer(channels, math.Pi/2, 0)
	if err != nil {
		t.Fatalf("Steer: %v", err)
	}

	if out[0] != 2 || out[1] != 2 {
		t.Fatalf("out = %v, want [2 2]", out)
	}
}

func TestSteerInputValidation(t *testing.T) {
	cfg := core.DefaultConfig()
	geom := lineArray(t)

	bf, err := New(cfg, geom)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := bf.Steer(nil, 0, 0); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("empty err = %v, want ErrEmptyInput", err)
	}

	three := [][]float64{{1}, {1}, {1}}
	if _, err := bf.Steer(three, 0, 0); !errors.Is(err, ErrChannelMismatch) {
		t.Fatalf("mismatch err = %v, want ErrChannelMismatch", err)
	}

	ragged := [][]float64{{1, 2}, {1, 2}, {1, 2}, {1}}
	if _, err := bf.Steer(ragged, 0, 0); !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("ragged err = %v, want ErrLengthMismatch", err)
	}

	empty := [][]float64{{}, {}, {}, {}}
	if _, err := bf.Steer(empty, 0, 0); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("zero-length err = %v, want ErrEmptyInput", err)
	}
}

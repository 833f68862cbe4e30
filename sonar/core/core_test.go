package core

import (
	"errors"
	"math"
	"testing"
)

func TestDefaultWindowSamples(t *testing.T) {
	cfg := DefaultConfig()

	// 2 * 5 m / 343 m/s * 200 kHz, truncated.
	want := int(math.Trunc(2 * 5.0 / 343.0 * 200000))
	if got := cfg.WindowSamples(); got != want {
		t.Fatalf("WindowSamples() = %d, want %d", got, want)
	}
}

func TestTimeVector(t *testing.T) {
	cfg := ApplyOptions(WithSampleRate(1000), WithSpeedOfSound(343), WithMaxRange(0.343))

	tv := cfg.TimeVector()
	if len(tv) != cfg.WindowSamples() {
		t.Fatalf("len = %d, want %d", len(tv), cfg.WindowSamples())
	}
	if tv[0] != 0 {
		t.Fatalf("tv[0] = %v, want 0", tv[0])
	}
	if math.Abs(tv[1]-1e-3) > 1e-15 {
		t.Fatalf("tv[1] = %v, want 1e-3", tv[1])
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		want error
	}{
		{"valid", DefaultConfig(), nil},
		{"sampleRate", Config{SampleRate: 0, SpeedOfSound: 343, MaxRange: 5}, ErrInvalidSampleRate},
		{"speedOfSound", Config{SampleRate: 200000, SpeedOfSound: -1, MaxRange: 5}, ErrInvalidSpeedOfSound},
		{"maxRange", Config{SampleRate: 200000, SpeedOfSound: 343, MaxRange: 0}, ErrInvalidMaxRange},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.cfg.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("Validate() = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestOptionsIgnoreInvalidValues(t *testing.T) {
	cfg := ApplyOptions(WithSampleRate(-1), WithSpeedOfSound(0), WithMaxRange(-5))

	if cfg != DefaultConfig() {
		t.Fatalf("cfg = %+v, want defaults", cfg)
	}
}

func TestShiftZeroFillPositive(t *testing.T) {
	src := []float64{1, 2, 3, 4}
	dst := make([]float64, 4)

	ShiftZeroFill(dst, src, 2)

	want := []float64{0, 0, 1, 2}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("dst = %v, want %v", dst, want)
		}
	}
}

func TestShiftZeroFillNegative(t *testing.T) {
	src := []float64{1, 2, 3, 4}
	dst := make([]float64, 4)

	ShiftZeroFill(dst, src, -1)

	want := []float64{2, 3, 4, 0}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("dst = %v, want %v", dst, want)
		}
	}
}

func TestShiftZeroFillOverflow(t *testing.T) {
	src := []float64{1, 2, 3}

	for _, n := range []int{3, -3, 10, -10} {
		dst := []float64{9, 9, 9}
		ShiftZeroFill(dst, src, n)
		for i, v := range dst {
			if v != 0 {
				t.Fatalf("shift %d: dst[%d] = %v, want 0", n, i, v)
			}
		}
	}
}

func TestShiftZeroFillZero(t *testing.T) {
	src := []float64{1, 2, 3}
	dst := make([]float64, 3)

	ShiftZeroFill(dst, src, 0)

	for i := range src {
		if dst[i] != src[i] {
			t.Fatalf("dst = %v, want %v", dst, src)
		}
	}
}

func TestPeakAbs(t *testing.T) {
	idx, val := PeakAbs([]float64{0.5, -2, 1.5})
	if idx != 1 || val != 2 {
		t.Fatalf("PeakAbs = (%d, %v), want (1, 2)", idx, val)
	}

	// Ties resolve to the earliest index.
	idx, _ = PeakAbs([]float64{1, -1, 1})
	if idx != 0 {
		t.Fatalf("tie index = %d, want 0", idx)
	}

	idx, val = PeakAbs(nil)
	if idx != -1 || val != 0 {
		t.Fatalf("empty = (%d, %v), want (-1, 0)", idx, val)
	}
}

func TestPowerDBRoundTrip(t *testing.T) {
	if got := LinearPowerToDB(100); got != 20 {
		t.Fatalf("LinearPowerToDB(100) = %v, want 20", got)
	}
	if got := DBPowerToLinear(20); math.Abs(got-100) > 1e-9 {
		t.Fatalf("DBPowerToLinear(20) = %v, want 100", got)
	}
	if !math.IsInf(LinearPowerToDB(0), -1) {
		t.Fatal("LinearPowerToDB(0) should be -Inf")
	}
	if !math.IsNaN(LinearPowerToDB(-1)) {
		t.Fatal("LinearPowerToDB(-1) should be NaN")
	}
}

func TestNearlyEqual(t *testing.T) {
	if !NearlyEqual(1.0, 1.0+1e-13, 1e-12) {
		t.Fatal("values within eps reported unequal")
	}
	if NearlyEqual(1.0, 1.1, 1e-12) {
		t.Fatal("distant values reported equal")
	}
}

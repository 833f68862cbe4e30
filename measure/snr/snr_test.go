package snr

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/cwbudde/algo-sonar/sonar/core"
)

func TestMeasureConstantLevels(t *testing.T) {
	// Signal window at amplitude 2, noise window at amplitude 1: the power
	// ratio is exactly 4, i.e. 10*log10(4) dB.
	trace := make([]float64, 200)
	for i := 0; i < 100; i++ {
		trace[i] = 2
	}
	for i := 100; i < 200; i++ {
		trace[i] = 1
	}

	got, err := Measure(trace, Window{0, 100}, Window{100, 200})
	if err != nil {
		t.Fatalf("Measure: %v", err)
	}

	want := 10 * math.Log10(4)
	if !core.NearlyEqual(got, want, 1e-12) {
		t.Fatalf("SNR = %v dB, want %v", got, want)
	}
}

func TestMeasureGaussianLevels(t *testing.T) {
	// Two seeded Gaussian segments with standard deviations 2 and 1. The
	// expected power ratio is 4; with 4000 samples per window the estimate
	// stays well inside 1 dB of 10*log10(4).
	rng := rand.New(rand.NewSource(7))

	const n = 4000
	trace := make([]float64, 2*n)
	for i := 0; i < n; i++ {
		trace[i] = 2 * rng.NormFloat64()
	}
	for i := n; i < 2*n; i++ {
		trace[i] = rng.NormFloat64()
	}

	got, err := Measure(trace, Window{0, n}, Window{n, 2 * n})
	if err != nil {
		t.Fatalf("Measure: %v", err)
	}

	want := 10 * math.Log10(4)
	if math.Abs(got-want) > 1 {
		t.Fatalf("SNR = %v dB, want %v +/- 1", got, want)
	}
}

func TestMeasureNoiseFree(t *testing.T) {
	trace := []float64{1, 1, 0, 0}

	got, err := Measure(trace, Window{0, 2}, Window{2, 4})
	if err != nil {
		t.Fatalf("Measure: %v", err)
	}
	if !math.IsInf(got, 1) {
		t.Fatalf("SNR = %v, want +Inf", got)
	}
}

func TestMeasureValidation(t *testing.T) {
	trace := []float64{1, 2, 3, 4}

	if _, err := Measure(nil, Window{0, 1}, Window{1, 2}); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("empty trace err = %v, want ErrEmptyInput", err)
	}

	cases := []struct {
		name          string
		signal, noise Window
	}{
		{"negative start", Window{-1, 2}, Window{2, 4}},
		{"end past trace", Window{0, 2}, Window{2, 5}},
		{"empty window", Window{2, 2}, Window{0, 2}},
		{"inverted window", Window{3, 1}, Window{0, 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Measure(trace, tc.signal, tc.noise); !errors.Is(err, ErrInvalidWindow) {
				t.Fatalf("err = %v, want ErrInvalidWindow", err)
			}
		})
	}
}

func TestWindowLen(t *testing.T) {
	if got := (Window{3, 10}).Len(); got != 7 {
		t.Fatalf("Len = %d, want 7", got)
	}
}

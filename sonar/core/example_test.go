package core_test

import (
	"fmt"

	"github.com/cwbudde/algo-sonar/sonar/core"
)

func ExampleApplyOptions() {
	cfg := core.ApplyOptions(
		core.WithSampleRate(100000),
		core.WithMaxRange(2),
	)

	fmt.Printf("sampleRate=%.0f maxRange=%.0f samples=%d\n",
		cfg.SampleRate, cfg.MaxRange, cfg.WindowSamples())

	// Output:
	// sampleRate=100000 maxRange=2 samples=1166
}

func ExampleShiftZeroFill() {
	src := []float64{1, 2, 3, 4}
	dst := make([]float64, len(src))

	core.ShiftZeroFill(dst, src, 1)
	fmt.Println(dst)

	core.ShiftZeroFill(dst, src, -2)
	fmt.Println(dst)

	// Output:
	// [0 1 2 3]
	// [3 4 0 0]
}

package waveform_test

import (
	"fmt"

	"github.com/cwbudde/algo-sonar/sonar/waveform"
)

func ExampleChirp_Generate() {
	c := waveform.DefaultChirp()

	sig, err := c.Generate()
	if err != nil {
		panic(err)
	}

	peak, err := waveform.PeakFrequency(sig, c.SampleRate)
	if err != nil {
		panic(err)
	}

	fmt.Printf("samples=%d inBand=%t\n", len(sig), peak > 35000 && peak < 45000)

	// Output:
	// samples=200 inBand=true
}

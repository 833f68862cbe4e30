// Command beampattern computes the array's angular response to a simulated
// target and renders it as a heatmap PNG.
//
// Usage:
//
//	beampattern [flags]
//
// Examples:
//
//	beampattern
//	beampattern -az 20 -el 10 -resolution 50 -o pattern.png
package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/cwbudde/algo-sonar/measure/perf"
	"github.com/cwbudde/algo-sonar/sonar/detect"
	"github.com/cwbudde/algo-sonar/sonar/echo"
)

func main() {
	targetRange := flag.Float64("range", 2.0, "target range in meters")
	azimuthDeg := flag.Float64("az", 0, "target azimuth in degrees")
	elevationDeg := flag.Float64("el", 0, "target elevation in degrees")
	reflectivity := flag.Float64("rcs", 1.0, "target reflectivity")
	noisePower := flag.Float64("noise", 0, "injected noise power")
	resolution := flag.Int("resolution", 50, "grid points per angular axis")
	output := flag.String("o", "beam_pattern.png", "output PNG path")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: beampattern [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Simulates a target and maps the beamformed response over the angular\n")
		fmt.Fprintf(os.Stderr, "search window, saving the result as a heatmap PNG.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	sim, err := echo.New(nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	target := echo.Target{
		Range:        *targetRange,
		Azimuth:      *azimuthDeg * math.Pi / 180,
		Elevation:    *elevationDeg * math.Pi / 180,
		Reflectivity: *reflectivity,
	}

	grid := detect.Grid{
		AzimuthMin:   -math.Pi / 2,
		AzimuthMax:   math.Pi / 2,
		ElevationMin: -math.Pi / 4,
		ElevationMax: math.Pi / 4,
		Resolution:   *resolution,
	}

	pattern, err := perf.BeamPattern(sim, target, *noisePower, grid)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if err := savePNG(pattern, *output); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s\n", *output)
}

// patternGrid adapts a perf.Pattern to the plotter.GridXYZ interface, with
// axes in degrees.
type patternGrid struct {
	p *perf.Pattern
}

func (g patternGrid) Dims() (int, int) {
	return len(g.p.Azimuths), len(g.p.Elevations)
}

func (g patternGrid) Z(c, r int) float64 {
	return g.p.Power[r][c]
}

func (g patternGrid) X(c int) float64 {
	return g.p.Azimuths[c] * 180 / math.Pi
}

func (g patternGrid) Y(r int) float64 {
	return g.p.Elevations[r] * 180 / math.Pi
}

func savePNG(pattern *perf.Pattern, path string) error {
	hm := plotter.NewHeatMap(patternGrid{pattern}, palette.Heat(16, 1))

	p := plot.New()
	p.Title.Text = "Beam Pattern (Angular Response)"
	p.X.Label.Text = "Azimuth [deg]"
	p.Y.Label.Text = "Elevation [deg]"
	p.Add(hm)

	if err := p.Save(8*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save heatmap: %w", err)
	}
	return nil
}

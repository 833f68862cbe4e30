// Package detect locates echo sources by exhaustive angular grid search.
//
// Every channel is pulse-compressed against the matched kernel once; then
// for each (azimuth, elevation) cell of the search grid the detector steers
// the delay-and-sum beamformer across the compressed channels and records
// the absolute peak of the combined trace. The cell with the strongest peak
// wins; the peak's sample index converted through the two-way propagation
// model gives the range estimate.
package detect

import (
	"errors"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-sonar/sonar/array"
	"github.com/cwbudde/algo-sonar/sonar/beamform"
	"github.com/cwbudde/algo-sonar/sonar/core"
)

// Errors returned by detection.
var (
	ErrInvalidGrid    = errors.New("detect: invalid search grid")
	ErrInvalidWorkers = errors.New("detect: worker count must be positive")
)

// Grid describes the angular search window, in radians. Each axis is sampled
// at Resolution evenly spaced points including both endpoints.
type Grid struct {
	AzimuthMin   float64
	AzimuthMax   float64
	ElevationMin float64
	ElevationMax float64
	Resolution   int
}

// DefaultGrid covers the forward hemisphere: azimuth in [-pi/2, pi/2],
// elevation in [-pi/4, pi/4], 20 points per axis.
func DefaultGrid() Grid {
	return Grid{
		AzimuthMin:   -math.Pi / 2,
		AzimuthMax:   math.Pi / 2,
		ElevationMin: -math.Pi / 4,
		ElevationMax: math.Pi / 4,
		Resolution:   20,
	}
}

// Validate checks the grid bounds and resolution.
func (g Grid) Validate() error {
	if g.Resolution < 1 {
		return ErrInvalidGrid
	}
	if g.AzimuthMin > g.AzimuthMax || g.ElevationMin > g.ElevationMax {
		return ErrInvalidGrid
	}
	return nil
}

// Azimuths returns the sampled azimuth axis.
func (g Grid) Azimuths() []float64 {
	return axis(g.AzimuthMin, g.AzimuthMax, g.Resolution)
}

// Elevations returns the sampled elevation axis.
func (g Grid) Elevations() []float64 {
	return axis(g.ElevationMin, g.ElevationMax, g.Resolution)
}

// axis returns the sampled points of one grid axis.
func axis(min, max float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = min
		return out
	}

	step := (max - min) / float64(n-1)
	for i := range out {
		out[i] = min + float64(i)*step
	}
	return out
}

// Result is a single detection.
type Result struct {
	Range     float64 // m
	Azimuth   float64 // rad
	Elevation float64 // rad
	Peak      float64 // absolute peak of the winning compressed trace
	PeakIndex int     // sample index of the peak
	Trace     []float64
}

// Option configures a detector.
type Option func(*Detector) error

// WithWorkers sets the number of goroutines evaluating grid cells.
// The default is runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(d *Detector) error {
		if n <= 0 {
			return ErrInvalidWorkers
		}
		d.workers = n
		return nil
	}
}

// Detector runs the beamform-compress-peak search over an angular grid.
type Detector struct {
	cfg     core.Config
	kernel  []float64
	bf      *beamform.Beamformer
	workers int
}

// New creates a detector for the given configuration, receiver geometry, and
// matched-filter kernel.
func New(cfg core.Config, geom *array.Geometry, kernel []float64, opts ...Option) (*Detector, error) {
	if len(kernel) == 0 {
		return nil, ErrEmptyKernel
	}

	bf, err := beamform.New(cfg, geom)
	if err != nil {
		return nil, err
	}

	d := &Detector{
		cfg:     cfg,
		kernel:  append([]float64(nil), kernel...),
		bf:      bf,
		workers: runtime.NumCPU(),
	}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// cellPeak is the outcome of evaluating one grid cell.
type cellPeak struct {
	index int
	value float64
}

// Detect searches the grid for the single strongest echo in channels and
// returns its estimated range, azimuth, and elevation.
//
// The search is deterministic regardless of worker count: every cell's peak
// is recorded, then the winner is chosen in scan order (azimuth outer,
// elevation inner), keeping the earlier cell on exact ties.
func (d *Detector) Detect(channels [][]float64, grid Grid) (Result, error) {
	if err := grid.Validate(); err != nil {
		return Result{}, err
	}
	if len(channels) == 0 || len(channels[0]) == 0 {
		return Result{}, beamform.ErrEmptyInput
	}

	comp, err := NewCompressor(d.kernel, len(channels[0]))
	if err != nil {
		return Result{}, err
	}
	compressed, err := comp.CompressAll(channels)
	if err != nil {
		return Result{}, err
	}

	azimuths := grid.Azimuths()
	elevations := grid.Elevations()

	cells := len(azimuths) * len(elevations)
	peaks := make([]cellPeak, cells)

	// Buffered and fully enqueued before the workers start, so a worker
	// failing early can never leave the feeder blocked.
	jobs := make(chan int, cells)
	for cell := 0; cell < cells; cell++ {
		jobs <- cell
	}
	close(jobs)

	var g errgroup.Group
	for w := 0; w < d.workers; w++ {
		g.Go(func() error {
			for cell := range jobs {
				az := azimuths[cell/len(elevations)]
				el := elevations[cell%len(elevations)]

				trace, err := d.bf.Steer(compressed, az, el)
				if err != nil {
					return err
				}

				idx, val := core.PeakAbs(trace)
				peaks[cell] = cellPeak{index: idx, value: val}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Result{}, fmt.Errorf("detect: grid search failed: %w", err)
	}

	best := 0
	for cell := 1; cell < cells; cell++ {
		if peaks[cell].value > peaks[best].value {
			best = cell
		}
	}

	az := azimuths[best/len(elevations)]
	el := elevations[best%len(elevations)]

	// Re-steer the winning cell to recover its trace; cheaper than holding
	// every cell's trace during the search.
	trace, err := d.bf.Steer(compressed, az, el)
	if err != nil {
		return Result{}, err
	}

	peak := peaks[best]
	return Result{
		Range:     float64(peak.index) / d.cfg.SampleRate * d.cfg.SpeedOfSound / 2,
		Azimuth:   az,
		Elevation: el,
		Peak:      peak.value,
		PeakIndex: peak.index,
		Trace:     trace,
	}, nil
}


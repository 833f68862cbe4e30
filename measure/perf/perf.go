// Package perf characterizes detection performance: angular beam-pattern
// maps, parameter sweeps, and repeated-trial statistics across noise levels.
package perf

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/cwbudde/algo-sonar/measure/snr"
	"github.com/cwbudde/algo-sonar/sonar/beamform"
	"github.com/cwbudde/algo-sonar/sonar/core"
	"github.com/cwbudde/algo-sonar/sonar/detect"
	"github.com/cwbudde/algo-sonar/sonar/echo"
)

// Errors returned by performance analysis.
var (
	ErrNilSimulator = errors.New("perf: simulator must not be nil")
	ErrNoValues     = errors.New("perf: at least one parameter value required")
	ErrNoTrials     = errors.New("perf: trial count must be positive")
	ErrUnknownParam = errors.New("perf: unknown sweep parameter")
)

// noise power injected during sweeps of non-noise parameters
const sweepNoisePower = 0.01

// Pattern is an angular response map: Power[j][i] is the compressed beam
// power steering at (Azimuths[i], Elevations[j]).
type Pattern struct {
	Azimuths   []float64
	Elevations []float64
	Power      [][]float64
}

// BeamPattern maps the array's angular response to a single simulated target.
// The multi-channel capture is pulse-compressed once per channel, then the
// beamformer scans every grid cell and records the absolute peak of the
// combined trace.
func BeamPattern(sim *echo.Simulator, target echo.Target, noisePower float64, grid detect.Grid) (*Pattern, error) {
	if sim == nil {
		return nil, ErrNilSimulator
	}
	if err := grid.Validate(); err != nil {
		return nil, err
	}

	channels, _, err := sim.Simulate(target, noisePower)
	if err != nil {
		return nil, err
	}

	comp, err := detect.NewCompressor(sim.MatchedKernel(), len(channels[0]))
	if err != nil {
		return nil, err
	}
	compressed, err := comp.CompressAll(channels)
	if err != nil {
		return nil, err
	}

	bf, err := beamform.New(sim.Config(), sim.Geometry())
	if err != nil {
		return nil, err
	}

	pattern := &Pattern{
		Azimuths:   grid.Azimuths(),
		Elevations: grid.Elevations(),
	}

	pattern.Power = make([][]float64, len(pattern.Elevations))
	for j, el := range pattern.Elevations {
		row := make([]float64, len(pattern.Azimuths))
		for i, az := range pattern.Azimuths {
			combined, err := bf.Steer(compressed, az, el)
			if err != nil {
				return nil, err
			}
			_, peak := core.PeakAbs(combined)
			row[i] = peak
		}
		pattern.Power[j] = row
	}
	return pattern, nil
}

// Param selects the quantity varied by Sweep.
type Param int

const (
	// ParamChirpDuration varies the pulse duration in seconds.
	ParamChirpDuration Param = iota

	// ParamChirpBandwidth varies the swept bandwidth in Hz, keeping the
	// center frequency fixed.
	ParamChirpBandwidth

	// ParamNoisePower varies the injected noise power.
	ParamNoisePower
)

// SweepPoint is the detection error observed at one parameter value.
// Error is the range error plus the range-weighted angular error, in meters.
type SweepPoint struct {
	Value float64
	Error float64
}

// Sweep measures detection error while varying one parameter. Chirp
// parameters rebuild the simulator per value; the noise parameter reuses the
// base simulator. All simulations run against the same target and search
// grid.
func Sweep(sim *echo.Simulator, param Param, values []float64, target echo.Target, grid detect.Grid) ([]SweepPoint, error) {
	if sim == nil {
		return nil, ErrNilSimulator
	}
	if len(values) == 0 {
		return nil, ErrNoValues
	}
	if err := grid.Validate(); err != nil {
		return nil, err
	}

	cfg := sim.Config()
	params := sim.ChirpParams()
	coreOpts := []core.Option{
		core.WithSampleRate(cfg.SampleRate),
		core.WithSpeedOfSound(cfg.SpeedOfSound),
		core.WithMaxRange(cfg.MaxRange),
	}

	points := make([]SweepPoint, 0, len(values))
	for _, value := range values {
		testSim := sim
		noisePower := sweepNoisePower

		switch param {
		case ParamChirpDuration:
			s, err := echo.New(coreOpts,
				echo.WithChirp(value, params.StartFreq, params.EndFreq),
				echo.WithGeometry(sim.Geometry()))
			if err != nil {
				return nil, fmt.Errorf("perf: duration %v: %w", value, err)
			}
			testSim = s
		case ParamChirpBandwidth:
			center := (params.StartFreq + params.EndFreq) / 2
			s, err := echo.New(coreOpts,
				echo.WithChirp(params.Duration, center-value/2, center+value/2),
				echo.WithGeometry(sim.Geometry()))
			if err != nil {
				return nil, fmt.Errorf("perf: bandwidth %v: %w", value, err)
			}
			testSim = s
		case ParamNoisePower:
			noisePower = value
		default:
			return nil, ErrUnknownParam
		}

		res, err := runDetection(testSim, target, noisePower, grid)
		if err != nil {
			return nil, err
		}

		points = append(points, SweepPoint{
			Value: value,
			Error: detectionError(res, target),
		})
	}
	return points, nil
}

// Stats aggregates repeated detections at one noise level.
type Stats struct {
	NoisePower    float64
	DetectionRate float64
	RangeRMSE     float64 // m, +Inf when nothing was detected
	AngleRMSE     float64 // rad, +Inf when nothing was detected
	MeanSNR       float64 // dB, measured on the reference channel
}

// Trials runs count randomized detections of target at each noise level and
// aggregates detection rate, range and angle RMSE, and mean received SNR.
// Randomization comes from the simulator's noise source advancing between
// trials.
func Trials(sim *echo.Simulator, target echo.Target, noiseLevels []float64, count int, grid detect.Grid) ([]Stats, error) {
	if sim == nil {
		return nil, ErrNilSimulator
	}
	if count <= 0 {
		return nil, ErrNoTrials
	}
	if len(noiseLevels) == 0 {
		return nil, ErrNoValues
	}
	if err := grid.Validate(); err != nil {
		return nil, err
	}

	cfg := sim.Config()
	det, err := detect.New(cfg, sim.Geometry(), sim.MatchedKernel())
	if err != nil {
		return nil, err
	}

	all := make([]Stats, 0, len(noiseLevels))
	for _, noisePower := range noiseLevels {
		var rangeSq, angleSq, snrs []float64
		detections := 0

		for trial := 0; trial < count; trial++ {
			channels, _, err := sim.Simulate(target, noisePower)
			if err != nil {
				return nil, err
			}

			value, err := receivedSNR(channels[0], target, cfg)
			if err != nil {
				return nil, err
			}
			snrs = append(snrs, value)

			res, err := det.Detect(channels, grid)
			if err != nil {
				// A failed trial counts against the detection rate.
				continue
			}

			rangeErr := res.Range - target.Range
			angleErr := angularDistance(res, target)
			rangeSq = append(rangeSq, rangeErr*rangeErr)
			angleSq = append(angleSq, angleErr*angleErr)
			detections++
		}

		stats := Stats{
			NoisePower:    noisePower,
			DetectionRate: float64(detections) / float64(count),
			RangeRMSE:     math.Inf(1),
			AngleRMSE:     math.Inf(1),
			MeanSNR:       stat.Mean(snrs, nil),
		}
		if detections > 0 {
			stats.RangeRMSE = math.Sqrt(stat.Mean(rangeSq, nil))
			stats.AngleRMSE = math.Sqrt(stat.Mean(angleSq, nil))
		}
		all = append(all, stats)
	}
	return all, nil
}

// runDetection simulates one capture and runs the grid search on it.
func runDetection(sim *echo.Simulator, target echo.Target, noisePower float64, grid detect.Grid) (detect.Result, error) {
	channels, _, err := sim.Simulate(target, noisePower)
	if err != nil {
		return detect.Result{}, err
	}

	det, err := detect.New(sim.Config(), sim.Geometry(), sim.MatchedKernel())
	if err != nil {
		return detect.Result{}, err
	}
	return det.Detect(channels, grid)
}

// detectionError combines range and angular error into one figure of merit:
// the absolute range error plus the Euclidean angular error scaled by the
// true range, both in meters.
func detectionError(res detect.Result, target echo.Target) float64 {
	rangeErr := math.Abs(res.Range - target.Range)
	return rangeErr + angularDistance(res, target)*target.Range
}

// angularDistance is the Euclidean distance in (azimuth, elevation) space.
func angularDistance(res detect.Result, target echo.Target) float64 {
	dAz := res.Azimuth - target.Azimuth
	dEl := res.Elevation - target.Elevation
	return math.Sqrt(dAz*dAz + dEl*dEl)
}

// receivedSNR measures the reference channel SNR with a signal window around
// the expected echo peak and a noise window at the head of the trace.
func receivedSNR(trace []float64, target echo.Target, cfg core.Config) (float64, error) {
	n := len(trace)
	peakIdx := int(2 * target.Range / cfg.SpeedOfSound * cfg.SampleRate)

	signalWin := snr.Window{Start: max(0, peakIdx-50), End: min(n, peakIdx+50)}
	noiseWin := snr.Window{Start: 0, End: min(1000, n/10)}
	return snr.Measure(trace, signalWin, noiseWin)
}

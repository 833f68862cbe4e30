// Package array models the receiver microphone array: fixed 3-D sensor
// positions, the spherical target parameterisation, and the per-sensor
// steering delays used by the beamformer.
//
// Sensor index 0 is the designated time reference: all relative delays
// (simulated time-differences-of-arrival as well as steering delays) are
// expressed against it.
package array

import (
	"errors"
	"math"
)

// Errors returned by geometry construction.
var (
	ErrTooFewSensors      = errors.New("array: at least two sensors required")
	ErrDuplicatePositions = errors.New("array: sensor positions must be distinct")
	ErrInvalidSpacing     = errors.New("array: spacing must be positive")
)

// Position is a point in 3-D space, in meters.
type Position struct {
	X, Y, Z float64
}

// Sub returns p - q.
func (p Position) Sub(q Position) Position {
	return Position{p.X - q.X, p.Y - q.Y, p.Z - q.Z}
}

// Dot returns the scalar product of p and q.
func (p Position) Dot(q Position) float64 {
	return p.X*q.X + p.Y*q.Y + p.Z*q.Z
}

// Norm returns the Euclidean length of p.
func (p Position) Norm() float64 {
	return math.Sqrt(p.Dot(p))
}

// Direction returns the unit vector pointing toward (azimuth, elevation).
// Azimuth 0 is forward along +X, elevation 0 is horizontal.
func Direction(azimuth, elevation float64) Position {
	cosEl := math.Cos(elevation)
	return Position{
		X: cosEl * math.Cos(azimuth),
		Y: cosEl * math.Sin(azimuth),
		Z: math.Sin(elevation),
	}
}

// Spherical maps (range, azimuth, elevation) to Cartesian coordinates.
func Spherical(rangeM, azimuth, elevation float64) Position {
	u := Direction(azimuth, elevation)
	return Position{u.X * rangeM, u.Y * rangeM, u.Z * rangeM}
}

// Geometry is an immutable, ordered set of sensor positions.
type Geometry struct {
	positions []Position
}

// New builds a geometry from explicit sensor positions.
// At least two distinct positions are required.
func New(positions []Position) (*Geometry, error) {
	if len(positions) < 2 {
		return nil, ErrTooFewSensors
	}

	for i := range positions {
		for j := i + 1; j < len(positions); j++ {
			if positions[i] == positions[j] {
				return nil, ErrDuplicatePositions
			}
		}
	}

	g := &Geometry{positions: make([]Position, len(positions))}
	copy(g.positions, positions)
	return g, nil
}

// NewSquare builds the default 2x2 planar array in the z=0 plane with the
// given edge spacing in meters.
func NewSquare(spacing float64) (*Geometry, error) {
	if spacing <= 0 {
		return nil, ErrInvalidSpacing
	}

	h := spacing / 2
	return New([]Position{
		{-h, -h, 0},
		{h, -h, 0},
		{-h, h, 0},
		{h, h, 0},
	})
}

// Len returns the number of sensors.
func (g *Geometry) Len() int {
	return len(g.positions)
}

// Position returns the position of sensor i.
func (g *Geometry) Position(i int) Position {
	return g.positions[i]
}

// Positions returns a copy of all sensor positions.
func (g *Geometry) Positions() []Position {
	out := make([]Position, len(g.positions))
	copy(out, g.positions)
	return out
}

// SteeringDelays returns the geometric delay of each sensor for a plane wave
// arriving from (azimuth, elevation), in seconds, normalized so that the
// reference sensor 0 has delay zero.
func (g *Geometry) SteeringDelays(azimuth, elevation, speedOfSound float64) []float64 {
	u := Direction(azimuth, elevation)

	delays := make([]float64, len(g.positions))
	for i, p := range g.positions {
		delays[i] = p.Dot(u) / speedOfSound
	}

	ref := delays[0]
	for i := range delays {
		delays[i] -= ref
	}
	return delays
}

// TDOAs returns the time-difference-of-arrival of each sensor for a point
// source at target, in seconds, relative to the reference sensor 0.
func (g *Geometry) TDOAs(target Position, speedOfSound float64) []float64 {
	refDist := target.Sub(g.positions[0]).Norm()

	tdoas := make([]float64, len(g.positions))
	for i, p := range g.positions {
		tdoas[i] = (target.Sub(p).Norm() - refDist) / speedOfSound
	}
	return tdoas
}

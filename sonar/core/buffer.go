package core

import "math"

// ShiftZeroFill writes src shifted by n samples into dst. A positive n delays
// the signal (samples move toward higher indices), a negative n advances it.
// Samples shifted past either edge are dropped and vacated positions are
// zero-filled. Shifts of at least len(src) leave dst all zero; this silent
// truncation is the single edge policy shared by echo synthesis and
// beamforming, so detection behaviour stays reproducible.
//
// dst and src must have the same length and must not overlap.
func ShiftZeroFill(dst, src []float64, n int) {
	for i := range dst {
		dst[i] = 0
	}

	if n >= len(src) || -n >= len(src) {
		return
	}

	if n >= 0 {
		copy(dst[n:], src[:len(src)-n])
		return
	}

	copy(dst[:len(src)+n], src[-n:])
}

// PeakAbs returns the index and value of the largest absolute amplitude.
// Earlier samples win ties. Returns (-1, 0) for empty input.
func PeakAbs(x []float64) (index int, value float64) {
	if len(x) == 0 {
		return -1, 0
	}

	index = 0
	value = math.Abs(x[0])

	for i, v := range x {
		av := math.Abs(v)
		if av > value {
			index = i
			value = av
		}
	}

	return index, value
}

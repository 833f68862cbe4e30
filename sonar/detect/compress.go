package detect

import (
	"errors"
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
)

// Errors returned by pulse compression.
var (
	ErrEmptyKernel    = errors.New("detect: empty kernel")
	ErrEmptyInput     = errors.New("detect: empty input")
	ErrInvalidLength  = errors.New("detect: trace length must be positive")
	ErrLengthMismatch = errors.New("detect: trace length does not match compressor")
)

// Compressor performs matched-filter pulse compression of fixed-length
// traces. The filter spectrum and FFT plan are computed once at construction
// and reused across traces.
//
// The output is the centered cross-correlation of the trace against the
// kernel, trimmed to the trace length:
//
//	out[n] = sum_m trace[n+m-offset] * kernel[m],  offset = len(kernel)-1-(len(kernel)-1)/2
//
// computed as the convolution of the trace with the time-reversed kernel.
// An echo beginning at sample d peaks near d plus half the pulse length.
type Compressor struct {
	kernelLen  int
	traceLen   int
	fftSize    int
	plan       *algofft.Plan[complex128]
	filterSpec []complex128

	// scratch buffers, reused between calls
	in   []complex128
	spec []complex128
	out  []complex128
}

// NewCompressor builds a compressor for traces of exactly traceLen samples
// using the given matched-filter kernel.
func NewCompressor(kernel []float64, traceLen int) (*Compressor, error) {
	if len(kernel) == 0 {
		return nil, ErrEmptyKernel
	}
	if traceLen <= 0 {
		return nil, ErrInvalidLength
	}

	fftSize := nextPowerOf2(traceLen + len(kernel) - 1)

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("detect: failed to create FFT plan: %w", err)
	}

	// Correlation against the kernel is convolution with its reversal.
	padded := make([]complex128, fftSize)
	for i, v := range kernel {
		padded[len(kernel)-1-i] = complex(v, 0)
	}

	filterSpec := make([]complex128, fftSize)
	err = plan.Forward(filterSpec, padded)
	if err != nil {
		return nil, fmt.Errorf("detect: forward FFT failed: %w", err)
	}

	return &Compressor{
		kernelLen:  len(kernel),
		traceLen:   traceLen,
		fftSize:    fftSize,
		plan:       plan,
		filterSpec: filterSpec,
		in:         make([]complex128, fftSize),
		spec:       make([]complex128, fftSize),
		out:        make([]complex128, fftSize),
	}, nil
}

// TraceLen returns the trace length the compressor was sized for.
func (c *Compressor) TraceLen() int {
	return c.traceLen
}

// Compress filters trace against the kernel and returns the centered
// compression result with len(trace) samples.
//
// Compress reuses internal scratch buffers and is not safe for concurrent
// use; create one compressor per goroutine.
func (c *Compressor) Compress(trace []float64) ([]float64, error) {
	if len(trace) == 0 {
		return nil, ErrEmptyInput
	}
	if len(trace) != c.traceLen {
		return nil, ErrLengthMismatch
	}

	for i := range c.in {
		c.in[i] = 0
	}
	for i, v := range trace {
		c.in[i] = complex(v, 0)
	}

	err := c.plan.Forward(c.spec, c.in)
	if err != nil {
		return nil, fmt.Errorf("detect: forward FFT failed: %w", err)
	}

	for i := range c.spec {
		c.spec[i] *= c.filterSpec[i]
	}

	err = c.plan.Inverse(c.out, c.spec)
	if err != nil {
		return nil, fmt.Errorf("detect: inverse FFT failed: %w", err)
	}

	// Center the full convolution on the trace.
	start := (c.kernelLen - 1) / 2
	result := make([]float64, c.traceLen)
	for i := range result {
		result[i] = real(c.out[start+i])
	}
	return result, nil
}

// CompressAll compresses every channel in turn.
func (c *Compressor) CompressAll(channels [][]float64) ([][]float64, error) {
	if len(channels) == 0 {
		return nil, ErrEmptyInput
	}

	out := make([][]float64, len(channels))
	for i, ch := range channels {
		compressed, err := c.Compress(ch)
		if err != nil {
			return nil, fmt.Errorf("detect: channel %d: %w", i, err)
		}
		out[i] = compressed
	}
	return out, nil
}

// nextPowerOf2 returns the next power of 2 >= n.
func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p *= 2
	}
	return p
}

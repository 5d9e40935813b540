package rate

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

type BandWidth interface {
	BandWidth(spikeT []float64) float64
}

// LatencyBandWidth picks the kernel width for pooled spike latencies with
// the normal reference rule C * spread * n^-1/5, scaled by adjust and kept
// between one grid step and half of the event window.
type LatencyBandWidth struct {
	kernel Kernel
	adjust float64

	minBw float64
	maxBw float64
}

func NewLatencyBandWidth(kernel Kernel, window float64, gridSize int, adjust float64) *LatencyBandWidth {
	if kernel == nil {
		kernel = NewGaussianKernel()
	}
	if adjust <= 0 {
		adjust = 1
	}
	if gridSize < 1 {
		gridSize = RateMinGridSize
	}
	return &LatencyBandWidth{
		kernel: kernel,
		adjust: adjust,
		minBw:  window / float64(gridSize),
		maxBw:  window * MaxBandWidthFraction,
	}
}

// BandWidth expects sorted latencies.
func (b *LatencyBandWidth) BandWidth(spikeT []float64) float64 {
	if len(spikeT) < 2 {
		return b.minBw
	}
	bw := b.kernel.NormalReferenceConstant() * latencySpread(spikeT) *
		math.Pow(float64(len(spikeT)), -0.2) * b.adjust

	switch {
	case !(bw > b.minBw):
		// all latencies equal, or narrower than the grid can show
		return b.minBw
	case bw > b.maxBw:
		return b.maxBw
	}
	return bw
}

// latencySpread is the smaller of the std-dev and the normalized
// inter-quartile range, a zero range (over half the spikes at one latency)
// falls back to the std-dev.
func latencySpread(spikeT []float64) float64 {
	const iqrToSigma = 1.349

	stdDev := stat.StdDev(spikeT, nil)
	iqr := stat.Quantile(0.75, stat.Empirical, spikeT, nil) - stat.Quantile(0.25, stat.Empirical, spikeT, nil)
	if iqr <= 0 {
		return stdDev
	}
	return math.Min(stdDev, iqr/iqrToSigma)
}

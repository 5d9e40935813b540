package rate

const (
	RateMinSpikeCnt = 3
	RateMinGridSize = 100

	// gauss-legendre points per grid cell
	QuadPointCnt = 50

	// upper bound of the kernel width, in event windows
	MaxBandWidthFraction = 0.5

	// fraction of the in-window spikes used for the median latency
	MedianLatencyQuantile = 0.5
)

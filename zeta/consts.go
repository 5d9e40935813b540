package zeta

const (
	DefaultResampleCount  = 100
	DefaultJitterSize     = 2.0
	DefaultStitch         = true
	DefaultDirectQuantile = false

	// spikes further than this many jittered windows from the events are dropped
	ReduceWindowFactor = 5.0

	// curves and spike sets with fewer points are not analysed
	MinSpikeCnt = 3

	// vpa(eulergamma)
	EulerMascheroni = 0.5772156649015328606065120900824
)

package zeta

import (
	"math"

	"github.com/uyouii/zeta-algorithms/model"
	"github.com/uyouii/zeta-algorithms/utils"
)

// BuildDeviationCurve turns windowed, trial-relative spike times (including
// the 0 and window sentinels) into the mean-centered deviation of their
// empirical cumulative fraction from the linear expectation.
// The input is not modified.
func BuildDeviationCurve(spikesInTrial []float64, window float64) model.DeviationCurve {
	spikeT := uniqueSorted(separateDuplicates(spikesInTrial))
	n := len(spikeT)

	fracs := make([]float64, n)
	fracLinear := make([]float64, n)
	deviation := make([]float64, n)
	for i, t := range spikeT {
		fracs[i] = float64(i+1) / float64(n)
		fracLinear[i] = t / window
		deviation[i] = fracs[i] - fracLinear[i]
	}
	meanCenter(deviation)

	return model.DeviationCurve{
		Time:           spikeT,
		Fraction:       fracs,
		LinearFraction: fracLinear,
		Deviation:      deviation,
	}
}

// GetTempOffsetOne windows the spikes around the events and builds the
// deviation curve of the result.
func GetTempOffsetOne(spikeTimes []float64, eventTimes []float64, window float64) model.DeviationCurve {
	return BuildDeviationCurve(GetSpikeT(spikeTimes, eventTimes, window), window)
}

// separateDuplicates returns a sorted copy in which every group of k
// identical values is spread over k adjacent representable floats centered
// on the original value, so ranks stay distinct and ordered.
func separateDuplicates(values []float64) []float64 {
	res := utils.SortedCopy(values)
	for start := 0; start < len(res); {
		end := start + 1
		for end < len(res) && res[end] == res[start] {
			end++
		}
		if k := end - start; k > 1 {
			v := res[start]
			for j := 0; j < k; j++ {
				res[start+j] = nudge(v, j-k/2)
			}
		}
		start = end
	}
	return res
}

// nudge moves v by steps representable floats, negative steps move down.
func nudge(v float64, steps int) float64 {
	dir := math.Inf(1)
	if steps < 0 {
		dir = math.Inf(-1)
		steps = -steps
	}
	for i := 0; i < steps; i++ {
		v = math.Nextafter(v, dir)
	}
	return v
}

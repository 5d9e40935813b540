package zeta

import (
	"sort"

	"github.com/uyouii/zeta-algorithms/utils"
)

// RelativeSpikeTimes returns, per event, the spikes in the open window
// (onset, onset+window) shifted to be relative to the onset.
func RelativeSpikeTimes(spikeTimes []float64, eventTimes []float64, window float64) [][]float64 {
	sorted := spikeTimes
	if !sort.Float64sAreSorted(sorted) {
		sorted = utils.SortedCopy(spikeTimes)
	}

	res := make([][]float64, len(eventTimes))
	for i, startT := range eventTimes {
		stopT := startT + window
		lo := firstAbove(sorted, startT)
		hi := firstAtLeast(sorted, stopT)
		trial := []float64{}
		for j := lo; j < hi; j++ {
			trial = append(trial, sorted[j]-startT)
		}
		res[i] = trial
	}
	return res
}

// GetSpikeT concatenates all trial windows into one sorted vector of
// trial-relative spike times, anchored by a 0 and a window sentinel.
func GetSpikeT(spikeTimes []float64, eventTimes []float64, window float64) []float64 {
	trials := RelativeSpikeTimes(spikeTimes, eventTimes, window)

	total := 0
	for _, trial := range trials {
		total += len(trial)
	}

	res := make([]float64, 0, total+2)
	for _, trial := range trials {
		res = append(res, trial...)
	}
	sort.Float64s(res)

	res = append([]float64{0}, res...)
	res = append(res, window)
	return res
}

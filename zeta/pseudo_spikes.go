package zeta

import (
	"sort"

	"github.com/uyouii/zeta-algorithms/utils"
)

// GetPseudoSpikeVectors stitches the event windows into one continuous
// pseudo recording. Each spike is used at most once: when trials overlap the
// pseudo event cursor only advances by the real gap, otherwise by a full
// window. Unless discardEdges is set, the first and last trial absorb the
// spikes before and after them.
// A trial's range ends before the first spike past onset+window; that spike
// is not carried into the trial, so it can not reappear in the next one.
// Returns the sorted pseudo spike times and one pseudo event time per
// (sorted) event.
func GetPseudoSpikeVectors(spikeTimes []float64, eventTimes []float64,
	window float64, discardEdges bool) ([]float64, []float64) {
	spikes := utils.SortedCopy(spikeTimes)
	events := utils.SortedCopy(eventTimes)

	sampleCnt, trialCnt := len(spikes), len(events)

	fragments := make([][]float64, 0, trialCnt+2)
	pseudoEvents := make([]float64, trialCnt)
	pseudoEventT := 0.0
	lastUsedSample := -1
	firstSample := -1
	pseudoT0 := 0.0

	for trial, eventT := range events {
		// 1. eligible samples, [startSample, endSample)
		startSample := firstAtLeast(spikes, eventT)
		endSample := firstAbove(spikes, eventT+window)

		// 2. edge trials take everything before / after them
		if startSample < endSample && !discardEdges {
			if trial == 0 {
				startSample = 0
			}
			if trial == trialCnt-1 {
				endSample = sampleCnt
			}
		}

		// 3. never reuse a sample of an earlier trial
		if startSample <= lastUsedSample {
			startSample = lastUsedSample + 1
		}

		// 4. move the pseudo event cursor
		if trial > 0 {
			gap := eventT - events[trial-1]
			if window > gap {
				pseudoEventT += gap
			} else {
				pseudoEventT += window
			}
		}

		if startSample < endSample {
			lastUsedSample = endSample - 1
			local := make([]float64, 0, endSample-startSample)
			for j := startSample; j < endSample; j++ {
				local = append(local, spikes[j]-eventT+pseudoEventT)
			}
			fragments = append(fragments, local)

			if firstSample < 0 {
				firstSample = startSample
				pseudoT0 = pseudoEventT
			}
		}
		pseudoEvents[trial] = pseudoEventT
	}

	if !discardEdges && firstSample > 0 {
		// spacing kept, ending right before the first used spike
		begin := make([]float64, 0, firstSample)
		for j := 0; j < firstSample; j++ {
			begin = append(begin, spikes[j]-spikes[firstSample]+pseudoT0)
		}
		fragments = append(fragments, begin)
	}

	if !discardEdges && trialCnt > 0 {
		endStart := firstAbove(spikes, events[trialCnt-1]+window)
		if endStart <= lastUsedSample {
			endStart = lastUsedSample + 1
		}
		if endStart < sampleCnt {
			// spacing kept, starting at the end of the last window
			end := make([]float64, 0, sampleCnt-endStart)
			for j := endStart; j < sampleCnt; j++ {
				end = append(end, spikes[j]-spikes[endStart]+pseudoEventT+window)
			}
			fragments = append(fragments, end)
		}
	}

	total := 0
	for _, fragment := range fragments {
		total += len(fragment)
	}
	pseudoSpikes := make([]float64, 0, total)
	for _, fragment := range fragments {
		pseudoSpikes = append(pseudoSpikes, fragment...)
	}
	sort.Float64s(pseudoSpikes)

	return pseudoSpikes, pseudoEvents
}

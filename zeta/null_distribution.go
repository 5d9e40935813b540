package zeta

import (
	"context"
	"runtime"

	"github.com/uyouii/zeta-algorithms/model"
	"github.com/uyouii/zeta-algorithms/utils"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
)

// JitterPermutations returns one jitter vector per resample. Every vector
// holds the same magnitudes, jitterSize * linspace(-window, window, trialCnt),
// randomly reassigned to the trials.
func JitterPermutations(src rand.Source, trialCnt, resampleCnt int,
	window, jitterSize float64) [][]float64 {
	jitterPerTrial := linspace(-window, window, trialCnt)
	floats.Scale(jitterSize, jitterPerTrial)

	rnd := rand.New(src)
	res := make([][]float64, resampleCnt)
	for i := range res {
		jitter := make([]float64, trialCnt)
		for j, k := range rnd.Perm(trialCnt) {
			jitter[j] = jitterPerTrial[k]
		}
		res[i] = jitter
	}
	return res
}

// NullSampler builds deviation curves of jittered copies of the events.
// It only reads its inputs, so Sample is safe for concurrent use.
type NullSampler struct {
	spikeTimes []float64
	eventTimes []float64
	window     float64
}

func NewNullSampler(spikeTimes []float64, eventTimes []float64, window float64) *NullSampler {
	events := make([]float64, len(eventTimes))
	copy(events, eventTimes)
	return &NullSampler{
		spikeTimes: utils.SortedCopy(spikeTimes),
		eventTimes: events,
		window:     window,
	}
}

// Sample computes the null curve for one jitter assignment.
func (s *NullSampler) Sample(jitter []float64) model.NullCurve {
	onsets := make([]float64, len(s.eventTimes))
	for i, eventT := range s.eventTimes {
		onsets[i] = eventT + jitter[i]
	}
	curve := GetTempOffsetOne(s.spikeTimes, onsets, s.window)
	return model.NullCurve{
		Time:      curve.Time,
		Deviation: curve.Deviation,
	}
}

// Run samples every jitter vector, slot i of both outputs belongs to
// jitters[i]. With parallel set, at most workers samples run at once
// (0 means GOMAXPROCS).
func (s *NullSampler) Run(ctx context.Context, jitters [][]float64,
	parallel bool, workers int) ([]model.NullCurve, []float64, error) {
	curves := make([]model.NullCurve, len(jitters))
	maxima := make([]float64, len(jitters))

	if !parallel {
		for i, jitter := range jitters {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
			curves[i] = s.Sample(jitter)
			maxima[i] = curves[i].MaxAbsDeviation()
		}
		return curves, maxima, nil
	}

	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range jitters {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			curves[i] = s.Sample(jitters[i])
			maxima[i] = curves[i].MaxAbsDeviation()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return curves, maxima, nil
}

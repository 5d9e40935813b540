package zeta

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/uyouii/zeta-algorithms/common"
	"github.com/uyouii/zeta-algorithms/model"
	"github.com/uyouii/zeta-algorithms/utils"
	"go.uber.org/zap"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
)

type Options struct {
	// analysis window after each event onset, in seconds
	Window         float64
	ResampleCount  int
	DirectQuantile bool
	// jitter magnitude, in windows
	JitterSize float64
	Stitch     bool

	AllowParallel bool
	Workers       int

	// random source for the jitter permutations, time seeded if nil
	Src rand.Source
}

func DefaultOptions(window float64) Options {
	return Options{
		Window:         window,
		ResampleCount:  DefaultResampleCount,
		DirectQuantile: DefaultDirectQuantile,
		JitterSize:     DefaultJitterSize,
		Stitch:         DefaultStitch,
	}
}

func (o *Options) Validate() error {
	if !(o.Window > 0) || math.IsInf(o.Window, 0) {
		return fmt.Errorf("%w: %v", common.ErrorInvalidWindow, o.Window)
	}
	if !(o.JitterSize > 0) || math.IsInf(o.JitterSize, 0) {
		return fmt.Errorf("%w: %v", common.ErrorInvalidJitter, o.JitterSize)
	}
	if o.ResampleCount < 0 {
		return fmt.Errorf("%w: %v", common.ErrorInvalidResampleCount, o.ResampleCount)
	}
	return nil
}

// EventOnsets checks the event table orientation and returns its onset
// column. Tables with 3 or more columns are read as transposed, unless they
// also have 3 or more rows.
func EventOnsets(eventTimes model.EventTimes) ([]float64, error) {
	rows, cols := eventTimes.Shape()
	if rows == 0 || cols == 0 {
		return nil, common.ErrorNoEvents
	}
	for _, row := range eventTimes {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: ragged event table", common.ErrorEventShape)
		}
	}

	var onsets []float64
	switch {
	case cols < 3:
		onsets = make([]float64, rows)
		for i, row := range eventTimes {
			onsets[i] = row[0]
		}
	case rows < 3:
		onsets = make([]float64, cols)
		copy(onsets, eventTimes[0])
	default:
		return nil, fmt.Errorf("%w: got %v-by-%v", common.ErrorEventShape, rows, cols)
	}

	if !utils.AllFinite(onsets) {
		return nil, fmt.Errorf("%w: event times", common.ErrorNonFinite)
	}
	return onsets, nil
}

// ReduceSpikes keeps the sorted spikes in [start, stop], with
// start = max(first spike, first event - pad) and stop = last event + pad,
// pad being ReduceWindowFactor jittered windows.
func ReduceSpikes(spikeTimes []float64, onsets []float64, window, jitterSize float64) []float64 {
	sorted := utils.SortedCopy(spikeTimes)
	if len(sorted) == 0 || len(onsets) == 0 {
		return []float64{}
	}

	pad := window * ReduceWindowFactor * jitterSize
	startT := math.Max(sorted[0], floats.Min(onsets)-pad)
	stopT := floats.Max(onsets) + pad

	lo := firstAtLeast(sorted, startT)
	hi := firstAbove(sorted, stopT)
	if lo >= hi {
		return []float64{}
	}
	return sorted[lo:hi]
}

// CalcZetaOne computes the ZETA responsiveness test of one spike train to
// the events. Too few spikes are not an error, they yield a neutral result
// with an insufficient status.
func CalcZetaOne(ctx context.Context, spikeTimes []float64, eventTimes model.EventTimes,
	opts Options) (*model.ZetaResult, error) {
	logger := utils.GetLogger(ctx)

	// 1. validate
	if err := opts.Validate(); err != nil {
		logger.Error("invalid zeta options", zap.Error(err))
		return nil, err
	}
	onsets, err := EventOnsets(eventTimes)
	if err != nil {
		logger.Error("invalid event times", zap.Error(err))
		return nil, err
	}
	if !utils.AllFinite(spikeTimes) {
		err := fmt.Errorf("%w: spike times", common.ErrorNonFinite)
		logger.Error("invalid spike times", zap.Error(err))
		return nil, err
	}

	// 2. reduce spikes
	spikes := ReduceSpikes(spikeTimes, onsets, opts.Window, opts.JitterSize)
	if len(spikes) < MinSpikeCnt {
		logger.Warn("too few spikes around events to calculate zeta", zap.Int("spikes", len(spikes)))
		return model.NewInsufficientResult(model.InsufficientSpikesGlobal), nil
	}

	// 3. build pseudo data, stitching stimulus periods
	pseudoSpikes, pseudoEvents := spikes, onsets
	if opts.Stitch {
		pseudoSpikes, pseudoEvents = GetPseudoSpikeVectors(spikes, onsets, opts.Window, false)
	}

	// 4. real data
	realCurve := GetTempOffsetOne(pseudoSpikes, pseudoEvents, opts.Window)
	if realCurve.Len() < MinSpikeCnt {
		logger.Warn("too few spikes in event windows to calculate zeta", zap.Int("points", realCurve.Len()))
		return model.NewInsufficientResult(model.InsufficientSpikesCurve), nil
	}
	meanCenter(realCurve.Deviation)
	zetaIdx, maxD := realCurve.MaxAbsDeviation()
	invSignIdx := invSignPeak(realCurve.Deviation, zetaIdx)

	// 5. resampling
	src := opts.Src
	if src == nil {
		src = rand.NewSource(uint64(time.Now().UnixNano()))
	}
	jitters := JitterPermutations(src, len(pseudoEvents), opts.ResampleCount, opts.Window, opts.JitterSize)
	sampler := NewNullSampler(pseudoSpikes, pseudoEvents, opts.Window)
	nullCurves, nullMaxima, err := sampler.Run(ctx, jitters, opts.AllowParallel, opts.Workers)
	if err != nil {
		logger.Error("resampling interrupted", zap.Error(err))
		return nil, fmt.Errorf("resampling: %w", err)
	}
	if len(nullMaxima) == 0 {
		logger.Warn("no resamples, zeta is not tested", zap.Int("resampleCount", opts.ResampleCount))
	}

	// 6. significance
	zetaP, zetaZ := GetZetaPOne(maxD, nullMaxima, opts.DirectQuantile)

	return &model.ZetaResult{
		Status: model.ZetaComputed,
		ZetaP:  zetaP,
		Zeta:   zetaZ,
		Curves: &model.ZetaCurves{
			Real:         realCurve,
			ZetaIdx:      zetaIdx,
			MaxDeviation: maxD,
			ZetaTime:     realCurve.Time[zetaIdx],
			InvSignIdx:   invSignIdx,
			InvSignTime:  realCurve.Time[invSignIdx],
			NullCurves:   nullCurves,
			NullMaxima:   nullMaxima,
		},
	}, nil
}

// invSignPeak returns the index of the extreme deviation with the opposite
// sign of deviation[peakIdx].
func invSignPeak(deviation []float64, peakIdx int) int {
	if deviation[peakIdx] > 0 {
		return floats.MinIdx(deviation)
	}
	return floats.MaxIdx(deviation)
}

package rate

import (
	"fmt"
	"math"
	"sort"

	"github.com/uyouii/zeta-algorithms/common"
	"github.com/uyouii/zeta-algorithms/model"
	"github.com/uyouii/zeta-algorithms/utils"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate/quad"
)

// SpikeRate estimates the trial-averaged firing rate (Hz) over the event
// window from the pooled trial-relative spike times.
type SpikeRate struct {
	// pooled trial-relative spike times, sorted
	SpikeT []float64

	trialCnt int
	window   float64
	gridSize int

	// An adjustment factor for the bw. Bandwidth becomes bw * adjust.
	bwAdjust float64

	rate       []model.RatePoint
	cumulative []model.RatePoint
	grid       []float64
	bw         float64
	fited      bool
	kernel     *GaussianKernel
}

func NewSpikeRate(spikeT []float64, trialCnt int, window float64, bwAdjust float64) (*SpikeRate, error) {
	if !(window > 0) {
		return nil, fmt.Errorf("%w: %v", common.ErrorInvalidWindow, window)
	}
	if trialCnt < 1 || len(spikeT) < RateMinSpikeCnt {
		return nil, common.ErrorInvalidValue
	}
	return &SpikeRate{
		SpikeT:   utils.SortedCopy(spikeT),
		trialCnt: trialCnt,
		window:   window,
		gridSize: max(len(spikeT), RateMinGridSize),
		bwAdjust: bwAdjust,
	}, nil
}

// Rate returns the rate curve on a regular grid over [0, window] and the
// kernel bandwidth used.
func (r *SpikeRate) Rate() ([]model.RatePoint, float64) {
	if r.fited {
		return r.rate, r.bw
	}

	kernel := NewGaussianKernel()
	bw := NewLatencyBandWidth(kernel, r.window, r.gridSize, r.bwAdjust).BandWidth(r.SpikeT)
	kernel.SetH(bw)

	grid := linspace(0, r.window, r.gridSize)
	ones := make([]float64, len(r.SpikeT))
	for i := range ones {
		ones[i] = 1
	}

	res := make([]model.RatePoint, 0, len(grid))
	for _, x := range grid {
		// density * spikeCnt / trialCnt
		value := floats.Dot(kernel.EvaluateRow(r.SpikeT, x), ones) / (bw * float64(r.trialCnt))
		res = append(res, model.RatePoint{
			Time:  x,
			Value: value,
		})
	}

	r.rate = res
	r.bw = bw
	r.grid = grid
	r.fited = true
	r.kernel = kernel

	return res, bw
}

// CumulativeCount returns the expected spike count per trial between 0 and
// each grid time.
func (r *SpikeRate) CumulativeCount() []model.RatePoint {
	if !r.fited {
		r.Rate()
	}
	if len(r.cumulative) > 0 {
		return r.cumulative
	}

	spikeCnt := float64(len(r.SpikeT))
	f := func(x float64) float64 {
		return r.kernel.Density(r.SpikeT, x) * spikeCnt / float64(r.trialCnt)
	}

	res := []model.RatePoint{{Time: r.grid[0], Value: 0}}
	var cumSum float64
	for i := 1; i < len(r.grid); i++ {
		cumSum += quad.Fixed(f, r.grid[i-1], r.grid[i], QuadPointCnt, nil, 0)
		res = append(res, model.RatePoint{
			Time:  r.grid[i],
			Value: cumSum,
		})
	}

	r.cumulative = res
	return res
}

// Peak returns the grid point of the highest rate.
func (r *SpikeRate) Peak() model.RatePoint {
	rates, _ := r.Rate()
	peak := rates[0]
	for _, p := range rates[1:] {
		if p.Value > peak.Value {
			peak = p
		}
	}
	return peak
}

// MeanRate is the expected in-window spike count per trial divided by the window.
func (r *SpikeRate) MeanRate() float64 {
	cumulative := r.CumulativeCount()
	return cumulative[len(cumulative)-1].Value / r.window
}

// Quantile returns the time by which the fraction p of the in-window
// expected spikes has occurred.
func (r *SpikeRate) Quantile(p float64) (float64, error) {
	if p < 0 || p > 1 || math.IsNaN(p) {
		return 0, common.ErrorInvalidValue
	}
	cdf := r.CumulativeCount()
	total := cdf[len(cdf)-1].Value
	if !(total > 0) {
		return 0, common.ErrorInvalidValue
	}

	target := p * total
	i := sort.Search(len(cdf), func(i int) bool { return cdf[i].Value >= target })
	switch {
	case i == 0:
		return cdf[0].Time, nil
	case i >= len(cdf):
		return cdf[len(cdf)-1].Time, nil
	}
	lowerX, lowerP := cdf[i-1].Time, cdf[i-1].Value
	upperX, upperP := cdf[i].Time, cdf[i].Value
	if upperP == lowerP {
		return upperX, nil
	}
	return lowerX + (upperX-lowerX)*(target-lowerP)/(upperP-lowerP), nil
}

func linspace(start, stop float64, num int) []float64 {
	if num < 2 {
		return []float64{start}
	}
	step := (stop - start) / float64(num-1)
	grid := make([]float64, num)
	for i := 0; i < num; i++ {
		grid[i] = start + float64(i)*step
	}
	return grid
}

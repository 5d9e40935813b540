package rate

import (
	"context"
	"fmt"

	"github.com/uyouii/zeta-algorithms/common"
	"github.com/uyouii/zeta-algorithms/model"
	"github.com/uyouii/zeta-algorithms/utils"
	"github.com/uyouii/zeta-algorithms/zeta"
	"go.uber.org/zap"
)

// CalculatePeriEventRate pools the spikes of every event window and returns
// the rate curve with its peak, the companion of a zeta result.
func CalculatePeriEventRate(ctx context.Context, spikeTimes []float64, onsets []float64,
	window float64) (res *model.RateSummary, err error) {
	logger := utils.GetLogger(ctx)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("CalculatePeriEventRate recover panic error!", zap.Any("err", r),
				zap.String("panic info", utils.GetPanicInfo()))
			res, err = nil, fmt.Errorf("%w: %v", common.ErrorInvalidValue, r)
		}
	}()

	spikeT := []float64{}
	for _, trial := range zeta.RelativeSpikeTimes(spikeTimes, onsets, window) {
		spikeT = append(spikeT, trial...)
	}

	if len(spikeT) < RateMinSpikeCnt {
		logger.Warn("spikes too little, skip calculate rate", zap.Int("cnt", len(spikeT)))
		return nil, common.ErrorInvalidValue
	}

	estimator, err := NewSpikeRate(spikeT, len(onsets), window, 1.0)
	if err != nil {
		logger.Error("NewSpikeRate failed", zap.Error(err))
		return nil, err
	}

	rates, bw := estimator.Rate()
	peak := estimator.Peak()
	median, err := estimator.Quantile(MedianLatencyQuantile)
	if err != nil {
		logger.Error("median latency failed", zap.Error(err))
		return nil, err
	}

	return &model.RateSummary{
		Rate:          rates,
		Bandwidth:     bw,
		PeakTime:      peak.Time,
		PeakRate:      peak.Value,
		MeanRate:      estimator.MeanRate(),
		MedianLatency: median,
	}, nil
}

package zeta

import (
	"context"
	"fmt"

	"github.com/uyouii/zeta-algorithms/common"
	"github.com/uyouii/zeta-algorithms/model"
	"github.com/uyouii/zeta-algorithms/utils"
	"go.uber.org/zap"
)

// CalculateZeta is the service entry of CalcZetaOne, a panic during the
// computation is logged and returned as an error.
func CalculateZeta(ctx context.Context, spikeTimes []float64, eventTimes model.EventTimes,
	opts Options) (res *model.ZetaResult, err error) {
	logger := utils.GetLogger(ctx)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("CalculateZeta recover panic error!", zap.Any("err", r),
				zap.String("panic info", utils.GetPanicInfo()),
				zap.Int("spikeCnt", len(spikeTimes)), zap.Int("eventCnt", len(eventTimes)))
			res, err = nil, fmt.Errorf("%w: %v", common.ErrorInvalidValue, r)
		}
	}()

	res, err = CalcZetaOne(ctx, spikeTimes, eventTimes, opts)
	if err != nil {
		return nil, err
	}

	logger.Info("calculate zeta success", zap.String("result", res.DebugString()),
		zap.Float64("window", opts.Window), zap.Int("resampleCount", opts.ResampleCount),
		zap.Bool("directQuantile", opts.DirectQuantile), zap.Bool("stitch", opts.Stitch))
	return res, nil
}

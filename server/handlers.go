package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/uyouii/zeta-algorithms/common"
	"github.com/uyouii/zeta-algorithms/model"
	"github.com/uyouii/zeta-algorithms/rate"
	"github.com/uyouii/zeta-algorithms/utils"
	"github.com/uyouii/zeta-algorithms/zeta"
	"go.uber.org/zap"
	"golang.org/x/exp/rand"
)

// RequestOptions overrides the configured zeta options, nil fields keep the
// configured value.
type RequestOptions struct {
	Window         *float64 `json:"window"`
	ResampleCount  *int     `json:"resample_count"`
	DirectQuantile *bool    `json:"direct_quantile"`
	JitterSize     *float64 `json:"jitter_size"`
	Stitch         *bool    `json:"stitch"`
	Seed           *uint64  `json:"seed"`
}

type ZetaRequest struct {
	SpikeTimes []float64        `json:"spike_times" binding:"required"`
	EventTimes model.EventTimes `json:"event_times" binding:"required"`
	Options    *RequestOptions  `json:"options"`
	// keep the resampled curves in the response
	IncludeNull bool `json:"include_null"`
	Rate        bool `json:"rate"`
}

type ZetaResponse struct {
	ID     string             `json:"id"`
	Result *model.ZetaResult  `json:"result"`
	Rate   *model.RateSummary `json:"rate,omitempty"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleZeta(c *gin.Context) {
	var req ZetaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	opts := s.zetaOptions(req.Options)

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.Server.Timeout)
	defer cancel()

	id := uuid.NewString()
	logger := utils.GetLogger(ctx).With(zap.String("id", id))

	res, err := zeta.CalculateZeta(ctx, req.SpikeTimes, req.EventTimes, opts)
	if err != nil {
		status := errorStatus(err)
		logger.Warn("zeta request failed", zap.Int("status", status), zap.Error(err))
		c.JSON(status, gin.H{"id": id, "error": err.Error()})
		return
	}

	s.metrics.observeResult(res.Status)

	if res.Curves != nil && !req.IncludeNull {
		res.Curves.NullCurves = nil
	}

	resp := ZetaResponse{ID: id, Result: res}
	if req.Rate && res.IsComputed() {
		onsets, _ := zeta.EventOnsets(req.EventTimes)
		summary, err := rate.CalculatePeriEventRate(ctx, req.SpikeTimes, onsets, opts.Window)
		if err != nil {
			logger.Warn("skip rate", zap.Error(err))
		} else {
			resp.Rate = summary
		}
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) zetaOptions(override *RequestOptions) zeta.Options {
	opts := s.cfg.ZetaOptions()
	if override == nil {
		return opts
	}
	if override.Window != nil {
		opts.Window = *override.Window
	}
	if override.ResampleCount != nil {
		opts.ResampleCount = *override.ResampleCount
	}
	if override.DirectQuantile != nil {
		opts.DirectQuantile = *override.DirectQuantile
	}
	if override.JitterSize != nil {
		opts.JitterSize = *override.JitterSize
	}
	if override.Stitch != nil {
		opts.Stitch = *override.Stitch
	}
	if override.Seed != nil {
		opts.Src = rand.NewSource(*override.Seed)
	}
	return opts
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	case errors.Is(err, common.ErrorInvalidValue),
		errors.Is(err, common.ErrorNonFinite),
		errors.Is(err, common.ErrorNoEvents),
		errors.Is(err, common.ErrorEventShape),
		errors.Is(err, common.ErrorInvalidWindow),
		errors.Is(err, common.ErrorInvalidJitter),
		errors.Is(err, common.ErrorInvalidResampleCount):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

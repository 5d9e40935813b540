package model

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/uyouii/zeta-algorithms/utils"
)

// EventTimes is a trial table, either one onset per row or (onset, offset)
// pairs. Transposed tables (1-by-T, 2-by-T) are accepted as well.
type EventTimes [][]float64

// OnsetsOnly turns a plain onset vector into a T-by-1 table.
func OnsetsOnly(onsets []float64) EventTimes {
	res := make(EventTimes, len(onsets))
	for i, v := range onsets {
		res[i] = []float64{v}
	}
	return res
}

func (e EventTimes) Shape() (rows int, cols int) {
	if len(e) == 0 {
		return 0, 0
	}
	return len(e), len(e[0])
}

// DeviationCurve holds the per-spike cumulative fractions of one set of
// trial-relative spike times, all slices share the same length.
type DeviationCurve struct {
	Time           []float64 `json:"time"`
	Fraction       []float64 `json:"fraction"`
	LinearFraction []float64 `json:"linear_fraction"`
	Deviation      []float64 `json:"deviation"`
}

func (c *DeviationCurve) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Time)
}

// MaxAbsDeviation returns the index and magnitude of the largest |deviation|,
// the first index wins on ties. Empty curves return -1.
func (c *DeviationCurve) MaxAbsDeviation() (int, float64) {
	return maxAbs(c.deviation())
}

func (c *DeviationCurve) deviation() []float64 {
	if c == nil {
		return nil
	}
	return c.Deviation
}

func maxAbs(values []float64) (int, float64) {
	idx, res := -1, 0.0
	for i, v := range values {
		if v < 0 {
			v = -v
		}
		if idx < 0 || v > res {
			idx, res = i, v
		}
	}
	return idx, res
}

// NullCurve is the deviation curve of one jittered resample.
type NullCurve struct {
	Time      []float64 `json:"time"`
	Deviation []float64 `json:"deviation"`
}

// MaxAbsDeviation returns the largest |deviation| of the curve.
func (c *NullCurve) MaxAbsDeviation() float64 {
	_, res := maxAbs(c.Deviation)
	return res
}

type ZetaStatus int

const (
	ZetaComputed ZetaStatus = iota
	InsufficientSpikesGlobal
	InsufficientSpikesCurve
)

func (s ZetaStatus) String() string {
	switch s {
	case ZetaComputed:
		return "computed"
	case InsufficientSpikesGlobal:
		return "insufficient_spikes_global"
	case InsufficientSpikesCurve:
		return "insufficient_spikes_curve"
	}
	return fmt.Sprintf("ZetaStatus(%d)", int(s))
}

func (s ZetaStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *ZetaStatus) UnmarshalText(text []byte) error {
	for _, status := range []ZetaStatus{ZetaComputed, InsufficientSpikesGlobal, InsufficientSpikesCurve} {
		if status.String() == string(text) {
			*s = status
			return nil
		}
	}
	return fmt.Errorf("unknown zeta status %q", text)
}

const (
	DefaultZetaP = 1.0
	DefaultZeta  = 0.0

	// decimals kept in debug strings
	debugRound = 4
)

// ZetaCurves is only present on computed results.
type ZetaCurves struct {
	Real         DeviationCurve `json:"real"`
	ZetaIdx      int            `json:"zeta_idx"`
	MaxDeviation float64        `json:"max_deviation"`
	ZetaTime     float64        `json:"zeta_time"`

	// peak of the opposite sign
	InvSignIdx  int     `json:"inv_sign_idx"`
	InvSignTime float64 `json:"inv_sign_time"`

	NullCurves []NullCurve `json:"null_curves,omitempty"`
	NullMaxima []float64   `json:"null_maxima"`
}

type ZetaResult struct {
	Status ZetaStatus  `json:"status"`
	ZetaP  float64     `json:"p"`
	Zeta   float64     `json:"z"`
	Curves *ZetaCurves `json:"curves,omitempty"`
}

// MarshalJSON writes a non-finite p or z (a p-value below the float range)
// as null.
func (r ZetaResult) MarshalJSON() ([]byte, error) {
	type plain ZetaResult
	return json.Marshal(struct {
		plain
		ZetaP *float64 `json:"p"`
		Zeta  *float64 `json:"z"`
	}{
		plain: plain(r),
		ZetaP: finiteOrNil(r.ZetaP),
		Zeta:  finiteOrNil(r.Zeta),
	})
}

func finiteOrNil(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// NewInsufficientResult builds the neutral result returned when there are
// too few spikes to compute a curve.
func NewInsufficientResult(status ZetaStatus) *ZetaResult {
	return &ZetaResult{
		Status: status,
		ZetaP:  DefaultZetaP,
		Zeta:   DefaultZeta,
	}
}

func (r *ZetaResult) IsComputed() bool {
	return r != nil && r.Status == ZetaComputed && r.Curves != nil
}

func (r *ZetaResult) DebugString() string {
	if !r.IsComputed() {
		return fmt.Sprintf("status: %v, p: %v, z: %v", r.Status, r.ZetaP, r.Zeta)
	}
	return fmt.Sprintf("status: %v, p: %v, z: %v, zeta time: %v, points: %v, resamples: %v",
		r.Status, utils.FormatFloat(r.ZetaP, debugRound), utils.FormatFloat(r.Zeta, debugRound),
		utils.FormatFloat(r.Curves.ZetaTime, debugRound), r.Curves.Real.Len(), len(r.Curves.NullMaxima))
}

// RatePoint is one sample of a peri-event rate curve.
type RatePoint struct {
	Time  float64 `json:"t"`
	Value float64 `json:"v"`
}

// RateSummary is a peri-event rate curve with its peak.
type RateSummary struct {
	Rate      []RatePoint `json:"rate"`
	Bandwidth float64     `json:"bandwidth"`
	PeakTime  float64     `json:"peak_time"`
	PeakRate  float64     `json:"peak_rate"`
	MeanRate  float64     `json:"mean_rate"`
	// latency by which half of the in-window spikes have occurred
	MedianLatency float64 `json:"median_latency"`
}

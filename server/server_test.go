package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uyouii/zeta-algorithms/config"
	"github.com/uyouii/zeta-algorithms/model"
	"golang.org/x/exp/rand"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig(timeout time.Duration) *config.Config {
	return &config.Config{
		Zeta: config.ZetaConfig{
			Window:        1,
			ResampleCount: 20,
			JitterSize:    2,
			Stitch:        true,
			Seed:          1,
		},
		Server:  config.ServerConfig{Addr: ":0", Timeout: timeout},
		Logging: config.LoggingConfig{Level: "info"},
	}
}

func lockedRequest() ZetaRequest {
	rnd := rand.New(rand.NewSource(3))
	req := ZetaRequest{}
	for i := 0; i < 30; i++ {
		onset := float64(i) * 2
		req.EventTimes = append(req.EventTimes, []float64{onset})
		req.SpikeTimes = append(req.SpikeTimes, onset+0.2+rnd.NormFloat64()*0.01, onset+rnd.Float64()*2)
	}
	return req
}

func post(t *testing.T, s *Server, body any) *httptest.ResponseRecorder {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/zeta", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	s := NewServer(testConfig(time.Second))

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestZetaComputed(t *testing.T) {
	s := NewServer(testConfig(10 * time.Second))

	req := lockedRequest()
	req.Rate = true
	w := post(t, s, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp ZetaResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.ID)
	require.NotNil(t, resp.Result)
	assert.Equal(t, model.ZetaComputed, resp.Result.Status)
	require.NotNil(t, resp.Result.Curves)
	assert.Nil(t, resp.Result.Curves.NullCurves)
	assert.Len(t, resp.Result.Curves.NullMaxima, 20)
	require.NotNil(t, resp.Rate)
	assert.InDelta(t, 0.2, resp.Rate.PeakTime, 0.05)
}

func TestZetaIncludeNullAndOverride(t *testing.T) {
	s := NewServer(testConfig(10 * time.Second))

	req := lockedRequest()
	req.IncludeNull = true
	resamples := 5
	req.Options = &RequestOptions{ResampleCount: &resamples}
	w := post(t, s, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp ZetaResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Result.Curves)
	assert.Len(t, resp.Result.Curves.NullCurves, 5)
	assert.Nil(t, resp.Rate)
}

func TestZetaInsufficient(t *testing.T) {
	s := NewServer(testConfig(time.Second))

	w := post(t, s, ZetaRequest{
		SpikeTimes: []float64{0.5},
		EventTimes: model.OnsetsOnly([]float64{0, 1, 2}),
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp ZetaResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, model.InsufficientSpikesGlobal, resp.Result.Status)
	assert.Nil(t, resp.Result.Curves)
}

func TestZetaBadRequest(t *testing.T) {
	s := NewServer(testConfig(time.Second))

	tests := []struct {
		name string
		body any
	}{
		{"missing fields", map[string]any{"spike_times": []float64{1}}},
		{"bad shape", ZetaRequest{
			SpikeTimes: []float64{1, 2, 3},
			EventTimes: model.EventTimes{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}},
		}},
		{"bad window", func() ZetaRequest {
			req := lockedRequest()
			window := -1.0
			req.Options = &RequestOptions{Window: &window}
			return req
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(t, s, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func TestZetaDeadline(t *testing.T) {
	s := NewServer(testConfig(time.Nanosecond))

	w := post(t, s, lockedRequest())
	assert.Equal(t, http.StatusGatewayTimeout, w.Code, w.Body.String())
}

func TestMetrics(t *testing.T) {
	s := NewServer(testConfig(10 * time.Second))

	require.Equal(t, http.StatusOK, post(t, s, lockedRequest()).Code)
	require.Equal(t, http.StatusBadRequest, post(t, s, map[string]any{}).Code)

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, `zeta_http_requests_total{method="POST",path="/v1/zeta",status="200"} 1`)
	assert.Contains(t, body, `zeta_http_requests_total{method="POST",path="/v1/zeta",status="400"} 1`)
	assert.Contains(t, body, `zeta_results_total{status="computed"} 1`)
	assert.True(t, strings.Contains(body, "zeta_http_request_duration_seconds_bucket"))
}

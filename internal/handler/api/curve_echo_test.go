package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	drepo "CurveWatch/internal/domain/repository"
	"CurveWatch/internal/usecase"
	"CurveWatch/pkg/cache"
	"CurveWatch/pkg/config"
	applogger "CurveWatch/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	data    map[string][]drepo.Observation
	err     error
	pingErr error
}

func (s *stubSource) FetchSeries(_ context.Context, id string, _, _ time.Time) ([]drepo.Observation, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.data[id], nil
}

func (s *stubSource) Ping(context.Context) error { return s.pingErr }

type stubMetrics struct{}

func (stubMetrics) RecordFetch(string, string)      {}
func (stubMetrics) RecordError(string)              {}
func (stubMetrics) RecordLastYield(string, float64) {}
func (stubMetrics) RecordLatency(string, float64)   {}
func (stubMetrics) RecordSnapshot(int, int)         {}

func newTestServer(t *testing.T, src drepo.SeriesSource) *echo.Echo {
	t.Helper()
	cfg := &config.Config{}
	cfg.FRED.Series = map[string]string{"2Y": "DGS2", "10Y": "DGS10"}
	cfg.Analytics.LookbackYears = 10
	cfg.Analytics.TrailingWindow = 30
	cfg.Analytics.MinInversionDays = 10
	cfg.Analytics.ShortMaturity = "2Y"
	cfg.Analytics.LongMaturity = "10Y"
	cfg.Cache.TTL = time.Hour

	l, err := applogger.New(&applogger.Config{Level: "error", Format: "console", Output: "stderr"})
	require.NoError(t, err)
	store := cache.NewMemoryStore()
	t.Cleanup(func() { _ = store.Close() })

	svc := usecase.NewCurveService(cfg, src, store, stubMetrics{}, l)
	h := NewCurveEchoHandler(l, svc)

	e := echo.New()
	h.RegisterRoutes(e)
	return e
}

func healthySource() *stubSource {
	d0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mk := func(vals ...float64) []drepo.Observation {
		out := make([]drepo.Observation, len(vals))
		for i, v := range vals {
			out[i] = drepo.Observation{Date: d0.AddDate(0, 0, i), Value: v}
		}
		return out
	}
	return &stubSource{data: map[string][]drepo.Observation{
		"DGS2":  mk(4.5, 4.6, 4.7),
		"DGS10": mk(4.0, 4.1, 4.2),
	}}
}

func doRequest(e *echo.Echo, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestCurveEndpoint(t *testing.T) {
	e := newTestServer(t, healthySource())

	rec := doRequest(e, http.MethodGet, "/api/curve")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeEnvelope(t, rec)
	data := body["data"].(map[string]interface{})
	points := data["points"].([]interface{})
	require.Len(t, points, 2)
	first := points[0].(map[string]interface{})
	require.Equal(t, "2Y", first["maturity"])
	require.InDelta(t, 4.7, first["yield"].(float64), 1e-9)
}

func TestMetricsEndpoint(t *testing.T) {
	e := newTestServer(t, healthySource())

	rec := doRequest(e, http.MethodGet, "/api/metrics?maturity=10y")
	require.Equal(t, http.StatusOK, rec.Code)

	data := decodeEnvelope(t, rec)["data"].(map[string]interface{})
	require.Equal(t, "10Y", data["maturity"])
	require.InDelta(t, 4.2, data["latest"].(float64), 1e-9)
}

func TestMetricsUnknownMaturityIs400(t *testing.T) {
	e := newTestServer(t, healthySource())

	rec := doRequest(e, http.MethodGet, "/api/metrics?maturity=7Y")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "ERR_BAD_REQUEST")
}

func TestHistoryLimitValidation(t *testing.T) {
	e := newTestServer(t, healthySource())

	rec := doRequest(e, http.MethodGet, "/api/curve/history?maturity=10Y&limit=-1")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHistoryLimit(t *testing.T) {
	e := newTestServer(t, healthySource())

	rec := doRequest(e, http.MethodGet, "/api/curve/history?maturity=10Y&limit=2")
	require.Equal(t, http.StatusOK, rec.Code)

	data := decodeEnvelope(t, rec)["data"].(map[string]interface{})
	require.Len(t, data["points"].([]interface{}), 2)
}

func TestSpreadEndpointDefaults(t *testing.T) {
	e := newTestServer(t, healthySource())

	rec := doRequest(e, http.MethodGet, "/api/spread")
	require.Equal(t, http.StatusOK, rec.Code)

	data := decodeEnvelope(t, rec)["data"].(map[string]interface{})
	spread := data["spread"].(map[string]interface{})
	require.Equal(t, "2Y", spread["short"])
	require.Equal(t, "10Y", spread["long"])
	require.NotNil(t, data["recessions"])
}

func TestSpreadSamePairIs400(t *testing.T) {
	e := newTestServer(t, healthySource())

	rec := doRequest(e, http.MethodGet, "/api/spread?short=10Y&long=10Y")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInversionsEndpointEmpty(t *testing.T) {
	e := newTestServer(t, healthySource())

	rec := doRequest(e, http.MethodGet, "/api/inversions")
	require.Equal(t, http.StatusOK, rec.Code)

	data := decodeEnvelope(t, rec)["data"].(map[string]interface{})
	require.Len(t, data["episodes"].([]interface{}), 0)
}

func TestSummaryEndpoint(t *testing.T) {
	e := newTestServer(t, healthySource())

	rec := doRequest(e, http.MethodGet, "/api/summary")
	require.Equal(t, http.StatusOK, rec.Code)

	data := decodeEnvelope(t, rec)["data"].(map[string]interface{})
	require.Equal(t, "normal", data["status"])
	require.Equal(t, float64(3), data["observations"])
}

func TestRefreshEndpoint(t *testing.T) {
	e := newTestServer(t, healthySource())

	rec := doRequest(e, http.MethodPost, "/api/refresh")
	require.Equal(t, http.StatusOK, rec.Code)

	data := decodeEnvelope(t, rec)["data"].(map[string]interface{})
	require.Equal(t, float64(3), data["observations"])
}

func TestSourceOutageIs503(t *testing.T) {
	src := &stubSource{err: fmt.Errorf("connect: %w", drepo.ErrUnavailable)}
	e := newTestServer(t, src)

	rec := doRequest(e, http.MethodGet, "/api/summary")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Contains(t, rec.Body.String(), "ERR_DATA_UNAVAILABLE")
}

func TestHealthEndpoint(t *testing.T) {
	e := newTestServer(t, healthySource())

	rec := doRequest(e, http.MethodGet, "/api/health")
	require.Equal(t, http.StatusOK, rec.Code)

	data := decodeEnvelope(t, rec)["data"].(map[string]interface{})
	require.Equal(t, true, data["source_ok"])
}

func TestHealthEndpointSourceDown(t *testing.T) {
	src := healthySource()
	src.pingErr = fmt.Errorf("dns failure")
	e := newTestServer(t, src)

	rec := doRequest(e, http.MethodGet, "/api/health")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

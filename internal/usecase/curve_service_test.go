package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	drepo "CurveWatch/internal/domain/repository"
	"CurveWatch/pkg/cache"
	"CurveWatch/pkg/config"
	applogger "CurveWatch/pkg/logger"

	"github.com/stretchr/testify/require"
)

// fakeSource is a deterministic SeriesSource for tests.
type fakeSource struct {
	mu      sync.Mutex
	data    map[string][]drepo.Observation
	errs    map[string]error
	calls   map[string]int
	pingErr error
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		data:  map[string][]drepo.Observation{},
		errs:  map[string]error{},
		calls: map[string]int{},
	}
}

func (f *fakeSource) FetchSeries(_ context.Context, id string, _, _ time.Time) ([]drepo.Observation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[id]++
	if err := f.errs[id]; err != nil {
		return nil, err
	}
	return f.data[id], nil
}

func (f *fakeSource) Ping(context.Context) error { return f.pingErr }

func (f *fakeSource) callCount(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[id]
}

// nopMetrics satisfies the Metrics interface.
type nopMetrics struct{}

func (nopMetrics) RecordFetch(string, string)      {}
func (nopMetrics) RecordError(string)              {}
func (nopMetrics) RecordLastYield(string, float64) {}
func (nopMetrics) RecordLatency(string, float64)   {}
func (nopMetrics) RecordSnapshot(int, int)         {}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Environment = "test"
	cfg.FRED.APIKey = "test"
	cfg.FRED.Series = map[string]string{"2Y": "DGS2", "10Y": "DGS10"}
	cfg.Analytics.LookbackYears = 10
	cfg.Analytics.TrailingWindow = 30
	cfg.Analytics.MinInversionDays = 10
	cfg.Analytics.ShortMaturity = "2Y"
	cfg.Analytics.LongMaturity = "10Y"
	cfg.Cache.TTL = time.Hour
	return cfg
}

func testService(t *testing.T, cfg *config.Config, src drepo.SeriesSource) *CurveService {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "console", Output: "stderr"})
	require.NoError(t, err)
	store := cache.NewMemoryStore()
	t.Cleanup(func() { _ = store.Close() })
	return NewCurveService(cfg, src, store, nopMetrics{}, l)
}

func daily(start time.Time, values ...float64) []drepo.Observation {
	out := make([]drepo.Observation, len(values))
	for i, v := range values {
		out[i] = drepo.Observation{Date: start.AddDate(0, 0, i), Value: v}
	}
	return out
}

func TestSnapshotBuildsAndCaches(t *testing.T) {
	d0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	src := newFakeSource()
	src.data["DGS2"] = daily(d0, 4.5, 4.6, 4.7)
	src.data["DGS10"] = daily(d0, 4.0, 4.1, 4.2)

	svc := testService(t, testConfig(), src)
	ctx := context.Background()

	snap, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Table.Rows, 3)
	require.Equal(t, []string{"2Y", "10Y"}, snap.Table.Maturities)
	require.Empty(t, snap.FetchErrors)

	// Second call is served from cache: no extra fetches.
	_, err = svc.Snapshot(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, src.callCount("DGS2"))
	require.Equal(t, 1, src.callCount("DGS10"))
}

func TestSnapshotToleratesPartialFailure(t *testing.T) {
	d0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	src := newFakeSource()
	src.data["DGS10"] = daily(d0, 4.0, 4.1)
	src.errs["DGS2"] = fmt.Errorf("boom: %w", drepo.ErrUnavailable)

	svc := testService(t, testConfig(), src)

	snap, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"10Y"}, snap.Table.Maturities)
	require.Contains(t, snap.FetchErrors, "2Y")
}

func TestSnapshotAllFetchesFailed(t *testing.T) {
	src := newFakeSource()
	src.errs["DGS2"] = fmt.Errorf("boom: %w", drepo.ErrUnavailable)
	src.errs["DGS10"] = fmt.Errorf("boom: %w", drepo.ErrUnavailable)

	svc := testService(t, testConfig(), src)

	_, err := svc.Snapshot(context.Background())
	require.ErrorIs(t, err, drepo.ErrUnavailable)
}

func TestSnapshotAllEmptyIsTerminalNoData(t *testing.T) {
	src := newFakeSource() // both series exist, both empty
	svc := testService(t, testConfig(), src)
	ctx := context.Background()

	snap, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	require.True(t, snap.Table.Empty())

	sum, err := svc.Summary(ctx)
	require.NoError(t, err)
	require.True(t, sum.NoData)
	require.Equal(t, "no_data", sum.Status)

	_, err = svc.Metrics(ctx, "10Y")
	require.ErrorIs(t, err, ErrNoData)

	eps, err := svc.Inversions(ctx, "2Y", "10Y")
	require.NoError(t, err)
	require.Empty(t, eps)

	// Empty snapshots are cached too: no silent retry loop.
	_, err = svc.Snapshot(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, src.callCount("DGS2"))
}

func TestMetricsUnknownMaturity(t *testing.T) {
	src := newFakeSource()
	svc := testService(t, testConfig(), src)

	_, err := svc.Metrics(context.Background(), "7Y")
	require.ErrorIs(t, err, ErrUnknownMaturity)
}

func TestMetricsNormalizesLabel(t *testing.T) {
	d0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	src := newFakeSource()
	src.data["DGS2"] = daily(d0, 4.5, 4.6)
	src.data["DGS10"] = daily(d0, 4.0, 4.1)

	svc := testService(t, testConfig(), src)

	m, err := svc.Metrics(context.Background(), " 10y ")
	require.NoError(t, err)
	require.Equal(t, "10Y", m.Maturity)
	require.Equal(t, 4.1, m.Latest)
}

func TestRefreshInvalidatesAndNotifies(t *testing.T) {
	d0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	src := newFakeSource()
	src.data["DGS2"] = daily(d0, 4.5)
	src.data["DGS10"] = daily(d0, 4.0)

	svc := testService(t, testConfig(), src)
	ctx := context.Background()

	var notified []time.Time
	svc.AddRefreshListener(func(asOf time.Time) { notified = append(notified, asOf) })

	_, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	_, err = svc.Refresh(ctx)
	require.NoError(t, err)

	require.Equal(t, 2, src.callCount("DGS2"))
	require.Len(t, notified, 2)
}

func TestInversionsEndToEnd(t *testing.T) {
	// 2Y constant at 1.00; 10Y drops to 0.50 for days 6-15 then recovers.
	d0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	long := make([]float64, 20)
	for i := range long {
		switch {
		case i >= 5 && i <= 14:
			long[i] = 0.50
		default:
			long[i] = 1.50
		}
	}
	short := make([]float64, 20)
	for i := range short {
		short[i] = 1.00
	}

	src := newFakeSource()
	src.data["DGS2"] = daily(d0, short...)
	src.data["DGS10"] = daily(d0, long...)

	svc := testService(t, testConfig(), src)

	eps, err := svc.Inversions(context.Background(), "2Y", "10Y")
	require.NoError(t, err)
	require.Len(t, eps, 1)
	require.Equal(t, d0.AddDate(0, 0, 5), eps[0].Start)
	require.Equal(t, d0.AddDate(0, 0, 14), eps[0].End)
	require.Equal(t, 10, eps[0].DurationDays)
	require.InDelta(t, 50.0, eps[0].MaxInversionBps, 1e-9)
}

func TestSummaryInvertedStatus(t *testing.T) {
	d0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	src := newFakeSource()
	src.data["DGS2"] = daily(d0, 4.5, 4.9)
	src.data["DGS10"] = daily(d0, 4.6, 4.2)

	svc := testService(t, testConfig(), src)

	sum, err := svc.Summary(context.Background())
	require.NoError(t, err)
	require.Equal(t, "inverted", sum.Status)
	require.NotNil(t, sum.SpreadBps)
	require.InDelta(t, 70.0, *sum.SpreadBps, 1e-9)
	require.Equal(t, 2, sum.Observations)
	require.NotNil(t, sum.LongMin)
	require.InDelta(t, 4.2, *sum.LongMin, 1e-12)
	require.InDelta(t, 4.6, *sum.LongMax, 1e-12)
}

func TestCheckHealth(t *testing.T) {
	src := newFakeSource()
	src.pingErr = fmt.Errorf("dns: %w", drepo.ErrUnavailable)
	svc := testService(t, testConfig(), src)

	h := svc.CheckHealth(context.Background())
	require.False(t, h.SourceOK)
	require.NotEmpty(t, h.SourceError)
	require.Nil(t, h.SnapshotAsOf)
}

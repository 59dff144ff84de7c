package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"CurveWatch/internal/analytics"
	"CurveWatch/internal/domain/models"
	drepo "CurveWatch/internal/domain/repository"
	"CurveWatch/pkg/cache"
	"CurveWatch/pkg/config"
	applogger "CurveWatch/pkg/logger"
	"CurveWatch/pkg/util"
)

var (
	// ErrNoData marks a terminal empty dataset: the source answered but had
	// nothing for the window. Callers must not retry blindly.
	ErrNoData = errors.New("no yield data available")
	// ErrUnknownMaturity marks a request for a label outside the configured set.
	ErrUnknownMaturity = errors.New("unknown maturity")
)

// RefreshListener is notified after every snapshot rebuild.
type RefreshListener func(asOf time.Time)

// CurveService owns the refresh cycle: fetch the configured series, assemble
// the table, cache the snapshot, and answer the dashboard's query operations.
// Snapshots are immutable; every refresh builds a new one.
type CurveService struct {
	cfg      *config.Config
	source   drepo.SeriesSource
	store    cache.Store
	metrics  drepo.Metrics
	logger   *applogger.Logger
	detector analytics.InversionDetector

	now func() time.Time

	mu        sync.Mutex // single-flight guard for rebuilds
	listeners []RefreshListener
}

// NewCurveService creates the curve use case.
func NewCurveService(
	cfg *config.Config,
	source drepo.SeriesSource,
	store cache.Store,
	metrics drepo.Metrics,
	logger *applogger.Logger,
) *CurveService {
	return &CurveService{
		cfg:     cfg,
		source:  source,
		store:   store,
		metrics: metrics,
		logger:  logger,
		detector: analytics.InversionDetector{
			Threshold: cfg.Analytics.InversionThreshold,
			MinDays:   cfg.Analytics.MinInversionDays,
		},
		now: time.Now,
	}
}

// AddRefreshListener registers a callback invoked after each rebuild.
func (s *CurveService) AddRefreshListener(l RefreshListener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()
}

func (s *CurveService) cacheKey() string {
	return fmt.Sprintf("snapshot:%dy", s.cfg.Analytics.LookbackYears)
}

// Snapshot returns the current curve snapshot, rebuilding it on cache miss.
func (s *CurveService) Snapshot(ctx context.Context) (*models.CurveSnapshot, error) {
	if snap := s.cached(ctx); snap != nil {
		return snap, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another request may have rebuilt while we waited for the lock.
	if snap := s.cached(ctx); snap != nil {
		return snap, nil
	}
	return s.rebuild(ctx)
}

// Refresh discards the cached snapshot and rebuilds it.
func (s *CurveService) Refresh(ctx context.Context) (*models.CurveSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Invalidate(ctx, s.cacheKey()); err != nil {
		s.logger.Warn("cache invalidate failed", applogger.Error(err))
	}
	return s.rebuild(ctx)
}

func (s *CurveService) cached(ctx context.Context) *models.CurveSnapshot {
	b, ok, err := s.store.GetBytes(ctx, s.cacheKey())
	if err != nil {
		s.logger.Warn("cache read failed", applogger.Error(err))
		return nil
	}
	if !ok {
		return nil
	}
	var snap models.CurveSnapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		s.logger.Warn("cached snapshot corrupt, rebuilding", applogger.Error(err))
		return nil
	}
	return &snap
}

// rebuild fetches all configured series concurrently, each goroutine writing
// an independent slot, and assembles the result. A failed maturity never
// blocks the others; its column just stays unpopulated. Caller holds s.mu.
func (s *CurveService) rebuild(ctx context.Context) (*models.CurveSnapshot, error) {
	started := s.now()
	start := util.LookbackStart(started, s.cfg.Analytics.LookbackYears)
	end := util.Midnight(started)

	type slot struct {
		label    string
		seriesID string
		obs      []drepo.Observation
		err      error
	}

	slots := make([]slot, 0, len(s.cfg.FRED.Series))
	for label, id := range s.cfg.FRED.Series {
		if id == "" {
			// Configuration gap: this maturity's column can never populate.
			s.logger.Warn("maturity has no series mapping", applogger.String("maturity", label))
			continue
		}
		slots = append(slots, slot{label: label, seriesID: id})
	}

	var wg sync.WaitGroup
	for i := range slots {
		wg.Add(1)
		go func(sl *slot) {
			defer wg.Done()
			sl.obs, sl.err = s.source.FetchSeries(ctx, sl.seriesID, start, end)
		}(&slots[i])
	}
	wg.Wait()

	series := make(map[string][]drepo.Observation, len(slots))
	fetchErrs := map[string]string{}
	failed := 0
	for _, sl := range slots {
		if sl.err != nil {
			failed++
			fetchErrs[sl.label] = sl.err.Error()
			s.metrics.RecordFetch(sl.seriesID, "error")
			s.metrics.RecordError("fetch")
			s.logger.Error("series fetch failed",
				applogger.String("maturity", sl.label),
				applogger.String("series", sl.seriesID),
				applogger.Error(sl.err),
			)
			continue
		}
		outcome := "ok"
		if len(sl.obs) == 0 {
			outcome = "empty"
		}
		s.metrics.RecordFetch(sl.seriesID, outcome)
		series[sl.label] = sl.obs
	}

	if len(slots) > 0 && failed == len(slots) {
		return nil, fmt.Errorf("all %d series fetches failed: %w", failed, drepo.ErrUnavailable)
	}

	table := analytics.AssembleCurve(series)
	snap := &models.CurveSnapshot{
		AsOf:  started,
		Table: table,
	}
	if len(fetchErrs) > 0 {
		snap.FetchErrors = fetchErrs
	}

	episodes := s.detector.Detect(&table, s.cfg.Analytics.ShortMaturity, s.cfg.Analytics.LongMaturity)
	s.metrics.RecordSnapshot(len(table.Rows), len(episodes))
	if latest, ok := table.Latest(); ok {
		for m, v := range latest.Yields {
			s.metrics.RecordLastYield(m, v)
		}
	}
	s.metrics.RecordLatency("refresh", s.now().Sub(started).Seconds())

	if b, err := json.Marshal(snap); err == nil {
		if err := s.store.SetBytes(ctx, s.cacheKey(), b, s.cfg.Cache.TTL); err != nil {
			s.logger.Warn("cache write failed", applogger.Error(err))
		}
	}

	s.logger.Info("curve snapshot rebuilt",
		applogger.Int("observations", len(table.Rows)),
		applogger.Int("maturities", len(table.Maturities)),
		applogger.Int("fetch_errors", len(fetchErrs)),
		applogger.Duration("took", s.now().Sub(started)),
	)

	for _, l := range s.listeners {
		l(snap.AsOf)
	}
	return snap, nil
}

// knownMaturity checks the label against the configured series table.
func (s *CurveService) knownMaturity(label string) (string, error) {
	label = models.NormalizeMaturity(label)
	if _, ok := s.cfg.FRED.Series[label]; !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownMaturity, label)
	}
	return label, nil
}

// Metrics returns (latest, trailing average, delta) for one maturity.
func (s *CurveService) Metrics(ctx context.Context, maturity string) (models.MaturityMetrics, error) {
	label, err := s.knownMaturity(maturity)
	if err != nil {
		return models.MaturityMetrics{}, err
	}
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return models.MaturityMetrics{}, err
	}
	m, ok := analytics.ComputeMetrics(&snap.Table, label, s.cfg.Analytics.TrailingWindow)
	if !ok {
		return models.MaturityMetrics{}, fmt.Errorf("maturity %s: %w", label, ErrNoData)
	}
	return m, nil
}

// Spread returns the short−long spread series for a maturity pair.
func (s *CurveService) Spread(ctx context.Context, short, long string) (models.SpreadSeries, error) {
	shortL, err := s.knownMaturity(short)
	if err != nil {
		return models.SpreadSeries{}, err
	}
	longL, err := s.knownMaturity(long)
	if err != nil {
		return models.SpreadSeries{}, err
	}
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return models.SpreadSeries{}, err
	}
	return analytics.BuildSpread(&snap.Table, shortL, longL), nil
}

// Inversions returns the inversion episodes for a maturity pair, oldest first.
func (s *CurveService) Inversions(ctx context.Context, short, long string) ([]models.InversionEpisode, error) {
	shortL, err := s.knownMaturity(short)
	if err != nil {
		return nil, err
	}
	longL, err := s.knownMaturity(long)
	if err != nil {
		return nil, err
	}
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return s.detector.Detect(&snap.Table, shortL, longL), nil
}

// History returns the observations of one maturity, optionally limited to the
// most recent n points.
func (s *CurveService) History(ctx context.Context, maturity string, limit int) ([]models.YieldPoint, error) {
	label, err := s.knownMaturity(maturity)
	if err != nil {
		return nil, err
	}
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	col := snap.Table.Column(label)
	if limit > 0 && len(col) > limit {
		col = col[len(col)-limit:]
	}
	return col, nil
}

// LatestCurve returns the most recent cross-section for the curve chart.
func (s *CurveService) LatestCurve(ctx context.Context) (models.LatestCurve, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return models.LatestCurve{}, err
	}
	row, ok := snap.Table.Latest()
	if !ok {
		return models.LatestCurve{}, ErrNoData
	}
	curve := models.LatestCurve{Date: row.Date}
	for _, m := range snap.Table.Maturities {
		if v, has := row.Yields[m]; has {
			curve.Points = append(curve.Points, models.CurvePoint{
				Maturity: m,
				Years:    models.MaturityYears(m),
				Yield:    v,
			})
		}
	}
	return curve, nil
}

// Summary builds the dashboard status header for the configured pair.
func (s *CurveService) Summary(ctx context.Context) (models.DashboardSummary, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return models.DashboardSummary{}, err
	}

	short := s.cfg.Analytics.ShortMaturity
	long := s.cfg.Analytics.LongMaturity

	sum := models.DashboardSummary{AsOf: snap.AsOf, Status: "no_data", NoData: true}
	if snap.Table.Empty() {
		return sum, nil
	}

	sum.NoData = false
	sum.Status = "normal"
	sum.Observations = len(snap.Table.Rows)
	first := snap.Table.Rows[0].Date
	last := snap.Table.Rows[len(snap.Table.Rows)-1].Date
	sum.DataStart = &first
	sum.DataEnd = &last

	if m, ok := analytics.ComputeMetrics(&snap.Table, short, s.cfg.Analytics.TrailingWindow); ok {
		sum.Short = &m
	}
	if m, ok := analytics.ComputeMetrics(&snap.Table, long, s.cfg.Analytics.TrailingWindow); ok {
		sum.Long = &m
	}

	spread := analytics.BuildSpread(&snap.Table, short, long)
	if n := len(spread.Points); n > 0 {
		latest := spread.Points[n-1]
		bps := latest.Bps()
		sum.SpreadBps = &bps
		// Inverted when the term spread sits below the configured threshold.
		if -latest.Value < s.cfg.Analytics.InversionThreshold {
			sum.Status = "inverted"
		}
	}

	if col := snap.Table.Column(long); len(col) > 0 {
		lo, hi := col[0].Yield, col[0].Yield
		for _, p := range col[1:] {
			if p.Yield < lo {
				lo = p.Yield
			}
			if p.Yield > hi {
				hi = p.Yield
			}
		}
		sum.LongMin = &lo
		sum.LongMax = &hi
	}

	sum.Episodes = len(s.detector.Detect(&snap.Table, short, long))
	return sum, nil
}

// Health reports source connectivity and the cached snapshot's age.
type Health struct {
	SourceOK     bool       `json:"source_ok"`
	SourceError  string     `json:"source_error,omitempty"`
	SnapshotAge  *float64   `json:"snapshot_age_seconds,omitempty"`
	SnapshotAsOf *time.Time `json:"snapshot_as_of,omitempty"`
}

// CheckHealth pings the data source and inspects the cached snapshot without
// triggering a rebuild.
func (s *CurveService) CheckHealth(ctx context.Context) Health {
	h := Health{SourceOK: true}
	if err := s.source.Ping(ctx); err != nil {
		h.SourceOK = false
		h.SourceError = err.Error()
	}
	if snap := s.cached(ctx); snap != nil {
		age := s.now().Sub(snap.AsOf).Seconds()
		h.SnapshotAge = &age
		h.SnapshotAsOf = &snap.AsOf
	}
	return h
}

// Recessions exposes the configured annotation ranges for chart shading.
func (s *CurveService) Recessions() []config.DateRange {
	return s.cfg.Recessions
}

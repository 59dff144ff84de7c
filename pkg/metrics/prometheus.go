package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	fetchesTotal    *prometheus.CounterVec
	errorsTotal     *prometheus.CounterVec
	lastYield       *prometheus.GaugeVec
	refreshDuration *prometheus.HistogramVec
	snapshotRows    prometheus.Gauge
	inversionCount  prometheus.Gauge
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		fetchesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "curvewatch_series_fetches_total",
				Help: "Total number of FRED series fetches",
			},
			[]string{"series", "outcome"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "curvewatch_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastYield: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "curvewatch_last_yield_percent",
				Help: "Latest observed yield per maturity, in percent",
			},
			[]string{"maturity"},
		),
		refreshDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "curvewatch_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		snapshotRows: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "curvewatch_snapshot_observations",
				Help: "Number of dates in the current curve snapshot",
			},
		),
		inversionCount: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "curvewatch_inversion_episodes",
				Help: "Number of inversion episodes in the current snapshot",
			},
		),
	}
}

// RecordFetch records a FRED series fetch with its outcome ("ok", "empty", "error").
func (r *Recorder) RecordFetch(series, outcome string) {
	r.fetchesTotal.WithLabelValues(series, outcome).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastYield records the latest yield for a maturity.
func (r *Recorder) RecordLastYield(maturity string, yield float64) {
	r.lastYield.WithLabelValues(maturity).Set(yield)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.refreshDuration.WithLabelValues(op).Observe(seconds)
}

// RecordSnapshot records the size and episode count of a freshly built snapshot.
func (r *Recorder) RecordSnapshot(observations, episodes int) {
	r.snapshotRows.Set(float64(observations))
	r.inversionCount.Set(float64(episodes))
}

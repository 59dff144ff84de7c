package repository

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable marks connectivity/auth failures against the data source,
// distinct from a series that simply returned no observations.
var ErrUnavailable = errors.New("series source unavailable")

// Observation is one (date, value) point of a raw time series.
type Observation struct {
	Date  time.Time
	Value float64
}

// SeriesSource is the capability boundary to the external economic-data API.
// Implementations return observations in ascending date order; an empty slice
// is valid and means the series had no data in the window.
type SeriesSource interface {
	FetchSeries(ctx context.Context, seriesID string, start, end time.Time) ([]Observation, error)
	Ping(ctx context.Context) error
}

// Metrics records operational metrics.
type Metrics interface {
	RecordFetch(series, outcome string)
	RecordError(kind string)
	RecordLastYield(maturity string, yield float64)
	RecordLatency(op string, seconds float64)
	RecordSnapshot(observations, episodes int)
}

package models

import "time"

// DashboardSummary backs the dashboard's status header: latest metrics for the
// configured spread pair, the current spread, and dataset statistics.
type DashboardSummary struct {
	NoData       bool             `json:"no_data,omitempty"`
	AsOf         time.Time        `json:"as_of"`
	Status       string           `json:"status"` // "inverted", "normal", "no_data"
	Short        *MaturityMetrics `json:"short,omitempty"`
	Long         *MaturityMetrics `json:"long,omitempty"`
	SpreadBps    *float64         `json:"spread_bps,omitempty"` // short − long at the latest common date
	Observations int              `json:"observations"`
	DataStart    *time.Time       `json:"data_start,omitempty"`
	DataEnd      *time.Time       `json:"data_end,omitempty"`
	LongMin      *float64         `json:"long_min,omitempty"`
	LongMax      *float64         `json:"long_max,omitempty"`
	Episodes     int              `json:"episodes"`
}

// LatestCurve is the most recent cross-section of the table, shaped for the
// curve chart (yield against term length).
type LatestCurve struct {
	Date   time.Time    `json:"date"`
	Points []CurvePoint `json:"points"`
}

type CurvePoint struct {
	Maturity string  `json:"maturity"`
	Years    float64 `json:"years"`
	Yield    float64 `json:"yield"`
}

package models

import "time"

// YieldPoint is a single observation of one maturity on one date.
type YieldPoint struct {
	Date     time.Time `json:"date"`
	Maturity string    `json:"maturity"`
	Yield    float64   `json:"yield"` // percent, e.g. 4.25
}

// CurveRow holds all observed yields for one date. A maturity absent from
// Yields has no observation on that date; it is never zero-filled.
type CurveRow struct {
	Date   time.Time          `json:"date"`
	Yields map[string]float64 `json:"yields"`
}

// Has reports whether the maturity was observed on this date.
func (r CurveRow) Has(maturity string) bool {
	_, ok := r.Yields[maturity]
	return ok
}

// CurveTable is the aligned yield table: rows in strictly increasing date
// order, one row per date, at least one maturity per row. Built once per
// refresh and read-only afterward.
type CurveTable struct {
	Maturities []string   `json:"maturities"` // columns present, tenor order
	Rows       []CurveRow `json:"rows"`
}

// Empty reports whether the table holds no observations at all.
func (t *CurveTable) Empty() bool {
	return len(t.Rows) == 0
}

// Latest returns the most recent row.
func (t *CurveTable) Latest() (CurveRow, bool) {
	if t.Empty() {
		return CurveRow{}, false
	}
	return t.Rows[len(t.Rows)-1], true
}

// HasMaturity reports whether the column exists in the table.
func (t *CurveTable) HasMaturity(maturity string) bool {
	for _, m := range t.Maturities {
		if m == maturity {
			return true
		}
	}
	return false
}

// Column extracts the observations of one maturity, preserving date order.
func (t *CurveTable) Column(maturity string) []YieldPoint {
	points := make([]YieldPoint, 0, len(t.Rows))
	for _, row := range t.Rows {
		if v, ok := row.Yields[maturity]; ok {
			points = append(points, YieldPoint{Date: row.Date, Maturity: maturity, Yield: v})
		}
	}
	return points
}

// SpreadPoint is one entry of a spread series, in percentage points.
type SpreadPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Bps returns the spread in basis points.
func (p SpreadPoint) Bps() float64 {
	return p.Value * 100
}

// SpreadSeries is the pointwise short−long difference, defined only at dates
// where both maturities were observed.
type SpreadSeries struct {
	Short  string        `json:"short"`
	Long   string        `json:"long"`
	Points []SpreadPoint `json:"points"`
}

// InversionEpisode is a contiguous run of dates where the spread stayed below
// the inversion threshold. DurationDays counts calendar days inclusively
// (end − start + 1), so a run covering D6..D15 of daily data is 10 days.
type InversionEpisode struct {
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	DurationDays    int       `json:"duration_days"`
	MaxInversionBps float64   `json:"max_inversion_bps"` // most negative spread, as positive bps
	Open            bool      `json:"open,omitempty"`    // still inverted at the end of the series
}

// MaturityMetrics is the dashboard metric triple for one maturity. Delta is
// nil when fewer than two observations exist.
type MaturityMetrics struct {
	Maturity    string    `json:"maturity"`
	Latest      float64   `json:"latest"`
	LatestDate  time.Time `json:"latest_date"`
	TrailingAvg float64   `json:"trailing_avg"`
	Window      int       `json:"window"` // rows actually averaged
	Delta       *float64  `json:"delta,omitempty"`
}

// CurveSnapshot is one refresh cycle's output: the aligned table plus
// per-maturity fetch failures. Snapshots are immutable once built.
type CurveSnapshot struct {
	AsOf        time.Time         `json:"as_of"`
	Table       CurveTable        `json:"table"`
	FetchErrors map[string]string `json:"fetch_errors,omitempty"` // maturity -> error
}

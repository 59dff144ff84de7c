// Package analytics holds the yield-curve computations: table assembly,
// maturity metrics, spread series, and inversion detection. Everything here
// is a pure function over an immutable CurveTable.
package analytics

import (
	"sort"
	"time"

	"CurveWatch/internal/domain/models"
	drepo "CurveWatch/internal/domain/repository"
	"CurveWatch/pkg/util"
)

// AssembleCurve aligns per-maturity raw series into a single table. The date
// axis is the union of all input dates (outer join), ascending and unique.
// A maturity whose series is entirely empty is omitted as a column; a
// maturity missing on a given date stays absent in that row. If every input
// is empty the result is an explicitly empty table, which callers must treat
// as a terminal no-data state.
func AssembleCurve(series map[string][]drepo.Observation) models.CurveTable {
	maturities := make([]string, 0, len(series))
	byDate := make(map[time.Time]map[string]float64)

	for label, obs := range series {
		if len(obs) == 0 {
			continue
		}
		maturities = append(maturities, label)
		for _, o := range obs {
			d := util.Midnight(o.Date)
			row, ok := byDate[d]
			if !ok {
				row = make(map[string]float64, len(series))
				byDate[d] = row
			}
			row[label] = o.Value
		}
	}

	if len(byDate) == 0 {
		return models.CurveTable{}
	}

	models.SortMaturities(maturities)

	dates := make([]time.Time, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	rows := make([]models.CurveRow, 0, len(dates))
	for _, d := range dates {
		rows = append(rows, models.CurveRow{Date: d, Yields: byDate[d]})
	}

	return models.CurveTable{Maturities: maturities, Rows: rows}
}

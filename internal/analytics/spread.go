package analytics

import (
	"CurveWatch/internal/domain/models"
)

// BuildSpread computes the pointwise short−long difference across the table.
// A date where either maturity is absent contributes no point at all; there
// is no interpolation and no zero-filling. The short−long orientation matches
// the dashboard chart: positive values mean the curve is inverted.
func BuildSpread(t *models.CurveTable, short, long string) models.SpreadSeries {
	s := models.SpreadSeries{Short: short, Long: long}
	for _, row := range t.Rows {
		sv, okS := row.Yields[short]
		lv, okL := row.Yields[long]
		if !okS || !okL {
			continue
		}
		s.Points = append(s.Points, models.SpreadPoint{Date: row.Date, Value: sv - lv})
	}
	return s
}

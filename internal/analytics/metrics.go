package analytics

import (
	"CurveWatch/internal/domain/models"
)

// ComputeMetrics returns the latest yield of a maturity, its trailing average
// over up to `window` observations preceding the latest one, and the delta
// between them. The window counts table rows, not calendar days; gaps in the
// source calendar are already absent. With fewer rows than requested the
// average shrinks to what exists; with only the latest observation there is
// nothing to average against and Delta stays nil.
//
// ok is false when the maturity has no observations in the table.
func ComputeMetrics(t *models.CurveTable, maturity string, window int) (models.MaturityMetrics, bool) {
	col := t.Column(maturity)
	if len(col) == 0 {
		return models.MaturityMetrics{}, false
	}

	latest := col[len(col)-1]
	m := models.MaturityMetrics{
		Maturity:   maturity,
		Latest:     latest.Yield,
		LatestDate: latest.Date,
	}

	prior := col[:len(col)-1]
	if len(prior) > window {
		prior = prior[len(prior)-window:]
	}

	if len(prior) == 0 {
		m.TrailingAvg = latest.Yield
		return m, true
	}

	var sum float64
	for _, p := range prior {
		sum += p.Yield
	}
	m.TrailingAvg = sum / float64(len(prior))
	m.Window = len(prior)

	delta := latest.Yield - m.TrailingAvg
	m.Delta = &delta
	return m, true
}

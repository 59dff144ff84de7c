package analytics

import (
	"CurveWatch/internal/domain/models"
	"CurveWatch/pkg/util"
)

// InversionDetector scans a maturity pair for contiguous inverted runs. It
// evaluates the term spread (long − short): the curve is INVERTED on a date
// where that spread is strictly below Threshold, NORMAL when greater than or
// equal to it. Equality at the boundary is never inverted.
type InversionDetector struct {
	// Threshold in percentage points on the long−short spread. 0.0 means any
	// date where the short yield exceeds the long yield is inverted.
	Threshold float64
	// MinDays filters noise: episodes spanning fewer calendar days (inclusive
	// of both endpoints) are discarded.
	MinDays int
}

// Detect walks the dates where both maturities are observed, in order, and
// returns the inversion episodes chronologically. An episode runs from the
// first inverted date through the last date before the spread normalizes;
// a series that ends while inverted yields an episode closed at the final
// observation, flagged Open. Output is deterministic for a given table.
func (d InversionDetector) Detect(t *models.CurveTable, short, long string) []models.InversionEpisode {
	episodes := []models.InversionEpisode{}

	inverted := false
	var cur models.InversionEpisode
	var worst float64 // most negative term spread in the current run

	for _, row := range t.Rows {
		sv, okS := row.Yields[short]
		lv, okL := row.Yields[long]
		if !okS || !okL {
			continue
		}
		spread := lv - sv

		switch {
		case spread < d.Threshold && !inverted:
			// NORMAL -> INVERTED: open a candidate episode.
			inverted = true
			cur = models.InversionEpisode{Start: row.Date}
			worst = spread
		case spread < d.Threshold && inverted:
			cur.End = row.Date
			if spread < worst {
				worst = spread
			}
		case spread >= d.Threshold && inverted:
			// INVERTED -> NORMAL: the episode ended on the previous inverted date.
			inverted = false
			episodes = d.close(episodes, cur, worst, false)
		}

		if inverted && cur.End.IsZero() {
			cur.End = row.Date
		}
	}

	if inverted {
		episodes = d.close(episodes, cur, worst, true)
	}

	return episodes
}

func (d InversionDetector) close(episodes []models.InversionEpisode, ep models.InversionEpisode, worst float64, open bool) []models.InversionEpisode {
	if ep.End.IsZero() {
		ep.End = ep.Start
	}
	// Inclusive calendar-day span: a run covering D6..D15 counts as 10 days.
	ep.DurationDays = util.DaysBetween(ep.Start, ep.End) + 1
	if ep.DurationDays < d.MinDays {
		return episodes
	}
	// Most negative term spread in the run, as a positive magnitude. A positive
	// threshold can open episodes whose spread never went negative; clamp those.
	ep.MaxInversionBps = -worst * 100
	if ep.MaxInversionBps < 0 {
		ep.MaxInversionBps = 0
	}
	ep.Open = open
	return append(episodes, ep)
}

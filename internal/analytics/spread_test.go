package analytics

import (
	"testing"

	drepo "CurveWatch/internal/domain/repository"

	"github.com/stretchr/testify/require"
)

func TestBuildSpreadSkipsPartialDates(t *testing.T) {
	table := AssembleCurve(map[string][]drepo.Observation{
		"2Y":  obs(map[int]float64{1: 4.5, 2: 4.6, 4: 4.7}),
		"10Y": obs(map[int]float64{1: 4.0, 3: 4.1, 4: 4.2}),
	})

	s := BuildSpread(&table, "2Y", "10Y")

	// Only dates where both maturities are present.
	require.Len(t, s.Points, 2)
	require.Equal(t, day(1), s.Points[0].Date)
	require.InDelta(t, 0.5, s.Points[0].Value, 1e-12)
	require.Equal(t, day(4), s.Points[1].Date)
	require.InDelta(t, 0.5, s.Points[1].Value, 1e-12)
}

func TestBuildSpreadRoundTripsTable(t *testing.T) {
	table := AssembleCurve(map[string][]drepo.Observation{
		"2Y":  obs(map[int]float64{1: 4.83, 2: 4.91, 3: 4.76}),
		"10Y": obs(map[int]float64{1: 4.12, 2: 4.25, 3: 4.31}),
	})

	s := BuildSpread(&table, "2Y", "10Y")
	require.Len(t, s.Points, 3)

	// Reconstructing the spread from the table at each point matches exactly.
	for _, p := range s.Points {
		var row = func() map[string]float64 {
			for _, r := range table.Rows {
				if r.Date.Equal(p.Date) {
					return r.Yields
				}
			}
			return nil
		}()
		require.NotNil(t, row)
		require.Equal(t, row["2Y"]-row["10Y"], p.Value)
	}
}

func TestBuildSpreadEmptyTable(t *testing.T) {
	table := AssembleCurve(nil)
	s := BuildSpread(&table, "2Y", "10Y")
	require.Empty(t, s.Points)
	require.Equal(t, "2Y", s.Short)
	require.Equal(t, "10Y", s.Long)
}

func TestSpreadPointBps(t *testing.T) {
	table := AssembleCurve(map[string][]drepo.Observation{
		"2Y":  obs(map[int]float64{1: 5.00}),
		"10Y": obs(map[int]float64{1: 4.50}),
	})
	s := BuildSpread(&table, "2Y", "10Y")
	require.InDelta(t, 50.0, s.Points[0].Bps(), 1e-9)
}

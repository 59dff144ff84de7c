package models

import (
	"sort"
	"strings"
)

// maturityYears orders maturity labels by term length for curve plotting.
var maturityYears = map[string]float64{
	"1M":  1.0 / 12,
	"3M":  0.25,
	"6M":  0.5,
	"1Y":  1,
	"2Y":  2,
	"3Y":  3,
	"5Y":  5,
	"7Y":  7,
	"10Y": 10,
	"20Y": 20,
	"30Y": 30,
}

// NormalizeMaturity canonicalizes a maturity label ("10y " -> "10Y").
func NormalizeMaturity(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// MaturityYears returns the term in years for a label, or 0 if unknown.
func MaturityYears(label string) float64 {
	return maturityYears[NormalizeMaturity(label)]
}

// SortMaturities orders labels from shortest to longest tenor. Unknown labels
// sort last, alphabetically, so a misconfigured table still renders stably.
func SortMaturities(labels []string) {
	sort.Slice(labels, func(i, j int) bool {
		yi, oki := maturityYears[labels[i]]
		yj, okj := maturityYears[labels[j]]
		if oki && okj {
			return yi < yj
		}
		if oki != okj {
			return oki
		}
		return labels[i] < labels[j]
	})
}

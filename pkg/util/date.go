package util

import (
    "time"
)

// DateLayout is the ISO date format used by FRED observations.
const DateLayout = "2006-01-02"

// ParseDate parses an ISO date (YYYY-MM-DD) into a UTC midnight time.
// Returns (t, true) if it parsed.
func ParseDate(s string) (time.Time, bool) {
    if s == "" {
        return time.Time{}, false
    }
    t, err := time.Parse(DateLayout, s)
    if err != nil {
        return time.Time{}, false
    }
    return t.UTC(), true
}

// ParseDateDefault parses a date or returns default if empty/invalid.
func ParseDateDefault(s string, def time.Time) time.Time {
    if t, ok := ParseDate(s); ok {
        return t
    }
    return def
}

// FormatDate renders a time as an ISO date.
func FormatDate(t time.Time) string {
    return t.UTC().Format(DateLayout)
}

// Midnight truncates a time to UTC midnight so observation dates compare equal
// regardless of the clock component they arrived with.
func Midnight(t time.Time) time.Time {
    u := t.UTC()
    return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole calendar days from a to b.
func DaysBetween(a, b time.Time) int {
    return int(Midnight(b).Sub(Midnight(a)) / (24 * time.Hour))
}

// LookbackStart returns the date `years` calendar years before now.
func LookbackStart(now time.Time, years int) time.Time {
    return Midnight(now.AddDate(-years, 0, 0))
}

package util

import (
	"strconv"
	"time"
)

const (
	// LayoutISO is the canonical internal date form (YYYY-MM-DD).
	LayoutISO = "2006-01-02"
	// LayoutDMY is the preferred request date form (DD-MM-YYYY).
	LayoutDMY = "02-01-2006"
)

// ParseFlexibleDate tries DD-MM-YYYY first, then YYYY-MM-DD.
// Returns (t, true) if either worked.
func ParseFlexibleDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(LayoutDMY, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(LayoutISO, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// NormalizeDate reformats an accepted date string to YYYY-MM-DD.
func NormalizeDate(s string) (string, bool) {
	t, ok := ParseFlexibleDate(s)
	if !ok {
		return "", false
	}
	return t.Format(LayoutISO), true
}

// FormatDateValue reformats a date-like value to YYYY-MM-DD on a best-effort
// basis. Unparsable input comes back untouched.
func FormatDateValue(s string) string {
	if s == "" {
		return s
	}
	for _, layout := range []string{
		LayoutISO,
		LayoutDMY,
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(LayoutISO)
		}
	}
	// unix seconds; the bound keeps small integers (row positions) untouched
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 1_000_000_000 {
		return time.Unix(ts, 0).UTC().Format(LayoutISO)
	}
	return s
}

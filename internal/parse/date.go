package parse

import (
	"strings"
	"time"
)

// CoerceDate tries the date layouts news sources actually emit: RFC3339 and
// ISO first, then dd/mm (current year), then a bare year. A zero time means
// nothing matched; callers treat that as a null date.
func CoerceDate(tok string) time.Time {
	tok = strings.TrimSpace(tok)
	if tok == "" {
		return time.Time{}
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02",
		"Jan-02-06 03:04PM",
		"Jan-02-06",
		"Jan 2, 2006",
		"03:04PM",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, tok); err == nil {
			// Time-only tokens inherit today's date.
			if layout == "03:04PM" {
				now := time.Now().UTC()
				return time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC)
			}
			return t.UTC()
		}
	}
	// dd/mm in the current year.
	if parts := strings.Split(tok, "/"); len(parts) == 2 {
		if d, err1 := time.Parse("2/1", tok); err1 == nil {
			now := time.Now().UTC()
			return time.Date(now.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
		}
	}
	// Bare year.
	if len(tok) == 4 {
		if t, err := time.Parse("2006", tok); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// FactorDate maps factor-archive date tokens onto calendar keys by length:
// 4 digits is a year (keyed to Dec 31), 6 digits a month (keyed to month
// end), 8 digits a day.
func FactorDate(tok string) (time.Time, bool) {
	tok = strings.TrimSpace(tok)
	switch len(tok) {
	case 4:
		t, err := time.Parse("2006", tok)
		if err != nil {
			return time.Time{}, false
		}
		return time.Date(t.Year(), 12, 31, 0, 0, 0, 0, time.UTC), true
	case 6:
		t, err := time.Parse("200601", tok)
		if err != nil {
			return time.Time{}, false
		}
		return monthEnd(t), true
	case 8:
		t, err := time.Parse("20060102", tok)
		if err != nil {
			return time.Time{}, false
		}
		return t.UTC(), true
	}
	return time.Time{}, false
}

func monthEnd(t time.Time) time.Time {
	firstOfNext := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	return firstOfNext.AddDate(0, 0, -1)
}

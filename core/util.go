package core

import (
	"strings"
	"time"

	"github.com/jinzhu/now"
)

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// DateLayouts describes the inputs ParseDate accepts.
const DateLayouts = "YYYY-MM-DD or YYYY/MM/DD, optionally followed by a time"

// ParseDate parses a calendar date (2006-01-02, 2006/01/02, 2006-01-02 15:04, RFC 3339)
// and truncates it to midnight UTC of that calendar day.
// Day-first and month-first layouts are rejected as ambiguous.
func ParseDate(s string) (time.Time, error) {
	cfg := &now.Config{
		WeekStartDay: time.Monday,
		TimeLocation: time.UTC,
		TimeFormats: []string{
			"2006-01-02", "2006/01/02",
			"2006-01-02 15:04", "2006-01-02 15:04:05", "2006/01/02 15:04",
			time.RFC3339,
		},
	}
	t, err := cfg.Parse(CleanString(s))
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}

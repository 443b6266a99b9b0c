package api

import (
	"fmt"
	"time"

	"github.com/jinzhu/now"
)

// parseDate accepts a plain date or an RFC 3339 timestamp.
func parseDate(s string) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
}

// parseStartDate parses an inclusive lower date bound.
func parseStartDate(s string) (time.Time, error) {
	return parseDate(s)
}

// parseEndDate parses an inclusive upper date bound, extended to the end of
// its day so date-only input covers the whole day.
func parseEndDate(s string) (time.Time, error) {
	t, err := parseDate(s)
	if err != nil {
		return time.Time{}, err
	}
	return now.With(t).EndOfDay(), nil
}

// Package duration provides parsing for human-readable duration strings.
package duration

import (
	"fmt"
	"time"
)

// Parse parses human-readable durations like "200ms", "1h", "30d", "6mo".
func Parse(s string) (time.Duration, error) {
	var n int
	var unit string

	if _, err := fmt.Sscanf(s, "%d%s", &n, &unit); err != nil {
		return 0, fmt.Errorf("invalid duration format: %s (use e.g., 200ms, 1h, 30d)", s)
	}

	switch unit {
	case "ms":
		return time.Duration(n) * time.Millisecond, nil
	case "s", "sec", "secs":
		return time.Duration(n) * time.Second, nil
	case "m", "min", "mins":
		return time.Duration(n) * time.Minute, nil
	case "h", "hr", "hrs", "hour", "hours":
		return time.Duration(n) * time.Hour, nil
	case "d", "day", "days":
		return time.Duration(n) * 24 * time.Hour, nil
	case "w", "wk", "wks", "week", "weeks":
		return time.Duration(n) * 7 * 24 * time.Hour, nil
	case "mo", "month", "months":
		return time.Duration(n) * 30 * 24 * time.Hour, nil
	case "y", "yr", "yrs", "year", "years":
		return time.Duration(n) * 365 * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("unknown duration unit: %s", unit)
	}
}

// ParseSince parses a duration string and returns the time that far in
// the past from now.
func ParseSince(s string) (time.Time, error) {
	d, err := Parse(s)
	if err != nil {
		return time.Time{}, err
	}
	return time.Now().Add(-d), nil
}

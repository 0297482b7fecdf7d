package util

import (
	"strconv"
	"time"
)

// ParseTime tries RFC3339, RFC3339Nano, and unix seconds. Returns (t, true) if any worked.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		return time.Unix(ts, 0), true
	}
	return time.Time{}, false
}

// ParseTimeDefault parses time or returns default if empty/invalid.
func ParseTimeDefault(s string, def time.Time) time.Time {
	if t, ok := ParseTime(s); ok {
		return t
	}
	return def
}

// UntilNextBoundary returns how long to sleep so the next wake lands on the
// next wall-clock boundary of the cadence. Recomputing this every cycle
// keeps the schedule drift-free, unlike a fixed sleep(cadence).
func UntilNextBoundary(now time.Time, cadence time.Duration) time.Duration {
	if cadence <= 0 {
		return 0
	}
	return cadence - time.Duration(now.UnixNano())%cadence
}

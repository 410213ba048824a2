package service

import (
	"strings"
	"time"

	"marocpos/backend/internal/store"
)

const (
	dayLayout      = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"

	startOfDaySuffix = "00:00:00"
	endOfDaySuffix   = "23:59:59"
)

// expandBound widens a date string to a full timestamp. A bare day gets the
// given clock suffix appended; a value that already carries a time component
// is kept as-is.
func expandBound(value string, suffix string) string {
	value = strings.TrimSpace(value)
	if strings.Contains(value, " ") {
		return value
	}
	return value + " " + suffix
}

func parseBound(value string, suffix string) (time.Time, error) {
	t, err := time.ParseInLocation(dateTimeLayout, expandBound(value, suffix), time.UTC)
	if err != nil {
		return time.Time{}, store.ErrInvalidInput
	}
	return t, nil
}

// optionalBound parses an optional report date filter. Empty means
// unbounded on that side.
func optionalBound(value string, suffix string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	t, err := parseBound(value, suffix)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// dayBounds resolves a single-day window. An empty day means today (UTC).
func dayBounds(day string, now time.Time) (string, time.Time, time.Time, error) {
	day = strings.TrimSpace(day)
	if day == "" {
		day = now.UTC().Format(dayLayout)
	}
	if _, err := time.ParseInLocation(dayLayout, day, time.UTC); err != nil {
		return "", time.Time{}, time.Time{}, store.ErrInvalidInput
	}
	from, err := parseBound(day, startOfDaySuffix)
	if err != nil {
		return "", time.Time{}, time.Time{}, err
	}
	to, err := parseBound(day, endOfDaySuffix)
	if err != nil {
		return "", time.Time{}, time.Time{}, err
	}
	return day, from, to, nil
}

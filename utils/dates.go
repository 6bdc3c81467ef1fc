package utils

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// ParseDate parses an ISO date string into a UTC midnight time.Time.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t.UTC(), nil
}

// Today returns the current date at UTC midnight.
func Today() time.Time {
	return Midnight(time.Now().UTC())
}

// Midnight truncates a timestamp to its UTC date.
func Midnight(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

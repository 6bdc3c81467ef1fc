package services

import (
	"fmt"
	"time"
)

// ComputeTotal prices a stay: nightly rate times whole nights over the
// half-open [start, end). No proration, no fees.
func ComputeTotal(priceCents int64, start, end time.Time) (int64, error) {
	nights := nightsBetween(start, end)
	if nights <= 0 {
		return 0, fmt.Errorf("%w: stay must be at least one night", ErrInvalidRange)
	}
	return priceCents * int64(nights), nil
}

func nightsBetween(start, end time.Time) int {
	return int(end.Sub(start) / (24 * time.Hour))
}

// FormatCents renders an integer cent amount as a two-decimal string
// for wire payloads.
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

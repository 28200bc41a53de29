package store

import (
	"strconv"
	"strings"
)

// The hosted document store keeps numeric product fields as strings. The
// drivers own the coercion back to typed values so the rest of the system
// never sees a string-typed price. Invalid or missing values default to zero.

func parseFloatOrZero(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

func parseIntOrZero(s string) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		// Tolerate decimal spellings of whole numbers ("3.0").
		if f, ferr := strconv.ParseFloat(strings.TrimSpace(s), 64); ferr == nil {
			return int(f)
		}
		return 0
	}
	return v
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

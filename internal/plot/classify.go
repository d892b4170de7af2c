// Package plot turns raw column values into chart-ready label/count series.
package plot

import (
	"math"
	"strconv"
	"strings"
)

// ParseNumber parses a cell value as a finite number.
// Blank values, NaN and infinities report false.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// IsMostlyNumeric reports whether at least as many values parse as numbers as do not.
// Ties count as numeric.
func IsMostlyNumeric(values []string) bool {
	numeric := 0
	for _, v := range values {
		if _, ok := ParseNumber(v); ok {
			numeric++
		}
	}
	return numeric >= len(values)-numeric
}

// Numbers returns every value that parses as a finite number, in input order.
func Numbers(values []string) []float64 {
	nums := make([]float64, 0, len(values))
	for _, v := range values {
		if f, ok := ParseNumber(v); ok {
			nums = append(nums, f)
		}
	}
	return nums
}

// FormatNumber renders a number the way it is keyed in value counts:
// shortest round-trip decimal without an exponent.
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

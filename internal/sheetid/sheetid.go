// Package sheetid extracts spreadsheet identifiers and validates cell coordinates.
package sheetid

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	urlPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9_-]+)`)
	rawPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	colPattern = regexp.MustCompile(`^[A-Z]$`)
)

// Parse returns the sheet ID from a pasted spreadsheet URL or a bare ID.
func Parse(input string) (string, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return "", fmt.Errorf("sheet ID is required — paste the spreadsheet URL or its ID")
	}
	if m := urlPattern.FindStringSubmatch(s); m != nil {
		return m[1], nil
	}
	if rawPattern.MatchString(s) {
		return s, nil
	}
	return "", fmt.Errorf("could not find a sheet ID in %q", input)
}

// Column normalizes a column letter. Only single letters A-Z are addressable.
func Column(col string) (string, error) {
	c := strings.ToUpper(strings.TrimSpace(col))
	if c == "" {
		return "", fmt.Errorf("column is required")
	}
	if !colPattern.MatchString(c) {
		return "", fmt.Errorf("invalid column %q (A-Z only)", col)
	}
	return c, nil
}

// Index returns the 1-based index of a normalized column letter.
func Index(col string) int {
	return int(col[0]-'A') + 1
}

// Letter returns the column letter for a 1-based index, or "" when out of range.
func Letter(index int) string {
	if index < 1 || index > 26 {
		return ""
	}
	return string(rune('A' + index - 1))
}

// ValidateRow checks that row addresses a real sheet row.
func ValidateRow(row int) error {
	if row < 1 {
		return fmt.Errorf("row must be 1 or greater, got %d", row)
	}
	return nil
}

package dataset

import (
	"fmt"
	"strings"
)

// monthNumbers maps canonical upper-case month names to 1..12. Source
// tables carry month names as text, sometimes with stray whitespace or
// mixed case.
var monthNumbers = map[string]int{
	"JANUARY":   1,
	"FEBRUARY":  2,
	"MARCH":     3,
	"APRIL":     4,
	"MAY":       5,
	"JUNE":      6,
	"JULY":      7,
	"AUGUST":    8,
	"SEPTEMBER": 9,
	"OCTOBER":   10,
	"NOVEMBER":  11,
	"DECEMBER":  12,
}

var monthNames = [13]string{
	"", "JANUARY", "FEBRUARY", "MARCH", "APRIL", "MAY", "JUNE",
	"JULY", "AUGUST", "SEPTEMBER", "OCTOBER", "NOVEMBER", "DECEMBER",
}

// NormalizeMonth converts a month name to its 1-based number. Input is
// trimmed and upper-cased before lookup.
func NormalizeMonth(name string) (int, error) {
	key := strings.ToUpper(strings.TrimSpace(name))
	num, ok := monthNumbers[key]
	if !ok {
		return 0, fmt.Errorf("%w: unknown month %q", ErrSchema, name)
	}
	return num, nil
}

// MonthName returns the canonical upper-case name for a month number.
func MonthName(num int) (string, error) {
	if num < 1 || num > 12 {
		return "", fmt.Errorf("month number out of range: %d", num)
	}
	return monthNames[num], nil
}

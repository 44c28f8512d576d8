package search

import (
	"strconv"
	"strings"
)

// ParsePrice extracts a comparable number from a raw price cell. Cells
// arrive as "₹8,500", "~4500", "4500-5000", "On Request" or empty; a range
// means its lower bound, anything non-numeric means 0. The zero is the
// "cannot price" marker: it always survives a max-price cut and always
// fails a strictly positive min-price cut.
func ParsePrice(raw string) float64 {
	s := strings.NewReplacer("₹", "", ",", "", "~", "").Replace(raw)
	s = strings.TrimSpace(s)

	if i := strings.IndexByte(s, '-'); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}

	if s == "" || !numeric(s) {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// numeric reports whether s is digits with at most one decimal point.
func numeric(s string) bool {
	dots := 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r == '.':
			dots++
			if dots > 1 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

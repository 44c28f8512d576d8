package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePrice(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want float64
	}{
		{"plain", "8500", 8500},
		{"rupee and separators", "₹8,500", 8500},
		{"approx marker", "~7450", 7450},
		{"padded", "  8500  ", 8500},
		{"decimal", "8500.5", 8500.5},
		{"range lower bound", "4500-5000", 4500},
		{"range with junk", "₹ 12,000 - 15,000", 12000},
		{"text", "On Request", 0},
		{"empty", "", 0},
		{"nan literal", "nan", 0},
		{"two decimal points", "8.5.0", 0},
		{"negative reads as empty lower bound", "-5000", 0},
		{"unit suffix", "8500/sqft", 0},
		{"range with unparsable lower", "abc-5000", 0},
		{"lone dot", ".", 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParsePrice(tc.raw))
		})
	}
}

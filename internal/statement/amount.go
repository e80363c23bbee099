package statement

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ParseAmount converts a raw cell value into a number, stripping thousands
// separators, currency glyphs and whitespace. It reports false for empty or
// unparseable input and never panics.
func ParseAmount(raw string) (float64, bool) {
	cleaned := strings.Map(func(r rune) rune {
		if r == ',' || r == '₹' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)

	if cleaned == "" {
		return 0, false
	}

	n, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

package domain

import (
	"math"
	"strconv"
	"strings"
)

// Missing returns the marker used for a missing numeric value.
func Missing() float64 {
	return math.NaN()
}

// IsMissing reports whether v marks a missing value.
func IsMissing(v float64) bool {
	return math.IsNaN(v)
}

// ParseDecimal parses a numeric cell that may use a decimal comma.
// It returns false for empty cells, placeholder tokens and non-finite values.
func ParseDecimal(s string) (float64, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, " ", ""))
	if s == "" {
		return 0, false
	}
	if strings.Contains(s, ",") {
		if strings.Contains(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
		}
		s = strings.ReplaceAll(s, ",", ".")
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// parseDecimalOrMissing is ParseDecimal with coercion failures mapped to Missing.
func parseDecimalOrMissing(s string) float64 {
	v, ok := ParseDecimal(s)
	if !ok {
		return Missing()
	}
	return v
}

package utils

import (
	"math"
	"strings"

	"github.com/spf13/cast"
)

// ParseNumeric parses a CSV cell as a finite number.
// Surrounding whitespace is ignored. Empty cells, text, NaN and ±Inf are rejected.
func ParseNumeric(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := cast.ToFloat64E(s)
	if err != nil {
		return 0, false
	}
	if !IsFinite(f) {
		return 0, false
	}
	return f, true
}

// IsFinite reports whether f is neither NaN nor ±Inf.
func IsFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// FiniteOrZero returns f, or 0 when f is NaN or ±Inf.
func FiniteOrZero(f float64) float64 {
	if !IsFinite(f) {
		return 0
	}
	return f
}

// IsNumeric checks if a CSV cell parses as a finite number.
func IsNumeric(s string) bool {
	_, ok := ParseNumeric(s)
	return ok
}

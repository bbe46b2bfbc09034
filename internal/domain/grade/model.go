package grade

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Unset is the sentinel stored when no usable grade was entered.
const Unset = "-"

// Scale bounds.
const (
	Min = 1.0
	Max = 7.0
)

// decimalPattern accepts plain decimal notation only; ParseFloat alone would
// also take "inf", "nan", hex floats and underscores.
var decimalPattern = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// Normalize turns raw user input into a stored grade value.
// PRE: none
// POST: returns a one-decimal value in [Min, Max], or Unset for empty or non-numeric input
func Normalize(input string) string {
	s := strings.TrimSpace(input)
	if !decimalPattern.MatchString(s) {
		return Unset
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return Unset
	}
	if v < Min {
		v = Min
	}
	if v > Max {
		v = Max
	}
	return formatTenths(v)
}

// formatTenths rounds the exact binary value of v to one decimal. A value
// exactly halfway between two tenths is only representable as an odd number
// of quarters (x.25, x.75); those round up.
func formatTenths(v float64) string {
	if q := v * 4; q == math.Trunc(q) && math.Mod(q, 2) != 0 {
		return strconv.FormatFloat(math.Ceil(v*10)/10, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// IsStored reports whether value is something Normalize could have produced.
// PRE: none
// POST: true for Unset and one-decimal values within the scale
func IsStored(value string) bool {
	if value == Unset {
		return true
	}
	v, ok := Value(value)
	if !ok {
		return false
	}
	return strconv.FormatFloat(v, 'f', 1, 64) == value
}

// Value parses a stored grade.
// PRE: none
// POST: ok is false for Unset and for anything outside the scale
func Value(stored string) (float64, bool) {
	if stored == Unset || stored == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(stored, 64)
	if err != nil || math.IsNaN(v) || v < Min || v > Max {
		return 0, false
	}
	return v, true
}

// Average returns the mean of the numeric grades in values, ignoring Unset.
// PRE: none
// POST: ok is false when no value is numeric
func Average(values []string) (float64, bool) {
	var sum float64
	var n int
	for _, s := range values {
		if v, ok := Value(s); ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return math.Round(sum/float64(n)*100) / 100, true
}

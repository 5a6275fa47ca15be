package market

import (
	"math"
	"strconv"
)

// ParseFloat converts a raw string payload field to a float64. Parse
// failures, NaN and ±Inf all collapse to NaN, the in-memory absent marker.
// Every numeric field in the system goes through this rule exactly once,
// at the feed boundary.
func ParseFloat(val string) float64 {
	if val == "" {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return math.NaN()
	}
	return f
}

// Finite maps the in-memory NaN marker to nil for persisted output. A
// non-finite value never reaches JSON.
func Finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// FiniteRound behaves like Finite but rounds to the given number of
// decimal places first. Snapshot prices are stored at two decimals.
func FiniteRound(v float64, places int) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	pow := math.Pow(10, float64(places))
	r := math.Round(v*pow) / pow
	return &r
}

// Value unwraps an optional float, returning NaN when absent.
func Value(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}

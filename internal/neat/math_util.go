package neat

import (
	"math"
	"math/rand"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// clamp restricts a value to a given range [minVal, maxVal].
func clamp(value, minVal, maxVal float64) float64 {
	return math.Max(minVal, math.Min(value, maxVal))
}

// parseBoolAttribute parses common string representations of booleans.
func parseBoolAttribute(valStr string) bool {
	switch strings.ToLower(strings.TrimSpace(valStr)) {
	case "true", "yes", "on", "1":
		return true
	default:
		return false
	}
}

// initBoolAttribute resolves a default that may be "random"/"none".
func initBoolAttribute(valStr string, rng *rand.Rand) bool {
	switch strings.ToLower(strings.TrimSpace(valStr)) {
	case "random", "none":
		return rng.Float64() < 0.5
	default:
		return parseBoolAttribute(valStr)
	}
}

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	return stat.Mean(values, nil)
}

// Stdev returns the population standard deviation, or 0 for fewer than two values.
func Stdev(values []float64) float64 {
	if len(values) < 2 {
		return 0.0
	}
	return stat.PopStdDev(values, nil)
}

// Sum returns the sum of values.
func Sum(values []float64) float64 {
	return floats.Sum(values)
}

// MaxFloat returns the largest value, or -Inf for an empty slice.
func MaxFloat(values []float64) float64 {
	if len(values) == 0 {
		return math.Inf(-1)
	}
	return floats.Max(values)
}

// MinFloat returns the smallest value, or +Inf for an empty slice.
func MinFloat(values []float64) float64 {
	if len(values) == 0 {
		return math.Inf(1)
	}
	return floats.Min(values)
}

// Median returns the median, or NaN for an empty slice.
func Median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return math.NaN()
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := n / 2
	if n%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2.0
}

// StatFunctions maps function names to the actual statistical functions.
// Used by Stagnation config.
var StatFunctions = map[string]func([]float64) float64{
	"mean":   Mean,
	"stdev":  Stdev,
	"sum":    Sum,
	"max":    MaxFloat,
	"min":    MinFloat,
	"median": Median,
}

// criterionFunc resolves the fitness criterion used for termination.
func criterionFunc(name string) (func([]float64) float64, error) {
	switch strings.ToLower(name) {
	case "max", "min", "mean":
		return StatFunctions[strings.ToLower(name)], nil
	default:
		return nil, errUnknownCriterion
	}
}

package neat

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// AggregationType defines the type for aggregation functions.
// Every aggregation returns 0 for a node without inputs.
type AggregationType func(inputs []float64) float64

// AggregationFunctions maps function names to the actual aggregation functions.
var AggregationFunctions = map[string]AggregationType{
	"sum":     AggregateSum,
	"product": AggregateProduct,
	"min":     AggregateMin,
	"max":     AggregateMax,
	"mean":    AggregateMean,
	"median":  AggregateMedian,
	"maxabs":  AggregateMaxAbs,
}

// GetAggregation retrieves an aggregation function by name.
func GetAggregation(name string) (AggregationType, error) {
	if fn, ok := AggregationFunctions[name]; ok {
		return fn, nil
	}
	return nil, fmt.Errorf("unknown aggregation function: %s", name)
}

func AggregateSum(inputs []float64) float64 {
	return floats.Sum(inputs)
}

func AggregateProduct(inputs []float64) float64 {
	if len(inputs) == 0 {
		return 0.0
	}
	return floats.Prod(inputs)
}

func AggregateMin(inputs []float64) float64 {
	if len(inputs) == 0 {
		return 0.0
	}
	return floats.Min(inputs)
}

func AggregateMax(inputs []float64) float64 {
	if len(inputs) == 0 {
		return 0.0
	}
	return floats.Max(inputs)
}

func AggregateMean(inputs []float64) float64 {
	if len(inputs) == 0 {
		return 0.0
	}
	return stat.Mean(inputs, nil)
}

func AggregateMedian(inputs []float64) float64 {
	if len(inputs) == 0 {
		return 0.0
	}
	return Median(inputs)
}

// AggregateMaxAbs returns the input with the largest magnitude, sign kept.
func AggregateMaxAbs(inputs []float64) float64 {
	if len(inputs) == 0 {
		return 0.0
	}
	best := inputs[0]
	for _, v := range inputs[1:] {
		if math.Abs(v) > math.Abs(best) {
			best = v
		}
	}
	return best
}

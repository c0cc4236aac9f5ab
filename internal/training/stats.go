package training

import (
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// GenerationStats is the report for one evaluated generation.
type GenerationStats struct {
	RunID       string  `csv:"run_id"`
	Generation  int     `csv:"generation"`
	Population  int     `csv:"population"`
	Species     int     `csv:"species"`
	BestFitness float64 `csv:"best_fitness"`
	MeanFitness float64 `csv:"mean_fitness"`
	StdFitness  float64 `csv:"stdev_fitness"`
	Score       int     `csv:"score"`
	Ticks       int     `csv:"ticks"`
	ElapsedMS   int64   `csv:"elapsed_ms"`
}

// NewGenerationStats summarises fitnesses, which must be in genome key
// order, together with the generation's result.
func NewGenerationStats(runID string, species int, fitnesses []float64, res Result) GenerationStats {
	s := GenerationStats{
		RunID:      runID,
		Generation: res.Generation,
		Population: len(fitnesses),
		Species:    species,
		Score:      res.Score,
		Ticks:      res.Ticks,
		ElapsedMS:  res.Elapsed.Milliseconds(),
	}
	if len(fitnesses) == 0 {
		return s
	}
	s.BestFitness = floats.Max(fitnesses)
	s.MeanFitness = stat.Mean(fitnesses, nil)
	if len(fitnesses) > 1 {
		s.StdFitness = stat.PopStdDev(fitnesses, nil)
	}
	return s
}

// Elapsed returns the wall time the generation took.
func (s GenerationStats) Elapsed() time.Duration {
	return time.Duration(s.ElapsedMS) * time.Millisecond
}

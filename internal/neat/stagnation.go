package neat

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// Stagnation manages the detection of stagnant species.
type Stagnation struct {
	Config             *StagnationConfig
	SpeciesFitnessFunc func([]float64) float64
}

// NewStagnation creates a new stagnation manager.
func NewStagnation(config *StagnationConfig) (*Stagnation, error) {
	fn, ok := StatFunctions[strings.ToLower(config.SpeciesFitnessFunc)]
	if !ok {
		return nil, fmt.Errorf("invalid species_fitness_func in config: %s", config.SpeciesFitnessFunc)
	}
	return &Stagnation{Config: config, SpeciesFitnessFunc: fn}, nil
}

// StagnationInfo holds the results of the stagnation update for a single species.
type StagnationInfo struct {
	SpeciesID  int
	Species    *Species
	IsStagnant bool
}

// Update recomputes species fitness and flags species that have not
// improved for max_stagnation generations. Results are ordered from least
// to most fit; the species_elitism fittest species are never stagnant, and
// flagging stops once only species_elitism species would remain.
func (s *Stagnation) Update(speciesSet *SpeciesSet, generation int) []StagnationInfo {
	species := make([]*Species, 0, len(speciesSet.Species))
	for _, sid := range sortedKeys(speciesSet.Species) {
		sp := speciesSet.Species[sid]
		prev := math.Inf(-1)
		if len(sp.FitnessHistory) > 0 {
			prev = MaxFloat(sp.FitnessHistory)
		}
		sp.Fitness = s.SpeciesFitnessFunc(sp.GetFitnesses())
		sp.FitnessHistory = append(sp.FitnessHistory, sp.Fitness)
		sp.AdjustedFitness = 0
		if sp.Fitness > prev {
			sp.LastImproved = generation
		}
		species = append(species, sp)
	}

	slices.SortStableFunc(species, func(a, b *Species) int {
		switch {
		case a.Fitness < b.Fitness:
			return -1
		case a.Fitness > b.Fitness:
			return 1
		}
		return 0
	})

	result := make([]StagnationInfo, 0, len(species))
	nonStagnant := len(species)
	for i, sp := range species {
		stagnant := false
		if nonStagnant > s.Config.SpeciesElitism {
			stagnant = generation-sp.LastImproved >= s.Config.MaxStagnation
		}
		if len(species)-i <= s.Config.SpeciesElitism {
			stagnant = false
		}
		if stagnant {
			nonStagnant--
		}
		result = append(result, StagnationInfo{SpeciesID: sp.Key, Species: sp, IsStagnant: stagnant})
	}
	return result
}

package neat

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
)

var (
	// ErrCompleteExtinction is returned when every species died out and
	// reset_on_extinction is off.
	ErrCompleteExtinction = errors.New("neat: complete extinction")

	errUnknownCriterion = errors.New("neat: unknown fitness criterion")
)

// FitnessFunc evaluates a generation. It must set the Fitness of every
// genome in the map.
type FitnessFunc func(genomes map[int]*Genome) error

// Population holds the state of the NEAT evolutionary process.
type Population struct {
	Config       *Config
	Population   map[int]*Genome
	SpeciesSet   *SpeciesSet
	Reproduction *Reproduction
	Stagnation   *Stagnation
	Generation   int
	BestGenome   *Genome // best genome found so far

	criterion func([]float64) float64
	rng       *rand.Rand
	logger    *log.Logger
}

// NewPopulation creates the initial genomes and speciates them.
// A nil logger falls back to the default charm logger.
func NewPopulation(config *Config, rng *rand.Rand, logger *log.Logger) (*Population, error) {
	if logger == nil {
		logger = log.Default()
	}
	stagnation, err := NewStagnation(&config.Stagnation)
	if err != nil {
		return nil, fmt.Errorf("failed to create stagnation manager: %w", err)
	}
	criterion, err := criterionFunc(config.Neat.FitnessCriterion)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", err, config.Neat.FitnessCriterion)
	}

	reproduction := NewReproduction(&config.Reproduction, stagnation, rng, logger)
	p := &Population{
		Config:       config,
		Population:   reproduction.CreateNewPopulation(&config.Genome, config.Neat.PopSize),
		SpeciesSet:   NewSpeciesSet(&config.SpeciesSet, logger),
		Reproduction: reproduction,
		Stagnation:   stagnation,
		criterion:    criterion,
		rng:          rng,
		logger:       logger,
	}
	p.SpeciesSet.Speciate(p.Population, p.Generation)
	return p, nil
}

// RunGeneration evaluates the current genomes and breeds the next
// generation. It returns the best genome ever seen and whether the fitness
// threshold was reached; on a solution the population is left unbred so
// callers can inspect the winning generation.
func (p *Population) RunGeneration(fitnessFunc FitnessFunc) (*Genome, bool, error) {
	start := time.Now()

	if err := fitnessFunc(p.Population); err != nil {
		return p.BestGenome, false, fmt.Errorf("fitness evaluation failed in generation %d: %w", p.Generation, err)
	}

	best := p.generationBest()
	if best != nil && (p.BestGenome == nil || best.Fitness > p.BestGenome.Fitness) {
		p.BestGenome = best
		p.logger.Debug("new best genome", "genome", best.Key, "fitness", best.Fitness)
	}

	if !p.Config.Neat.NoFitnessTermination {
		fitnesses := make([]float64, 0, len(p.Population))
		for _, k := range sortedKeys(p.Population) {
			fitnesses = append(fitnesses, p.Population[k].Fitness)
		}
		if p.criterion(fitnesses) >= p.Config.Neat.FitnessThreshold {
			p.logger.Info("fitness threshold reached", "generation", p.Generation, "genome", best.Key, "fitness", best.Fitness)
			return p.BestGenome, true, nil
		}
	}

	p.Population = p.Reproduction.Reproduce(p.Config, p.SpeciesSet, p.Config.Neat.PopSize, p.Generation)

	if len(p.SpeciesSet.Species) == 0 || len(p.Population) == 0 {
		p.logger.Warn("all species extinct", "generation", p.Generation)
		if !p.Config.Neat.ResetOnExtinction {
			return p.BestGenome, false, fmt.Errorf("%w in generation %d", ErrCompleteExtinction, p.Generation)
		}
		p.Population = p.Reproduction.CreateNewPopulation(&p.Config.Genome, p.Config.Neat.PopSize)
	}

	p.SpeciesSet.Speciate(p.Population, p.Generation)
	p.logger.Debug("generation bred",
		"generation", p.Generation,
		"population", len(p.Population),
		"species", len(p.SpeciesSet.Species),
		"elapsed", time.Since(start).Round(time.Millisecond))
	p.Generation++
	return p.BestGenome, false, nil
}

// Run calls RunGeneration until a solution is found or n generations have
// run (n <= 0 means no limit).
func (p *Population) Run(fitnessFunc FitnessFunc, n int) (*Genome, error) {
	for k := 0; n <= 0 || k < n; k++ {
		best, solved, err := p.RunGeneration(fitnessFunc)
		if err != nil || solved {
			return best, err
		}
	}
	return p.BestGenome, nil
}

// SpeciesCount returns the number of live species.
func (p *Population) SpeciesCount() int {
	return len(p.SpeciesSet.Species)
}

// generationBest finds the fittest genome of the current population, the
// lowest key winning ties.
func (p *Population) generationBest() *Genome {
	var best *Genome
	for _, k := range sortedKeys(p.Population) {
		g := p.Population[k]
		if best == nil || g.Fitness > best.Fitness {
			best = g
		}
	}
	return best
}

package neat

import (
	"math"
	"math/rand"
	"slices"

	"github.com/charmbracelet/log"
)

// Reproduction creates new genomes, either from scratch or through
// crossover and mutation of the surviving species.
type Reproduction struct {
	Config        *ReproductionConfig
	NextGenomeKey int
	Ancestors     map[int][]int // genome key -> parent keys
	Stagnation    *Stagnation

	rng    *rand.Rand
	logger *log.Logger
}

// NewReproduction creates a new reproduction manager.
func NewReproduction(config *ReproductionConfig, stagnation *Stagnation, rng *rand.Rand, logger *log.Logger) *Reproduction {
	return &Reproduction{
		Config:        config,
		NextGenomeKey: 1,
		Ancestors:     make(map[int][]int),
		Stagnation:    stagnation,
		rng:           rng,
		logger:        logger,
	}
}

func (r *Reproduction) nextKey() int {
	key := r.NextGenomeKey
	r.NextGenomeKey++
	return key
}

// CreateNewPopulation creates popSize fresh genomes.
func (r *Reproduction) CreateNewPopulation(genomeConfig *GenomeConfig, popSize int) map[int]*Genome {
	genomes := make(map[int]*Genome, popSize)
	for range popSize {
		key := r.nextKey()
		g := NewGenome(key, genomeConfig)
		g.ConfigureNew(r.rng)
		genomes[key] = g
		r.Ancestors[key] = nil
	}
	return genomes
}

// Reproduce builds the next generation. Stagnant species are dropped; the
// rest receive offspring in proportion to their adjusted fitness. An empty
// result means every species went extinct.
func (r *Reproduction) Reproduce(config *Config, speciesSet *SpeciesSet, popSize, generation int) map[int]*Genome {
	var allFitnesses []float64
	var remaining []*Species
	for _, info := range r.Stagnation.Update(speciesSet, generation) {
		if info.IsStagnant {
			r.logger.Info("species stagnant, removing", "species", info.SpeciesID, "fitness", info.Species.Fitness)
			continue
		}
		allFitnesses = append(allFitnesses, info.Species.GetFitnesses()...)
		remaining = append(remaining, info.Species)
	}

	if len(remaining) == 0 {
		speciesSet.Species = make(map[int]*Species)
		return make(map[int]*Genome)
	}

	// Fitness sharing: the species mean is rescaled to the population range.
	minFitness := MinFloat(allFitnesses)
	maxFitness := MaxFloat(allFitnesses)
	fitnessRange := math.Max(1.0, maxFitness-minFitness)

	adjusted := make([]float64, len(remaining))
	previousSizes := make([]int, len(remaining))
	for i, sp := range remaining {
		sp.AdjustedFitness = (Mean(sp.GetFitnesses()) - minFitness) / fitnessRange
		adjusted[i] = sp.AdjustedFitness
		previousSizes[i] = len(sp.Members)
	}
	r.logger.Debug("adjusted fitness", "average", Mean(adjusted))

	minSpeciesSize := max(r.Config.MinSpeciesSize, r.Config.Elitism)
	spawnAmounts := computeSpawn(adjusted, previousSizes, popSize, minSpeciesSize, r.rng)

	population := make(map[int]*Genome, popSize)
	ancestors := make(map[int][]int, popSize)
	speciesSet.Species = make(map[int]*Species, len(remaining))

	for i, sp := range remaining {
		spawn := max(spawnAmounts[i], r.Config.Elitism)

		oldMembers := make([]*Genome, 0, len(sp.Members))
		for _, k := range sortedKeys(sp.Members) {
			oldMembers = append(oldMembers, sp.Members[k])
		}
		sp.Members = make(map[int]*Genome)
		speciesSet.Species[sp.Key] = sp

		slices.SortStableFunc(oldMembers, func(a, b *Genome) int {
			switch {
			case a.Fitness > b.Fitness:
				return -1
			case a.Fitness < b.Fitness:
				return 1
			}
			return 0
		})

		for _, elite := range oldMembers[:min(r.Config.Elitism, len(oldMembers))] {
			population[elite.Key] = elite
			ancestors[elite.Key] = r.Ancestors[elite.Key]
			spawn--
		}
		if spawn <= 0 {
			continue
		}

		cutoff := int(math.Ceil(r.Config.SurvivalThreshold * float64(len(oldMembers))))
		cutoff = min(max(cutoff, 2), len(oldMembers))
		parents := oldMembers[:cutoff]

		for range spawn {
			p1 := parents[r.rng.Intn(len(parents))]
			p2 := parents[r.rng.Intn(len(parents))]

			key := r.nextKey()
			child := NewGenome(key, &config.Genome)
			child.ConfigureCrossover(p1, p2, r.rng)
			child.Mutate(r.rng)

			population[key] = child
			ancestors[key] = []int{p1.Key, p2.Key}
		}
	}
	r.Ancestors = ancestors

	if len(population) != popSize {
		r.logger.Debug("population size drifted", "size", len(population), "target", popSize)
	}
	return population
}

// computeSpawn decides how many members each species gets next generation.
// Sizes move halfway towards the fitness-proportional target, are
// normalised to popSize and finally nudged one at a time until they sum
// to popSize where minimum sizes allow.
func computeSpawn(adjusted []float64, previousSizes []int, popSize, minSpeciesSize int, rng *rand.Rand) []int {
	afSum := Sum(adjusted)

	amounts := make([]int, len(adjusted))
	total := 0
	for i, af := range adjusted {
		s := float64(minSpeciesSize)
		if afSum > 0 {
			s = math.Max(s, af/afSum*float64(popSize))
		}
		d := (s - float64(previousSizes[i])) * 0.5
		c := int(math.RoundToEven(d))
		spawn := previousSizes[i]
		switch {
		case c != 0:
			spawn += c
		case d > 0:
			spawn++
		case d < 0:
			spawn--
		}
		amounts[i] = spawn
		total += spawn
	}

	if total <= 0 {
		for i := range amounts {
			amounts[i] = minSpeciesSize
		}
		return amounts
	}

	norm := float64(popSize) / float64(total)
	total = 0
	for i, n := range amounts {
		amounts[i] = max(minSpeciesSize, int(math.RoundToEven(float64(n)*norm)))
		total += amounts[i]
	}

	diff := popSize - total
	for _, idx := range rng.Perm(len(amounts)) {
		if diff == 0 {
			break
		}
		if diff > 0 {
			amounts[idx]++
			diff--
		} else if amounts[idx] > minSpeciesSize {
			amounts[idx]--
			diff++
		}
	}
	return amounts
}

package neat

import (
	"maps"
	"math"
	"slices"

	"github.com/charmbracelet/log"
)

// Species represents a group of genetically similar genomes.
type Species struct {
	Key             int
	Created         int // generation the species appeared in
	LastImproved    int
	Representative  *Genome
	Members         map[int]*Genome
	Fitness         float64
	AdjustedFitness float64
	FitnessHistory  []float64
}

// NewSpecies creates a new species.
func NewSpecies(key, generation int) *Species {
	return &Species{
		Key:          key,
		Created:      generation,
		LastImproved: generation,
		Members:      make(map[int]*Genome),
	}
}

// Update adjusts the species' representative and members.
func (s *Species) Update(representative *Genome, members map[int]*Genome) {
	s.Representative = representative
	s.Members = members
}

// GetFitnesses returns member fitness values ordered by genome key.
func (s *Species) GetFitnesses() []float64 {
	fitnesses := make([]float64, 0, len(s.Members))
	for _, k := range sortedKeys(s.Members) {
		fitnesses = append(fitnesses, s.Members[k].Fitness)
	}
	return fitnesses
}

// --------------------------- GenomeDistanceCache ---------------------------

type genomePair struct{ a, b int }

// GenomeDistanceCache memoises genome distances for one speciation pass.
type GenomeDistanceCache struct {
	distances map[genomePair]float64
	Hits      int
	Misses    int
}

func NewGenomeDistanceCache() *GenomeDistanceCache {
	return &GenomeDistanceCache{distances: make(map[genomePair]float64)}
}

// Distance calculates or retrieves the distance between two genomes.
func (dc *GenomeDistanceCache) Distance(g1, g2 *Genome) float64 {
	key := genomePair{g1.Key, g2.Key}
	if key.a > key.b {
		key.a, key.b = key.b, key.a
	}
	if d, ok := dc.distances[key]; ok {
		dc.Hits++
		return d
	}
	dc.Misses++
	d := g1.Distance(g2)
	dc.distances[key] = d
	return d
}

// Values returns every cached distance.
func (dc *GenomeDistanceCache) Values() []float64 {
	out := make([]float64, 0, len(dc.distances))
	for _, d := range dc.distances {
		out = append(out, d)
	}
	return out
}

// --------------------------- SpeciesSet ---------------------------

// SpeciesSet manages the collection of species within a population.
type SpeciesSet struct {
	Species         map[int]*Species
	GenomeToSpecies map[int]int
	Indexer         int // next species key, starting at 1
	Config          *SpeciesSetConfig
	logger          *log.Logger
}

// NewSpeciesSet creates a new species set manager.
func NewSpeciesSet(config *SpeciesSetConfig, logger *log.Logger) *SpeciesSet {
	return &SpeciesSet{
		Species:         make(map[int]*Species),
		GenomeToSpecies: make(map[int]int),
		Indexer:         1,
		Config:          config,
		logger:          logger,
	}
}

// Speciate partitions the population into species based on genetic distance.
//
// Each existing species first claims the genome closest to its old
// representative. Remaining genomes join the nearest species whose
// representative lies under the compatibility threshold, or found a new one.
func (ss *SpeciesSet) Speciate(population map[int]*Genome, generation int) {
	if len(population) == 0 {
		ss.Species = make(map[int]*Species)
		ss.GenomeToSpecies = make(map[int]int)
		return
	}

	threshold := ss.Config.CompatibilityThreshold
	distances := NewGenomeDistanceCache()

	unspeciated := make(map[int]*Genome, len(population))
	for k, v := range population {
		unspeciated[k] = v
	}
	newRepresentatives := make(map[int]*Genome)
	newMembers := make(map[int][]int)

	for _, sid := range sortedKeys(ss.Species) {
		if len(unspeciated) == 0 {
			break
		}
		s := ss.Species[sid]
		var best *Genome
		bestDist := math.Inf(1)
		for _, gid := range sortedKeys(unspeciated) {
			g := unspeciated[gid]
			if d := distances.Distance(s.Representative, g); d < bestDist {
				best, bestDist = g, d
			}
		}
		newRepresentatives[sid] = best
		newMembers[sid] = []int{best.Key}
		delete(unspeciated, best.Key)
	}

	for _, gid := range sortedKeys(unspeciated) {
		g := unspeciated[gid]
		bestSpecies := -1
		minDist := math.Inf(1)
		for _, sid := range sortedKeys(newRepresentatives) {
			d := distances.Distance(newRepresentatives[sid], g)
			if d < threshold && d < minDist {
				minDist, bestSpecies = d, sid
			}
		}
		if bestSpecies != -1 {
			newMembers[bestSpecies] = append(newMembers[bestSpecies], gid)
			continue
		}
		sid := ss.Indexer
		ss.Indexer++
		newRepresentatives[sid] = g
		newMembers[sid] = []int{gid}
	}

	species := make(map[int]*Species, len(newRepresentatives))
	genomeToSpecies := make(map[int]int, len(population))
	for sid, rep := range newRepresentatives {
		s := ss.Species[sid]
		if s == nil {
			s = NewSpecies(sid, generation)
			ss.logger.Debug("new species", "species", sid, "representative", rep.Key)
		}
		members := make(map[int]*Genome, len(newMembers[sid]))
		for _, gid := range newMembers[sid] {
			members[gid] = population[gid]
			genomeToSpecies[gid] = sid
		}
		s.Update(rep, members)
		species[sid] = s
	}
	for sid := range ss.Species {
		if _, ok := species[sid]; !ok {
			ss.logger.Debug("species died out", "species", sid)
		}
	}
	ss.Species = species
	ss.GenomeToSpecies = genomeToSpecies

	if d := distances.Values(); len(d) > 0 {
		ss.logger.Debug("genetic distance", "mean", Mean(d), "stdev", Stdev(d))
	}
}

// GetSpeciesID returns the species ID for a given genome ID.
func (ss *SpeciesSet) GetSpeciesID(genomeID int) (int, bool) {
	sid, ok := ss.GenomeToSpecies[genomeID]
	return sid, ok
}

// GetSpecies returns the Species object for a given genome ID.
func (ss *SpeciesSet) GetSpecies(genomeID int) (*Species, bool) {
	sid, ok := ss.GenomeToSpecies[genomeID]
	if !ok {
		return nil, false
	}
	s, ok := ss.Species[sid]
	return s, ok
}

func sortedKeys[V any](m map[int]V) []int {
	return slices.Sorted(maps.Keys(m))
}

package neat

import (
	"cmp"
	"fmt"
	"maps"
	"math"
	"math/rand"
	"slices"
	"strings"
)

// Genome represents an individual organism in the population.
// It consists of NodeGenes and ConnectionGenes.
type Genome struct {
	Key         int                               // Unique identifier for this genome.
	Nodes       map[int]*NodeGene                 // Map node ID -> NodeGene
	Connections map[ConnectionKey]*ConnectionGene // Map connection key -> ConnectionGene
	Fitness     float64                           // Fitness score of the genome.
	Config      *GenomeConfig
}

// NewGenome creates a new Genome instance with the specified key and config reference.
func NewGenome(key int, config *GenomeConfig) *Genome {
	return &Genome{
		Key:         key,
		Nodes:       make(map[int]*NodeGene),
		Connections: make(map[ConnectionKey]*ConnectionGene),
		Config:      config,
	}
}

// SetFitness overwrites the accumulated fitness.
func (g *Genome) SetFitness(f float64) { g.Fitness = f }

// AddFitness adds delta (which may be negative) to the fitness.
func (g *Genome) AddFitness(delta float64) { g.Fitness += delta }

// CurrentFitness returns the accumulated fitness.
func (g *Genome) CurrentFitness() float64 { return g.Fitness }

// Size returns the number of nodes and the number of enabled connections.
func (g *Genome) Size() (int, int) {
	enabled := 0
	for _, c := range g.Connections {
		if c.Enabled {
			enabled++
		}
	}
	return len(g.Nodes), enabled
}

func (g *Genome) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Key: %d\nFitness: %.3f\nNodes:", g.Key, g.Fitness)
	for _, k := range sortedKeys(g.Nodes) {
		fmt.Fprintf(&b, "\n\t%s", g.Nodes[k])
	}
	b.WriteString("\nConnections:")
	for _, k := range sortedConnectionKeys(g.Connections) {
		fmt.Fprintf(&b, "\n\t%s", g.Connections[k])
	}
	return b.String()
}

// ConfigureNew creates the output and hidden node genes and wires them
// according to initial_connection.
func (g *Genome) ConfigureNew(rng *rand.Rand) {
	for _, nodeKey := range g.Config.OutputKeys {
		g.Nodes[nodeKey] = NewNodeGene(nodeKey, g.Config, rng)
	}
	for range g.Config.NumHidden {
		nodeKey := g.Config.GetNewNodeKey()
		g.Nodes[nodeKey] = NewNodeGene(nodeKey, g.Config, rng)
	}
	g.setupInitialConnections(rng)
}

func (g *Genome) setupInitialConnections(rng *rand.Rand) {
	kind := strings.Fields(g.Config.InitialConnection)[0]
	switch kind {
	case "unconnected":
	case "fs_neat_nohidden", "fs_neat":
		// A single randomly chosen input feeds every output.
		in := g.Config.InputKeys[rng.Intn(len(g.Config.InputKeys))]
		for _, out := range g.Config.OutputKeys {
			g.connect(in, out, rng)
		}
	case "fs_neat_hidden":
		in := g.Config.InputKeys[rng.Intn(len(g.Config.InputKeys))]
		for _, out := range sortedKeys(g.Nodes) {
			g.connect(in, out, rng)
		}
	case "full", "full_nodirect", "full_direct":
		for _, k := range g.fullConnections(kind == "full_direct") {
			g.connect(k.InNodeID, k.OutNodeID, rng)
		}
	case "partial", "partial_nodirect", "partial_direct":
		all := g.fullConnections(kind == "partial_direct")
		rng.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })
		n := int(math.RoundToEven(float64(len(all)) * g.Config.ConnectionFraction))
		for _, k := range all[:n] {
			g.connect(k.InNodeID, k.OutNodeID, rng)
		}
	default:
		panic(fmt.Sprintf("invalid initial_connection type in genome configuration: %s", kind))
	}
}

// fullConnections lists input->hidden and hidden->output pairs. Inputs
// connect straight to outputs when direct is set or there are no hidden
// nodes.
func (g *Genome) fullConnections(direct bool) []ConnectionKey {
	var hidden, outputs []int
	for _, k := range sortedKeys(g.Nodes) {
		if slices.Contains(g.Config.OutputKeys, k) {
			outputs = append(outputs, k)
		} else {
			hidden = append(hidden, k)
		}
	}

	var conns []ConnectionKey
	for _, in := range g.Config.InputKeys {
		for _, h := range hidden {
			conns = append(conns, ConnectionKey{in, h})
		}
	}
	for _, h := range hidden {
		for _, out := range outputs {
			conns = append(conns, ConnectionKey{h, out})
		}
	}
	if direct || len(hidden) == 0 {
		for _, in := range g.Config.InputKeys {
			for _, out := range outputs {
				conns = append(conns, ConnectionKey{in, out})
			}
		}
	}
	if !g.Config.FeedForward {
		for _, k := range sortedKeys(g.Nodes) {
			conns = append(conns, ConnectionKey{k, k})
		}
	}
	return conns
}

func (g *Genome) connect(in, out int, rng *rand.Rand) *ConnectionGene {
	key := ConnectionKey{InNodeID: in, OutNodeID: out}
	c := NewConnectionGene(key, g.Config, rng)
	g.Connections[key] = c
	return c
}

// ConfigureCrossover fills g from two parents. The fitter parent supplies
// every gene; homologous genes mix attributes with the other parent.
func (g *Genome) ConfigureCrossover(parent1, parent2 *Genome, rng *rand.Rand) {
	if parent1.Fitness <= parent2.Fitness {
		parent1, parent2 = parent2, parent1
	}
	g.Config = parent1.Config

	for _, key := range sortedConnectionKeys(parent1.Connections) {
		c1 := parent1.Connections[key]
		if c2, ok := parent2.Connections[key]; ok {
			g.Connections[key] = c1.Crossover(c2, rng)
		} else {
			g.Connections[key] = c1.Copy()
		}
	}
	for _, key := range sortedKeys(parent1.Nodes) {
		n1 := parent1.Nodes[key]
		if n2, ok := parent2.Nodes[key]; ok {
			g.Nodes[key] = n1.Crossover(n2, rng)
		} else {
			g.Nodes[key] = n1.Copy()
		}
	}
}

// Mutate applies structural mutations followed by attribute mutations.
func (g *Genome) Mutate(rng *rand.Rand) {
	c := g.Config
	if c.SingleStructuralMutation {
		div := math.Max(1, c.NodeAddProb+c.NodeDeleteProb+c.ConnAddProb+c.ConnDeleteProb)
		r := rng.Float64()
		switch {
		case r < c.NodeAddProb/div:
			g.mutateAddNode(rng)
		case r < (c.NodeAddProb+c.NodeDeleteProb)/div:
			g.mutateDeleteNode(rng)
		case r < (c.NodeAddProb+c.NodeDeleteProb+c.ConnAddProb)/div:
			g.mutateAddConnection(rng)
		case r < (c.NodeAddProb+c.NodeDeleteProb+c.ConnAddProb+c.ConnDeleteProb)/div:
			g.mutateDeleteConnection(rng)
		}
	} else {
		if rng.Float64() < c.NodeAddProb {
			g.mutateAddNode(rng)
		}
		if rng.Float64() < c.NodeDeleteProb {
			g.mutateDeleteNode(rng)
		}
		if rng.Float64() < c.ConnAddProb {
			g.mutateAddConnection(rng)
		}
		if rng.Float64() < c.ConnDeleteProb {
			g.mutateDeleteConnection(rng)
		}
	}

	for _, k := range sortedConnectionKeys(g.Connections) {
		g.Connections[k].Mutate(g, c, rng)
	}
	for _, k := range sortedKeys(g.Nodes) {
		g.Nodes[k].Mutate(c, rng)
	}
}

// mutateAddNode splits a random connection: the old one is disabled and
// replaced by in->new (weight 1) and new->out (old weight).
func (g *Genome) mutateAddNode(rng *rand.Rand) {
	if len(g.Connections) == 0 {
		return
	}
	keys := sortedConnectionKeys(g.Connections)
	split := g.Connections[keys[rng.Intn(len(keys))]]
	split.Enabled = false

	newKey := g.Config.GetNewNodeKey()
	g.Nodes[newKey] = NewNodeGene(newKey, g.Config, rng)

	in := g.connect(split.Key.InNodeID, newKey, rng)
	in.Weight = 1.0
	in.Enabled = true

	out := g.connect(newKey, split.Key.OutNodeID, rng)
	out.Weight = split.Weight
	out.Enabled = true
}

// mutateAddConnection makes one attempt at adding a random connection.
// An existing connection is re-enabled instead.
func (g *Genome) mutateAddConnection(rng *rand.Rand) {
	outputs := sortedKeys(g.Nodes)
	if len(outputs) == 0 {
		return
	}
	inputs := append(slices.Clone(outputs), g.Config.InputKeys...)

	out := outputs[rng.Intn(len(outputs))]
	in := inputs[rng.Intn(len(inputs))]

	key := ConnectionKey{InNodeID: in, OutNodeID: out}
	if existing, ok := g.Connections[key]; ok {
		if !existing.Enabled && !(g.Config.FeedForward && createsCycle(g, in, out)) {
			existing.Enabled = true
		}
		return
	}
	if slices.Contains(g.Config.OutputKeys, in) && slices.Contains(g.Config.OutputKeys, out) {
		return
	}
	if g.Config.FeedForward && createsCycle(g, in, out) {
		return
	}
	g.connect(in, out, rng)
}

// mutateDeleteNode removes a random hidden node and every connection
// touching it. Output nodes are never deleted.
func (g *Genome) mutateDeleteNode(rng *rand.Rand) {
	var available []int
	for _, k := range sortedKeys(g.Nodes) {
		if !slices.Contains(g.Config.OutputKeys, k) {
			available = append(available, k)
		}
	}
	if len(available) == 0 {
		return
	}
	del := available[rng.Intn(len(available))]
	for key := range g.Connections {
		if key.InNodeID == del || key.OutNodeID == del {
			delete(g.Connections, key)
		}
	}
	delete(g.Nodes, del)
}

func (g *Genome) mutateDeleteConnection(rng *rand.Rand) {
	if len(g.Connections) == 0 {
		return
	}
	keys := sortedConnectionKeys(g.Connections)
	delete(g.Connections, keys[rng.Intn(len(keys))])
}

// Distance is the genetic distance between two genomes: node distance
// plus connection distance, each normalised by the larger gene count.
func (g *Genome) Distance(other *Genome) float64 {
	c := g.Config

	nodeDistance := 0.0
	if len(g.Nodes) > 0 || len(other.Nodes) > 0 {
		disjoint := 0
		for k := range other.Nodes {
			if _, ok := g.Nodes[k]; !ok {
				disjoint++
			}
		}
		for k, n1 := range g.Nodes {
			if n2, ok := other.Nodes[k]; ok {
				nodeDistance += n1.Distance(n2, c)
			} else {
				disjoint++
			}
		}
		maxNodes := max(len(g.Nodes), len(other.Nodes))
		nodeDistance = (nodeDistance + c.CompatibilityDisjointCoefficient*float64(disjoint)) / float64(maxNodes)
	}

	connDistance := 0.0
	if len(g.Connections) > 0 || len(other.Connections) > 0 {
		disjoint := 0
		for k := range other.Connections {
			if _, ok := g.Connections[k]; !ok {
				disjoint++
			}
		}
		for k, c1 := range g.Connections {
			if c2, ok := other.Connections[k]; ok {
				connDistance += c1.Distance(c2, c)
			} else {
				disjoint++
			}
		}
		maxConns := max(len(g.Connections), len(other.Connections))
		connDistance = (connDistance + c.CompatibilityDisjointCoefficient*float64(disjoint)) / float64(maxConns)
	}

	return nodeDistance + connDistance
}

func sortedConnectionKeys(m map[ConnectionKey]*ConnectionGene) []ConnectionKey {
	keys := slices.Collect(maps.Keys(m))
	slices.SortFunc(keys, func(a, b ConnectionKey) int {
		return cmp.Or(cmp.Compare(a.InNodeID, b.InNodeID), cmp.Compare(a.OutNodeID, b.OutNodeID))
	})
	return keys
}

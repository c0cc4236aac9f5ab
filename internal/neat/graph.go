package neat

import (
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Genome node keys are negative for inputs. Graph node IDs are shifted
// by the input count so that every ID is non-negative.

// NodeID maps a genome node key to its graph node ID.
func (gc *GenomeConfig) NodeID(key int) int64 {
	return int64(key + gc.NumInputs)
}

// NodeKey maps a graph node ID back to the genome node key.
func (gc *GenomeConfig) NodeKey(id int64) int {
	return int(id) - gc.NumInputs
}

// Graph builds the directed connection graph of a genome. Every input key
// and every node gene becomes a graph node; with enabledOnly set, disabled
// connections are left out.
func (g *Genome) Graph(enabledOnly bool) *simple.DirectedGraph {
	dg := simple.NewDirectedGraph()
	addNode := func(key int) {
		id := g.Config.NodeID(key)
		if dg.Node(id) == nil {
			dg.AddNode(simple.Node(id))
		}
	}

	for _, k := range g.Config.InputKeys {
		addNode(k)
	}
	for _, k := range sortedKeys(g.Nodes) {
		addNode(k)
	}
	for _, ck := range sortedConnectionKeys(g.Connections) {
		if enabledOnly && !g.Connections[ck].Enabled {
			continue
		}
		if ck.InNodeID == ck.OutNodeID {
			continue // self loops are never feed-forward
		}
		addNode(ck.InNodeID)
		addNode(ck.OutNodeID)
		dg.SetEdge(dg.NewEdge(dg.Node(g.Config.NodeID(ck.InNodeID)), dg.Node(g.Config.NodeID(ck.OutNodeID))))
	}
	return dg
}

// createsCycle reports whether adding inNode -> outNode would close a
// cycle, i.e. whether outNode already reaches inNode.
func createsCycle(genome *Genome, inNode, outNode int) bool {
	if inNode == outNode {
		return true
	}
	dg := genome.Graph(false)
	from := dg.Node(genome.Config.NodeID(outNode))
	to := dg.Node(genome.Config.NodeID(inNode))
	if from == nil || to == nil {
		return false
	}
	return topo.PathExistsIn(dg, from, to)
}

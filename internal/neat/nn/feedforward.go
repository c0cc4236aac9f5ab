package nn

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/graph/topo"

	"github.com/vovakirdan/flappy-neat/internal/neat"
)

type incoming struct {
	from   int
	weight float64
}

// neuralNode is a hidden or output node with its functions resolved.
type neuralNode struct {
	key         int
	bias        float64
	response    float64
	activation  neat.ActivationType
	aggregation neat.AggregationType
	inputs      []incoming
}

// FeedForwardNetwork is the phenotype of a feed-forward genome.
type FeedForwardNetwork struct {
	InputKeys  []int
	OutputKeys []int
	nodes      []neuralNode // evaluation order
}

// CreateFeedForwardNetwork builds a runnable network from a genome. Nodes
// are evaluated in a stable topological order of the enabled connections;
// a cycle is an error.
func CreateFeedForwardNetwork(g *neat.Genome) (*FeedForwardNetwork, error) {
	if !g.Config.FeedForward {
		return nil, fmt.Errorf("nn: genome %d is not configured as feed-forward", g.Key)
	}

	order, err := topo.SortStabilized(g.Graph(true), nil)
	if err != nil {
		return nil, fmt.Errorf("nn: genome %d has no feed-forward order: %w", g.Key, err)
	}

	inputsOf := make(map[int][]incoming)
	for key, c := range g.Connections {
		if c.Enabled && key.InNodeID != key.OutNodeID {
			inputsOf[key.OutNodeID] = append(inputsOf[key.OutNodeID], incoming{from: key.InNodeID, weight: c.Weight})
		}
	}

	net := &FeedForwardNetwork{
		InputKeys:  g.Config.InputKeys,
		OutputKeys: g.Config.OutputKeys,
	}
	for _, n := range order {
		key := g.Config.NodeKey(n.ID())
		gene, ok := g.Nodes[key]
		if !ok {
			continue // input node
		}
		act, err := neat.GetActivation(gene.Activation)
		if err != nil {
			return nil, fmt.Errorf("nn: node %d: %w", key, err)
		}
		agg, err := neat.GetAggregation(gene.Aggregation)
		if err != nil {
			return nil, fmt.Errorf("nn: node %d: %w", key, err)
		}
		ins := inputsOf[key]
		slices.SortFunc(ins, func(a, b incoming) int { return a.from - b.from })
		net.nodes = append(net.nodes, neuralNode{
			key:         key,
			bias:        gene.Bias,
			response:    gene.Response,
			activation:  act,
			aggregation: agg,
			inputs:      ins,
		})
	}
	return net, nil
}

// Activate computes the outputs for one input vector. A node without
// enabled inputs outputs 0.
func (net *FeedForwardNetwork) Activate(inputs []float64) ([]float64, error) {
	if len(inputs) != len(net.InputKeys) {
		return nil, fmt.Errorf("nn: expected %d inputs, got %d", len(net.InputKeys), len(inputs))
	}

	values := make(map[int]float64, len(inputs)+len(net.nodes))
	for i, k := range net.InputKeys {
		values[k] = inputs[i]
	}

	var buf []float64
	for _, n := range net.nodes {
		if len(n.inputs) == 0 {
			values[n.key] = 0
			continue
		}
		buf = buf[:0]
		for _, in := range n.inputs {
			buf = append(buf, values[in.from]*in.weight)
		}
		values[n.key] = n.activation(n.bias + n.response*n.aggregation(buf))
	}

	outputs := make([]float64, len(net.OutputKeys))
	for i, k := range net.OutputKeys {
		outputs[i] = values[k]
	}
	return outputs, nil
}

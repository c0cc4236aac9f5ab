package nn

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/flappy-neat/internal/neat"
)

func testGenomeConfig() *neat.GenomeConfig {
	return &neat.GenomeConfig{
		NumInputs:   2,
		NumOutputs:  1,
		FeedForward: true,
		InputKeys:   []int{-1, -2},
		OutputKeys:  []int{0},
	}
}

func node(key int, bias, response float64, act string) *neat.NodeGene {
	return &neat.NodeGene{Key: key, Bias: bias, Response: response, Activation: act, Aggregation: "sum"}
}

func conn(g *neat.Genome, in, out int, w float64, enabled bool) {
	k := neat.ConnectionKey{InNodeID: in, OutNodeID: out}
	g.Connections[k] = &neat.ConnectionGene{Key: k, Weight: w, Enabled: enabled}
}

func TestActivateDirect(t *testing.T) {
	g := neat.NewGenome(1, testGenomeConfig())
	g.Nodes[0] = node(0, 0.5, 2.0, "identity")
	conn(g, -1, 0, 1.0, true)
	conn(g, -2, 0, -3.0, true)

	net, err := CreateFeedForwardNetwork(g)
	require.NoError(t, err)

	out, err := net.Activate([]float64{2, 1})
	require.NoError(t, err)
	// bias + response * (2*1 + 1*-3)
	assert.InDelta(t, 0.5+2.0*(-1.0), out[0], 1e-12)
}

func TestActivateHiddenOrderAndDisabled(t *testing.T) {
	g := neat.NewGenome(1, testGenomeConfig())
	g.Nodes[0] = node(0, 0, 1, "identity")
	g.Nodes[1] = node(1, 1, 1, "identity")
	conn(g, -1, 1, 2.0, true)
	conn(g, 1, 0, 3.0, true)
	conn(g, -2, 0, 100.0, false)

	net, err := CreateFeedForwardNetwork(g)
	require.NoError(t, err)

	out, err := net.Activate([]float64{1, 1})
	require.NoError(t, err)
	// hidden = 1 + 2*1 = 3; output = 3*3
	assert.InDelta(t, 9.0, out[0], 1e-12)
}

func TestActivateUnconnectedOutputIsZero(t *testing.T) {
	g := neat.NewGenome(1, testGenomeConfig())
	g.Nodes[0] = node(0, 5, 1, "tanh")

	net, err := CreateFeedForwardNetwork(g)
	require.NoError(t, err)
	out, err := net.Activate([]float64{1, 1})
	require.NoError(t, err)
	assert.Equal(t, 0.0, out[0])
}

func TestActivateTanh(t *testing.T) {
	g := neat.NewGenome(1, testGenomeConfig())
	g.Nodes[0] = node(0, 0, 1, "tanh")
	conn(g, -1, 0, 1.0, true)

	net, err := CreateFeedForwardNetwork(g)
	require.NoError(t, err)
	out, err := net.Activate([]float64{0.2, 0})
	require.NoError(t, err)
	assert.InDelta(t, math.Tanh(0.5), out[0], 1e-12)
}

func TestCreateRejectsCycles(t *testing.T) {
	g := neat.NewGenome(1, testGenomeConfig())
	g.Nodes[0] = node(0, 0, 1, "identity")
	g.Nodes[1] = node(1, 0, 1, "identity")
	conn(g, 0, 1, 1, true)
	conn(g, 1, 0, 1, true)

	_, err := CreateFeedForwardNetwork(g)
	assert.Error(t, err)
}

func TestActivateInputCountMismatch(t *testing.T) {
	g := neat.NewGenome(1, testGenomeConfig())
	g.Nodes[0] = node(0, 0, 1, "identity")
	net, err := CreateFeedForwardNetwork(g)
	require.NoError(t, err)

	_, err = net.Activate([]float64{1})
	assert.Error(t, err)
}

func TestCreateRequiresFeedForward(t *testing.T) {
	cfg := testGenomeConfig()
	cfg.FeedForward = false
	_, err := CreateFeedForwardNetwork(neat.NewGenome(1, cfg))
	assert.Error(t, err)
}

package neat

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testINI = `
[NEAT]
fitness_criterion     = max
fitness_threshold     = 3.9
pop_size              = 30
reset_on_extinction   = True

[DefaultGenome]
activation_default      = sigmoid
activation_mutate_rate  = 0.0
activation_options      = sigmoid
aggregation_default     = sum
aggregation_mutate_rate = 0.0
aggregation_options     = sum
bias_init_mean          = 0.0
bias_init_stdev         = 1.0
bias_max_value          = 30.0
bias_min_value          = -30.0
bias_mutate_power       = 0.5
bias_mutate_rate        = 0.7
bias_replace_rate       = 0.1
compatibility_disjoint_coefficient = 1.0
compatibility_weight_coefficient   = 0.5
conn_add_prob           = 0.5
conn_delete_prob        = 0.5
enabled_default         = True
enabled_mutate_rate     = 0.01
feed_forward            = True
initial_connection      = full    # inline comments are stripped
node_add_prob           = 0.2
node_delete_prob        = 0.2
num_hidden              = 0
num_inputs              = 2
num_outputs             = 1
response_init_mean      = 1.0
response_init_stdev     = 0.0
response_max_value      = 30.0
response_min_value      = -30.0
response_mutate_power   = 0.0
response_mutate_rate    = 0.0
response_replace_rate   = 0.0
weight_init_mean        = 0.0
weight_init_stdev       = 1.0
weight_max_value        = 30
weight_min_value        = -30
weight_mutate_power     = 0.5
weight_mutate_rate      = 0.8
weight_replace_rate     = 0.1

[DefaultSpeciesSet]
compatibility_threshold = 3.0

[DefaultStagnation]
species_fitness_func = max
max_stagnation       = 20
species_elitism      = 2

[DefaultReproduction]
elitism            = 2
survival_threshold = 0.2
`

// testConfig parses testINI after applying key replacements of the form
// "key = old" -> "key = new".
func testConfig(t *testing.T, replacements ...string) *Config {
	t.Helper()
	src := testINI
	for i := 0; i+1 < len(replacements); i += 2 {
		require.Contains(t, src, replacements[i])
		src = strings.Replace(src, replacements[i], replacements[i+1], 1)
	}
	cfg, err := ParseConfig([]byte(src))
	require.NoError(t, err)
	return cfg
}

func TestParseConfig(t *testing.T) {
	cfg := testConfig(t)

	assert.Equal(t, 30, cfg.Neat.PopSize)
	assert.Equal(t, "max", cfg.Neat.FitnessCriterion)
	assert.InDelta(t, 3.9, cfg.Neat.FitnessThreshold, 1e-12)
	assert.True(t, cfg.Neat.ResetOnExtinction)
	assert.True(t, cfg.Genome.FeedForward)
	assert.Equal(t, "full", cfg.Genome.InitialConnection)
	assert.Equal(t, []string{"sigmoid"}, cfg.Genome.ActivationOptions)
	assert.Equal(t, []int{-1, -2}, cfg.Genome.InputKeys)
	assert.Equal(t, []int{0}, cfg.Genome.OutputKeys)
	assert.Equal(t, 1, cfg.Genome.NodeKeyIndex)

	// Defaults for omitted keys.
	assert.Equal(t, "gaussian", cfg.Genome.WeightInitType)
	assert.Equal(t, 1, cfg.Reproduction.MinSpeciesSize)
}

func TestParseConfigPartialFraction(t *testing.T) {
	cfg := testConfig(t, "initial_connection      = full", "initial_connection      = partial_direct 0.5")
	assert.InDelta(t, 0.5, cfg.Genome.ConnectionFraction, 1e-12)

	_, err := ParseConfig([]byte(strings.Replace(testINI, "initial_connection      = full", "initial_connection      = partial", 1)))
	assert.Error(t, err)
}

func TestParseConfigRejectsInvalid(t *testing.T) {
	tests := []struct {
		name     string
		old, new string
	}{
		{"unknown activation", "activation_options      = sigmoid", "activation_options      = sigmoid bogus"},
		{"unknown criterion", "fitness_criterion     = max", "fitness_criterion     = best"},
		{"unknown connection", "initial_connection      = full", "initial_connection      = everything"},
		{"zero population", "pop_size              = 30", "pop_size              = 0"},
		{"bad probability", "conn_add_prob           = 0.5", "conn_add_prob           = 1.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(strings.Replace(testINI, tt.old, tt.new, 1)))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "neat.ini")
	require.NoError(t, os.WriteFile(path, []byte(testINI), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Genome.NumInputs)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.ini"))
	assert.Error(t, err)
}

func TestActivationsAndAggregations(t *testing.T) {
	assert.InDelta(t, 0.5, Sigmoid(0), 1e-12)
	assert.InDelta(t, 0.0, Tanh(0), 1e-12)
	assert.InDelta(t, 1.0, Sigmoid(100), 1e-9)
	assert.Equal(t, 0.0, Inv(0))
	assert.Equal(t, 0.0, Hat(2))

	assert.Equal(t, 0.0, AggregateSum(nil))
	assert.Equal(t, 0.0, AggregateProduct(nil))
	assert.Equal(t, 6.0, AggregateSum([]float64{1, 2, 3}))
	assert.Equal(t, 2.0, AggregateMedian([]float64{3, 1, 2}))
	assert.Equal(t, -4.0, AggregateMaxAbs([]float64{1, -4, 3}))

	_, err := GetActivation("nope")
	assert.Error(t, err)
	_, err = GetAggregation("nope")
	assert.Error(t, err)
}

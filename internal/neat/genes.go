package neat

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
)

// --------------------------- NodeGene ---------------------------

// NodeGene represents a node (neuron) in the neural network genome.
type NodeGene struct {
	Key         int // Negative for inputs, >=0 for outputs/hidden
	Bias        float64
	Response    float64
	Activation  string
	Aggregation string
}

// NewNodeGene creates a new NodeGene with attributes initialized according to the config.
func NewNodeGene(key int, config *GenomeConfig, rng *rand.Rand) *NodeGene {
	return &NodeGene{
		Key:         key,
		Bias:        initFloatAttribute(rng, config.BiasInitMean, config.BiasInitStdev, config.BiasInitType, config.BiasMinValue, config.BiasMaxValue),
		Response:    initFloatAttribute(rng, config.ResponseInitMean, config.ResponseInitStdev, config.ResponseInitType, config.ResponseMinValue, config.ResponseMaxValue),
		Activation:  initStringAttribute(rng, config.ActivationDefault, config.ActivationOptions),
		Aggregation: initStringAttribute(rng, config.AggregationDefault, config.AggregationOptions),
	}
}

// String returns a string representation of the NodeGene.
func (ng *NodeGene) String() string {
	return fmt.Sprintf("NodeGene(Key: %d, Bias: %.3f, Response: %.3f, Activation: %s, Aggregation: %s)",
		ng.Key, ng.Bias, ng.Response, ng.Activation, ng.Aggregation)
}

// Copy creates a deep copy of the NodeGene.
func (ng *NodeGene) Copy() *NodeGene {
	c := *ng
	return &c
}

// Mutate adjusts the attributes of the NodeGene based on mutation rates in the config.
func (ng *NodeGene) Mutate(config *GenomeConfig, rng *rand.Rand) {
	ng.Bias = mutateFloatAttribute(rng, ng.Bias, config.BiasMutateRate, config.BiasReplaceRate, config.BiasMutatePower,
		config.BiasInitMean, config.BiasInitStdev, config.BiasInitType, config.BiasMinValue, config.BiasMaxValue)
	ng.Response = mutateFloatAttribute(rng, ng.Response, config.ResponseMutateRate, config.ResponseReplaceRate, config.ResponseMutatePower,
		config.ResponseInitMean, config.ResponseInitStdev, config.ResponseInitType, config.ResponseMinValue, config.ResponseMaxValue)
	ng.Activation = mutateStringAttribute(rng, ng.Activation, config.ActivationMutateRate, config.ActivationOptions)
	ng.Aggregation = mutateStringAttribute(rng, ng.Aggregation, config.AggregationMutateRate, config.AggregationOptions)
}

// Distance is the attribute distance between two homologous node genes.
func (ng *NodeGene) Distance(other *NodeGene, config *GenomeConfig) float64 {
	d := math.Abs(ng.Bias-other.Bias) + math.Abs(ng.Response-other.Response)
	if ng.Activation != other.Activation {
		d += 1.0
	}
	if ng.Aggregation != other.Aggregation {
		d += 1.0
	}
	return d * config.CompatibilityWeightCoefficient
}

// Crossover creates a new NodeGene by randomly inheriting attributes from two parents.
// ng is the primary parent and provides the key.
func (ng *NodeGene) Crossover(other *NodeGene, rng *rand.Rand) *NodeGene {
	child := ng.Copy()
	if rng.Float64() < 0.5 {
		child.Bias = other.Bias
	}
	if rng.Float64() < 0.5 {
		child.Response = other.Response
	}
	if rng.Float64() < 0.5 {
		child.Activation = other.Activation
	}
	if rng.Float64() < 0.5 {
		child.Aggregation = other.Aggregation
	}
	return child
}

// --------------------------- ConnectionGene ---------------------------

// ConnectionKey uniquely identifies a connection gene (innovation).
type ConnectionKey struct {
	InNodeID  int
	OutNodeID int
}

// ConnectionGene represents a connection between two nodes in the genome.
type ConnectionGene struct {
	Key     ConnectionKey
	Weight  float64
	Enabled bool
}

// NewConnectionGene creates a new ConnectionGene with attributes initialized according to the config.
func NewConnectionGene(key ConnectionKey, config *GenomeConfig, rng *rand.Rand) *ConnectionGene {
	return &ConnectionGene{
		Key:     key,
		Weight:  initFloatAttribute(rng, config.WeightInitMean, config.WeightInitStdev, config.WeightInitType, config.WeightMinValue, config.WeightMaxValue),
		Enabled: initBoolAttribute(config.EnabledDefault, rng),
	}
}

// String returns a string representation of the ConnectionGene.
func (cg *ConnectionGene) String() string {
	return fmt.Sprintf("ConnGene(Key: %d->%d, Weight: %.3f, Enabled: %t)",
		cg.Key.InNodeID, cg.Key.OutNodeID, cg.Weight, cg.Enabled)
}

// Copy creates a deep copy of the ConnectionGene.
func (cg *ConnectionGene) Copy() *ConnectionGene {
	c := *cg
	return &c
}

// Mutate adjusts the weight and enabled flag. Re-enabling a connection
// that would close a cycle in a feed-forward genome is refused.
func (cg *ConnectionGene) Mutate(genome *Genome, config *GenomeConfig, rng *rand.Rand) {
	cg.Weight = mutateFloatAttribute(rng, cg.Weight, config.WeightMutateRate, config.WeightReplaceRate, config.WeightMutatePower,
		config.WeightInitMean, config.WeightInitStdev, config.WeightInitType, config.WeightMinValue, config.WeightMaxValue)

	rate := config.EnabledMutateRate
	if cg.Enabled {
		rate += config.EnabledRateToFalseAdd
	} else {
		rate += config.EnabledRateToTrueAdd
	}
	if rate <= 0 || rng.Float64() >= rate {
		return
	}

	enable := rng.Float64() < 0.5
	if enable && !cg.Enabled && config.FeedForward && createsCycle(genome, cg.Key.InNodeID, cg.Key.OutNodeID) {
		return
	}
	cg.Enabled = enable
}

// Distance is the attribute distance between two homologous connection genes.
func (cg *ConnectionGene) Distance(other *ConnectionGene, config *GenomeConfig) float64 {
	d := math.Abs(cg.Weight - other.Weight)
	if cg.Enabled != other.Enabled {
		d += 1.0
	}
	return d * config.CompatibilityWeightCoefficient
}

// Crossover creates a new ConnectionGene by randomly inheriting attributes from two parents.
func (cg *ConnectionGene) Crossover(other *ConnectionGene, rng *rand.Rand) *ConnectionGene {
	child := cg.Copy()
	if rng.Float64() < 0.5 {
		child.Weight = other.Weight
	}
	if rng.Float64() < 0.5 {
		child.Enabled = other.Enabled
	}
	return child
}

// --------------------------- Attribute Helpers ---------------------------

func initFloatAttribute(rng *rand.Rand, mean, stdev float64, initType string, minVal, maxVal float64) float64 {
	var val float64
	switch strings.ToLower(initType) {
	case "uniform":
		lo := math.Max(minVal, mean-(2*stdev))
		hi := math.Min(maxVal, mean+(2*stdev))
		if hi < lo {
			hi = lo
		}
		val = rng.Float64()*(hi-lo) + lo
	default: // "gaussian", "normal"
		val = rng.NormFloat64()*stdev + mean
	}
	return clamp(val, minVal, maxVal)
}

func mutateFloatAttribute(rng *rand.Rand, value, mutateRate, replaceRate, mutatePower, initMean, initStdev float64, initType string, minVal, maxVal float64) float64 {
	r := rng.Float64()
	if r < mutateRate {
		return clamp(value+rng.NormFloat64()*mutatePower, minVal, maxVal)
	}
	if r < mutateRate+replaceRate {
		return initFloatAttribute(rng, initMean, initStdev, initType, minVal, maxVal)
	}
	return value
}

func initStringAttribute(rng *rand.Rand, defaultVal string, options []string) string {
	if len(options) == 0 {
		return ""
	}
	switch strings.ToLower(defaultVal) {
	case "random", "none", "":
		return options[rng.Intn(len(options))]
	}
	for _, opt := range options {
		if opt == defaultVal {
			return defaultVal
		}
	}
	return options[rng.Intn(len(options))]
}

func mutateStringAttribute(rng *rand.Rand, value string, mutateRate float64, options []string) string {
	if len(options) <= 1 || mutateRate <= 0 || rng.Float64() >= mutateRate {
		return value
	}
	// Pick among the options other than the current value.
	others := make([]string, 0, len(options))
	for _, opt := range options {
		if opt != value {
			others = append(others, opt)
		}
	}
	if len(others) == 0 {
		return value
	}
	return others[rng.Intn(len(others))]
}

package neat

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/ini.v1"
)

// Config stores the configuration parameters for the NEAT algorithm.
type Config struct {
	Neat         NeatConfig
	Genome       GenomeConfig
	Reproduction ReproductionConfig
	SpeciesSet   SpeciesSetConfig
	Stagnation   StagnationConfig
}

// NeatConfig holds parameters specific to the NEAT algorithm itself.
type NeatConfig struct {
	PopSize              int     `ini:"pop_size"`
	FitnessCriterion     string  `ini:"fitness_criterion"` // "max", "min" or "mean"
	FitnessThreshold     float64 `ini:"fitness_threshold"`
	ResetOnExtinction    bool    `ini:"reset_on_extinction"`
	NoFitnessTermination bool    `ini:"no_fitness_termination"`
}

// GenomeConfig holds parameters specific to the structure and mutation of genomes.
type GenomeConfig struct {
	NumInputs                        int     `ini:"num_inputs"`
	NumOutputs                       int     `ini:"num_outputs"`
	NumHidden                        int     `ini:"num_hidden"`
	FeedForward                      bool    `ini:"feed_forward"`
	CompatibilityDisjointCoefficient float64 `ini:"compatibility_disjoint_coefficient"`
	CompatibilityWeightCoefficient   float64 `ini:"compatibility_weight_coefficient"`
	ConnAddProb                      float64 `ini:"conn_add_prob"`
	ConnDeleteProb                   float64 `ini:"conn_delete_prob"`
	NodeAddProb                      float64 `ini:"node_add_prob"`
	NodeDeleteProb                   float64 `ini:"node_delete_prob"`
	SingleStructuralMutation         bool    `ini:"single_structural_mutation"`
	InitialConnection                string  `ini:"initial_connection"`

	BiasInitMean    float64 `ini:"bias_init_mean"`
	BiasInitStdev   float64 `ini:"bias_init_stdev"`
	BiasInitType    string  `ini:"bias_init_type"`
	BiasReplaceRate float64 `ini:"bias_replace_rate"`
	BiasMutateRate  float64 `ini:"bias_mutate_rate"`
	BiasMutatePower float64 `ini:"bias_mutate_power"`
	BiasMaxValue    float64 `ini:"bias_max_value"`
	BiasMinValue    float64 `ini:"bias_min_value"`

	ResponseInitMean    float64 `ini:"response_init_mean"`
	ResponseInitStdev   float64 `ini:"response_init_stdev"`
	ResponseInitType    string  `ini:"response_init_type"`
	ResponseReplaceRate float64 `ini:"response_replace_rate"`
	ResponseMutateRate  float64 `ini:"response_mutate_rate"`
	ResponseMutatePower float64 `ini:"response_mutate_power"`
	ResponseMaxValue    float64 `ini:"response_max_value"`
	ResponseMinValue    float64 `ini:"response_min_value"`

	ActivationDefault    string   `ini:"activation_default"`
	ActivationOptions    []string `ini:"activation_options" delim:" "`
	ActivationMutateRate float64  `ini:"activation_mutate_rate"`

	AggregationDefault    string   `ini:"aggregation_default"`
	AggregationOptions    []string `ini:"aggregation_options" delim:" "`
	AggregationMutateRate float64  `ini:"aggregation_mutate_rate"`

	WeightInitMean    float64 `ini:"weight_init_mean"`
	WeightInitStdev   float64 `ini:"weight_init_stdev"`
	WeightInitType    string  `ini:"weight_init_type"`
	WeightReplaceRate float64 `ini:"weight_replace_rate"`
	WeightMutateRate  float64 `ini:"weight_mutate_rate"`
	WeightMutatePower float64 `ini:"weight_mutate_power"`
	WeightMaxValue    float64 `ini:"weight_max_value"`
	WeightMinValue    float64 `ini:"weight_min_value"`

	EnabledDefault        string  `ini:"enabled_default"`
	EnabledMutateRate     float64 `ini:"enabled_mutate_rate"`
	EnabledRateToTrueAdd  float64 `ini:"enabled_rate_to_true_add"`
	EnabledRateToFalseAdd float64 `ini:"enabled_rate_to_false_add"`

	// Derived
	InputKeys          []int
	OutputKeys         []int
	NodeKeyIndex       int     // Next key handed out to a hidden node
	ConnectionFraction float64 // Parsed from "partial[_direct|_nodirect] <fraction>"
}

// ReproductionConfig holds parameters related to reproduction.
type ReproductionConfig struct {
	Elitism           int     `ini:"elitism"`
	SurvivalThreshold float64 `ini:"survival_threshold"`
	MinSpeciesSize    int     `ini:"min_species_size"`
}

// SpeciesSetConfig holds parameters related to speciation.
type SpeciesSetConfig struct {
	CompatibilityThreshold float64 `ini:"compatibility_threshold"`
}

// StagnationConfig holds parameters related to species stagnation.
type StagnationConfig struct {
	SpeciesFitnessFunc string `ini:"species_fitness_func"`
	MaxStagnation      int    `ini:"max_stagnation"`
	SpeciesElitism     int    `ini:"species_elitism"`
}

// LoadConfig loads configuration parameters from an INI file.
func LoadConfig(filePath string) (*Config, error) {
	return loadConfig(filePath)
}

// ParseConfig loads configuration parameters from INI text.
func ParseConfig(data []byte) (*Config, error) {
	return loadConfig(data)
}

func loadConfig(source any) (*Config, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:         true,
		UnescapeValueCommentSymbols: true,
	}, source)
	if err != nil {
		return nil, fmt.Errorf("failed to load NEAT config: %w", err)
	}

	config := &Config{}

	sections := []struct {
		name   string
		target any
	}{
		{"NEAT", &config.Neat},
		{"DefaultGenome", &config.Genome},
		{"DefaultReproduction", &config.Reproduction},
		{"DefaultSpeciesSet", &config.SpeciesSet},
		{"DefaultStagnation", &config.Stagnation},
	}
	for _, s := range sections {
		if err := cfg.Section(s.name).MapTo(s.target); err != nil {
			return nil, fmt.Errorf("failed to map [%s] section: %w", s.name, err)
		}
	}

	// Python-style booleans ("True"/"False") are re-read explicitly.
	readBool(cfg.Section("NEAT"), "reset_on_extinction", &config.Neat.ResetOnExtinction)
	readBool(cfg.Section("NEAT"), "no_fitness_termination", &config.Neat.NoFitnessTermination)
	readBool(cfg.Section("DefaultGenome"), "feed_forward", &config.Genome.FeedForward)
	readBool(cfg.Section("DefaultGenome"), "single_structural_mutation", &config.Genome.SingleStructuralMutation)

	g := &config.Genome
	for _, s := range []*string{
		&g.BiasInitType, &g.ResponseInitType, &g.ActivationDefault, &g.AggregationDefault,
		&g.WeightInitType, &g.EnabledDefault, &g.InitialConnection,
		&config.Neat.FitnessCriterion, &config.Stagnation.SpeciesFitnessFunc,
	} {
		*s = cleanIniString(*s)
	}
	g.ActivationOptions = cleanOptions(g.ActivationOptions)
	g.AggregationOptions = cleanOptions(g.AggregationOptions)

	applyDefaults(config)

	if err := config.derive(); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func readBool(section *ini.Section, key string, dst *bool) {
	if k, err := section.GetKey(key); err == nil {
		*dst = parseBoolAttribute(k.String())
	}
}

func applyDefaults(config *Config) {
	g := &config.Genome
	defaultString(&g.BiasInitType, "gaussian")
	defaultString(&g.ResponseInitType, "gaussian")
	defaultString(&g.WeightInitType, "gaussian")
	defaultString(&g.ActivationDefault, "random")
	defaultString(&g.AggregationDefault, "random")
	defaultString(&g.EnabledDefault, "True")
	defaultString(&g.InitialConnection, "unconnected")
	defaultString(&config.Neat.FitnessCriterion, "max")
	defaultString(&config.Stagnation.SpeciesFitnessFunc, "mean")

	if config.Reproduction.MinSpeciesSize == 0 {
		config.Reproduction.MinSpeciesSize = 1
	}
	if config.Reproduction.SurvivalThreshold == 0 {
		config.Reproduction.SurvivalThreshold = 0.2
	}
	if config.Stagnation.MaxStagnation == 0 {
		config.Stagnation.MaxStagnation = 15
	}
}

func defaultString(s *string, v string) {
	if *s == "" {
		*s = v
	}
}

// derive fills in the input/output keys and parses the initial connection.
func (c *Config) derive() error {
	g := &c.Genome
	g.InputKeys = make([]int, g.NumInputs)
	for i := range g.InputKeys {
		g.InputKeys[i] = -(i + 1)
	}
	g.OutputKeys = make([]int, g.NumOutputs)
	for i := range g.OutputKeys {
		g.OutputKeys[i] = i
	}
	g.NodeKeyIndex = g.NumOutputs

	g.ConnectionFraction = 1.0
	parts := strings.Fields(g.InitialConnection)
	if len(parts) == 0 {
		return fmt.Errorf("config error: initial_connection must be specified")
	}
	if strings.HasPrefix(parts[0], "partial") {
		if len(parts) < 2 {
			return fmt.Errorf("config error: initial_connection %q needs a connection fraction", g.InitialConnection)
		}
		f, err := strconv.ParseFloat(parts[1], 64)
		if err != nil || f < 0 || f > 1 {
			return fmt.Errorf("config error: invalid connection fraction %q", parts[1])
		}
		g.ConnectionFraction = f
	}
	return nil
}

// Validate checks value ranges and option names.
func (c *Config) Validate() error {
	g := c.Genome
	switch {
	case c.Neat.PopSize <= 0:
		return fmt.Errorf("config error: pop_size must be positive")
	case len(g.ActivationOptions) == 0:
		return fmt.Errorf("config error: activation_options must be specified")
	case len(g.AggregationOptions) == 0:
		return fmt.Errorf("config error: aggregation_options must be specified")
	case g.NumInputs <= 0:
		return fmt.Errorf("config error: num_inputs must be positive")
	case g.NumOutputs <= 0:
		return fmt.Errorf("config error: num_outputs must be positive")
	case g.NumHidden < 0:
		return fmt.Errorf("config error: num_hidden cannot be negative")
	case g.CompatibilityDisjointCoefficient < 0 || g.CompatibilityWeightCoefficient < 0:
		return fmt.Errorf("config error: compatibility coefficients cannot be negative")
	case !isProbability(g.ConnAddProb) || !isProbability(g.ConnDeleteProb):
		return fmt.Errorf("config error: conn_add_prob and conn_delete_prob must be between 0 and 1")
	case !isProbability(g.NodeAddProb) || !isProbability(g.NodeDeleteProb):
		return fmt.Errorf("config error: node_add_prob and node_delete_prob must be between 0 and 1")
	case g.BiasMaxValue < g.BiasMinValue:
		return fmt.Errorf("config error: bias_max_value cannot be less than bias_min_value")
	case g.ResponseMaxValue < g.ResponseMinValue:
		return fmt.Errorf("config error: response_max_value cannot be less than response_min_value")
	case g.WeightMaxValue < g.WeightMinValue:
		return fmt.Errorf("config error: weight_max_value cannot be less than weight_min_value")
	case !isProbability(c.Reproduction.SurvivalThreshold):
		return fmt.Errorf("config error: survival_threshold must be between 0 and 1")
	case c.Reproduction.MinSpeciesSize <= 0:
		return fmt.Errorf("config error: min_species_size must be positive")
	case c.Reproduction.Elitism < 0:
		return fmt.Errorf("config error: elitism cannot be negative")
	case c.SpeciesSet.CompatibilityThreshold < 0:
		return fmt.Errorf("config error: compatibility_threshold cannot be negative")
	case c.Stagnation.MaxStagnation <= 0:
		return fmt.Errorf("config error: max_stagnation must be positive")
	}

	for _, name := range g.ActivationOptions {
		if _, err := GetActivation(name); err != nil {
			return fmt.Errorf("config error: %w", err)
		}
	}
	for _, name := range g.AggregationOptions {
		if _, err := GetAggregation(name); err != nil {
			return fmt.Errorf("config error: %w", err)
		}
	}

	if _, err := criterionFunc(c.Neat.FitnessCriterion); err != nil {
		return fmt.Errorf("config error: invalid fitness_criterion %q, must be one of 'max', 'min', 'mean'", c.Neat.FitnessCriterion)
	}
	if _, ok := StatFunctions[strings.ToLower(c.Stagnation.SpeciesFitnessFunc)]; !ok {
		return fmt.Errorf("config error: invalid species_fitness_func %q", c.Stagnation.SpeciesFitnessFunc)
	}

	validConnections := map[string]bool{
		"unconnected": true, "fs_neat_nohidden": true, "fs_neat": true, "fs_neat_hidden": true,
		"full_nodirect": true, "full": true, "full_direct": true,
		"partial_nodirect": true, "partial": true, "partial_direct": true,
	}
	if base := strings.Fields(g.InitialConnection)[0]; !validConnections[base] {
		return fmt.Errorf("config error: invalid initial_connection type %q", base)
	}
	return nil
}

// GetNewNodeKey hands out the next unused hidden node key.
func (gc *GenomeConfig) GetNewNodeKey() int {
	key := gc.NodeKeyIndex
	gc.NodeKeyIndex++
	return key
}

func isProbability(p float64) bool {
	return p >= 0 && p <= 1
}

// cleanIniString removes inline comments and trims whitespace from a string read from INI.
func cleanIniString(s string) string {
	if idx := strings.IndexAny(s, "#;"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

func cleanOptions(opts []string) []string {
	out := opts[:0]
	for _, o := range opts {
		if o = cleanIniString(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

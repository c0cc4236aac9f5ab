package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadFlappy loads the Flappy Bird world configuration.
// Search order: customPath -> ~/.flappyneat/configs/flappy.yaml -> ./configs/flappy.yaml -> embedded default
//
// Keys missing from a file keep their default values.
func LoadFlappy(customPath string) (FlappyConfig, error) {
	cfg := DefaultFlappyConfig()

	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, cfg.Validate()
	}

	for _, path := range searchPaths("flappy.yaml") {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		candidate := DefaultFlappyConfig()
		if err := yaml.Unmarshal(data, &candidate); err == nil {
			return candidate, candidate.Validate()
		}
	}

	// Use embedded default YAML
	if err := yaml.Unmarshal(defaultFlappyYAML, &cfg); err != nil {
		return DefaultFlappyConfig(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

// LoadNEATSource returns the raw NEAT INI text and where it came from.
// Search order: customPath -> ~/.flappyneat/configs/neat.ini -> ./configs/neat.ini -> embedded default
func LoadNEATSource(customPath string) ([]byte, string, error) {
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		return data, customPath, nil
	}

	for _, path := range searchPaths("neat.ini") {
		if data, err := os.ReadFile(path); err == nil {
			return data, path, nil
		}
	}

	return defaultNEATINI, "embedded", nil
}

// searchPaths lists the user and local config locations for a file.
func searchPaths(filename string) []string {
	var paths []string
	if p := userConfigPath(filename); p != "" {
		paths = append(paths, p)
	}
	return append(paths, filepath.Join("configs", filename))
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".flappyneat", "configs", filename)
}

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const fileName = "experiment.yaml"

// Load loads the experiment configuration.
// Search order: customPath -> ~/.forage/configs/experiment.yaml ->
// ./configs/experiment.yaml -> embedded default.
//
// Only an explicit customPath turns read and parse failures into errors; the
// other locations are skipped when unusable. The result is not validated.
func Load(customPath string) (ExperimentConfig, error) {
	var cfg ExperimentConfig

	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	if userCfgPath := userConfigPath(fileName); userCfgPath != "" {
		if c, ok := tryLoad(userCfgPath); ok {
			return c, nil
		}
	}

	if c, ok := tryLoad(filepath.Join("configs", fileName)); ok {
		return c, nil
	}

	if err := yaml.Unmarshal(defaultExperimentYAML, &cfg); err != nil {
		return DefaultExperimentConfig(), nil
	}
	return cfg, nil
}

// Parse decodes an experiment configuration from YAML bytes.
func Parse(data []byte) (ExperimentConfig, error) {
	var cfg ExperimentConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func tryLoad(path string) (ExperimentConfig, bool) {
	var cfg ExperimentConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, false
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, false
	}
	return cfg, true
}

// userConfigPath returns the path to a user config file, or empty if home is
// unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".forage", "configs", filename)
}

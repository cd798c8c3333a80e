package config

import (
	_ "embed"
)

//go:embed defaults/experiment.yaml
var defaultExperimentYAML []byte

// DefaultExperimentConfig returns the default experiment configuration.
func DefaultExperimentConfig() ExperimentConfig {
	return ExperimentConfig{
		Blocks: []BlockConfig{
			{LeftGateRow: 1, RightGateRow: 12},
			{LeftGateRow: 6, RightGateRow: 7},
		},
		TeleportIntervalSec: 30,
		FreezesPerBlock:     2,
		CellSize:            40,
		PracticeBlock:       false,
	}
}

// DefaultYAML returns the embedded default experiment YAML.
func DefaultYAML() []byte {
	return defaultExperimentYAML
}

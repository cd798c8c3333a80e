// Package config provides YAML-based experiment configuration loading for the
// foraging task.
package config

import (
	"time"

	"github.com/vovakirdan/tui-forage/internal/forage"
)

// ExperimentConfig is the on-disk experiment configuration.
type ExperimentConfig struct {
	Blocks              []BlockConfig `yaml:"blocks"`
	TeleportIntervalSec float64       `yaml:"teleport_interval_sec"`
	FreezesPerBlock     int           `yaml:"freezes_per_block"` // 0 = unlimited
	CellSize            int           `yaml:"cell_size"`
	PracticeBlock       bool          `yaml:"practice_block"`
}

// BlockConfig defines the gate rows of one block.
type BlockConfig struct {
	LeftGateRow  int `yaml:"left_gate_row"`
	RightGateRow int `yaml:"right_gate_row"`
}

// Engine converts the file representation into the engine configuration.
// No validation happens here; forage.Config.Validate reports bad fields.
func (c ExperimentConfig) Engine() forage.Config {
	blocks := make([]forage.Block, len(c.Blocks))
	for i, b := range c.Blocks {
		blocks[i] = forage.Block{
			LeftGateRow:  b.LeftGateRow,
			RightGateRow: b.RightGateRow,
		}
	}
	return forage.Config{
		Blocks:          blocks,
		FreezeInterval:  time.Duration(c.TeleportIntervalSec * float64(time.Second)),
		FreezesPerBlock: c.FreezesPerBlock,
		CellSize:        c.CellSize,
		Practice:        c.PracticeBlock,
	}
}

// Validate checks the configuration through the engine's rules.
func (c ExperimentConfig) Validate() error {
	return c.Engine().Validate()
}

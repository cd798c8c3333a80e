package forage

import (
	"fmt"
	"time"
)

// Block is a configuration unit specifying the gate rows of a level.
type Block struct {
	LeftGateRow  int
	RightGateRow int
}

// Config is the configuration surface consumed at session start.
type Config struct {
	Blocks []Block
	// FreezeInterval is the nominal spacing between freeze onsets.
	FreezeInterval time.Duration
	// FreezesPerBlock caps freeze onsets per level; 0 means unlimited.
	FreezesPerBlock int
	// CellSize is rendering-only and ignored by the engine.
	CellSize int
	// Practice prepends an unscored practice level using the first block.
	Practice bool
}

// ConfigError reports the specific invalid configuration field.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("forage: invalid config field %s: %s", e.Field, e.Reason)
}

// Validate checks the configuration and returns a *ConfigError for the first
// invalid field.
func (c Config) Validate() error {
	if len(c.Blocks) == 0 {
		return &ConfigError{Field: "blocks", Reason: "at least one block is required"}
	}
	for i, b := range c.Blocks {
		if b.LeftGateRow < 0 || b.LeftGateRow >= Rows {
			return &ConfigError{
				Field:  fmt.Sprintf("blocks[%d].left_gate_row", i),
				Reason: fmt.Sprintf("%d is outside [0, %d)", b.LeftGateRow, Rows),
			}
		}
		if b.RightGateRow < 0 || b.RightGateRow >= Rows {
			return &ConfigError{
				Field:  fmt.Sprintf("blocks[%d].right_gate_row", i),
				Reason: fmt.Sprintf("%d is outside [0, %d)", b.RightGateRow, Rows),
			}
		}
	}
	if c.FreezeInterval <= 0 {
		return &ConfigError{Field: "teleport_interval_sec", Reason: "must be positive"}
	}
	if c.FreezesPerBlock < 0 {
		return &ConfigError{Field: "freezes_per_block", Reason: "must not be negative"}
	}
	return nil
}

// blockFor returns the block used by a level, cycling through the configured
// blocks. The practice level uses the first block.
func (c Config) blockFor(levelIndex int) Block {
	if levelIndex < 0 {
		return c.Blocks[0]
	}
	return c.Blocks[levelIndex%len(c.Blocks)]
}

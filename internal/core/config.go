package core

// RuntimeConfig contains configuration passed from the CLI to the platform.
type RuntimeConfig struct {
	ScreenW    int    // Screen width in characters
	ScreenH    int    // Screen height in characters
	TickRate   int    // Simulation ticks per second (default 60)
	Seed       int64  // RNG seed for reproducible sessions (0 = non-deterministic)
	PlayerName string // Participant display name; empty asks on the name screen
	LogDir     string // Directory for exported session logs
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:  80,
		ScreenH:  24,
		TickRate: 60,
		Seed:     0,
		LogDir:   "logs",
	}
}

// forage runs the foraging timing task in the terminal.
//
// Usage:
//
//	forage play                 - Run a session locally
//	forage serve                - Host sessions over SSH
//	forage sessions             - Browse stored sessions
//	forage export <session-id>  - Write a stored session as CSV and JSON
//	forage validate [path]      - Check an experiment configuration
//
// Global flags:
//
//	--fps <rate>      - Set tick rate (default: 60)
//	--seed <value>    - Set RNG seed for reproducible sessions
//	--db <path>       - Set database path (default: ~/.forage/sessions.db)
//	--config <path>   - Use a specific experiment configuration
//	--log-dir <path>  - Directory for session exports and the log file
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-forage/internal/config"
	"github.com/vovakirdan/tui-forage/internal/forage"
)

var (
	// Global flags
	flagFPS     int
	flagSeed    int64
	flagDBPath  string
	flagConfig  string
	flagLogDir  string
	flagVerbose bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "forage",
	Short: "Foraging timing task for the terminal",
	Long: `Forage is a maze foraging task with timed freezes. Participants
collect pellets, avoid ghosts and decide when to continue after
being frozen in place. Every session is recorded as an event log.

Available commands:
  play      - Run a session in this terminal
  serve     - Host sessions over SSH
  sessions  - Browse stored sessions
  export    - Write a stored session as CSV and JSON
  validate  - Check an experiment configuration

Examples:
  forage play
  forage play --name p01 --seed 42
  forage serve --ssh :2222
  forage sessions --top
  forage export 3f2a9c1d
  forage validate ./configs/experiment.yaml`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.forage/sessions.db", "Path to sessions database")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to experiment config YAML")
	rootCmd.PersistentFlags().StringVar(&flagLogDir, "log-dir", "logs", "Directory for session exports and logs")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(validateCmd)
}

// newLogger creates the structured logger shared by the subcommands.
func newLogger(w io.Writer, prefix string) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
	})
	if flagVerbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// loadEngineConfig resolves the experiment configuration and validates it.
func loadEngineConfig(path string) (forage.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return forage.Config{}, err
	}
	engine := cfg.Engine()
	if err := engine.Validate(); err != nil {
		return forage.Config{}, err
	}
	return engine, nil
}

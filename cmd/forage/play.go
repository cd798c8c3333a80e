package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-forage/internal/core"
	"github.com/vovakirdan/tui-forage/internal/platform/tui"
	"github.com/vovakirdan/tui-forage/internal/storage"
)

var flagName string

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Run a session in this terminal",
	Long: `Run one participant session in this terminal.

Controls:
  Arrows/WASD  - Move
  Space        - Continue after a freeze
  Enter        - Next level
  Q/Ctrl+C     - Quit (the session is saved as aborted)

Finished sessions are stored in the database and exported as CSV and
JSON into --log-dir. Diagnostics go to forage.log in the same directory.

Examples:
  forage play
  forage play --name p01
  forage play --seed 42 --config ./pilot.yaml`,
	Args: cobra.NoArgs,
	Run:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagName, "name", "", "Participant name (asked on start if empty)")
}

func runPlay(_ *cobra.Command, _ []string) {
	engine, err := loadEngineConfig(flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cfg := core.DefaultConfig()
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		cfg.ScreenW = w
		cfg.ScreenH = h
	}
	cfg.TickRate = flagFPS
	cfg.Seed = flagSeed
	cfg.PlayerName = flagName
	if flagLogDir != "" {
		cfg.LogDir = flagLogDir
	}

	// The TUI owns the terminal, so diagnostics go to a file.
	if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot create log directory: %v\n", err)
		os.Exit(1)
	}
	logFile, err := os.OpenFile(filepath.Join(cfg.LogDir, "forage.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot open log file: %v\n", err)
		os.Exit(1)
	}
	logger := newLogger(logFile, "forage")

	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open sessions database: %v\n", err)
		logger.Warn("could not open sessions database", "error", err)
		// Continue without storage; exports still capture the data.
		store = nil
	}

	runErr := tui.Run(tui.Options{
		Engine:    engine,
		Runtime:   cfg,
		Store:     store,
		ExportDir: cfg.LogDir,
		Logger:    logger,
	})

	// Close resources before potential exit
	if store != nil {
		store.Close()
	}
	logFile.Close()

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running session: %v\n", runErr)
		os.Exit(1)
	}
}

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-forage/internal/config"
	"github.com/vovakirdan/tui-forage/internal/forage"
)

var validateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Check an experiment configuration",
	Long: `Load an experiment configuration and report the first invalid field.

Without a path the normal search order is used: --config, then
~/.forage/configs/experiment.yaml, then ./configs/experiment.yaml, then
the built-in defaults.

Examples:
  forage validate
  forage validate ./configs/experiment.yaml`,
	Args: cobra.MaximumNArgs(1),
	Run:  runValidate,
}

func runValidate(_ *cobra.Command, args []string) {
	path := flagConfig
	if len(args) == 1 {
		path = args[0]
	}

	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		var cfgErr *forage.ConfigError
		if errors.As(err, &cfgErr) {
			fmt.Fprintf(os.Stderr, "Invalid %s: %s\n", cfgErr.Field, cfgErr.Reason)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}

	fmt.Println("Configuration OK")
	fmt.Printf("  Blocks:            %d\n", len(cfg.Blocks))
	for i, b := range cfg.Blocks {
		fmt.Printf("    %d: left gate row %d, right gate row %d\n", i, b.LeftGateRow, b.RightGateRow)
	}
	fmt.Printf("  Freeze interval:   %gs\n", cfg.TeleportIntervalSec)
	if cfg.FreezesPerBlock > 0 {
		fmt.Printf("  Freezes per level: %d\n", cfg.FreezesPerBlock)
	} else {
		fmt.Println("  Freezes per level: unlimited")
	}
	fmt.Printf("  Practice level:    %t\n", cfg.PracticeBlock)
}

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-forage/internal/platform/tui"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Host sessions over SSH",
	Long: `Start an SSH server so participants can run the task remotely.

Each SSH connection gets its own session; the SSH user name is offered
as the participant name. All sessions go to the same database and
export directory.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.forage/host_key

Examples:
  forage serve                           # Listen on :23234 with auto-generated key
  forage serve --ssh :2222               # Listen on port 2222
  forage serve --host-key ./my_host_key  # Use specific host key
  forage serve --seed 42                 # Same layout for every participant

Participants connect with:
  ssh p01@localhost -p 23234`,
	Args: cobra.NoArgs,
	Run:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", ":23234", "SSH server address (host:port)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
}

func runServe(_ *cobra.Command, _ []string) {
	logger := newLogger(os.Stderr, "forage-ssh")

	engine, err := loadEngineConfig(flagConfig)
	if err != nil {
		logger.Error("invalid experiment config", "error", err)
		os.Exit(1)
	}

	cfg := tui.DefaultSSHServerConfig()
	cfg.Address = flagSSHAddr
	cfg.HostKeyPath = flagHostKey
	cfg.DBPath = flagDBPath
	cfg.ExportDir = flagLogDir
	cfg.IdleTimeout = time.Duration(flagIdleTimeout) * time.Minute
	cfg.Engine = engine
	cfg.TickRate = flagFPS
	cfg.Seed = flagSeed

	server, err := tui.NewSSHServer(cfg, logger)
	if err != nil {
		logger.Error("cannot create server", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Starting forage SSH server on %s\n", server.Addr())
	fmt.Println("Press Ctrl+C to stop")

	if err := server.ListenAndServe(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

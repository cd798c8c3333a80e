package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-forage/internal/export"
	"github.com/vovakirdan/tui-forage/internal/storage"
)

var flagOutDir string

var exportCmd = &cobra.Command{
	Use:   "export <session-id>",
	Short: "Write a stored session as CSV and JSON",
	Long: `Export the event log of a stored session.

Two files are written: session_<id>_<timestamp>.csv and .json. The
timestamp is the end of the session, so repeated exports overwrite the
same files.

Examples:
  forage export 3f2a9c1d
  forage export 3f2a9c1d --out ./data`,
	Args: cobra.ExactArgs(1),
	Run:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&flagOutDir, "out", "", "Output directory (defaults to --log-dir)")
}

func runExport(_ *cobra.Command, args []string) {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening sessions database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	dir := flagOutDir
	if dir == "" {
		dir = flagLogDir
	}
	if err := exportSession(store, args[0], dir); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// exportSession writes the stored events of one session into dir.
func exportSession(store *storage.Store, sessionID, dir string) error {
	summary, err := store.SessionByID(sessionID)
	if err != nil {
		return err
	}
	if summary == nil {
		return fmt.Errorf("unknown session %q", sessionID)
	}

	events, err := store.SessionEvents(sessionID)
	if err != nil {
		return err
	}

	paths, err := export.WriteFiles(dir, sessionID, events, summary.EndedAt)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Println(p)
	}
	return nil
}

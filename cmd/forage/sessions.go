package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-forage/internal/platform/tui"
	"github.com/vovakirdan/tui-forage/internal/storage"
)

var (
	flagTop    bool
	flagPlayer string
	flagLimit  int
	flagPlain  bool
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Browse stored sessions",
	Long: `List sessions stored in the database.

In a terminal this opens an interactive browser; pressing Enter on a
session exports it into --log-dir. With --plain, or when output is not a
terminal, a plain table is printed instead.

Examples:
  forage sessions
  forage sessions --top --plain
  forage sessions --player p01`,
	Args: cobra.NoArgs,
	Run:  runSessions,
}

func init() {
	sessionsCmd.Flags().BoolVar(&flagTop, "top", false, "Order by total score instead of date")
	sessionsCmd.Flags().StringVar(&flagPlayer, "player", "", "Only show sessions of this participant")
	sessionsCmd.Flags().IntVar(&flagLimit, "limit", 20, "Maximum sessions to print")
	sessionsCmd.Flags().BoolVar(&flagPlain, "plain", false, "Print a plain table")
}

func runSessions(_ *cobra.Command, _ []string) {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening sessions database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	fd := int(os.Stdout.Fd())
	if !flagPlain && flagPlayer == "" && term.IsTerminal(fd) {
		width, height := 80, 24
		if w, h, termErr := term.GetSize(fd); termErr == nil {
			width, height = w, h
		}
		selected, err := tui.RunSessions(store, width, height)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if selected != "" {
			if err := exportSession(store, selected, flagLogDir); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		}
		return
	}

	var sessions []storage.SessionSummary
	switch {
	case flagPlayer != "":
		sessions, err = store.PlayerSessions(flagPlayer, flagLimit)
	case flagTop:
		sessions, err = store.TopSessions(flagLimit)
	default:
		sessions, err = store.RecentSessions(flagLimit)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving sessions: %v\n", err)
		os.Exit(1)
	}

	if len(sessions) == 0 {
		fmt.Println("No sessions recorded yet.")
		fmt.Println()
		fmt.Println("Run 'forage play' to record the first one.")
		return
	}

	fmt.Printf("  %-4s  %-8s  %-16s  %6s  %6s  %-19s  %8s  %s\n",
		"#", "Session", "Player", "Score", "Levels", "Ended by", "Duration", "Date")
	fmt.Printf("  %-4s  %-8s  %-16s  %6s  %6s  %-19s  %8s  %s\n",
		"-", "-------", "------", "-----", "------", "--------", "--------", "----")
	for i, s := range sessions {
		fmt.Printf("  %-4d  %-8s  %-16s  %6d  %6d  %-19s  %8s  %s\n",
			i+1,
			s.SessionID,
			s.PlayerName,
			s.TotalScore,
			s.LevelsCompleted,
			s.EndReason,
			s.Duration().Round(time.Second),
			s.EndedAt.Local().Format("2006-01-02 15:04"),
		)
	}

	if stats, err := store.GetStats(); err == nil {
		fmt.Println()
		fmt.Printf("Sessions: %d  Completed: %d  Best: %d  Average: %.1f\n",
			stats.SessionCount, stats.Completed, stats.HighScore, stats.AvgScore)
	}
}

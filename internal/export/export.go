// Package export writes finished session event logs to CSV and JSON files.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/vovakirdan/tui-forage/internal/forage"
)

// Document is the JSON export layout.
type Document struct {
	SessionID string         `json:"session_id"`
	Events    []forage.Event `json:"events"`
}

// WriteCSV writes the events as CSV with a header row in forage.Columns
// order. Values are quoted and escaped by encoding/csv.
func WriteCSV(w io.Writer, events []forage.Event) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(forage.Columns); err != nil {
		return fmt.Errorf("export: cannot write header: %w", err)
	}
	for i, e := range events {
		if err := cw.Write(e.Row()); err != nil {
			return fmt.Errorf("export: cannot write event %d: %w", i, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("export: cannot flush csv: %w", err)
	}
	return nil
}

// WriteJSON writes the events as a single {session_id, events} document.
func WriteJSON(w io.Writer, sessionID string, events []forage.Event) error {
	if events == nil {
		events = []forage.Event{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Document{SessionID: sessionID, Events: events}); err != nil {
		return fmt.Errorf("export: cannot encode json: %w", err)
	}
	return nil
}

// FileName returns session_<id>_<YYYYmmdd_HHMMSS>.<ext>.
func FileName(sessionID string, at time.Time, ext string) string {
	return fmt.Sprintf("session_%s_%s.%s", sessionID, at.Format("20060102_150405"), ext)
}

// WriteFiles writes both the CSV and the JSON export into dir and returns
// the paths written.
func WriteFiles(dir, sessionID string, events []forage.Event, at time.Time) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("export: cannot create directory %s: %w", dir, err)
	}

	csvPath := filepath.Join(dir, FileName(sessionID, at, "csv"))
	if err := writeFile(csvPath, func(w io.Writer) error {
		return WriteCSV(w, events)
	}); err != nil {
		return nil, err
	}

	jsonPath := filepath.Join(dir, FileName(sessionID, at, "json"))
	if err := writeFile(jsonPath, func(w io.Writer) error {
		return WriteJSON(w, sessionID, events)
	}); err != nil {
		return []string{csvPath}, err
	}

	return []string{csvPath, jsonPath}, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: cannot create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("export: cannot close %s: %w", path, err)
	}
	return nil
}

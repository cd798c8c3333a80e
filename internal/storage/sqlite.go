// Package storage provides SQLite-based persistence for finished task
// sessions and their event logs.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/tui-forage/internal/forage"
)

// Store manages the SQLite database connection for session persistence.
type Store struct {
	db *sql.DB
}

// SessionSummary is the per-session row stored alongside the event log.
type SessionSummary struct {
	ID              int64
	SessionID       string
	PlayerName      string
	TotalScore      int
	LevelsCompleted int
	EndReason       string
	EventCount      int
	StartedAt       time.Time
	EndedAt         time.Time
	CreatedAt       time.Time
}

// Duration returns the wall-clock length of the session.
func (s SessionSummary) Duration() time.Duration {
	return s.EndedAt.Sub(s.StartedAt)
}

// Stats contains aggregated statistics over all stored sessions.
type Stats struct {
	SessionCount int
	HighScore    int
	AvgScore     float64
	Completed    int // sessions that ended with levels_complete
	LastPlayed   time.Time
}

// timeLayout keeps a fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	// SQLite allows one writer; remote sessions finishing together queue here.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL UNIQUE,
			player_name TEXT NOT NULL,
			total_score INTEGER NOT NULL DEFAULT 0,
			levels_completed INTEGER NOT NULL DEFAULT 0,
			end_reason TEXT NOT NULL,
			event_count INTEGER NOT NULL DEFAULT 0,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_sessions_top ON sessions(total_score DESC);
		CREATE INDEX IF NOT EXISTS idx_sessions_player ON sessions(player_name);

		CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			event_type TEXT NOT NULL,
			timestamp TEXT NOT NULL,
			payload TEXT NOT NULL,
			UNIQUE(session_id, seq)
		);
		CREATE INDEX IF NOT EXISTS idx_events_session ON events(session_id, seq);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Summarize derives the session row from a finished event log.
func Summarize(events []forage.Event) (SessionSummary, error) {
	if len(events) == 0 {
		return SessionSummary{}, errors.New("storage: empty event log")
	}
	first, last := events[0], events[len(events)-1]
	if last.Type != forage.EventSessionEnd {
		return SessionSummary{}, fmt.Errorf("storage: event log of %s does not end with session_end", first.SessionID)
	}

	sum := SessionSummary{
		SessionID:  first.SessionID,
		PlayerName: first.PlayerName,
		EndReason:  last.Reason,
		EventCount: len(events),
		StartedAt:  first.Timestamp,
		EndedAt:    last.Timestamp,
	}
	if last.TotalScore != nil {
		sum.TotalScore = *last.TotalScore
	}
	for _, e := range events {
		if e.Type == forage.EventLevelEnd && e.LevelIndex != nil && *e.LevelIndex >= 0 {
			sum.LevelsCompleted++
		}
	}
	return sum, nil
}

// SaveSession stores a finished session and its full event log in one
// transaction. Returns the ID of the inserted session row.
func (s *Store) SaveSession(events []forage.Event) (int64, error) {
	sum, err := Summarize(events)
	if err != nil {
		return 0, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT INTO sessions
		 (session_id, player_name, total_score, levels_completed, end_reason, event_count, started_at, ended_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sum.SessionID,
		sum.PlayerName,
		sum.TotalScore,
		sum.LevelsCompleted,
		sum.EndReason,
		sum.EventCount,
		sum.StartedAt.UTC().Format(timeLayout),
		sum.EndedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save session: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO events (session_id, seq, event_type, timestamp, payload)
		 VALUES (?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot prepare event insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range events {
		payload, err := json.Marshal(e)
		if err != nil {
			return 0, fmt.Errorf("storage: cannot encode event %d: %w", i, err)
		}
		if _, err := stmt.Exec(sum.SessionID, i, string(e.Type), e.Timestamp.UTC().Format(timeLayout), string(payload)); err != nil {
			return 0, fmt.Errorf("storage: cannot save event %d: %w", i, err)
		}
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("storage: cannot commit session: %w", err)
	}
	return id, nil
}

const sessionColumns = `id, session_id, player_name, total_score, levels_completed,
	end_reason, event_count, started_at, ended_at, created_at`

// RecentSessions retrieves the most recently finished sessions.
func (s *Store) RecentSessions(limit int) ([]SessionSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.querySessions(
		`SELECT `+sessionColumns+` FROM sessions ORDER BY ended_at DESC, id DESC LIMIT ?`,
		limit,
	)
}

// TopSessions retrieves the best sessions by total score.
func (s *Store) TopSessions(limit int) ([]SessionSummary, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.querySessions(
		`SELECT `+sessionColumns+` FROM sessions ORDER BY total_score DESC, id ASC LIMIT ?`,
		limit,
	)
}

// PlayerSessions retrieves the sessions of one participant, newest first.
func (s *Store) PlayerSessions(playerName string, limit int) ([]SessionSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.querySessions(
		`SELECT `+sessionColumns+` FROM sessions WHERE player_name = ? ORDER BY ended_at DESC, id DESC LIMIT ?`,
		playerName, limit,
	)
}

// SessionByID retrieves a session by its session id. Returns nil if absent.
func (s *Store) SessionByID(sessionID string) (*SessionSummary, error) {
	rows, err := s.querySessions(
		`SELECT `+sessionColumns+` FROM sessions WHERE session_id = ?`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (s *Store) querySessions(query string, args ...any) ([]SessionSummary, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionSummary
	for rows.Next() {
		var sum SessionSummary
		var startedAt, endedAt string
		var createdAt any
		if err := rows.Scan(
			&sum.ID,
			&sum.SessionID,
			&sum.PlayerName,
			&sum.TotalScore,
			&sum.LevelsCompleted,
			&sum.EndReason,
			&sum.EventCount,
			&startedAt,
			&endedAt,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		sum.StartedAt, _ = time.Parse(timeLayout, startedAt)
		sum.EndedAt, _ = time.Parse(timeLayout, endedAt)
		sum.CreatedAt = parseDatetime(createdAt)
		out = append(out, sum)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return out, nil
}

// SessionEvents retrieves the ordered event log of a stored session.
func (s *Store) SessionEvents(sessionID string) ([]forage.Event, error) {
	rows, err := s.db.Query(
		`SELECT payload FROM events WHERE session_id = ? ORDER BY seq ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query events: %w", err)
	}
	defer rows.Close()

	var events []forage.Event
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		var e forage.Event
		if err := json.Unmarshal([]byte(payload), &e); err != nil {
			return nil, fmt.Errorf("storage: cannot decode event: %w", err)
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return events, nil
}

// HighScore returns the highest session total.
// Returns 0 if no sessions exist.
func (s *Store) HighScore() (int, error) {
	var score sql.NullInt64
	err := s.db.QueryRow("SELECT MAX(total_score) FROM sessions").Scan(&score)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot query high score: %w", err)
	}
	if !score.Valid {
		return 0, nil
	}
	return int(score.Int64), nil
}

// GetStats retrieves aggregated statistics over all sessions.
func (s *Store) GetStats() (*Stats, error) {
	stats := &Stats{}

	var lastPlayed sql.NullString
	err := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(MAX(total_score), 0), COALESCE(AVG(total_score), 0),
		        COALESCE(SUM(CASE WHEN end_reason = ? THEN 1 ELSE 0 END), 0), MAX(ended_at)
		 FROM sessions`,
		forage.ReasonLevelsComplete,
	).Scan(&stats.SessionCount, &stats.HighScore, &stats.AvgScore, &stats.Completed, &lastPlayed)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get stats: %w", err)
	}
	if lastPlayed.Valid {
		stats.LastPlayed, _ = time.Parse(timeLayout, lastPlayed.String)
	}
	return stats, nil
}

// DeleteSession removes a session and its events.
func (s *Store) DeleteSession(sessionID string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM events WHERE session_id = ?", sessionID); err != nil {
		return fmt.Errorf("storage: cannot delete events: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM sessions WHERE session_id = ?", sessionID); err != nil {
		return fmt.Errorf("storage: cannot delete session: %w", err)
	}
	return tx.Commit()
}

// parseDatetime handles the driver returning either time.Time or a string.
func parseDatetime(v any) time.Time {
	switch v := v.(type) {
	case time.Time:
		return v
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", v); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

package forage

import (
	"errors"
	"strconv"
	"time"
)

// EventType tags an event record.
type EventType string

const (
	EventSessionStart EventType = "session_start"
	EventLevelStart   EventType = "level_start"
	EventFreezeStart  EventType = "freeze_start"
	EventFreezeEnd    EventType = "freeze_end"
	EventPellet       EventType = "pellet"
	EventDeath        EventType = "death"
	EventLevelEnd     EventType = "level_end"
	EventSessionEnd   EventType = "session_end"
	EventDiagnostic   EventType = "diagnostic"
)

// Terminal reasons carried by level_end and session_end events.
const (
	ReasonTimeUp             = "time_up"
	ReasonAllPellets         = "all_pellets"
	ReasonLevelsComplete     = "levels_complete"
	ReasonLivesExhausted     = "lives_exhausted"
	ReasonAborted            = "aborted"
	ReasonInvariantViolation = "invariant_violation"
)

// ErrSessionActive is returned when the event log is requested before the
// session has ended.
var ErrSessionActive = errors.New("forage: session still active")

// Event is an immutable record of a state transition. Optional fields are nil
// (or empty for Reason) when they do not apply to the event type.
type Event struct {
	Type       EventType `json:"event_type"`
	Timestamp  time.Time `json:"timestamp"`
	SessionID  string    `json:"session_id"`
	PlayerName string    `json:"player_name"`

	LevelIndex       *int   `json:"level_index,omitempty"`
	LevelScore       *int   `json:"level_score,omitempty"`
	TotalScore       *int   `json:"total_score,omitempty"`
	Reason           string `json:"reason,omitempty"`
	FreezeDurationMS *int64 `json:"freeze_duration_ms,omitempty"`
	InHighValue      *bool  `json:"in_high_value,omitempty"`
	SpaceClicks      *int   `json:"space_clicks_during_freeze,omitempty"`
	PenaltySeconds   *int   `json:"penalty_seconds,omitempty"`
	LivesLeft        *int   `json:"lives_left,omitempty"`

	// Cell of a pellet collection or a hazard contact.
	CellCol    *int   `json:"cell_col,omitempty"`
	CellRow    *int   `json:"cell_row,omitempty"`
	PelletTier string `json:"pellet_tier,omitempty"`
	HazardID   *int   `json:"hazard_id,omitempty"`
	// Gate rows of the block a level uses.
	LeftGateRow  *int `json:"left_gate_row,omitempty"`
	RightGateRow *int `json:"right_gate_row,omitempty"`
}

// Columns is the fixed column order of a tabular event export.
var Columns = []string{
	"event_type",
	"timestamp",
	"session_id",
	"player_name",
	"level_index",
	"level_score",
	"total_score",
	"reason",
	"freeze_duration_ms",
	"in_high_value",
	"space_clicks_during_freeze",
	"penalty_seconds",
	"lives_left",
	"cell_col",
	"cell_row",
	"pellet_tier",
	"hazard_id",
	"left_gate_row",
	"right_gate_row",
}

// TimestampLayout is the ISO-8601 layout used for event timestamps.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Record returns the event as a column -> value mapping. Absent optional
// fields are empty strings.
func (e Event) Record() map[string]string {
	rec := map[string]string{
		"event_type":  string(e.Type),
		"timestamp":   e.Timestamp.UTC().Format(TimestampLayout),
		"session_id":  e.SessionID,
		"player_name": e.PlayerName,
		"reason":      e.Reason,
		"pellet_tier": e.PelletTier,
	}
	putInt(rec, "level_index", e.LevelIndex)
	putInt(rec, "level_score", e.LevelScore)
	putInt(rec, "total_score", e.TotalScore)
	putInt(rec, "space_clicks_during_freeze", e.SpaceClicks)
	putInt(rec, "penalty_seconds", e.PenaltySeconds)
	putInt(rec, "lives_left", e.LivesLeft)
	putInt(rec, "cell_col", e.CellCol)
	putInt(rec, "cell_row", e.CellRow)
	putInt(rec, "hazard_id", e.HazardID)
	putInt(rec, "left_gate_row", e.LeftGateRow)
	putInt(rec, "right_gate_row", e.RightGateRow)
	if e.FreezeDurationMS != nil {
		rec["freeze_duration_ms"] = strconv.FormatInt(*e.FreezeDurationMS, 10)
	}
	if e.InHighValue != nil {
		rec["in_high_value"] = strconv.FormatBool(*e.InHighValue)
	}
	for _, col := range Columns {
		if _, ok := rec[col]; !ok {
			rec[col] = ""
		}
	}
	return rec
}

// Row returns the event values in Columns order.
func (e Event) Row() []string {
	rec := e.Record()
	row := make([]string, len(Columns))
	for i, col := range Columns {
		row[i] = rec[col]
	}
	return row
}

func putInt(rec map[string]string, key string, v *int) {
	if v != nil {
		rec[key] = strconv.Itoa(*v)
	}
}

func ptr[T any](v T) *T {
	return &v
}

// EventLog is the append-only, ordered event sequence of a session.
type EventLog struct {
	events []Event
}

// append adds an event. It is called synchronously with the transition that
// produced the event; events are never reordered or modified.
func (l *EventLog) append(e Event) {
	l.events = append(l.events, e)
}

// Len returns the number of recorded events.
func (l *EventLog) Len() int {
	return len(l.events)
}

// Last returns the most recent event.
func (l *EventLog) Last() (Event, bool) {
	if len(l.events) == 0 {
		return Event{}, false
	}
	return l.events[len(l.events)-1], true
}

// all returns a copy of the full sequence.
func (l *EventLog) all() []Event {
	return append([]Event(nil), l.events...)
}

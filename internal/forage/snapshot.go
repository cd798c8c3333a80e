package forage

import (
	"time"

	"github.com/vovakirdan/tui-forage/internal/core"
)

// PlayerView is the read-only player state exposed to renderers.
type PlayerView struct {
	Cell       core.Cell
	Dir        Direction
	Frozen     bool
	Invincible bool
	InMotion   bool
}

// HazardView is the read-only hazard state exposed to renderers.
type HazardView struct {
	ID   int
	Cell core.Cell
	Dir  Direction
}

// FreezeView describes the active freeze episode, if any.
type FreezeView struct {
	Active    bool
	Phase     FreezePhase
	Required  time.Duration
	Elapsed   time.Duration
	Remaining time.Duration
	Penalty   time.Duration
	Attempts  int
	Hot       bool
}

// Snapshot is a consistent view of the session at one instant. It shares no
// mutable state with the engine.
type Snapshot struct {
	SessionID  string
	PlayerName string
	Mode       Mode

	LevelIndex int
	LevelCount int
	Practice   bool
	Budget     time.Duration
	Remaining  time.Duration // never negative
	LevelScore int
	TotalScore int
	Lives      int

	Player      PlayerView
	Hazards     []HazardView
	Pellets     PelletField
	PelletCount int
	Freeze      FreezeView

	LeftGate  core.Cell
	RightGate core.Cell

	LastLevelReason string
	EndReason       string
}

// Snapshot returns the read-only view used for rendering. Before Start the
// snapshot carries only identity and mode.
func (s *Session) Snapshot(now time.Time) Snapshot {
	snap := Snapshot{
		SessionID:       s.id,
		PlayerName:      s.playerName,
		Mode:            s.mode,
		LevelCount:      LevelCount,
		TotalScore:      s.totalScore,
		LastLevelReason: s.lastLevelReason,
		EndReason:       s.endReason,
	}
	if s.level == nil {
		return snap
	}

	snap.LevelIndex = s.level.Index
	snap.Practice = s.level.IsPractice()
	snap.Budget = s.level.Budget
	snap.LevelScore = s.level.Score
	if !s.level.ended && s.mode != ModeSessionOver {
		snap.Remaining = max(0, s.level.Remaining(now))
	}

	snap.Lives = s.player.Lives
	snap.Player = PlayerView{
		Cell:       s.player.Cell,
		Dir:        s.player.Dir,
		Frozen:     s.player.Frozen,
		Invincible: s.player.Invincible(now),
		InMotion:   s.player.InMotion(now),
	}

	snap.Hazards = make([]HazardView, 0, len(s.hazards))
	for _, h := range s.hazards {
		if h.Removed {
			continue
		}
		snap.Hazards = append(snap.Hazards, HazardView{ID: h.ID, Cell: h.Cell, Dir: h.Dir})
	}

	snap.Pellets = s.pellets.Clone()
	snap.PelletCount = s.pellets.Len()
	snap.LeftGate, snap.RightGate = s.maze.Gates()

	if ep := s.freeze.Episode(); ep != nil {
		snap.Freeze = FreezeView{
			Active:    true,
			Phase:     s.freeze.Phase(now),
			Required:  ep.Required(),
			Elapsed:   ep.Elapsed(now),
			Remaining: s.freeze.Remaining(now),
			Penalty:   ep.Penalty,
			Attempts:  ep.Attempts,
			Hot:       ep.Hot,
		}
	}
	return snap
}

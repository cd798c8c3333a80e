package forage

import (
	"time"

	"github.com/vovakirdan/tui-forage/internal/core"
)

// Motion timing.
const (
	// TapMoveInterval is the minimum spacing between tapped moves. It is also
	// the length of the cell transition the renderer animates; a new command
	// is refused while a transition is in progress.
	TapMoveInterval = 80 * time.Millisecond
	// RepeatMoveInterval is the minimum spacing between moves driven by a
	// held key.
	RepeatMoveInterval = 120 * time.Millisecond
	// HazardMoveInterval is the hazard cadence, slower than the player's.
	HazardMoveInterval = 550 * time.Millisecond
	// HazardTurnChance is the per-step probability of a hazard picking a new
	// direction even when unblocked.
	HazardTurnChance = 0.3
	// InvincibilityDuration suppresses hazard contact after each respawn.
	InvincibilityDuration = 2 * time.Second

	StartingLives = 3
	HazardCount   = 3
)

// Direction is a cardinal movement direction.
type Direction int

const (
	DirNone Direction = iota
	DirUp
	DirDown
	DirLeft
	DirRight
)

// Cardinals lists the four movement directions.
var Cardinals = []Direction{DirUp, DirDown, DirLeft, DirRight}

// Delta returns the (column, row) offset of one step in this direction.
func (d Direction) Delta() (int, int) {
	switch d {
	case DirUp:
		return 0, -1
	case DirDown:
		return 0, 1
	case DirLeft:
		return -1, 0
	case DirRight:
		return 1, 0
	default:
		return 0, 0
	}
}

func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	default:
		return "none"
	}
}

// DirectionFor maps a movement action to its direction.
func DirectionFor(a core.Action) Direction {
	switch a {
	case core.ActionUp:
		return DirUp
	case core.ActionDown:
		return DirDown
	case core.ActionLeft:
		return DirLeft
	case core.ActionRight:
		return DirRight
	default:
		return DirNone
	}
}

// Player is the participant's avatar. Only the logical cell is tracked; the
// interpolated screen position belongs to the renderer.
type Player struct {
	Cell            core.Cell
	Dir             Direction
	Frozen          bool
	Lives           int
	InvincibleUntil time.Time

	start       core.Cell
	lastMoveAt  time.Time
	motionUntil time.Time
}

func newPlayer(start core.Cell, lives int) *Player {
	return &Player{
		Cell:  start,
		Lives: lives,
		start: start,
	}
}

// InMotion reports whether a cell transition is still in progress.
func (p *Player) InMotion(now time.Time) bool {
	return now.Before(p.motionUntil)
}

// Invincible reports whether hazard contact is currently suppressed.
func (p *Player) Invincible(now time.Time) bool {
	return now.Before(p.InvincibleUntil)
}

// canMove applies the command gate: not frozen, not mid-transition, and for
// held keys at least RepeatMoveInterval since the last accepted move.
func (p *Player) canMove(now time.Time, held bool) bool {
	if p.Frozen || p.InMotion(now) {
		return false
	}
	if held && !p.lastMoveAt.IsZero() && now.Sub(p.lastMoveAt) < RepeatMoveInterval {
		return false
	}
	return true
}

// tryMove moves one cell if the command gate and the maze allow it.
// Invalid commands leave the player untouched.
func (p *Player) tryMove(m *Maze, d Direction, now time.Time, held bool) bool {
	if d == DirNone || !p.canMove(now, held) {
		return false
	}
	dc, dr := d.Delta()
	dest := p.Cell.Add(dc, dr)
	if m.IsWall(dest) {
		return false
	}
	p.Cell = dest
	p.Dir = d
	p.lastMoveAt = now
	p.motionUntil = now.Add(TapMoveInterval)
	return true
}

// respawn returns the player to the level start cell with a fresh
// invincibility window.
func (p *Player) respawn(now time.Time) {
	p.Cell = p.start
	p.Dir = DirNone
	p.InvincibleUntil = now.Add(InvincibilityDuration)
	p.motionUntil = time.Time{}
}

// Hazard is a wandering ghost.
type Hazard struct {
	ID      int
	Cell    core.Cell
	Dir     Direction
	Removed bool // reserved; no current rule sets it
}

// step moves the hazard one cell. It keeps its direction unless stationary
// or a HazardTurnChance roll says turn; a blocked direction is re-rolled once
// and a second block leaves the hazard in place for this tick.
// Hazards are confined to playable cells and never enter gates.
func (h *Hazard) step(m *Maze, rng Source) {
	if h.Removed {
		return
	}
	if h.Dir == DirNone || rng.Float64() < HazardTurnChance {
		h.Dir = randomDirection(rng)
	}
	dest := h.next()
	if !m.IsPlayable(dest) {
		h.Dir = randomDirection(rng)
		dest = h.next()
		if !m.IsPlayable(dest) {
			return
		}
	}
	h.Cell = dest
}

func (h *Hazard) next() core.Cell {
	dc, dr := h.Dir.Delta()
	return h.Cell.Add(dc, dr)
}

func randomDirection(rng Source) Direction {
	return Cardinals[rng.Intn(len(Cardinals))]
}

// contact returns the IDs of hazards sharing the player's cell.
func contact(hazards []*Hazard, p *Player) []int {
	var hit []int
	for _, h := range hazards {
		if !h.Removed && h.Cell == p.Cell {
			hit = append(hit, h.ID)
		}
	}
	return hit
}

// spawnEntities places the player on a random playable cell and the hazards
// on distinct playable cells other than the player's.
func spawnEntities(m *Maze, rng Source, lives int) (*Player, []*Hazard) {
	playable := m.PlayableCells()
	start := playable[rng.Intn(len(playable))]
	player := newPlayer(start, lives)

	others := make([]core.Cell, 0, len(playable)-1)
	for _, c := range playable {
		if c != start {
			others = append(others, c)
		}
	}
	cells := sampleCells(others, HazardCount, rng)
	hazards := make([]*Hazard, len(cells))
	for i, c := range cells {
		hazards[i] = &Hazard{
			ID:   i,
			Cell: c,
			Dir:  randomDirection(rng),
		}
	}
	return player, hazards
}

// Package forage implements the session/level simulation engine for the
// foraging timing task: maze geometry, pellet placement, player and hazard
// motion, the freeze/release state machine, level and session progression,
// and the append-only event log.
//
// The engine is single-threaded and clock-agnostic. Every operation takes the
// current time as an argument; the platform reads its clock once per tick and
// passes the same value to every call made during that tick.
package forage

import "github.com/vovakirdan/tui-forage/internal/core"

// Grid geometry.
const (
	Cols = 20
	Rows = 14

	PlayableColMin = 1
	PlayableColMax = 18
	PlayableRowMin = 1
	PlayableRowMax = 12
)

// Hot zone geometry: two stripes at the top and bottom of the playable area
// and a 5x5 square around the grid center.
var (
	topStripeRows    = [2]int{1, 2}
	bottomStripeRows = [2]int{11, 12}
	hotCenter        = core.C(10, 7)
)

const hotCenterRadius = 2

// mazeLayout holds the internal walls of the playable area, one string per
// row starting at PlayableRowMin, one char per column starting at
// PlayableColMin. '#' is a wall.
var mazeLayout = []string{
	"  ###    ###      ",
	"  #  #   #  #  #  ",
	"  #      #     #  ",
	"    ######  ###   ",
	"  #    #    #  #  ",
	"  #  #    #    #  ",
	"  #    #  #  #    ",
	"    ###  ######   ",
	"  #  #      #  #  ",
	"  #     #     #   ",
	"  #  #   #  #  #  ",
	"  ###      ###    ",
}

// mazeWalls is the parsed wall set, shared by every Maze.
var mazeWalls = parseLayout(mazeLayout)

func parseLayout(layout []string) map[core.Cell]bool {
	walls := make(map[core.Cell]bool)
	for r, line := range layout {
		for c, ch := range line {
			if ch == '#' {
				walls[core.C(c+PlayableColMin, r+PlayableRowMin)] = true
			}
		}
	}
	return walls
}

// Maze is the static grid geometry of one block: the fixed wall layout plus
// the two decorative gate cells on the boundary columns.
// A Maze has no mutable state after construction.
type Maze struct {
	leftGate  core.Cell
	rightGate core.Cell

	playable []core.Cell
	hot      []core.Cell
	cold     []core.Cell
}

// NewMaze builds the maze for a block. Gate rows are assumed valid;
// Config.Validate rejects out-of-range rows before a session starts.
func NewMaze(block Block) *Maze {
	m := &Maze{
		leftGate:  core.C(0, block.LeftGateRow),
		rightGate: core.C(Cols-1, block.RightGateRow),
	}

	// Column-major order keeps sampling reproducible for a given seed.
	for c := PlayableColMin; c <= PlayableColMax; c++ {
		for r := PlayableRowMin; r <= PlayableRowMax; r++ {
			cell := core.C(c, r)
			if mazeWalls[cell] {
				continue
			}
			m.playable = append(m.playable, cell)
			if IsHot(cell) {
				m.hot = append(m.hot, cell)
			} else {
				m.cold = append(m.cold, cell)
			}
		}
	}
	return m
}

// InBounds reports whether the cell lies inside the full grid.
func InBounds(c core.Cell) bool {
	return c.Col >= 0 && c.Col < Cols && c.Row >= 0 && c.Row < Rows
}

// IsHot reports whether the cell lies in a hot zone. Hot-zone membership is a
// purely geometric rule and does not depend on walls or the block.
func IsHot(c core.Cell) bool {
	for _, r := range topStripeRows {
		if c.Row == r {
			return true
		}
	}
	for _, r := range bottomStripeRows {
		if c.Row == r {
			return true
		}
	}
	return c.Chebyshev(hotCenter) <= hotCenterRadius
}

// IsWall reports whether the cell blocks movement. Out-of-bounds cells, the
// boundary ring and internal maze walls are walls; the two gate cells are not.
func (m *Maze) IsWall(c core.Cell) bool {
	if !InBounds(c) {
		return true
	}
	if m.IsGate(c) {
		return false
	}
	if c.Col < PlayableColMin || c.Col > PlayableColMax ||
		c.Row < PlayableRowMin || c.Row > PlayableRowMax {
		return true
	}
	return mazeWalls[c]
}

// IsPlayable reports whether the cell is an open cell of the playable area.
// Gates are not playable: they never hold pellets, spawns or hazards.
func (m *Maze) IsPlayable(c core.Cell) bool {
	if c.Col < PlayableColMin || c.Col > PlayableColMax ||
		c.Row < PlayableRowMin || c.Row > PlayableRowMax {
		return false
	}
	return !mazeWalls[c]
}

// IsGate reports whether the cell is one of the block's gate cells.
func (m *Maze) IsGate(c core.Cell) bool {
	return c == m.leftGate || c == m.rightGate
}

// Gates returns the left and right gate cells.
func (m *Maze) Gates() (left, right core.Cell) {
	return m.leftGate, m.rightGate
}

// PlayableCells returns every playable cell in column-major order.
func (m *Maze) PlayableCells() []core.Cell {
	return append([]core.Cell(nil), m.playable...)
}

// HotCells returns every playable hot-zone cell in column-major order.
func (m *Maze) HotCells() []core.Cell {
	return append([]core.Cell(nil), m.hot...)
}

// ColdCells returns every playable cell outside the hot zones in
// column-major order.
func (m *Maze) ColdCells() []core.Cell {
	return append([]core.Cell(nil), m.cold...)
}

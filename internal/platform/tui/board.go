package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/vovakirdan/tui-forage/internal/core"
	"github.com/vovakirdan/tui-forage/internal/forage"
)

// Each grid cell is two terminal columns wide so the board looks square.
const cellWidth = 2

// Board dimensions in terminal cells.
const (
	BoardWidth  = forage.Cols * cellWidth
	BoardHeight = forage.Rows
)

// Glyphs.
const (
	glyphWall   = '█'
	glyphGate   = '▒'
	glyphHigh   = '●'
	glyphLow    = '·'
	glyphPlayer = 'C'
	glyphHazard = 'M'
)

var hazardColors = []core.Color{core.ColorRed, core.ColorMagenta, core.ColorCyan, core.ColorOrange}

// boardOrigin returns the top-left screen position of the grid. The HUD sits
// two rows above it and the status lines below it.
func boardOrigin(s *core.Screen) (int, int) {
	x := max(0, (s.Width()-BoardWidth)/2)
	y := max(2, (s.Height()-BoardHeight)/2)
	return x, y
}

// cellPos converts a grid cell to its screen position.
func cellPos(ox, oy int, c core.Cell) (int, int) {
	return ox + c.Col*cellWidth, oy + c.Row
}

// DrawBoard renders a session snapshot: HUD, maze, pellets, entities and the
// mode-dependent status lines.
func DrawBoard(s *core.Screen, snap forage.Snapshot, now time.Time) {
	s.Clear()
	ox, oy := boardOrigin(s)

	drawHUD(s, snap, oy-2)

	maze := forage.NewMaze(forage.Block{
		LeftGateRow:  snap.LeftGate.Row,
		RightGateRow: snap.RightGate.Row,
	})
	for row := 0; row < forage.Rows; row++ {
		for col := 0; col < forage.Cols; col++ {
			c := core.C(col, row)
			x, y := cellPos(ox, oy, c)
			switch {
			case maze.IsGate(c):
				s.DrawHLine(x, y, cellWidth, glyphGate, core.ColorGreen)
			case maze.IsWall(c):
				s.DrawHLine(x, y, cellWidth, glyphWall, core.ColorBlue)
			}
		}
	}

	for _, c := range snap.Pellets.Cells() {
		tier, _ := snap.Pellets.At(c)
		x, y := cellPos(ox, oy, c)
		if tier == forage.TierHigh {
			s.SetColored(x, y, glyphHigh, core.ColorBrightYellow)
		} else {
			s.SetColored(x, y, glyphLow, core.ColorWhite)
		}
	}

	for _, h := range snap.Hazards {
		x, y := cellPos(ox, oy, h.Cell)
		s.SetColored(x, y, glyphHazard, hazardColors[h.ID%len(hazardColors)])
	}

	drawPlayer(s, snap, ox, oy, now)
	drawStatus(s, snap, oy+BoardHeight+1)

	if snap.Mode == forage.ModeLevelTransition {
		drawPanel(s, ox, oy, core.ColorGreen, levelEndText(snap), "Press ENTER to continue")
	}
}

// drawPanel draws a boxed message centered over the board.
func drawPanel(s *core.Screen, ox, oy int, c core.Color, lines ...string) {
	w := 0
	for _, l := range lines {
		w = max(w, len([]rune(l)))
	}
	w = min(w+4, s.Width())
	h := len(lines) + 2

	bx, by := ox+BoardWidth/2, oy+BoardHeight/2
	r := core.NewRect(max(0, bx-w/2), max(0, by-h/2), w, h)
	s.FillRect(r, ' ')
	s.DrawBox(r, c)

	cx, _ := r.Center()
	for i, l := range lines {
		s.DrawTextColored(cx-len([]rune(l))/2, r.Y+1+i, l, c)
	}
}

func drawPlayer(s *core.Screen, snap forage.Snapshot, ox, oy int, now time.Time) {
	color := core.ColorYellow
	switch {
	case snap.Mode == forage.ModeDead:
		color = core.ColorRed
	case snap.Player.Frozen:
		color = core.ColorBrightCyan
	case snap.Player.Invincible:
		// Blink while respawn protection is active.
		if now.UnixMilli()/150%2 == 0 {
			color = core.ColorGray
		}
	}
	x, y := cellPos(ox, oy, snap.Player.Cell)
	s.SetColored(x, y, glyphPlayer, color)
}

func drawHUD(s *core.Screen, snap forage.Snapshot, y int) {
	level := fmt.Sprintf("Level %d/%d", snap.LevelIndex+1, snap.LevelCount)
	if snap.Practice {
		level = "Practice"
	}
	hud := fmt.Sprintf("%s   Score %d   Total %d   Lives %s   Time %s",
		level,
		snap.LevelScore,
		snap.TotalScore,
		livesText(snap.Lives),
		formatClock(snap.Remaining),
	)
	timeColor := core.ColorWhite
	if snap.Remaining < 10*time.Second {
		timeColor = core.ColorRed
	}
	s.DrawTextCentered(y, hud, timeColor)
}

func drawStatus(s *core.Screen, snap forage.Snapshot, y int) {
	switch snap.Mode {
	case forage.ModeFrozen:
		f := snap.Freeze
		line := "FROZEN  press SPACE to continue"
		if f.Phase != forage.FreezeReleasable {
			line = fmt.Sprintf("FROZEN  wait %.1fs", f.Remaining.Seconds())
		}
		s.DrawTextCentered(y, line, core.ColorBrightCyan)
		if f.Penalty > 0 {
			s.DrawTextCentered(y+1, fmt.Sprintf("too early: +%ds", int(f.Penalty/time.Second)), core.ColorOrange)
		}
	case forage.ModeDead:
		s.DrawTextCentered(y, fmt.Sprintf("Caught!  %s left", plural(snap.Lives, "life", "lives")), core.ColorRed)
	case forage.ModeLevelTransition:
		// The level result is drawn as a panel over the board.
	default:
		s.DrawTextCentered(y, "Arrows/WASD move   Space release   Q quit", core.ColorGray)
	}
}

func levelEndText(snap forage.Snapshot) string {
	name := fmt.Sprintf("Level %d", snap.LevelIndex+1)
	if snap.Practice {
		name = "Practice"
	}
	why := "time is up"
	if snap.LastLevelReason == forage.ReasonAllPellets {
		why = "all pellets collected"
	}
	return fmt.Sprintf("%s complete (%s)  score %d", name, why, snap.LevelScore)
}

func livesText(n int) string {
	if n <= 0 {
		return "-"
	}
	return strings.Repeat("♥", n)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}

// formatClock renders a duration as m:ss, rounding up so 0:00 only shows
// once time is actually out.
func formatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int((d + time.Second - 1) / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

package forage

import (
	"cmp"
	"slices"

	"github.com/vovakirdan/tui-forage/internal/core"
)

// Tier is the value tier of a pellet.
type Tier int

const (
	TierLow Tier = iota
	TierHigh
)

// Pellet values and cold-zone density.
const (
	PointsHigh = 10
	PointsLow  = 1

	ColdPelletFraction = 0.35
)

// Points returns the score increment for collecting a pellet of this tier.
func (t Tier) Points() int {
	if t == TierHigh {
		return PointsHigh
	}
	return PointsLow
}

func (t Tier) String() string {
	if t == TierHigh {
		return "high"
	}
	return "low"
}

// PelletField is the mutable set of reward items of one level, keyed by cell.
type PelletField struct {
	pellets map[core.Cell]Tier
}

// GeneratePellets places pellets for a new level. Every hot-zone playable
// cell gets a high-tier pellet; max(1, floor(len(cold)*0.35)) cold cells are
// sampled without replacement and get a low-tier pellet.
func GeneratePellets(m *Maze, rng Source) PelletField {
	f := PelletField{pellets: make(map[core.Cell]Tier)}

	for _, c := range m.HotCells() {
		f.pellets[c] = TierHigh
	}

	cold := m.ColdCells()
	if len(cold) == 0 {
		return f
	}
	n := max(1, int(float64(len(cold))*ColdPelletFraction))
	for _, c := range sampleCells(cold, n, rng) {
		f.pellets[c] = TierLow
	}
	return f
}

// sampleCells picks n distinct cells with a partial Fisher-Yates shuffle.
// The input slice is reordered in place.
func sampleCells(cells []core.Cell, n int, rng Source) []core.Cell {
	n = min(n, len(cells))
	for i := 0; i < n; i++ {
		j := i + rng.Intn(len(cells)-i)
		cells[i], cells[j] = cells[j], cells[i]
	}
	return cells[:n]
}

// Len returns the number of pellets remaining.
func (f PelletField) Len() int {
	return len(f.pellets)
}

// At returns the tier of the pellet at c, if any.
func (f PelletField) At(c core.Cell) (Tier, bool) {
	t, ok := f.pellets[c]
	return t, ok
}

// Collect removes the pellet at c and returns its tier.
// A cell can be collected at most once.
func (f PelletField) Collect(c core.Cell) (Tier, bool) {
	t, ok := f.pellets[c]
	if ok {
		delete(f.pellets, c)
	}
	return t, ok
}

// Cells returns the occupied cells sorted by row, then column.
func (f PelletField) Cells() []core.Cell {
	cells := make([]core.Cell, 0, len(f.pellets))
	for c := range f.pellets {
		cells = append(cells, c)
	}
	slices.SortFunc(cells, func(a, b core.Cell) int {
		if c := cmp.Compare(a.Row, b.Row); c != 0 {
			return c
		}
		return cmp.Compare(a.Col, b.Col)
	})
	return cells
}

// Clone returns an independent copy of the field.
func (f PelletField) Clone() PelletField {
	out := PelletField{pellets: make(map[core.Cell]Tier, len(f.pellets))}
	for c, t := range f.pellets {
		out.pellets[c] = t
	}
	return out
}

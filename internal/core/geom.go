// Package core provides fundamental types and utilities for the foraging task.
// It contains no external dependencies (especially no Bubble Tea) to keep task
// logic pure and testable.
package core

import "fmt"

// Cell is an integer grid coordinate.
// Col increases to the right, Row increases downward (screen coordinates).
type Cell struct {
	Col int
	Row int
}

// C is a convenience constructor for Cell.
func C(col, row int) Cell {
	return Cell{Col: col, Row: row}
}

// String returns a string representation of the cell.
func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.Col, c.Row)
}

// Add returns a new Cell offset by (dc, dr).
func (c Cell) Add(dc, dr int) Cell {
	return Cell{Col: c.Col + dc, Row: c.Row + dr}
}

// Chebyshev returns the Chebyshev (king-move) distance to another cell.
func (c Cell) Chebyshev(other Cell) int {
	return max(abs(c.Col-other.Col), abs(c.Row-other.Row))
}

// Rect represents an axis-aligned rectangle on the screen.
type Rect struct {
	X, Y int // Top-left corner position
	W, H int // Width and height
}

// NewRect creates a new rectangle with the given position and dimensions.
func NewRect(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Right returns the x-coordinate of the right edge.
func (r Rect) Right() int {
	return r.X + r.W
}

// Bottom returns the y-coordinate of the bottom edge.
func (r Rect) Bottom() int {
	return r.Y + r.H
}

// Center returns the center point of the rectangle.
func (r Rect) Center() (int, int) {
	return r.X + r.W/2, r.Y + r.H/2
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

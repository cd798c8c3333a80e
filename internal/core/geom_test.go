package core

import "testing"

func TestCellAdd(t *testing.T) {
	c := C(3, 4).Add(-1, 2)
	if c != C(2, 6) {
		t.Errorf("Add() = %v, expected (2,6)", c)
	}
	if c.String() != "(2,6)" {
		t.Errorf("String() = %q, expected %q", c.String(), "(2,6)")
	}
}

func TestCellChebyshev(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Cell
		expected int
	}{
		{"same cell", C(10, 7), C(10, 7), 0},
		{"horizontal", C(10, 7), C(12, 7), 2},
		{"vertical", C(10, 7), C(10, 4), 3},
		{"diagonal uses max", C(10, 7), C(8, 8), 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.Chebyshev(tc.b); got != tc.expected {
				t.Errorf("Chebyshev() = %d, expected %d", got, tc.expected)
			}
			if got := tc.b.Chebyshev(tc.a); got != tc.expected {
				t.Errorf("Chebyshev() (reversed) = %d, expected %d", got, tc.expected)
			}
		})
	}
}

func TestRectEdgesAndCenter(t *testing.T) {
	r := NewRect(10, 10, 20, 15)

	if r.Right() != 30 || r.Bottom() != 25 {
		t.Errorf("Right(), Bottom() = %d, %d, expected 30, 25", r.Right(), r.Bottom())
	}
	cx, cy := r.Center()
	if cx != 20 || cy != 17 {
		t.Errorf("Center() = (%d, %d), expected (20, 17)", cx, cy)
	}
}

func TestInputFrameMove(t *testing.T) {
	f := NewInputFrame()
	if f.Move() != ActionNone {
		t.Errorf("Move() on empty frame = %v, expected None", f.Move())
	}

	f.Set(ActionRelease)
	f.Set(ActionLeft)
	f.Held = true
	if f.Move() != ActionLeft {
		t.Errorf("Move() = %v, expected Left", f.Move())
	}
	if !f.Has(ActionRelease) {
		t.Error("Has(Release) should be true")
	}

	f.Clear()
	if f.Has(ActionLeft) || f.Held {
		t.Error("Clear() should reset actions and held flag")
	}
}

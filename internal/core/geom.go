// Package core provides the small geometry and screen primitives shared by
// the simulation and the terminal renderer. It has no external dependencies
// (especially no Bubble Tea) so simulation code stays pure and testable.
package core

import "math"

// Rect is an axis-aligned box in integer coordinates.
type Rect struct {
	X, Y int // Top-left corner position
	W, H int // Width and height
}

// NewRect creates a new rectangle with the given position and dimensions.
func NewRect(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Right returns the x-coordinate of the right edge (exclusive).
func (r Rect) Right() int {
	return r.X + r.W
}

// Bottom returns the y-coordinate of the bottom edge (exclusive).
func (r Rect) Bottom() int {
	return r.Y + r.H
}

// Empty reports whether the rectangle covers no area.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Translate returns the rectangle moved by (dx, dy).
func (r Rect) Translate(dx, dy int) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, W: r.W, H: r.H}
}

// Intersects returns true if this rectangle overlaps with another.
// Touching edges do not count as an overlap.
func (r Rect) Intersects(other Rect) bool {
	if r.Empty() || other.Empty() {
		return false
	}
	if r.X >= other.Right() || other.X >= r.Right() {
		return false
	}
	if r.Y >= other.Bottom() || other.Y >= r.Bottom() {
		return false
	}
	return true
}

// Intersect returns the overlapping area of two rectangles.
// The result is empty when they do not intersect.
func (r Rect) Intersect(other Rect) Rect {
	x0 := max(r.X, other.X)
	y0 := max(r.Y, other.Y)
	x1 := min(r.Right(), other.Right())
	y1 := min(r.Bottom(), other.Bottom())
	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Contains returns true if the point (x, y) is inside this rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Clamp restricts a value to be within [lo, hi].
func Clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

// Viewport projects world coordinates (pixels of the reference window)
// onto a character grid.
type Viewport struct {
	WorldW, WorldH float64
	ScreenW        int
	ScreenH        int
}

// X converts a world x-coordinate to a screen column.
func (v Viewport) X(wx float64) int {
	if v.WorldW <= 0 {
		return 0
	}
	return int(math.Floor(wx * float64(v.ScreenW) / v.WorldW))
}

// Y converts a world y-coordinate to a screen row.
func (v Viewport) Y(wy float64) int {
	if v.WorldH <= 0 {
		return 0
	}
	return int(math.Floor(wy * float64(v.ScreenH) / v.WorldH))
}

// Rect converts a world-space box into the covering screen cells.
// Every non-empty world box maps to at least one cell.
func (v Viewport) Rect(wx, wy, ww, wh float64) Rect {
	x0, y0 := v.X(wx), v.Y(wy)
	x1, y1 := v.X(wx+ww), v.Y(wy+wh)
	if x1 <= x0 {
		x1 = x0 + 1
	}
	if y1 <= y0 {
		y1 = y0 + 1
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

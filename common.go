// Package nodle implements the dataflow execution kernel and GPU-instanced
// canvas renderer for a node-based visual programming editor: a directed
// graph store with typed ports, a dependency-ordered execution engine, a
// plugin-extensible node registry, and the interaction/view/panel state
// that drives an instanced GPU renderer.
package nodle

import "math"

// Vec2 is a 2D vector used for positions, offsets, and pan/zoom deltas.
type Vec2 struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle. Origin is top-left, Y increases downward,
// matching the screen-space convention used throughout the renderer.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether (x, y) lies inside the rectangle, inclusive of edges.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width && y >= r.Y && y <= r.Y+r.Height
}

// Intersects reports whether r and other overlap. Adjacent rectangles sharing
// only an edge are considered intersecting.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.Width &&
		r.X+r.Width >= other.X &&
		r.Y <= other.Y+other.Height &&
		r.Y+r.Height >= other.Y
}

// Union returns the smallest rectangle containing both r and other.
func (r Rect) Union(other Rect) Rect {
	minX := math.Min(r.X, other.X)
	minY := math.Min(r.Y, other.Y)
	maxX := math.Max(r.X+r.Width, other.X+other.Width)
	maxY := math.Max(r.Y+r.Height, other.Y+other.Height)
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Color is an RGBA color with components in [0, 1].
type Color struct {
	R, G, B, A float64
}

// Package graphics provides geometry primitives and the drawing surface
// threaded through widget layout and redraw.
package graphics

import "math"

// Point represents a 2D position or vector in pixel coordinates.
type Point struct {
	X float64
	Y float64
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns p translated by other.
func (p Point) Add(other Point) Point {
	return Point{X: p.X + other.X, Y: p.Y + other.Y}
}

// Sub returns the vector from other to p.
func (p Point) Sub(other Point) Point {
	return Point{X: p.X - other.X, Y: p.Y - other.Y}
}

// Size represents width and height dimensions in pixels.
type Size struct {
	Width  float64
	Height float64
}

// Rect represents a rectangle using left, top, right, bottom coordinates.
type Rect struct {
	Left   float64
	Top    float64
	Right  float64
	Bottom float64
}

// RectFromLTWH constructs a Rect from left, top, width, height values.
func RectFromLTWH(left, top, width, height float64) Rect {
	return Rect{
		Left:   left,
		Top:    top,
		Right:  left + width,
		Bottom: top + height,
	}
}

// RectFromOriginSize constructs a Rect at origin with the given size.
func RectFromOriginSize(origin Point, size Size) Rect {
	return RectFromLTWH(origin.X, origin.Y, size.Width, size.Height)
}

// Origin returns the top-left corner of the rectangle.
func (r Rect) Origin() Point {
	return Point{X: r.Left, Y: r.Top}
}

// Width returns the width of the rectangle.
func (r Rect) Width() float64 {
	return r.Right - r.Left
}

// Height returns the height of the rectangle.
func (r Rect) Height() float64 {
	return r.Bottom - r.Top
}

// Size returns the size of the rectangle.
func (r Rect) Size() Size {
	return Size{Width: r.Width(), Height: r.Height()}
}

// Center returns the center point of the rectangle.
func (r Rect) Center() Point {
	return Point{
		X: (r.Left + r.Right) * 0.5,
		Y: (r.Top + r.Bottom) * 0.5,
	}
}

// Contains reports whether p lies inside the rectangle. The left and top
// edges are inclusive, the right and bottom edges exclusive, so adjacent
// rectangles never both contain a point on their shared edge.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left && p.X < r.Right && p.Y >= r.Top && p.Y < r.Bottom
}

// IsEmpty returns true if the rectangle has zero or negative area.
func (r Rect) IsEmpty() bool {
	return r.Right <= r.Left || r.Bottom <= r.Top
}

// Translate returns a new rect offset by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	return Rect{
		Left:   r.Left + dx,
		Top:    r.Top + dy,
		Right:  r.Right + dx,
		Bottom: r.Bottom + dy,
	}
}

// Intersect returns the intersection of two rectangles.
// Returns empty rect if they don't overlap.
func (r Rect) Intersect(other Rect) Rect {
	left := math.Max(r.Left, other.Left)
	top := math.Max(r.Top, other.Top)
	right := math.Min(r.Right, other.Right)
	bottom := math.Min(r.Bottom, other.Bottom)
	if left >= right || top >= bottom {
		return Rect{}
	}
	return Rect{Left: left, Top: top, Right: right, Bottom: bottom}
}

// ConstraintLimit bounds one axis of the space offered to a widget during
// layout.
type ConstraintLimit struct {
	// Max is the available extent along the axis.
	Max float64
	// Fill is true when the widget is expected to occupy exactly Max.
	// Otherwise the widget may size itself to fit its content, up to Max.
	Fill bool
}

// Known returns a limit that must be filled exactly.
func Known(extent float64) ConstraintLimit {
	return ConstraintLimit{Max: extent, Fill: true}
}

// SizeToFit returns a limit the widget may shrink within.
func SizeToFit(extent float64) ConstraintLimit {
	return ConstraintLimit{Max: extent}
}

// Fit resolves a measured extent against the limit.
func (c ConstraintLimit) Fit(measured float64) float64 {
	if c.Fill {
		return c.Max
	}
	return math.Min(measured, c.Max)
}

// Constraints is the available space passed to Widget.Layout.
type Constraints struct {
	Width  ConstraintLimit
	Height ConstraintLimit
}

// Tight returns constraints that must be filled exactly by size.
func Tight(size Size) Constraints {
	return Constraints{Width: Known(size.Width), Height: Known(size.Height)}
}

// Loose returns constraints the widget may shrink within.
func Loose(size Size) Constraints {
	return Constraints{Width: SizeToFit(size.Width), Height: SizeToFit(size.Height)}
}

// Constrain resolves a measured size against both axes.
func (c Constraints) Constrain(measured Size) Size {
	return Size{Width: c.Width.Fit(measured.Width), Height: c.Height.Fit(measured.Height)}
}

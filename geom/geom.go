// Package geom provides the screen-space 2D primitives and tests used by
// hit-testing, editing validation and fill triangulation.
package geom

import "math"

// Point is a 2D point in screen space.
type Point struct {
	X, Y float64
}

// Add returns p + q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p - q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Rect is an axis-aligned rectangle in screen space.
type Rect struct {
	Min, Max Point
}

// NewRect returns a rectangle from an origin and a size.
func NewRect(x, y, w, h float64) Rect {
	return Rect{Min: Point{x, y}, Max: Point{x + w, y + h}}
}

// Width returns the horizontal extent of the rectangle.
func (r Rect) Width() float64 { return r.Max.X - r.Min.X }

// Height returns the vertical extent of the rectangle.
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Point {
	return Point{(r.Min.X + r.Max.X) / 2, (r.Min.Y + r.Max.Y) / 2}
}

// Contains reports whether p lies inside the rectangle.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// Expand grows the rectangle by d on every side.
func (r Rect) Expand(d float64) Rect {
	return Rect{
		Min: Point{r.Min.X - d, r.Min.Y - d},
		Max: Point{r.Max.X + d, r.Max.Y + d},
	}
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b Point) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// DistSq returns the squared distance between two points.
func DistSq(a, b Point) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	return dx*dx + dy*dy
}

// Lerp interpolates linearly between a and b by t in [0,1].
func Lerp(a, b Point, t float64) Point {
	return Point{a.X + (b.X-a.X)*t, a.Y + (b.Y-a.Y)*t}
}

// ProjectionFactor returns the normalized position t in [0,1] of the
// projection of p onto the segment ab. A zero-length segment yields 0.
func ProjectionFactor(p, a, b Point) float64 {
	ab := b.Sub(a)
	ap := p.Sub(a)
	l2 := ab.X*ab.X + ab.Y*ab.Y
	if l2 == 0 {
		return 0
	}
	t := (ap.X*ab.X + ap.Y*ab.Y) / l2
	return math.Max(0, math.Min(1, t))
}

// DistSqToSegment returns the squared distance from p to the segment ab.
func DistSqToSegment(p, a, b Point) float64 {
	t := ProjectionFactor(p, a, b)
	return DistSq(p, Lerp(a, b, t))
}

// PointInPolygon tests whether a point is inside a polygon using the ray
// casting algorithm.
func PointInPolygon(p Point, polygon []Point) bool {
	inside := false
	j := len(polygon) - 1
	for i := 0; i < len(polygon); i++ {
		xi, yi := polygon[i].X, polygon[i].Y
		xj, yj := polygon[j].X, polygon[j].Y
		if ((yi > p.Y) != (yj > p.Y)) &&
			(p.X < (xj-xi)*(p.Y-yi)/(yj-yi)+xi) {
			inside = !inside
		}
		j = i
	}
	return inside
}

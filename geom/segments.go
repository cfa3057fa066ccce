package geom

import "math"

// cross returns the z-component of (b-a) x (p-a). Its sign tells which side
// of the directed line ab the point p lies on.
func cross(a, b, p Point) float64 {
	return (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
}

// SegmentsCross reports whether the open segments p1p2 and p3p4 cross in
// general position. Collinear and endpoint-touching configurations are
// treated as non-crossing; the editing code relies on that leniency, so do
// not tighten it here.
func SegmentsCross(p1, p2, p3, p4 Point) bool {
	d1 := cross(p3, p4, p1)
	d2 := cross(p3, p4, p2)
	d3 := cross(p1, p2, p3)
	d4 := cross(p1, p2, p4)

	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

// SegmentCircleCrossings returns the entry and exit factors t1 <= t2 in
// [0,1] at which the segment ab crosses the circle at center with the given
// radius. ok is false when the segment stays outside the circle entirely.
// A segment fully inside the circle reports t1 = 0, t2 = 1.
func SegmentCircleCrossings(a, b, center Point, radius float64) (t1, t2 float64, ok bool) {
	if DistSqToSegment(center, a, b) >= radius*radius {
		return 0, 0, false
	}

	length := Distance(a, b)
	if length == 0 {
		return 0, 1, true
	}

	// Foot of the perpendicular from the circle center onto the segment's
	// carrier line, as an (unclamped) factor along ab.
	ab := b.Sub(a)
	foot := ((center.X-a.X)*ab.X + (center.Y-a.Y)*ab.Y) / (length * length)

	perp := math.Abs(cross(a, b, center)) / length
	half := math.Sqrt(math.Max(0, radius*radius-perp*perp)) / length

	t1 = math.Max(0, foot-half)
	t2 = math.Min(1, foot+half)
	return t1, t2, true
}

package geom

import "errors"

// ErrDegeneratePolygon is returned when a polygon cannot be triangulated.
var ErrDegeneratePolygon = errors.New("geom: polygon is degenerate")

// Triangulate builds a triangle fill mesh for a simple polygon using ear
// clipping. The returned indices reference the input slice in groups of
// three. Polygons with fewer than three vertices, or ones where no ear can
// be clipped (self-intersecting or collapsed input), yield
// ErrDegeneratePolygon.
func Triangulate(points []Point) ([]uint16, error) {
	n := len(points)
	if n < 3 {
		return nil, ErrDegeneratePolygon
	}
	if n == 3 {
		return []uint16{0, 1, 2}, nil
	}

	// Remaining vertex indices, clipped down to a triangle.
	remaining := make([]int, n)
	for i := range remaining {
		remaining[i] = i
	}

	ccw := signedArea(points) > 0
	indices := make([]uint16, 0, (n-2)*3)

	for len(remaining) > 3 {
		clipped := false
		for i := 0; i < len(remaining); i++ {
			prev := remaining[(i+len(remaining)-1)%len(remaining)]
			curr := remaining[i]
			next := remaining[(i+1)%len(remaining)]

			if !isEar(points, remaining, prev, curr, next, ccw) {
				continue
			}

			indices = append(indices, uint16(prev), uint16(curr), uint16(next))
			remaining = append(remaining[:i], remaining[i+1:]...)
			clipped = true
			break
		}
		if !clipped {
			return nil, ErrDegeneratePolygon
		}
	}

	indices = append(indices,
		uint16(remaining[0]), uint16(remaining[1]), uint16(remaining[2]))
	return indices, nil
}

func signedArea(points []Point) float64 {
	area := 0.0
	j := len(points) - 1
	for i := 0; i < len(points); i++ {
		area += points[j].X*points[i].Y - points[i].X*points[j].Y
		j = i
	}
	return area / 2
}

func isEar(points []Point, remaining []int, prev, curr, next int, ccw bool) bool {
	a, b, c := points[prev], points[curr], points[next]

	// The corner must be convex with respect to the winding order.
	turn := cross(a, b, c)
	if ccw && turn <= 0 {
		return false
	}
	if !ccw && turn >= 0 {
		return false
	}

	// No other remaining vertex may lie inside the candidate triangle.
	tri := []Point{a, b, c}
	for _, idx := range remaining {
		if idx == prev || idx == curr || idx == next {
			continue
		}
		if PointInPolygon(points[idx], tri) {
			return false
		}
	}
	return true
}

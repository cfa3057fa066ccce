package layers

import (
	"math"
	"testing"

	"mapview/geo"
	"mapview/geom"
	"mapview/projection"
)

func testProjector(t *testing.T, center geo.Pos, zoom uint8) *projection.Projector {
	t.Helper()
	return projection.New(zoom, center, geom.NewRect(0, 0, 800, 600))
}

func TestHitTestFindsNearestNode(t *testing.T) {
	center := geo.Pos{Lon: 24.9, Lat: 60.2}
	proj := testProjector(t, center, 12)

	l := NewAreaLayer()
	poly := Polygon{Points: []geo.Pos{
		proj.Unproject(geom.Point{X: 300, Y: 200}),
		proj.Unproject(geom.Point{X: 500, Y: 200}),
		proj.Unproject(geom.Point{X: 400, Y: 400}),
	}}
	l.AddArea(Area{Shape: poly, Stroke: Stroke{Width: 2, Color: colorRed}})

	tests := []struct {
		name     string
		at       geom.Point
		wantNode int
		wantHit  bool
	}{
		{"on first node", geom.Point{X: 300, Y: 200}, 0, true},
		{"within tolerance", geom.Point{X: 510, Y: 208}, 1, true},
		{"too far", geom.Point{X: 400, Y: 300}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, ok := l.hitTest(tt.at, proj)
			if ok != tt.wantHit {
				t.Fatalf("hitTest(%v) ok = %v, want %v", tt.at, ok, tt.wantHit)
			}
			if ok && target.node != tt.wantNode {
				t.Errorf("hitTest(%v) node = %d, want %d", tt.at, target.node, tt.wantNode)
			}
		})
	}
}

func TestHitTestPrefersTopmostArea(t *testing.T) {
	center := geo.Pos{Lon: 24.9, Lat: 60.2}
	proj := testProjector(t, center, 12)

	l := NewAreaLayer()
	node := proj.Unproject(geom.Point{X: 400, Y: 300})
	for i := 0; i < 2; i++ {
		l.AddArea(Area{Shape: Polygon{Points: []geo.Pos{node}}})
	}

	target, ok := l.hitTest(geom.Point{X: 400, Y: 300}, proj)
	if !ok {
		t.Fatal("expected a hit on the stacked node")
	}
	if target.area != 1 {
		t.Errorf("hit area %d, want the last-drawn area 1", target.area)
	}
}

func TestMoveWouldSelfIntersect(t *testing.T) {
	// Convex quad in screen space.
	quad := []geom.Point{
		{X: 100, Y: 100},
		{X: 300, Y: 100},
		{X: 300, Y: 300},
		{X: 100, Y: 300},
	}

	tests := []struct {
		name      string
		idx       int
		candidate geom.Point
		want      bool
	}{
		{"small valid move", 0, geom.Point{X: 120, Y: 90}, false},
		{"move across right edge", 0, geom.Point{X: 400, Y: 200}, true},
		{"move across bottom edge", 1, geom.Point{X: 200, Y: 400}, true},
		{"move inward stays simple", 2, geom.Point{X: 250, Y: 250}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := moveWouldSelfIntersect(quad, tt.idx, tt.candidate); got != tt.want {
				t.Errorf("moveWouldSelfIntersect(idx=%d, %v) = %v, want %v", tt.idx, tt.candidate, got, tt.want)
			}
		})
	}
}

func TestMoveTriangleNeverIntersects(t *testing.T) {
	tri := []geom.Point{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 50, Y: 100}}
	if moveWouldSelfIntersect(tri, 0, geom.Point{X: 500, Y: 500}) {
		t.Error("a triangle cannot self-intersect by moving one vertex")
	}
}

func TestDragNodeRejectsInvalidKeepsLastValid(t *testing.T) {
	center := geo.Pos{Lon: 24.9, Lat: 60.2}
	proj := testProjector(t, center, 12)

	l := NewAreaLayer()
	corners := []geom.Point{
		{X: 300, Y: 200},
		{X: 500, Y: 200},
		{X: 500, Y: 400},
		{X: 300, Y: 400},
	}
	points := make([]geo.Pos, len(corners))
	for i, c := range corners {
		points[i] = proj.Unproject(c)
	}
	l.AddArea(Area{Shape: Polygon{Points: points}})

	l.beginDrag(hitTarget{kind: dragNode, area: 0, node: 0})

	// A move that would cross the opposite edge is ignored.
	l.applyDrag(geom.Point{X: 600, Y: 300}, proj)
	got := proj.Project(l.areas[0].Shape.(Polygon).Points[0])
	if geom.Distance(got, corners[0]) > 0.5 {
		t.Fatalf("invalid move should keep the node at %v, got %v", corners[0], got)
	}

	// A valid move is applied.
	l.applyDrag(geom.Point{X: 280, Y: 180}, proj)
	got = proj.Project(l.areas[0].Shape.(Polygon).Points[0])
	if geom.Distance(got, geom.Point{X: 280, Y: 180}) > 0.5 {
		t.Fatalf("valid move should land at (280,180), got %v", got)
	}
	l.commitDrag()
}

func TestCancelDragRestoresShape(t *testing.T) {
	center := geo.Pos{Lon: 24.9, Lat: 60.2}
	proj := testProjector(t, center, 12)

	l := NewAreaLayer()
	points := []geo.Pos{
		proj.Unproject(geom.Point{X: 300, Y: 200}),
		proj.Unproject(geom.Point{X: 500, Y: 200}),
		proj.Unproject(geom.Point{X: 400, Y: 400}),
	}
	l.AddArea(Area{Shape: Polygon{Points: append([]geo.Pos{}, points...)}})

	l.beginDrag(hitTarget{kind: dragNode, area: 0, node: 0})
	l.applyDrag(geom.Point{X: 350, Y: 250}, proj)
	l.CancelDrag()

	got := l.areas[0].Shape.(Polygon).Points[0]
	if got != points[0] {
		t.Errorf("cancel should restore %v, got %v", points[0], got)
	}
}

func TestInsertNodeOnEdge(t *testing.T) {
	center := geo.Pos{Lon: 24.9, Lat: 60.2}
	proj := testProjector(t, center, 12)

	l := NewAreaLayer()
	points := []geo.Pos{
		proj.Unproject(geom.Point{X: 300, Y: 200}),
		proj.Unproject(geom.Point{X: 500, Y: 200}),
		proj.Unproject(geom.Point{X: 400, Y: 400}),
	}
	l.AddArea(Area{Shape: Polygon{Points: points}})

	// Double-click the midpoint of the first edge, slightly off the line.
	l.insertNodeAt(geom.Point{X: 400, Y: 203}, proj)

	got := l.areas[0].Shape.(Polygon).Points
	if len(got) != 4 {
		t.Fatalf("expected 4 nodes after insertion, got %d", len(got))
	}
	inserted := proj.Project(got[1])
	if geom.Distance(inserted, geom.Point{X: 400, Y: 200}) > 0.5 {
		t.Errorf("inserted node should project onto the edge near (400,200), got %v", inserted)
	}
}

func TestInsertNodeIgnoresClicksOnNodes(t *testing.T) {
	center := geo.Pos{Lon: 24.9, Lat: 60.2}
	proj := testProjector(t, center, 12)

	l := NewAreaLayer()
	points := []geo.Pos{
		proj.Unproject(geom.Point{X: 300, Y: 200}),
		proj.Unproject(geom.Point{X: 500, Y: 200}),
		proj.Unproject(geom.Point{X: 400, Y: 400}),
	}
	l.AddArea(Area{Shape: Polygon{Points: points}})

	l.insertNodeAt(geom.Point{X: 300, Y: 200}, proj)
	if got := len(l.areas[0].Shape.(Polygon).Points); got != 3 {
		t.Errorf("click on a node must not insert, got %d nodes", got)
	}
}

func TestCircleRadiusPixelMeterRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		center geo.Pos
		zoom   uint8
	}{
		{"helsinki", geo.Pos{Lon: 24.9, Lat: 60.2}, 13},
		{"equator", geo.Pos{Lon: 0, Lat: 0}, 13},
		{"mid latitude", geo.Pos{Lon: -73.9, Lat: 40.7}, 14},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proj := testProjector(t, tt.center, tt.zoom)
			const radiusM = 1000.0

			rPx := circleRadiusPx(proj, tt.center, radiusM)
			if rPx <= 0 {
				t.Fatalf("radius in pixels = %v, want > 0", rPx)
			}

			centerPx := proj.Project(tt.center)
			aux := proj.Unproject(geom.Point{X: centerPx.X + rPx, Y: centerPx.Y})
			back := equirectMeters(tt.center, aux)
			if math.Abs(back-radiusM)/radiusM > 0.01 {
				t.Errorf("round trip radius = %vm, want within 1%% of %vm", back, radiusM)
			}
		})
	}
}

func TestCircleMovePreservesRadius(t *testing.T) {
	center := geo.Pos{Lon: 24.9, Lat: 60.2}
	proj := testProjector(t, center, 12)

	l := NewAreaLayer()
	l.AddArea(Area{Shape: Circle{Center: center, Radius: 500}})

	l.beginDrag(hitTarget{kind: dragCircleCenter, area: 0})
	l.applyDrag(geom.Point{X: 600, Y: 150}, proj)
	l.commitDrag()

	circle := l.areas[0].Shape.(Circle)
	if circle.Radius != 500 {
		t.Errorf("moving a circle changed its radius to %v, want 500", circle.Radius)
	}
	if circle.Center == center {
		t.Error("moving a circle should relocate its center")
	}
}

func TestCircleResizeTracksPointer(t *testing.T) {
	center := geo.Pos{Lon: 24.9, Lat: 60.2}
	proj := testProjector(t, center, 13)

	l := NewAreaLayer()
	l.AddArea(Area{Shape: Circle{Center: center, Radius: 500}})

	// Drag the ring out to twice its pixel radius; the radius in meters
	// should roughly double.
	oldPx := circleRadiusPx(proj, center, 500)
	centerPx := proj.Project(center)

	l.beginDrag(hitTarget{kind: dragCircleRadius, area: 0})
	l.applyDrag(geom.Point{X: centerPx.X + 2*oldPx, Y: centerPx.Y}, proj)
	l.commitDrag()

	got := l.areas[0].Shape.(Circle).Radius
	if math.Abs(got-1000)/1000 > 0.02 {
		t.Errorf("resized radius = %vm, want about 1000m", got)
	}
}

func TestCircleFlatteningPointCount(t *testing.T) {
	center := geo.Pos{Lon: 24.9, Lat: 60.2}
	proj := testProjector(t, center, 13)
	l := NewAreaLayer()

	if got := len(l.shapeScreenPoints(proj, Circle{Center: center, Radius: 300})); got != defaultCirclePoints {
		t.Errorf("default flattening produced %d points, want %d", got, defaultCirclePoints)
	}
	if got := len(l.shapeScreenPoints(proj, Circle{Center: center, Radius: 300, PointCount: 16})); got != 16 {
		t.Errorf("flattening with PointCount 16 produced %d points, want 16", got)
	}
}

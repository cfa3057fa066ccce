package layers

import (
	"image/color"
	"log/slog"
	"math"

	"mapview/geo"
	"mapview/geom"
	"mapview/projection"
	"mapview/render"
)

// Shape is the geometry of an area: a polygon or a circle.
type Shape interface {
	isShape()
}

// Polygon is an ordered list of geographical nodes. With fewer than three
// nodes it renders as an open line or a lone point and is never filled.
type Polygon struct {
	Points []geo.Pos
}

func (Polygon) isShape() {}

// Circle is a center with a radius in meters. PointCount overrides the
// number of points the circle is flattened into for rendering and
// hit-testing; zero means the default of 64.
type Circle struct {
	Center     geo.Pos
	Radius     float64
	PointCount int
}

func (Circle) isShape() {}

// defaultCirclePoints is the flattening resolution used when a circle does
// not carry its own.
const defaultCirclePoints = 64

// Area is a shape with its stroke and fill style.
type Area struct {
	Shape  Shape
	Stroke Stroke
	Fill   color.RGBA
}

// AreaMode is the interaction mode of an AreaLayer.
type AreaMode int

const (
	// AreaDisabled renders the layer without any interaction.
	AreaDisabled AreaMode = iota

	// AreaModify lets the user drag nodes, insert nodes on edges, and move
	// or resize circles.
	AreaModify
)

// dragKind tells which handle of an area a drag session holds.
type dragKind int

const (
	dragNode dragKind = iota
	dragCircleCenter
	dragCircleRadius
)

// dragSession is the single in-flight edit of an AreaLayer. It owns a copy
// of the original shape so Cancel can restore it; Commit simply drops the
// session since valid positions are applied as the drag progresses.
type dragSession struct {
	kind     dragKind
	area     int
	node     int
	original Shape
}

// AreaLayer places editable polygons and circles on the map.
type AreaLayer struct {
	areas []Area

	// Mode is the current interaction mode.
	Mode AreaMode

	// NodeRadius is the drawn radius of node handles in pixels. The node,
	// edge and ring hit tolerances derive from it.
	NodeRadius float32

	// NodeFill is the fill color of node handles.
	NodeFill color.RGBA

	drag *dragSession
	log  *slog.Logger
}

// NewAreaLayer creates an empty area layer with the default style.
func NewAreaLayer() *AreaLayer {
	return &AreaLayer{
		NodeRadius: 5,
		NodeFill:   colorGreen,
		log:        slog.Default(),
	}
}

// SetLogger replaces the layer's logger.
func (l *AreaLayer) SetLogger(log *slog.Logger) { l.log = log }

// AddArea appends an area to the layer. Later areas draw on top of and
// hit-test in front of earlier ones.
func (l *AreaLayer) AddArea(a Area) {
	l.areas = append(l.areas, a)
}

// Areas returns the layer's areas. The slice is shared; treat it as
// read-only while the layer is interactive.
func (l *AreaLayer) Areas() []Area { return l.areas }

// Clear removes all areas and abandons any drag in progress.
func (l *AreaLayer) Clear() {
	l.areas = nil
	l.drag = nil
}

// HandleInput implements Layer.
func (l *AreaLayer) HandleInput(frame *render.Frame, proj *projection.Projector) bool {
	switch l.Mode {
	case AreaModify:
		return l.handleModifyInput(frame, proj)
	default:
		return false
	}
}

func (l *AreaLayer) handleModifyInput(frame *render.Frame, proj *projection.Projector) bool {
	ptr := &frame.Pointer

	if ptr.DragStarted {
		if target, ok := l.hitTest(ptr.Pos, proj); ok {
			l.beginDrag(target)
		}
	}

	if ptr.Dragging && l.drag != nil {
		l.applyDrag(ptr.Pos, proj)
	}

	if ptr.DragStopped {
		l.commitDrag()
	}

	if ptr.DoubleClicked {
		l.insertNodeAt(ptr.Pos, proj)
	}

	// In modify mode all interactions over the widget belong to this layer,
	// so the map neither pans nor zooms underneath an edit.
	return ptr.Hovered
}

// hitTarget identifies which handle of which area a screen position is over.
type hitTarget struct {
	kind dragKind
	area int
	node int
}

// hitTest finds the topmost handle under the given screen position. Shapes
// are scanned last-drawn-first so visually topmost areas win ties.
func (l *AreaLayer) hitTest(pt geom.Point, proj *projection.Projector) (hitTarget, bool) {
	nodeRange := float64(l.NodeRadius) * 3
	ringRange := float64(l.NodeRadius) * 2

	for i := len(l.areas) - 1; i >= 0; i-- {
		switch shape := l.areas[i].Shape.(type) {
		case Circle:
			centerPx := proj.Project(shape.Center)
			ringPx := circleRadiusPx(proj, shape.Center, shape.Radius)
			d := geom.Distance(pt, centerPx)

			// The resize ring takes priority over the center handle when
			// both are in range.
			if math.Abs(d-ringPx) < ringRange {
				return hitTarget{kind: dragCircleRadius, area: i}, true
			}
			if d < nodeRange {
				return hitTarget{kind: dragCircleCenter, area: i}, true
			}
		case Polygon:
			best := -1
			bestDistSq := nodeRange * nodeRange
			for j, node := range shape.Points {
				if d2 := geom.DistSq(pt, proj.Project(node)); d2 < bestDistSq {
					best = j
					bestDistSq = d2
				}
			}
			if best >= 0 {
				return hitTarget{kind: dragNode, area: i, node: best}, true
			}
		}
	}
	return hitTarget{}, false
}

// findEdgeAt locates a polygon edge under the screen position that is not
// already covered by a node handle. It returns the index of the edge's
// start node.
func (l *AreaLayer) findEdgeAt(pt geom.Point, proj *projection.Projector) (area, edge int, ok bool) {
	if _, onNode := l.hitTest(pt, proj); onNode {
		return 0, 0, false
	}
	edgeRange := float64(l.NodeRadius) * 2

	for i := len(l.areas) - 1; i >= 0; i-- {
		poly, isPoly := l.areas[i].Shape.(Polygon)
		if !isPoly || len(poly.Points) < 2 {
			continue
		}
		screen := projectAll(proj, poly.Points)
		n := len(screen)
		for j := 0; j < n; j++ {
			a, b := screen[j], screen[(j+1)%n]
			if geom.DistSqToSegment(pt, a, b) < edgeRange*edgeRange {
				return i, j, true
			}
		}
	}
	return 0, 0, false
}

func (l *AreaLayer) beginDrag(target hitTarget) {
	l.drag = &dragSession{
		kind:     target.kind,
		area:     target.area,
		node:     target.node,
		original: cloneShape(l.areas[target.area].Shape),
	}
}

// commitDrag ends the drag, keeping the last valid state.
func (l *AreaLayer) commitDrag() {
	l.drag = nil
}

// CancelDrag aborts the drag in progress and restores the shape it started
// from.
func (l *AreaLayer) CancelDrag() {
	if l.drag == nil {
		return
	}
	l.areas[l.drag.area].Shape = l.drag.original
	l.drag = nil
}

// applyDrag advances the drag session for this frame's pointer position.
// Invalid node moves leave the node at its last valid position without
// aborting the gesture.
func (l *AreaLayer) applyDrag(pt geom.Point, proj *projection.Projector) {
	area := &l.areas[l.drag.area]

	switch l.drag.kind {
	case dragNode:
		poly := area.Shape.(Polygon)
		screen := projectAll(proj, poly.Points)
		if moveWouldSelfIntersect(screen, l.drag.node, pt) {
			return
		}
		poly.Points[l.drag.node] = proj.Unproject(pt)

	case dragCircleCenter:
		// Relocating the center keeps the radius in meters, so the circle's
		// real-world size is invariant under the move.
		circle := area.Shape.(Circle)
		circle.Center = proj.Unproject(pt)
		area.Shape = circle

	case dragCircleRadius:
		circle := area.Shape.(Circle)
		centerPx := proj.Project(circle.Center)
		d := geom.Distance(centerPx, pt)
		aux := proj.Unproject(geom.Point{X: centerPx.X + d, Y: centerPx.Y})
		if radius := equirectMeters(circle.Center, aux); radius > 0 {
			circle.Radius = radius
			area.Shape = circle
		}
	}
}

// insertNodeAt adds a polygon node on the double-clicked edge, placed at the
// projection of the click onto the edge and inserted right after the edge's
// start index.
func (l *AreaLayer) insertNodeAt(pt geom.Point, proj *projection.Projector) {
	areaIdx, edge, ok := l.findEdgeAt(pt, proj)
	if !ok {
		return
	}
	poly := l.areas[areaIdx].Shape.(Polygon)
	screen := projectAll(proj, poly.Points)
	a, b := screen[edge], screen[(edge+1)%len(screen)]

	t := geom.ProjectionFactor(pt, a, b)
	newPos := proj.Unproject(geom.Lerp(a, b, t))

	points := append([]geo.Pos{}, poly.Points[:edge+1]...)
	points = append(points, newPos)
	points = append(points, poly.Points[edge+1:]...)
	l.areas[areaIdx].Shape = Polygon{Points: points}
}

// moveWouldSelfIntersect tests whether moving the node at idx to candidate
// would make the polygon self-intersecting: the two edges that change are
// checked against every edge not touching the moved node. Collinear and
// touching configurations pass, matching geom.SegmentsCross.
func moveWouldSelfIntersect(screen []geom.Point, idx int, candidate geom.Point) bool {
	n := len(screen)
	if n < 4 {
		return false
	}
	prev := screen[(idx+n-1)%n]
	next := screen[(idx+1)%n]

	for i := 0; i < n; i++ {
		j := (i + 1) % n
		if i == idx || j == idx {
			continue
		}
		if geom.SegmentsCross(prev, candidate, screen[i], screen[j]) ||
			geom.SegmentsCross(candidate, next, screen[i], screen[j]) {
			return true
		}
	}
	return false
}

// Draw implements Layer.
func (l *AreaLayer) Draw(p render.Painter, proj *projection.Projector) {
	for _, area := range l.areas {
		screen := l.shapeScreenPoints(proj, area.Shape)
		if len(screen) == 0 {
			continue
		}

		if len(screen) >= 3 && area.Fill.A > 0 {
			indices, err := geom.Triangulate(screen)
			if err != nil {
				l.log.Warn("area fill skipped", "error", err, "points", len(screen))
			} else {
				p.FillMesh(screen, indices, area.Fill)
			}
		}

		if len(screen) >= 2 {
			outline := append(append([]geom.Point{}, screen...), screen[0])
			p.Line(outline, area.Stroke.Width, area.Stroke.Color)
		}

		l.drawHandles(p, proj, area, screen)
	}
}

// drawHandles draws the editable node handles for a shape: every vertex of
// a polygon, and the center plus the bearing-0 resize handle of a circle.
func (l *AreaLayer) drawHandles(p render.Painter, proj *projection.Projector, area Area, screen []geom.Point) {
	switch shape := area.Shape.(type) {
	case Polygon:
		for _, pt := range screen {
			p.FillCircle(pt, l.NodeRadius, l.NodeFill)
		}
	case Circle:
		centerPx := proj.Project(shape.Center)
		ringPx := circleRadiusPx(proj, shape.Center, shape.Radius)
		p.FillCircle(centerPx, l.NodeRadius, l.NodeFill)
		p.FillCircle(geom.Point{X: centerPx.X, Y: centerPx.Y - ringPx}, l.NodeRadius, l.NodeFill)
	}
}

// shapeScreenPoints projects a shape to screen space, flattening circles to
// their point count around the screen-projected radius. Flattening in
// screen space keeps circles visually round regardless of the projection's
// distortion at high latitudes.
func (l *AreaLayer) shapeScreenPoints(proj *projection.Projector, s Shape) []geom.Point {
	switch shape := s.(type) {
	case Polygon:
		return projectAll(proj, shape.Points)
	case Circle:
		n := shape.PointCount
		if n <= 0 {
			n = defaultCirclePoints
		}
		centerPx := proj.Project(shape.Center)
		ringPx := circleRadiusPx(proj, shape.Center, shape.Radius)

		points := make([]geom.Point, n)
		for i := 0; i < n; i++ {
			angle := 2 * math.Pi * float64(i) / float64(n)
			points[i] = geom.Point{
				X: centerPx.X + ringPx*math.Sin(angle),
				Y: centerPx.Y - ringPx*math.Cos(angle),
			}
		}
		return points
	}
	return nil
}

// CirclePoints returns the geographical polygon approximation of a circle,
// as used for rendering and hit-testing, by unprojecting the screen-space
// flattening.
func (l *AreaLayer) CirclePoints(proj *projection.Projector, c Circle) []geo.Pos {
	screen := l.shapeScreenPoints(proj, c)
	points := make([]geo.Pos, len(screen))
	for i, pt := range screen {
		points[i] = proj.Unproject(pt)
	}
	return points
}

func projectAll(proj *projection.Projector, points []geo.Pos) []geom.Point {
	screen := make([]geom.Point, len(points))
	for i, pos := range points {
		screen[i] = proj.Project(pos)
	}
	return screen
}

func cloneShape(s Shape) Shape {
	switch shape := s.(type) {
	case Polygon:
		return Polygon{Points: append([]geo.Pos{}, shape.Points...)}
	case Circle:
		return shape
	}
	return s
}

// Meters per degree under the equirectangular approximation. Good enough at
// city and regional scale; not geodesically exact for large radii.
const (
	metersPerDegLat = 110574.0
	metersPerDegLon = 111320.0
)

// circleRadiusPx converts a radius in meters at the given center to screen
// pixels by projecting a point one radius east of the center.
func circleRadiusPx(proj *projection.Projector, center geo.Pos, radiusM float64) float64 {
	dLon := radiusM / (metersPerDegLon * math.Cos(center.Lat*math.Pi/180))
	edge := proj.Project(geo.Pos{Lon: center.Lon + dLon, Lat: center.Lat})
	return geom.Distance(proj.Project(center), edge)
}

// equirectMeters returns the approximate distance in meters between two
// positions, using the latitude of a for the longitude scale.
func equirectMeters(a, b geo.Pos) float64 {
	dLonM := math.Abs(b.Lon-a.Lon) * metersPerDegLon * math.Cos(a.Lat*math.Pi/180)
	dLatM := math.Abs(b.Lat-a.Lat) * metersPerDegLat
	return math.Sqrt(dLonM*dLonM + dLatM*dLatM)
}

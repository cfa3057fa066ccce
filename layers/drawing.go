package layers

import (
	"log/slog"

	"mapview/geo"
	"mapview/geom"
	"mapview/projection"
	"mapview/render"
)

// DrawingMode is the interaction mode of a DrawingLayer.
type DrawingMode int

const (
	// DrawingDisabled renders existing polylines without interaction.
	DrawingDisabled DrawingMode = iota

	// DrawingDraw lets the user drag new polylines onto the map.
	DrawingDraw

	// DrawingErase lets the user erase drawn polylines with a circular
	// eraser, splitting them where the eraser cuts through.
	DrawingErase
)

// DrawingLayer lets the user draw freehand polylines on the map and erase
// them again.
type DrawingLayer struct {
	polylines [][]geo.Pos

	// Stroke is the style new polylines are drawn with. Its width also
	// scales the eraser radius.
	Stroke Stroke

	// Mode is the current interaction mode.
	Mode DrawingMode

	log *slog.Logger
}

// NewDrawingLayer creates an empty drawing layer with the given stroke.
func NewDrawingLayer(stroke Stroke) *DrawingLayer {
	return &DrawingLayer{Stroke: stroke, log: slog.Default()}
}

// SetLogger replaces the layer's logger.
func (l *DrawingLayer) SetLogger(log *slog.Logger) { l.log = log }

// Polylines returns the drawn polylines. The slice is shared; treat it as
// read-only while the layer is interactive.
func (l *DrawingLayer) Polylines() [][]geo.Pos { return l.polylines }

// AddPolyline appends a polyline to the layer.
func (l *DrawingLayer) AddPolyline(line []geo.Pos) {
	l.polylines = append(l.polylines, line)
}

// Clear removes all polylines.
func (l *DrawingLayer) Clear() { l.polylines = nil }

// eraseRadius is the eraser's screen radius in pixels. It scales with the
// stroke width so a thicker pen erases a wider band.
func (l *DrawingLayer) eraseRadius() float64 {
	return float64(l.Stroke.Width) * 5
}

// HandleInput implements Layer.
func (l *DrawingLayer) HandleInput(frame *render.Frame, proj *projection.Projector) bool {
	switch l.Mode {
	case DrawingDraw:
		return l.handleDrawInput(frame, proj)
	case DrawingErase:
		return l.handleEraseInput(frame, proj)
	default:
		return false
	}
}

func (l *DrawingLayer) handleDrawInput(frame *render.Frame, proj *projection.Projector) bool {
	ptr := &frame.Pointer

	// Shift-click extends the last polyline without a drag, so long
	// straight runs can be placed point by point.
	if ptr.Clicked && ptr.Shift {
		pos := proj.Unproject(ptr.Pos)
		if n := len(l.polylines); n > 0 {
			l.polylines[n-1] = append(l.polylines[n-1], pos)
		} else {
			// Nothing to extend yet; seed a minimal line so the click
			// leaves a visible mark.
			pos2 := proj.Unproject(geom.Point{X: ptr.Pos.X + 1, Y: ptr.Pos.Y})
			l.polylines = append(l.polylines, []geo.Pos{pos, pos2})
		}
	}

	if ptr.DragStarted {
		l.polylines = append(l.polylines, nil)
	}

	if ptr.Dragging {
		if n := len(l.polylines); n > 0 {
			l.polylines[n-1] = append(l.polylines[n-1], proj.Unproject(ptr.Pos))
		}
	}

	// A drag that never produced two points leaves no usable line behind.
	if ptr.DragStopped {
		if n := len(l.polylines); n > 0 && len(l.polylines[n-1]) < 2 {
			l.polylines = l.polylines[:n-1]
		}
	}

	// While drawing, all interactions over the map belong to the pen.
	return ptr.Hovered
}

func (l *DrawingLayer) handleEraseInput(frame *render.Frame, proj *projection.Projector) bool {
	ptr := &frame.Pointer

	if ptr.Dragging {
		l.eraseAt(ptr.Pos, proj)
	}

	return ptr.Hovered
}

// eraseAt removes the portions of all polylines within the eraser circle
// around the screen position, splitting lines where the eraser cuts
// through. Erasing over empty space leaves the layer unchanged.
func (l *DrawingLayer) eraseAt(at geom.Point, proj *projection.Projector) {
	radius := l.eraseRadius()

	result := make([][]geo.Pos, 0, len(l.polylines))
	for _, line := range l.polylines {
		result = append(result, erasePolyline(line, at, radius, proj)...)
	}
	l.polylines = result
}

// erasePolyline splits one polyline against the eraser circle. Boundary
// crossings are interpolated on the segment so the remaining line ends
// exactly at the eraser's edge. Sub-lines shorter than two points are
// dropped.
func erasePolyline(line []geo.Pos, at geom.Point, radius float64, proj *projection.Projector) [][]geo.Pos {
	if len(line) < 2 {
		return nil
	}

	screen := projectAll(proj, line)

	var out [][]geo.Pos
	var current []geo.Pos
	flush := func() {
		if len(current) >= 2 {
			out = append(out, current)
		}
		current = nil
	}
	boundary := func(a, b geom.Point, t float64) geo.Pos {
		return proj.Unproject(geom.Lerp(a, b, t))
	}

	for i := 0; i < len(line)-1; i++ {
		a, b := screen[i], screen[i+1]

		t1, t2, hit := geom.SegmentCircleCrossings(a, b, at, radius)
		if !hit {
			if current == nil {
				current = []geo.Pos{line[i]}
			}
			current = append(current, line[i+1])
			continue
		}

		if t1 > 0 {
			// The segment enters the eraser part-way; keep the piece up to
			// the entry point.
			if current == nil {
				current = []geo.Pos{line[i]}
			}
			current = append(current, boundary(a, b, t1))
		}
		flush()

		if t2 < 1 {
			// The segment leaves the eraser again; a new sub-line starts at
			// the exit point.
			current = []geo.Pos{boundary(a, b, t2), line[i+1]}
		}
	}
	flush()

	return out
}

// Draw implements Layer.
func (l *DrawingLayer) Draw(p render.Painter, proj *projection.Projector) {
	for _, line := range l.polylines {
		if len(line) < 2 {
			continue
		}
		p.Line(projectAll(proj, line), l.Stroke.Width, l.Stroke.Color)
	}
}

package ebiten

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"mapview/geom"
	"mapview/render"
)

const (
	// dragThreshold separates a click from a drag, in pixels.
	dragThreshold = 4

	doubleClickInterval = 400 * time.Millisecond
	doubleClickRange    = 6
)

// InputState turns Ebitengine's immediate input queries into the per-frame
// pointer snapshot the map consumes. It keeps the little state needed to
// tell clicks, double clicks and drags apart; call Frame once per Update.
type InputState struct {
	pressed  bool
	dragging bool
	pressPos geom.Point
	lastPos  geom.Point

	lastClickAt  time.Time
	lastClickPos geom.Point
}

// Frame builds the pointer snapshot for the current tick over the given
// widget rectangle.
func (s *InputState) Frame(rect geom.Rect) *render.Frame {
	x, y := ebiten.CursorPosition()
	pos := geom.Point{X: float64(x), Y: float64(y)}

	f := &render.Frame{Rect: rect}
	ptr := &f.Pointer
	ptr.Pos = pos
	ptr.Hovered = rect.Contains(pos)
	ptr.Shift = ebiten.IsKeyPressed(ebiten.KeyShift)

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) && ptr.Hovered {
		s.pressed = true
		s.pressPos = pos
		s.lastPos = pos
	}

	if s.pressed {
		if !s.dragging && geom.Distance(pos, s.pressPos) > dragThreshold {
			s.dragging = true
			ptr.DragStarted = true
		}
		if s.dragging {
			ptr.Dragging = true
			ptr.DragDelta = pos.Sub(s.lastPos)
		}
	}

	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) && s.pressed {
		if s.dragging {
			ptr.DragStopped = true
		} else if time.Since(s.lastClickAt) < doubleClickInterval &&
			geom.Distance(pos, s.lastClickPos) < doubleClickRange {
			ptr.DoubleClicked = true
			s.lastClickAt = time.Time{}
		} else {
			ptr.Clicked = true
			s.lastClickAt = time.Now()
			s.lastClickPos = pos
		}
		s.pressed = false
		s.dragging = false
	}

	s.lastPos = pos

	if _, wy := ebiten.Wheel(); wy > 0 {
		ptr.Scroll = 1
	} else if wy < 0 {
		ptr.Scroll = -1
	}

	return f
}

package layers

import (
	"image/color"
	"log/slog"
	"math"
	"unicode/utf8"

	"mapview/geo"
	"mapview/geom"
	"mapview/projection"
	"mapview/render"
)

// TextSize is the size of a map label: fixed in screen points, or in meters
// so the label scales with zoom.
type TextSize interface {
	isTextSize()
}

// StaticSize is a glyph height in screen points that does not scale with
// zoom.
type StaticSize float64

func (StaticSize) isTextSize() {}

// RelativeSize is a glyph height in meters at the label's latitude, so the
// label grows and shrinks with the map.
type RelativeSize float64

func (RelativeSize) isTextSize() {}

// Text is a label placed on the map.
type Text struct {
	Text       string
	Pos        geo.Pos
	Size       TextSize
	Color      color.RGBA
	Background color.RGBA
}

// NewText returns a label with the default style at the given position.
func NewText(s string, pos geo.Pos) Text {
	return Text{
		Text:       s,
		Pos:        pos,
		Size:       StaticSize(12),
		Color:      colorBlack,
		Background: color.RGBA{R: 255, G: 255, B: 255, A: 180},
	}
}

// TextMode is the interaction mode of a TextLayer.
type TextMode int

const (
	// TextDisabled renders labels without interaction.
	TextDisabled TextMode = iota

	// TextModify lets the user drag labels, and click to add or edit them.
	TextModify
)

// EditSession holds the draft of a label being added or edited. The host UI
// mutates Draft and ends the session with CommitEdit or CancelEdit; until
// then the stored labels are untouched.
type EditSession struct {
	// Draft is the label under edit.
	Draft Text

	// index of the stored label, or -1 when adding a new one.
	index int
}

// IsNew reports whether committing will add a label rather than replace
// one.
func (s *EditSession) IsNew() bool { return s.index < 0 }

// TextLayer places editable text labels on the map.
type TextLayer struct {
	texts []Text

	// Mode is the current interaction mode.
	Mode TextMode

	// NewTextTemplate supplies the style for labels added by clicking empty
	// map. Its position is replaced by the click position.
	NewTextTemplate Text

	// Measurer provides the text metrics used for hit-testing. When nil, a
	// fixed-ratio approximation stands in, which is close enough for the
	// backend's monospace debug font.
	Measurer render.TextMeasurer

	editing *EditSession
	dragged int
	log     *slog.Logger
}

// NewTextLayer creates an empty text layer.
func NewTextLayer() *TextLayer {
	return &TextLayer{
		NewTextTemplate: NewText("New Text", geo.Pos{}),
		dragged:         -1,
		log:             slog.Default(),
	}
}

// SetLogger replaces the layer's logger.
func (l *TextLayer) SetLogger(log *slog.Logger) { l.log = log }

// Texts returns the layer's labels. The slice is shared; treat it as
// read-only while the layer is interactive.
func (l *TextLayer) Texts() []Text { return l.texts }

// AddText appends a label to the layer.
func (l *TextLayer) AddText(t Text) {
	l.texts = append(l.texts, t)
}

// Delete removes the label at the given index. Out-of-range indices are
// ignored.
func (l *TextLayer) Delete(index int) {
	if index < 0 || index >= len(l.texts) {
		return
	}
	l.texts = append(l.texts[:index], l.texts[index+1:]...)
}

// Clear removes all labels and abandons any session in progress.
func (l *TextLayer) Clear() {
	l.texts = nil
	l.editing = nil
	l.dragged = -1
}

// Editing returns the open edit session, or nil.
func (l *TextLayer) Editing() *EditSession { return l.editing }

// StartEditing opens an edit session for the label at the given index.
func (l *TextLayer) StartEditing(index int) {
	if index < 0 || index >= len(l.texts) {
		return
	}
	l.editing = &EditSession{Draft: l.texts[index], index: index}
}

// CommitEdit applies the open session's draft: replacing the edited label,
// or appending it when the session added a new one. Without an open session
// it does nothing.
func (l *TextLayer) CommitEdit() {
	if l.editing == nil {
		return
	}
	if l.editing.index >= 0 {
		l.texts[l.editing.index] = l.editing.Draft
	} else {
		l.texts = append(l.texts, l.editing.Draft)
	}
	l.editing = nil
}

// CancelEdit discards the open session's draft.
func (l *TextLayer) CancelEdit() {
	l.editing = nil
}

// HandleInput implements Layer.
func (l *TextLayer) HandleInput(frame *render.Frame, proj *projection.Projector) bool {
	switch l.Mode {
	case TextModify:
		return l.handleModifyInput(frame, proj)
	default:
		return false
	}
}

func (l *TextLayer) handleModifyInput(frame *render.Frame, proj *projection.Projector) bool {
	ptr := &frame.Pointer

	// While a dialog session is open the map should not pan or zoom under
	// it, and labels should not react to clicks.
	if l.editing != nil {
		return ptr.Hovered
	}

	if ptr.DragStarted {
		l.dragged = l.findTextAt(ptr.Pos, proj)
	}

	if ptr.Dragging && l.dragged >= 0 {
		l.texts[l.dragged].Pos = proj.Unproject(ptr.Pos)
	}

	if ptr.DragStopped {
		l.dragged = -1
	}

	if ptr.Clicked && !ptr.Dragging {
		if index := l.findTextAt(ptr.Pos, proj); index >= 0 {
			l.StartEditing(index)
		} else {
			draft := l.NewTextTemplate
			draft.Pos = proj.Unproject(ptr.Pos)
			l.editing = &EditSession{Draft: draft, index: -1}
		}
	}

	return ptr.Hovered
}

// findTextAt returns the index of the topmost label whose bounding box,
// expanded by a 5px tolerance, contains the screen position, or -1.
func (l *TextLayer) findTextAt(pt geom.Point, proj *projection.Projector) int {
	for i := len(l.texts) - 1; i >= 0; i-- {
		if l.textRect(&l.texts[i], proj).Expand(5).Contains(pt) {
			return i
		}
	}
	return -1
}

// textRect is the label's screen bounding box, centered on its projected
// position.
func (l *TextLayer) textRect(t *Text, proj *projection.Projector) geom.Rect {
	w, h := l.measure(t.Text, l.fontSize(t, proj))
	center := proj.Project(t.Pos)
	return geom.NewRect(center.X-w/2, center.Y-h/2, w, h)
}

func (l *TextLayer) measure(s string, size float64) (w, h float64) {
	if l.Measurer != nil {
		return l.Measurer.MeasureText(s, size)
	}
	return float64(utf8.RuneCountInString(s)) * size * 0.6, size
}

// fontSize resolves a label's size to screen points. A relative size is
// converted by projecting a point the given number of meters east of the
// label and measuring the pixel offset.
func (l *TextLayer) fontSize(t *Text, proj *projection.Projector) float64 {
	switch size := t.Size.(type) {
	case StaticSize:
		return float64(size)
	case RelativeSize:
		dLon := float64(size) / (metersPerDegLon * math.Cos(t.Pos.Lat*math.Pi/180))
		ref := proj.Project(t.Pos)
		east := proj.Project(geo.Pos{Lon: t.Pos.Lon + dLon, Lat: t.Pos.Lat})
		return math.Abs(east.X - ref.X)
	}
	return float64(StaticSize(12))
}

// Draw implements Layer.
func (l *TextLayer) Draw(p render.Painter, proj *projection.Projector) {
	for i := range l.texts {
		t := &l.texts[i]
		p.Text(t.Text, proj.Project(t.Pos), l.fontSize(t, proj), t.Color, t.Background)
	}
}

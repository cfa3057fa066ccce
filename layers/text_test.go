package layers

import (
	"math"
	"testing"

	"mapview/geo"
	"mapview/geom"
	"mapview/render"
)

func TestFindTextAtUsesBoundingBox(t *testing.T) {
	proj := testProjector(t, geo.Pos{Lon: 24.9, Lat: 60.2}, 12)

	l := NewTextLayer()
	l.AddText(NewText("Harbor", proj.Unproject(geom.Point{X: 400, Y: 300})))

	// "Harbor" at 12pt with the fallback metrics is about 43x12px centered
	// on (400,300), plus the 5px tolerance.
	tests := []struct {
		name string
		at   geom.Point
		want int
	}{
		{"center", geom.Point{X: 400, Y: 300}, 0},
		{"inside tolerance above", geom.Point{X: 400, Y: 290}, 0},
		{"right edge with tolerance", geom.Point{X: 425, Y: 300}, 0},
		{"well outside", geom.Point{X: 500, Y: 300}, -1},
		{"above the box", geom.Point{X: 400, Y: 270}, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := l.findTextAt(tt.at, proj); got != tt.want {
				t.Errorf("findTextAt(%v) = %d, want %d", tt.at, got, tt.want)
			}
		})
	}
}

func TestDragMovesLabel(t *testing.T) {
	proj := testProjector(t, geo.Pos{Lon: 24.9, Lat: 60.2}, 12)

	l := NewTextLayer()
	l.Mode = TextModify
	l.AddText(NewText("Dock", proj.Unproject(geom.Point{X: 400, Y: 300})))

	frame := &render.Frame{
		Rect:    geom.NewRect(0, 0, 800, 600),
		Pointer: render.Pointer{Pos: geom.Point{X: 400, Y: 300}, Hovered: true, DragStarted: true, Dragging: true},
	}
	l.HandleInput(frame, proj)

	frame.Pointer = render.Pointer{Pos: geom.Point{X: 250, Y: 150}, Hovered: true, Dragging: true}
	l.HandleInput(frame, proj)

	frame.Pointer = render.Pointer{Hovered: true, DragStopped: true}
	l.HandleInput(frame, proj)

	got := proj.Project(l.Texts()[0].Pos)
	if geom.Distance(got, geom.Point{X: 250, Y: 150}) > 0.5 {
		t.Errorf("label should follow the drag to (250,150), got %v", got)
	}
}

func TestClickOnLabelOpensEditSession(t *testing.T) {
	proj := testProjector(t, geo.Pos{Lon: 24.9, Lat: 60.2}, 12)

	l := NewTextLayer()
	l.Mode = TextModify
	l.AddText(NewText("Pier", proj.Unproject(geom.Point{X: 400, Y: 300})))

	frame := &render.Frame{
		Rect:    geom.NewRect(0, 0, 800, 600),
		Pointer: render.Pointer{Pos: geom.Point{X: 400, Y: 300}, Hovered: true, Clicked: true},
	}
	l.HandleInput(frame, proj)

	session := l.Editing()
	if session == nil {
		t.Fatal("clicking a label should open an edit session")
	}
	if session.IsNew() {
		t.Error("editing an existing label should not report as new")
	}
	if session.Draft.Text != "Pier" {
		t.Errorf("draft text = %q, want %q", session.Draft.Text, "Pier")
	}

	session.Draft.Text = "Pier 7"
	l.CommitEdit()
	if l.Editing() != nil {
		t.Error("commit should close the session")
	}
	if got := l.Texts()[0].Text; got != "Pier 7" {
		t.Errorf("committed text = %q, want %q", got, "Pier 7")
	}
}

func TestClickOnEmptyMapDraftsNewLabel(t *testing.T) {
	proj := testProjector(t, geo.Pos{Lon: 24.9, Lat: 60.2}, 12)

	l := NewTextLayer()
	l.Mode = TextModify

	frame := &render.Frame{
		Rect:    geom.NewRect(0, 0, 800, 600),
		Pointer: render.Pointer{Pos: geom.Point{X: 200, Y: 200}, Hovered: true, Clicked: true},
	}
	l.HandleInput(frame, proj)

	session := l.Editing()
	if session == nil {
		t.Fatal("clicking empty map should open a session for a new label")
	}
	if !session.IsNew() {
		t.Error("session for a fresh label should report as new")
	}
	if len(l.Texts()) != 0 {
		t.Error("the draft must not be stored before commit")
	}

	l.CommitEdit()
	if len(l.Texts()) != 1 {
		t.Fatalf("commit should add the label, have %d", len(l.Texts()))
	}
	got := proj.Project(l.Texts()[0].Pos)
	if geom.Distance(got, geom.Point{X: 200, Y: 200}) > 0.5 {
		t.Errorf("new label should sit at the click position, got %v", got)
	}
}

func TestCancelEditDiscardsDraft(t *testing.T) {
	proj := testProjector(t, geo.Pos{Lon: 24.9, Lat: 60.2}, 12)

	l := NewTextLayer()
	l.Mode = TextModify
	l.AddText(NewText("Quay", proj.Unproject(geom.Point{X: 400, Y: 300})))

	l.StartEditing(0)
	l.Editing().Draft.Text = "scrapped"
	l.CancelEdit()

	if got := l.Texts()[0].Text; got != "Quay" {
		t.Errorf("cancel should leave the label unchanged, got %q", got)
	}
}

func TestOpenSessionSuppressesMapInteraction(t *testing.T) {
	proj := testProjector(t, geo.Pos{Lon: 24.9, Lat: 60.2}, 12)

	l := NewTextLayer()
	l.Mode = TextModify
	l.AddText(NewText("Berth", proj.Unproject(geom.Point{X: 400, Y: 300})))
	l.StartEditing(0)

	frame := &render.Frame{
		Rect:    geom.NewRect(0, 0, 800, 600),
		Pointer: render.Pointer{Pos: geom.Point{X: 100, Y: 100}, Hovered: true, Clicked: true},
	}
	if !l.HandleInput(frame, proj) {
		t.Error("an open session should consume hovered input")
	}
	if l.Editing() == nil || l.Editing().Draft.Text != "Berth" {
		t.Error("clicks during a session must not replace it")
	}
}

func TestRelativeSizeScalesWithZoom(t *testing.T) {
	pos := geo.Pos{Lon: 24.9, Lat: 60.2}
	l := NewTextLayer()
	label := NewText("Scale", pos)
	label.Size = RelativeSize(100)

	sizeAt := func(zoom uint8) float64 {
		proj := testProjector(t, pos, zoom)
		return l.fontSize(&label, proj)
	}

	s12, s13 := sizeAt(12), sizeAt(13)
	if s12 <= 0 {
		t.Fatalf("relative size at zoom 12 = %v, want > 0", s12)
	}
	if ratio := s13 / s12; math.Abs(ratio-2) > 0.01 {
		t.Errorf("one zoom level should double the size, got ratio %v", ratio)
	}
}

func TestStaticSizeIgnoresZoom(t *testing.T) {
	pos := geo.Pos{Lon: 24.9, Lat: 60.2}
	l := NewTextLayer()
	label := NewText("Fixed", pos)

	for _, zoom := range []uint8{5, 12, 19} {
		proj := testProjector(t, pos, zoom)
		if got := l.fontSize(&label, proj); got != 12 {
			t.Errorf("static size at zoom %d = %v, want 12", zoom, got)
		}
	}
}

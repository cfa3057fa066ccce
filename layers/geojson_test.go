package layers

import (
	"context"
	"errors"
	"image/color"
	"log/slog"
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"mapview/geo"
)

func TestPolygonAreaRoundTrip(t *testing.T) {
	points := []geo.Pos{
		{Lon: 24.93, Lat: 60.17},
		{Lon: 24.95, Lat: 60.17},
		{Lon: 24.94, Lat: 60.18},
	}
	in := Area{
		Shape:  Polygon{Points: points},
		Stroke: Stroke{Width: 3, Color: color.RGBA{255, 0, 0, 255}},
		Fill:   color.RGBA{0, 255, 0, 64},
	}

	out, err := AreaFromFeature(AreaToFeature(in))
	if err != nil {
		t.Fatalf("round trip failed: %v", err)
	}

	got, ok := out.Shape.(Polygon)
	if !ok {
		t.Fatalf("decoded shape is %T, want Polygon", out.Shape)
	}
	if len(got.Points) != len(points) {
		t.Fatalf("decoded %d points, want %d (closing duplicate must be removed)", len(got.Points), len(points))
	}
	for i := range points {
		if math.Abs(got.Points[i].Lon-points[i].Lon) > 1e-12 || math.Abs(got.Points[i].Lat-points[i].Lat) > 1e-12 {
			t.Errorf("point %d = %v, want %v", i, got.Points[i], points[i])
		}
	}
	if out.Stroke != in.Stroke {
		t.Errorf("stroke = %v, want %v", out.Stroke, in.Stroke)
	}
	if out.Fill != in.Fill {
		t.Errorf("fill = %v, want %v", out.Fill, in.Fill)
	}
}

func TestPolygonFeatureRingIsClosed(t *testing.T) {
	f := AreaToFeature(Area{Shape: Polygon{Points: []geo.Pos{
		{Lon: 1, Lat: 2}, {Lon: 3, Lat: 4}, {Lon: 5, Lat: 6},
	}}})

	poly, ok := f.Geometry.(orb.Polygon)
	if !ok || len(poly) != 1 {
		t.Fatalf("geometry = %T with %d rings, want Polygon with 1 ring", f.Geometry, len(poly))
	}
	ring := poly[0]
	if len(ring) != 4 {
		t.Fatalf("ring has %d points, want 4 (closed)", len(ring))
	}
	if ring[0] != ring[3] {
		t.Errorf("ring is not closed: first %v, last %v", ring[0], ring[3])
	}
}

func TestCircleAreaRoundTrip(t *testing.T) {
	in := Area{
		Shape:  Circle{Center: geo.Pos{Lon: 24.94, Lat: 60.17}, Radius: 650, PointCount: 32},
		Stroke: Stroke{Width: 2, Color: color.RGBA{0, 0, 255, 255}},
	}

	out, err := AreaFromFeature(AreaToFeature(in))
	if err != nil {
		t.Fatalf("round trip failed: %v", err)
	}
	got, ok := out.Shape.(Circle)
	if !ok {
		t.Fatalf("decoded shape is %T, want Circle", out.Shape)
	}
	if got != in.Shape.(Circle) {
		t.Errorf("decoded circle %+v, want %+v", got, in.Shape)
	}
}

func TestCircleImportRejectsBadRadius(t *testing.T) {
	f := geojson.NewFeature(orb.Point{24.94, 60.17})
	f.Properties = baseProperties()
	f.Properties["radius"] = -5.0

	if _, err := AreaFromFeature(f); !errors.Is(err, ErrBadRadius) {
		t.Errorf("negative radius gave %v, want ErrBadRadius", err)
	}

	delete(f.Properties, "radius")
	if _, err := AreaFromFeature(f); !errors.Is(err, ErrBadRadius) {
		t.Errorf("missing radius gave %v, want ErrBadRadius", err)
	}
}

func TestAreaImportRejectsMissingGeometry(t *testing.T) {
	f := &geojson.Feature{Properties: baseProperties()}
	if _, err := AreaFromFeature(f); !errors.Is(err, ErrNoGeometry) {
		t.Errorf("missing geometry gave %v, want ErrNoGeometry", err)
	}
}

func TestPolylineRoundTripThroughJSON(t *testing.T) {
	l := NewDrawingLayer(Stroke{Width: 2, Color: colorRed})
	line := []geo.Pos{{Lon: 1, Lat: 2}, {Lon: 3, Lat: 4}, {Lon: 5, Lat: 6}}
	l.AddPolyline(line)

	data, err := l.ExportGeoJSON("drawing").MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	restored := NewDrawingLayer(Stroke{Width: 2, Color: colorRed})
	if err := restored.ImportGeoJSON(fc, "drawing"); err != nil {
		t.Fatalf("import: %v", err)
	}
	lines := restored.Polylines()
	if len(lines) != 1 || len(lines[0]) != 3 {
		t.Fatalf("restored %d lines, want 1 with 3 points", len(lines))
	}
	for i := range line {
		if lines[0][i] != line[i] {
			t.Errorf("point %d = %v, want %v", i, lines[0][i], line[i])
		}
	}
}

func TestTextRoundTrip(t *testing.T) {
	in := NewText("Kauppatori", geo.Pos{Lon: 24.952, Lat: 60.167})
	in.Size = RelativeSize(50)
	in.Color = color.RGBA{20, 30, 40, 255}

	out, err := TextFromFeature(TextToFeature(in))
	if err != nil {
		t.Fatalf("round trip failed: %v", err)
	}
	if out != in {
		t.Errorf("decoded %+v, want %+v", out, in)
	}
}

func TestTextImportRequiresTextProperty(t *testing.T) {
	f := geojson.NewFeature(orb.Point{1, 2})
	f.Properties = baseProperties()

	if _, err := TextFromFeature(f); !errors.Is(err, ErrNoText) {
		t.Errorf("missing text property gave %v, want ErrNoText", err)
	}
}

func TestImportFiltersByLayerID(t *testing.T) {
	areas := NewAreaLayer()
	areas.AddArea(Area{Shape: Polygon{Points: []geo.Pos{{Lon: 1, Lat: 1}, {Lon: 2, Lat: 1}, {Lon: 2, Lat: 2}}}})
	texts := NewTextLayer()
	texts.AddText(NewText("Label", geo.Pos{Lon: 3, Lat: 3}))

	// One shared collection holding both layers.
	fc := areas.ExportGeoJSON("areas")
	for _, f := range texts.ExportGeoJSON("texts").Features {
		fc.Append(f)
	}

	restoredAreas := NewAreaLayer()
	if err := restoredAreas.ImportGeoJSON(fc, "areas"); err != nil {
		t.Fatalf("area import: %v", err)
	}
	if got := len(restoredAreas.Areas()); got != 1 {
		t.Errorf("area layer imported %d shapes, want 1", got)
	}

	restoredTexts := NewTextLayer()
	if err := restoredTexts.ImportGeoJSON(fc, "texts"); err != nil {
		t.Fatalf("text import: %v", err)
	}
	if got := len(restoredTexts.Texts()); got != 1 {
		t.Errorf("text layer imported %d labels, want 1", got)
	}
}

func TestImportErrorLeavesLayerUnchanged(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	fc.Append(AreaToFeature(Area{Shape: Polygon{Points: []geo.Pos{{Lon: 1, Lat: 1}, {Lon: 2, Lat: 1}, {Lon: 2, Lat: 2}}}}))
	bad := geojson.NewFeature(orb.Point{5, 5})
	bad.Properties = baseProperties()
	fc.Append(bad) // a circle without radius

	l := NewAreaLayer()
	if err := l.ImportGeoJSON(fc, ""); err == nil {
		t.Fatal("expected the bad circle to fail the import")
	}
	if got := len(l.Areas()); got != 0 {
		t.Errorf("failed import must not add shapes, layer has %d", got)
	}
}

func TestExportSkipsSubMinimalPolylines(t *testing.T) {
	l := NewDrawingLayer(Stroke{Width: 2, Color: colorRed})
	l.AddPolyline([]geo.Pos{{Lon: 1, Lat: 2}, {Lon: 3, Lat: 4}})
	l.AddPolyline([]geo.Pos{{Lon: 5, Lat: 6}})
	l.AddPolyline(nil)

	fc := l.ExportGeoJSON("drawing")
	if got := len(fc.Features); got != 1 {
		t.Fatalf("exported %d features, want 1 (a LineString needs two positions)", got)
	}
}

// captureHandler records every message logged through it.
type captureHandler struct {
	messages *[]string
}

func (h captureHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h captureHandler) Handle(_ context.Context, r slog.Record) error {
	*h.messages = append(*h.messages, r.Message)
	return nil
}

func (h captureHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h captureHandler) WithGroup(string) slog.Handler      { return h }

func TestImportWarnsThroughLayerLogger(t *testing.T) {
	var messages []string
	l := NewDrawingLayer(Stroke{Width: 2, Color: colorRed})
	l.SetLogger(slog.New(captureHandler{messages: &messages}))

	// A foreign feature without producer tags.
	f := geojson.NewFeature(orb.LineString{{1, 2}, {3, 4}})
	fc := geojson.NewFeatureCollection()
	fc.Append(f)

	if err := l.ImportGeoJSON(fc, ""); err != nil {
		t.Fatalf("import: %v", err)
	}

	found := false
	for _, msg := range messages {
		if msg == "geojson feature carries no producer version tag" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected the missing-version warning on the layer's logger, got %v", messages)
	}
}

package layers

import (
	"errors"
	"fmt"
	"image/color"
	"log/slog"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"mapview/geo"
	"mapview/tiles"
)

// Import errors. They abort the failing import call; shapes already in the
// layer are untouched.
var (
	ErrNoGeometry          = errors.New("feature has no geometry")
	ErrUnsupportedGeometry = errors.New("unsupported geometry type")
	ErrBadRadius           = errors.New("circle radius must be greater than 0")
	ErrNoText              = errors.New("feature has no text property")
)

// Extended GeoJSON property keys. Producer tags identify the writing
// library and version so imports can warn about mismatches.
const (
	producerName            = "mapview"
	producerNameProperty    = "x-mapview-name"
	producerVersionProperty = "x-mapview-version"
	layerIDProperty         = "layer_id"
)

func baseProperties() geojson.Properties {
	return geojson.Properties{
		producerNameProperty:    producerName,
		producerVersionProperty: tiles.Version,
	}
}

// checkVersion warns about features written by another version. A mismatch
// never blocks the import.
func checkVersion(log *slog.Logger, props geojson.Properties) {
	name, _ := props[producerNameProperty].(string)
	version, _ := props[producerVersionProperty].(string)
	switch {
	case name == "" || version == "":
		log.Warn("geojson feature carries no producer version tag")
	case name == producerName && version != tiles.Version:
		log.Warn("geojson feature was written by a different version",
			"file_version", version, "current_version", tiles.Version)
	}
}

func floatProperty(props geojson.Properties, key string) (float64, bool) {
	switch v := props[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	}
	return 0, false
}

func intProperty(props geojson.Properties, key string) (int, bool) {
	switch v := props[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	}
	return 0, false
}

func colorProperty(props geojson.Properties, key string) (color.RGBA, bool) {
	s, ok := props[key].(string)
	if !ok {
		return color.RGBA{}, false
	}
	c, err := ParseHexColor(s)
	if err != nil {
		return color.RGBA{}, false
	}
	return c, true
}

// featureInLayer reports whether a feature belongs to the given layer id.
// An empty id matches every feature.
func featureInLayer(f *geojson.Feature, layerID string) bool {
	if layerID == "" {
		return true
	}
	id, _ := f.Properties[layerIDProperty].(string)
	return id == layerID
}

// AreaToFeature encodes an area as a GeoJSON feature: polygons as a closed
// Polygon ring, circles as a Point with a radius property in meters.
func AreaToFeature(a Area) *geojson.Feature {
	props := baseProperties()
	props["stroke_color"] = HexColor(a.Stroke.Color)
	props["stroke_width"] = float64(a.Stroke.Width)
	props["fill_color"] = HexColor(a.Fill)

	var f *geojson.Feature
	switch shape := a.Shape.(type) {
	case Polygon:
		// GeoJSON polygon rings are closed, so the first point repeats at
		// the end.
		ring := make(orb.Ring, 0, len(shape.Points)+1)
		for _, p := range shape.Points {
			ring = append(ring, orb.Point{p.Lon, p.Lat})
		}
		if len(ring) > 0 {
			ring = append(ring, ring[0])
		}
		f = geojson.NewFeature(orb.Polygon{ring})
	case Circle:
		f = geojson.NewFeature(orb.Point{shape.Center.Lon, shape.Center.Lat})
		props["radius"] = shape.Radius
		if shape.PointCount > 0 {
			props["points"] = shape.PointCount
		}
	default:
		f = geojson.NewFeature(orb.Polygon{})
	}
	f.Properties = props
	return f
}

// AreaFromFeature decodes an area from a GeoJSON feature, the inverse of
// AreaToFeature. The closing duplicate point of a polygon ring is removed.
func AreaFromFeature(f *geojson.Feature) (Area, error) {
	return areaFromFeature(f, slog.Default())
}

func areaFromFeature(f *geojson.Feature, log *slog.Logger) (Area, error) {
	if f.Geometry == nil {
		return Area{}, ErrNoGeometry
	}
	checkVersion(log, f.Properties)

	area := Area{Stroke: Stroke{Width: 1, Color: colorRed}, Fill: colorTransparent}

	switch g := f.Geometry.(type) {
	case orb.Polygon:
		if len(g) == 0 {
			return Area{}, fmt.Errorf("%w: polygon has no rings", ErrUnsupportedGeometry)
		}
		ring := g[0]
		points := make([]geo.Pos, 0, len(ring))
		for _, pt := range ring {
			points = append(points, geo.Pos{Lon: pt[0], Lat: pt[1]})
		}
		if len(points) > 1 && points[0] == points[len(points)-1] {
			points = points[:len(points)-1]
		}
		area.Shape = Polygon{Points: points}

	case orb.Point:
		radius, ok := floatProperty(f.Properties, "radius")
		if !ok || radius <= 0 {
			return Area{}, ErrBadRadius
		}
		circle := Circle{Center: geo.Pos{Lon: g[0], Lat: g[1]}, Radius: radius}
		if n, ok := intProperty(f.Properties, "points"); ok {
			circle.PointCount = n
		}
		area.Shape = circle

	default:
		return Area{}, fmt.Errorf("%w: %T", ErrUnsupportedGeometry, f.Geometry)
	}

	if w, ok := floatProperty(f.Properties, "stroke_width"); ok {
		area.Stroke.Width = float32(w)
	}
	if c, ok := colorProperty(f.Properties, "stroke_color"); ok {
		area.Stroke.Color = c
	}
	if c, ok := colorProperty(f.Properties, "fill_color"); ok {
		area.Fill = c
	}
	return area, nil
}

// PolylineToFeature encodes a polyline as a GeoJSON LineString feature.
func PolylineToFeature(line []geo.Pos) *geojson.Feature {
	ls := make(orb.LineString, 0, len(line))
	for _, p := range line {
		ls = append(ls, orb.Point{p.Lon, p.Lat})
	}
	f := geojson.NewFeature(ls)
	f.Properties = baseProperties()
	return f
}

// PolylineFromFeature decodes a polyline from a LineString feature.
func PolylineFromFeature(f *geojson.Feature) ([]geo.Pos, error) {
	return polylineFromFeature(f, slog.Default())
}

func polylineFromFeature(f *geojson.Feature, log *slog.Logger) ([]geo.Pos, error) {
	if f.Geometry == nil {
		return nil, ErrNoGeometry
	}
	checkVersion(log, f.Properties)

	ls, ok := f.Geometry.(orb.LineString)
	if !ok {
		return nil, fmt.Errorf("%w: %T, want LineString", ErrUnsupportedGeometry, f.Geometry)
	}
	line := make([]geo.Pos, len(ls))
	for i, pt := range ls {
		line[i] = geo.Pos{Lon: pt[0], Lat: pt[1]}
	}
	return line, nil
}

// TextToFeature encodes a label as a GeoJSON Point feature with text, size
// and color properties.
func TextToFeature(t Text) *geojson.Feature {
	f := geojson.NewFeature(orb.Point{t.Pos.Lon, t.Pos.Lat})
	props := baseProperties()
	props["text"] = t.Text
	props["color"] = HexColor(t.Color)
	props["background"] = HexColor(t.Background)

	switch size := t.Size.(type) {
	case StaticSize:
		props["size_type"] = "Static"
		props["size"] = float64(size)
	case RelativeSize:
		props["size_type"] = "Relative"
		props["size"] = float64(size)
	}
	f.Properties = props
	return f
}

// TextFromFeature decodes a label from a Point feature.
func TextFromFeature(f *geojson.Feature) (Text, error) {
	return textFromFeature(f, slog.Default())
}

func textFromFeature(f *geojson.Feature, log *slog.Logger) (Text, error) {
	if f.Geometry == nil {
		return Text{}, ErrNoGeometry
	}
	checkVersion(log, f.Properties)

	pt, ok := f.Geometry.(orb.Point)
	if !ok {
		return Text{}, fmt.Errorf("%w: %T, want Point", ErrUnsupportedGeometry, f.Geometry)
	}

	s, ok := f.Properties["text"].(string)
	if !ok {
		return Text{}, ErrNoText
	}
	t := NewText(s, geo.Pos{Lon: pt[0], Lat: pt[1]})

	if c, ok := colorProperty(f.Properties, "color"); ok {
		t.Color = c
	}
	if c, ok := colorProperty(f.Properties, "background"); ok {
		t.Background = c
	}
	if size, ok := floatProperty(f.Properties, "size"); ok {
		switch f.Properties["size_type"] {
		case "Static":
			t.Size = StaticSize(size)
		case "Relative":
			t.Size = RelativeSize(size)
		}
	}
	return t, nil
}

// ExportGeoJSON collects the layer's areas into a feature collection. A
// non-empty layerID is stamped on every feature so collections from several
// layers can share one file.
func (l *AreaLayer) ExportGeoJSON(layerID string) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, a := range l.areas {
		f := AreaToFeature(a)
		if layerID != "" {
			f.Properties[layerIDProperty] = layerID
		}
		fc.Append(f)
	}
	return fc
}

// ImportGeoJSON appends the collection's areas with a matching layer id to
// the layer. On error nothing is imported.
func (l *AreaLayer) ImportGeoJSON(fc *geojson.FeatureCollection, layerID string) error {
	var areas []Area
	for _, f := range fc.Features {
		if !featureInLayer(f, layerID) {
			continue
		}
		a, err := areaFromFeature(f, l.log)
		if err != nil {
			return fmt.Errorf("import area: %w", err)
		}
		areas = append(areas, a)
	}
	l.areas = append(l.areas, areas...)
	return nil
}

// ExportGeoJSON collects the layer's polylines into a feature collection.
// Lines with fewer than two points are skipped; a LineString needs at least
// two positions.
func (l *DrawingLayer) ExportGeoJSON(layerID string) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, line := range l.polylines {
		if len(line) < 2 {
			continue
		}
		f := PolylineToFeature(line)
		if layerID != "" {
			f.Properties[layerIDProperty] = layerID
		}
		fc.Append(f)
	}
	return fc
}

// ImportGeoJSON appends the collection's polylines with a matching layer id
// to the layer. On error nothing is imported.
func (l *DrawingLayer) ImportGeoJSON(fc *geojson.FeatureCollection, layerID string) error {
	var lines [][]geo.Pos
	for _, f := range fc.Features {
		if !featureInLayer(f, layerID) {
			continue
		}
		line, err := polylineFromFeature(f, l.log)
		if err != nil {
			return fmt.Errorf("import polyline: %w", err)
		}
		lines = append(lines, line)
	}
	l.polylines = append(l.polylines, lines...)
	return nil
}

// ExportGeoJSON collects the layer's labels into a feature collection.
func (l *TextLayer) ExportGeoJSON(layerID string) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, t := range l.texts {
		f := TextToFeature(t)
		if layerID != "" {
			f.Properties[layerIDProperty] = layerID
		}
		fc.Append(f)
	}
	return fc
}

// ImportGeoJSON appends the collection's labels with a matching layer id to
// the layer. On error nothing is imported.
func (l *TextLayer) ImportGeoJSON(fc *geojson.FeatureCollection, layerID string) error {
	var texts []Text
	for _, f := range fc.Features {
		if !featureInLayer(f, layerID) {
			continue
		}
		t, err := textFromFeature(f, l.log)
		if err != nil {
			return fmt.Errorf("import text: %w", err)
		}
		texts = append(texts, t)
	}
	l.texts = append(l.texts, texts...)
	return nil
}

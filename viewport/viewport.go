// Package viewport owns the map's center and zoom and applies the pan and
// zoom gestures with their boundary rules.
package viewport

import (
	"mapview/geo"
	"mapview/geom"
	"mapview/projection"
)

// Viewport is the visible map window: a geographical center, a zoom level
// and the widget rectangle it is rendered into. All mutation goes through
// the gesture methods; every other component only reads it (usually through
// a Projector snapshot).
type Viewport struct {
	Center geo.Pos
	Zoom   uint8
	Rect   geom.Rect
}

// New creates a viewport. The zoom is clamped into [geo.MinZoom, geo.MaxZoom]
// and the center latitude into the Mercator-valid range.
func New(center geo.Pos, zoom uint8, rect geom.Rect) Viewport {
	if zoom > geo.MaxZoom {
		zoom = geo.MaxZoom
	}
	return Viewport{Center: center.ClampLat(), Zoom: zoom, Rect: rect}
}

// Projection returns a projector snapshot for the current frame.
func (v *Viewport) Projection() *projection.Projector {
	return projection.New(v.Zoom, v.Center, v.Rect)
}

// Pan moves the center by a screen-space drag delta. The center is clamped
// so the viewport never shows past the world edges; on axes where the world
// is smaller than the viewport the center is forced to the world middle
// instead.
func (v *Viewport) Pan(delta geom.Point) {
	centerX := geo.LonToX(v.Center.Lon, v.Zoom) - delta.X/geo.TileSize
	centerY := geo.LatToY(v.Center.Lat, v.Zoom) - delta.Y/geo.TileSize

	worldTiles := geo.ZoomScale(v.Zoom)
	viewTilesX := v.Rect.Width() / geo.TileSize
	viewTilesY := v.Rect.Height() / geo.TileSize

	centerX = clampAxis(centerX, viewTilesX/2, worldTiles-viewTilesX/2, worldTiles)
	centerY = clampAxis(centerY, viewTilesY/2, worldTiles-viewTilesY/2, worldTiles)

	v.Center = geo.Pos{
		Lon: geo.XToLon(centerX, v.Zoom),
		Lat: geo.YToLat(centerY, v.Zoom),
	}
}

// clampAxis keeps a center coordinate within [min, max], or centers the axis
// when the world is smaller than the viewport on it.
func clampAxis(value, min, max, worldTiles float64) float64 {
	if min > max {
		return worldTiles / 2
	}
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// ZoomInAt raises the zoom by one level (double-click gesture) and recenters
// so the position under the cursor stays put. A no-op at MaxZoom.
func (v *Viewport) ZoomInAt(cursor geom.Point) {
	if v.Zoom >= geo.MaxZoom {
		return
	}
	v.zoomTo(v.Zoom+1, cursor)
}

// ScrollZoom applies one discrete scroll step. dir > 0 zooms in, dir < 0
// zooms out. Zooming out is rejected when the world would become smaller
// than the widget in either dimension; zoom at the bounds is a no-op. A
// successful zoom keeps the position under the cursor fixed.
func (v *Viewport) ScrollZoom(dir int, cursor geom.Point) {
	if dir == 0 {
		return
	}

	if dir > 0 {
		if v.Zoom >= geo.MaxZoom {
			return
		}
		v.zoomTo(v.Zoom+1, cursor)
		return
	}

	if v.Zoom <= geo.MinZoom {
		return
	}
	newZoom := v.Zoom - 1
	worldPixels := geo.ZoomScale(newZoom) * geo.TileSize
	if worldPixels < v.Rect.Width() || worldPixels < v.Rect.Height() {
		return
	}
	v.zoomTo(newZoom, cursor)
}

// zoomTo changes the zoom level while keeping the geographical position
// under the cursor at the same screen position: the pre-zoom target tile
// coordinate is converted forward through both zoom levels.
func (v *Viewport) zoomTo(newZoom uint8, cursor geom.Point) {
	target := v.Projection().Unproject(cursor)

	relX := cursor.X - v.Rect.Min.X - v.Rect.Width()/2
	relY := cursor.Y - v.Rect.Min.Y - v.Rect.Height()/2

	newCenterX := geo.LonToX(target.Lon, newZoom) - relX/geo.TileSize
	newCenterY := geo.LatToY(target.Lat, newZoom) - relY/geo.TileSize

	v.Zoom = newZoom
	v.Center = geo.Pos{
		Lon: geo.XToLon(newCenterX, newZoom),
		Lat: geo.YToLat(newCenterY, newZoom),
	}
}

// Package projection converts between geographical and screen coordinates
// for one viewport snapshot.
package projection

import (
	"mapview/geo"
	"mapview/geom"
)

// Projector converts between geographical and screen coordinates. It is
// rebuilt from the viewport every frame and carries no mutable state, so the
// two conversions stay exact inverses of each other for the frame.
//
// Latitudes outside the Mercator-valid range (see geo.MaxLat) are not valid
// inputs; clamp before projecting.
type Projector struct {
	zoom    uint8
	center  geo.Pos
	rect    geom.Rect
	centerX float64
	centerY float64
}

// New creates a Projector for a zoom level, map center and widget rectangle.
func New(zoom uint8, center geo.Pos, rect geom.Rect) *Projector {
	return &Projector{
		zoom:    zoom,
		center:  center,
		rect:    rect,
		centerX: geo.LonToX(center.Lon, zoom),
		centerY: geo.LatToY(center.Lat, zoom),
	}
}

// Zoom returns the zoom level the projector was built for.
func (p *Projector) Zoom() uint8 { return p.zoom }

// Center returns the map center the projector was built for.
func (p *Projector) Center() geo.Pos { return p.center }

// Rect returns the widget rectangle the projector was built for.
func (p *Projector) Rect() geom.Rect { return p.rect }

// Project converts a geographical position to a screen coordinate.
func (p *Projector) Project(pos geo.Pos) geom.Point {
	tileX := geo.LonToX(pos.Lon, p.zoom)
	tileY := geo.LatToY(pos.Lat, p.zoom)

	dx := (tileX - p.centerX) * geo.TileSize
	dy := (tileY - p.centerY) * geo.TileSize

	c := p.rect.Center()
	return geom.Point{X: c.X + dx, Y: c.Y + dy}
}

// Unproject converts a screen coordinate back to a geographical position.
func (p *Projector) Unproject(screen geom.Point) geo.Pos {
	relX := screen.X - p.rect.Min.X
	relY := screen.Y - p.rect.Min.Y

	targetX := p.centerX + (relX-p.rect.Width()/2)/geo.TileSize
	targetY := p.centerY + (relY-p.rect.Height()/2)/geo.TileSize

	return geo.Pos{
		Lon: geo.XToLon(targetX, p.zoom),
		Lat: geo.YToLat(targetY, p.zoom),
	}
}

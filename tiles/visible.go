package tiles

import (
	"image/color"
	"math"

	"mapview/geo"
	"mapview/geom"
	"mapview/projection"
	"mapview/render"
)

// Placed is a visible tile id together with the screen position of its
// top-left corner.
type Placed struct {
	ID  geo.TileID
	Pos geom.Point
}

// Visible returns every tile whose footprint intersects the projector's
// widget rectangle at the current zoom, including a one-tile margin so
// partially visible tiles at the edges are covered. Indices outside the
// world are skipped.
func Visible(p *projection.Projector) []Placed {
	zoom := p.Zoom()
	rect := p.Rect()
	center := p.Center()

	centerX := geo.LonToX(center.Lon, zoom)
	centerY := geo.LatToY(center.Lat, zoom)

	halfW := rect.Width() / 2
	halfH := rect.Height() / 2

	xMin := int(math.Floor(centerX-halfW/geo.TileSize)) - 1
	yMin := int(math.Floor(centerY-halfH/geo.TileSize)) - 1
	xMax := int(math.Ceil(centerX+halfW/geo.TileSize)) + 1
	yMax := int(math.Ceil(centerY+halfH/geo.TileSize)) + 1

	worldTiles := int(geo.ZoomScale(zoom))

	var placed []Placed
	for x := xMin; x <= xMax; x++ {
		if x < 0 || x >= worldTiles {
			continue
		}
		for y := yMin; y <= yMax; y++ {
			if y < 0 || y >= worldTiles {
				continue
			}
			screenX := rect.Min.X + halfW + (float64(x)-centerX)*geo.TileSize
			screenY := rect.Min.Y + halfH + (float64(y)-centerY)*geo.TileSize
			placed = append(placed, Placed{
				ID:  geo.TileID{Z: zoom, X: uint32(x), Y: uint32(y)},
				Pos: geom.Point{X: screenX, Y: screenY},
			})
		}
	}
	return placed
}

var (
	placeholderFill   = color.RGBA{220, 220, 220, 255}
	placeholderBorder = color.RGBA{128, 128, 128, 255}
	loadingMark       = color.RGBA{255, 165, 0, 255}
	failedMark        = color.RGBA{200, 32, 32, 255}
)

// Draw renders the given visible tiles according to their cache state:
// loaded tiles draw their image, loading tiles draw a neutral placeholder
// and request another frame so polling continues, failed tiles draw an
// error placeholder.
func (c *Cache) Draw(p render.Painter, visible []Placed) {
	c.DrawTinted(p, visible, color.White)
}

// DrawTinted is Draw with a tint multiplied over loaded tile images, used
// by overlay tile layers to blend over the base map.
func (c *Cache) DrawTinted(p render.Painter, visible []Placed, tint color.Color) {
	for _, pt := range visible {
		tileRect := geom.NewRect(pt.Pos.X, pt.Pos.Y, geo.TileSize, geo.TileSize)

		t, ok := c.tiles[pt.ID]
		if !ok {
			continue
		}

		switch t.state {
		case StateLoaded:
			p.DrawImageTinted(t.img, pt.Pos, tint)
		case StateLoading:
			p.FillRect(tileRect, placeholderFill)
			p.StrokeRect(tileRect, 1, placeholderBorder)
			p.Text("?", tileRect.Center(), 40, loadingMark, color.Transparent)
			p.RequestRedraw()
		case StateFailed:
			p.FillRect(tileRect, placeholderFill)
			p.StrokeRect(tileRect, 1, placeholderBorder)
			p.Text("!", tileRect.Center(), 40, failedMark, color.Transparent)
		}
	}
}

// ErrAt returns the failure of the tile under the given screen position, if
// the position is over a Failed tile. Hosts can use it to surface the error
// on hover.
func (c *Cache) ErrAt(at geom.Point, visible []Placed) error {
	for _, pt := range visible {
		tileRect := geom.NewRect(pt.Pos.X, pt.Pos.Y, geo.TileSize, geo.TileSize)
		if !tileRect.Contains(at) {
			continue
		}
		if t, ok := c.tiles[pt.ID]; ok && t.state == StateFailed {
			return t.err
		}
	}
	return nil
}

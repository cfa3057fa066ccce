package layers

import (
	"image/color"

	"mapview/geo"
	"mapview/projection"
	"mapview/render"
	"mapview/tiles"
)

// TileLayer draws a second tile source over the base map, e.g. a hillshade
// or weather overlay. It owns its own cache and never consumes input.
type TileLayer struct {
	cache   *tiles.Cache
	visible []tiles.Placed

	// Tint is multiplied over the tile images; use the alpha channel to
	// blend the overlay with the base map.
	Tint color.RGBA
}

// NewTileLayer creates an overlay layer fetching from the given source.
func NewTileLayer(source tiles.Source, renderer render.Renderer, opts ...tiles.Option) *TileLayer {
	return &TileLayer{
		cache: tiles.NewCache(source, renderer, opts...),
		Tint:  color.RGBA{R: 255, G: 255, B: 255, A: 255},
	}
}

// Cache exposes the overlay's tile cache.
func (l *TileLayer) Cache() *tiles.Cache { return l.cache }

// HandleInput implements Layer. It uses the per-frame call to advance the
// overlay's tile fetches for the current viewport; input is never consumed.
func (l *TileLayer) HandleInput(frame *render.Frame, proj *projection.Projector) bool {
	l.visible = tiles.Visible(proj)
	ids := make([]geo.TileID, len(l.visible))
	for i, pt := range l.visible {
		ids[i] = pt.ID
	}
	l.cache.EnsureVisible(ids)
	l.cache.Poll()
	return false
}

// Draw implements Layer.
func (l *TileLayer) Draw(p render.Painter, proj *projection.Projector) {
	l.cache.DrawTinted(p, l.visible, l.Tint)
}

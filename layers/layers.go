// Package layers provides the vector overlays drawn on top of the base map:
// editable polygon and circle areas, freehand polylines, text labels and
// overlay tile sets, together with their GeoJSON round-trip codec.
package layers

import (
	"mapview/projection"
	"mapview/render"
)

// Layer is an overlay on the map. The map offers each frame's input to the
// layers from the topmost down and draws them from the bottom up.
type Layer interface {
	// HandleInput processes the frame's pointer state. It returns true when
	// the layer consumed the input, which stops both deeper layers and the
	// map's own pan/zoom handling from seeing it.
	HandleInput(frame *render.Frame, proj *projection.Projector) bool

	// Draw emits the layer's drawing commands.
	Draw(p render.Painter, proj *projection.Projector)
}

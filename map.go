// Package mapview is a pannable, zoomable slippy map widget core. It
// combines a web-Mercator viewport, an async tile cache, and a stack of
// editable vector layers, and talks to the host through the render package's
// Frame/Painter surface. The render/ebiten subpackage provides the default
// Ebitengine host.
package mapview

import (
	"fmt"
	"image/color"
	"log/slog"
	"net/http"

	"mapview/geo"
	"mapview/geom"
	"mapview/layers"
	"mapview/projection"
	"mapview/render"
	"mapview/tiles"
	"mapview/viewport"
)

// registeredLayer pairs a layer with its stable id. Order is draw order,
// bottom first.
type registeredLayer struct {
	id    string
	layer layers.Layer
}

// Map is the widget core: viewport state, the base tile cache, and the
// layer stack. It is not safe for concurrent use; drive it from the host's
// frame loop.
type Map struct {
	viewport viewport.Viewport
	source   tiles.Source
	cache    *tiles.Cache
	layers   []registeredLayer

	proj     *projection.Projector
	visible  []tiles.Placed
	mouseGeo geo.Pos
	hovered  bool

	attrRect geom.Rect
	attrURL  string

	background color.RGBA
	log        *slog.Logger
}

// Option configures a Map.
type Option func(*Map, *[]tiles.Option)

// WithHTTPClient sets the client used for tile fetches.
func WithHTTPClient(client *http.Client) Option {
	return func(_ *Map, cacheOpts *[]tiles.Option) {
		*cacheOpts = append(*cacheOpts, tiles.WithHTTPClient(client))
	}
}

// WithLogger sets the logger for the map and its tile cache.
func WithLogger(log *slog.Logger) Option {
	return func(m *Map, cacheOpts *[]tiles.Option) {
		m.log = log
		*cacheOpts = append(*cacheOpts, tiles.WithLogger(log))
	}
}

// WithBackground sets the color drawn where no tile covers the widget.
func WithBackground(clr color.RGBA) Option {
	return func(m *Map, _ *[]tiles.Option) {
		m.background = clr
	}
}

// New creates a map over the given tile source, centered at the source's
// default view.
func New(source tiles.Source, renderer render.Renderer, opts ...Option) *Map {
	m := &Map{
		viewport:   viewport.New(source.DefaultCenter(), source.DefaultZoom(), geom.Rect{}),
		source:     source,
		background: color.RGBA{R: 230, G: 230, B: 230, A: 255},
		log:        slog.Default(),
	}
	var cacheOpts []tiles.Option
	for _, opt := range opts {
		opt(m, &cacheOpts)
	}
	m.cache = tiles.NewCache(source, renderer, cacheOpts...)
	m.proj = m.viewport.Projection()
	return m
}

// Viewport exposes the map's viewport for reading or programmatic moves.
func (m *Map) Viewport() *viewport.Viewport { return &m.viewport }

// Cache exposes the base tile cache.
func (m *Map) Cache() *tiles.Cache { return m.cache }

// Projector returns the projector for the most recent frame.
func (m *Map) Projector() *projection.Projector { return m.proj }

// MouseGeo returns the geographic position under the pointer in the most
// recent frame, and whether the pointer was over the widget.
func (m *Map) MouseGeo() (geo.Pos, bool) { return m.mouseGeo, m.hovered }

// AddLayer appends a layer on top of the stack under a stable id. Ids must
// be unique within the map.
func (m *Map) AddLayer(id string, l layers.Layer) error {
	for _, r := range m.layers {
		if r.id == id {
			return fmt.Errorf("layer %q already registered", id)
		}
	}
	m.layers = append(m.layers, registeredLayer{id: id, layer: l})
	return nil
}

// Layer returns the layer registered under id.
func (m *Map) Layer(id string) (layers.Layer, bool) {
	for _, r := range m.layers {
		if r.id == id {
			return r.layer, true
		}
	}
	return nil, false
}

// LayerIDs returns the registered ids in draw order, bottom first.
func (m *Map) LayerIDs() []string {
	ids := make([]string, len(m.layers))
	for i, r := range m.layers {
		ids[i] = r.id
	}
	return ids
}

// RemoveLayer removes the layer registered under id and reports whether it
// existed.
func (m *Map) RemoveLayer(id string) bool {
	for i, r := range m.layers {
		if r.id == id {
			m.layers = append(m.layers[:i], m.layers[i+1:]...)
			return true
		}
	}
	return false
}

// Update advances the map by one frame: layers get first claim on input,
// topmost first; unclaimed input drives the viewport gestures; then the
// tile cache is synced to the new view.
func (m *Map) Update(frame *render.Frame) {
	m.viewport.Rect = frame.Rect
	m.proj = m.viewport.Projection()
	m.attrURL = ""

	ptr := &frame.Pointer

	// The attribution notice floats above all layers, so it claims its
	// clicks first.
	consumed := false
	if ptr.Clicked && m.attrRect.Contains(ptr.Pos) {
		if url := m.source.AttributionURL(); url != "" {
			m.attrURL = url
			consumed = true
		}
	}

	for i := len(m.layers) - 1; i >= 0 && !consumed; i-- {
		if m.layers[i].layer.HandleInput(frame, m.proj) {
			consumed = true
		}
	}
	if !consumed && ptr.Hovered {
		if ptr.Dragging {
			m.viewport.Pan(ptr.DragDelta)
		}
		if ptr.DoubleClicked {
			m.viewport.ZoomInAt(ptr.Pos)
		}
		if ptr.Scroll != 0 {
			m.viewport.ScrollZoom(ptr.Scroll, ptr.Pos)
		}
		m.proj = m.viewport.Projection()
	}

	m.visible = tiles.Visible(m.proj)
	ids := make([]geo.TileID, len(m.visible))
	for i, pt := range m.visible {
		ids[i] = pt.ID
	}
	m.cache.EnsureVisible(ids)
	m.cache.Poll()

	m.hovered = ptr.Hovered
	if m.hovered {
		m.mouseGeo = m.proj.Unproject(ptr.Pos)
	}
}

// Draw renders the frame: background, base tiles, layers bottom-up, then
// the attribution notice.
func (m *Map) Draw(p render.Painter) {
	rect := m.proj.Rect()

	p.FillRect(rect, m.background)
	m.cache.Draw(p, m.visible)

	for _, r := range m.layers {
		r.layer.Draw(p, m.proj)
	}

	m.drawAttribution(p, rect)
}

// AttributionClicked returns the tile source's attribution URL when the
// attribution notice was clicked this frame. The host decides how to open
// it.
func (m *Map) AttributionClicked() (string, bool) {
	return m.attrURL, m.attrURL != ""
}

// TileErrAt returns the failure of the tile under the given screen
// position, if any, so hosts can surface it on hover.
func (m *Map) TileErrAt(at geom.Point) error {
	return m.cache.ErrAt(at, m.visible)
}

func (m *Map) drawAttribution(p render.Painter, rect geom.Rect) {
	attribution := m.source.Attribution()
	if attribution == "" {
		m.attrRect = geom.Rect{}
		return
	}
	const size = 12
	w, h := p.MeasureText(attribution, size)
	center := geom.Point{
		X: rect.Max.X - w/2 - 6,
		Y: rect.Max.Y - h/2 - 4,
	}
	p.Text(attribution, center, size, colorAttribution, colorAttributionBack)

	// Remember the notice's footprint (the background box) so Update can
	// route clicks on it to the attribution link.
	m.attrRect = geom.NewRect(center.X-w/2-2, center.Y-h/2-2, w+4, h+4)
}

var (
	colorAttribution     = color.RGBA{40, 40, 40, 255}
	colorAttributionBack = color.RGBA{255, 255, 255, 200}
)

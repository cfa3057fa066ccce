package tiles

import (
	"log/slog"
	"net/http"

	"mapview/geo"
	"mapview/render"
)

// State is the lifecycle state of a cached tile. Transitions are one-way:
// Loading moves to Loaded or Failed exactly once and a resolved tile is
// never refetched for the lifetime of the cache.
type State int

const (
	// StateLoading means the tile's fetch is still in flight.
	StateLoading State = iota

	// StateLoaded means the tile image is ready to draw.
	StateLoaded

	// StateFailed means the fetch or decode failed; the error is kept and
	// the tile is not retried.
	StateFailed
)

// Tile is one cache entry.
type Tile struct {
	state   State
	img     render.Image
	err     error
	pending chan fetchResult
}

// State returns the tile's lifecycle state.
func (t *Tile) State() State { return t.state }

// Image returns the renderable image for a Loaded tile, nil otherwise.
func (t *Tile) Image() render.Image { return t.img }

// Err returns the failure for a Failed tile, nil otherwise.
func (t *Tile) Err() error { return t.err }

// Cache is the keyed store of tile fetch state. It is owned by the frame
// loop and is not safe for concurrent use; the only cross-goroutine traffic
// is each fetch worker writing its single result into the tile's buffered
// channel, which Poll drains without blocking.
//
// The cache never evicts: entries persist until the cache itself is dropped.
// That unbounded growth is a deliberate scoping decision, as is the absence
// of fetch cancellation for tiles that scroll out of view.
type Cache struct {
	tiles     map[geo.TileID]*Tile
	source    Source
	renderer  render.Renderer
	client    *http.Client
	userAgent string
	log       *slog.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithHTTPClient replaces the transport used for tile fetches. Timeouts and
// retries, if wanted, belong on this client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Cache) { c.client = client }
}

// WithLogger replaces the cache's logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Cache) { c.log = log }
}

// WithUserAgent sets the User-Agent header sent with tile requests.
func WithUserAgent(ua string) Option {
	return func(c *Cache) { c.userAgent = ua }
}

// NewCache creates a tile cache for a source. The renderer turns decoded
// tile images into drawable handles.
func NewCache(source Source, renderer render.Renderer, opts ...Option) *Cache {
	c := &Cache{
		tiles:     make(map[geo.TileID]*Tile),
		source:    source,
		renderer:  renderer,
		client:    http.DefaultClient,
		userAgent: UserAgent(),
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Source returns the tile source the cache fetches from.
func (c *Cache) Source() Source { return c.source }

// Len returns the number of cache entries in any state.
func (c *Cache) Len() int { return len(c.tiles) }

// Get returns the cache entry for a tile id, if present.
func (c *Cache) Get(id geo.TileID) (*Tile, bool) {
	t, ok := c.tiles[id]
	return t, ok
}

// EnsureVisible inserts a Loading entry and launches a fetch worker for
// every id not already present. Already-resolved entries, including Failed
// ones, are left alone.
func (c *Cache) EnsureVisible(ids []geo.TileID) {
	for _, id := range ids {
		if _, ok := c.tiles[id]; ok {
			continue
		}
		t := &Tile{state: StateLoading, pending: make(chan fetchResult, 1)}
		c.tiles[id] = t
		go c.fetch(id, t.pending)
	}
}

// Poll advances every Loading entry whose fetch has completed. It never
// blocks; entries whose worker has not finished stay Loading.
func (c *Cache) Poll() {
	for id, t := range c.tiles {
		if t.state != StateLoading {
			continue
		}
		select {
		case res := <-t.pending:
			t.pending = nil
			if res.err != nil {
				t.state = StateFailed
				t.err = res.err
				c.log.Warn("tile fetch failed", "tile", id, "error", res.err)
				continue
			}
			t.state = StateLoaded
			t.img = c.renderer.NewImageFromImage(res.img)
		default:
		}
	}
}

// Loading returns the number of entries still waiting on their fetch.
func (c *Cache) Loading() int {
	n := 0
	for _, t := range c.tiles {
		if t.state == StateLoading {
			n++
		}
	}
	return n
}

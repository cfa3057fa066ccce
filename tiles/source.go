// Package tiles fetches, caches and places raster map tiles.
package tiles

import (
	"fmt"

	"mapview/geo"
)

// Source describes a tile provider: where tiles come from, what attribution
// it requires and where the map should start.
type Source interface {
	// TileURL returns the URL to fetch the given tile from.
	TileURL(id geo.TileID) string

	// Attribution returns the attribution text to show on the map, or ""
	// when the provider requires none.
	Attribution() string

	// AttributionURL returns the link target for the attribution text, or
	// "" when there is none.
	AttributionURL() string

	// DefaultCenter returns the initial map center for this provider.
	DefaultCenter() geo.Pos

	// DefaultZoom returns the initial zoom level for this provider.
	DefaultZoom() uint8
}

// OpenStreetMap serves tiles from the public OpenStreetMap tile server.
type OpenStreetMap struct {
	// BaseURL overrides the tile server root when non-empty.
	BaseURL string
}

func (o OpenStreetMap) baseURL() string {
	if o.BaseURL != "" {
		return o.BaseURL
	}
	return "https://tile.openstreetmap.org"
}

func (o OpenStreetMap) TileURL(id geo.TileID) string {
	return fmt.Sprintf("%s/%d/%d/%d.png", o.baseURL(), id.Z, id.X, id.Y)
}

func (o OpenStreetMap) Attribution() string { return "© OpenStreetMap contributors" }

func (o OpenStreetMap) AttributionURL() string { return "https://www.openstreetmap.org" }

// DefaultCenter returns Helsinki, Finland.
func (o OpenStreetMap) DefaultCenter() geo.Pos { return geo.Pos{Lon: 24.93545, Lat: 60.16952} }

func (o OpenStreetMap) DefaultZoom() uint8 { return 5 }

// Karttapaikka serves the Finnish national land survey raster map. It
// requires an API key.
type Karttapaikka struct {
	APIKey string
}

const karttapaikkaBaseURL = "https://avoin-karttakuva.maanmittauslaitos.fi/avoin/wmts/1.0.0/maastokartta/default/WGS84_Pseudo-Mercator"

// TileURL returns the WMTS tile URL. Note the row/column order: the path is
// z/y/x.
func (k Karttapaikka) TileURL(id geo.TileID) string {
	return fmt.Sprintf("%s/%d/%d/%d.png?api-key=%s", karttapaikkaBaseURL, id.Z, id.Y, id.X, k.APIKey)
}

func (k Karttapaikka) Attribution() string { return "© Maanmittauslaitos" }

func (k Karttapaikka) AttributionURL() string {
	return "https://www.maanmittauslaitos.fi/asioi-verkossa/karttapaikka"
}

func (k Karttapaikka) DefaultCenter() geo.Pos { return geo.Pos{Lon: 24.93545, Lat: 60.16952} }

func (k Karttapaikka) DefaultZoom() uint8 { return 15 }

// URLFunc adapts a plain URL-building function into a Source with no
// attribution and a world-level default view.
type URLFunc func(id geo.TileID) string

func (f URLFunc) TileURL(id geo.TileID) string { return f(id) }

func (f URLFunc) Attribution() string { return "" }

func (f URLFunc) AttributionURL() string { return "" }

func (f URLFunc) DefaultCenter() geo.Pos { return geo.Pos{Lon: 24.93545, Lat: 60.16952} }

func (f URLFunc) DefaultZoom() uint8 { return 2 }

// Package geo holds the geodetic types and Web-Mercator tile math shared by
// the projection, viewport and tile packages.
package geo

import "fmt"

const (
	// TileSize is the edge length of a map tile in pixels.
	TileSize = 256

	// MinZoom is the lowest supported zoom level.
	MinZoom uint8 = 0

	// MaxZoom is the highest supported zoom level.
	MaxZoom uint8 = 19

	// MaxLat is the highest latitude representable in the Web-Mercator
	// projection. Latitudes outside [-MaxLat, MaxLat] are not valid inputs
	// to the tile math; callers clamp before converting.
	MaxLat = 85.0511287798
)

// Pos is a geographical coordinate in degrees.
type Pos struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// ClampLat returns a copy of p with the latitude clamped to the
// Mercator-valid range. The conversion functions themselves do not clamp,
// so that they stay exact inverses of each other.
func (p Pos) ClampLat() Pos {
	if p.Lat > MaxLat {
		p.Lat = MaxLat
	} else if p.Lat < -MaxLat {
		p.Lat = -MaxLat
	}
	return p
}

// TileID identifies a map tile by zoom level and tile indices. It is a value
// type and is used directly as a cache key.
type TileID struct {
	Z uint8
	X uint32
	Y uint32
}

func (t TileID) String() string {
	return fmt.Sprintf("%d/%d/%d", t.Z, t.X, t.Y)
}

package geo

import "math"

// The functions below convert between degrees and fractional tile
// coordinates at a given zoom level, using the standard Web-Mercator tile
// formulas. A world at zoom z is 2^z tiles wide and tall; tile coordinates
// grow east and south.
//
// LatToY and YToLat are exact algebraic inverses only for latitudes within
// [-MaxLat, MaxLat]; inputs outside that range are the caller's problem.

// ZoomScale returns the world size in tiles at the given zoom level.
func ZoomScale(zoom uint8) float64 {
	return math.Exp2(float64(zoom))
}

// LonToX converts longitude to the x tile coordinate at a zoom level.
func LonToX(lon float64, zoom uint8) float64 {
	return (lon + 180.0) / 360.0 * ZoomScale(zoom)
}

// LatToY converts latitude to the y tile coordinate at a zoom level.
func LatToY(lat float64, zoom uint8) float64 {
	rad := lat * math.Pi / 180.0
	return (1.0 - math.Asinh(math.Tan(rad))/math.Pi) / 2.0 * ZoomScale(zoom)
}

// XToLon converts an x tile coordinate back to longitude.
func XToLon(x float64, zoom uint8) float64 {
	return x/ZoomScale(zoom)*360.0 - 180.0
}

// YToLat converts a y tile coordinate back to latitude.
func YToLat(y float64, zoom uint8) float64 {
	n := math.Pi - 2.0*math.Pi*y/ZoomScale(zoom)
	return math.Atan(math.Sinh(n)) * 180.0 / math.Pi
}

// TileAt returns the tile containing the given position at a zoom level.
func TileAt(pos Pos, zoom uint8) TileID {
	x := math.Floor(LonToX(pos.Lon, zoom))
	y := math.Floor(LatToY(pos.Lat, zoom))
	max := ZoomScale(zoom) - 1
	if x < 0 {
		x = 0
	} else if x > max {
		x = max
	}
	if y < 0 {
		y = 0
	} else if y > max {
		y = max
	}
	return TileID{Z: zoom, X: uint32(x), Y: uint32(y)}
}

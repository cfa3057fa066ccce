package layers

import (
	"fmt"
	"image/color"
)

// Stroke is a line style: width in pixels and color.
type Stroke struct {
	Width float32
	Color color.RGBA
}

// Common colors used by the layer defaults.
var (
	colorRed         = color.RGBA{255, 0, 0, 255}
	colorGreen       = color.RGBA{0, 128, 0, 255}
	colorBlack       = color.RGBA{0, 0, 0, 255}
	colorTransparent = color.RGBA{}
)

// HexColor renders a color as a #rrggbbaa string, the format used in
// GeoJSON style properties.
func HexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// ParseHexColor parses #rrggbb and #rrggbbaa strings.
func ParseHexColor(s string) (color.RGBA, error) {
	if len(s) == 0 || s[0] != '#' {
		return color.RGBA{}, fmt.Errorf("hex color %q must start with '#'", s)
	}
	hex := s[1:]

	var c color.RGBA
	switch len(hex) {
	case 6:
		if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &c.R, &c.G, &c.B); err != nil {
			return color.RGBA{}, fmt.Errorf("hex color %q: %w", s, err)
		}
		c.A = 255
	case 8:
		if _, err := fmt.Sscanf(hex, "%02x%02x%02x%02x", &c.R, &c.G, &c.B, &c.A); err != nil {
			return color.RGBA{}, fmt.Errorf("hex color %q: %w", s, err)
		}
	default:
		return color.RGBA{}, fmt.Errorf("hex color %q has invalid length", s)
	}
	return c, nil
}

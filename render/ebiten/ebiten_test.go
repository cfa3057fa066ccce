package ebiten

import "testing"

func TestMeasureTextCountsRunes(t *testing.T) {
	p := NewPainter(nil)

	// At size 13 the debug font renders unscaled 6x13 glyphs.
	w, h := p.MeasureText("abcd", 13)
	if w != 24 || h != 13 {
		t.Errorf("MeasureText(\"abcd\", 13) = (%v, %v), want (24, 13)", w, h)
	}

	// Multi-byte runes occupy one glyph cell each.
	ascii, _ := p.MeasureText("aaa", 13)
	multi, _ := p.MeasureText("äää", 13)
	if ascii != multi {
		t.Errorf("width %v for ascii vs %v for multi-byte, want equal", ascii, multi)
	}
}

// Package ebiten is the Ebitengine rendering backend for the map widget.
package ebiten

import (
	"image"
	"image/color"
	"unicode/utf8"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"mapview/geom"
	"mapview/render"
)

// whiteSubImage is the 1x1 source for solid triangle fills. The 3x3 parent
// avoids bleeding from the texture atlas edges.
var whiteSubImage = func() *ebiten.Image {
	img := ebiten.NewImage(3, 3)
	img.Fill(color.White)
	return img.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
}()

// Renderer implements render.Renderer on Ebitengine.
type Renderer struct{}

// NewRenderer creates the Ebitengine image factory.
func NewRenderer() render.Renderer { return Renderer{} }

// NewImageFromImage uploads a decoded image as an Ebitengine texture.
func (Renderer) NewImageFromImage(img image.Image) render.Image {
	return &Image{img: ebiten.NewImageFromImage(img)}
}

// Image wraps an ebiten.Image to implement render.Image.
type Image struct {
	img *ebiten.Image
}

// Size returns the image dimensions in pixels.
func (i *Image) Size() (width, height int) {
	b := i.img.Bounds()
	return b.Dx(), b.Dy()
}

// Dispose releases the texture.
func (i *Image) Dispose() {
	i.img.Deallocate()
}

// Debug font metrics used for label layout.
const (
	glyphWidth  = 6
	glyphHeight = 13
)

// Painter implements render.Painter, drawing into one destination image
// for the current frame.
type Painter struct {
	dst *ebiten.Image
}

// NewPainter creates a painter targeting the given frame image.
func NewPainter(dst *ebiten.Image) *Painter {
	return &Painter{dst: dst}
}

// FillRect implements render.Painter.
func (p *Painter) FillRect(r geom.Rect, clr color.Color) {
	vector.DrawFilledRect(p.dst,
		float32(r.Min.X), float32(r.Min.Y),
		float32(r.Width()), float32(r.Height()), clr, false)
}

// StrokeRect implements render.Painter.
func (p *Painter) StrokeRect(r geom.Rect, width float32, clr color.Color) {
	vector.StrokeRect(p.dst,
		float32(r.Min.X), float32(r.Min.Y),
		float32(r.Width()), float32(r.Height()), width, clr, false)
}

// Line implements render.Painter.
func (p *Painter) Line(points []geom.Point, width float32, clr color.Color) {
	for i := 0; i < len(points)-1; i++ {
		a, b := points[i], points[i+1]
		vector.StrokeLine(p.dst,
			float32(a.X), float32(a.Y),
			float32(b.X), float32(b.Y), width, clr, true)
	}
}

// FillCircle implements render.Painter.
func (p *Painter) FillCircle(center geom.Point, radius float32, clr color.Color) {
	vector.DrawFilledCircle(p.dst, float32(center.X), float32(center.Y), radius, clr, true)
}

// StrokeCircle implements render.Painter.
func (p *Painter) StrokeCircle(center geom.Point, radius, width float32, clr color.Color) {
	vector.StrokeCircle(p.dst, float32(center.X), float32(center.Y), radius, width, clr, true)
}

// FillMesh implements render.Painter by drawing the triangles over a white
// pixel tinted with the fill color.
func (p *Painter) FillMesh(vertices []geom.Point, indices []uint16, clr color.Color) {
	r, g, b, a := clr.RGBA()
	cr := float32(r) / 0xffff
	cg := float32(g) / 0xffff
	cb := float32(b) / 0xffff
	ca := float32(a) / 0xffff

	vs := make([]ebiten.Vertex, len(vertices))
	for i, v := range vertices {
		vs[i] = ebiten.Vertex{
			DstX:   float32(v.X),
			DstY:   float32(v.Y),
			SrcX:   1,
			SrcY:   1,
			ColorR: cr,
			ColorG: cg,
			ColorB: cb,
			ColorA: ca,
		}
	}
	p.dst.DrawTriangles(vs, indices, whiteSubImage, &ebiten.DrawTrianglesOptions{
		AntiAlias: true,
	})
}

// DrawImage implements render.Painter.
func (p *Painter) DrawImage(img render.Image, at geom.Point) {
	opts := &ebiten.DrawImageOptions{}
	opts.GeoM.Translate(at.X, at.Y)
	p.dst.DrawImage(img.(*Image).img, opts)
}

// DrawImageTinted implements render.Painter.
func (p *Painter) DrawImageTinted(img render.Image, at geom.Point, tint color.Color) {
	opts := &ebiten.DrawImageOptions{}
	opts.GeoM.Translate(at.X, at.Y)
	opts.ColorScale.ScaleWithColor(tint)
	p.dst.DrawImage(img.(*Image).img, opts)
}

// Text implements render.Painter. The debug font is rendered to a scratch
// image, then scaled and tinted into place over the background box.
func (p *Painter) Text(s string, center geom.Point, size float64, clr, background color.Color) {
	if s == "" {
		return
	}
	w, h := p.MeasureText(s, size)

	if _, _, _, a := background.RGBA(); a > 0 {
		p.FillRect(geom.NewRect(center.X-w/2-2, center.Y-h/2-2, w+4, h+4), background)
	}

	scratch := ebiten.NewImage(len(s)*glyphWidth+1, glyphHeight+3)
	ebitenutil.DebugPrint(scratch, s)

	scale := size / glyphHeight
	opts := &ebiten.DrawImageOptions{}
	opts.GeoM.Scale(scale, scale)
	opts.GeoM.Translate(center.X-w/2, center.Y-h/2)
	opts.ColorScale.ScaleWithColor(clr)
	p.dst.DrawImage(scratch, opts)
	scratch.Deallocate()
}

// MeasureText implements render.Painter using the debug font's fixed glyph
// metrics.
func (p *Painter) MeasureText(s string, size float64) (width, height float64) {
	scale := size / glyphHeight
	return float64(utf8.RuneCountInString(s)*glyphWidth) * scale, size
}

// RequestRedraw implements render.Painter. Ebitengine redraws every frame,
// so nothing needs to be scheduled.
func (p *Painter) RequestRedraw() {}

// Package render abstracts the host surface the map draws to and receives
// input from. This allows swapping rendering backends without changing the
// map logic; the ebiten subpackage provides the default backend.
package render

import (
	"image"
	"image/color"

	"mapview/geom"
)

// Image represents a renderable image handle owned by a backend, such as a
// decoded map tile uploaded as a texture.
type Image interface {
	// Size returns the width and height of the image in pixels.
	Size() (width, height int)

	// Dispose releases backend resources held by the image.
	Dispose()
}

// Renderer creates backend image handles.
type Renderer interface {
	// NewImageFromImage uploads a decoded image to the backend.
	NewImageFromImage(img image.Image) Image
}

// Painter is the drawing-command sink the map and its layers emit into.
// All coordinates are in screen space.
type Painter interface {
	// FillRect fills a rectangle.
	FillRect(r geom.Rect, clr color.Color)

	// StrokeRect outlines a rectangle.
	StrokeRect(r geom.Rect, width float32, clr color.Color)

	// Line strokes an open polyline through the given points.
	Line(points []geom.Point, width float32, clr color.Color)

	// FillCircle fills a circle.
	FillCircle(center geom.Point, radius float32, clr color.Color)

	// StrokeCircle outlines a circle.
	StrokeCircle(center geom.Point, radius, width float32, clr color.Color)

	// FillMesh fills a triangulated polygon. The indices reference the
	// vertex slice in groups of three.
	FillMesh(vertices []geom.Point, indices []uint16, clr color.Color)

	// DrawImage draws an image with its top-left corner at the given point.
	DrawImage(img Image, at geom.Point)

	// DrawImageTinted draws an image with its colors multiplied by tint.
	DrawImageTinted(img Image, at geom.Point, tint color.Color)

	// Text draws a text label centered at the given point, over a rounded
	// background box. size is the glyph height in pixels.
	Text(s string, center geom.Point, size float64, clr, background color.Color)

	// MeasureText returns the on-screen size of a label at the given glyph
	// height, without drawing it.
	MeasureText(s string, size float64) (width, height float64)

	// RequestRedraw asks the host for another frame soon, e.g. while tiles
	// are still loading.
	RequestRedraw()
}

// TextMeasurer provides text metrics outside of drawing, e.g. for
// hit-testing labels during input handling. Painter satisfies it.
type TextMeasurer interface {
	MeasureText(s string, size float64) (width, height float64)
}

// Pointer is the per-frame snapshot of the pointing device over the widget.
type Pointer struct {
	// Pos is the pointer position in screen coordinates.
	Pos geom.Point

	// Hovered reports whether the pointer is over the widget.
	Hovered bool

	// Clicked and DoubleClicked fire on the frame the gesture completes.
	Clicked       bool
	DoubleClicked bool

	// Drag gesture flags. DragDelta is the screen-space movement since the
	// previous frame while dragging.
	DragStarted bool
	Dragging    bool
	DragStopped bool
	DragDelta   geom.Point

	// Scroll is the discrete wheel movement this frame; positive is up.
	Scroll int

	// Shift reports whether the shift modifier is held.
	Shift bool
}

// Frame is everything the host hands the map for one frame: the widget
// rectangle and the pointer snapshot.
type Frame struct {
	Rect    geom.Rect
	Pointer Pointer
}

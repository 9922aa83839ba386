// Package overlay draws meter shapes onto a compositor surface.
package overlay

import (
	"image"
	"image/color"

	"github.com/DaniruKun/boostmeter-overlay/render"
)

// Brush is a solid color created by a Canvas. A zero alpha draws nothing.
type Brush struct {
	Color color.RGBA
}

func (b Brush) Transparent() bool {
	return b.Color.A == 0
}

// Canvas is the set of primitives the meters are drawn with. Implementations
// are only used from the render loop.
type Canvas interface {
	Size() image.Point
	Clear()

	CreateSolidBrush(r, g, b, a uint8) Brush
	ReleaseBrush(b Brush)

	FillRectangle(b Brush, r render.Rect)
	DrawRectangle(b Brush, r render.Rect, stroke float64)
	// DrawHorizontalProgressBar fills `percentage` (0-100) of r from the left
	// with fill and outlines the whole of r.
	DrawHorizontalProgressBar(outline, fill Brush, r render.Rect, stroke, percentage float64)

	FillPath(b Brush, p render.Path)
	DrawPath(b Brush, p render.Path, stroke float64)
}

// Callbacks are invoked by a compositor on its render loop.
type Callbacks struct {
	// Setup runs once before the first frame.
	Setup func(c Canvas)
	// Draw runs once per frame on a cleared canvas.
	Draw func(c Canvas)
	// Destroy runs after the last frame.
	Destroy func(c Canvas)
}

// progressRect returns the part of r covered by `percentage`, clamped to 0-100.
func progressRect(r render.Rect, percentage float64) render.Rect {
	if percentage < 0 {
		percentage = 0
	}
	if percentage > 100 {
		percentage = 100
	}
	r.W = r.W * percentage / 100
	return r
}

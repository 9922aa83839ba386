package overlay

import (
	"github.com/DaniruKun/boostmeter-overlay/render"
)

// Draw puts one meter on the canvas. Rectangles get a gray background and a
// progress fill, arcs a gray full sector with the filled sector on top, both
// outlined in black.
func Draw(c Canvas, s render.Shape, b *Brushes) {
	fill := b.ForColor(s.Color)

	if s.Style.IsArc() {
		full := s.Full.Path()
		c.FillPath(b.Gray, full)
		c.FillPath(fill, s.Filled.Path())
		c.DrawPath(b.Black, full, s.Stroke)
		return
	}

	c.FillRectangle(b.Gray, s.Bar)
	c.DrawHorizontalProgressBar(b.Black, fill, s.Bar, s.Stroke, s.Progress*100)
}

// DrawDebugBox outlines the area the meters were found in.
func DrawDebugBox(c Canvas, r render.Rect, b *Brushes) {
	c.DrawRectangle(b.Blue, r, 2)
}

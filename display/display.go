package display

import "math"

const (
	// Screen width on which UI element sizes were originally authored
	BaseScreenWidth = 1920
	// Screen height on which UI element sizes were originally authored
	BaseScreenHeight = 1080
)

// Window is the position and size of the captured window in screen coordinates.
type Window struct {
	X, Y, Width, Height int
}

// Geometry describes the desktop resolution and the resolution the source
// application renders at. The two differ when the application is letterboxed.
// All four values are either zero (nothing captured yet) or all positive.
type Geometry struct {
	SystemWidth  int // Width of the desktop
	SystemHeight int // Height of the desktop
	RenderWidth  int // Width at which the source application renders
	RenderHeight int // Height at which the source application renders
}

// Reference returns a geometry matching the reference resolution on both sides.
func Reference() Geometry {
	return Geometry{
		SystemWidth:  BaseScreenWidth,
		SystemHeight: BaseScreenHeight,
		RenderWidth:  BaseScreenWidth,
		RenderHeight: BaseScreenHeight,
	}
}

// Valid reports whether the geometry has been populated. Scale functions must
// not be called on an invalid geometry.
func (g Geometry) Valid() bool {
	return g.SystemWidth > 0 && g.SystemHeight > 0 && g.RenderWidth > 0 && g.RenderHeight > 0
}

// Horizontal letterbox margin between the desktop and the rendered area
func (g Geometry) OffsetX() int {
	return (g.SystemWidth - g.RenderWidth) / 2
}

// Vertical letterbox margin between the desktop and the rendered area
func (g Geometry) OffsetY() int {
	return (g.SystemHeight - g.RenderHeight) / 2
}

func uiScale(base, system, render, viewport float64) float64 {
	return system / base * (viewport / render)
}

// ScaleX returns the horizontal factor that makes UI elements authored at the
// reference resolution look the same size on a viewport `viewportWidth` wide.
func (g Geometry) ScaleX(viewportWidth float64) float64 {
	return uiScale(BaseScreenWidth, float64(g.SystemWidth), float64(g.RenderWidth), viewportWidth)
}

// ScaleY is the vertical counterpart of ScaleX.
func (g Geometry) ScaleY(viewportHeight float64) float64 {
	return uiScale(BaseScreenHeight, float64(g.SystemHeight), float64(g.RenderHeight), viewportHeight)
}

// Scale returns the smaller of ScaleX and ScaleY so elements fit in both directions.
func (g Geometry) Scale(viewportWidth, viewportHeight float64) float64 {
	return math.Min(g.ScaleX(viewportWidth), g.ScaleY(viewportHeight))
}

// RenderScale is the size of one reference pixel of the source UI inside a
// captured frame. The source application lays its HUD out against the render
// resolution, so desktop scaling does not apply here.
func (g Geometry) RenderScale() float64 {
	return math.Min(
		float64(g.RenderWidth)/BaseScreenWidth,
		float64(g.RenderHeight)/BaseScreenHeight,
	)
}

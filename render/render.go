package render

import (
	"github.com/DaniruKun/boostmeter-overlay/display"
	"github.com/DaniruKun/boostmeter-overlay/imgproc"
	"github.com/DaniruKun/boostmeter-overlay/meter"
)

// Sizes of the drawn meters at the reference resolution
const (
	BaseBarWidth           = 20.0
	BaseBarHeight          = 100.0
	BaseSpacingBetweenBars = 10.0
	BaseBarPitch           = BaseBarWidth + BaseSpacingBetweenBars

	BaseInnerRadius = 65.0
	BaseOuterRadius = 85.0
	BaseRadialStep  = 30.0

	BaseStroke = 3.0
)

// Shape is one meter ready for the compositor.
type Shape struct {
	Style Style

	// Rectangle style
	Bar      Rect
	Progress float64 // Filled fraction of Bar, left to right

	// Arc styles
	Full   Sector
	Filled Sector

	Color  meter.RGB
	Stroke float64
}

// Renderer turns fill values into shapes. It holds no per frame state.
type Renderer struct {
	Style          Style
	ArcStartAngle  float64 // Degrees
	ArcEndAngle    float64 // Degrees
	DriftDirection float64 // +1 or -1, the side of the screen the meters are mirrored to
	Palette        meter.Palette
}

// Bar computes the shape of meter `meterIndex` holding `fill`, positioned
// relative to `anchor`. Every meter of a frame must use the same geometry.
// The viewport is the render resolution of `geo`.
func (r Renderer) Bar(geo display.Geometry, meterIndex int, fill float64, anchor Point) Shape {
	viewportW := float64(geo.RenderWidth)
	viewportH := float64(geo.RenderHeight)
	uiScale := geo.ScaleY(viewportH)

	shape := Shape{
		Style:  r.Style,
		Color:  r.Palette.ColorFor(fill),
		Stroke: BaseStroke * uiScale,
	}

	if r.Style.IsArc() {
		shape.Full, shape.Filled = r.arc(meterIndex, fill, anchor, viewportW, viewportH, uiScale)
	} else {
		shape.Bar = r.rectangle(meterIndex, anchor, viewportW, uiScale)
		shape.Progress = fill / meter.MaxValue
	}
	return shape
}

func (r Renderer) drift() float64 {
	if r.DriftDirection < 0 {
		return -1
	}
	return 1
}

func (r Renderer) rectangle(meterIndex int, anchor Point, viewportW, uiScale float64) Rect {
	drift := r.drift()
	barW := BaseBarWidth * uiScale
	barH := BaseBarHeight * uiScale
	pitch := BaseBarPitch * uiScale

	// the middle bar is centered on the anchor
	center := float64(imgproc.MeterCount-1) / 2
	localX := -barW/2 + (float64(meterIndex)-center)*pitch
	if drift < 0 {
		// reverse the fill order when mirrored
		localX = -localX - barW
	}

	xOffset := viewportW / 10 * drift
	yOffset := -2 * barH

	return Rect{
		X: anchor.X + localX + xOffset,
		Y: anchor.Y + yOffset,
		W: barW,
		H: barH,
	}
}

// SweepAngles returns the start and end angle in degrees of meter `meterIndex`
// after mirroring and, for StyleArcsSameLength, equal length trimming.
func (r Renderer) SweepAngles(meterIndex int, uiScale float64) (float64, float64) {
	drift := r.drift()
	baseDelta := r.ArcEndAngle - r.ArcStartAngle

	start, end := r.ArcStartAngle, r.ArcEndAngle
	if drift < 0 {
		start = 180 - start
		end = 180 - end
	}

	if r.Style == StyleArcsSameLength {
		baseOuter := BaseOuterRadius * uiScale
		outer := baseOuter + float64(meterIndex)*BaseRadialStep*uiScale
		needed := baseOuter * baseDelta / outer
		trim := (baseDelta - needed) / 2
		start += trim * drift
		end -= trim * drift
	}
	return start, end
}

func (r Renderer) arc(meterIndex int, fill float64, anchor Point, viewportW, viewportH, uiScale float64) (Sector, Sector) {
	drift := r.drift()

	extra := float64(meterIndex) * BaseRadialStep * uiScale
	inner := BaseInnerRadius*uiScale + extra
	outer := BaseOuterRadius*uiScale + extra

	start, end := r.SweepAngles(meterIndex, uiScale)
	delta := end - start

	center := Point{
		X: anchor.X + viewportW/25*drift,
		Y: anchor.Y - viewportH/5,
	}

	full := Sector{
		Center: center,
		Inner:  inner,
		Outer:  outer,
		Start:  DegreesToRadians(start),
		End:    DegreesToRadians(end),
	}
	filled := full
	filled.End = DegreesToRadians(start + delta*fill/meter.MaxValue)
	return full, filled
}

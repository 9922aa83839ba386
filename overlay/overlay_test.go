package overlay

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/DaniruKun/boostmeter-overlay/display"
	"github.com/DaniruKun/boostmeter-overlay/meter"
	"github.com/DaniruKun/boostmeter-overlay/render"
)

// recorder logs every primitive it is asked to draw.
type recorder struct {
	ops      []string
	created  int
	released int
}

func (r *recorder) Size() image.Point { return image.Pt(1920, 1080) }
func (r *recorder) Clear()            { r.ops = nil }

func (r *recorder) CreateSolidBrush(red, g, b, a uint8) Brush {
	r.created++
	return Brush{Color: color.RGBA{red, g, b, a}}
}

func (r *recorder) ReleaseBrush(Brush) { r.released++ }

func hex(b Brush) string {
	return fmt.Sprintf("%02X%02X%02X", b.Color.R, b.Color.G, b.Color.B)
}

func (r *recorder) FillRectangle(b Brush, _ render.Rect) {
	r.ops = append(r.ops, "fillrect "+hex(b))
}

func (r *recorder) DrawRectangle(b Brush, _ render.Rect, _ float64) {
	r.ops = append(r.ops, "rect "+hex(b))
}

func (r *recorder) DrawHorizontalProgressBar(outline, fill Brush, _ render.Rect, _, pct float64) {
	r.ops = append(r.ops, fmt.Sprintf("progress %s %s %.0f", hex(outline), hex(fill), pct))
}

func (r *recorder) FillPath(b Brush, _ render.Path) {
	r.ops = append(r.ops, "fillpath "+hex(b))
}

func (r *recorder) DrawPath(b Brush, _ render.Path, _ float64) {
	r.ops = append(r.ops, "path "+hex(b))
}

func equalOps(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestDrawRectangle(t *testing.T) {
	c := &recorder{}
	b := NewBrushes(c)
	red := meter.RGB{R: 255}

	shape := render.Shape{
		Style:    render.StyleRectangle,
		Bar:      render.Rect{X: 10, Y: 10, W: 20, H: 100},
		Progress: 0.5,
		Color:    red,
		Stroke:   3,
	}

	// the meter color does not exist yet, black stands in for it
	Draw(c, shape, b)
	want := []string{"fillrect 808080", "progress 000000 000000 50"}
	if !equalOps(c.ops, want) {
		t.Errorf("got %v, want %v", c.ops, want)
	}

	b.CreatePending(c)
	c.Clear()
	Draw(c, shape, b)
	want = []string{"fillrect 808080", "progress 000000 FF0000 50"}
	if !equalOps(c.ops, want) {
		t.Errorf("got %v, want %v", c.ops, want)
	}
}

func TestDrawArc(t *testing.T) {
	c := &recorder{}
	b := NewBrushes(c)
	green := meter.RGB{G: 255}
	b.Meter.Request(green)
	b.CreatePending(c)

	shape := render.Shape{
		Style:  render.StyleArcsSameAngles,
		Full:   render.Sector{Inner: 65, Outer: 85, Start: 0, End: 1},
		Filled: render.Sector{Inner: 65, Outer: 85, Start: 0, End: 0.5},
		Color:  green,
		Stroke: 3,
	}
	Draw(c, shape, b)

	want := []string{"fillpath 808080", "fillpath 00FF00", "path 000000"}
	if !equalOps(c.ops, want) {
		t.Errorf("got %v, want %v", c.ops, want)
	}
}

func TestBrushesRelease(t *testing.T) {
	c := &recorder{}
	b := NewBrushes(c)
	if c.created != 10 {
		t.Errorf("created %d fixed brushes, want 10", c.created)
	}

	b.ForColor(meter.RGB{R: 1})
	b.ForColor(meter.RGB{R: 2})
	b.ForColor(meter.RGB{R: 2})
	b.CreatePending(c)
	if c.created != 12 {
		t.Errorf("created %d brushes, want 12", c.created)
	}

	b.Release(c)
	if c.released != c.created {
		t.Errorf("released %d of %d brushes", c.released, c.created)
	}
}

func TestProgressRect(t *testing.T) {
	r := render.Rect{X: 5, Y: 5, W: 40, H: 10}

	tests := []struct {
		pct  float64
		want float64
	}{
		{0, 0},
		{25, 10},
		{100, 40},
		{130, 40},
		{-5, 0},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.pct), func(t *testing.T) {
			got := progressRect(r, tt.pct)
			if math.Abs(got.W-tt.want) > 1e-9 || got.X != r.X || got.H != r.H {
				t.Errorf("got %+v, want width %v", got, tt.want)
			}
		})
	}
}

func TestMatCanvas(t *testing.T) {
	c := NewMatCanvas(100, 50, ColorKey)
	defer c.Close()

	if got := c.Size(); got != image.Pt(100, 50) {
		t.Fatalf("got size %v", got)
	}

	red := c.CreateSolidBrush(255, 0, 0, 255)
	c.FillRectangle(red, render.Rect{X: 10, Y: 10, W: 20, H: 20})

	// Mat is BGR
	mat := c.Mat()
	px := mat.GetVecbAt(15, 15)
	if px[0] != 0 || px[1] != 0 || px[2] != 255 {
		t.Errorf("got %v inside the rectangle", px)
	}
	px = mat.GetVecbAt(40, 80)
	if px[0] != ColorKey.B || px[1] != ColorKey.G || px[2] != ColorKey.R {
		t.Errorf("got %v outside the rectangle, want the color key", px)
	}

	c.FillRectangle(c.CreateSolidBrush(0, 0, 0, 0), render.Rect{X: 0, Y: 0, W: 100, H: 50})
	if mat := c.Mat(); mat.GetVecbAt(15, 15)[2] != 255 {
		t.Error("a transparent brush painted over the canvas")
	}

	c.Resize(200, 80)
	if got := c.Size(); got != image.Pt(200, 80) {
		t.Errorf("got size %v after resize", got)
	}
}

func TestMatCanvasLiveBrushes(t *testing.T) {
	c := NewMatCanvas(10, 10, ColorKey)
	defer c.Close()

	b := NewBrushes(c)
	b.Meter.Request(meter.RGB{R: 1, G: 2, B: 3})
	b.CreatePending(c)
	if got := c.LiveBrushes(); got != 11 {
		t.Errorf("got %d live brushes, want 10 fixed and 1 meter color", got)
	}

	b.Release(c)
	if got := c.LiveBrushes(); got != 0 {
		t.Errorf("got %d live brushes after release", got)
	}
}

func TestWindowFollow(t *testing.T) {
	w := NewWindow("test", 0)
	if w.FPS != DefaultFPS {
		t.Errorf("got fps %d, want %d", w.FPS, DefaultFPS)
	}

	w.Follow(display.Window{X: 10, Y: 20, Width: 640, Height: 360})
	if got := *w.target.Load(); got.Width != 640 || got.X != 10 {
		t.Errorf("got target %+v", got)
	}
}

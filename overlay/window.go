package overlay

import (
	"context"
	"image"
	"image/color"
	"math"
	"runtime"
	"sync/atomic"
	"time"

	"gocv.io/x/gocv"

	"github.com/DaniruKun/boostmeter-overlay/display"
	"github.com/DaniruKun/boostmeter-overlay/internal/log"
	"github.com/DaniruKun/boostmeter-overlay/render"
)

const (
	DefaultFPS = 60

	// Segments per curve when filling or stroking a path
	curveSteps = 24
)

// ColorKey fills everything not covered by a meter. Keying it out in the
// window manager or a streaming tool leaves only the meters visible.
var ColorKey = color.RGBA{255, 0, 255, 0}

// MatCanvas draws into a BGR Mat.
type MatCanvas struct {
	mat gocv.Mat
	key color.RGBA

	live int // Brushes created and not yet released
}

func NewMatCanvas(width, height int, key color.RGBA) *MatCanvas {
	c := &MatCanvas{key: key}
	c.mat = gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC3)
	c.Clear()
	return c
}

// Resize replaces the backing Mat when the size changes.
func (c *MatCanvas) Resize(width, height int) {
	if width <= 0 || height <= 0 || (width == c.mat.Cols() && height == c.mat.Rows()) {
		return
	}
	c.mat.Close()
	c.mat = gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC3)
	c.Clear()
}

func (c *MatCanvas) Mat() gocv.Mat {
	return c.mat
}

func (c *MatCanvas) Close() error {
	return c.mat.Close()
}

func (c *MatCanvas) Size() image.Point {
	return image.Pt(c.mat.Cols(), c.mat.Rows())
}

func (c *MatCanvas) Clear() {
	c.mat.SetTo(gocv.NewScalar(float64(c.key.B), float64(c.key.G), float64(c.key.R), 0))
}

func (c *MatCanvas) CreateSolidBrush(r, g, b, a uint8) Brush {
	c.live++
	return Brush{Color: color.RGBA{r, g, b, a}}
}

func (c *MatCanvas) ReleaseBrush(Brush) {
	c.live--
}

// LiveBrushes returns how many brushes were created and not released.
func (c *MatCanvas) LiveBrushes() int {
	return c.live
}

func thickness(stroke float64) int {
	return max(1, int(math.Round(stroke)))
}

func (c *MatCanvas) FillRectangle(b Brush, r render.Rect) {
	if b.Transparent() || r.W <= 0 || r.H <= 0 {
		return
	}
	gocv.Rectangle(&c.mat, r.Image(), b.Color, -1)
}

func (c *MatCanvas) DrawRectangle(b Brush, r render.Rect, stroke float64) {
	if b.Transparent() {
		return
	}
	gocv.Rectangle(&c.mat, r.Image(), b.Color, thickness(stroke))
}

func (c *MatCanvas) DrawHorizontalProgressBar(outline, fill Brush, r render.Rect, stroke, percentage float64) {
	c.FillRectangle(fill, progressRect(r, percentage))
	c.DrawRectangle(outline, r, stroke)
}

func flatten(p render.Path) gocv.PointsVector {
	pts := p.Flatten(curveSteps)
	poly := make([]image.Point, len(pts))
	for i, pt := range pts {
		poly[i] = pt.Image()
	}
	return gocv.NewPointsVectorFromPoints([][]image.Point{poly})
}

func (c *MatCanvas) FillPath(b Brush, p render.Path) {
	if b.Transparent() {
		return
	}
	pv := flatten(p)
	defer pv.Close()
	gocv.FillPoly(&c.mat, pv, b.Color)
}

func (c *MatCanvas) DrawPath(b Brush, p render.Path, stroke float64) {
	if b.Transparent() {
		return
	}
	pv := flatten(p)
	defer pv.Close()
	gocv.Polylines(&c.mat, pv, true, b.Color, thickness(stroke))
}

// Window is a top level gocv window kept on top of the source window.
type Window struct {
	Title string
	FPS   int

	target atomic.Pointer[display.Window]
}

func NewWindow(title string, fps int) *Window {
	if fps <= 0 {
		fps = DefaultFPS
	}
	return &Window{Title: title, FPS: fps}
}

// Follow moves and resizes the overlay to `w` on the next frame. Safe to call
// from any goroutine.
func (w *Window) Follow(win display.Window) {
	w.target.Store(&win)
}

// Run owns the window until ctx is done. All callbacks run on the calling
// goroutine, which is locked to its OS thread as the GUI backend requires.
func (w *Window) Run(ctx context.Context, cb Callbacks) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	win := gocv.NewWindow(w.Title)
	defer win.Close()

	canvas := NewMatCanvas(display.BaseScreenWidth, display.BaseScreenHeight, ColorKey)
	defer canvas.Close()
	defer func() {
		if n := canvas.LiveBrushes(); n != 0 {
			log.Warn("brushes left unreleased at teardown", "count", n)
		}
	}()

	if cb.Setup != nil {
		cb.Setup(canvas)
	}
	if cb.Destroy != nil {
		defer cb.Destroy(canvas)
	}

	ticker := time.NewTicker(time.Second / time.Duration(w.FPS))
	defer ticker.Stop()

	var placed display.Window
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		if t := w.target.Load(); t != nil && *t != placed {
			placed = *t
			win.MoveWindow(placed.X, placed.Y)
			win.ResizeWindow(placed.Width, placed.Height)
			canvas.Resize(placed.Width, placed.Height)
		}

		canvas.Clear()
		if cb.Draw != nil {
			cb.Draw(canvas)
		}
		win.IMShow(canvas.Mat())
		win.WaitKey(1)
	}
}

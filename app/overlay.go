// Package app ties frame capture, meter analysis and drawing together.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/DaniruKun/boostmeter-overlay/capture"
	"github.com/DaniruKun/boostmeter-overlay/display"
	"github.com/DaniruKun/boostmeter-overlay/imgproc"
	"github.com/DaniruKun/boostmeter-overlay/internal/log"
	"github.com/DaniruKun/boostmeter-overlay/meter"
	"github.com/DaniruKun/boostmeter-overlay/overlay"
	"github.com/DaniruKun/boostmeter-overlay/render"
)

// Interval between FPS log lines
const fpsLogInterval = 5 * time.Second

// Compositor owns the overlay surface and calls back on its render loop.
type Compositor interface {
	Run(ctx context.Context, cb overlay.Callbacks) error
	Follow(w display.Window)
}

// Overlay reads meters from captured frames and redraws them on a compositor.
type Overlay struct {
	cfg      Config
	search   imgproc.Config
	renderer render.Renderer

	state      *meter.State
	capturer   *capture.Capturer
	compositor Compositor

	// Only touched on the render loop
	brushes *overlay.Brushes

	debugSaved atomic.Bool

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func New(cfg Config, source capture.Source, compositor Compositor) (*Overlay, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	renderer, err := cfg.Renderer()
	if err != nil {
		return nil, err
	}

	o := &Overlay{
		cfg:        cfg,
		search:     cfg.SearchConfig(),
		renderer:   renderer,
		state:      meter.NewState(),
		capturer:   capture.NewCapturer(source),
		compositor: compositor,
	}
	o.state.Publish(meter.Snapshot{Geometry: display.Reference()})
	return o, nil
}

// State exposes the latest published meter snapshot.
func (o *Overlay) State() meter.Snapshot {
	return o.state.Load()
}

// Start begins capturing and drawing.
func (o *Overlay) Start() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.done != nil {
		return capture.ErrAlreadyCapturing
	}
	if err := o.capturer.Start(o.HandleCapture); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	o.cancel = cancel
	o.done = done

	go func() {
		defer close(done)
		err := o.compositor.Run(ctx, overlay.Callbacks{
			Setup:   o.setup,
			Draw:    o.DrawFrame,
			Destroy: o.destroy,
		})
		if err != nil {
			log.Error("overlay stopped", "error", err)
		}
	}()

	if o.cfg.LogFPS {
		go o.logFPS(ctx)
	}
	return nil
}

// Stop halts capture first and only then tears down the overlay, so brushes
// are released after the last frame has been handled.
func (o *Overlay) Stop() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.done == nil {
		return capture.ErrNotCapturing
	}

	stopErr := o.capturer.Stop()
	if errors.Is(stopErr, capture.ErrNotCapturing) {
		stopErr = nil
	}

	o.cancel()
	<-o.done
	o.cancel, o.done = nil, nil
	return stopErr
}

// Close stops a running overlay and releases the capture source.
func (o *Overlay) Close() error {
	err := o.Stop()
	if errors.Is(err, capture.ErrNotCapturing) {
		err = nil
	}
	if cerr := o.capturer.Close(); cerr != nil && !errors.Is(cerr, capture.ErrNotCapturing) {
		return cerr
	}
	return err
}

func (o *Overlay) logFPS(ctx context.Context) {
	ticker := time.NewTicker(fpsLogInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			log.Info("capture rate", "fps", fmt.Sprintf("%.1f", o.capturer.FPS()))
		}
	}
}

// HandleCapture is the capture tick: it updates the display geometry and the
// meter fills from one frame.
func (o *Overlay) HandleCapture(c capture.Capture) bool {
	prev := o.state.Load()

	geo := display.Geometry{
		SystemWidth:  c.System.X,
		SystemHeight: c.System.Y,
		RenderWidth:  c.Frame.Width,
		RenderHeight: c.Frame.Height,
	}
	window := c.Window
	if !geo.Valid() {
		geo = prev.Geometry
	} else if window.Width <= 0 || window.Height <= 0 {
		window = letterboxed(geo)
	}

	var (
		box   imgproc.Box
		fills [imgproc.MeterCount]float64
	)
	if c.Fills != nil {
		fills = *c.Fills
	} else {
		box, fills = imgproc.Analyze(c.Frame, geo.RenderScale(), o.search)
		if box.Empty() {
			log.Debug("meters not found", "width", c.Frame.Width, "height", c.Frame.Height)
		}
	}

	o.state.Publish(meter.Snapshot{
		Fills:    fills,
		Bounds:   box,
		Geometry: geo,
		Window:   window,
	})
	if window.Width > 0 && window.Height > 0 {
		o.compositor.Follow(window)
	}

	if o.cfg.DebugImage != "" && !box.Empty() && o.debugSaved.CompareAndSwap(false, true) {
		if err := imgproc.WriteDebugImage(o.cfg.DebugImage, c.Frame, box); err != nil {
			log.Warn("could not save debug image", "error", err)
		} else {
			log.Info("saved debug image", "path", o.cfg.DebugImage)
		}
	}
	return false
}

// letterboxed places the rendered area centered on the desktop, for sources
// that do not report where their frames came from.
func letterboxed(geo display.Geometry) display.Window {
	return display.Window{
		X:      geo.OffsetX(),
		Y:      geo.OffsetY(),
		Width:  geo.RenderWidth,
		Height: geo.RenderHeight,
	}
}

func (o *Overlay) setup(c overlay.Canvas) {
	o.brushes = overlay.NewBrushes(c)
}

func (o *Overlay) destroy(c overlay.Canvas) {
	if o.brushes != nil {
		o.brushes.Release(c)
		o.brushes = nil
	}
}

// Anchor is the point the meter group is positioned around.
func (o *Overlay) Anchor(geo display.Geometry) render.Point {
	return render.Point{
		X: float64(geo.RenderWidth)/2 + o.cfg.OffsetX*o.renderer.DriftDirection,
		Y: float64(geo.RenderHeight)*3/4 + o.cfg.OffsetY,
	}
}

// DrawFrame is the render tick.
func (o *Overlay) DrawFrame(c overlay.Canvas) {
	if o.brushes == nil {
		return
	}
	o.brushes.CreatePending(c)

	snap := o.state.Load()
	if !snap.Geometry.Valid() {
		return
	}

	if o.cfg.DebugBox && !snap.Bounds.Empty() {
		r := snap.Bounds.Rect()
		overlay.DrawDebugBox(c, render.Rect{
			X: float64(r.Min.X),
			Y: float64(r.Min.Y),
			W: float64(r.Dx()),
			H: float64(r.Dy()),
		}, o.brushes)
	}

	if _, ok := snap.ActiveIndex(); !ok {
		return
	}

	anchor := o.Anchor(snap.Geometry)
	for i := 0; i < imgproc.MeterCount; i++ {
		shape := o.renderer.Bar(snap.Geometry, i, snap.Fills[i], anchor)
		overlay.Draw(c, shape, o.brushes)
	}
}

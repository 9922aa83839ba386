package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync/atomic"
	"time"

	"github.com/go-vgo/robotgo"
	"github.com/kbinani/screenshot"

	"github.com/DaniruKun/boostmeter-overlay/display"
	"github.com/DaniruKun/boostmeter-overlay/imgproc"
	"github.com/DaniruKun/boostmeter-overlay/internal/log"
)

// Default time between two screen grabs, roughly the source's frame rate
const DefaultScreenInterval = time.Second / 60

// ScreenSource grabs a region of a display at a fixed interval.
type ScreenSource struct {
	Display  int             // Index of the display to capture
	Region   image.Rectangle // Area in screen coordinates, the whole display when empty
	Window   string          // Name of a window to follow, takes precedence over Region
	Interval time.Duration

	grab   func(image.Rectangle) (*image.RGBA, error)
	bounds func(int) image.Rectangle
	locate func(name string) (image.Rectangle, error)
	closed atomic.Bool
}

// FindWindow returns the screen bounds of the first visible window of the
// process called name.
func FindWindow(name string) (image.Rectangle, error) {
	pids, err := robotgo.FindIds(name)
	if err != nil {
		return image.Rectangle{}, fmt.Errorf("find window %q: %w", name, err)
	}
	for _, pid := range pids {
		x, y, w, h := robotgo.GetBounds(pid)
		if w > 0 && h > 0 {
			return image.Rect(x, y, x+w, y+h), nil
		}
	}
	return image.Rectangle{}, fmt.Errorf("%w: %q", ErrWindowNotFound, name)
}

// NewScreenSource captures `region` of display `displayIndex`.
func NewScreenSource(displayIndex int, region image.Rectangle, interval time.Duration) (*ScreenSource, error) {
	if n := screenshot.NumActiveDisplays(); displayIndex < 0 || displayIndex >= n {
		return nil, fmt.Errorf("%w: index %d, %d active", ErrNoDisplay, displayIndex, n)
	}
	if interval <= 0 {
		interval = DefaultScreenInterval
	}

	return &ScreenSource{
		Display:  displayIndex,
		Region:   region,
		Interval: interval,
		grab:     screenshot.CaptureRect,
		bounds:   screenshot.GetDisplayBounds,
		locate:   FindWindow,
	}, nil
}

// area resolves what to grab this tick. A followed window is looked up
// every time so moving or resizing it is picked up on the next frame.
func (s *ScreenSource) area() (image.Rectangle, image.Rectangle, error) {
	desktop := s.bounds(s.Display)
	if s.Window != "" {
		rect, err := s.locate(s.Window)
		return rect, desktop, err
	}
	if s.Region.Empty() {
		return desktop, desktop, nil
	}
	return s.Region, desktop, nil
}

// Run grabs one frame per interval and hands it to handle.
func (s *ScreenSource) Run(ctx context.Context, handle Handler) error {
	if s.closed.Load() {
		return ErrSourceClosed
	}

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	var missing bool
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		if s.closed.Load() {
			return nil
		}

		rect, desktop, err := s.area()
		if errors.Is(err, ErrWindowNotFound) {
			// minimized or not launched yet, try again next tick
			if !missing {
				log.Warn("window not found, waiting for it", "window", s.Window)
				missing = true
			}
			continue
		}
		if err != nil {
			return fmt.Errorf("capture screen: %w", err)
		}
		missing = false

		img, err := s.grab(rect)
		if err != nil {
			return fmt.Errorf("capture screen: %w", err)
		}

		stop := handle(Capture{
			Frame: imgproc.FrameFromRGBA(img),
			Window: display.Window{
				X:      rect.Min.X,
				Y:      rect.Min.Y,
				Width:  rect.Dx(),
				Height: rect.Dy(),
			},
			System: desktop.Size(),
		})
		if stop {
			return nil
		}
	}
}

func (s *ScreenSource) Close() error {
	s.closed.Store(true)
	return nil
}

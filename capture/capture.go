// Package capture delivers frames of the source window to the meter pipeline.
//
// A Source owns the capture loop and calls a Handler once per frame on its own
// goroutine. The Capturer wraps a Source with the start/stop lifecycle: stop
// is cooperative and only takes effect when the next frame arrives.
package capture

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/DaniruKun/boostmeter-overlay/display"
	"github.com/DaniruKun/boostmeter-overlay/imgproc"
	"github.com/DaniruKun/boostmeter-overlay/internal/log"
)

const (
	DefaultStopPollInterval = 10 * time.Millisecond
	DefaultStopTimeout      = 1000 * time.Millisecond

	fpsSamples = 60
)

// Capture is a single frame and where it came from. The frame is only valid
// for the duration of the Handler call.
type Capture struct {
	Frame  imgproc.Frame
	Window display.Window
	System image.Point // Desktop resolution

	// Fills is set by sources that compute fill fractions themselves. The
	// pipeline then skips locating and sampling.
	Fills *[imgproc.MeterCount]float64
}

// Handler receives frames. Returning true asks the source to stop after this frame.
type Handler func(c Capture) (stop bool)

// Source produces frames until its handler asks it to stop, it runs out of
// frames, or ctx is done.
type Source interface {
	Run(ctx context.Context, handle Handler) error
	Close() error
}

// Capturer runs a Source on a background goroutine.
type Capturer struct {
	source Source

	PollInterval time.Duration
	StopTimeout  time.Duration

	capturing       atomic.Bool
	stopOnNextFrame atomic.Bool

	mu      sync.Mutex
	session string
	owner   string // Session whose loop clears capturing on exit, empty once Stop gave up on it
	cancel  context.CancelFunc
	done    chan struct{} // Closed when the session's Run returns
	log     *slog.Logger

	fps *FPSCounter
}

func NewCapturer(source Source) *Capturer {
	return &Capturer{
		source:       source,
		PollInterval: DefaultStopPollInterval,
		StopTimeout:  DefaultStopTimeout,
		fps:          NewFPSCounter(fpsSamples),
		log:          log.L(),
	}
}

// IsCapturing reports whether the source loop is running.
func (c *Capturer) IsCapturing() bool {
	return c.capturing.Load()
}

// FPS returns the average capture rate over the last frames.
func (c *Capturer) FPS() float64 {
	return c.fps.FPS()
}

// Session returns the id of the current or last capture session.
func (c *Capturer) Session() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Start begins delivering frames to handle. Starting twice is an error. A
// loop left behind by a timed out Stop is waited for first, so at most one
// loop ever reads from the source.
func (c *Capturer) Start(handle Handler) error {
	if !c.capturing.CompareAndSwap(false, true) {
		return ErrAlreadyCapturing
	}
	if err := c.waitDone(); err != nil {
		c.capturing.Store(false)
		return err
	}
	c.stopOnNextFrame.Store(false)

	ctx, cancel := context.WithCancel(context.Background())
	session := uuid.NewString()
	logger := log.With("session", session)
	done := make(chan struct{})

	c.mu.Lock()
	c.session = session
	c.owner = session
	c.cancel = cancel
	c.done = done
	c.log = logger
	c.mu.Unlock()

	logger.Info("capture started")

	go func() {
		defer close(done)
		defer cancel()
		defer c.finish(session)

		err := c.source.Run(ctx, func(capture Capture) bool {
			c.fps.Tick(time.Now())
			stop := handle(capture)
			return stop || c.stopOnNextFrame.Load()
		})
		if err != nil {
			logger.Error("capture loop ended", "error", err)
			return
		}
		logger.Info("capture stopped")
	}()
	return nil
}

// finish clears the capturing flag if session still owns it. A loop that
// outlived a timed out Stop must not clear the flag of a later Start.
func (c *Capturer) finish(session string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.owner == session {
		c.owner = ""
		c.capturing.Store(false)
	}
}

// waitDone blocks until the last session's Run has returned, for at most
// StopTimeout.
func (c *Capturer) waitDone() error {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()
	if done == nil {
		return nil
	}

	timer := time.NewTimer(c.StopTimeout)
	defer timer.Stop()
	select {
	case <-done:
		return nil
	case <-timer.C:
		return fmt.Errorf("%w: previous capture loop still running after %v", ErrStopTimeout, c.StopTimeout)
	}
}

// Stop asks the source to halt after its next frame and waits for it to do
// so. If no frame arrives within StopTimeout the capture is marked as stopped,
// its context is cancelled and ErrStopTimeout is returned. The loop may still
// be inside the source at that point, Start and Close wait for it.
func (c *Capturer) Stop() error {
	if !c.capturing.Load() {
		return ErrNotCapturing
	}
	c.stopOnNextFrame.Store(true)

	ticker := time.NewTicker(c.PollInterval)
	defer ticker.Stop()

	var waited time.Duration
	for c.capturing.Load() {
		if waited >= c.StopTimeout {
			c.mu.Lock()
			c.owner = ""
			c.capturing.Store(false)
			if c.cancel != nil {
				c.cancel()
			}
			c.log.Error("timed out waiting for capture to stop", "waited", waited)
			c.mu.Unlock()
			return fmt.Errorf("%w (waited %v)", ErrStopTimeout, waited)
		}
		<-ticker.C
		waited += c.PollInterval
	}
	return nil
}

// Close stops a running capture and releases the source. The source is left
// open if the loop is still inside it after StopTimeout.
func (c *Capturer) Close() error {
	var stopErr error
	if c.capturing.Load() {
		stopErr = c.Stop()
	}
	if err := c.waitDone(); err != nil {
		c.mu.Lock()
		c.log.Error("not closing the source while the capture loop runs", "error", err)
		c.mu.Unlock()
		return err
	}
	if err := c.source.Close(); err != nil {
		return err
	}
	return stopErr
}

// FPSCounter averages the time between the last N frames.
type FPSCounter struct {
	mu         sync.Mutex
	timestamps []time.Time
	next       int
	filled     int
}

func NewFPSCounter(samples int) *FPSCounter {
	if samples < 2 {
		samples = 2
	}
	return &FPSCounter{timestamps: make([]time.Time, samples)}
}

// Tick records a frame arriving at `t`.
func (f *FPSCounter) Tick(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.timestamps[f.next] = t
	f.next = (f.next + 1) % len(f.timestamps)
	if f.filled < len(f.timestamps) {
		f.filled++
	}
}

// FPS returns the average rate over the recorded frames, or 0 with fewer than two.
func (f *FPSCounter) FPS() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.filled < 2 {
		return 0
	}

	// oldest entry is at next once the ring has wrapped, at 0 before that
	oldest := 0
	if f.filled == len(f.timestamps) {
		oldest = f.next
	}
	newest := (f.next - 1 + len(f.timestamps)) % len(f.timestamps)

	span := f.timestamps[newest].Sub(f.timestamps[oldest]).Seconds()
	if span <= 0 {
		return 0
	}
	return float64(f.filled-1) / span
}

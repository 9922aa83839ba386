package overlay

import (
	"github.com/DaniruKun/boostmeter-overlay/internal/log"
	"github.com/DaniruKun/boostmeter-overlay/meter"
)

// Brushes holds the fixed brushes of the overlay plus the cache of meter
// colors. It belongs to the render loop.
type Brushes struct {
	Black       Brush
	White       Brush
	Gray        Brush
	Red         Brush
	Orange      Brush
	Yellow      Brush
	Green       Brush
	Blue        Brush
	Purple      Brush
	Transparent Brush

	Meter *meter.BrushCache[Brush]
}

// NewBrushes creates the fixed brushes on `c`. Meter colors fall back to black
// until they have been created.
func NewBrushes(c Canvas) *Brushes {
	b := &Brushes{
		Black:       c.CreateSolidBrush(0, 0, 0, 255),
		White:       c.CreateSolidBrush(255, 255, 255, 255),
		Gray:        c.CreateSolidBrush(128, 128, 128, 255),
		Red:         c.CreateSolidBrush(255, 0, 0, 255),
		Orange:      c.CreateSolidBrush(255, 106, 0, 255),
		Yellow:      c.CreateSolidBrush(255, 216, 0, 255),
		Green:       c.CreateSolidBrush(0, 255, 0, 255),
		Blue:        c.CreateSolidBrush(0, 0, 255, 255),
		Purple:      c.CreateSolidBrush(178, 0, 255, 255),
		Transparent: c.CreateSolidBrush(0, 0, 0, 0),
	}
	b.Meter = meter.NewBrushCache(b.Black)
	return b
}

// CreatePending creates every meter color requested since the last call.
func (b *Brushes) CreatePending(c Canvas) {
	if b.Meter.Pending() == 0 {
		return
	}
	n := b.Meter.Drain(func(rgb meter.RGB) Brush {
		return c.CreateSolidBrush(rgb.R, rgb.G, rgb.B, 255)
	})
	if n > 0 {
		log.Debug("created meter brushes", "count", n)
	}
}

// ForColor returns the brush for a meter color, queueing its creation on a miss.
func (b *Brushes) ForColor(rgb meter.RGB) Brush {
	brush, _ := b.Meter.Get(rgb)
	return brush
}

// Release frees every brush on `c`.
func (b *Brushes) Release(c Canvas) {
	b.Meter.Release(c.ReleaseBrush)
	for _, brush := range []Brush{
		b.Black, b.White, b.Gray, b.Red, b.Orange,
		b.Yellow, b.Green, b.Blue, b.Purple, b.Transparent,
	} {
		c.ReleaseBrush(brush)
	}
}

package meter

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

var (
	// ErrInvalidHex is returned when a color is not a 6 digit RGB hex string.
	ErrInvalidHex = errors.New("meter: invalid RGB hex color")

	// ErrInvalidThreshold is returned when the color thresholds are out of order or out of range.
	ErrInvalidThreshold = errors.New("meter: invalid color threshold")
)

const (
	// Fill value at which a meter leaves its dead zone
	MinValue = 0.5
	// Fill value of a full meter
	MaxValue = 1.0
)

// RGB is an opaque display color.
type RGB struct {
	R, G, B uint8
}

// ParseHex parses "FF6A00" or "#ff6a00".
func ParseHex(s string) (RGB, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return RGB{}, fmt.Errorf("%w: %q", ErrInvalidHex, s)
	}

	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("%w: %q", ErrInvalidHex, s)
	}
	return FromPacked(uint32(v)), nil
}

// FromPacked unpacks a 0xRRGGBB value.
func FromPacked(v uint32) RGB {
	return RGB{uint8(v >> 16), uint8(v >> 8), uint8(v)}
}

func (c RGB) Packed() uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

func (c RGB) String() string {
	return fmt.Sprintf("%02X%02X%02X", c.R, c.G, c.B)
}

// RGBA returns the color as an opaque color.RGBA.
func (c RGB) RGBA() color.RGBA {
	return color.RGBA{c.R, c.G, c.B, 255}
}

// Palette maps a fill value to one of four colors. Thresholds are fractions
// of MaxValue.
type Palette struct {
	Colors     [4]RGB
	Threshold3 float64 // Fill fraction at which Colors[2] is used
	Threshold4 float64 // Fill fraction at which Colors[3] is used
}

// DefaultPalette is green, yellow, orange, red at 80% and 95%.
func DefaultPalette() Palette {
	return Palette{
		Colors: [4]RGB{
			{0x00, 0xFF, 0x00},
			{0xFF, 0xD8, 0x00},
			{0xFF, 0x6A, 0x00},
			{0xFF, 0x00, 0x00},
		},
		Threshold3: 0.80,
		Threshold4: 0.95,
	}
}

// Validate requires 0 < Threshold3 < Threshold4 <= 1. Negative thresholds are
// rejected rather than reinterpreted.
func (p Palette) Validate() error {
	if p.Threshold3 <= 0 || p.Threshold3 > 1 {
		return fmt.Errorf("%w: threshold for color 3 must be in (0, 1], got %v", ErrInvalidThreshold, p.Threshold3)
	}
	if p.Threshold4 <= 0 || p.Threshold4 > 1 {
		return fmt.Errorf("%w: threshold for color 4 must be in (0, 1], got %v", ErrInvalidThreshold, p.Threshold4)
	}
	if p.Threshold3 >= p.Threshold4 {
		return fmt.Errorf("%w: threshold for color 3 (%v) must be below threshold for color 4 (%v)", ErrInvalidThreshold, p.Threshold3, p.Threshold4)
	}
	return nil
}

// Level returns the index into Colors used for fill value `v`. Each check can
// only escalate the level, the last one that matches wins.
func (p Palette) Level(v float64) int {
	level := 0
	if v >= MinValue {
		level = 1
	}
	if v >= MaxValue*p.Threshold3 {
		level = 2
	}
	if v >= MaxValue*p.Threshold4 {
		level = 3
	}
	return level
}

// ColorFor returns the color for fill value `v`.
func (p Palette) ColorFor(v float64) RGB {
	return p.Colors[p.Level(v)]
}

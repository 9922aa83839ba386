package imgproc

// PixelColor is a single RGBA pixel as stored in a frame buffer.
type PixelColor struct {
	R, G, B, A uint8
}

var (
	// Unfilled part of a meter
	BackgroundGray = PixelColor{0x5F, 0x5E, 0x5F, 0xFF}
	// Filled part of a meter
	ActiveRed = PixelColor{0xF5, 0x00, 0x00, 0xFF}
)

// Matches compares the color channels only. Captured frames do not carry a
// reliable alpha channel so it is ignored.
func (c PixelColor) Matches(other PixelColor) bool {
	return c.R == other.R && c.G == other.G && c.B == other.B
}

func isGray(c PixelColor) bool {
	return c.Matches(BackgroundGray)
}

func isRedOrGray(c PixelColor) bool {
	return c.Matches(ActiveRed) || c.Matches(BackgroundGray)
}

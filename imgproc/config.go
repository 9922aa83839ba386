package imgproc

type Config struct {
	SearchFraction float64 // Fraction of width/height where the search area starts, the meters live in the bottom right
	BaseBarWidth   float64 // Width of the colored area of one meter at 1080p, minus 1 for safety
	BaseBarHeight  float64 // Height of the colored area of one meter at 1080p, minus 1 for safety
}

// DefaultConfig returns the values measured on the reference meter rendering.
func DefaultConfig() Config {
	return Config{
		SearchFraction: 0.5,
		BaseBarWidth:   27,
		BaseBarHeight:  111,
	}
}

// Horizontal positions within the bounding box at which each meter is sampled, left to right
var sampleFractions = [MeterCount]float64{0.1, 0.5, 0.9}

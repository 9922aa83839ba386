package app

import (
	"errors"
	"fmt"
	"image"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/DaniruKun/boostmeter-overlay/capture"
	"github.com/DaniruKun/boostmeter-overlay/imgproc"
	"github.com/DaniruKun/boostmeter-overlay/meter"
	"github.com/DaniruKun/boostmeter-overlay/overlay"
	"github.com/DaniruKun/boostmeter-overlay/render"
)

// SourceScreen selects live screen capture instead of a video file.
const SourceScreen = "screen"

// Config holds every user facing option of the overlay.
type Config struct {
	Style  string `yaml:"style"`
	Color1 string `yaml:"color1"` // Below the minimum boost value
	Color2 string `yaml:"color2"`
	Color3 string `yaml:"color3"`
	Color4 string `yaml:"color4"`

	Threshold3 float64 `yaml:"threshold_color3"` // Percent of a full meter
	Threshold4 float64 `yaml:"threshold_color4"` // Percent of a full meter

	ArcStartAngle float64 `yaml:"arc_start_angle"` // Degrees
	ArcEndAngle   float64 `yaml:"arc_end_angle"`   // Degrees

	OffsetX float64 `yaml:"offset_x"` // Anchor offset in viewport pixels
	OffsetY float64 `yaml:"offset_y"`
	Mirror  bool    `yaml:"mirror"` // Draw on the left side of the anchor

	Source            string `yaml:"source"`  // "screen" or the path of a video file
	Display           int    `yaml:"display"` // Display index for screen capture
	Region            []int  `yaml:"region"`  // x, y, width, height of the captured window; whole display when empty
	Window            string `yaml:"window"`  // Name of the game window to follow instead of a fixed region
	CaptureIntervalMs int    `yaml:"capture_interval_ms"`
	FrameInterval     int    `yaml:"frame_interval"` // Video frames skipped between analyzed frames

	SearchFraction float64 `yaml:"search_fraction"`

	FPS        int    `yaml:"fps"` // Overlay redraw rate
	DebugBox   bool   `yaml:"debug_box"`
	DebugImage string `yaml:"debug_image"` // Save the first frame with meters found to this path
	LogFPS     bool   `yaml:"log_fps"`
	LogLevel   string `yaml:"log_level"`
}

func DefaultConfig() Config {
	palette := meter.DefaultPalette()
	return Config{
		Style:             render.StyleArcsSameAngles.String(),
		Color1:            palette.Colors[0].String(),
		Color2:            palette.Colors[1].String(),
		Color3:            palette.Colors[2].String(),
		Color4:            palette.Colors[3].String(),
		Threshold3:        palette.Threshold3 * 100,
		Threshold4:        palette.Threshold4 * 100,
		ArcStartAngle:     -30,
		ArcEndAngle:       45,
		Source:            SourceScreen,
		CaptureIntervalMs: int(capture.DefaultScreenInterval / time.Millisecond),
		SearchFraction:    imgproc.DefaultConfig().SearchFraction,
		FPS:               overlay.DefaultFPS,
		LogLevel:          "info",
	}
}

// LoadConfigFile overlays the values set in the YAML file at `path` onto cfg.
func LoadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return nil
}

// Palette builds the meter palette from the color and threshold options.
func (c Config) Palette() (meter.Palette, error) {
	var p meter.Palette
	for i, hex := range []string{c.Color1, c.Color2, c.Color3, c.Color4} {
		rgb, err := meter.ParseHex(hex)
		if err != nil {
			return p, fmt.Errorf("color%d: %w", i+1, err)
		}
		p.Colors[i] = rgb
	}
	p.Threshold3 = c.Threshold3 / 100
	p.Threshold4 = c.Threshold4 / 100
	return p, p.Validate()
}

// Renderer builds the geometry renderer from the style options.
func (c Config) Renderer() (render.Renderer, error) {
	style, err := render.ParseStyle(c.Style)
	if err != nil {
		return render.Renderer{}, err
	}
	palette, err := c.Palette()
	if err != nil {
		return render.Renderer{}, err
	}

	drift := 1.0
	if c.Mirror {
		drift = -1
	}
	return render.Renderer{
		Style:          style,
		ArcStartAngle:  c.ArcStartAngle,
		ArcEndAngle:    c.ArcEndAngle,
		DriftDirection: drift,
		Palette:        palette,
	}, nil
}

// ScreenRegion returns the capture region, empty for the whole display.
func (c Config) ScreenRegion() image.Rectangle {
	if len(c.Region) != 4 {
		return image.Rectangle{}
	}
	return image.Rect(c.Region[0], c.Region[1], c.Region[0]+c.Region[2], c.Region[1]+c.Region[3])
}

func (c Config) SearchConfig() imgproc.Config {
	cfg := imgproc.DefaultConfig()
	cfg.SearchFraction = c.SearchFraction
	return cfg
}

func (c Config) Validate() error {
	if _, err := c.Renderer(); err != nil {
		return err
	}
	if math.Abs(c.ArcEndAngle-c.ArcStartAngle) >= 360 {
		return fmt.Errorf("arc sweep must be less than a full circle, got %v to %v degrees", c.ArcStartAngle, c.ArcEndAngle)
	}
	if c.SearchFraction < 0 || c.SearchFraction >= 1 {
		return fmt.Errorf("search fraction must be in [0, 1), got %v", c.SearchFraction)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %d", c.FPS)
	}
	if c.CaptureIntervalMs < 0 || c.FrameInterval < 0 {
		return errors.New("capture and frame intervals must not be negative")
	}
	if len(c.Region) != 0 && len(c.Region) != 4 {
		return fmt.Errorf("region needs x, y, width and height, got %v", c.Region)
	}
	if len(c.Region) == 4 && (c.Region[2] <= 0 || c.Region[3] <= 0) {
		return fmt.Errorf("region size must be positive, got %dx%d", c.Region[2], c.Region[3])
	}
	if c.Window != "" && len(c.Region) != 0 {
		return errors.New("window and region both select the capture area, set only one")
	}
	if c.Source == "" {
		return errors.New("source must be \"screen\" or a video file path")
	}
	return nil
}

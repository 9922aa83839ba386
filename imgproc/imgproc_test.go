package imgproc

import (
	"fmt"
	"image"
	"math"
	"testing"
)

func newFrame(width, height int, fill PixelColor) Frame {
	f := Frame{Pix: make([]byte, width*height*4), Width: width, Height: height}
	for i := 0; i < len(f.Pix); i += 4 {
		f.Pix[i], f.Pix[i+1], f.Pix[i+2], f.Pix[i+3] = fill.R, fill.G, fill.B, fill.A
	}
	return f
}

func (f Frame) paint(r image.Rectangle, c PixelColor) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			i := (y*f.Width + x) * 4
			f.Pix[i], f.Pix[i+1], f.Pix[i+2], f.Pix[i+3] = c.R, c.G, c.B, c.A
		}
	}
}

var black = PixelColor{0, 0, 0, 0xFF}

func TestPixelColorMatches(t *testing.T) {
	var tests = []struct {
		c     PixelColor
		gray  bool
		match bool
	}{
		{BackgroundGray, true, true},
		{PixelColor{0x5F, 0x5E, 0x5F, 0x00}, true, true},
		{ActiveRed, false, true},
		{PixelColor{0xF5, 0x01, 0x00, 0xFF}, false, false},
		{black, false, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%+v", tt.c), func(t *testing.T) {
			if got := isGray(tt.c); got != tt.gray {
				t.Errorf("isGray: got %v, want %v", got, tt.gray)
			}
			if got := isRedOrGray(tt.c); got != tt.match {
				t.Errorf("isRedOrGray: got %v, want %v", got, tt.match)
			}
		})
	}
}

func TestStepSize(t *testing.T) {
	cfg := DefaultConfig()

	x, y := cfg.StepSize(1.0)
	if x != 13 || y != 55 {
		t.Errorf("got step %d,%d, want 13,55", x, y)
	}

	x, y = cfg.StepSize(0.01)
	if x != 1 || y != 1 {
		t.Errorf("got step %d,%d, want strides clamped to 1", x, y)
	}
}

func TestFindMeterBoundsAllGray(t *testing.T) {
	f := newFrame(640, 360, BackgroundGray)

	// a frame that is gray everywhere still yields a box, only a frame with no
	// red or gray pixels in the search area is a miss
	if box := FindMeterBounds(f, 1.0/3.0, DefaultConfig()); box.Empty() {
		t.Errorf("expected a box on an all gray frame, got: %+v", box)
	}
}

func TestFindMeterBoundsNoMeters(t *testing.T) {
	f := newFrame(640, 360, black)

	box := FindMeterBounds(f, 1.0/3.0, DefaultConfig())
	if !box.Empty() {
		t.Errorf("expected an empty box, got: %+v", box)
	}

	fills := SampleFills(f, box)
	if fills != [MeterCount]float64{} {
		t.Errorf("expected zero fills for a miss, got: %v", fills)
	}
}

func TestEmptyBoxSentinel(t *testing.T) {
	box := emptyBox()

	// the extents must stay far enough apart that Right-Left fits in an int
	// of any size, a wrapped difference would turn a miss into a box
	if box.Width() >= 0 || box.Height() >= 0 || !box.Empty() {
		t.Fatalf("got width %d, height %d for the sentinel", box.Width(), box.Height())
	}
	if box.Left > math.MaxInt/2 || box.Top > math.MaxInt/2 || box.Right < math.MinInt/2 || box.Bottom < math.MinInt/2 {
		t.Errorf("sentinel extents too close to the int limits: %+v", box)
	}

	box = box.include(7, 9)
	if box != (Box{Left: 7, Top: 9, Right: 7, Bottom: 9}) {
		t.Errorf("got %+v after the first pixel", box)
	}
}

func TestFindMeterBoundsOutsideSearchArea(t *testing.T) {
	f := newFrame(1920, 1080, black)
	f.paint(image.Rect(100, 100, 200, 250), ActiveRed)

	if box := FindMeterBounds(f, 1.0, DefaultConfig()); !box.Empty() {
		t.Errorf("expected meters in the top left to be ignored, got: %+v", box)
	}
}

func TestFindMeterBoundsExact(t *testing.T) {
	var tests = []struct {
		rect image.Rectangle
	}{
		{image.Rect(1500, 900, 1581, 1011)},
		{image.Rect(1777, 961, 1890, 1072)},
		// touches the right and bottom edges of the frame
		{image.Rect(1800, 950, 1920, 1080)},
	}

	for _, tt := range tests {
		t.Run(tt.rect.String(), func(t *testing.T) {
			f := newFrame(1920, 1080, black)
			f.paint(tt.rect, ActiveRed)

			box := FindMeterBounds(f, 1.0, DefaultConfig())
			want := Box{tt.rect.Min.X, tt.rect.Min.Y, tt.rect.Max.X - 1, tt.rect.Max.Y - 1}
			if box != want {
				t.Errorf("got %+v, want %+v", box, want)
			}
			if box.Rect() != tt.rect {
				t.Errorf("Rect: got %v, want %v", box.Rect(), tt.rect)
			}
		})
	}
}

// three meters side by side with gray backgrounds and red fill from the bottom
func meterFrame(fillRows [MeterCount]int) (Frame, image.Rectangle) {
	const (
		barW    = 28
		barH    = 112
		spacing = 12
		left    = 1600
		top     = 900
	)

	f := newFrame(1920, 1080, black)
	area := image.Rect(left, top, left+MeterCount*barW+(MeterCount-1)*spacing, top+barH)
	f.paint(area, BackgroundGray)
	for i := 0; i < MeterCount; i++ {
		x := left + i*(barW+spacing)
		f.paint(image.Rect(x, top+barH-fillRows[i], x+barW, top+barH), ActiveRed)
	}
	return f, area
}

func TestAnalyze(t *testing.T) {
	var tests = []struct {
		rows [MeterCount]int
		want [MeterCount]float64
	}{
		{[MeterCount]int{0, 0, 0}, [MeterCount]float64{0, 0, 0}},
		{[MeterCount]int{112, 0, 0}, [MeterCount]float64{1, 0, 0}},
		{[MeterCount]int{112, 56, 0}, [MeterCount]float64{1, 0.5, 0}},
		{[MeterCount]int{112, 112, 28}, [MeterCount]float64{1, 1, 0.25}},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v", tt.rows), func(t *testing.T) {
			f, rect := meterFrame(tt.rows)

			box, fills := Analyze(f, 1.0, DefaultConfig())
			if box.Rect() != rect {
				t.Fatalf("got box %v, want %v", box.Rect(), rect)
			}
			if fills != tt.want {
				t.Errorf("got fills %v, want %v", fills, tt.want)
			}
		})
	}
}

func TestSampleFillsColumn(t *testing.T) {
	const n = 40

	for k := 0; k <= n; k += 8 {
		t.Run(fmt.Sprintf("%d of %d", k, n), func(t *testing.T) {
			f := newFrame(100, n, BackgroundGray)
			f.paint(image.Rect(0, 0, 100, k), ActiveRed)

			fills := SampleFills(f, Box{Left: 0, Top: 0, Right: 99, Bottom: n - 1})
			want := float64(k) / float64(n)
			for i, got := range fills {
				if got != want {
					t.Errorf("meter %d: got %v, want %v", i, got, want)
				}
			}
		})
	}
}

func TestSampleFillsSeparatorCountsAsActive(t *testing.T) {
	f := newFrame(10, 10, BackgroundGray)
	f.paint(image.Rect(0, 0, 10, 1), black)

	fills := SampleFills(f, Box{Left: 0, Top: 0, Right: 9, Bottom: 9})
	if fills[1] != 0.1 {
		t.Errorf("got %v, want 0.1", fills[1])
	}
}

func TestSampleFillsOutOfBounds(t *testing.T) {
	f := newFrame(10, 10, BackgroundGray)

	// a box entirely outside the frame has no samples and must not divide by zero
	fills := SampleFills(f, Box{Left: 100, Top: 100, Right: 120, Bottom: 130})
	if fills != [MeterCount]float64{} {
		t.Errorf("got %v, want zero fills", fills)
	}
}

func TestFrameFromRGBA(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 4))
	img.Pix[(2*8+3)*4] = 0xF5
	img.Pix[(2*8+3)*4+3] = 0xFF

	f := FrameFromRGBA(img)
	if c, ok := f.At(3, 2); !ok || !c.Matches(ActiveRed) {
		t.Errorf("got %+v, want active red", c)
	}

	sub := img.SubImage(image.Rect(2, 1, 6, 4)).(*image.RGBA)
	f = FrameFromRGBA(sub)
	if f.Width != 4 || f.Height != 3 || len(f.Pix) != 4*3*4 {
		t.Fatalf("got %dx%d with %d bytes", f.Width, f.Height, len(f.Pix))
	}
	if c, ok := f.At(1, 1); !ok || !c.Matches(ActiveRed) {
		t.Errorf("got %+v, want active red in sub image", c)
	}
}

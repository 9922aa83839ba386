package imgproc

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"gocv.io/x/gocv"
)

// Number of meters tracked on screen
const MeterCount = 3

const bytesPerPixel = 4

// Frame is a tightly packed RGBA8 capture, row-major, top to bottom, left to right.
type Frame struct {
	Pix    []byte
	Width  int
	Height int
}

// At returns the pixel at (x, y). Coordinates outside the frame report false.
func (f Frame) At(x, y int) (PixelColor, bool) {
	if x < 0 || y < 0 || x >= f.Width || y >= f.Height {
		return PixelColor{}, false
	}
	i := (y*f.Width + x) * bytesPerPixel
	if i+3 >= len(f.Pix) {
		return PixelColor{}, false
	}
	return PixelColor{f.Pix[i], f.Pix[i+1], f.Pix[i+2], f.Pix[i+3]}, true
}

// Box holds inclusive pixel extrema of the area enclosing the meters.
type Box struct {
	Left, Top, Right, Bottom int
}

// emptyBox starts beyond every possible coordinate with a negative width and
// height so the first matching pixel always replaces it. The extremes are
// quartered so Right-Left cannot overflow on 32 bit platforms.
func emptyBox() Box {
	return Box{
		Left:   math.MaxInt / 4,
		Top:    math.MaxInt / 4,
		Right:  math.MinInt / 4,
		Bottom: math.MinInt / 4,
	}
}

func (b Box) Width() int  { return b.Right - b.Left }
func (b Box) Height() int { return b.Bottom - b.Top }

// Empty reports the "meters not found" sentinel: a non-positive width or height.
func (b Box) Empty() bool {
	return b.Width() <= 0 || b.Height() <= 0
}

// Rect converts the inclusive box into an image.Rectangle.
func (b Box) Rect() image.Rectangle {
	return image.Rect(b.Left, b.Top, b.Right+1, b.Bottom+1)
}

func (b Box) include(x, y int) Box {
	if x < b.Left {
		b.Left = x
	}
	if x > b.Right {
		b.Right = x
	}
	if y < b.Top {
		b.Top = y
	}
	if y > b.Bottom {
		b.Bottom = y
	}
	return b
}

// StepSize returns the sampling stride in each axis: half of one meter at the
// given scale, so at least one sample lands inside every meter.
func (cfg Config) StepSize(scale float64) (int, int) {
	stepX := int(math.Floor(cfg.BaseBarWidth * scale * 0.5))
	stepY := int(math.Floor(cfg.BaseBarHeight * scale * 0.5))
	if stepX < 1 {
		stepX = 1
	}
	if stepY < 1 {
		stepY = 1
	}
	return stepX, stepY
}

// scan folds every red or gray pixel of [xStart, xEnd) x [yStart, yEnd),
// visited at the given strides, into box.
func (f Frame) scan(box Box, xStart, xEnd, xStep, yStart, yEnd, yStep int) Box {
	for x := xStart; x < xEnd; x += xStep {
		for y := yStart; y < yEnd; y += yStep {
			c, ok := f.At(x, y)
			if !ok {
				continue
			}
			if isRedOrGray(c) {
				box = box.include(x, y)
			}
		}
	}
	return box
}

// FindMeterBounds locates the box enclosing the meters in frame `f`.
//
// The bottom right area of the frame is sampled every half meter. If that
// finds anything, the box is grown by one step in every direction and the
// newly exposed strips are checked pixel by pixel to recover the edges the
// coarse grid straddled. An Empty box means no meters are visible.
func FindMeterBounds(f Frame, scale float64, cfg Config) Box {
	stepX, stepY := cfg.StepSize(scale)
	areaLeft := int(float64(f.Width) * cfg.SearchFraction)
	areaTop := int(float64(f.Height) * cfg.SearchFraction)

	box := f.scan(emptyBox(), areaLeft, f.Width, stepX, areaTop, f.Height, stepY)
	if box.Empty() {
		return box
	}

	inner := box
	x0, x1 := inner.Left-stepX, inner.Right+stepX+1
	y0, y1 := inner.Top-stepY, inner.Bottom+stepY+1

	// Top and bottom strips span the full expanded width, the side strips
	// only the rows of the coarse box. Matches inside the coarse box cannot
	// move its extrema so the interior is skipped.
	box = f.scan(box, x0, x1, 1, y0, inner.Top, 1)
	box = f.scan(box, x0, x1, 1, inner.Bottom+1, y1, 1)
	box = f.scan(box, x0, inner.Left, 1, inner.Top, inner.Bottom+1, 1)
	box = f.scan(box, inner.Right+1, x1, 1, inner.Top, inner.Bottom+1, 1)
	return box
}

func fillRatio(active, background int) float64 {
	total := active + background
	if total == 0 {
		return 0
	}
	return float64(active) / float64(total)
}

// SampleFills computes the fill fraction of each meter by walking one column
// per meter from the top to the bottom of box. Anything that is not gray counts
// as filled, including the thin separator where the fill cuts off.
func SampleFills(f Frame, box Box) [MeterCount]float64 {
	var fills [MeterCount]float64
	if box.Empty() {
		return fills
	}

	for i, pct := range sampleFractions {
		x := box.Left + int(float64(box.Width())*pct)

		var gray, active int
		for y := box.Top; y <= box.Bottom; y++ {
			c, ok := f.At(x, y)
			if !ok {
				continue
			}
			if isGray(c) {
				gray++
			} else {
				active++
			}
		}
		fills[i] = fillRatio(active, gray)
	}
	return fills
}

// Analyze runs the locator and the sampler over a single frame.
func Analyze(f Frame, scale float64, cfg Config) (Box, [MeterCount]float64) {
	box := FindMeterBounds(f, scale, cfg)
	return box, SampleFills(f, box)
}

// FrameFromRGBA wraps an image.RGBA, copying only when rows are padded or the
// image does not start at the origin.
func FrameFromRGBA(img *image.RGBA) Frame {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if img.Rect.Min == (image.Point{}) && img.Stride == w*bytesPerPixel {
		return Frame{Pix: img.Pix[:w*h*bytesPerPixel], Width: w, Height: h}
	}

	pix := make([]byte, w*h*bytesPerPixel)
	for y := 0; y < h; y++ {
		src := img.PixOffset(img.Rect.Min.X, img.Rect.Min.Y+y)
		copy(pix[y*w*bytesPerPixel:(y+1)*w*bytesPerPixel], img.Pix[src:src+w*bytesPerPixel])
	}
	return Frame{Pix: pix, Width: w, Height: h}
}

// FrameFromMat converts a decoded BGR or BGRA Mat into an RGBA frame.
func FrameFromMat(mat gocv.Mat) (Frame, error) {
	if mat.Empty() {
		return Frame{}, errors.New("empty mat")
	}

	var code gocv.ColorConversionCode
	switch mat.Channels() {
	case 3:
		code = gocv.ColorBGRToRGBA
	case 4:
		code = gocv.ColorBGRAToRGBA
	default:
		return Frame{}, fmt.Errorf("unsupported channel count: %d", mat.Channels())
	}

	rgba := gocv.NewMat()
	defer rgba.Close()
	gocv.CvtColor(mat, &rgba, code)

	return Frame{Pix: rgba.ToBytes(), Width: rgba.Cols(), Height: rgba.Rows()}, nil
}

// WriteDebugImage saves frame `f` to `path` with the located box outlined.
func WriteDebugImage(path string, f Frame, box Box) error {
	mat, err := gocv.NewMatFromBytes(f.Height, f.Width, gocv.MatTypeCV8UC4, f.Pix)
	if err != nil {
		return fmt.Errorf("wrap frame: %w", err)
	}
	defer mat.Close()

	bgr := gocv.NewMat()
	defer bgr.Close()
	gocv.CvtColor(mat, &bgr, gocv.ColorRGBAToBGR)

	if !box.Empty() {
		gocv.Rectangle(&bgr, box.Rect(), color.RGBA{255, 255, 0, 0}, 2)
	}

	if ok := gocv.IMWrite(path, bgr); !ok {
		return fmt.Errorf("could not write debug image: %s", path)
	}
	return nil
}

package display

import (
	"fmt"
	"math"
	"testing"
)

func TestScaleAtReference(t *testing.T) {
	g := Reference()

	if s := g.Scale(BaseScreenWidth, BaseScreenHeight); s != 1.0 {
		t.Errorf("expected scale of 1.0, got: %v", s)
	}
	if s := g.RenderScale(); s != 1.0 {
		t.Errorf("expected render scale of 1.0, got: %v", s)
	}
}

func TestScale(t *testing.T) {
	var tests = []struct {
		geo            Geometry
		viewportW      float64
		viewportH      float64
		wantX, wantY   float64
		wantMin        float64
		wantRenderSize float64
	}{
		{Geometry{3840, 2160, 3840, 2160}, 3840, 2160, 2, 2, 2, 2},
		{Geometry{1280, 720, 1280, 720}, 1280, 720, 2.0 / 3.0, 2.0 / 3.0, 2.0 / 3.0, 2.0 / 3.0},
		// letterboxed 4:3 render on a 16:9 desktop
		{Geometry{1920, 1080, 1440, 1080}, 1440, 1080, 1, 1, 1, 0.75},
		// overlay stretched to half the render width
		{Geometry{1920, 1080, 1920, 1080}, 960, 1080, 0.5, 1, 0.5, 1},
	}

	for _, tt := range tests {
		name := fmt.Sprintf("%+v at %vx%v", tt.geo, tt.viewportW, tt.viewportH)
		t.Run(name, func(t *testing.T) {
			if got := tt.geo.ScaleX(tt.viewportW); !approx(got, tt.wantX) {
				t.Errorf("ScaleX: got %v, want %v", got, tt.wantX)
			}
			if got := tt.geo.ScaleY(tt.viewportH); !approx(got, tt.wantY) {
				t.Errorf("ScaleY: got %v, want %v", got, tt.wantY)
			}
			if got := tt.geo.Scale(tt.viewportW, tt.viewportH); !approx(got, tt.wantMin) {
				t.Errorf("Scale: got %v, want %v", got, tt.wantMin)
			}
			if got := tt.geo.RenderScale(); !approx(got, tt.wantRenderSize) {
				t.Errorf("RenderScale: got %v, want %v", got, tt.wantRenderSize)
			}
		})
	}
}

func TestValidAndOffsets(t *testing.T) {
	if (Geometry{}).Valid() {
		t.Error("zero geometry should not be valid")
	}

	g := Geometry{1920, 1080, 1440, 1080}
	if !g.Valid() {
		t.Error("expected geometry to be valid")
	}
	if g.OffsetX() != 240 || g.OffsetY() != 0 {
		t.Errorf("got offsets %d,%d, want 240,0", g.OffsetX(), g.OffsetY())
	}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

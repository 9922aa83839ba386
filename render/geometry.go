package render

import (
	"image"
	"math"
)

type Point struct {
	X, Y float64
}

func (p Point) Add(o Point) Point {
	return Point{p.X + o.X, p.Y + o.Y}
}

func (p Point) Image() image.Point {
	return image.Pt(int(math.Round(p.X)), int(math.Round(p.Y)))
}

// Rect is an axis aligned rectangle in viewport coordinates.
type Rect struct {
	X, Y, W, H float64
}

func (r Rect) Right() float64  { return r.X + r.W }
func (r Rect) Bottom() float64 { return r.Y + r.H }

func (r Rect) Image() image.Rectangle {
	return image.Rect(
		int(math.Round(r.X)), int(math.Round(r.Y)),
		int(math.Round(r.Right())), int(math.Round(r.Bottom())),
	)
}

type OpKind int

const (
	OpLine OpKind = iota
	// Circular arc from the current point. A positive radius bows the curve to
	// the right of the direction of travel on screen, a negative one to the left.
	OpCurve
)

type PathOp struct {
	Kind   OpKind
	To     Point
	Radius float64
	Large  bool // Curve takes the long way round, sweeping more than half a circle
}

// Path is a closed figure starting and ending at Start.
type Path struct {
	Start Point
	Ops   []PathOp
}

// Flatten approximates the path with straight segments, splitting each curve
// into `steps` pieces.
func (p Path) Flatten(steps int) []Point {
	if steps < 1 {
		steps = 1
	}

	pts := []Point{p.Start}
	cur := p.Start
	for _, op := range p.Ops {
		if op.Kind == OpCurve {
			pts = append(pts, flattenCurve(cur, op, steps)...)
		} else {
			pts = append(pts, op.To)
		}
		cur = op.To
	}
	return pts
}

// flattenCurve returns the points after `from` up to and including op.To.
// The sign of the radius fixes the turning direction, Large picks which of
// the two arcs of that circle is drawn.
func flattenCurve(from Point, op PathOp, steps int) []Point {
	to := op.To
	dx, dy := to.X-from.X, to.Y-from.Y
	chord := math.Hypot(dx, dy)
	r := math.Abs(op.Radius)
	if chord == 0 || r == 0 {
		return []Point{to}
	}

	// unit normal pointing to the right of travel on screen
	bx, by := -dy/chord, dx/chord
	if op.Radius < 0 {
		bx, by = -bx, -by
	}

	half := chord / 2
	h := 0.0
	if r > half {
		h = math.Sqrt(r*r - half*half)
	}
	sweep := 2 * math.Asin(math.Min(1, half/r))

	// the short arc bulges towards b with its center behind the chord, the
	// long arc keeps turning the same way around a center in front of it
	side := -1.0
	if op.Large {
		side = 1
		sweep = 2*math.Pi - sweep
	}
	cx := (from.X+to.X)/2 + side*bx*h
	cy := (from.Y+to.Y)/2 + side*by*h
	if op.Radius > 0 {
		sweep = -sweep
	}

	a0 := math.Atan2(from.Y-cy, from.X-cx)
	rr := math.Hypot(from.X-cx, from.Y-cy)

	pts := make([]Point, 0, steps)
	for i := 1; i < steps; i++ {
		a := a0 + sweep*float64(i)/float64(steps)
		pts = append(pts, Point{cx + rr*math.Cos(a), cy + rr*math.Sin(a)})
	}
	return append(pts, to)
}

// Sector is a thick arc between two radii. Angles are in radians, measured
// counter-clockwise as seen on screen.
type Sector struct {
	Center       Point
	Inner, Outer float64
	Start, End   float64
}

func DegreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// polar converts to screen coordinates where Y grows downwards.
func polar(radius, angle float64) Point {
	return Point{radius * math.Cos(-angle), radius * math.Sin(-angle)}
}

// Corners returns the inner start, inner end, outer end and outer start points.
func (s Sector) Corners() [4]Point {
	return [4]Point{
		s.Center.Add(polar(s.Inner, s.Start)),
		s.Center.Add(polar(s.Inner, s.End)),
		s.Center.Add(polar(s.Outer, s.End)),
		s.Center.Add(polar(s.Outer, s.Start)),
	}
}

// Path builds the closed outline: inner curve, radial edge, outer curve back,
// radial edge to the start.
func (s Sector) Path() Path {
	pts := s.Corners()

	inner, outer := s.Inner, -s.Outer
	if s.End < s.Start {
		inner, outer = -inner, -outer
	}
	large := math.Abs(s.End-s.Start) > math.Pi

	return Path{
		Start: pts[0],
		Ops: []PathOp{
			{Kind: OpCurve, To: pts[1], Radius: inner, Large: large},
			{Kind: OpLine, To: pts[2]},
			{Kind: OpCurve, To: pts[3], Radius: outer, Large: large},
			{Kind: OpLine, To: pts[0]},
		},
	}
}

// ArcLength is the length of the outer edge.
func (s Sector) ArcLength() float64 {
	return s.Outer * math.Abs(s.End-s.Start)
}

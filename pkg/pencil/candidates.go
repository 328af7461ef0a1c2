package pencil

import (
	"math"
	"slices"

	"github.com/matzehuels/facetlayout/pkg/geometry"
)

// MaxCandidates is the capacity of the candidate buffer.
const MaxCandidates = 18

// reservedDetours keeps room for the four U/C candidates, which guarantee
// that generation never comes back empty.
const reservedDetours = 4

// Family is the topology of a candidate shape.
type Family int

const (
	FamilyI Family = iota // straight line
	FamilyZ               // one offset bend, Z or N
	FamilyL               // one corner, L or 7
	FamilyU               // detour around one side, U or C
)

func (f Family) String() string {
	switch f {
	case FamilyI:
		return "I"
	case FamilyZ:
		return "Z/N"
	case FamilyL:
		return "L/7"
	case FamilyU:
		return "U/C"
	default:
		return "unknown"
	}
}

// Candidate is one possible shape for a connector.
type Candidate struct {
	Family Family
	Shape  geometry.Connector
}

// Candidates returns the candidate shapes for a connector from one box to
// another, in generation order.
//
// Outside a layout pass no obstacles are known and the draw area is the
// union of both boxes grown by four object distances.
func (l *Layouter) Candidates(from, to geometry.Rect) []Candidate {
	if l.m == nil {
		l.area = from.Union(to).Expand(4*l.sizes.ObjectDistance, 4*l.sizes.ObjectDistance)
		l.units = math.Max(l.area.Width*l.area.Height, 1)
	}
	return slices.Clone(l.candidates(from, to))
}

// candidates fills the layouter's buffer. The result is only valid until the
// next call.
func (l *Layouter) candidates(from, to geometry.Rect) []Candidate {
	n := 0
	add := func(f Family, c geometry.Connector) {
		limit := MaxCandidates
		if f != FamilyU {
			limit -= reservedDetours
		}
		if n < limit {
			l.buf[n] = Candidate{Family: f, Shape: c}
			n++
		}
	}

	l.straight(from, to, add)
	l.offset(from, to, add)
	l.corner(from, to, add)
	l.detour(from, to, add)
	return l.buf[:n]
}

type addFunc func(Family, geometry.Connector)

// straight adds I shapes when both boxes share a range on one axis and are
// apart on the other.
func (l *Layouter) straight(from, to geometry.Rect, add addFunc) {
	if lo, hi := math.Max(from.Left, to.Left), math.Min(from.Right(), to.Right()); lo <= hi {
		var y1, y2 float64
		ok := true
		switch {
		case to.Top >= from.Bottom():
			y1, y2 = from.Bottom(), to.Top
		case from.Top >= to.Bottom():
			y1, y2 = from.Top, to.Bottom()
		default:
			ok = false
		}
		if ok {
			mid := (lo + hi) / 2
			x := l.space(geometry.NewRect(lo, math.Min(y1, y2), hi-lo, math.Abs(y2-y1)), false, mid)
			add(FamilyI, geometry.NewConnector(x, y1, x, y1, x, y2, x, y2))
			if x != mid {
				add(FamilyI, geometry.NewConnector(mid, y1, mid, y1, mid, y2, mid, y2))
			}
		}
	}

	if lo, hi := math.Max(from.Top, to.Top), math.Min(from.Bottom(), to.Bottom()); lo <= hi {
		var x1, x2 float64
		switch {
		case to.Left >= from.Right():
			x1, x2 = from.Right(), to.Left
		case from.Left >= to.Right():
			x1, x2 = from.Left, to.Right()
		default:
			return
		}
		mid := (lo + hi) / 2
		y := l.space(geometry.NewRect(math.Min(x1, x2), lo, math.Abs(x2-x1), hi-lo), true, mid)
		add(FamilyI, geometry.NewConnector(x1, y, x1, y, x2, y, x2, y))
		if y != mid {
			add(FamilyI, geometry.NewConnector(x1, mid, x1, mid, x2, mid, x2, mid))
		}
	}
}

// offset adds the Z shape (vertical main line) and the N shape (horizontal
// main line) when the boxes are at least two object distances apart.
func (l *Layouter) offset(from, to geometry.Rect, add addFunc) {
	dist := l.sizes.ObjectDistance
	gap := 2 * dist

	var x1, x2 float64
	zOK := true
	switch {
	case to.Left-from.Right() >= gap:
		x1, x2 = from.Right(), to.Left
	case from.Left-to.Right() >= gap:
		x1, x2 = from.Left, to.Right()
	default:
		zOK = false
	}
	if zOK {
		y1, y2 := from.CenterY(), to.CenterY()
		lo, hi := math.Min(x1, x2)+dist, math.Max(x1, x2)-dist
		xm := l.space(geometry.NewRect(lo, math.Min(y1, y2), hi-lo, math.Abs(y2-y1)), false, (x1+x2)/2)
		y1 = l.space(geometry.NewRect(math.Min(x1, xm), from.Top, math.Abs(xm-x1), from.Height), true, y1)
		y2 = l.space(geometry.NewRect(math.Min(x2, xm), to.Top, math.Abs(x2-xm), to.Height), true, y2)
		add(FamilyZ, geometry.NewConnector(x1, y1, xm, y1, xm, y2, x2, y2))
	}

	var y1, y2 float64
	switch {
	case to.Top-from.Bottom() >= gap:
		y1, y2 = from.Bottom(), to.Top
	case from.Top-to.Bottom() >= gap:
		y1, y2 = from.Top, to.Bottom()
	default:
		return
	}
	x1, x2 = from.CenterX(), to.CenterX()
	lo, hi := math.Min(y1, y2)+dist, math.Max(y1, y2)-dist
	ym := l.space(geometry.NewRect(math.Min(x1, x2), lo, math.Abs(x2-x1), hi-lo), true, (y1+y2)/2)
	x1 = l.space(geometry.NewRect(from.Left, math.Min(y1, ym), from.Width, math.Abs(ym-y1)), false, x1)
	x2 = l.space(geometry.NewRect(to.Left, math.Min(y2, ym), to.Width, math.Abs(y2-ym)), false, x2)
	add(FamilyZ, geometry.NewConnector(x1, y1, x1, ym, x2, ym, x2, y2))
}

// corner adds L and 7 shapes. The corner lies inside the span of the
// destination box and at least one object distance outside the source box.
// The main line has zero length and sits on the corner.
func (l *Layouter) corner(from, to geometry.Rect, add addFunc) {
	dist := l.sizes.ObjectDistance

	// horizontal first: leave from a side, arrive at the top or bottom
	for _, right := range [2]bool{true, false} {
		for _, top := range [2]bool{true, false} {
			var xlo, xhi, x0 float64
			if right {
				xlo, xhi, x0 = math.Max(to.Left, from.Right()+dist), to.Right(), from.Right()
			} else {
				xlo, xhi, x0 = to.Left, math.Min(to.Right(), from.Left-dist), from.Left
			}
			var ylo, yhi, y3 float64
			if top {
				ylo, yhi, y3 = from.Top, math.Min(from.Bottom(), to.Top-dist), to.Top
			} else {
				ylo, yhi, y3 = math.Max(from.Top, to.Bottom()+dist), from.Bottom(), to.Bottom()
			}
			if xlo > xhi || ylo > yhi {
				continue
			}
			cx := clamp(to.CenterX(), xlo, xhi)
			cy := clamp(from.CenterY(), ylo, yhi)
			cx = l.space(geometry.NewRect(xlo, math.Min(cy, y3), xhi-xlo, math.Abs(y3-cy)), false, cx)
			cy = l.space(geometry.NewRect(math.Min(x0, cx), ylo, math.Abs(cx-x0), yhi-ylo), true, cy)
			add(FamilyL, geometry.NewConnector(x0, cy, cx, cy, cx, cy, cx, y3))
		}
	}

	// vertical first: leave from the top or bottom, arrive at a side
	for _, down := range [2]bool{true, false} {
		for _, left := range [2]bool{true, false} {
			var ylo, yhi, y0 float64
			if down {
				ylo, yhi, y0 = math.Max(to.Top, from.Bottom()+dist), to.Bottom(), from.Bottom()
			} else {
				ylo, yhi, y0 = to.Top, math.Min(to.Bottom(), from.Top-dist), from.Top
			}
			var xlo, xhi, x3 float64
			if left {
				xlo, xhi, x3 = from.Left, math.Min(from.Right(), to.Left-dist), to.Left
			} else {
				xlo, xhi, x3 = math.Max(from.Left, to.Right()+dist), from.Right(), to.Right()
			}
			if xlo > xhi || ylo > yhi {
				continue
			}
			cx := clamp(from.CenterX(), xlo, xhi)
			cy := clamp(to.CenterY(), ylo, yhi)
			cy = l.space(geometry.NewRect(math.Min(cx, x3), ylo, math.Abs(x3-cx), yhi-ylo), true, cy)
			cx = l.space(geometry.NewRect(xlo, math.Min(y0, cy), xhi-xlo, math.Abs(cy-y0)), false, cx)
			add(FamilyL, geometry.NewConnector(cx, y0, cx, cy, cx, cy, x3, cy))
		}
	}
}

// detour adds the four U and C shapes, one per side. The main line runs
// outside both boxes and is clamped into the draw area. For a self
// relationship the stubs are pushed apart from the shared centre.
func (l *Layouter) detour(from, to geometry.Rect, add addFunc) {
	dist := l.sizes.ObjectDistance
	area := l.area
	self := from == to

	fx, tx := from.CenterX(), to.CenterX()
	fy, ty := from.CenterY(), to.CenterY()
	if self {
		dx, dy := math.Min(dist, from.Width/4), math.Min(dist, from.Height/4)
		fx, tx = fx-dx, tx+dx
		fy, ty = fy-dy, ty+dy
	}

	// stubs slide inside their box unless they were nudged apart
	stubY := func(box geometry.Rect, x0, x1, y float64) float64 {
		if self {
			return y
		}
		return l.space(geometry.NewRect(math.Min(x0, x1), box.Top, math.Abs(x1-x0), box.Height), true, y)
	}
	stubX := func(box geometry.Rect, y0, y1, x float64) float64 {
		if self {
			return x
		}
		return l.space(geometry.NewRect(box.Left, math.Min(y0, y1), box.Width, math.Abs(y1-y0)), false, x)
	}

	// left
	edge := math.Min(from.Left, to.Left) - dist
	xm := l.space(geometry.NewRect(area.Left, math.Min(fy, ty), edge-area.Left, math.Abs(ty-fy)), false, edge)
	xm = clamp(xm, area.Left, area.Right())
	y1, y2 := stubY(from, from.Left, xm, fy), stubY(to, to.Left, xm, ty)
	add(FamilyU, geometry.NewConnector(from.Left, y1, xm, y1, xm, y2, to.Left, y2))

	// right
	edge = math.Max(from.Right(), to.Right()) + dist
	xm = l.space(geometry.NewRect(edge, math.Min(fy, ty), area.Right()-edge, math.Abs(ty-fy)), false, edge)
	xm = clamp(xm, area.Left, area.Right())
	y1, y2 = stubY(from, from.Right(), xm, fy), stubY(to, to.Right(), xm, ty)
	add(FamilyU, geometry.NewConnector(from.Right(), y1, xm, y1, xm, y2, to.Right(), y2))

	// top
	edge = math.Min(from.Top, to.Top) - dist
	ym := l.space(geometry.NewRect(math.Min(fx, tx), area.Top, math.Abs(tx-fx), edge-area.Top), true, edge)
	ym = clamp(ym, area.Top, area.Bottom())
	x1, x2 := stubX(from, from.Top, ym, fx), stubX(to, to.Top, ym, tx)
	add(FamilyU, geometry.NewConnector(x1, from.Top, x1, ym, x2, ym, x2, to.Top))

	// bottom
	edge = math.Max(from.Bottom(), to.Bottom()) + dist
	ym = l.space(geometry.NewRect(math.Min(fx, tx), edge, math.Abs(tx-fx), area.Bottom()-edge), true, edge)
	ym = clamp(ym, area.Top, area.Bottom())
	x1, x2 = stubX(from, from.Bottom(), ym, fx), stubX(to, to.Bottom(), ym, tx)
	add(FamilyU, geometry.NewConnector(x1, from.Bottom(), x1, ym, x2, ym, x2, to.Bottom()))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

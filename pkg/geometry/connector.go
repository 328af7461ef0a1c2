package geometry

import (
	"fmt"
	"math"
)

// Segment is a straight line between two points.
type Segment struct {
	X1, Y1, X2, Y2 float64
}

// Length returns the euclidean length of the segment.
func (s Segment) Length() float64 { return math.Hypot(s.X2-s.X1, s.Y2-s.Y1) }

// IsPoint reports whether both ends coincide.
func (s Segment) IsPoint() bool { return s.X1 == s.X2 && s.Y1 == s.Y2 }

// IsHorizontal reports whether the segment has positive length along x only.
func (s Segment) IsHorizontal() bool { return s.Y1 == s.Y2 && s.X1 != s.X2 }

// IsVertical reports whether the segment has positive length along y only.
func (s Segment) IsVertical() bool { return s.X1 == s.X2 && s.Y1 != s.Y2 }

// Bounds returns the (possibly degenerate) bounding box of the segment.
func (s Segment) Bounds() Rect { return RectFromPoints(s.X1, s.Y1, s.X2, s.Y2) }

// intersectsOpenRect reports whether any point of s lies strictly inside r.
// Segments running along a border or ending on it do not count.
func (s Segment) intersectsOpenRect(r Rect) bool {
	b := s.Bounds()
	return b.Left < r.Right() && b.Right() > r.Left && b.Top < r.Bottom() && b.Bottom() > r.Top
}

// crosses reports whether two segments touch, cross or overlap.
// Parallel segments must overlap on a stretch of positive length.
func (s Segment) crosses(o Segment) bool {
	a, b := s.Bounds(), o.Bounds()
	switch {
	case s.IsHorizontal() && o.IsHorizontal():
		return a.Top == b.Top && a.Left < b.Right() && b.Left < a.Right()
	case s.IsVertical() && o.IsVertical():
		return a.Left == b.Left && a.Top < b.Bottom() && b.Top < a.Bottom()
	default:
		return a.Left <= b.Right() && b.Left <= a.Right() && a.Top <= b.Bottom() && b.Top <= a.Bottom()
	}
}

// Connector is the routed shape of a relationship: a source stub, a main line
// and a destination stub, given by four points.
//
//	source end ── main source ── main dest ── dest end
//
// Any of the three segments may have zero length; an L shape for example has a
// zero-length main line at its corner.
type Connector struct {
	SourceEndX  float64 `json:"source_end_x"`
	SourceEndY  float64 `json:"source_end_y"`
	MainSourceX float64 `json:"main_source_x"`
	MainSourceY float64 `json:"main_source_y"`
	MainDestX   float64 `json:"main_dest_x"`
	MainDestY   float64 `json:"main_dest_y"`
	DestEndX    float64 `json:"dest_end_x"`
	DestEndY    float64 `json:"dest_end_y"`
}

// NewConnector creates a connector from its four points.
func NewConnector(sx, sy, msx, msy, mdx, mdy, dx, dy float64) Connector {
	return Connector{
		SourceEndX: sx, SourceEndY: sy,
		MainSourceX: msx, MainSourceY: msy,
		MainDestX: mdx, MainDestY: mdy,
		DestEndX: dx, DestEndY: dy,
	}
}

// Segments returns source stub, main line and destination stub.
func (c Connector) Segments() [3]Segment {
	return [3]Segment{
		{c.SourceEndX, c.SourceEndY, c.MainSourceX, c.MainSourceY},
		{c.MainSourceX, c.MainSourceY, c.MainDestX, c.MainDestY},
		{c.MainDestX, c.MainDestY, c.DestEndX, c.DestEndY},
	}
}

// Points returns the four points in drawing order.
func (c Connector) Points() [4][2]float64 {
	return [4][2]float64{
		{c.SourceEndX, c.SourceEndY},
		{c.MainSourceX, c.MainSourceY},
		{c.MainDestX, c.MainDestY},
		{c.DestEndX, c.DestEndY},
	}
}

func (c Connector) SourceStubLength() float64 { return c.Segments()[0].Length() }
func (c Connector) MainLength() float64       { return c.Segments()[1].Length() }
func (c Connector) DestStubLength() float64   { return c.Segments()[2].Length() }

// Length returns the total length of all three segments.
func (c Connector) Length() float64 {
	var total float64
	for _, s := range c.Segments() {
		total += s.Length()
	}
	return total
}

// Bounds returns the bounding box of all four points.
func (c Connector) Bounds() Rect {
	pts := c.Points()
	left, right := pts[0][0], pts[0][0]
	top, bottom := pts[0][1], pts[0][1]
	for _, p := range pts[1:] {
		left, right = math.Min(left, p[0]), math.Max(right, p[0])
		top, bottom = math.Min(top, p[1]), math.Max(bottom, p[1])
	}
	return Rect{Left: left, Top: top, Width: right - left, Height: bottom - top}
}

// Directions returns the heading of each of the three segments.
func (c Connector) Directions() Dir3 {
	s := c.Segments()
	return Dir3{
		First:  DirectionOf(s[0].X1, s[0].Y1, s[0].X2, s[0].Y2),
		Second: DirectionOf(s[1].X1, s[1].Y1, s[1].X2, s[1].Y2),
		Third:  DirectionOf(s[2].X1, s[2].Y1, s[2].X2, s[2].Y2),
	}
}

// IntersectsRect reports whether the connector enters the interior of r.
// Touching the border, as a connector does at its own end boxes, is not an intersection.
func (c Connector) IntersectsRect(r Rect) bool {
	for _, s := range c.Segments() {
		if s.intersectsOpenRect(r) {
			return true
		}
	}
	return false
}

// CountIntersects returns the number of segment pairs of c and other that
// cross, touch or overlap. Zero-length segments are ignored.
func (c Connector) CountIntersects(other Connector) int {
	count := 0
	for _, a := range c.Segments() {
		if a.IsPoint() {
			continue
		}
		for _, b := range other.Segments() {
			if b.IsPoint() {
				continue
			}
			if a.crosses(b) {
				count++
			}
		}
	}
	return count
}

func (c Connector) String() string {
	return fmt.Sprintf("(%.1f,%.1f)-(%.1f,%.1f)-(%.1f,%.1f)-(%.1f,%.1f)",
		c.SourceEndX, c.SourceEndY, c.MainSourceX, c.MainSourceY,
		c.MainDestX, c.MainDestY, c.DestEndX, c.DestEndY)
}

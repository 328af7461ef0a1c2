package geometry

import (
	"fmt"
	"math"
)

// Rect is an axis-aligned rectangle given by its top-left corner and size.
//
// The zero value is an empty rectangle at the origin.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewRect creates a rectangle from its top-left corner and size.
func NewRect(left, top, width, height float64) Rect {
	return Rect{Left: left, Top: top, Width: width, Height: height}
}

// RectFromPoints creates the smallest rectangle containing both points.
func RectFromPoints(x1, y1, x2, y2 float64) Rect {
	left, right := math.Min(x1, x2), math.Max(x1, x2)
	top, bottom := math.Min(y1, y2), math.Max(y1, y2)
	return Rect{Left: left, Top: top, Width: right - left, Height: bottom - top}
}

func (r Rect) Right() float64   { return r.Left + r.Width }
func (r Rect) Bottom() float64  { return r.Top + r.Height }
func (r Rect) CenterX() float64 { return r.Left + r.Width/2 }
func (r Rect) CenterY() float64 { return r.Top + r.Height/2 }

// IsEmpty reports whether the rectangle has no area.
func (r Rect) IsEmpty() bool { return r.Width <= 0 || r.Height <= 0 }

// Contains reports whether other lies completely inside r, borders included.
// Degenerate rectangles (lines, points) can be contained.
func (r Rect) Contains(other Rect) bool {
	return other.Left >= r.Left && other.Right() <= r.Right() &&
		other.Top >= r.Top && other.Bottom() <= r.Bottom()
}

// ContainsPoint reports whether (x, y) lies inside r, borders included.
func (r Rect) ContainsPoint(x, y float64) bool {
	return x >= r.Left && x <= r.Right() && y >= r.Top && y <= r.Bottom()
}

// Intersects reports whether r and other share a region of positive area.
// Rectangles that only touch at a border do not intersect.
func (r Rect) Intersects(other Rect) bool {
	return r.Left < other.Right() && other.Left < r.Right() &&
		r.Top < other.Bottom() && other.Top < r.Bottom()
}

// Union returns the bounding box of r and other.
func (r Rect) Union(other Rect) Rect {
	left := math.Min(r.Left, other.Left)
	top := math.Min(r.Top, other.Top)
	right := math.Max(r.Right(), other.Right())
	bottom := math.Max(r.Bottom(), other.Bottom())
	return Rect{Left: left, Top: top, Width: right - left, Height: bottom - top}
}

// Intersection returns the overlapping region of r and other.
// If they do not overlap, the zero Rect is returned.
func (r Rect) Intersection(other Rect) Rect {
	left := math.Max(r.Left, other.Left)
	top := math.Max(r.Top, other.Top)
	right := math.Min(r.Right(), other.Right())
	bottom := math.Min(r.Bottom(), other.Bottom())
	if right < left || bottom < top {
		return Rect{}
	}
	return Rect{Left: left, Top: top, Width: right - left, Height: bottom - top}
}

// Expand grows the rectangle by dx on the left and right and dy on the top and bottom.
// Negative values shrink it; the size never drops below zero.
func (r Rect) Expand(dx, dy float64) Rect {
	out := Rect{Left: r.Left - dx, Top: r.Top - dy, Width: r.Width + 2*dx, Height: r.Height + 2*dy}
	if out.Width < 0 {
		out.Left, out.Width = r.CenterX(), 0
	}
	if out.Height < 0 {
		out.Top, out.Height = r.CenterY(), 0
	}
	return out
}

// Shift moves the rectangle by (dx, dy).
func (r Rect) Shift(dx, dy float64) Rect {
	return Rect{Left: r.Left + dx, Top: r.Top + dy, Width: r.Width, Height: r.Height}
}

func (r Rect) String() string {
	return fmt.Sprintf("(%.1f,%.1f %.1fx%.1f)", r.Left, r.Top, r.Width, r.Height)
}

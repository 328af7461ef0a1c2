package pencil

import (
	"math"

	apperrors "github.com/matzehuels/facetlayout/pkg/errors"
	"github.com/matzehuels/facetlayout/pkg/geometry"
)

// maxSpacePasses bounds the obstacle passes of one space search.
const maxSpacePasses = 8

// ErrSpaceNotFound is returned by the space search when no coordinate in the
// admissible range is free. Callers keep their default coordinate.
var ErrSpaceNotFound = apperrors.New(apperrors.ErrCodeNotFound, "no free space for connector line")

// interval is the blocked range of an obstacle on the searched axis.
type interval struct {
	lo, hi  float64
	primary bool
}

// space runs the space search and falls back to start when it fails.
func (l *Layouter) space(search geometry.Rect, horizontal bool, start float64) float64 {
	v, err := l.findSpace(search, horizontal, l.sizes.clearance(), start)
	if err != nil {
		return start
	}
	return v
}

// findSpace finds a coordinate for one axis-aligned line.
//
// For a horizontal line the searched coordinate is y: search spans the
// admissible y range vertically and the line's extent horizontally. For a
// vertical line the roles are swapped.
//
// Four running coordinates start at start. The best pair moves past every
// obstacle, the good pair only past primary ones: classifier and feature
// boxes plus the earlier layouts of the relationship being routed. An obstacle pushes a running coordinate that lies strictly within
// clearance of it to its far edge plus clearance, below (smaller) or above
// (larger). The first in-range best coordinate wins, then the first good one;
// when both sides qualify the one nearer to start wins, below on a tie.
func (l *Layouter) findSpace(search geometry.Rect, horizontal bool, clearance, start float64) (float64, error) {
	lo, hi := search.Left, search.Right()
	if horizontal {
		lo, hi = search.Top, search.Bottom()
	}
	if lo > hi || math.IsNaN(start) {
		return start, ErrSpaceNotFound
	}

	blocked := l.obstacles(search, horizontal, clearance)

	bestBelow, bestAbove, goodBelow, goodAbove := start, start, start, start
	for pass := 0; pass < maxSpacePasses; pass++ {
		hit := false
		for _, b := range blocked {
			if b.lo < bestBelow && bestBelow < b.hi {
				bestBelow, hit = b.lo, true
			}
			if b.lo < bestAbove && bestAbove < b.hi {
				bestAbove, hit = b.hi, true
			}
			if !b.primary {
				continue
			}
			if b.lo < goodBelow && goodBelow < b.hi {
				goodBelow, hit = b.lo, true
			}
			if b.lo < goodAbove && goodAbove < b.hi {
				goodAbove, hit = b.hi, true
			}
		}
		if !hit {
			break
		}
	}

	if v, ok := nearer(start, lo, hi, bestBelow, bestAbove); ok {
		return v, nil
	}
	if v, ok := nearer(start, lo, hi, goodBelow, goodAbove); ok {
		return v, nil
	}
	return start, ErrSpaceNotFound
}

// nearer picks whichever of below and above lies in [lo, hi] and is closer
// to start; below wins a tie.
func nearer(start, lo, hi, below, above float64) (float64, bool) {
	inBelow := below >= lo && below <= hi
	inAbove := above >= lo && above <= hi
	switch {
	case inBelow && inAbove:
		if start-below <= above-start {
			return below, true
		}
		return above, true
	case inBelow:
		return below, true
	case inAbove:
		return above, true
	}
	return 0, false
}

// obstacles collects the blocked intervals for a search. Only obstacles whose
// extent along the line overlaps the line's extent count, so boxes the line
// merely starts or ends at never block it.
func (l *Layouter) obstacles(search geometry.Rect, horizontal bool, clearance float64) []interval {
	if l.m == nil {
		return nil
	}

	// extent of the line along its own axis
	from, to := search.Top, search.Bottom()
	if horizontal {
		from, to = search.Left, search.Right()
	}
	along := func(r geometry.Rect) bool {
		if horizontal {
			return r.Left < to && r.Right() > from
		}
		return r.Top < to && r.Bottom() > from
	}
	across := func(r geometry.Rect) (float64, float64) {
		if horizontal {
			return r.Top - clearance, r.Bottom() + clearance
		}
		return r.Left - clearance, r.Right() + clearance
	}

	var out []interval
	addBox := func(r geometry.Rect) {
		if r.Width <= 0 && r.Height <= 0 {
			return
		}
		if !along(r) {
			return
		}
		a, b := across(r)
		out = append(out, interval{lo: a, hi: b, primary: true})
	}

	for _, c := range l.m.Classifiers {
		// containers of the search range are not obstacles
		if c.Symbol.Contains(search) {
			continue
		}
		addBox(c.Symbol)
		addBox(c.Label)
	}
	for _, f := range l.m.Features {
		addBox(f.Symbol)
	}

	family := -1
	if l.current >= 0 {
		family = l.m.Relationships[l.current].RelationshipIndex
	}

	// segments of earlier connectors that run parallel to the searched line
	for _, i := range l.placed {
		sibling := l.m.Relationships[i].RelationshipIndex == family
		for _, s := range l.m.Relationships[i].Shape.Segments() {
			if horizontal && !s.IsHorizontal() || !horizontal && !s.IsVertical() {
				continue
			}
			if !along(s.Bounds()) {
				continue
			}
			pos := s.X1
			if horizontal {
				pos = s.Y1
			}
			out = append(out, interval{lo: pos - clearance, hi: pos + clearance, primary: sibling})
		}
	}
	return out
}

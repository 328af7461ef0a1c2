package pencil

import (
	"math"

	apperrors "github.com/matzehuels/facetlayout/pkg/errors"
	"github.com/matzehuels/facetlayout/pkg/geometry"
	"github.com/matzehuels/facetlayout/pkg/layout"
	"github.com/matzehuels/facetlayout/pkg/visible"
)

// Layout1D routes a sequence or timing diagram.
//
// Only relationships with a lifeline on at least one end are drawn; all
// others become implicit. Drawn messages are placed along the ordering axis
// by their list order through a [geometry.Scale] spanning the extent all
// lifelines share (the draw area if there are none). Sequence diagrams order
// top to bottom with horizontal messages, timing diagrams left to right with
// vertical ones. Message ends sit on the centre line of their box; a message
// from a lifeline to itself becomes a small loop.
func (l *Layouter) Layout1D(m *layout.Model) error {
	l.begin(m)
	defer l.end()

	vertical := m.DiagramType() != visible.DiagramTiming

	for i := range m.Relationships {
		r := &m.Relationships[i]
		switch {
		case !m.IsLifeline(r.From) && !m.IsLifeline(r.To):
			r.Visibility = layout.Implicit
		case m.GrayedOut(r.From) || m.GrayedOut(r.To):
			r.Visibility = layout.GrayOut
		default:
			r.Visibility = layout.Show
		}
	}

	lower, upper := l.lifelineExtent(vertical)
	scale := geometry.NewScale(lower, upper)
	var full int
	for i, r := range m.Relationships {
		if !r.Visibility.IsDrawn() {
			continue
		}
		if err := scale.AddOrder(m.Relationship(i).ListOrder); err != nil {
			full++
		}
	}

	for i := range m.Relationships {
		r := &m.Relationships[i]
		from, to := m.EndpointBox(r.From), m.EndpointBox(r.To)
		if r.Visibility.IsDrawn() {
			pos := scale.Location(m.Relationship(i).ListOrder)
			r.Shape = l.message(from, to, r.From == r.To, pos, vertical)
			l.placed = append(l.placed, i)
		} else {
			r.Shape = centreLink(from, to)
		}
		r.Shaped = true
	}

	l.logger.Debug("placed messages",
		"relationships", len(m.Relationships),
		"drawn", len(l.placed),
		"scale_points", scale.Len())
	if full > 0 {
		l.logger.Warn("message scale full, orders interpolated", "capacity", geometry.MaxScalePoints, "dropped", full)
		return apperrors.New(apperrors.ErrCodeCapacityExceeded,
			"message scale capacity %d exceeded, %d orders interpolated", geometry.MaxScalePoints, full)
	}
	return nil
}

// lifelineExtent returns the range along the ordering axis that every
// lifeline covers.
func (l *Layouter) lifelineExtent(vertical bool) (float64, float64) {
	lower, upper := math.Inf(-1), math.Inf(1)
	found := false
	for i, f := range l.m.Features {
		if !l.m.FeatureOf(i).IsLifeline() {
			continue
		}
		found = true
		if vertical {
			lower, upper = math.Max(lower, f.Symbol.Top), math.Min(upper, f.Symbol.Bottom())
		} else {
			lower, upper = math.Max(lower, f.Symbol.Left), math.Min(upper, f.Symbol.Right())
		}
	}
	if !found || lower >= upper {
		if vertical {
			return l.area.Top, l.area.Bottom()
		}
		return l.area.Left, l.area.Right()
	}
	return lower, upper
}

// message shapes one drawn message at pos on the ordering axis.
func (l *Layouter) message(from, to geometry.Rect, self bool, pos float64, vertical bool) geometry.Connector {
	dist := l.sizes.ObjectDistance
	if vertical {
		x1, x2 := from.CenterX(), to.CenterX()
		if self || x1 == x2 {
			return geometry.NewConnector(x1, pos, x1+dist, pos, x1+dist, pos+dist/2, x1, pos+dist/2)
		}
		return geometry.NewConnector(x1, pos, x1, pos, x2, pos, x2, pos)
	}
	y1, y2 := from.CenterY(), to.CenterY()
	if self || y1 == y2 {
		return geometry.NewConnector(pos, y1, pos, y1+dist, pos+dist/2, y1+dist, pos+dist/2, y1)
	}
	return geometry.NewConnector(pos, y1, pos, y1, pos, y2, pos, y2)
}

// centreLink joins two box centres with a Z through the midpoint. Implicit
// scenario relationships get this shape so that every relationship has one.
func centreLink(from, to geometry.Rect) geometry.Connector {
	x1, y1, x2, y2 := from.CenterX(), from.CenterY(), to.CenterX(), to.CenterY()
	xm := (x1 + x2) / 2
	return geometry.NewConnector(x1, y1, xm, y1, xm, y2, x2, y2)
}

package pencil

import (
	"math"

	"github.com/matzehuels/facetlayout/pkg/geometry"
	"github.com/matzehuels/facetlayout/pkg/layout"
)

// Debt factors. Area dependent ones are multiplied by the draw area size.
const (
	tieBreakFactor      = 0.001
	shortStubFactor     = 4
	offCentreFactor     = 2
	badDoglegFactor     = 0.2
	badDoglegMinLength  = 4 // in object distances
	outsideAreaFactor   = 1000
	symbolHitFactor     = 0.1
	labelHitFactor      = 0.02
	featureHitFactor    = 0.05
	intersectionFactor  = 0.002
	ambiguousTurnFactor = 0.5
)

// debts scores candidate k of a relationship between from and to; lower is
// better. It reads the boxes of the model and every connector placed so far.
func (l *Layouter) debts(k int, c geometry.Connector, from, to layout.Endpoint) float64 {
	dist := l.sizes.ObjectDistance
	u := l.units
	fromBox, toBox := l.m.EndpointBox(from), l.m.EndpointBox(to)

	d := float64(k) * tieBreakFactor
	length := c.Length()
	d += length

	for _, stub := range [2]float64{c.SourceStubLength(), c.DestStubLength()} {
		if stub > 0 && stub < dist {
			d += shortStubFactor * (dist - stub)
		}
	}

	d += offCentreFactor * offCentre(c.SourceEndX, c.SourceEndY, fromBox)
	d += offCentreFactor * offCentre(c.DestEndX, c.DestEndY, toBox)

	dirs := c.Directions()
	bad := dirs.IsBadDogleg()
	if bad && length > badDoglegMinLength*dist {
		d += badDoglegFactor * length
	}

	bounds := c.Bounds()
	if !l.area.Contains(bounds) {
		// Larger than the sum of every other debt a connector can collect.
		n := float64(1 + len(l.m.Classifiers) + len(l.m.Features) + len(l.m.Relationships))
		d += outsideAreaFactor * u * n
	}

	for ci, cl := range l.m.Classifiers {
		if !cl.Space.IsEmpty() && cl.Space.Contains(bounds) {
			continue
		}
		// a feature end sits on its owner, touching it is expected
		if (from.IsFeature() && ci == from.Classifier) || (to.IsFeature() && ci == to.Classifier) {
			continue
		}
		if c.IntersectsRect(cl.Symbol) {
			d += symbolHitFactor * u
		}
		if !cl.Label.IsEmpty() && c.IntersectsRect(cl.Label) {
			d += labelHitFactor * u
		}
	}

	for fi, f := range l.m.Features {
		if fi == from.Feature || fi == to.Feature {
			continue
		}
		if c.IntersectsRect(f.Symbol) {
			d += featureHitFactor * u
		}
	}

	for _, pi := range l.placed {
		other := l.m.Relationships[pi].Shape
		n := c.CountIntersects(other)
		if n == 0 {
			continue
		}
		d += intersectionFactor * u * float64(n)
		if bad && other.Directions() == dirs {
			d += ambiguousTurnFactor * u
		}
	}
	return d
}

// offCentre is the smaller of the horizontal and vertical distance from a
// connector end to the centre of its box. Ends on one of the two centre
// lines cost nothing.
func offCentre(x, y float64, box geometry.Rect) float64 {
	return math.Min(math.Abs(x-box.CenterX()), math.Abs(y-box.CenterY()))
}

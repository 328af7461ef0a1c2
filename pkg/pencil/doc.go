// Package pencil routes connectors for the relationships of a layout model.
//
// The router works on a [layout.Model] whose classifier and feature boxes are
// final. For every relationship layout it picks a three segment rectilinear
// [geometry.Connector] (stub, main line, stub) and a [layout.Visibility].
// No relationship is ever left without a shape.
//
// # Processing Order
//
// Connectors placed earlier become obstacles for connectors placed later, so
// the order matters. Each relationship gets a simpleness weight: plain
// dependencies and containment are pushed back by the draw-area width,
// relationships that are not drawn by twice that, and the distance between
// the two end centres pulls a relationship forward. Relationships are routed
// in ascending weight order, hardest first.
//
// # Candidates
//
// For each relationship a small, fixed set of candidate shapes is generated:
//
//   - I: a straight line when the two boxes overlap on one axis
//   - Z and N: one offset bend when the boxes are separated by a wide gap
//   - L and 7: a single corner
//   - U and C: a detour around one side, always available
//
// Free coordinates of every candidate are moved out of obstacles by a
// bounded space search. Each candidate is scored ("debts") by length, stub
// quality, how well the ends are centred, collisions with boxes and earlier
// connectors and whether it leaves the draw area. The cheapest candidate
// wins; on a tie the one generated first wins.
//
// # Variants
//
// [Layouter.Layout] picks the variant from the diagram type. List and box
// diagrams are routed without drawing anything, communication diagrams only
// draw relationships anchored at a feature, and sequence and timing diagrams
// use [Layouter.Layout1D], which places messages along one axis with a
// [geometry.Scale] instead of searching in two dimensions.
//
// # Concurrency
//
// A [Layouter] carries per-pass state and is not safe for concurrent use.
// Use one Layouter per goroutine; distinct models can be laid out in
// parallel that way.
package pencil

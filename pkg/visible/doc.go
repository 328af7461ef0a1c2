// Package visible holds the read-only snapshot of one diagram's elements.
//
// A [Set] is what a layout pass sees: the diagram, every classifier placement,
// the features owned by those classifiers and the relationships between them.
// It is built once per display or refresh through a [Builder] and never
// mutated afterwards.
//
// # Placements
//
// A classifier may appear more than once in a diagram. Each occurrence is a
// [Placement] with its own id, unique within the diagram, while the classifier
// id (the model identity) repeats. Relationships and features reference
// classifiers by model id; the layout model fans them out per placement.
//
// # Capacities
//
// All collections are bounded by [MaxClassifiers], [MaxFeatures] and
// [MaxRelationships]. Elements past a bound are dropped and the Add call
// returns a capacity-exceeded error. Dropping is a documented degradation,
// callers usually log the error and carry on. [Set.Dropped] reports the total.
//
// # Validation
//
// [Builder.Build] rejects dangling references with an INVALID_INPUT error: a
// feature whose owner is unknown, a relationship whose end classifier or end
// feature is unknown, or an end feature that is not owned by the named end
// classifier. References to elements that were dropped for capacity reasons
// are not errors; the referencing element is dropped as well.
//
// # Containment
//
// After validation Build computes the containment closure over placements.
// A containment relationship from classifier A to classifier B means A
// contains B; every placement of A then contains every placement of B.
// See [Set.IsAncestor].
package visible

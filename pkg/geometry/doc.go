// Package geometry provides the planar primitives used by the diagram router.
//
// Coordinates are screen coordinates: x grows to the right, y grows downward.
// All shapes are axis-aligned. The package has three parts:
//
//   - [Rect]: boxes of classifiers, features, labels and the draw area
//   - [Connector]: the 3-segment polyline (stub, main line, stub) that
//     represents a routed relationship, plus its direction signature [Dir3]
//   - [Scale]: a non-linear mapping between sparse integer order values
//     (list positions) and continuous coordinates
//
// None of the types are safe for concurrent mutation; [Rect] and [Connector]
// are plain values and can be copied freely.
package geometry

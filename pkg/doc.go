// Package pkg provides the core libraries of facetlayout, a connector router
// for structured-model diagrams.
//
// # Overview
//
// facetlayout takes a diagram whose shapes are already placed and routes
// every relationship between them as a short rectilinear connector that
// avoids the shapes and the connectors placed before it. The pkg directory
// is organized into three areas:
//
//  1. Domain: [geometry], [sorter], [visible], [layout] and [pencil]
//  2. Infrastructure: [cache], [config], [errors], [observability]
//  3. Orchestration: [io], [pipeline] and [render]
//
// # Architecture
//
// The typical data flow:
//
//	diagram document (JSON)
//	         ↓
//	    [io] package (decode, build the visible set and layout model)
//	         ↓
//	    [pencil] package (route relationships into connectors)
//	         ↓
//	    [render] package (SVG, PNG, PDF preview) or [io] layout export
//
// [pipeline] strings these stages together with caching and is shared by the
// CLI and the HTTP server.
//
// # Quick Start
//
//	doc, err := io.ImportDocument("pump.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	m, err := doc.Build()
//	if err != nil && !errors.IsCapacityExceeded(err) {
//	    log.Fatal(err)
//	}
//	if err := pencil.New(pencil.DefaultSizes(), nil).Layout(m); err != nil {
//	    log.Print(err)
//	}
//	io.ExportLayout(io.NewLayout(m), "pump.layout.json")
//
// # Capacity
//
// Every container has a fixed capacity. Overflow drops the excess, logs a
// warning and returns a CAPACITY_EXCEEDED error next to a usable result, so
// callers never lose a whole layout to one oversized diagram.
package pkg

// Package io reads diagram documents and writes computed layouts as JSON.
//
// # Diagram Documents
//
// A diagram document describes what a diagram shows and where its boxes are.
// Connectors are not part of the input; computing them is the layouter's job.
//
//	{
//	  "diagram": {"id": 1, "name": "Pump control", "type": "block",
//	              "bounds": {"left": 0, "top": 0, "width": 800, "height": 600}},
//	  "classifiers": [
//	    {"placement_id": 1, "id": 10, "name": "Pump",
//	     "symbol": {"left": 40, "top": 40, "width": 120, "height": 60}},
//	    {"placement_id": 2, "id": 11, "name": "Valve",
//	     "symbol": {"left": 400, "top": 240, "width": 120, "height": 60}}
//	  ],
//	  "features": [],
//	  "relationships": [
//	    {"id": 100, "type": "dependency", "from_classifier_id": 10, "to_classifier_id": 11}
//	  ]
//	}
//
// Every classifier entry is one placement: a classifier drawn twice appears
// twice with different placement ids. Features list their boxes per
// placement of the owning classifier.
//
// Enumerations are written by name: diagram types such as "block" or
// "sequence", feature types such as "port" or "lifeline", relationship types
// such as "dependency" or "containment".
//
// # Import
//
// [ImportDocument] and [ReadDocument] decode a document. [Document.Build]
// turns it into a [layout.Model] with all boxes applied, ready for a
// layouter. Capacity overflows drop the excess elements and are reported as
// a CAPACITY_EXCEEDED error alongside a usable model.
//
// # Export
//
// [NewLayout] captures the routed relationships of a model; [WriteLayout] and
// [ExportLayout] write them as JSON. [Layout.Apply] restores the shapes into a
// model built from the same document, which is how cached layouts are reused.
//
// [layout.Model]: github.com/matzehuels/facetlayout/pkg/layout.Model
package io

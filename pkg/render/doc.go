// Package render draws routed layout models.
//
// # Overview
//
// A [Renderer] turns a laid out [layout.Model] into SVG. Two renderers exist:
//
//   - [svg]: draws boxes and connectors directly with svgo (default)
//   - [dot]: emits DOT with pinned positions and lets Graphviz draw it
//
// [Render] selects the output format. PNG and PDF are produced from the SVG
// with the external rsvg-convert tool (from librsvg):
//
//	data, err := render.Render(ctx, svg.New(), m, render.FormatPDF, render.Options{})
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] convert any SVG. They fail with an UNSUPPORTED error
// when rsvg-convert is not installed.
//
// [svg]: github.com/matzehuels/facetlayout/pkg/render/svg
// [dot]: github.com/matzehuels/facetlayout/pkg/render/dot
// [layout.Model]: github.com/matzehuels/facetlayout/pkg/layout.Model
package render

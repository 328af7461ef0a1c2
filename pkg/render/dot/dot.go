// Package dot renders routed diagrams through Graphviz.
//
// Graphviz does no layout here: every node carries a pinned position and
// every edge the spline of its routed connector, and the nop2 engine only
// draws them. The result is useful to compare the router against Graphviz
// output or to post-process the DOT with other Graphviz tools.
package dot

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/facetlayout/pkg/geometry"
	"github.com/matzehuels/facetlayout/pkg/layout"
	"github.com/matzehuels/facetlayout/pkg/render"
)

// Name is the renderer name used in cache keys.
const Name = "dot"

// pointsPerInch converts diagram units to Graphviz inches.
const pointsPerInch = 72.0

// Renderer implements [render.Renderer] with go-graphviz.
type Renderer struct{}

// New returns the Graphviz renderer.
func New() Renderer { return Renderer{} }

func (Renderer) Name() string { return Name }

// ToDOT converts a routed model to DOT with pinned positions.
//
// Graphviz puts the origin at the bottom left, so y coordinates are flipped
// within the frame.
func ToDOT(m *layout.Model, opts render.Options) string {
	opts = opts.WithDefaults()
	left, top, width, height := render.Frame(m, opts)
	flip := func(x, y float64) string {
		return fmt.Sprintf("%.2f,%.2f", x-left, top+height-y)
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  bb=\"0,0,%.2f,%.2f\";\n", width, height)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  splines=true;\n")
	fmt.Fprintf(&buf, "  node [shape=box, fixedsize=true, fontsize=%g, fontname=\"sans-serif\"];\n", opts.FontSize)
	fmt.Fprintf(&buf, "  edge [penwidth=%g, arrowsize=0.6];\n", opts.LineWidth)
	buf.WriteString("\n")

	vcs := m.Set().Classifiers()
	for i, c := range m.Classifiers {
		attrs := []string{
			fmt.Sprintf("label=%q", vcs[c.Index].Classifier.Name),
			fmt.Sprintf("pos=\"%s!\"", flip(c.Symbol.CenterX(), c.Symbol.CenterY())),
			fmt.Sprintf("width=%.4f", c.Symbol.Width/pointsPerInch),
			fmt.Sprintf("height=%.4f", c.Symbol.Height/pointsPerInch),
		}
		if m.GrayedOut(layout.Endpoint{Classifier: i, Feature: -1}) {
			attrs = append(attrs, "color=gray60", "fontcolor=gray50")
		}
		fmt.Fprintf(&buf, "  c%d [%s];\n", i, strings.Join(attrs, ", "))
	}
	for i, f := range m.Features {
		if f.Symbol.IsEmpty() {
			continue
		}
		fmt.Fprintf(&buf, "  f%d [label=\"\", style=filled, fillcolor=\"#e8eef7\", pos=\"%s!\", width=%.4f, height=%.4f];\n",
			i, flip(f.Symbol.CenterX(), f.Symbol.CenterY()), f.Symbol.Width/pointsPerInch, f.Symbol.Height/pointsPerInch)
	}

	buf.WriteString("\n")
	for i, r := range m.Relationships {
		style, ok := edgeStyle(r.Visibility, opts)
		if !ok || !r.Shaped {
			continue
		}
		attrs := []string{fmt.Sprintf("pos=%q", spline(r.Shape, flip))}
		attrs = append(attrs, style...)
		if name := m.Relationship(i).Name; name != "" {
			attrs = append(attrs, fmt.Sprintf("xlabel=%q", name))
		}
		fmt.Fprintf(&buf, "  %s -> %s [%s];\n", node(m, r.From), node(m, r.To), strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func node(m *layout.Model, e layout.Endpoint) string {
	if e.IsFeature() && !m.Features[e.Feature].Symbol.IsEmpty() {
		return "f" + strconv.Itoa(e.Feature)
	}
	return "c" + strconv.Itoa(e.Classifier)
}

func edgeStyle(v layout.Visibility, opts render.Options) ([]string, bool) {
	switch v {
	case layout.Show:
		return nil, true
	case layout.GrayOut:
		return []string{"color=gray60"}, true
	case layout.Implicit:
		if opts.ShowImplicit {
			return []string{"style=dashed", "color=gray80", "arrowhead=none"}, true
		}
	}
	return nil, false
}

// arrowLength is how far the spline stops short of the arrowhead tip.
const arrowLength = 8.0

// spline encodes the connector as a cubic B-spline: every straight segment
// becomes a curve whose control points sit on its end points. The leading
// "e," point is the arrowhead tip on the destination box; the curve itself
// ends arrowLength before it.
func spline(c geometry.Connector, flip func(x, y float64) string) string {
	pts := c.Points()
	tip := pts[3]
	pts[3] = arrowBase(c)

	parts := []string{"e," + flip(tip[0], tip[1]), flip(pts[0][0], pts[0][1])}
	for i := 0; i < 3; i++ {
		a, b := pts[i], pts[i+1]
		parts = append(parts, flip(a[0], a[1]), flip(b[0], b[1]), flip(b[0], b[1]))
	}
	return strings.Join(parts, " ")
}

// arrowBase backs off from the destination end along the last segment with
// a non-zero length.
func arrowBase(c geometry.Connector) [2]float64 {
	segs := c.Segments()
	end := [2]float64{c.DestEndX, c.DestEndY}
	for i := 2; i >= 0; i-- {
		s := segs[i]
		l := s.Length()
		if l == 0 {
			continue
		}
		d := math.Min(arrowLength, l/2)
		return [2]float64{end[0] - (s.X2-s.X1)/l*d, end[1] - (s.Y2-s.Y1)/l*d}
	}
	return end
}

// SVG renders m through Graphviz's nop2 engine.
func (Renderer) SVG(ctx context.Context, m *layout.Model, opts render.Options) ([]byte, error) {
	return RenderSVG(ctx, ToDOT(m, opts))
}

// RenderSVG renders a DOT graph with pinned positions to SVG.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NOP2)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt sized root element by a unitless
// one so the SVG scales like the svgo output.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}

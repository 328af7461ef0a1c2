// Package svg draws routed diagrams with svgo.
//
// The output is a preview: classifier and feature boxes as rectangles,
// labels as plain text and each drawn connector as a polyline through its
// four points with an arrowhead at the destination end.
package svg

import (
	"bytes"
	"context"
	"fmt"
	"math"

	svgo "github.com/ajstarks/svgo"

	"github.com/matzehuels/facetlayout/pkg/geometry"
	"github.com/matzehuels/facetlayout/pkg/layout"
	"github.com/matzehuels/facetlayout/pkg/render"
)

// Name is the renderer name used in cache keys.
const Name = "svg"

// Renderer implements [render.Renderer] on top of svgo.
type Renderer struct{}

// New returns the svgo renderer.
func New() Renderer { return Renderer{} }

func (Renderer) Name() string { return Name }

const (
	styleClassifier = "fill:#ffffff;stroke:#333333;stroke-width:1"
	styleGrayed     = "fill:#f4f4f4;stroke:#aaaaaa;stroke-width:1"
	styleFeature    = "fill:#e8eef7;stroke:#4a6fa5;stroke-width:1"
	styleLabel      = "font-family:sans-serif;fill:#222222"
)

// SVG draws m.
func (Renderer) SVG(ctx context.Context, m *layout.Model, opts render.Options) ([]byte, error) {
	opts = opts.WithDefaults()
	left, top, width, height := render.Frame(m, opts)
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("nothing to draw: empty draw area")
	}

	var buf bytes.Buffer
	canvas := svgo.New(&buf)
	canvas.Startview(px(width), px(height), px(left), px(top), px(width), px(height))
	canvas.Title(m.Set().Diagram().Name)
	defs(canvas)

	vcs := m.Set().Classifiers()
	canvas.Gid("classifiers")
	for i, c := range m.Classifiers {
		style := styleClassifier
		if m.GrayedOut(layout.Endpoint{Classifier: i, Feature: -1}) {
			style = styleGrayed
		}
		rect(canvas, c.Symbol, style)
		text(canvas, labelBox(c), vcs[c.Index].Classifier.Name, opts.FontSize)
	}
	canvas.Gend()

	canvas.Gid("features")
	for i, f := range m.Features {
		if f.Symbol.IsEmpty() {
			continue
		}
		rect(canvas, f.Symbol, styleFeature)
		if key := m.FeatureOf(i).Key; key != "" && !f.Label.IsEmpty() {
			text(canvas, f.Label, key, opts.FontSize*0.8)
		}
	}
	canvas.Gend()

	canvas.Gid("relationships")
	for i, r := range m.Relationships {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		style, ok := connectorStyle(r.Visibility, opts)
		if !ok || !r.Shaped {
			continue
		}
		xs, ys := polyline(r.Shape)
		canvas.Polyline(xs, ys, style)
		if name := m.Relationship(i).Name; name != "" && r.Visibility.IsDrawn() {
			s := r.Shape.Segments()[1]
			canvas.Text(px((s.X1+s.X2)/2), px((s.Y1+s.Y2)/2)-2, name,
				fmt.Sprintf("%s;font-size:%gpx;text-anchor:middle", styleLabel, opts.FontSize*0.8))
		}
	}
	canvas.Gend()

	canvas.End()
	return buf.Bytes(), nil
}

func defs(canvas *svgo.SVG) {
	canvas.Def()
	canvas.Marker("arrow", 8, 4, 8, 8, `orient="auto"`)
	canvas.Path("M0,0 L8,4 L0,8 z", "fill:#333333")
	canvas.MarkerEnd()
	canvas.DefEnd()
}

// connectorStyle returns the stroke of a connector and whether it is drawn.
func connectorStyle(v layout.Visibility, opts render.Options) (string, bool) {
	base := fmt.Sprintf("fill:none;stroke-width:%g", opts.LineWidth)
	switch v {
	case layout.Show:
		return base + ";stroke:#333333;marker-end:url(#arrow)", true
	case layout.GrayOut:
		return base + ";stroke:#aaaaaa;marker-end:url(#arrow)", true
	case layout.Implicit:
		if opts.ShowImplicit {
			return base + ";stroke:#cccccc;stroke-dasharray:4,3", true
		}
	}
	return "", false
}

// polyline returns the distinct points of a connector; zero-length segments
// are collapsed so markers orient along the last real segment.
func polyline(c geometry.Connector) ([]int, []int) {
	var xs, ys []int
	for _, p := range c.Points() {
		x, y := px(p[0]), px(p[1])
		if n := len(xs); n > 0 && xs[n-1] == x && ys[n-1] == y {
			continue
		}
		xs, ys = append(xs, x), append(ys, y)
	}
	return xs, ys
}

func labelBox(c layout.Classifier) geometry.Rect {
	if !c.Label.IsEmpty() {
		return c.Label
	}
	return geometry.NewRect(c.Symbol.Left+4, c.Symbol.Top+2, c.Symbol.Width-8, 14)
}

func rect(canvas *svgo.SVG, r geometry.Rect, style string) {
	canvas.Rect(px(r.Left), px(r.Top), px(r.Width), px(r.Height), style)
}

func text(canvas *svgo.SVG, box geometry.Rect, s string, size float64) {
	if s == "" {
		return
	}
	canvas.Text(px(box.Left), px(box.Top+size), s, fmt.Sprintf("%s;font-size:%gpx", styleLabel, size))
}

func px(v float64) int { return int(math.Round(v)) }

package svg

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/facetlayout/pkg/geometry"
	"github.com/matzehuels/facetlayout/pkg/io"
	"github.com/matzehuels/facetlayout/pkg/layout"
	"github.com/matzehuels/facetlayout/pkg/pencil"
	"github.com/matzehuels/facetlayout/pkg/render"
	"github.com/matzehuels/facetlayout/pkg/visible"
)

func routed(t *testing.T, typ visible.DiagramType) *layout.Model {
	t.Helper()
	doc := &io.Document{
		Diagram: io.DiagramDoc{ID: 1, Name: "Pumps & valves", Type: typ},
		Classifiers: []io.ClassifierDoc{
			{PlacementID: 1, ID: 10, Name: "Pump", Symbol: geometry.NewRect(0, 0, 100, 50)},
			{PlacementID: 2, ID: 11, Name: "Valve", GrayOut: true, Symbol: geometry.NewRect(300, 200, 100, 50)},
		},
		Relationships: []visible.Relationship{
			{ID: 1, FromClassifierID: 10, ToClassifierID: 11, Name: "feeds"},
		},
	}
	m, err := doc.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := pencil.New(pencil.DefaultSizes(), nil).Layout(m); err != nil {
		t.Fatalf("Layout: %v", err)
	}
	return m
}

func TestSVG(t *testing.T) {
	m := routed(t, visible.DiagramBlock)
	out, err := New().SVG(context.Background(), m, render.Options{})
	if err != nil {
		t.Fatalf("SVG: %v", err)
	}
	s := string(out)

	checks := []struct {
		name, want string
	}{
		{"root", "<svg"},
		{"escaped title", "Pumps &amp; valves"},
		{"arrow marker", `id="arrow"`},
		{"classifier label", ">Pump</text>"},
		{"grayed placement", "fill:#f4f4f4"},
		{"connector", "<polyline"},
		{"grayed connector", "stroke:#aaaaaa;marker-end"},
		{"relationship name", ">feeds</text>"},
	}
	for _, c := range checks {
		t.Run(c.name, func(t *testing.T) {
			if !strings.Contains(s, c.want) {
				t.Errorf("output misses %q", c.want)
			}
		})
	}
}

func TestSVGImplicit(t *testing.T) {
	m := routed(t, visible.DiagramList) // void layouts draw nothing

	out, err := New().SVG(context.Background(), m, render.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(out), "<polyline") {
		t.Error("implicit connectors should be hidden by default")
	}

	out, err = New().SVG(context.Background(), m, render.Options{ShowImplicit: true})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), "stroke-dasharray") {
		t.Error("ShowImplicit should draw dashed connectors")
	}
}

func TestPolylineCollapsesZeroSegments(t *testing.T) {
	// an L shape has a zero-length main line at its corner
	c := geometry.NewConnector(0, 0, 50, 0, 50, 0, 50, 80)
	xs, ys := polyline(c)
	if len(xs) != 3 || len(ys) != 3 {
		t.Fatalf("points = %v %v, want 3", xs, ys)
	}
	if xs[1] != 50 || ys[1] != 0 {
		t.Errorf("corner = (%d,%d), want (50,0)", xs[1], ys[1])
	}
}

func TestRenderFormats(t *testing.T) {
	m := routed(t, visible.DiagramBlock)
	out, err := render.Render(context.Background(), New(), m, render.FormatSVG, render.Options{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.HasPrefix(string(out), "<?xml") {
		t.Errorf("svg output should start with an xml header, got %.20q", out)
	}
	if _, err := render.Render(context.Background(), New(), m, "gif", render.Options{}); err == nil {
		t.Error("unknown format should fail")
	}
}

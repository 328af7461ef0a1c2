package pencil

import (
	"testing"

	"github.com/matzehuels/facetlayout/pkg/geometry"
	"github.com/matzehuels/facetlayout/pkg/layout"
	"github.com/matzehuels/facetlayout/pkg/visible"
)

func sequenceScene(t *testing.T, typ visible.DiagramType, rels []rel) *layout.Model {
	t.Helper()
	var boxes []geometry.Rect
	var lifelines []geometry.Rect
	if typ == visible.DiagramTiming {
		boxes = []geometry.Rect{geometry.NewRect(0, 0, 60, 40), geometry.NewRect(0, 100, 60, 40), geometry.NewRect(0, 200, 60, 40)}
		lifelines = []geometry.Rect{geometry.NewRect(60, 15, 400, 10), geometry.NewRect(80, 115, 360, 10)}
	} else {
		boxes = []geometry.Rect{geometry.NewRect(0, 0, 100, 40), geometry.NewRect(200, 0, 100, 40), geometry.NewRect(400, 0, 100, 40)}
		lifelines = []geometry.Rect{geometry.NewRect(45, 40, 10, 400), geometry.NewRect(245, 60, 10, 360)}
	}
	feats := []feat{
		{id: 10, owner: 1, typ: visible.FeatureLifeline, box: lifelines[0]},
		{id: 20, owner: 2, typ: visible.FeatureLifeline, box: lifelines[1]},
	}
	return scene(t, typ, boxes, feats, rels)
}

func TestLayout1DSequence(t *testing.T) {
	m := sequenceScene(t, visible.DiagramSequence, []rel{
		{from: 1, to: 2, fromFeat: 10, toFeat: 20, typ: visible.RelSyncCall, order: 500},
		{from: 2, to: 1, fromFeat: 20, toFeat: 10, typ: visible.RelReturnCall, order: 100},
		{from: 1, to: 1, fromFeat: 10, toFeat: 10, typ: visible.RelSyncCall, order: 300},
		{from: 1, to: 3, typ: visible.RelAssociation},
		{from: 2, to: 3, fromFeat: 20, typ: visible.RelAsyncCall, order: 900},
	})
	if err := quietLayouter().Layout1D(m); err != nil {
		t.Fatalf("Layout1D: %v", err)
	}

	want := []layout.Visibility{layout.Show, layout.Show, layout.Show, layout.Implicit, layout.Show}
	for i, r := range m.Relationships {
		if r.Visibility != want[i] {
			t.Errorf("relationship %d visibility = %v, want %v", i, r.Visibility, want[i])
		}
		if !r.Shaped {
			t.Errorf("relationship %d not shaped", i)
		}
	}

	// shared lifeline extent is y 60..420; four drawn orders spread evenly
	call, ret, self, toBox := m.Relationships[0].Shape, m.Relationships[1].Shape, m.Relationships[2].Shape, m.Relationships[4].Shape
	if ret.SourceEndY != 132 || self.SourceEndY != 204 || call.SourceEndY != 276 || toBox.SourceEndY != 348 {
		t.Errorf("message y = %v %v %v %v, want 132 204 276 348",
			ret.SourceEndY, self.SourceEndY, call.SourceEndY, toBox.SourceEndY)
	}
	if call.SourceEndX != 50 || call.DestEndX != 250 || call.DestEndY != call.SourceEndY {
		t.Errorf("call shape = %v, want horizontal from x 50 to 250", call)
	}
	if toBox.DestEndX != 450 {
		t.Errorf("message to plain classifier ends at x %v, want box centre 450", toBox.DestEndX)
	}
	if self.MainLength() <= 0 || self.SourceEndX != self.DestEndX {
		t.Errorf("self message = %v, want a loop back to the lifeline", self)
	}
}

func TestLayout1DTiming(t *testing.T) {
	m := sequenceScene(t, visible.DiagramTiming, []rel{
		{from: 1, to: 2, fromFeat: 10, toFeat: 20, typ: visible.RelSyncCall, order: 7},
	})
	if err := quietLayouter().Layout(m); err != nil {
		t.Fatalf("Layout: %v", err)
	}
	s := m.Relationships[0].Shape
	// shared extent x 80..440, one order in the middle
	if s.SourceEndX != 260 || s.DestEndX != 260 {
		t.Errorf("timing message x = %v/%v, want 260", s.SourceEndX, s.DestEndX)
	}
	if s.SourceEndY != 20 || s.DestEndY != 120 {
		t.Errorf("timing message y = %v/%v, want 20/120", s.SourceEndY, s.DestEndY)
	}
}

func TestLayout1DWithoutLifelinesUsesDrawArea(t *testing.T) {
	m := scene(t, visible.DiagramSequence,
		[]geometry.Rect{geometry.NewRect(0, 0, 40, 40), geometry.NewRect(100, 0, 40, 40)}, nil,
		[]rel{{from: 1, to: 2, typ: visible.RelSyncCall, order: 1}})
	if err := quietLayouter().Layout1D(m); err != nil {
		t.Fatalf("Layout1D: %v", err)
	}
	r := m.Relationships[0]
	if r.Visibility != layout.Implicit || !r.Shaped {
		t.Errorf("relationship = %+v, want implicit and shaped", r)
	}
}

package pencil

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/facetlayout/pkg/geometry"
	"github.com/matzehuels/facetlayout/pkg/layout"
	"github.com/matzehuels/facetlayout/pkg/visible"
)

func quietLayouter() *Layouter {
	return New(DefaultSizes(), log.New(io.Discard))
}

// rel describes a relationship between classifiers numbered from 1.
type rel struct {
	from, to         int64
	fromFeat, toFeat int64
	typ              visible.RelationshipType
	order            int32
}

// feat describes a feature of a classifier numbered from 1.
type feat struct {
	id, owner int64
	typ       visible.FeatureType
	box       geometry.Rect
}

// scene builds a model with one placement per box. Placement and classifier
// ids equal the box position plus one.
func scene(t *testing.T, typ visible.DiagramType, boxes []geometry.Rect, feats []feat, rels []rel) *layout.Model {
	t.Helper()
	b := visible.NewBuilder()
	b.SetDiagram(visible.Diagram{ID: 1, Name: "test", Type: typ})

	focus := make(map[int64]int64)
	for _, f := range feats {
		if f.typ == visible.FeatureLifeline {
			focus[f.owner] = f.id
		}
	}
	for i := range boxes {
		id := int64(i + 1)
		if err := b.AddClassifier(visible.VisibleClassifier{
			Placement:  visible.Placement{ID: id, FocusedFeatureID: focus[id]},
			Classifier: visible.Classifier{ID: id, Name: "C"},
		}); err != nil {
			t.Fatal(err)
		}
	}
	for _, f := range feats {
		if err := b.AddFeature(visible.Feature{ID: f.id, ClassifierID: f.owner, Type: f.typ}); err != nil {
			t.Fatal(err)
		}
	}
	for i, r := range rels {
		if err := b.AddRelationship(visible.Relationship{
			ID: int64(i + 1), Type: r.typ,
			FromClassifierID: r.from, ToClassifierID: r.to,
			FromFeatureID: r.fromFeat, ToFeatureID: r.toFeat,
			ListOrder: r.order,
		}); err != nil {
			t.Fatal(err)
		}
	}
	set, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	m, err := layout.New(set)
	if err != nil {
		t.Fatalf("layout.New: %v", err)
	}
	for i, r := range boxes {
		if err := m.SetClassifierBoxes(int64(i+1), r, geometry.Rect{}, geometry.Rect{}); err != nil {
			t.Fatal(err)
		}
	}
	for _, f := range feats {
		if err := m.SetFeatureBox(f.owner, f.id, f.box, geometry.Rect{}); err != nil {
			t.Fatal(err)
		}
	}
	return m
}

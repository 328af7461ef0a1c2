package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	apperrors "github.com/matzehuels/facetlayout/pkg/errors"
	"github.com/matzehuels/facetlayout/pkg/geometry"
	"github.com/matzehuels/facetlayout/pkg/layout"
	"github.com/matzehuels/facetlayout/pkg/visible"
)

// Layout is the routed result of one diagram.
type Layout struct {
	DiagramID     int64                `json:"diagram_id" msgpack:"diagram_id"`
	DiagramType   visible.DiagramType  `json:"diagram_type" msgpack:"diagram_type"`
	DrawArea      geometry.Rect        `json:"draw_area" msgpack:"draw_area"`
	Relationships []RelationshipLayout `json:"relationships" msgpack:"relationships"`
}

// RelationshipLayout is one connector between two placements.
type RelationshipLayout struct {
	RelationshipID int64                    `json:"relationship_id" msgpack:"relationship_id"`
	Type           visible.RelationshipType `json:"type" msgpack:"type"`
	Name           string                   `json:"name,omitempty" msgpack:"name,omitempty"`
	From           EndLayout                `json:"from" msgpack:"from"`
	To             EndLayout                `json:"to" msgpack:"to"`
	Visibility     layout.Visibility        `json:"visibility" msgpack:"visibility"`
	Connector      geometry.Connector       `json:"connector" msgpack:"connector"`
}

// EndLayout identifies the placement, and optionally the feature, a
// connector end attaches to.
type EndLayout struct {
	PlacementID int64 `json:"placement_id" msgpack:"placement_id"`
	FeatureID   int64 `json:"feature_id,omitempty" msgpack:"feature_id,omitempty"`
}

// NewLayout captures the relationship layouts of m in model order.
func NewLayout(m *layout.Model) *Layout {
	d := m.Set().Diagram()
	out := &Layout{
		DiagramID:     d.ID,
		DiagramType:   d.Type,
		DrawArea:      m.DrawArea(),
		Relationships: make([]RelationshipLayout, len(m.Relationships)),
	}
	for i, r := range m.Relationships {
		vr := m.Relationship(i)
		out.Relationships[i] = RelationshipLayout{
			RelationshipID: vr.ID,
			Type:           vr.Type,
			Name:           vr.Name,
			From:           endLayout(m, r.From),
			To:             endLayout(m, r.To),
			Visibility:     r.Visibility,
			Connector:      r.Shape,
		}
	}
	return out
}

func endLayout(m *layout.Model, e layout.Endpoint) EndLayout {
	end := EndLayout{PlacementID: m.Placement(e.Classifier).ID}
	if e.IsFeature() {
		end.FeatureID = m.FeatureOf(e.Feature).ID
	}
	return end
}

// Drawn counts the relationship layouts that are painted.
func (l *Layout) Drawn() int {
	n := 0
	for _, r := range l.Relationships {
		if r.Visibility.IsDrawn() {
			n++
		}
	}
	return n
}

// Apply restores shapes and visibilities into m. The model must have been
// built from the same document; a mismatch is an INVALID_INPUT error and
// leaves m unchanged.
func (l *Layout) Apply(m *layout.Model) error {
	if len(l.Relationships) != len(m.Relationships) {
		return apperrors.New(apperrors.ErrCodeInvalidInput,
			"layout has %d relationships, model has %d", len(l.Relationships), len(m.Relationships))
	}
	for i, r := range m.Relationships {
		lr := l.Relationships[i]
		if lr.RelationshipID != m.Relationship(i).ID || lr.From != endLayout(m, r.From) || lr.To != endLayout(m, r.To) {
			return apperrors.New(apperrors.ErrCodeInvalidInput,
				"layout entry %d does not match relationship %d", i, m.Relationship(i).ID)
		}
	}
	for i := range m.Relationships {
		m.Relationships[i].Visibility = l.Relationships[i].Visibility
		m.Relationships[i].Shape = l.Relationships[i].Connector
		m.Relationships[i].Shaped = true
	}
	return nil
}

// WriteLayout encodes l as indented JSON.
func WriteLayout(l *Layout, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(l); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportLayout writes l to a JSON file at path.
func ExportLayout(l *Layout, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteLayout(l, f)
}

// ReadLayout decodes a layout written by [WriteLayout].
func ReadLayout(r io.Reader) (*Layout, error) {
	var l Layout
	if err := json.NewDecoder(r).Decode(&l); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidFormat, err, "decode layout")
	}
	return &l, nil
}

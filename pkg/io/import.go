package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	apperrors "github.com/matzehuels/facetlayout/pkg/errors"
	"github.com/matzehuels/facetlayout/pkg/layout"
	"github.com/matzehuels/facetlayout/pkg/visible"
)

// ReadDocument decodes a diagram document from r.
//
// Unknown fields are rejected so that typos in hand-written documents do not
// silently drop boxes. ReadDocument does not close r.
func ReadDocument(r io.Reader) (*Document, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidFormat, err, "decode diagram document")
	}
	return &doc, nil
}

// ImportDocument reads the diagram document at path.
func ImportDocument(path string) (*Document, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, apperrors.Wrap(apperrors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadDocument(f)
}

// Set builds the visible set of the document.
//
// Capacity overflows are collected and returned as a joined error together
// with the set; any other error aborts.
func (d *Document) Set() (*visible.Set, error) {
	b := visible.NewBuilder()
	b.SetDiagram(visible.Diagram{ID: d.Diagram.ID, Name: d.Diagram.Name, Type: d.Diagram.Type})

	var warnings []error
	keep := func(what string, id int64, err error) error {
		if err == nil {
			return nil
		}
		if apperrors.IsCapacityExceeded(err) {
			warnings = append(warnings, err)
			return nil
		}
		return fmt.Errorf("%s %d: %w", what, id, err)
	}

	for _, c := range d.Classifiers {
		if err := keep("placement", c.PlacementID, b.AddClassifier(c.visible())); err != nil {
			return nil, err
		}
	}
	for _, f := range d.Features {
		if err := keep("feature", f.ID, b.AddFeature(f.Feature)); err != nil {
			return nil, err
		}
	}
	for _, r := range d.Relationships {
		if err := keep("relationship", r.ID, b.AddRelationship(r)); err != nil {
			return nil, err
		}
	}

	set, err := b.Build()
	if err != nil {
		return nil, err
	}
	return set, capacityWarning(warnings)
}

// ApplyBoxes copies the document's boxes into m. Boxes of elements the model
// dropped are skipped.
func (d *Document) ApplyBoxes(m *layout.Model) error {
	m.SetDiagram(layout.Diagram{
		Bounds:   d.Diagram.Bounds,
		DrawArea: d.Diagram.DrawArea,
		LabelBox: d.Diagram.LabelBox,
	})

	set := m.Set()
	for _, c := range d.Classifiers {
		if set.PlacementIndex(c.PlacementID) < 0 {
			continue
		}
		anchor, err := layout.ParseAnchor(c.LabelAnchor)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "placement %d", c.PlacementID)
		}
		if err := m.SetClassifierBoxes(c.PlacementID, c.Symbol, c.Space, c.Label); err != nil {
			if apperrors.Is(err, apperrors.ErrCodeNotFound) {
				continue
			}
			return err
		}
		if err := m.SetLabelAnchor(c.PlacementID, anchor); err != nil {
			return err
		}
	}

	for _, f := range d.Features {
		if set.FeatureIndex(f.ID) < 0 {
			continue
		}
		for _, box := range f.Boxes {
			err := m.SetFeatureBox(box.PlacementID, f.ID, box.Symbol, box.Label)
			if err != nil && !apperrors.Is(err, apperrors.ErrCodeNotFound) {
				return err
			}
		}
	}
	return nil
}

// Build returns a layout model of the document with all boxes applied.
//
// A CAPACITY_EXCEEDED error comes with a usable model; other errors return
// a nil model.
func (d *Document) Build() (*layout.Model, error) {
	set, setWarn := d.Set()
	if set == nil {
		return nil, setWarn
	}
	m, modelWarn := layout.New(set)
	if modelWarn != nil && !apperrors.IsCapacityExceeded(modelWarn) {
		return nil, modelWarn
	}
	if err := d.ApplyBoxes(m); err != nil {
		return nil, err
	}
	return m, capacityWarning([]error{setWarn, modelWarn})
}

// capacityWarning joins capacity errors into one CAPACITY_EXCEEDED error.
func capacityWarning(errs []error) error {
	joined := apperrors.Join(errs...)
	if joined == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrCodeCapacityExceeded, joined, "capacity exceeded, elements dropped")
}

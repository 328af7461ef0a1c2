package io

import (
	"github.com/matzehuels/facetlayout/pkg/geometry"
	"github.com/matzehuels/facetlayout/pkg/visible"
)

// Document is a diagram document.
type Document struct {
	Diagram       DiagramDoc             `json:"diagram"`
	Classifiers   []ClassifierDoc        `json:"classifiers"`
	Features      []FeatureDoc           `json:"features,omitempty"`
	Relationships []visible.Relationship `json:"relationships,omitempty"`
}

// DiagramDoc is the diagram frame.
type DiagramDoc struct {
	ID       int64               `json:"id"`
	Name     string              `json:"name"`
	Type     visible.DiagramType `json:"type"`
	Bounds   geometry.Rect       `json:"bounds"`
	DrawArea geometry.Rect       `json:"draw_area,omitzero"`
	LabelBox geometry.Rect       `json:"label_box,omitzero"`
}

// ClassifierDoc is one placement of a classifier with its boxes.
type ClassifierDoc struct {
	PlacementID      int64         `json:"placement_id"`
	ID               int64         `json:"id"`
	Name             string        `json:"name"`
	Kind             string        `json:"kind,omitempty"`
	GrayOut          bool          `json:"gray_out,omitempty"`
	Emphasis         bool          `json:"emphasis,omitempty"`
	Instance         bool          `json:"instance,omitempty"`
	FocusedFeatureID int64         `json:"focused_feature_id,omitempty"`
	Symbol           geometry.Rect `json:"symbol"`
	Space            geometry.Rect `json:"space,omitzero"`
	Label            geometry.Rect `json:"label,omitzero"`
	LabelAnchor      string        `json:"label_anchor,omitempty"`
}

// FeatureDoc is a feature with its boxes per placement of its owner.
type FeatureDoc struct {
	visible.Feature
	Boxes []FeatureBox `json:"boxes,omitempty"`
}

// FeatureBox places a feature inside one placement of its owner.
type FeatureBox struct {
	PlacementID int64         `json:"placement_id"`
	Symbol      geometry.Rect `json:"symbol"`
	Label       geometry.Rect `json:"label,omitzero"`
}

func (c ClassifierDoc) visible() visible.VisibleClassifier {
	var flags visible.DisplayFlags
	if c.GrayOut {
		flags |= visible.FlagGrayOut
	}
	if c.Emphasis {
		flags |= visible.FlagEmphasis
	}
	if c.Instance {
		flags |= visible.FlagInstance
	}
	return visible.VisibleClassifier{
		Placement: visible.Placement{
			ID:               c.PlacementID,
			ClassifierID:     c.ID,
			Flags:            flags,
			FocusedFeatureID: c.FocusedFeatureID,
		},
		Classifier: visible.Classifier{ID: c.ID, Name: c.Name, Kind: c.Kind},
	}
}

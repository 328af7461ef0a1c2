// Package layout holds the mutable layout state of one visible set.
//
// A [Model] runs parallel to a [visible.Set]: one [Classifier] per placement,
// one [Feature] per (feature, placement of its owner) pair and one
// [Relationship] per (from placement, to placement) pair of every
// relationship. Boxes are applied by an upstream placement step; the pencil
// package then writes connector shapes and visibility into the relationships.
//
// # Fan-out
//
// A classifier placed twice yields two classifier layouts, its features are
// laid out once per placement, and every relationship touching it yields one
// connector per placement combination. Lifeline features are the exception:
// they only exist for the placement focusing them.
//
// # Lifecycle
//
// A model is created with [New] whenever the visible set changes
// structurally. When only values changed (names, flags, boxes), [Model.Resync]
// swaps in the new set and keeps the model. Shapes are reset in both cases.
package layout

import (
	"fmt"

	apperrors "github.com/matzehuels/facetlayout/pkg/errors"
	"github.com/matzehuels/facetlayout/pkg/geometry"
	"github.com/matzehuels/facetlayout/pkg/visible"
)

// Capacities of a layout model.
const (
	MaxClassifiers   = visible.MaxClassifiers
	MaxFeatures      = 2 * visible.MaxFeatures
	MaxRelationships = visible.MaxRelationships
)

// Visibility says whether and how a connector is drawn.
type Visibility int

const (
	Show     Visibility = iota // drawn normally
	GrayOut                    // drawn de-emphasized
	Implicit                   // laid out, not drawn
	Hidden                     // neither laid out nor drawn
)

var visibilityNames = [...]string{"show", "gray_out", "implicit", "hidden"}

func (v Visibility) String() string {
	if v < 0 || int(v) >= len(visibilityNames) {
		return fmt.Sprintf("unknown(%d)", int(v))
	}
	return visibilityNames[v]
}

// MarshalText encodes the visibility by name.
func (v Visibility) MarshalText() ([]byte, error) {
	if v < 0 || int(v) >= len(visibilityNames) {
		return nil, fmt.Errorf("invalid visibility: %d", int(v))
	}
	return []byte(visibilityNames[v]), nil
}

// UnmarshalText decodes a visibility name.
func (v *Visibility) UnmarshalText(b []byte) error {
	for i, n := range visibilityNames {
		if n == string(b) {
			*v = Visibility(i)
			return nil
		}
	}
	return fmt.Errorf("unknown visibility %q", b)
}

// IsDrawn reports whether connectors with this visibility are painted.
func (v Visibility) IsDrawn() bool { return v == Show || v == GrayOut }

// Anchor is the corner a classifier label is pinned to.
type Anchor int

const (
	AnchorTopLeft Anchor = iota
	AnchorTopRight
	AnchorBottomLeft
	AnchorBottomRight
)

var anchorNames = [...]string{"top_left", "top_right", "bottom_left", "bottom_right"}

func (a Anchor) String() string {
	if a < 0 || int(a) >= len(anchorNames) {
		return fmt.Sprintf("unknown(%d)", int(a))
	}
	return anchorNames[a]
}

// ParseAnchor decodes an anchor name; the empty name is top_left.
func ParseAnchor(s string) (Anchor, error) {
	if s == "" {
		return AnchorTopLeft, nil
	}
	for i, n := range anchorNames {
		if n == s {
			return Anchor(i), nil
		}
	}
	return AnchorTopLeft, fmt.Errorf("unknown label anchor %q", s)
}

// Diagram is the layout of the diagram frame.
type Diagram struct {
	Bounds   geometry.Rect `json:"bounds"`
	DrawArea geometry.Rect `json:"draw_area"` // region connectors should stay inside
	LabelBox geometry.Rect `json:"label_box"`
}

// Classifier is the layout of one placement.
type Classifier struct {
	Index       int           // into visible.Set.Classifiers
	Symbol      geometry.Rect // outer shape
	Space       geometry.Rect // inner area for nested children
	Label       geometry.Rect
	LabelAnchor Anchor
}

// Feature is the layout of one feature at one placement of its owner.
type Feature struct {
	FeatureIndex     int // into visible.Set.Features
	ClassifierLayout int // into Model.Classifiers
	Symbol           geometry.Rect
	Label            geometry.Rect
}

// Endpoint is one end of a relationship layout.
type Endpoint struct {
	Classifier int // into Model.Classifiers
	Feature    int // into Model.Features, -1 when anchored at the classifier
}

// IsFeature reports whether the end is anchored at a feature.
func (e Endpoint) IsFeature() bool { return e.Feature >= 0 }

// Relationship is the layout of one relationship between two placements.
type Relationship struct {
	RelationshipIndex int // into visible.Set.Relationships
	From, To          Endpoint
	Visibility        Visibility
	Shape             geometry.Connector
	Shaped            bool
}

// Model is the layout state of one visible set.
//
// Slices are exported for the layouter and renderers; their length and order
// never change after [New]. A Model is not safe for concurrent use.
type Model struct {
	Diagram       Diagram
	Classifiers   []Classifier
	Features      []Feature
	Relationships []Relationship

	set      *visible.Set
	features map[featureKey]int
	dropped  int
}

type featureKey struct {
	classifierLayout int
	featureIndex     int
}

// New creates the layout model for set with all boxes empty and no shapes.
//
// When the fan-out exceeds a capacity, the excess is dropped and a
// capacity-exceeded error is returned together with the model. The model is
// usable in both cases.
func New(set *visible.Set) (*Model, error) {
	m := &Model{
		set:      set,
		features: make(map[featureKey]int),
	}

	vcs := set.Classifiers()
	m.Classifiers = make([]Classifier, 0, min(len(vcs), MaxClassifiers))
	droppedClassifiers := 0
	for i := range vcs {
		if len(m.Classifiers) >= MaxClassifiers {
			droppedClassifiers++
			continue
		}
		m.Classifiers = append(m.Classifiers, Classifier{Index: i})
	}

	droppedFeatures := 0
	for fi, f := range set.Features() {
		for _, ci := range m.placementsOf(f.ClassifierID) {
			if f.IsLifeline() && vcs[ci].Placement.FocusedFeatureID != f.ID {
				continue
			}
			if len(m.Features) >= MaxFeatures {
				droppedFeatures++
				continue
			}
			m.features[featureKey{ci, fi}] = len(m.Features)
			m.Features = append(m.Features, Feature{FeatureIndex: fi, ClassifierLayout: ci})
		}
	}

	droppedRelationships := 0
	for ri, r := range set.Relationships() {
		froms := m.endpoints(r.FromClassifierID, r.FromFeatureID)
		tos := m.endpoints(r.ToClassifierID, r.ToFeatureID)
		selfLoop := r.FromClassifierID == r.ToClassifierID && r.FromFeatureID == 0 && r.ToFeatureID == 0
		for _, from := range froms {
			for _, to := range tos {
				// A classifier relating to itself loops at each placement.
				if selfLoop && from.Classifier != to.Classifier {
					continue
				}
				if len(m.Relationships) >= MaxRelationships {
					droppedRelationships++
					continue
				}
				m.Relationships = append(m.Relationships, Relationship{
					RelationshipIndex: ri, From: from, To: to,
				})
			}
		}
	}

	m.dropped = droppedClassifiers + droppedFeatures + droppedRelationships
	if m.dropped > 0 {
		return m, apperrors.New(apperrors.ErrCodeCapacityExceeded,
			"layout capacity exceeded: dropped %d classifiers, %d features, %d relationships",
			droppedClassifiers, droppedFeatures, droppedRelationships)
	}
	return m, nil
}

// placementsOf returns the classifier layouts of a classifier id.
func (m *Model) placementsOf(classifierID int64) []int {
	var out []int
	for _, pi := range m.set.PlacementsOf(classifierID) {
		if pi < len(m.Classifiers) {
			out = append(out, pi)
		}
	}
	return out
}

// endpoints lists every layout end a relationship end can attach to.
func (m *Model) endpoints(classifierID, featureID int64) []Endpoint {
	var out []Endpoint
	fi := -1
	if featureID != 0 {
		fi = m.set.FeatureIndex(featureID)
		if fi < 0 {
			return nil
		}
	}
	for _, ci := range m.placementsOf(classifierID) {
		if fi < 0 {
			out = append(out, Endpoint{Classifier: ci, Feature: -1})
			continue
		}
		if fl, ok := m.features[featureKey{ci, fi}]; ok {
			out = append(out, Endpoint{Classifier: ci, Feature: fl})
		}
	}
	return out
}

// Dropped returns how many layouts the fan-out left out for capacity reasons.
// Elements dropped by the visible set builder are counted by [visible.Set.Dropped].
func (m *Model) Dropped() int { return m.dropped }

// Set returns the visible set the model was built from.
func (m *Model) Set() *visible.Set { return m.set }

// DiagramType returns the type of the underlying diagram.
func (m *Model) DiagramType() visible.DiagramType { return m.set.Diagram().Type }

// Resync replaces the visible set by one with identical structure.
//
// Placements, features and relationships must match by id and order, and
// relationship ends must be unchanged; otherwise an INVALID_INPUT error is
// returned and the model is left untouched. Boxes are kept, shapes reset.
func (m *Model) Resync(set *visible.Set) error {
	if err := sameStructure(m.set, set); err != nil {
		return err
	}
	m.set = set
	m.ResetShapes()
	return nil
}

func sameStructure(a, b *visible.Set) error {
	mismatch := func(what string, i int) error {
		return apperrors.New(apperrors.ErrCodeInvalidInput,
			"resync: %s %d differs, rebuild the layout model", what, i)
	}

	ac, bc := a.Classifiers(), b.Classifiers()
	if len(ac) != len(bc) {
		return mismatch("classifier count", len(bc))
	}
	for i := range ac {
		if ac[i].Placement.ID != bc[i].Placement.ID || ac[i].Classifier.ID != bc[i].Classifier.ID ||
			ac[i].Placement.FocusedFeatureID != bc[i].Placement.FocusedFeatureID {
			return mismatch("placement", i)
		}
	}

	af, bf := a.Features(), b.Features()
	if len(af) != len(bf) {
		return mismatch("feature count", len(bf))
	}
	for i := range af {
		if af[i].ID != bf[i].ID || af[i].ClassifierID != bf[i].ClassifierID || af[i].Type != bf[i].Type {
			return mismatch("feature", i)
		}
	}

	ar, br := a.Relationships(), b.Relationships()
	if len(ar) != len(br) {
		return mismatch("relationship count", len(br))
	}
	for i := range ar {
		x, y := ar[i], br[i]
		if x.ID != y.ID || x.FromClassifierID != y.FromClassifierID || x.ToClassifierID != y.ToClassifierID ||
			x.FromFeatureID != y.FromFeatureID || x.ToFeatureID != y.ToFeatureID {
			return mismatch("relationship", i)
		}
	}
	return nil
}

// ResetShapes clears every connector and resets visibility to [Show].
func (m *Model) ResetShapes() {
	for i := range m.Relationships {
		r := &m.Relationships[i]
		r.Shape = geometry.Connector{}
		r.Shaped = false
		r.Visibility = Show
	}
}

// =============================================================================
// Box application
// =============================================================================

// SetDiagram sets the diagram frame.
func (m *Model) SetDiagram(d Diagram) { m.Diagram = d }

// SetClassifierBoxes sets the boxes of the placement with the given id.
func (m *Model) SetClassifierBoxes(placementID int64, symbol, space, label geometry.Rect) error {
	ci, err := m.classifierLayout(placementID)
	if err != nil {
		return err
	}
	c := &m.Classifiers[ci]
	c.Symbol, c.Space, c.Label = symbol, space, label
	return nil
}

// SetLabelAnchor sets the label anchor of the placement with the given id.
func (m *Model) SetLabelAnchor(placementID int64, a Anchor) error {
	ci, err := m.classifierLayout(placementID)
	if err != nil {
		return err
	}
	m.Classifiers[ci].LabelAnchor = a
	return nil
}

// SetFeatureBox sets the boxes of a feature at the given placement of its owner.
func (m *Model) SetFeatureBox(placementID, featureID int64, symbol, label geometry.Rect) error {
	ci, err := m.classifierLayout(placementID)
	if err != nil {
		return err
	}
	fl, ok := m.features[featureKey{ci, m.set.FeatureIndex(featureID)}]
	if !ok {
		return apperrors.New(apperrors.ErrCodeNotFound,
			"feature %d has no layout at placement %d", featureID, placementID)
	}
	m.Features[fl].Symbol, m.Features[fl].Label = symbol, label
	return nil
}

func (m *Model) classifierLayout(placementID int64) (int, error) {
	ci := m.set.PlacementIndex(placementID)
	if ci < 0 || ci >= len(m.Classifiers) {
		return -1, apperrors.New(apperrors.ErrCodeNotFound, "placement %d has no layout", placementID)
	}
	return ci, nil
}

// =============================================================================
// Queries
// =============================================================================

// DrawArea returns the region connectors should stay inside. It falls back
// to the diagram bounds and then to the union of all symbol boxes.
func (m *Model) DrawArea() geometry.Rect {
	if !m.Diagram.DrawArea.IsEmpty() {
		return m.Diagram.DrawArea
	}
	if !m.Diagram.Bounds.IsEmpty() {
		return m.Diagram.Bounds
	}
	var area geometry.Rect
	first := true
	add := func(r geometry.Rect) {
		if first {
			area, first = r, false
			return
		}
		area = area.Union(r)
	}
	for _, c := range m.Classifiers {
		add(c.Symbol)
	}
	for _, f := range m.Features {
		add(f.Symbol)
	}
	return area
}

// EndpointBox returns the symbol box a connector end attaches to.
func (m *Model) EndpointBox(e Endpoint) geometry.Rect {
	if e.IsFeature() {
		return m.Features[e.Feature].Symbol
	}
	return m.Classifiers[e.Classifier].Symbol
}

// IsLifeline reports whether the end is anchored at a lifeline feature.
func (m *Model) IsLifeline(e Endpoint) bool {
	if !e.IsFeature() {
		return false
	}
	return m.set.Features()[m.Features[e.Feature].FeatureIndex].IsLifeline()
}

// GrayedOut reports whether the end's placement carries the gray-out flag.
func (m *Model) GrayedOut(e Endpoint) bool {
	return m.Placement(e.Classifier).Flags.Has(visible.FlagGrayOut)
}

// Placement returns the placement behind a classifier layout.
func (m *Model) Placement(classifierLayout int) visible.Placement {
	return m.set.Classifiers()[m.Classifiers[classifierLayout].Index].Placement
}

// Relationship returns the visible relationship behind a relationship layout.
func (m *Model) Relationship(i int) visible.Relationship {
	return m.set.Relationships()[m.Relationships[i].RelationshipIndex]
}

// FeatureOf returns the visible feature behind a feature layout.
func (m *Model) FeatureOf(i int) visible.Feature {
	return m.set.Features()[m.Features[i].FeatureIndex]
}

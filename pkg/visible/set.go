package visible

import (
	apperrors "github.com/matzehuels/facetlayout/pkg/errors"
)

// Set is an immutable snapshot of one diagram's visible elements.
//
// Slices returned by the accessors are shared with the set and must not be
// modified. A Set is safe for concurrent reads.
type Set struct {
	diagram       Diagram
	classifiers   []VisibleClassifier
	features      []Feature
	relationships []Relationship

	placementIndex map[int64]int   // placement id -> index into classifiers
	classifierIdx  map[int64][]int // classifier id -> placement indices
	featureIndex   map[int64]int   // feature id -> index into features

	containment *containment
	dropped     int
}

// Diagram returns the diagram the set belongs to.
func (s *Set) Diagram() Diagram { return s.diagram }

// Classifiers returns all placements in insertion order.
func (s *Set) Classifiers() []VisibleClassifier { return s.classifiers }

// Features returns all kept features in insertion order.
func (s *Set) Features() []Feature { return s.features }

// Relationships returns all kept relationships in insertion order.
func (s *Set) Relationships() []Relationship { return s.relationships }

// PlacementIndex returns the index of the placement with the given id, or -1.
func (s *Set) PlacementIndex(placementID int64) int {
	if i, ok := s.placementIndex[placementID]; ok {
		return i
	}
	return -1
}

// PlacementsOf returns the indices of every placement of a classifier.
func (s *Set) PlacementsOf(classifierID int64) []int { return s.classifierIdx[classifierID] }

// FeatureIndex returns the index of the feature with the given id, or -1.
func (s *Set) FeatureIndex(featureID int64) int {
	if i, ok := s.featureIndex[featureID]; ok {
		return i
	}
	return -1
}

// Dropped returns how many elements were left out, for capacity reasons or
// because they depended on an element that was left out.
func (s *Set) Dropped() int { return s.dropped }

// =============================================================================
// Builder
// =============================================================================

// Builder collects elements for a [Set].
//
// The zero value is not usable; create one with [NewBuilder]. Add methods
// return a capacity-exceeded error when the element did not fit, or an
// invalid-input error when its id is not positive; in both cases the element
// is not added.
type Builder struct {
	set Set

	droppedClassifiers map[int64]bool
	droppedFeatures    map[int64]bool
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{
		set: Set{
			classifiers:   make([]VisibleClassifier, 0, 16),
			features:      make([]Feature, 0, 16),
			relationships: make([]Relationship, 0, 16),
		},
		droppedClassifiers: make(map[int64]bool),
		droppedFeatures:    make(map[int64]bool),
	}
}

// SetDiagram sets the diagram the elements belong to.
func (b *Builder) SetDiagram(d Diagram) { b.set.diagram = d }

// AddClassifier adds one placement of a classifier.
func (b *Builder) AddClassifier(vc VisibleClassifier) error {
	if err := apperrors.ValidateID("placement id", vc.Placement.ID); err != nil {
		return err
	}
	if err := apperrors.ValidateID("classifier id", vc.Classifier.ID); err != nil {
		return err
	}
	if err := apperrors.ValidateName("classifier name", vc.Classifier.Name); err != nil {
		return err
	}
	vc.Placement.ClassifierID = vc.Classifier.ID
	if len(b.set.classifiers) >= MaxClassifiers {
		b.droppedClassifiers[vc.Classifier.ID] = true
		b.set.dropped++
		return apperrors.New(apperrors.ErrCodeCapacityExceeded,
			"classifier capacity %d reached, placement %d dropped", MaxClassifiers, vc.Placement.ID)
	}
	b.set.classifiers = append(b.set.classifiers, vc)
	return nil
}

// AddFeature adds a feature of a classifier added before or after it.
func (b *Builder) AddFeature(f Feature) error {
	if err := apperrors.ValidateID("feature id", f.ID); err != nil {
		return err
	}
	if err := apperrors.ValidateID("feature owner id", f.ClassifierID); err != nil {
		return err
	}
	if len(b.set.features) >= MaxFeatures {
		b.droppedFeatures[f.ID] = true
		b.set.dropped++
		return apperrors.New(apperrors.ErrCodeCapacityExceeded,
			"feature capacity %d reached, feature %d dropped", MaxFeatures, f.ID)
	}
	b.set.features = append(b.set.features, f)
	return nil
}

// AddRelationship adds a relationship between two classifiers.
func (b *Builder) AddRelationship(r Relationship) error {
	if err := apperrors.ValidateID("relationship id", r.ID); err != nil {
		return err
	}
	if err := apperrors.ValidateName("relationship name", r.Name); err != nil {
		return err
	}
	if len(b.set.relationships) >= MaxRelationships {
		b.set.dropped++
		return apperrors.New(apperrors.ErrCodeCapacityExceeded,
			"relationship capacity %d reached, relationship %d dropped", MaxRelationships, r.ID)
	}
	b.set.relationships = append(b.set.relationships, r)
	return nil
}

// Build validates the collected elements and returns the finished set.
// The builder must not be used afterwards.
func (b *Builder) Build() (*Set, error) {
	s := &b.set

	s.placementIndex = make(map[int64]int, len(s.classifiers))
	s.classifierIdx = make(map[int64][]int, len(s.classifiers))
	owners := make(map[int64]int64, len(s.features))
	for _, f := range s.features {
		owners[f.ID] = f.ClassifierID
	}
	focused := make(map[int64]bool)
	for i, vc := range s.classifiers {
		if _, dup := s.placementIndex[vc.Placement.ID]; dup {
			return nil, apperrors.New(apperrors.ErrCodeInvalidInput,
				"duplicate placement id %d", vc.Placement.ID)
		}
		s.placementIndex[vc.Placement.ID] = i
		s.classifierIdx[vc.Classifier.ID] = append(s.classifierIdx[vc.Classifier.ID], i)
		if fid := vc.Placement.FocusedFeatureID; fid != 0 {
			if owner, ok := owners[fid]; ok && owner != vc.Classifier.ID {
				return nil, apperrors.New(apperrors.ErrCodeInvalidInput,
					"placement %d: focused feature %d belongs to classifier %d", vc.Placement.ID, fid, owner)
			}
			focused[fid] = true
		}
	}

	if err := b.filterFeatures(focused); err != nil {
		return nil, err
	}
	if err := b.filterRelationships(); err != nil {
		return nil, err
	}

	s.containment = newContainment(s)
	return s, nil
}

func (b *Builder) filterFeatures(focused map[int64]bool) error {
	s := &b.set
	kept := s.features[:0]
	s.featureIndex = make(map[int64]int, len(s.features))
	for _, f := range s.features {
		if _, dup := s.featureIndex[f.ID]; dup {
			return apperrors.New(apperrors.ErrCodeInvalidInput, "duplicate feature id %d", f.ID)
		}
		if len(s.classifierIdx[f.ClassifierID]) == 0 {
			if b.droppedClassifiers[f.ClassifierID] {
				b.dropFeature(f.ID)
				continue
			}
			return apperrors.New(apperrors.ErrCodeInvalidInput,
				"feature %d: owner classifier %d not in diagram", f.ID, f.ClassifierID)
		}
		// Lifelines only exist for the placement focusing them.
		if f.IsLifeline() && !focused[f.ID] {
			b.dropFeature(f.ID)
			continue
		}
		s.featureIndex[f.ID] = len(kept)
		kept = append(kept, f)
	}
	s.features = kept
	return nil
}

func (b *Builder) dropFeature(id int64) {
	b.droppedFeatures[id] = true
	b.set.dropped++
}

func (b *Builder) filterRelationships() error {
	s := &b.set
	kept := s.relationships[:0]
	seen := make(map[int64]bool, len(s.relationships))
	for _, r := range s.relationships {
		if seen[r.ID] {
			return apperrors.New(apperrors.ErrCodeInvalidInput, "duplicate relationship id %d", r.ID)
		}
		seen[r.ID] = true

		ok, err := b.checkEnd(r.ID, r.FromClassifierID, r.FromFeatureID)
		if err != nil {
			return err
		}
		okTo, err := b.checkEnd(r.ID, r.ToClassifierID, r.ToFeatureID)
		if err != nil {
			return err
		}
		if !ok || !okTo {
			s.dropped++
			continue
		}
		kept = append(kept, r)
	}
	s.relationships = kept
	return nil
}

// checkEnd reports whether one relationship end resolves. A reference to an
// element dropped earlier yields false without error.
func (b *Builder) checkEnd(relID, classifierID, featureID int64) (bool, error) {
	s := &b.set
	if len(s.classifierIdx[classifierID]) == 0 {
		if b.droppedClassifiers[classifierID] {
			return false, nil
		}
		return false, apperrors.New(apperrors.ErrCodeInvalidInput,
			"relationship %d: classifier %d not in diagram", relID, classifierID)
	}
	if featureID == 0 {
		return true, nil
	}
	fi, ok := s.featureIndex[featureID]
	if !ok {
		if b.droppedFeatures[featureID] {
			return false, nil
		}
		return false, apperrors.New(apperrors.ErrCodeInvalidInput,
			"relationship %d: feature %d not in diagram", relID, featureID)
	}
	if owner := s.features[fi].ClassifierID; owner != classifierID {
		return false, apperrors.New(apperrors.ErrCodeInvalidInput,
			"relationship %d: feature %d belongs to classifier %d, not %d",
			relID, featureID, owner, classifierID)
	}
	return true, nil
}

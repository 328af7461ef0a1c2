package visible

import (
	"fmt"
	"strings"
)

// Capacities of a visible set.
const (
	MaxClassifiers   = 256
	MaxFeatures      = 2048
	MaxRelationships = 1024
)

// =============================================================================
// Enumerations
// =============================================================================

// DiagramType selects the layout variant used for a diagram.
type DiagramType int

const (
	DiagramList DiagramType = iota
	DiagramBox
	DiagramBlock
	DiagramInternalBlock
	DiagramParametric
	DiagramRequirement
	DiagramUseCase
	DiagramActivity
	DiagramStateMachine
	DiagramSequence
	DiagramCommunication
	DiagramInteractionOverview
	DiagramTiming
	DiagramDeployment
	DiagramComponent
	DiagramClass
	DiagramProfile
	DiagramPackage
)

var diagramTypeNames = []string{
	"list", "box", "block", "internal_block", "parametric", "requirement",
	"use_case", "activity", "state_machine", "sequence", "communication",
	"interaction_overview", "timing", "deployment", "component", "class",
	"profile", "package",
}

func (t DiagramType) String() string { return enumName(diagramTypeNames, int(t)) }

// MarshalText encodes the type by name.
func (t DiagramType) MarshalText() ([]byte, error) { return enumMarshal(diagramTypeNames, int(t), "diagram type") }

// UnmarshalText decodes a type name.
func (t *DiagramType) UnmarshalText(b []byte) error {
	v, err := enumParse(diagramTypeNames, string(b), "diagram type")
	*t = DiagramType(v)
	return err
}

// IsScenario reports whether the diagram lays out along a single axis.
func (t DiagramType) IsScenario() bool { return t == DiagramSequence || t == DiagramTiming }

// FeatureType is the kind of a feature.
type FeatureType int

const (
	FeatureProperty FeatureType = iota
	FeatureOperation
	FeaturePort
	FeatureLifeline
	FeatureProvidedInterface
	FeatureRequiredInterface
	FeatureInPort
	FeatureOutPort
	FeatureEntry
	FeatureExit
	FeatureTaggedValue
)

var featureTypeNames = []string{
	"property", "operation", "port", "lifeline", "provided_interface",
	"required_interface", "in_port", "out_port", "entry", "exit", "tagged_value",
}

func (t FeatureType) String() string { return enumName(featureTypeNames, int(t)) }

func (t FeatureType) MarshalText() ([]byte, error) { return enumMarshal(featureTypeNames, int(t), "feature type") }

func (t *FeatureType) UnmarshalText(b []byte) error {
	v, err := enumParse(featureTypeNames, string(b), "feature type")
	*t = FeatureType(v)
	return err
}

// RelationshipType is the kind of a relationship. It only influences the
// processing order of the layouter, never the routing itself.
type RelationshipType int

const (
	RelDependency RelationshipType = iota
	RelAssociation
	RelAggregation
	RelComposition
	RelGeneralization
	RelRealization
	RelAsyncCall
	RelSyncCall
	RelReturnCall
	RelCommunicationPath
	RelControlFlow
	RelObjectFlow
	RelDeploy
	RelManifest
	RelExtend
	RelInclude
	RelContainment
	RelRefine
	RelTrace
)

var relationshipTypeNames = []string{
	"dependency", "association", "aggregation", "composition", "generalization",
	"realization", "async_call", "sync_call", "return_call", "communication_path",
	"control_flow", "object_flow", "deploy", "manifest", "extend", "include",
	"containment", "refine", "trace",
}

func (t RelationshipType) String() string { return enumName(relationshipTypeNames, int(t)) }

func (t RelationshipType) MarshalText() ([]byte, error) {
	return enumMarshal(relationshipTypeNames, int(t), "relationship type")
}

func (t *RelationshipType) UnmarshalText(b []byte) error {
	v, err := enumParse(relationshipTypeNames, string(b), "relationship type")
	*t = RelationshipType(v)
	return err
}

func enumName(names []string, v int) string {
	if v < 0 || v >= len(names) {
		return fmt.Sprintf("unknown(%d)", v)
	}
	return names[v]
}

func enumMarshal(names []string, v int, what string) ([]byte, error) {
	if v < 0 || v >= len(names) {
		return nil, fmt.Errorf("invalid %s: %d", what, v)
	}
	return []byte(names[v]), nil
}

func enumParse(names []string, s, what string) (int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range names {
		if n == s {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown %s %q", what, s)
}

// =============================================================================
// Elements
// =============================================================================

// Diagram identifies the diagram being laid out.
type Diagram struct {
	ID   int64       `json:"id"`
	Name string      `json:"name"`
	Type DiagramType `json:"type"`
}

// Classifier is the model identity of a box-shaped element.
type Classifier struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Kind string `json:"kind,omitempty"` // free-form, e.g. "block" or "actor"
}

// DisplayFlags are per-placement display options.
type DisplayFlags uint32

const (
	FlagGrayOut DisplayFlags = 1 << iota
	FlagEmphasis
	FlagInstance
)

// Has reports whether all bits of f are set.
func (d DisplayFlags) Has(f DisplayFlags) bool { return d&f == f }

// Placement is one occurrence of a classifier in a diagram.
type Placement struct {
	ID           int64        `json:"id"`
	ClassifierID int64        `json:"classifier_id"`
	Flags        DisplayFlags `json:"flags,omitempty"`

	// FocusedFeatureID names the lifeline this placement shows, 0 for none.
	FocusedFeatureID int64 `json:"focused_feature_id,omitempty"`
}

// VisibleClassifier pairs a placement with its classifier.
type VisibleClassifier struct {
	Placement  Placement  `json:"placement"`
	Classifier Classifier `json:"classifier"`
}

// Feature is owned by exactly one classifier.
type Feature struct {
	ID           int64       `json:"id"`
	ClassifierID int64       `json:"classifier_id"`
	Type         FeatureType `json:"type"`
	Key          string      `json:"key,omitempty"`
	Value        string      `json:"value,omitempty"`
}

// IsLifeline reports whether the feature anchors a scenario occurrence.
func (f Feature) IsLifeline() bool { return f.Type == FeatureLifeline }

// Relationship connects two classifiers, optionally at one of their features.
// A zero feature id means the end is anchored at the classifier itself.
type Relationship struct {
	ID               int64            `json:"id"`
	Type             RelationshipType `json:"type"`
	FromClassifierID int64            `json:"from_classifier_id"`
	ToClassifierID   int64            `json:"to_classifier_id"`
	FromFeatureID    int64            `json:"from_feature_id,omitempty"`
	ToFeatureID      int64            `json:"to_feature_id,omitempty"`

	// ListOrder positions messages and steps in scenario diagrams.
	ListOrder int32  `json:"list_order,omitempty"`
	Name      string `json:"name,omitempty"`
}

// IsDeprioritized reports whether the type tolerates low-quality routing.
func (r Relationship) IsDeprioritized() bool {
	return r.Type == RelDependency || r.Type == RelContainment
}

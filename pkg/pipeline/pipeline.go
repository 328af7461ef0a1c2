// Package pipeline provides the layout pipeline shared by the CLI and the
// HTTP server.
//
// The pipeline has three stages:
//
//  1. Load: decode a diagram document and build its layout model
//  2. Layout: route every relationship with the pencil layouter
//  3. Render: draw the routed model as SVG, PNG or PDF
//
// Layouts and artifacts are cached. A layout is keyed by the hash of the
// input document, the sizes and the layouter variant; an artifact by the
// hash of its layout and the render options.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, input, pipeline.Options{
//	    Formats: []string{"svg"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// A CAPACITY_EXCEEDED error is a warning: the result is complete for the
// elements that fit and is returned alongside it in [Result.Warning].
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/facetlayout/pkg/cache"
	apperrors "github.com/matzehuels/facetlayout/pkg/errors"
	fio "github.com/matzehuels/facetlayout/pkg/io"
	"github.com/matzehuels/facetlayout/pkg/layout"
	"github.com/matzehuels/facetlayout/pkg/pencil"
	"github.com/matzehuels/facetlayout/pkg/render"
	"github.com/matzehuels/facetlayout/pkg/render/dot"
	"github.com/matzehuels/facetlayout/pkg/render/svg"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

// Layouter variants. VariantAuto derives the variant from the diagram type.
const (
	VariantAuto          = ""
	VariantStandard      = "standard"
	VariantVoid          = "void"
	VariantCommunication = "communication"
	Variant1D            = "1d"
)

// DefaultRenderer is the renderer used when none is set.
const DefaultRenderer = svg.Name

// ValidVariants is the set of supported layouter variants.
var ValidVariants = map[string]bool{
	VariantAuto:          true,
	VariantStandard:      true,
	VariantVoid:          true,
	VariantCommunication: true,
	Variant1D:            true,
}

// ValidRenderers is the set of supported renderers.
var ValidRenderers = map[string]bool{
	svg.Name: true,
	dot.Name: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the layout pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Layout options
	Variant string       `json:"variant,omitempty"`
	Sizes   pencil.Sizes `json:"sizes,omitzero"`

	// Render options
	Renderer string         `json:"renderer,omitempty"`
	Formats  []string       `json:"formats,omitempty"`
	Render   render.Options `json:"render,omitzero"`

	// Refresh ignores cached results (they are still written).
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies the run in logs and API responses.
	RunID string

	// InputHash is the content hash of the input document.
	InputHash string

	// LayoutHash is the content hash of the encoded layout.
	LayoutHash string

	// Model is the routed layout model.
	Model *layout.Model

	// Layout is the exportable form of Model.
	Layout *fio.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Warning is a CAPACITY_EXCEEDED error when elements were dropped.
	Warning error

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Classifiers   int
	Features      int
	Relationships int
	Drawn         int
	Dropped       int
	LoadTime      time.Duration
	LayoutTime    time.Duration
	RenderTime    time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateVariant checks that a layouter variant is valid.
func ValidateVariant(variant string) error {
	if !ValidVariants[variant] {
		return apperrors.New(apperrors.ErrCodeInvalidInput,
			"invalid variant: %q (must be one of: standard, void, communication, 1d)", variant)
	}
	return nil
}

// ValidateRenderer checks that a renderer is valid.
func ValidateRenderer(name string) error {
	if !ValidRenderers[name] {
		return apperrors.New(apperrors.ErrCodeInvalidInput,
			"invalid renderer: %q (must be one of: svg, dot)", name)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := render.ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks all fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	return o.ValidateForRender()
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Sizes == (pencil.Sizes{}) {
		o.Sizes = pencil.DefaultSizes()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if err := ValidateVariant(o.Variant); err != nil {
		return err
	}
	return o.Sizes.Validate()
}

// SetRenderDefaults sets default values for rendering. An empty format
// list is kept: it means layout only.
func (o *Options) SetRenderDefaults() {
	if o.Renderer == "" {
		o.Renderer = DefaultRenderer
	}
	if o.Render.FontSize == 0 && o.Sizes.FontSize > 0 {
		o.Render.FontSize = o.Sizes.FontSize
	}
	if o.Render.LineWidth == 0 && o.Sizes.LineWidth > 0 {
		o.Render.LineWidth = o.Sizes.LineWidth
	}
	o.Render = o.Render.WithDefaults()
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateRenderer(o.Renderer); err != nil {
		return err
	}
	return ValidateFormats(o.Formats)
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Variant:        o.Variant,
		ObjectDistance: o.Sizes.ObjectDistance,
		LineWidth:      o.Sizes.LineWidth,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:       format,
		Renderer:     o.Renderer,
		FontSize:     o.Render.FontSize,
		LineWidth:    o.Render.LineWidth,
		Padding:      o.Render.Padding,
		ShowImplicit: o.Render.ShowImplicit,
		Scale:        o.Render.Scale,
	}
}

// renderer returns the renderer selected by o.Renderer.
func (o *Options) renderer() render.Renderer {
	if o.Renderer == dot.Name {
		return dot.New()
	}
	return svg.New()
}

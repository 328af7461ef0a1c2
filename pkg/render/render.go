package render

import (
	"context"
	"fmt"
	"time"

	apperrors "github.com/matzehuels/facetlayout/pkg/errors"
	"github.com/matzehuels/facetlayout/pkg/layout"
	"github.com/matzehuels/facetlayout/pkg/observability"
)

// Output formats.
const (
	FormatSVG = "svg"
	FormatPNG = "png"
	FormatPDF = "pdf"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG: true,
	FormatPNG: true,
	FormatPDF: true,
}

// ValidateFormat checks that a format is supported.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return apperrors.New(apperrors.ErrCodeUnsupported,
			"invalid format: %q (must be one of: svg, png, pdf)", format)
	}
	return nil
}

var contentTypes = map[string]string{
	FormatSVG: "image/svg+xml",
	FormatPNG: "image/png",
	FormatPDF: "application/pdf",
}

// ContentType returns the MIME type of a format.
func ContentType(format string) string {
	if ct, ok := contentTypes[format]; ok {
		return ct
	}
	return "application/octet-stream"
}

// Options control how a routed model is drawn.
type Options struct {
	// Padding around the draw area.
	Padding float64 `json:"padding,omitempty"`
	// ShowImplicit draws implicit relationships as thin dashed lines.
	ShowImplicit bool `json:"show_implicit,omitempty"`
	// LineWidth is the connector stroke width.
	LineWidth float64 `json:"line_width,omitempty"`
	// FontSize of classifier and relationship labels.
	FontSize float64 `json:"font_size,omitempty"`
	// Scale of PNG output.
	Scale float64 `json:"scale,omitempty"`
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{Padding: 20, LineWidth: 1, FontSize: 12, Scale: 2}
}

// WithDefaults fills zero fields from [DefaultOptions].
func (o Options) WithDefaults() Options {
	d := DefaultOptions()
	if o.Padding == 0 {
		o.Padding = d.Padding
	}
	if o.LineWidth == 0 {
		o.LineWidth = d.LineWidth
	}
	if o.FontSize == 0 {
		o.FontSize = d.FontSize
	}
	if o.Scale == 0 {
		o.Scale = d.Scale
	}
	return o
}

// Renderer draws a routed model as SVG.
type Renderer interface {
	// Name identifies the renderer in cache keys and logs.
	Name() string
	// SVG draws m. The model must have been laid out.
	SVG(ctx context.Context, m *layout.Model, opts Options) ([]byte, error)
}

// Render draws m in the given format, converting the renderer's SVG when
// needed. Render events are reported to the pipeline hooks.
func Render(ctx context.Context, r Renderer, m *layout.Model, format string, opts Options) (data []byte, err error) {
	if err := ValidateFormat(format); err != nil {
		return nil, err
	}
	opts = opts.WithDefaults()

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, format)
	start := time.Now()
	defer func() {
		hooks.OnRenderComplete(ctx, format, len(data), time.Since(start), err)
	}()

	svg, err := r.SVG(ctx, m, opts)
	if err != nil {
		return nil, fmt.Errorf("%s renderer: %w", r.Name(), err)
	}
	switch format {
	case FormatPNG:
		return ToPNG(ctx, svg, opts.Scale)
	case FormatPDF:
		return ToPDF(ctx, svg)
	}
	return svg, nil
}

// Frame returns the region a renderer should show: the draw area grown by
// the padding.
func Frame(m *layout.Model, opts Options) (left, top, width, height float64) {
	area := m.DrawArea().Expand(opts.Padding, opts.Padding)
	return area.Left, area.Top, area.Width, area.Height
}

package pencil

import (
	apperrors "github.com/matzehuels/facetlayout/pkg/errors"
)

// Sizes are the spacing constants the router works with.
type Sizes struct {
	// ObjectDistance is the preferred gap between connectors and boxes.
	// Stubs shorter than this are penalized; Z and N shapes need twice
	// this gap between the two boxes.
	ObjectDistance float64 `json:"object_distance" toml:"object_distance" yaml:"object_distance"`

	// LineWidth is the stroke width of a connector.
	LineWidth float64 `json:"line_width" toml:"line_width" yaml:"line_width"`

	// FontSize is used by renderers for labels.
	FontSize float64 `json:"font_size" toml:"font_size" yaml:"font_size"`
}

// DefaultSizes returns the sizes used when nothing is configured.
func DefaultSizes() Sizes {
	return Sizes{ObjectDistance: 12, LineWidth: 1, FontSize: 12}
}

// Validate checks that all sizes are positive.
func (s Sizes) Validate() error {
	switch {
	case s.ObjectDistance <= 0:
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "object distance must be positive, got %g", s.ObjectDistance)
	case s.LineWidth <= 0:
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "line width must be positive, got %g", s.LineWidth)
	case s.FontSize <= 0:
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "font size must be positive, got %g", s.FontSize)
	}
	return nil
}

// clearance is the distance lines keep from obstacles during space search.
func (s Sizes) clearance() float64 { return s.ObjectDistance / 2 }

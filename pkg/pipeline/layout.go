package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	apperrors "github.com/matzehuels/facetlayout/pkg/errors"
	"github.com/matzehuels/facetlayout/pkg/layout"
	"github.com/matzehuels/facetlayout/pkg/observability"
	"github.com/matzehuels/facetlayout/pkg/pencil"
)

// =============================================================================
// Layout Generation
// =============================================================================

// Layout routes m with the variant and sizes of opts.
//
// The returned error is nil, a CAPACITY_EXCEEDED warning (m is routed in
// full anyway) or a real failure. Layout events are reported to the pipeline
// hooks.
func Layout(ctx context.Context, m *layout.Model, opts Options, logger *log.Logger) (stats observability.LayoutStats, err error) {
	if err := opts.ValidateForLayout(); err != nil {
		return stats, err
	}
	if logger == nil {
		logger = opts.Logger
	}

	variant := opts.Variant
	if variant == VariantAuto {
		variant = "auto:" + m.DiagramType().String()
	}

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, variant, len(m.Relationships))
	start := time.Now()
	defer func() {
		hooks.OnLayoutComplete(ctx, variant, stats, time.Since(start), err)
	}()

	if err := ctx.Err(); err != nil {
		return stats, err
	}

	l := pencil.New(opts.Sizes, logger)
	switch opts.Variant {
	case VariantStandard:
		err = l.LayoutStandard(m)
	case VariantVoid:
		err = l.LayoutVoid(m)
	case VariantCommunication:
		err = l.LayoutCommunication(m)
	case Variant1D:
		err = l.Layout1D(m)
	default:
		err = l.Layout(m)
	}
	if err != nil && !apperrors.IsCapacityExceeded(err) {
		return stats, err
	}

	stats = LayoutStats(m)
	return stats, err
}

// LayoutStats counts the relationship layouts of a routed model.
func LayoutStats(m *layout.Model) observability.LayoutStats {
	s := observability.LayoutStats{
		Relationships: len(m.Relationships),
		Dropped:       m.Set().Dropped() + m.Dropped(),
	}
	for _, r := range m.Relationships {
		if r.Visibility.IsDrawn() {
			s.Drawn++
		}
	}
	return s
}

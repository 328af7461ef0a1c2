package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/matzehuels/facetlayout/pkg/cache"
	apperrors "github.com/matzehuels/facetlayout/pkg/errors"
	fio "github.com/matzehuels/facetlayout/pkg/io"
	"github.com/matzehuels/facetlayout/pkg/layout"
	"github.com/matzehuels/facetlayout/pkg/observability"
	"github.com/matzehuels/facetlayout/pkg/render"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL overrides the lifetime of cache entries when positive.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → layout → render pipeline with caching.
// Artifacts are rendered for opts.Formats; an empty list only lays out.
func (r *Runner) Execute(ctx context.Context, input []byte, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{
		RunID:     uuid.NewString(),
		InputHash: cache.Hash(input),
		Artifacts: make(map[string][]byte),
	}
	logger := opts.Logger.With("run", result.RunID[:8])

	// Stage 1: Load
	loadStart := time.Now()
	doc, err := fio.ReadDocument(bytes.NewReader(input))
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	m, warn := doc.Build()
	if m == nil {
		return nil, fmt.Errorf("load: %w", warn)
	}
	if warn != nil {
		logger.Warn("elements dropped", "reason", apperrors.UserMessage(warn))
		result.Warning = warn
	}
	result.Model = m
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.Classifiers = len(m.Classifiers)
	result.Stats.Features = len(m.Features)

	logger.Debug("loaded document",
		"diagram", m.Set().Diagram().Name,
		"type", m.DiagramType(),
		"placements", len(m.Classifiers),
		"relationships", len(m.Relationships))

	// Stage 2: Layout
	layoutStart := time.Now()
	hit, err := r.LayoutWithCacheInfo(ctx, m, result.InputHash, opts)
	if err != nil && !apperrors.IsCapacityExceeded(err) {
		return nil, fmt.Errorf("layout: %w", err)
	}
	if err != nil {
		logger.Warn("layout capacity exceeded", "reason", apperrors.UserMessage(err))
		result.Warning = apperrors.Join(result.Warning, err)
	}
	result.Layout = fio.NewLayout(m)
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = hit

	stats := LayoutStats(m)
	result.Stats.Relationships = stats.Relationships
	result.Stats.Drawn = stats.Drawn
	result.Stats.Dropped = stats.Dropped

	logger.Info("computed layout",
		"relationships", stats.Relationships,
		"drawn", stats.Drawn,
		"cached", hit,
		"duration", result.Stats.LayoutTime)

	if len(opts.Formats) == 0 {
		return result, nil
	}

	// Stage 3: Render
	data, err := encodeLayout(result.Layout)
	if err != nil {
		return nil, fmt.Errorf("encode layout: %w", err)
	}
	result.LayoutHash = cache.Hash(data)

	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, m, result.LayoutHash, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	logger.Info("rendered outputs",
		"formats", opts.Formats,
		"renderer", opts.Renderer,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// LayoutWithCacheInfo routes m, reusing a cached layout of the same input
// and options when there is one. inputHash identifies the document m was
// built from.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, m *layout.Model, inputHash string, opts Options) (bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return false, err
	}

	cacheKey := r.Keyer.LayoutKey(inputHash, opts.LayoutKeyOpts())
	hooks := observability.Cache()

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		data, hit, err := r.Cache.Get(ctx, cacheKey)
		if err != nil {
			opts.Logger.Warn("cache read failed", "key", cacheKey, "err", err)
		}
		if hit {
			if cached, err := decodeLayout(data); err == nil && cached.Apply(m) == nil {
				hooks.OnCacheHit(ctx, "layout")
				return true, nil
			}
			// stale or undecodable, recompute
			opts.Logger.Debug("discarding cached layout", "key", cacheKey)
		}
		hooks.OnCacheMiss(ctx, "layout")
	}

	_, warn := Layout(ctx, m, opts, opts.Logger)
	if warn != nil && !apperrors.IsCapacityExceeded(warn) {
		return false, warn
	}

	// Cache the result
	if data, err := encodeLayout(fio.NewLayout(m)); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, r.ttl(cache.TTLLayout)); err != nil {
			opts.Logger.Warn("cache write failed", "key", cacheKey, "err", err)
		} else {
			hooks.OnCacheSet(ctx, "layout", len(data))
		}
	}

	return false, warn
}

// RenderWithCacheInfo renders m in every format of opts with caching and
// returns whether all artifacts came from the cache. layoutHash identifies
// the routed model.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, m *layout.Model, layoutHash string, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	hooks := observability.Cache()

	artifacts := make(map[string][]byte, len(opts.Formats))
	allCached := true
	for _, format := range opts.Formats {
		cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if !opts.Refresh {
			if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
				hooks.OnCacheHit(ctx, "artifact")
				artifacts[format] = data
				continue
			}
			hooks.OnCacheMiss(ctx, "artifact")
		}
		allCached = false

		data, err := render.Render(ctx, opts.renderer(), m, format, opts.Render)
		if err != nil {
			return nil, false, fmt.Errorf("%s: %w", format, err)
		}
		artifacts[format] = data

		if err := r.Cache.Set(ctx, cacheKey, data, r.ttl(cache.TTLArtifact)); err != nil {
			opts.Logger.Warn("cache write failed", "key", cacheKey, "err", err)
		} else {
			hooks.OnCacheSet(ctx, "artifact", len(data))
		}
	}

	return artifacts, allCached && len(opts.Formats) > 0, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func (r *Runner) ttl(def time.Duration) time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return def
}

// encodeLayout and decodeLayout serialize cached layouts with msgpack.
func encodeLayout(l *fio.Layout) ([]byte, error) {
	return msgpack.Marshal(l)
}

func decodeLayout(data []byte) (*fio.Layout, error) {
	var l fio.Layout
	if err := msgpack.Unmarshal(data, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/netvis/pkg/cache"
	"github.com/matzehuels/netvis/pkg/graph"
	"github.com/matzehuels/netvis/pkg/observability"
	"github.com/matzehuels/netvis/pkg/save"
	"github.com/matzehuels/netvis/pkg/topology"
)

// Cache key types reported to the cache hooks.
const (
	keyTypeLayout   = "layout"
	keyTypeArtifact = "artifact"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
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
func (r *Runner) Execute(ctx context.Context, data []byte, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{
		SaveHash:  cache.Hash(data),
		Artifacts: make(map[string][]byte),
	}

	// Stage 1+2: Load and layout
	layoutStart := time.Now()
	feed, res, layoutHit, err := r.layoutWithCacheInfo(ctx, data, result.SaveHash, opts)
	if err != nil {
		return nil, err
	}
	result.Save = res
	result.Layout = feed
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.NodeCount = len(feed.Nodes)
	result.Stats.EdgeCount = len(feed.Edges)
	result.Stats.RootCount = len(feed.Roots)
	result.Stats.Warnings = len(feed.Warnings)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"nodes", result.Stats.NodeCount,
		"edges", result.Stats.EdgeCount,
		"roots", result.Stats.RootCount,
		"warnings", result.Stats.Warnings,
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, layoutHash, renderHit, err := r.renderWithCacheInfo(ctx, feed, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.LayoutHash = layoutHash
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Load decodes a save, reporting the stage to the pipeline hooks. Warnings
// are logged but not cached: Load always does the work.
func (r *Runner) Load(ctx context.Context, data []byte) (*save.Result, error) {
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, len(data))
	start := time.Now()

	res, err := save.Load(data)
	if err != nil {
		hooks.OnLoadComplete(ctx, "", 0, 0, time.Since(start), err)
		return nil, fmt.Errorf("load: %w", err)
	}
	hooks.OnLoadComplete(ctx, res.Format, res.Graph.NodeCount(), len(res.Warnings), time.Since(start), nil)

	r.Logger.Debug("loaded save",
		"format", res.Format,
		"nodes", res.Graph.NodeCount(),
		"edges", res.Graph.EdgeCount(),
		"home", res.Graph.HomeID,
		"current", res.Graph.CurrentID)
	return res, nil
}

// LayoutWithCacheInfo returns the renderer feed for a save, from cache when
// possible, and whether it was a cache hit.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, data []byte, opts Options) (graph.Layout, bool, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return graph.Layout{}, false, err
	}
	feed, _, hit, err := r.layoutWithCacheInfo(ctx, data, cache.Hash(data), opts)
	return feed, hit, err
}

// Layout is a convenience wrapper that calls LayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) Layout(ctx context.Context, data []byte, opts Options) (graph.Layout, error) {
	feed, _, err := r.LayoutWithCacheInfo(ctx, data, opts)
	return feed, err
}

func (r *Runner) layoutWithCacheInfo(ctx context.Context, data []byte, saveHash string, opts Options) (graph.Layout, *save.Result, bool, error) {
	cacheKey := r.Keyer.LayoutKey(saveHash, opts.LayoutKeyOpts())
	cacheHooks := observability.Cache()

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if cached, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if feed, err := graph.UnmarshalLayout(cached); err == nil {
				cacheHooks.OnCacheHit(ctx, keyTypeLayout)
				r.logWarnings(feed.Warnings)
				return feed, nil, true, nil
			}
			// If deserialization fails, fall through to recompute
		} else if err != nil {
			r.Logger.Debug("cache read failed", "key", cacheKey, "error", err)
		}
		cacheHooks.OnCacheMiss(ctx, keyTypeLayout)
	}

	res, err := r.Load(ctx, data)
	if err != nil {
		return graph.Layout{}, nil, false, err
	}

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, res.Graph.NodeCount())
	start := time.Now()
	feed, _, pos := ComputeLayout(res, opts)
	hooks.OnLayoutComplete(ctx, len(feed.Roots), orphanCount(pos.Warnings()), time.Since(start), nil)

	for _, w := range feed.Warnings {
		hooks.OnWarning(ctx, string(w.Kind))
	}
	r.logWarnings(feed.Warnings)

	// Cache the result
	if encoded, err := graph.MarshalLayout(feed); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, encoded, cache.TTLLayout); err != nil {
			r.Logger.Debug("cache write failed", "key", cacheKey, "error", err)
		} else {
			cacheHooks.OnCacheSet(ctx, keyTypeLayout, len(encoded))
		}
	}

	return feed, res, false, nil
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, feed graph.Layout, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	artifacts, _, hit, err := r.renderWithCacheInfo(ctx, feed, opts)
	return artifacts, hit, err
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, feed graph.Layout, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, feed, opts)
	return artifacts, err
}

func (r *Runner) renderWithCacheInfo(ctx context.Context, feed graph.Layout, opts Options) (map[string][]byte, string, bool, error) {
	// Compute cache key from layout data
	layoutData, err := graph.MarshalLayout(feed)
	if err != nil {
		return nil, "", false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)
	cacheHooks := observability.Cache()

	// Try to get all formats from cache
	if !opts.Refresh {
		artifacts := make(map[string][]byte, len(opts.Formats))
		for _, format := range opts.Formats {
			cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
			data, hit, err := r.Cache.Get(ctx, cacheKey)
			if err != nil || !hit {
				cacheHooks.OnCacheMiss(ctx, keyTypeArtifact)
				break
			}
			cacheHooks.OnCacheHit(ctx, keyTypeArtifact)
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			return artifacts, layoutHash, true, nil
		}
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	rendered, err := Render(ctx, feed, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, "", false, err
	}

	// Cache each format
	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact); err == nil {
			cacheHooks.OnCacheSet(ctx, keyTypeArtifact, len(data))
		}
	}

	return rendered, layoutHash, false, nil
}

// logWarnings reports each warning at warn level.
func (r *Runner) logWarnings(ws []topology.Warning) {
	for _, w := range ws {
		kv := []any{"kind", w.Kind}
		if w.NodeID != topology.NoNode {
			kv = append(kv, "node", w.NodeID)
		}
		if w.Ref != 0 {
			kv = append(kv, "ref", w.Ref)
		}
		if w.Line > 0 {
			kv = append(kv, "line", w.Line)
		}
		r.Logger.Warn(w.Message, kv...)
	}
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

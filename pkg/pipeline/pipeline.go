// Package pipeline provides the topology visualisation pipeline for netvis.
//
// This package implements the complete load → resolve → layout → render
// pipeline shared by the CLI and the HTTP API, so both entry points produce
// identical feeds and artifacts for the same save.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: detect the save format and decode it into a frozen topology graph
//  2. Layout: resolve the parent/child hierarchy, place every node on the
//     radial layout and assemble the renderer feed ([graph.Layout])
//  3. Render: produce output artifacts from the feed (JSON, DOT, SVG, PNG)
//
// Stages are pure: the same save bytes and options always give the same
// feed, which is what makes the feed safe to cache by content hash.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, data, pipeline.Options{
//	    Formats: []string{"svg"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	// Load only
//	res, err := runner.Load(ctx, data)
//
//	// Layout from a loaded save, uncached
//	feed, h, pos := pipeline.ComputeLayout(res, opts)
//
//	// Render an existing feed
//	artifacts, err := runner.Render(ctx, feed, opts)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/netvis/pkg/cache"
	apperrors "github.com/matzehuels/netvis/pkg/errors"
	"github.com/matzehuels/netvis/pkg/graph"
	"github.com/matzehuels/netvis/pkg/hierarchy"
	"github.com/matzehuels/netvis/pkg/layout"
	"github.com/matzehuels/netvis/pkg/save"
	"github.com/matzehuels/netvis/pkg/topology"
)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
}

// DefaultFormats is used when no format is requested.
var DefaultFormats = []string{FormatJSON}

// ContentTypes maps each output format to its MIME type.
var ContentTypes = map[string]string{
	FormatJSON: "application/json",
	FormatDOT:  "text/vnd.graphviz",
	FormatSVG:  "image/svg+xml",
	FormatPNG:  "image/png",
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Layout options
	Layout  layout.Options `json:"layout,omitempty"`
	Palette graph.Palette  `json:"palette,omitempty"`

	// Render options
	Formats    []string `json:"formats,omitempty"`
	Background string   `json:"background,omitempty"`
	HideLabels bool     `json:"hide_labels,omitempty"`

	// Refresh skips cache reads. Results are still written back.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Save is the loaded save. Nil when the layout came from the cache.
	Save *save.Result

	// SaveHash is the content hash of the input bytes.
	SaveHash string

	// Layout is the renderer feed.
	Layout graph.Layout

	// LayoutHash is the content hash of the serialized feed.
	LayoutHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	RootCount  int
	Warnings   int
	LayoutTime time.Duration // load, resolve and placement
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the feed came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return apperrors.New(apperrors.ErrCodeInvalidInput,
			"invalid format: %q (must be one of: json, dot, svg, png)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks the options and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLayout fills zero layout settings with the defaults and checks
// the result.
func (o *Options) ValidateForLayout() error {
	o.Layout = o.Layout.WithDefaults()
	o.setLogger()
	return o.Layout.Validate()
}

// ValidateForRender defaults and checks the requested formats.
func (o *Options) ValidateForRender() error {
	if len(o.Formats) == 0 {
		o.Formats = append([]string(nil), DefaultFormats...)
	}
	o.setLogger()
	return ValidateFormats(o.Formats)
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	opts := o.Layout.WithDefaults()
	paletteHash, _ := cache.HashJSON(o.Palette.Merge(graph.DefaultPalette()))
	return cache.LayoutKeyOpts{
		RootRing:    opts.RootRing,
		ChildRadius: opts.ChildRadius,
		Shrink:      opts.Shrink,
		MinRadius:   opts.MinRadius,
		SeedStep:    opts.SeedStep,
		PaletteHash: paletteHash,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:     format,
		Background: o.Background,
		HideLabels: o.HideLabels,
	}
}

// =============================================================================
// Pure stages
// =============================================================================

// ComputeLayout resolves the hierarchy of a loaded save, places its nodes and
// assembles the renderer feed. The save's warnings come first in the feed,
// followed by the layout's own.
func ComputeLayout(res *save.Result, opts Options) (graph.Layout, *hierarchy.Hierarchy, *layout.Result) {
	h := hierarchy.Resolve(res.Graph)
	pos := layout.Compute(res.Graph, h, opts.Layout.WithDefaults())
	feed := graph.Build(res.Graph, h, pos, graph.Options{
		Palette:  opts.Palette,
		Warnings: res.Warnings,
	})
	return feed, h, pos
}

// orphanCount counts layout warnings for unreachable nodes.
func orphanCount(ws []topology.Warning) int {
	return topology.CountByKind(ws)[topology.WarnOrphanNode]
}


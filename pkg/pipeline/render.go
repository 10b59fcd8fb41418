package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/netvis/pkg/graph"
	"github.com/matzehuels/netvis/pkg/render/nodelink"
)

// Render generates output artifacts in the requested formats from a feed.
// The DOT source is built at most once and shared by the Graphviz formats.
func Render(ctx context.Context, feed graph.Layout, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))

	var dot string
	dotSource := func() string {
		if dot == "" {
			dot = nodelink.ToDOT(feed, nodelink.Options{
				Background: opts.Background,
				HideLabels: opts.HideLabels,
			})
		}
		return dot
	}

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatJSON:
			data, err = graph.MarshalLayout(feed)
		case FormatDOT:
			data = []byte(dotSource())
		case FormatSVG:
			data, err = nodelink.RenderSVG(ctx, dotSource())
		case FormatPNG:
			data, err = nodelink.RenderPNG(ctx, dotSource())
		default:
			return nil, ValidateFormat(format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

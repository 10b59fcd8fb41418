// Package pkg provides the libraries behind netvis, the game network
// topology visualiser.
//
// # Overview
//
// netvis turns a game save into a radial map of the network: ISPs in the
// middle, then areas, neighborhoods, buildings, floors, routers and users
// fanning out around them. The pkg directory is organized by stage:
//
//  1. [save] - Save decoding (JSON exports and the line-oriented format)
//  2. [topology] - The canonical node/edge graph, tiers and warnings
//  3. [hierarchy] - Parent/child resolution over the tier chain
//  4. [layout] - Deterministic radial placement
//  5. [graph] - The renderer feed and its serialization
//  6. [render/nodelink] - DOT, SVG and PNG output via Graphviz
//  7. [pipeline] - Orchestration (load → layout → render) with caching
//
// Supporting packages: [cache] (file, redis and null backends), [config],
// [metrics], [observability] and [errors].
//
// # Architecture
//
//	save bytes
//	     ↓
//	[save] detect format, decode, freeze   → warnings
//	     ↓
//	[hierarchy] resolve parents and roots
//	     ↓
//	[layout] place nodes                   → orphan warnings
//	     ↓
//	[graph] assemble the feed
//	     ↓
//	JSON / DOT / SVG / PNG
//
// # Quick Start
//
//	data, _ := os.ReadFile("save.json")
//	runner := pipeline.NewRunner(nil, nil, logger)
//	result, err := runner.Execute(ctx, data, pipeline.Options{
//	    Formats: []string{"svg"},
//	})
//	if err != nil {
//	    return err
//	}
//	os.WriteFile("save.network.svg", result.Artifacts["svg"], 0644)
//
// Every stage is deterministic: the same save and options always produce
// the same feed, byte for byte.
package pkg

// Package graph provides the renderer feed for laid-out topologies.
//
// This package defines the wire format handed to drawing backends, written as
// JSON files, served by the HTTP API and stored in the cache.
//
// # Architecture
//
// The package sits at the boundary between the in-memory model and its
// consumers:
//
//   - pkg/topology.Graph: loaded servers and links
//   - pkg/hierarchy.Hierarchy: derived parent/child overlay
//   - pkg/layout.Result: derived positions
//   - [Layout]: everything above flattened into one serializable value
//
// Use [Build] to assemble a [Layout] and [MarshalLayout]/[UnmarshalLayout]
// to move it across process boundaries.
//
// # Feed Format
//
//	{
//	  "viz_type": "radial",
//	  "nodes": [{"id": 1, "label": "isp_core", "tier": "isp",
//	             "title": "Tier: isp\nSecurity: 5\nMoney: 100",
//	             "color": "#2b7cff", "size": 36, "x": 0, "y": 0, "parent": null}],
//	  "edges": [{"from": 1, "to": 2}],
//	  "home_id": 3, "current_id": 1, "roots": [1],
//	  "bounds": {"min_x": -220, "min_y": -132.4, "max_x": 175.7, "max_y": 132.4}
//	}
//
// # Colours and Sizes
//
// [DefaultPalette] colours nodes by tier. The home node is always
// [ColorHome]; the current node is [ColorCurrent] unless it is also home.
// Tiers without a palette entry use [ColorDefault]. [SizeFor] gives isp
// nodes 36, area and building nodes 24 and everything else 14.
//
// # Concurrency
//
// All functions are safe for concurrent reads but not concurrent writes.
package graph

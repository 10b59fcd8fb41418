// Package topology provides the canonical in-memory model of a game network:
// servers, their tiers, and the undirected links between them.
//
// # Overview
//
// A [Graph] maps non-negative integer ids to [Node] values and remembers the
// order in which nodes were added. Every consumer (hierarchy resolution,
// layout, rendering) iterates in that order, so output is stable no matter
// how the underlying maps hash.
//
// Links are stored per node exactly as the save declared them: ordered and
// possibly duplicated, because the order breaks ties during hierarchy
// resolution. The undirected edge set is derived once, in [Graph.Freeze],
// as unordered pairs deduplicated in first-seen order.
//
// # Tiers
//
// Each node carries a [Tier]. [ParseType] maps exporter type strings
// (building_switch, access_switch, ...) to canonical tiers, and [InferTier]
// guesses a tier from a node name using the ordered [NameRules] table.
// Unknown explicit strings are kept verbatim so downstream code still has a
// stable key.
//
// # Lifecycle
//
// Loaders build a graph with [Graph.AddNode] (or [Graph.ReplaceNode] for
// duplicate ids) and then call [Graph.Freeze], which drops dangling links,
// builds the edge set and makes the graph read-only. Non-fatal problems are
// reported as [Warning] values rather than errors.
//
// # Concurrency
//
// A frozen graph is safe for concurrent reads. Building a graph is not safe
// for concurrent use.
package topology

// Package hierarchy infers a parent/child tree from the undirected links of a
// topology graph.
//
// Links carry no direction, so the tree is recovered from tiers: each tier
// has at most one parent tier ([ParentTier]) and a node attaches to the first
// neighbour of that tier in its link order. The chain runs
//
//	isp <- area <- neighborhood <- building <- floor <- router <- user <- host
//
// Tiers outside the chain (tor, rack, pop, backbone and raw exporter strings)
// never take a parent and can only be reached as roots.
//
// The result depends only on node tiers and link order, never on map
// iteration, so resolving the same graph twice gives the same [Hierarchy].
package hierarchy

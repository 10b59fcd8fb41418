package topology

import "fmt"

// WarningKind classifies a recoverable problem found while loading or laying
// out a topology.
type WarningKind string

const (
	// WarnDanglingReference: a link names an id that is not in the graph.
	// The link is dropped.
	WarnDanglingReference WarningKind = "dangling_reference"
	// WarnUnmappedTier: an explicit type or tier string has no table entry.
	// The raw string is kept as the tier.
	WarnUnmappedTier WarningKind = "unmapped_tier"
	// WarnOrphanNode: a node is unreachable from every root. It is placed at
	// the origin.
	WarnOrphanNode WarningKind = "orphan_node"
	// WarnMalformedRecord: part of a line-oriented record could not be read
	// and a default was used or the fragment was dropped.
	WarnMalformedRecord WarningKind = "malformed_record"
	// WarnDuplicateNode: a later entry reused an id and replaced the earlier
	// node.
	WarnDuplicateNode WarningKind = "duplicate_node"
)

// NoNode is the NodeID of warnings not tied to a node.
const NoNode = -1

// Warning is a non-fatal issue reported alongside a result.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	NodeID  int         `json:"node_id"`
	Ref     int         `json:"ref,omitempty"`  // referenced id, for dangling links
	Line    int         `json:"line,omitempty"` // 1-based input line, when known
	Message string      `json:"message"`
}

func (w Warning) String() string {
	var loc string
	if w.Line > 0 {
		loc = fmt.Sprintf("line %d: ", w.Line)
	}
	switch {
	case w.Kind == WarnDanglingReference:
		return fmt.Sprintf("%s%s: node %d -> %d: %s", loc, w.Kind, w.NodeID, w.Ref, w.Message)
	case w.NodeID == NoNode:
		return fmt.Sprintf("%s%s: %s", loc, w.Kind, w.Message)
	default:
		return fmt.Sprintf("%s%s: node %d: %s", loc, w.Kind, w.NodeID, w.Message)
	}
}

// CountByKind tallies warnings per kind.
func CountByKind(ws []Warning) map[WarningKind]int {
	counts := make(map[WarningKind]int)
	for _, w := range ws {
		counts[w.Kind]++
	}
	return counts
}

package topology

import (
	"errors"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when the id is negative.
	ErrInvalidNodeID = errors.New("node ID must not be negative")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when a node with the
	// same id already exists. Use [Graph.ReplaceNode] to overwrite.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownNode is returned by [Graph.ReplaceNode] when no node with the
	// id exists.
	ErrUnknownNode = errors.New("unknown node")

	// ErrFrozen is returned by mutating methods after [Graph.Freeze].
	ErrFrozen = errors.New("graph is frozen")
)

// Service is a network service exposed by a node.
type Service struct {
	Name          string `json:"name"`
	Port          int    `json:"port"`
	Vulnerability int    `json:"vulnerability"`
}

// Node is a server in the game network.
//
// Links keeps the save's declaration order, duplicates included: the first
// neighbour of the required parent tier wins during hierarchy resolution.
type Node struct {
	ID       int
	Name     string
	Security int
	Money    int
	Links    []int
	Services []Service
	Tier     Tier
	Role     int // role code from the line-oriented save format, 0 otherwise
}

// Edge is an undirected link between two nodes. A is never greater than B.
type Edge struct {
	A int `json:"a"`
	B int `json:"b"`
}

// NewEdge returns the edge joining a and b with its endpoints ordered.
func NewEdge(a, b int) Edge {
	if a > b {
		a, b = b, a
	}
	return Edge{A: a, B: b}
}

// Graph is the canonical topology: nodes keyed by id, kept in insertion
// order, plus the two distinguished ids used for rendering emphasis.
//
// The zero value is not usable - use [New].
type Graph struct {
	nodes  map[int]*Node
	order  []int
	edges  []Edge
	frozen bool

	HomeID    int // 0 if the save did not say
	CurrentID int // 0 if the save did not say
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{nodes: make(map[int]*Node)}
}

// AddNode appends a node. Returns ErrInvalidNodeID for negative ids,
// ErrDuplicateNodeID if the id is taken and ErrFrozen after Freeze.
// Links and Services are copied.
func (g *Graph) AddNode(n Node) error {
	if g.frozen {
		return ErrFrozen
	}
	if n.ID < 0 {
		return ErrInvalidNodeID
	}
	if _, exists := g.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	g.nodes[n.ID] = cloneNode(n)
	g.order = append(g.order, n.ID)
	return nil
}

// ReplaceNode overwrites an existing node in place, keeping its position in
// the iteration order.
func (g *Graph) ReplaceNode(n Node) error {
	if g.frozen {
		return ErrFrozen
	}
	if _, exists := g.nodes[n.ID]; !exists {
		return ErrUnknownNode
	}
	g.nodes[n.ID] = cloneNode(n)
	return nil
}

func cloneNode(n Node) *Node {
	n.Links = slices.Clone(n.Links)
	n.Services = slices.Clone(n.Services)
	return &n
}

// Freeze drops links to ids that are not in the graph, builds the edge set
// and makes the graph read-only. It returns one DanglingReference warning per
// dropped link. Calling Freeze again is a no-op.
func (g *Graph) Freeze() []Warning {
	if g.frozen {
		return nil
	}
	var warnings []Warning
	for _, id := range g.order {
		n := g.nodes[id]
		kept := n.Links[:0]
		for _, to := range n.Links {
			if _, ok := g.nodes[to]; !ok {
				warnings = append(warnings, Warning{
					Kind:    WarnDanglingReference,
					NodeID:  id,
					Ref:     to,
					Message: "link to unknown node dropped",
				})
				continue
			}
			kept = append(kept, to)
		}
		n.Links = kept
	}
	g.edges = g.buildEdges()
	g.frozen = true
	return warnings
}

// Frozen reports whether Freeze has been called.
func (g *Graph) Frozen() bool { return g.frozen }

func (g *Graph) buildEdges() []Edge {
	seen := make(map[Edge]bool)
	var edges []Edge
	for _, id := range g.order {
		for _, to := range g.nodes[id].Links {
			if _, ok := g.nodes[to]; !ok {
				continue
			}
			e := NewEdge(id, to)
			if !seen[e] {
				seen[e] = true
				edges = append(edges, e)
			}
		}
	}
	return edges
}

// Node returns the node with the given id. The node must be treated as
// read-only.
func (g *Graph) Node(id int) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Has reports whether id is a node of the graph.
func (g *Graph) Has(id int) bool {
	_, ok := g.nodes[id]
	return ok
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, len(g.order))
	for i, id := range g.order {
		nodes[i] = g.nodes[id]
	}
	return nodes
}

// IDs returns all node ids in insertion order.
func (g *Graph) IDs() []int { return slices.Clone(g.order) }

// Edges returns the deduplicated undirected edges in first-seen order.
// On a graph that is not frozen yet the set is computed on each call.
func (g *Graph) Edges() []Edge {
	if g.frozen {
		return slices.Clone(g.edges)
	}
	return g.buildEdges()
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.order) }

// EdgeCount returns the number of distinct undirected edges.
func (g *Graph) EdgeCount() int {
	if g.frozen {
		return len(g.edges)
	}
	return len(g.buildEdges())
}

// TierCounts returns how many nodes carry each tier.
func (g *Graph) TierCounts() map[Tier]int {
	counts := make(map[Tier]int)
	for _, n := range g.nodes {
		counts[n.Tier]++
	}
	return counts
}

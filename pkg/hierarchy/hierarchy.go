package hierarchy

import (
	"slices"

	"github.com/matzehuels/netvis/pkg/topology"
)

// parentTiers maps a child tier to the tier its parent must have.
var parentTiers = map[topology.Tier]topology.Tier{
	topology.TierArea:         topology.TierISP,
	topology.TierNeighborhood: topology.TierArea,
	topology.TierBuilding:     topology.TierNeighborhood,
	topology.TierFloor:        topology.TierBuilding,
	topology.TierRouter:       topology.TierFloor,
	topology.TierUser:         topology.TierRouter,
	topology.TierHost:         topology.TierUser,
}

// ParentTier returns the tier a node of tier t attaches to. Tiers without
// an entry (isp, tor, rack, pop, backbone and raw strings) never get a
// parent.
func ParentTier(t topology.Tier) (topology.Tier, bool) {
	pt, ok := parentTiers[t]
	return pt, ok
}

// Hierarchy is the parent/child overlay derived from a graph. It does not
// modify the graph and is safe for concurrent reads.
type Hierarchy struct {
	parent   map[int]int
	children map[int][]int
	roots    []int
	order    []int
}

// Resolve builds the hierarchy of g.
//
// Nodes are visited in graph order. A node whose tier has a parent tier takes
// the first neighbour in its link order carrying that tier as parent and is
// appended to that neighbour's children. Roots are the parentless isp nodes
// in graph order; when there are none, every parentless node is a root.
func Resolve(g *topology.Graph) *Hierarchy {
	h := &Hierarchy{
		parent:   make(map[int]int),
		children: make(map[int][]int),
		order:    g.IDs(),
	}

	for _, n := range g.Nodes() {
		want, ok := ParentTier(n.Tier)
		if !ok {
			continue
		}
		for _, nb := range n.Links {
			m, ok := g.Node(nb)
			if !ok || m.Tier != want {
				continue
			}
			h.parent[n.ID] = nb
			h.children[nb] = append(h.children[nb], n.ID)
			break
		}
	}

	for _, n := range g.Nodes() {
		if _, has := h.parent[n.ID]; !has && n.Tier == topology.TierISP {
			h.roots = append(h.roots, n.ID)
		}
	}
	if len(h.roots) == 0 {
		for _, id := range h.order {
			if _, has := h.parent[id]; !has {
				h.roots = append(h.roots, id)
			}
		}
	}
	return h
}

// Parent returns the parent of id, if it has one.
func (h *Hierarchy) Parent(id int) (int, bool) {
	p, ok := h.parent[id]
	return p, ok
}

// Children returns the children of id in attachment order.
func (h *Hierarchy) Children(id int) []int {
	return slices.Clone(h.children[id])
}

// Roots returns the layout roots in graph order.
func (h *Hierarchy) Roots() []int {
	return slices.Clone(h.roots)
}

// IsRoot reports whether id is one of the roots.
func (h *Hierarchy) IsRoot(id int) bool {
	return slices.Contains(h.roots, id)
}

// Depth returns the number of ancestors of id.
func (h *Hierarchy) Depth(id int) int {
	d := 0
	for {
		p, ok := h.parent[id]
		if !ok || d > len(h.order) {
			return d
		}
		id = p
		d++
	}
}

// Walk visits every node reachable from the roots in pre-order, children in
// attachment order. depth is 0 for roots. Returning false from fn skips the
// subtree below the node.
func (h *Hierarchy) Walk(fn func(id, depth int) bool) {
	seen := make(map[int]bool, len(h.order))
	var visit func(id, depth int)
	visit = func(id, depth int) {
		if seen[id] {
			return
		}
		seen[id] = true
		if !fn(id, depth) {
			return
		}
		for _, c := range h.children[id] {
			visit(c, depth+1)
		}
	}
	for _, r := range h.roots {
		visit(r, 0)
	}
}

// Unreached returns, in graph order, the nodes that no walk from the roots
// visits.
func (h *Hierarchy) Unreached() []int {
	reached := make(map[int]bool, len(h.order))
	h.Walk(func(id, _ int) bool {
		reached[id] = true
		return true
	})
	var out []int
	for _, id := range h.order {
		if !reached[id] {
			out = append(out, id)
		}
	}
	return out
}

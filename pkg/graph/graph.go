package graph

import (
	"github.com/matzehuels/netvis/pkg/hierarchy"
	"github.com/matzehuels/netvis/pkg/layout"
	"github.com/matzehuels/netvis/pkg/topology"
)

// Options configures [Build].
type Options struct {
	// Palette colours the nodes. Zero fields fall back to [DefaultPalette].
	Palette Palette
	// Warnings are reported ahead of the layout's own warnings, typically
	// the ones collected while loading the save.
	Warnings []topology.Warning
}

// Build assembles the renderer feed from a graph, its hierarchy and its
// positions. Nodes and edges keep graph order.
func Build(g *topology.Graph, h *hierarchy.Hierarchy, pos *layout.Result, opts Options) Layout {
	palette := opts.Palette.Merge(DefaultPalette())

	out := Layout{
		VizType:   VizTypeRadial,
		Nodes:     make([]Node, 0, g.NodeCount()),
		Edges:     make([]Edge, 0, g.EdgeCount()),
		HomeID:    g.HomeID,
		CurrentID: g.CurrentID,
		Roots:     h.Roots(),
		Bounds:    pos.Bounds(),
	}
	if out.Roots == nil {
		out.Roots = []int{}
	}

	for _, n := range g.Nodes() {
		p := pos.Position(n.ID)
		node := Node{
			ID:    n.ID,
			Label: n.Name,
			Tier:  string(n.Tier),
			Title: Title(n),
			Color: palette.Color(n.Tier, n.ID == g.HomeID, n.ID == g.CurrentID),
			Size:  SizeFor(n.Tier),
			X:     p.X,
			Y:     p.Y,
		}
		if parent, ok := h.Parent(n.ID); ok {
			node.Parent = &parent
		}
		out.Nodes = append(out.Nodes, node)
	}

	for _, e := range g.Edges() {
		out.Edges = append(out.Edges, Edge{From: e.A, To: e.B})
	}

	out.Warnings = append(out.Warnings, opts.Warnings...)
	out.Warnings = append(out.Warnings, pos.Warnings()...)
	return out
}

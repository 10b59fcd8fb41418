package graph

import (
	"fmt"
	"strings"

	"github.com/matzehuels/netvis/pkg/layout"
	"github.com/matzehuels/netvis/pkg/topology"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// VizTypeRadial identifies the radial topology layout.
const VizTypeRadial = "radial"

// Emphasis colours for the distinguished nodes.
const (
	ColorHome    = "#00aa00"
	ColorCurrent = "#aa0000"
	ColorDefault = "#888888"
)

// Node sizes by tier.
const (
	SizeISP   = 36
	SizeLarge = 24 // area, building
	SizeSmall = 14
)

// =============================================================================
// Layout - Renderer Feed
// =============================================================================

// Layout is the renderer feed: everything a drawing backend needs to show a
// topology, with positions already fixed. It is the wire format for the
// JSON output, the HTTP API and the cache.
type Layout struct {
	VizType   string             `json:"viz_type"`
	Nodes     []Node             `json:"nodes"`
	Edges     []Edge             `json:"edges"`
	HomeID    int                `json:"home_id"`
	CurrentID int                `json:"current_id"`
	Roots     []int              `json:"roots"`
	Warnings  []topology.Warning `json:"warnings,omitempty"`
	Bounds    layout.Rect        `json:"bounds"`
}

// Node returns the node with the given id.
func (l *Layout) Node(id int) (*Node, bool) {
	for i := range l.Nodes {
		if l.Nodes[i].ID == id {
			return &l.Nodes[i], true
		}
	}
	return nil, false
}

// =============================================================================
// Node - Positioned Server
// =============================================================================

// Node is one positioned server. Y grows downwards.
type Node struct {
	ID     int     `json:"id"`
	Label  string  `json:"label"`
	Tier   string  `json:"tier"`
	Title  string  `json:"title"` // multi-line hover text
	Color  string  `json:"color"`
	Size   int     `json:"size"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Parent *int    `json:"parent"` // nil for roots and orphans
}

// IsRoot reports whether the node has no parent.
func (n *Node) IsRoot() bool { return n.Parent == nil }

// =============================================================================
// Edge - Undirected Link
// =============================================================================

// Edge is an undirected link. From is never greater than To.
type Edge struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// =============================================================================
// Palette
// =============================================================================

// Palette maps tiers to fill colours.
type Palette struct {
	Tiers   map[string]string `json:"tiers" toml:"tiers" yaml:"tiers"`
	Home    string            `json:"home" toml:"home" yaml:"home"`
	Current string            `json:"current" toml:"current" yaml:"current"`
	Default string            `json:"default" toml:"default" yaml:"default"`
}

// DefaultPalette returns the standard tier colours.
func DefaultPalette() Palette {
	return Palette{
		Tiers: map[string]string{
			string(topology.TierISP):          "#2b7cff",
			string(topology.TierArea):         "#61dafb",
			string(topology.TierNeighborhood): "#ffd700",
			string(topology.TierBuilding):     "#ff8c00",
			string(topology.TierFloor):        "#ffb957",
			string(topology.TierRouter):       "#7b61ff",
			string(topology.TierUser):         "#5f9ea0",
			string(topology.TierHost):         ColorDefault,
		},
		Home:    ColorHome,
		Current: ColorCurrent,
		Default: ColorDefault,
	}
}

// Merge returns p with empty fields and missing tiers taken from base.
// Tier keys are lowercased; Color falls back to a lowercase lookup.
func (p Palette) Merge(base Palette) Palette {
	out := base
	out.Tiers = make(map[string]string, len(base.Tiers)+len(p.Tiers))
	for k, v := range base.Tiers {
		out.Tiers[strings.ToLower(k)] = v
	}
	for k, v := range p.Tiers {
		out.Tiers[strings.ToLower(k)] = v
	}
	if p.Home != "" {
		out.Home = p.Home
	}
	if p.Current != "" {
		out.Current = p.Current
	}
	if p.Default != "" {
		out.Default = p.Default
	}
	return out
}

// Color returns the fill for a node. Home beats current, which beats the
// tier colour.
func (p Palette) Color(tier topology.Tier, home, current bool) string {
	switch {
	case home:
		return p.Home
	case current:
		return p.Current
	}
	if c, ok := p.Tiers[string(tier)]; ok {
		return c
	}
	if c, ok := p.Tiers[strings.ToLower(string(tier))]; ok {
		return c
	}
	return p.Default
}

// SizeFor returns the node size for tier.
func SizeFor(tier topology.Tier) int {
	switch tier {
	case topology.TierISP:
		return SizeISP
	case topology.TierArea, topology.TierBuilding:
		return SizeLarge
	default:
		return SizeSmall
	}
}

// Title returns the hover text for n.
func Title(n *topology.Node) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Tier: %s\nSecurity: %d\nMoney: %d", n.Tier, n.Security, n.Money)
	if len(n.Services) > 0 {
		b.WriteString("\nServices:")
		for _, s := range n.Services {
			fmt.Fprintf(&b, "\n%s:%d (v%d)", s.Name, s.Port, s.Vulnerability)
		}
	}
	return b.String()
}

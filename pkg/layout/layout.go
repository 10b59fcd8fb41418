package layout

import (
	"fmt"
	"math"

	apperrors "github.com/matzehuels/netvis/pkg/errors"
	"github.com/matzehuels/netvis/pkg/hierarchy"
	"github.com/matzehuels/netvis/pkg/topology"
)

// Default placement constants.
const (
	DefaultRootRing    = 120.0
	DefaultChildRadius = 220.0
	DefaultShrink      = 0.55
	DefaultMinRadius   = 40.0
	DefaultSeedStep    = 37
)

// Options configures placement. Zero fields take the defaults.
type Options struct {
	RootRing    float64 `json:"root_ring" toml:"root_ring" yaml:"root_ring"`          // radius of the circle holding several roots
	ChildRadius float64 `json:"child_radius" toml:"child_radius" yaml:"child_radius"` // distance of a root's children
	Shrink      float64 `json:"shrink" toml:"shrink" yaml:"shrink"`                   // radius factor per level
	MinRadius   float64 `json:"min_radius" toml:"min_radius" yaml:"min_radius"`       // floor for the shrinking radius
	SeedStep    int     `json:"seed_step" toml:"seed_step" yaml:"seed_step"`          // degrees added to a parent's seed angle per id
}

// DefaultOptions returns the default placement constants.
func DefaultOptions() Options {
	return Options{
		RootRing:    DefaultRootRing,
		ChildRadius: DefaultChildRadius,
		Shrink:      DefaultShrink,
		MinRadius:   DefaultMinRadius,
		SeedStep:    DefaultSeedStep,
	}
}

// WithDefaults returns o with zero fields replaced by defaults.
func (o Options) WithDefaults() Options {
	d := DefaultOptions()
	if o.RootRing == 0 {
		o.RootRing = d.RootRing
	}
	if o.ChildRadius == 0 {
		o.ChildRadius = d.ChildRadius
	}
	if o.Shrink == 0 {
		o.Shrink = d.Shrink
	}
	if o.MinRadius == 0 {
		o.MinRadius = d.MinRadius
	}
	if o.SeedStep == 0 {
		o.SeedStep = d.SeedStep
	}
	return o
}

// Validate rejects options that cannot produce a finite layout.
func (o Options) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"root_ring", o.RootRing},
		{"child_radius", o.ChildRadius},
		{"shrink", o.Shrink},
		{"min_radius", o.MinRadius},
	}
	for _, f := range fields {
		if f.v < 0 || math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return apperrors.New(apperrors.ErrCodeInvalidConfig, "layout %s must be a non-negative number, got %v", f.name, f.v)
		}
	}
	if o.Shrink > 1 {
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "layout shrink must not exceed 1, got %v", o.Shrink)
	}
	return nil
}

// Point is a position in layout space. Y grows downwards, as in the
// renderers that consume it.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned bounding box.
type Rect struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

func (r Rect) Width() float64  { return r.MaxX - r.MinX }
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// Result holds the position of every node of the laid-out graph.
type Result struct {
	positions map[int]Point
	order     []int
	warnings  []topology.Warning
	bounds    Rect
}

// Compute places every node of g.
//
// A single root sits at the origin; several roots are spread over a circle of
// radius RootRing, root i at angle 2π·i/n. The k children of a node p at
// radius r sit at p + r·(cos θ, sin θ) with θ = seed + 360·i/k degrees and
// seed = (p.ID·SeedStep) mod 360. Their own children use radius
// max(r·Shrink, MinRadius), starting from ChildRadius below the roots.
//
// Nodes not reachable from any root are placed at the origin and reported
// with an orphan_node warning. Compute is deterministic: the same graph and
// hierarchy always give bit-identical positions.
func Compute(g *topology.Graph, h *hierarchy.Hierarchy, opts Options) *Result {
	opts = opts.WithDefaults()
	res := &Result{
		positions: make(map[int]Point, g.NodeCount()),
		order:     g.IDs(),
	}

	roots := h.Roots()
	switch len(roots) {
	case 0:
	case 1:
		res.place(h, opts, roots[0], Point{}, opts.ChildRadius)
	default:
		n := float64(len(roots))
		for i, id := range roots {
			ang := 2 * math.Pi * float64(i) / n
			p := Point{X: math.Cos(ang) * opts.RootRing, Y: math.Sin(ang) * opts.RootRing}
			res.place(h, opts, id, p, opts.ChildRadius)
		}
	}

	for _, id := range res.order {
		if _, ok := res.positions[id]; ok {
			continue
		}
		res.positions[id] = Point{}
		res.warnings = append(res.warnings, topology.Warning{
			Kind:    topology.WarnOrphanNode,
			NodeID:  id,
			Message: "unreachable from every root, placed at origin",
		})
	}

	res.bounds = res.computeBounds()
	return res
}

// place positions id at p and its subtree around it.
func (r *Result) place(h *hierarchy.Hierarchy, opts Options, id int, p Point, radius float64) {
	if _, done := r.positions[id]; done {
		return
	}
	r.positions[id] = p

	children := h.Children(id)
	k := len(children)
	if k == 0 {
		return
	}
	seed := float64(seedAngle(id, opts.SeedStep))
	next := math.Max(radius*opts.Shrink, opts.MinRadius)
	for i, c := range children {
		theta := (seed + 360.0*float64(i)/float64(k)) * (math.Pi / 180)
		cp := Point{X: p.X + math.Cos(theta)*radius, Y: p.Y + math.Sin(theta)*radius}
		r.place(h, opts, c, cp, next)
	}
}

// seedAngle returns the starting angle in degrees for the children of id.
func seedAngle(id, step int) int {
	a := (id * step) % 360
	if a < 0 {
		a += 360
	}
	return a
}

func (r *Result) computeBounds() Rect {
	if len(r.order) == 0 {
		return Rect{}
	}
	b := Rect{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
	for _, id := range r.order {
		p := r.positions[id]
		b.MinX = math.Min(b.MinX, p.X)
		b.MinY = math.Min(b.MinY, p.Y)
		b.MaxX = math.Max(b.MaxX, p.X)
		b.MaxY = math.Max(b.MaxY, p.Y)
	}
	return b
}

// Position returns the position of id. Unknown ids report the origin.
func (r *Result) Position(id int) Point {
	return r.positions[id]
}

// Lookup returns the position of id and whether the graph has that node.
func (r *Result) Lookup(id int) (Point, bool) {
	p, ok := r.positions[id]
	return p, ok
}

// IDs returns the laid-out node ids in graph order.
func (r *Result) IDs() []int {
	return append([]int(nil), r.order...)
}

// Bounds returns the bounding box of all positions.
func (r *Result) Bounds() Rect { return r.bounds }

// Warnings returns the orphan warnings, in graph order.
func (r *Result) Warnings() []topology.Warning {
	return append([]topology.Warning(nil), r.warnings...)
}

func (p Point) String() string { return fmt.Sprintf("(%.2f, %.2f)", p.X, p.Y) }

package layout

import (
	"math"
	"testing"

	"github.com/matzehuels/netvis/pkg/hierarchy"
	"github.com/matzehuels/netvis/pkg/topology"
)

const eps = 1e-9

func near(a, b float64) bool { return math.Abs(a-b) < eps }

type spec struct {
	id    int
	tier  topology.Tier
	links []int
}

func build(t *testing.T, nodes ...spec) *topology.Graph {
	t.Helper()
	g := topology.New()
	for _, n := range nodes {
		if err := g.AddNode(topology.Node{ID: n.id, Tier: n.tier, Links: n.links}); err != nil {
			t.Fatalf("AddNode(%d): %v", n.id, err)
		}
	}
	g.Freeze()
	return g
}

func compute(t *testing.T, opts Options, nodes ...spec) *Result {
	t.Helper()
	g := build(t, nodes...)
	return Compute(g, hierarchy.Resolve(g), opts)
}

func TestCompute_SingleRoot(t *testing.T) {
	res := compute(t, Options{},
		spec{1, topology.TierISP, []int{2, 3}},
		spec{2, topology.TierArea, []int{1}},
		spec{3, topology.TierArea, []int{1}},
	)

	if p := res.Position(1); p != (Point{}) {
		t.Errorf("Position(1) = %v, want origin", p)
	}
	for _, tt := range []struct {
		id  int
		deg float64
	}{{2, 37}, {3, 217}} {
		p := res.Position(tt.id)
		if d := math.Hypot(p.X, p.Y); !near(d, 220) {
			t.Errorf("distance of %d = %v, want 220", tt.id, d)
		}
		rad := tt.deg * math.Pi / 180
		if !near(p.X, 220*math.Cos(rad)) || !near(p.Y, 220*math.Sin(rad)) {
			t.Errorf("Position(%d) = %v, want angle %v°", tt.id, p, tt.deg)
		}
	}
	if len(res.Warnings()) != 0 {
		t.Errorf("Warnings = %v, want none", res.Warnings())
	}
}

func TestCompute_TwoRoots(t *testing.T) {
	res := compute(t, Options{},
		spec{1, topology.TierISP, nil},
		spec{2, topology.TierISP, nil},
	)
	p1, p2 := res.Position(1), res.Position(2)
	if !near(p1.X, 120) || !near(p1.Y, 0) {
		t.Errorf("Position(1) = %v, want (120, 0)", p1)
	}
	if !near(p2.X, -120) || !near(p2.Y, 0) {
		t.Errorf("Position(2) = %v, want (-120, 0)", p2)
	}
}

func TestCompute_RootRing(t *testing.T) {
	res := compute(t, Options{},
		spec{10, topology.TierISP, nil},
		spec{20, topology.TierISP, nil},
		spec{30, topology.TierISP, nil},
		spec{40, topology.TierISP, nil},
	)
	want := map[int]Point{10: {120, 0}, 20: {0, 120}, 30: {-120, 0}, 40: {0, -120}}
	for id, w := range want {
		p := res.Position(id)
		if !near(p.X, w.X) || !near(p.Y, w.Y) {
			t.Errorf("Position(%d) = %v, want %v", id, p, w)
		}
	}
}

func TestCompute_ShrinkingRadius(t *testing.T) {
	res := compute(t, Options{},
		spec{1, topology.TierISP, []int{2}},
		spec{2, topology.TierArea, []int{1, 3}},
		spec{3, topology.TierNeighborhood, []int{2, 4}},
		spec{4, topology.TierBuilding, []int{3, 5}},
		spec{5, topology.TierFloor, []int{4}},
	)
	// 220, 121, 66.55, then floored at 40.
	want := []float64{220, 121, 66.55, 40}
	for i, r := range want {
		parent, child := res.Position(i+1), res.Position(i+2)
		if d := math.Hypot(child.X-parent.X, child.Y-parent.Y); math.Abs(d-r) > 1e-6 {
			t.Errorf("distance %d->%d = %v, want %v", i+1, i+2, d, r)
		}
	}
}

func TestCompute_SeedAngle(t *testing.T) {
	res := compute(t, Options{},
		spec{1, topology.TierISP, []int{12}},
		spec{12, topology.TierArea, []int{1, 13}},
		spec{13, topology.TierNeighborhood, []int{12}},
	)
	parent, child := res.Position(12), res.Position(13)
	// seed for 12 is 12*37 mod 360 = 84
	got := math.Atan2(child.Y-parent.Y, child.X-parent.X) * 180 / math.Pi
	if !near(got, 84) {
		t.Errorf("child angle = %v, want 84", got)
	}
}

func TestCompute_Orphans(t *testing.T) {
	res := compute(t, Options{},
		spec{1, topology.TierISP, []int{2}},
		spec{2, topology.TierArea, []int{1}},
		spec{3, topology.TierRouter, nil},
		spec{4, topology.TierToR, nil},
	)
	ws := res.Warnings()
	if len(ws) != 2 {
		t.Fatalf("Warnings = %v, want 2", ws)
	}
	for i, id := range []int{3, 4} {
		if ws[i].Kind != topology.WarnOrphanNode || ws[i].NodeID != id {
			t.Errorf("warning %d = %+v, want orphan %d", i, ws[i], id)
		}
		if p, ok := res.Lookup(id); !ok || p != (Point{}) {
			t.Errorf("Lookup(%d) = %v, %v, want origin", id, p, ok)
		}
	}
}

func TestCompute_Bounds(t *testing.T) {
	res := compute(t, Options{},
		spec{1, topology.TierISP, nil},
		spec{2, topology.TierISP, nil},
	)
	b := res.Bounds()
	if !near(b.MinX, -120) || !near(b.MaxX, 120) || !near(b.Width(), 240) {
		t.Errorf("Bounds = %+v", b)
	}

	empty := Compute(topology.New(), hierarchy.Resolve(topology.New()), Options{})
	if empty.Bounds() != (Rect{}) || len(empty.IDs()) != 0 {
		t.Errorf("empty Bounds = %+v", empty.Bounds())
	}
}

func TestCompute_CustomOptions(t *testing.T) {
	opts := Options{RootRing: 50, ChildRadius: 100, Shrink: 0.5, MinRadius: 10, SeedStep: 90}
	res := compute(t, opts,
		spec{1, topology.TierISP, []int{2}},
		spec{2, topology.TierArea, []int{1}},
		spec{3, topology.TierISP, nil},
	)
	if p := res.Position(1); !near(p.X, 50) {
		t.Errorf("Position(1) = %v, want x=50", p)
	}
	// seed for 1 is 90°, so the child sits straight below at distance 100.
	p := res.Position(2)
	if !near(p.X, 50) || !near(p.Y, 100) {
		t.Errorf("Position(2) = %v, want (50, 100)", p)
	}
}

func TestOptions(t *testing.T) {
	if got := (Options{}).WithDefaults(); got != DefaultOptions() {
		t.Errorf("WithDefaults() = %+v, want %+v", got, DefaultOptions())
	}
	if err := DefaultOptions().Validate(); err != nil {
		t.Errorf("Validate(defaults) = %v", err)
	}
	bad := []Options{
		{RootRing: -1},
		{Shrink: 1.5},
		{MinRadius: math.NaN()},
		{ChildRadius: math.Inf(1)},
	}
	for _, o := range bad {
		if err := o.Validate(); err == nil {
			t.Errorf("Validate(%+v) = nil, want error", o)
		}
	}
}

func TestSeedAngle(t *testing.T) {
	tests := []struct{ id, step, want int }{
		{0, 37, 0},
		{1, 37, 37},
		{10, 37, 10},
		{3, 37, 111},
		{100, 37, 100},
	}
	for _, tt := range tests {
		if got := seedAngle(tt.id, tt.step); got != tt.want {
			t.Errorf("seedAngle(%d, %d) = %d, want %d", tt.id, tt.step, got, tt.want)
		}
	}
}

package graph

import (
	"bytes"
	"errors"
	"io/fs"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/netvis/pkg/hierarchy"
	"github.com/matzehuels/netvis/pkg/layout"
	"github.com/matzehuels/netvis/pkg/topology"
)

func sample(t *testing.T) (*topology.Graph, []topology.Warning) {
	t.Helper()
	g := topology.New()
	nodes := []topology.Node{
		{ID: 1, Name: "isp_core", Security: 5, Money: 100, Tier: topology.TierISP, Links: []int{2, 3}},
		{ID: 2, Name: "area_north", Tier: topology.TierArea, Links: []int{1, 4}},
		{ID: 3, Name: "bld_a", Tier: topology.TierBuilding, Links: []int{1}},
		{ID: 4, Name: "neigh_oak", Tier: topology.TierNeighborhood, Links: []int{2, 9},
			Services: []topology.Service{{Name: "ssh", Port: 22, Vulnerability: 3}, {Name: "http", Port: 80, Vulnerability: 1}}},
		{ID: 5, Name: "lab", Tier: topology.Tier("mesh")},
	}
	for _, n := range nodes {
		if err := g.AddNode(n); err != nil {
			t.Fatal(err)
		}
	}
	g.HomeID, g.CurrentID = 4, 2
	return g, g.Freeze()
}

func build(t *testing.T) Layout {
	t.Helper()
	g, ws := sample(t)
	h := hierarchy.Resolve(g)
	return Build(g, h, layout.Compute(g, h, layout.Options{}), Options{Warnings: ws})
}

func TestBuild(t *testing.T) {
	l := build(t)

	if l.VizType != VizTypeRadial {
		t.Errorf("VizType = %q, want %q", l.VizType, VizTypeRadial)
	}
	if len(l.Nodes) != 5 {
		t.Fatalf("len(Nodes) = %d, want 5", len(l.Nodes))
	}
	wantEdges := []Edge{{1, 2}, {1, 3}, {2, 4}}
	if !reflect.DeepEqual(l.Edges, wantEdges) {
		t.Errorf("Edges = %v, want %v", l.Edges, wantEdges)
	}
	if !reflect.DeepEqual(l.Roots, []int{1}) {
		t.Errorf("Roots = %v, want [1]", l.Roots)
	}
	if l.HomeID != 4 || l.CurrentID != 2 {
		t.Errorf("home/current = %d/%d, want 4/2", l.HomeID, l.CurrentID)
	}

	// Load warning (dangling 4 -> 9) first, then orphans (3: building has no
	// neighborhood neighbour; 5: raw tier).
	var kinds []topology.WarningKind
	for _, w := range l.Warnings {
		kinds = append(kinds, w.Kind)
	}
	wantKinds := []topology.WarningKind{topology.WarnDanglingReference, topology.WarnOrphanNode, topology.WarnOrphanNode}
	if !reflect.DeepEqual(kinds, wantKinds) {
		t.Errorf("warning kinds = %v, want %v", kinds, wantKinds)
	}
}

func TestBuild_Nodes(t *testing.T) {
	l := build(t)
	tests := []struct {
		id     int
		color  string
		size   int
		parent int // -1 for none
	}{
		{1, "#2b7cff", 36, -1},
		{2, ColorCurrent, 24, 1},
		{3, "#ff8c00", 24, -1},
		{4, ColorHome, 14, 2},
		{5, ColorDefault, 14, -1},
	}
	for _, tt := range tests {
		n, ok := l.Node(tt.id)
		if !ok {
			t.Fatalf("node %d missing", tt.id)
		}
		if n.Color != tt.color {
			t.Errorf("node %d color = %s, want %s", tt.id, n.Color, tt.color)
		}
		if n.Size != tt.size {
			t.Errorf("node %d size = %d, want %d", tt.id, n.Size, tt.size)
		}
		switch {
		case tt.parent < 0 && n.Parent != nil:
			t.Errorf("node %d parent = %d, want none", tt.id, *n.Parent)
		case tt.parent >= 0 && (n.Parent == nil || *n.Parent != tt.parent):
			t.Errorf("node %d parent = %v, want %d", tt.id, n.Parent, tt.parent)
		}
	}
	if n, _ := l.Node(1); n.Label != "isp_core" || n.Tier != "isp" || !n.IsRoot() {
		t.Errorf("node 1 = %+v", n)
	}
}

func TestPalette_HomeBeatsCurrent(t *testing.T) {
	p := DefaultPalette()
	if got := p.Color(topology.TierISP, true, true); got != ColorHome {
		t.Errorf("Color(home, current) = %s, want %s", got, ColorHome)
	}
	if got := p.Color(topology.TierISP, false, true); got != ColorCurrent {
		t.Errorf("Color(current) = %s, want %s", got, ColorCurrent)
	}
	if got := p.Color(topology.TierToR, false, false); got != ColorDefault {
		t.Errorf("Color(tor) = %s, want %s", got, ColorDefault)
	}
}

func TestPalette_Merge(t *testing.T) {
	custom := Palette{Tiers: map[string]string{"TOR": "#123456", "isp": "#000000"}, Home: "#ffffff"}
	p := custom.Merge(DefaultPalette())
	if p.Tiers["tor"] != "#123456" || p.Tiers["isp"] != "#000000" || p.Tiers["area"] != "#61dafb" {
		t.Errorf("Tiers = %v", p.Tiers)
	}
	if p.Home != "#ffffff" || p.Current != ColorCurrent || p.Default != ColorDefault {
		t.Errorf("Merge = %+v", p)
	}
	if DefaultPalette().Tiers["tor"] != "" {
		t.Error("Merge modified the base palette")
	}
}

func TestPalette_TierCase(t *testing.T) {
	custom := Palette{Tiers: map[string]string{"Mesh": "#abcdef", "ROUTER": "#111111"}}
	p := custom.Merge(DefaultPalette())

	tests := []struct {
		tier topology.Tier
		want string
	}{
		{"Mesh", "#abcdef"},
		{"mesh", "#abcdef"},
		{"MESH", "#abcdef"},
		{topology.TierRouter, "#111111"},
		{"Area", "#61dafb"},
		{"unknown", ColorDefault},
	}
	for _, tt := range tests {
		if got := p.Color(tt.tier, false, false); got != tt.want {
			t.Errorf("Color(%q) = %s, want %s", tt.tier, got, tt.want)
		}
	}
}

func TestTitle(t *testing.T) {
	tests := []struct {
		name string
		node topology.Node
		want string
	}{
		{
			name: "no services",
			node: topology.Node{Tier: topology.TierFloor, Security: 2, Money: 40},
			want: "Tier: floor\nSecurity: 2\nMoney: 40",
		},
		{
			name: "services",
			node: topology.Node{Tier: topology.TierHost, Services: []topology.Service{
				{Name: "ssh", Port: 22, Vulnerability: 3},
				{Name: "http", Port: 80, Vulnerability: 1},
			}},
			want: "Tier: host\nSecurity: 0\nMoney: 0\nServices:\nssh:22 (v3)\nhttp:80 (v1)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Title(&tt.node); got != tt.want {
				t.Errorf("Title() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSizeFor(t *testing.T) {
	tests := map[topology.Tier]int{
		topology.TierISP:          36,
		topology.TierArea:         24,
		topology.TierBuilding:     24,
		topology.TierNeighborhood: 14,
		topology.Tier("whatever"): 14,
	}
	for tier, want := range tests {
		if got := SizeFor(tier); got != want {
			t.Errorf("SizeFor(%s) = %d, want %d", tier, got, want)
		}
	}
}

func TestLayoutRoundTrip(t *testing.T) {
	l := build(t)
	data, err := MarshalLayout(l)
	if err != nil {
		t.Fatalf("MarshalLayout: %v", err)
	}
	got, err := UnmarshalLayout(data)
	if err != nil {
		t.Fatalf("UnmarshalLayout: %v", err)
	}
	if !reflect.DeepEqual(got, l) {
		t.Errorf("round trip changed the layout:\n got %+v\nwant %+v", got, l)
	}

	path := filepath.Join(t.TempDir(), "layout.json")
	if err := WriteLayoutFile(l, path); err != nil {
		t.Fatalf("WriteLayoutFile: %v", err)
	}
	fromFile, err := ReadLayoutFile(path)
	if err != nil {
		t.Fatalf("ReadLayoutFile: %v", err)
	}
	if len(fromFile.Nodes) != len(l.Nodes) {
		t.Errorf("ReadLayoutFile nodes = %d, want %d", len(fromFile.Nodes), len(l.Nodes))
	}

	var buf bytes.Buffer
	if err := WriteLayout(l, &buf); err != nil {
		t.Fatalf("WriteLayout: %v", err)
	}
	if !strings.Contains(buf.String(), `"parent": null`) {
		t.Errorf("root parent not serialized as null:\n%s", buf.String())
	}
}

func TestUnmarshalLayout_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{`},
		{"wrong viz type", `{"viz_type": "tower", "nodes": []}`},
		{"duplicate node", `{"nodes": [{"id": 1}, {"id": 1}]}`},
		{"dangling edge", `{"nodes": [{"id": 1}], "edges": [{"from": 1, "to": 2}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := UnmarshalLayout([]byte(tt.data)); err == nil {
				t.Error("UnmarshalLayout succeeded, want error")
			}
		})
	}
}

func TestReadLayoutFile_Missing(t *testing.T) {
	_, err := ReadLayoutFile(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("ReadLayoutFile error = %v, want not-exist", err)
	}
}

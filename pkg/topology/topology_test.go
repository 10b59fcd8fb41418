package topology

import (
	"errors"
	"slices"
	"testing"
)

func TestAddNode(t *testing.T) {
	g := New()
	if err := g.AddNode(Node{ID: 3, Name: "c"}); err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	if err := g.AddNode(Node{ID: 1, Name: "a"}); err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	if err := g.AddNode(Node{ID: 3}); !errors.Is(err, ErrDuplicateNodeID) {
		t.Errorf("duplicate AddNode err = %v, want %v", err, ErrDuplicateNodeID)
	}
	if err := g.AddNode(Node{ID: -1}); !errors.Is(err, ErrInvalidNodeID) {
		t.Errorf("negative AddNode err = %v, want %v", err, ErrInvalidNodeID)
	}

	if got, want := g.IDs(), []int{3, 1}; !slices.Equal(got, want) {
		t.Errorf("IDs() = %v, want %v", got, want)
	}
	if g.NodeCount() != 2 {
		t.Errorf("NodeCount() = %d, want 2", g.NodeCount())
	}
}

func TestAddNodeCopiesLinks(t *testing.T) {
	links := []int{2, 3}
	g := New()
	_ = g.AddNode(Node{ID: 1, Links: links})
	links[0] = 99

	n, _ := g.Node(1)
	if n.Links[0] != 2 {
		t.Errorf("Links[0] = %d, want 2", n.Links[0])
	}
}

func TestReplaceNodeKeepsOrder(t *testing.T) {
	g := New()
	_ = g.AddNode(Node{ID: 1, Name: "first"})
	_ = g.AddNode(Node{ID: 2, Name: "second"})
	if err := g.ReplaceNode(Node{ID: 1, Name: "again"}); err != nil {
		t.Fatalf("ReplaceNode: %v", err)
	}
	if err := g.ReplaceNode(Node{ID: 9}); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("ReplaceNode(9) err = %v, want %v", err, ErrUnknownNode)
	}

	nodes := g.Nodes()
	if nodes[0].ID != 1 || nodes[0].Name != "again" {
		t.Errorf("Nodes()[0] = %d %q, want 1 \"again\"", nodes[0].ID, nodes[0].Name)
	}
}

func TestFreezeDropsDanglingLinks(t *testing.T) {
	g := New()
	_ = g.AddNode(Node{ID: 1, Links: []int{2, 7, 2}})
	_ = g.AddNode(Node{ID: 2, Links: []int{1}})

	warnings := g.Freeze()
	if len(warnings) != 1 {
		t.Fatalf("len(warnings) = %d, want 1", len(warnings))
	}
	w := warnings[0]
	if w.Kind != WarnDanglingReference || w.NodeID != 1 || w.Ref != 7 {
		t.Errorf("warning = %+v, want dangling 1 -> 7", w)
	}

	n, _ := g.Node(1)
	if got, want := n.Links, []int{2, 2}; !slices.Equal(got, want) {
		t.Errorf("Links = %v, want %v (duplicates kept)", got, want)
	}

	if err := g.AddNode(Node{ID: 5}); !errors.Is(err, ErrFrozen) {
		t.Errorf("AddNode after Freeze err = %v, want %v", err, ErrFrozen)
	}
	if again := g.Freeze(); again != nil {
		t.Errorf("second Freeze returned %v, want nil", again)
	}
}

func TestEdgesDeduplicated(t *testing.T) {
	g := New()
	_ = g.AddNode(Node{ID: 4, Links: []int{1, 2}})
	_ = g.AddNode(Node{ID: 1, Links: []int{4}})
	_ = g.AddNode(Node{ID: 2, Links: []int{4, 4, 2}})
	g.Freeze()

	want := []Edge{{A: 1, B: 4}, {A: 2, B: 4}, {A: 2, B: 2}}
	if got := g.Edges(); !slices.Equal(got, want) {
		t.Errorf("Edges() = %v, want %v", got, want)
	}
	if g.EdgeCount() != 3 {
		t.Errorf("EdgeCount() = %d, want 3", g.EdgeCount())
	}
}

func TestNewEdge(t *testing.T) {
	if e := NewEdge(9, 2); e.A != 2 || e.B != 9 {
		t.Errorf("NewEdge(9, 2) = %+v, want {2 9}", e)
	}
}

func TestTierCounts(t *testing.T) {
	g := New()
	_ = g.AddNode(Node{ID: 1, Tier: TierISP})
	_ = g.AddNode(Node{ID: 2, Tier: TierArea})
	_ = g.AddNode(Node{ID: 3, Tier: TierArea})

	counts := g.TierCounts()
	if counts[TierISP] != 1 || counts[TierArea] != 2 {
		t.Errorf("TierCounts() = %v", counts)
	}
}

func TestWarningString(t *testing.T) {
	tests := []struct {
		w    Warning
		want string
	}{
		{
			Warning{Kind: WarnDanglingReference, NodeID: 1, Ref: 7, Message: "link to unknown node dropped"},
			"dangling_reference: node 1 -> 7: link to unknown node dropped",
		},
		{
			Warning{Kind: WarnMalformedRecord, NodeID: NoNode, Line: 4, Message: "missing id"},
			"line 4: malformed_record: missing id",
		},
		{
			Warning{Kind: WarnOrphanNode, NodeID: 3, Message: "unreachable from any root"},
			"orphan_node: node 3: unreachable from any root",
		},
	}
	for _, tt := range tests {
		if got := tt.w.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

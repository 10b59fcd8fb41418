package nodelink

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/netvis/pkg/graph"
)

func feed() graph.Layout {
	parent := 1
	return graph.Layout{
		VizType: graph.VizTypeRadial,
		Nodes: []graph.Node{
			{ID: 1, Label: "isp_core", Tier: "isp", Title: "Tier: isp\nSecurity: 5\nMoney: 100", Color: "#2b7cff", Size: 36},
			{ID: 2, Label: "home", Tier: "area", Title: "Tier: area", Color: "#00aa00", Size: 24, X: 175.7, Y: 132.4, Parent: &parent},
		},
		Edges: []graph.Edge{{From: 1, To: 2}},
		Roots: []int{1},
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(feed(), Options{})

	for _, want := range []string{
		"graph G {",
		"layout=neato;",
		"inputscale=72;",
		`bgcolor="#222222";`,
		`1 [pos="0,0!", width=1, fillcolor="#2b7cff", tooltip="Tier: isp\nSecurity: 5\nMoney: 100", xlabel="isp_core"];`,
		`2 [pos="175.7,-132.4!", width=0.6667, fillcolor="#00aa00"`,
		"1 -- 2;",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "->") {
		t.Error("DOT contains directed edges")
	}
}

func TestToDOT_Options(t *testing.T) {
	dot := ToDOT(feed(), Options{Background: "white", HideLabels: true})
	if !strings.Contains(dot, `bgcolor="white";`) {
		t.Error("custom background ignored")
	}
	if strings.Contains(dot, "xlabel") {
		t.Error("labels drawn with HideLabels")
	}
}

func TestFmtFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{120, "120"},
		{-120, "-120"},
		{1.5, "1.5"},
		{175.70000001, "175.7"},
		{-0.00001, "0"},
		{2.0 / 3, "0.6667"},
	}
	for _, tt := range tests {
		if got := fmtFloat(tt.in); got != tt.want {
			t.Errorf("fmtFloat(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRenderSVG(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping graphviz render in short mode")
	}
	svg, err := RenderSVG(context.Background(), ToDOT(feed(), Options{}))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !bytes.Contains(svg, []byte("<svg")) {
		t.Errorf("output is not SVG: %.200s", svg)
	}
	if !bytes.Contains(svg, []byte("isp_core")) {
		t.Error("SVG lacks node label")
	}
}

func TestRenderPNG(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping graphviz render in short mode")
	}
	png, err := RenderPNG(context.Background(), ToDOT(feed(), Options{}))
	if err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Errorf("output is not PNG: % x", png[:min(8, len(png))])
	}
}

func TestRenderSVG_BadDOT(t *testing.T) {
	if _, err := RenderSVG(context.Background(), "graph {"); err == nil {
		t.Error("RenderSVG accepted invalid DOT")
	}
}

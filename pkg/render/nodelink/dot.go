package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/netvis/pkg/graph"
)

// Default colours, matching a dark canvas.
const (
	DefaultBackground = "#222222"
	DefaultFontColor  = "white"
	DefaultEdgeColor  = "#666666"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Background is the canvas colour. Empty uses [DefaultBackground].
	Background string
	// HideLabels draws the nodes without their names.
	HideLabels bool
}

func (o Options) withDefaults() Options {
	if o.Background == "" {
		o.Background = DefaultBackground
	}
	return o
}

// ToDOT converts a renderer feed to Graphviz DOT for the neato engine.
// Every node is pinned at its feed position (pos="x,y!" in points, y flipped
// because DOT's y axis points up), so Graphviz only draws and never moves
// anything.
func ToDOT(l graph.Layout, opts Options) string {
	opts = opts.withDefaults()

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  overlap=true;\n")
	buf.WriteString("  splines=false;\n")
	buf.WriteString("  outputorder=edgesfirst;\n")
	fmt.Fprintf(&buf, "  bgcolor=%q;\n", opts.Background)
	fmt.Fprintf(&buf, "  node [shape=circle, style=filled, fixedsize=true, label=\"\", fontcolor=%q, fontsize=10, penwidth=0];\n", DefaultFontColor)
	fmt.Fprintf(&buf, "  edge [color=%q];\n", DefaultEdgeColor)
	buf.WriteString("\n")

	for _, n := range l.Nodes {
		fmt.Fprintf(&buf, "  %d [%s];\n", n.ID, strings.Join(fmtAttrs(n, opts), ", "))
	}

	buf.WriteString("\n")
	for _, e := range l.Edges {
		fmt.Fprintf(&buf, "  %d -- %d;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtAttrs(n graph.Node, opts Options) []string {
	diameter := float64(2*n.Size) / 72
	attrs := []string{
		fmt.Sprintf("pos=\"%s,%s!\"", fmtFloat(n.X), fmtFloat(-n.Y)),
		fmt.Sprintf("width=%s", fmtFloat(diameter)),
		fmt.Sprintf("fillcolor=%q", n.Color),
		fmt.Sprintf("tooltip=%q", n.Title),
	}
	if !opts.HideLabels && n.Label != "" {
		attrs = append(attrs, fmt.Sprintf("xlabel=%q", n.Label))
	}
	return attrs
}

// fmtFloat prints f with at most four decimals and no negative zero.
func fmtFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', 4, 64)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	if s == "-0" {
		s = "0"
	}
	return s
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.SVG)
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.PNG)
}

func render(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

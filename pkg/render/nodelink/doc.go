// Package nodelink draws a laid-out topology as a node-link diagram.
//
// # Overview
//
// Positions come from pkg/layout and travel in the renderer feed
// ([graph.Layout]). This package only turns that feed into Graphviz DOT
// with every node pinned in place and hands it to Graphviz for drawing.
// No layout engine runs here: neato honours pinned positions as-is.
//
// # Usage
//
//	dot := nodelink.ToDOT(feed, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot)
//
// # Appearance
//
// Nodes are filled circles in the feed colour with a diameter of twice the
// feed size in points. Names are drawn as external labels and the multi-line
// feed title becomes the SVG tooltip. The canvas is dark by default
// ([DefaultBackground]).
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process rendering;
// no Graphviz installation is needed.
package nodelink

// Package render groups the drawing backends for laid-out topologies.
//
// # Overview
//
// Rendering is the last pipeline stage. Backends receive the renderer feed
// (pkg/graph.Layout) with every position already fixed and never move a
// node, so the same feed always draws the same picture.
//
// Backends:
//   - [nodelink]: Graphviz DOT with pinned positions, rendered to SVG or PNG
//
// The feed itself, serialized with pkg/graph.MarshalLayout, is the JSON
// output format and can be consumed by any external drawing tool.
package render

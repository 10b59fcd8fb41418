// Package layout computes a deterministic radial placement for a topology
// hierarchy.
//
// There is no physics and no randomness. Each parent spreads its children
// evenly on a circle, rotated by a per-parent seed angle derived from its id
// so that sibling fans do not all start at 0°. Radii shrink by a constant
// factor per level down to a floor:
//
//	g := res.Graph                        // from save.Load
//	h := hierarchy.Resolve(g)
//	pos := layout.Compute(g, h, layout.Options{})
//	p := pos.Position(g.HomeID)
//
// Identical input gives bit-identical output, which makes results safe to
// cache and diff.
package layout

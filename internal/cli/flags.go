package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/netvis/pkg/pipeline"
)

// layoutFlags are the placement and styling flags shared by render and
// layout. Only flags set on the command line override the config.
type layoutFlags struct {
	rootRing    float64
	childRadius float64
	shrink      float64
	minRadius   float64
	seedStep    int
	background  string
	hideLabels  bool
	noCache     bool
	refresh     bool
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.rootRing, "root-ring", 0, "radius of the ring holding several roots")
	cmd.Flags().Float64Var(&f.childRadius, "child-radius", 0, "distance of a root's children")
	cmd.Flags().Float64Var(&f.shrink, "shrink", 0, "radius factor applied per level (0-1)")
	cmd.Flags().Float64Var(&f.minRadius, "min-radius", 0, "smallest radius between a parent and its children")
	cmd.Flags().IntVar(&f.seedStep, "seed-step", 0, "degrees added to the seed angle per node id")
	cmd.Flags().StringVar(&f.background, "background", "", "canvas colour for dot, svg and png")
	cmd.Flags().BoolVar(&f.hideLabels, "hide-labels", false, "draw nodes without names")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute even when cached")
}

// options returns the config's pipeline options with the changed flags
// applied.
func (f *layoutFlags) options(cmd *cobra.Command, base pipeline.Options) pipeline.Options {
	changed := cmd.Flags().Changed
	if changed("root-ring") {
		base.Layout.RootRing = f.rootRing
	}
	if changed("child-radius") {
		base.Layout.ChildRadius = f.childRadius
	}
	if changed("shrink") {
		base.Layout.Shrink = f.shrink
	}
	if changed("min-radius") {
		base.Layout.MinRadius = f.minRadius
	}
	if changed("seed-step") {
		base.Layout.SeedStep = f.seedStep
	}
	if changed("background") {
		base.Background = f.background
	}
	if changed("hide-labels") {
		base.HideLabels = f.hideLabels
	}
	base.Refresh = f.refresh
	return base
}

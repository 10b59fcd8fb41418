package cli

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/netvis/pkg/hierarchy"
	"github.com/matzehuels/netvis/pkg/pipeline"
	"github.com/matzehuels/netvis/pkg/topology"
)

// inspectCommand creates the inspect command for summarising a save.
func (c *CLI) inspectCommand() *cobra.Command {
	var noTree bool

	cmd := &cobra.Command{
		Use:   "inspect [save]",
		Short: "Summarise a save: counts, tiers, hierarchy and warnings",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), firstArg(args), !noTree)
		},
	}

	cmd.Flags().BoolVar(&noTree, "no-tree", false, "omit the hierarchy tree")

	return cmd
}

func (c *CLI) runInspect(ctx context.Context, stdin io.Reader, w io.Writer, arg string, tree bool) error {
	data, input, err := c.readSave(arg, stdin)
	if err != nil {
		printNoSave(err)
		return err
	}

	runner := pipeline.NewRunner(nil, nil, c.Logger)
	res, err := runner.Load(ctx, data)
	if err != nil {
		return err
	}
	feed, h, _ := pipeline.ComputeLayout(res, c.Config.PipelineOptions())
	g := res.Graph

	fmt.Fprintln(w, StyleTitle.Render(input))
	writeKeyValue(w, "Format", res.Format)
	writeKeyValue(w, "Nodes", strconv.Itoa(g.NodeCount()))
	writeKeyValue(w, "Edges", strconv.Itoa(g.EdgeCount()))
	writeKeyValue(w, "Tiers", formatTierCounts(g.TierCounts()))
	writeKeyValue(w, "Home", describeNode(g, g.HomeID))
	writeKeyValue(w, "Current", describeNode(g, g.CurrentID))
	writeKeyValue(w, "Roots", formatIDs(feed.Roots))

	if tree {
		fmt.Fprintln(w)
		writeTree(w, g, h)
	}

	if len(feed.Warnings) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, StyleWarning.Render(fmt.Sprintf("%d warnings", len(feed.Warnings))))
		for _, warn := range feed.Warnings {
			fmt.Fprintln(w, "  "+StyleDim.Render(warn.String()))
		}
	}
	return nil
}

// writeTree prints the hierarchy depth-first, then any node no root reaches.
func writeTree(w io.Writer, g *topology.Graph, h *hierarchy.Hierarchy) {
	h.Walk(func(id, depth int) bool {
		fmt.Fprintln(w, strings.Repeat("  ", depth)+treeLabel(g, id))
		return true
	})
	if orphans := h.Unreached(); len(orphans) > 0 {
		fmt.Fprintln(w, StyleDim.Render("unreached:"))
		for _, id := range orphans {
			fmt.Fprintln(w, "  "+treeLabel(g, id))
		}
	}
}

func treeLabel(g *topology.Graph, id int) string {
	n, ok := g.Node(id)
	if !ok {
		return fmt.Sprintf("#%d", id)
	}
	label := StyleValue.Render(n.Name) + " " + StyleDim.Render(fmt.Sprintf("#%d %s", n.ID, n.Tier))
	if id == g.HomeID {
		label += " " + StyleSuccess.Render("home")
	}
	if id == g.CurrentID {
		label += " " + StyleHighlight.Render("current")
	}
	return label
}

func describeNode(g *topology.Graph, id int) string {
	if n, ok := g.Node(id); ok {
		return fmt.Sprintf("%s (#%d)", n.Name, id)
	}
	return fmt.Sprintf("#%d (not in save)", id)
}

// formatTierCounts lists counts in canonical tier order, then any raw tiers
// alphabetically.
func formatTierCounts(counts map[topology.Tier]int) string {
	var parts []string
	for _, t := range topology.Tiers {
		if n := counts[t]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s %d", t, n))
		}
	}
	var raw []string
	for t := range counts {
		if !t.Known() {
			raw = append(raw, string(t))
		}
	}
	slices.Sort(raw)
	for _, t := range raw {
		parts = append(parts, fmt.Sprintf("%s %d", t, counts[topology.Tier(t)]))
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ", ")
}

func formatIDs(ids []int) string {
	if len(ids) == 0 {
		return "-"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = "#" + strconv.Itoa(id)
	}
	return strings.Join(parts, " ")
}

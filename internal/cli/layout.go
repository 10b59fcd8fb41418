package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/netvis/pkg/graph"
	"github.com/matzehuels/netvis/pkg/pipeline"
)

// layoutCommand creates the layout command for printing the renderer feed.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		flags  layoutFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "layout [save]",
		Short: "Print the renderer feed of a save as JSON",
		Long: `Layout loads a save, resolves its hierarchy and places every node, then
prints the renderer feed: nodes with colours, sizes and positions, the edge
list, roots, warnings and bounds.

The feed goes to stdout unless --output is given, so it can be piped into
other tools. Results are cached locally for faster subsequent runs.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := flags.options(cmd, c.Config.PipelineOptions())
			return c.runLayout(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), firstArg(args), output, flags.noCache, opts)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the feed to this file instead of stdout")
	flags.register(cmd)

	return cmd
}

func (c *CLI) runLayout(ctx context.Context, stdin io.Reader, stdout io.Writer, arg, output string, noCache bool, opts pipeline.Options) error {
	data, input, err := c.readSave(arg, stdin)
	if err != nil {
		printNoSave(err)
		return err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	feed, cacheHit, err := runner.LayoutWithCacheInfo(ctx, data, opts)
	if err != nil {
		return err
	}
	c.Logger.Debug("computed layout", "save", input, "nodes", len(feed.Nodes), "cached", cacheHit)

	if output == "" {
		return graph.WriteLayout(feed, stdout)
	}

	if err := graph.WriteLayoutFile(feed, output); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	printSuccess("Layout complete")
	printFile(output)
	printStats(len(feed.Nodes), len(feed.Edges), cacheHit)
	printNewline()
	printNextStep("Render", appName+" render "+input+" -f svg")
	return nil
}

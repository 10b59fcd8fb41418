package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/netvis/pkg/pipeline"
)

// stdinBase names outputs rendered from standard input.
const stdinBase = "save"

// renderCommand creates the render command for writing output files.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		flags   layoutFlags
		output  string
		formats string
	)

	cmd := &cobra.Command{
		Use:   "render [save]",
		Short: "Render a save to feed JSON, DOT, SVG or PNG files",
		Long: `Render loads a save, lays out its network and writes one file per format.

Without an argument the configured candidate paths are probed (save.json,
export_network.json, save.save, ...). Use "-" to read the save from stdin.
Outputs are named <save>.network.<format> in the working directory unless
--output is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := flags.options(cmd, c.Config.PipelineOptions())
			if cmd.Flags().Changed("format") {
				fs, err := parseFormats(formats)
				if err != nil {
					return err
				}
				opts.Formats = fs
			}
			return c.runRender(cmd.Context(), cmd.InOrStdin(), firstArg(args), output, flags.noCache, opts)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formats, "format", "f", "", "output format(s): json, dot, svg, png (comma-separated; default from config)")
	flags.register(cmd)

	return cmd
}

func (c *CLI) runRender(ctx context.Context, stdin io.Reader, arg, output string, noCache bool, opts pipeline.Options) error {
	data, input, err := c.readSave(arg, stdin)
	if err != nil {
		printNoSave(err)
		return err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	result, err := runner.Execute(ctx, data, opts)
	if err != nil {
		return err
	}
	prog.done("Rendered " + input)

	paths := outputPaths(output, input, opts.Formats)
	for _, format := range opts.Formats {
		if err := writeFile(paths[format], result.Artifacts[format]); err != nil {
			return err
		}
	}

	printSuccess("Rendered %s", StyleHighlight.Render(input))
	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.CacheInfo.LayoutHit)
	for _, format := range opts.Formats {
		printFile(paths[format])
	}
	if result.Stats.Warnings > 0 {
		printWarning("%d warnings (run %s inspect for details)", result.Stats.Warnings, appName)
	}
	return nil
}

// outputPaths maps each format to its output file. A single format writes
// to output verbatim; several formats treat output as a base path.
func outputPaths(output, input string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if output != "" && len(formats) == 1 {
		paths[formats[0]] = output
		return paths
	}

	base := output
	if base == "" {
		base = defaultBase(input)
	} else if ext := filepath.Ext(base); pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		base = strings.TrimSuffix(base, ext)
	}
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths
}

// defaultBase derives "<name>.network" from the save path.
func defaultBase(input string) string {
	name := stdinBase
	if input != stdinArg {
		name = filepath.Base(input)
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}
	return name + ".network"
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

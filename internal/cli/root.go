package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/netvis/pkg/buildinfo"
	"github.com/matzehuels/netvis/pkg/config"
	"github.com/matzehuels/netvis/pkg/metrics"
	"github.com/matzehuels/netvis/pkg/observability"
)

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "netvis draws game network topologies as radial maps",
		Long: `netvis reads a game save, resolves the parent/child hierarchy of its servers
and lays them out radially around the roots. The result can be written as a
renderer feed (JSON), Graphviz DOT, SVG or PNG, or served over HTTP.`,
		Version:            buildinfo.Version,
		SilenceUsage:       true,
		PersistentPreRunE:  c.setup,
		PersistentPostRunE: c.flushMetrics,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (.toml, .yaml); default: ./netvis.toml or ./netvis.yaml if present")
	root.PersistentFlags().StringVar(&c.metricsFile, "metrics-file", "", "write Prometheus metrics to this file after the command")

	// Register all subcommands
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup loads the configuration and wires the metrics registry into the
// pipeline hooks. A config log level only applies while the logger is still
// at info, so --verbose keeps precedence.
func (c *CLI) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg
	if c.metricsFile != "" {
		c.Config.Metrics.File = c.metricsFile
	}

	if level, err := cfg.LogLevel(); err == nil && c.Logger.GetLevel() == LogInfo {
		c.Logger.SetLevel(level)
	}
	if cfg.Path != "" {
		c.Logger.Debug("loaded config", "path", cfg.Path)
	}

	c.Metrics = metrics.NewRegistry()
	c.Metrics.SetBuildInfo(buildinfo.Version, buildinfo.Commit)
	observability.SetPipelineHooks(c.Metrics)
	observability.SetCacheHooks(c.Metrics)
	return nil
}

// flushMetrics writes the registry to the configured textfile.
func (c *CLI) flushMetrics(cmd *cobra.Command, args []string) error {
	if c.Metrics == nil || c.Config.Metrics.File == "" {
		return nil
	}
	if err := c.Metrics.WriteToTextfile(c.Config.Metrics.File); err != nil {
		return err
	}
	c.Logger.Debug("wrote metrics", "path", c.Config.Metrics.File)
	return nil
}

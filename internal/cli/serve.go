package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/netvis/internal/server"
	"github.com/matzehuels/netvis/pkg/buildinfo"
)

// serveCommand creates the serve command running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
		maxBody int64
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout and render API over HTTP",
		Long: `Serve runs the HTTP API until interrupted:

  POST /v1/layout           save in the body, renderer feed back
  POST /v1/render/{format}  save in the body, json, dot, svg or png back
  GET  /healthz             liveness
  GET  /metrics             Prometheus metrics

Set cache.redis_url (or NETVIS_REDIS_URL) to share the cache between
replicas.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = c.Config.Server.Addr
			}

			runner, err := c.newRunner(cmd.Context(), noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			srv := server.New(server.Config{
				Runner:       runner,
				Metrics:      c.Metrics,
				Logger:       c.Logger,
				Options:      c.Config.PipelineOptions(),
				MaxBodyBytes: maxBody,
				Version:      buildinfo.Version,
			})

			printInfo("Listening on %s", StyleHighlight.Render(addr))
			return srv.ListenAndServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, else :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().Int64Var(&maxBody, "max-body", server.DefaultMaxBodyBytes, "largest accepted save in bytes")

	return cmd
}

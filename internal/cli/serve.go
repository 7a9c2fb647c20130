package cli

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/blueprint/pkg/observability"
	"github.com/matzehuels/blueprint/pkg/server"
)

// serveCommand runs the HTTP gateway.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		metrics bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and websocket gateway",
		Long: `Run the HTTP and websocket gateway.

The gateway serves commit graphs, notebook selections and execution views
as JSON (or rendered images) and pushes execution snapshots over a
websocket until the execution finishes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if addr == "" {
				addr = c.Config.Server.Addr
			}

			backend, err := c.openCache(ctx, false)
			if err != nil {
				return err
			}

			opts := server.Options{
				Repos:        c.repositoryClient(backend),
				Executions:   c.executionClient(),
				Cache:        backend,
				Layout:       c.Config.LayoutOptions(),
				PollInterval: c.Config.PollInterval.Duration,
				Logger:       c.Logger,
			}
			if metrics {
				reg := prometheus.NewRegistry()
				reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
				m, err := observability.NewMetrics(reg)
				if err != nil {
					return fmt.Errorf("register metrics: %w", err)
				}
				defer observability.Install(m)()
				opts.Metrics, opts.Gatherer = m, reg
			}

			srv := server.New(opts)
			defer srv.Close()

			c.Logger.Info("starting gateway",
				"addr", addr,
				"repository_host", c.Config.RepositoryHost,
				"execution_host", c.Config.ExecutionHost,
				"cache", c.Config.Cache.Backend,
				"metrics", metrics)
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&metrics, "metrics", true, "expose Prometheus metrics on /metrics")

	return cmd
}

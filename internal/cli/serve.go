package cli

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/matzehuels/facetlayout/internal/server"
	"github.com/matzehuels/facetlayout/pkg/observability/prom"
)

// serveCommand creates the serve command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		noMetrics bool
		noCache   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the layout HTTP API",
		Long: `Run the layout HTTP API.

Routes:
  POST /v1/layout            route a document, respond with its layout as JSON
  POST /v1/render/{format}   route a document, respond with svg, png or pdf
  GET  /healthz              liveness
  GET  /metrics              prometheus metrics

The cache backend comes from the config file. Use a redis backend to share
layouts between several instances.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}

			runner, err := c.newRunner(cmd.Context(), cfg, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			defaults := c.baseOptions(cfg)
			defaults.Formats = nil
			s := server.New(runner, cfg.Server, defaults, c.Logger)

			if !noMetrics {
				reg := prometheus.NewRegistry()
				reg.MustRegister(
					collectors.NewGoCollector(),
					collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
				)
				prom.New(reg).Register()
				s.Metrics = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
			}

			printSuccess("Serving layout API")
			printKeyValue("addr", cfg.Server.Addr)
			printKeyValue("cache", cfg.Cache.Backend)
			printKeyValue("metrics", fmt.Sprint(!noMetrics))
			return s.ListenAndServe(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address (default from config)")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "disable the /metrics endpoint")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

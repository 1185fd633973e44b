package cli

import (
	"context"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/matzehuels/licensetower/internal/server"
	"github.com/matzehuels/licensetower/pkg/observability/prom"
)

// serveOptions holds the flags of the serve command.
type serveOptions struct {
	addr      string
	workspace string
	watch     bool
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOptions
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis API over HTTP",
		Long: `Serve license analysis, compatibility checks and cache management over
HTTP. Prometheus metrics are exposed at /metrics.

With --workspace, GET /v1/scan?path=... analyzes manifests below that
directory.`,
		Example: "  licensetower serve --addr :9090 --workspace /srv/repos",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default: server.addr from config, :8080)")
	cmd.Flags().StringVar(&opts.workspace, "workspace", "", "directory served by /v1/scan")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "reload the config file when it changes")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOptions) (err error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom.New(reg).Register()

	e, err := c.openEnv(ctx, envOptions{})
	if err != nil {
		return err
	}
	defer closeEnv(e, &err)

	if opts.watch {
		e.cfg.Watch()
	}
	addr := opts.addr
	if addr == "" {
		addr = e.cfg.ServerAddr()
	}
	if opts.workspace != "" {
		if _, err := os.Stat(opts.workspace); err != nil {
			return err
		}
	}

	srv := server.New(server.Config{
		Addr:      addr,
		Analyzer:  e.analyzer,
		Cache:     e.cache,
		Metrics:   promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		Workspace: opts.workspace,
		Logger:    c.Logger,
	})
	printInfo("Serving on %s", StyleLink.Render(addr))
	return srv.ListenAndServe(ctx)
}

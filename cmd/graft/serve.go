package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/graft/pkg/server"
	"github.com/vango-dev/graft/pkg/telemetry"
)

func serveCmd(g *globals) *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the hydration server",
		Long: `Starts the HTTP server exposing the hydrate endpoint, the page store and the
live preview channel.

Examples:
  graft serve
  graft serve --port 8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := g.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if host != "" {
				p.cfg.Server.Host = host
			}
			if port != 0 {
				p.cfg.Server.Port = port
			}
			if err := p.cfg.Validate(); err != nil {
				return err
			}

			m, gatherer := p.metrics()
			st, err := p.store(m)
			if err != nil {
				return err
			}

			opts := []server.Option{
				server.WithLogger(p.logger),
				server.WithTracer(telemetry.Tracer()),
			}
			if m != nil {
				opts = append(opts, server.WithMetrics(m, gatherer))
			}
			srv := server.New(p.cfg, p.reg, st, opts...)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			info(cmd.ErrOrStderr(), "Listening on http://%s", p.cfg.Address())
			info(cmd.ErrOrStderr(), "%d components, store %s", p.reg.Len(), p.cfg.Store.Kind)
			if err := srv.Run(ctx); err != nil {
				return err
			}
			success(cmd.ErrOrStderr(), "Server stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Override the configured host")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Override the configured port")
	return cmd
}

package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/fractalview/internal/server"
)

// shutdownTimeout bounds the graceful shutdown after an interrupt.
const shutdownTimeout = 10 * time.Second

type serveOpts struct {
	addr    string
	noCache bool
}

// serveCommand creates the HTTP server command.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve renders, orbits, dimension estimates and views over HTTP",
		Long: `Serve exposes the renderer over HTTP:

  POST /api/render      JSON options in, PNG out
  POST /api/dimension   box-counting estimate
  GET  /api/track       orbit of ?point=
  /api/views            saved views (GET, PUT, DELETE)
  GET  /ws/refine       websocket streaming successive-refinement passes`,
		Example: `  fractalview serve --addr :9000
  curl -d '{"zoom":400,"centre":"-0.75+0.1i"}' localhost:8080/api/render > view.png`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				c.Config.Server.Addr = opts.addr
			}
			return c.runServe(cmd.Context(), opts.noCache)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the render cache")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	views, err := c.newViewStore(ctx)
	if err != nil {
		return err
	}
	defer views.Close()

	srv := &http.Server{
		Addr:              c.Config.Server.Addr,
		Handler:           server.New(runner, views, c.Config, c.Logger).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return withLogger(ctx, c.Logger) },
	}

	errc := make(chan error, 1)
	go func() {
		c.Logger.Info("listening", "addr", srv.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	c.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/desertthunder/flickx/internal/server"
	"github.com/urfave/cli/v3"
)

// Serve runs the HTTP API until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	catalog, err := r.catalogService()
	if err != nil {
		return err
	}
	if err := r.state(ctx); err != nil {
		return err
	}

	addr := cmd.String("addr")
	if addr == "" {
		addr = r.config.Server.Addr()
	}

	srv := server.New(server.Deps{
		Session:   r.session,
		Watchlist: r.watchlist,
		Catalog:   catalog,
		Logger:    r.logger.WithPrefix("http"),
		Areas:     []server.Lister{r.short, r.long},
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	ready := make(chan string, 1)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe(ctx, addr, ready)
		close(ready)
	}()

	bound, ok := <-ready
	if !ok {
		return <-errCh
	}

	base := fmt.Sprintf("http://%s", bound)
	r.writePlain("✓ Listening on %s (Ctrl+C to stop)\n", base)
	if cmd.Bool("open") {
		if err := r.openBrowser(base + "/login"); err != nil {
			r.logger.Warn("failed to open browser", "error", err)
		}
	}

	return <-errCh
}

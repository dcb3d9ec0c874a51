package main

import (
	"context"

	"github.com/desertthunder/flickx/internal/server"
	"github.com/urfave/cli/v3"
)

// AdminDashboard prints the administrator overview. Non-administrators are refused.
func (r *Runner) AdminDashboard(ctx context.Context, cmd *cli.Command) error {
	if err := r.state(ctx); err != nil {
		return err
	}
	if _, err := r.session.RequireAdmin(); err != nil {
		return err
	}

	deps := server.Deps{
		Session:   r.session,
		Watchlist: r.watchlist,
		Logger:    r.logger,
		Areas:     []server.Lister{r.short, r.long},
	}
	if catalog, err := r.catalogService(); err == nil {
		deps.Catalog = catalog
	} else {
		r.logger.Warn("catalog unavailable for dashboard", "error", err)
	}

	d, err := server.BuildDashboard(ctx, deps)
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(d, cmd.Bool("pretty"))
	}

	r.writePlainHeader("Admin Dashboard")
	r.writePlain("Signed in as: %s <%s> (%s)\n", d.User.Name, d.User.Email, d.User.Role)
	r.writePlain("Watchlist:    %d movies\n", d.WatchlistSize)
	if d.PopularError != "" {
		r.writePlain("Popular:      unavailable (%s)\n", d.PopularError)
	} else {
		r.writePlain("Popular:      %d movies on page 1\n", d.PopularCount)
	}

	r.writePlainln("Identities:")
	for _, id := range d.Directory {
		r.writePlain("  %-3s %-24s %-16s %s\n", id.ID, id.Email, id.Name, id.Role)
	}

	r.writePlainln("Stored keys:")
	if len(d.Entries) == 0 {
		r.writePlain("  (none)\n")
	}
	for _, e := range d.Entries {
		r.writePlain("  [%s] %s = %s\n", e.Scope, e.Key, e.Value)
	}
	return nil
}

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/flickx/internal/formatter"
	"github.com/desertthunder/flickx/internal/models"
	"github.com/desertthunder/flickx/internal/server"
	"github.com/urfave/cli/v3"
)

// protected loads state and requires a signed in session, mirroring the HTTP auth guard.
func (r *Runner) protected(ctx context.Context) (models.Identity, error) {
	if err := r.state(ctx); err != nil {
		return models.Identity{}, err
	}
	return r.session.Require()
}

// WatchlistList prints the saved movies in insertion order.
func (r *Runner) WatchlistList(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.protected(ctx); err != nil {
		return err
	}

	snap := r.watchlist.Snapshot()
	if cmd.Bool("json") {
		items := make([]server.MovieView, len(snap.Items))
		for i, m := range snap.Items {
			items[i] = server.MovieView{Movie: m, PosterURL: r.posterURL(m.PosterPath), InWatchlist: true}
		}
		return r.writeJSON(server.WatchlistView{Count: len(items), Version: snap.Version, Items: items}, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Watchlist (%d)", len(snap.Items)))
	if len(snap.Items) == 0 {
		return r.writePlain("Your watchlist is empty\n")
	}
	for i, m := range snap.Items {
		r.writePlain("%3d. %-8d %s", i+1, m.ID, m.Title)
		if year := m.Year(); year != "" {
			r.writePlain(" (%s)", year)
		}
		r.writePlain("\n")
	}
	return nil
}

// WatchlistAdd fetches the detail record for an id and saves it.
func (r *Runner) WatchlistAdd(ctx context.Context, cmd *cli.Command) error {
	id, err := parseMovieID(cmd.StringArg("id"))
	if err != nil {
		return err
	}
	if _, err := r.protected(ctx); err != nil {
		return err
	}
	if r.watchlist.Contains(id) {
		return r.writePlain("Movie %d is already on your watchlist\n", id)
	}

	catalog, err := r.catalogService()
	if err != nil {
		return err
	}
	detail, err := catalog.GetDetail(ctx, id)
	if err != nil {
		return err
	}

	if err := r.watchlist.Add(ctx, detail.Movie); err != nil {
		return fmt.Errorf("failed to save watchlist: %w", err)
	}
	return r.writePlain("✓ Added %q to your watchlist\n", detail.Title)
}

// WatchlistRemove drops a movie by id. Removing an absent id succeeds.
func (r *Runner) WatchlistRemove(ctx context.Context, cmd *cli.Command) error {
	id, err := parseMovieID(cmd.StringArg("id"))
	if err != nil {
		return err
	}
	if _, err := r.protected(ctx); err != nil {
		return err
	}

	present := r.watchlist.Contains(id)
	if err := r.watchlist.Remove(ctx, id); err != nil {
		return fmt.Errorf("failed to save watchlist: %w", err)
	}
	if !present {
		return r.writePlain("Movie %d was not on your watchlist\n", id)
	}
	return r.writePlain("✓ Removed movie %d from your watchlist\n", id)
}

// WatchlistExport writes the watchlist as CSV, Markdown or plain text.
func (r *Runner) WatchlistExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	owner, err := r.protected(ctx)
	if err != nil {
		return err
	}

	export := &formatter.Export{
		Owner:      owner,
		Items:      r.watchlist.Items(),
		ExportedAt: time.Now(),
		ImageURL:   r.posterURL,
	}
	path, err := formatter.WriteExport(export, format, cmd.String("output"))
	if err != nil {
		return err
	}

	r.logger.Info("watchlist exported", "path", path, "format", format, "items", len(export.Items))
	return r.writePlain("✓ Exported %d movies to %s\n", len(export.Items), path)
}

// posterURL resolves a poster path through the catalog, keeping the raw path when no catalog is configured.
func (r *Runner) posterURL(path string) string {
	catalog, err := r.catalogService()
	if err != nil {
		return path
	}
	return catalog.ImageURL(path)
}

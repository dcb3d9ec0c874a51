package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/flickx/internal/models"
	"github.com/desertthunder/flickx/internal/server"
	"github.com/desertthunder/flickx/internal/services"
	"github.com/desertthunder/flickx/internal/shared"
	"github.com/urfave/cli/v3"
)

// MoviesList prints one page of a category listing.
func (r *Runner) MoviesList(ctx context.Context, cmd *cli.Command) error {
	category, err := models.ParseCategory(cmd.String("category"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
	}
	page := int(cmd.Int("page"))

	catalog, err := r.catalogService()
	if err != nil {
		return err
	}

	r.logger.Debug("listing movies", "category", category, "page", page)
	result, err := catalog.ListByCategory(ctx, category, page)
	if err != nil {
		return err
	}

	view := server.PageView{
		Category:   category,
		Page:       result.Page,
		TotalPages: result.TotalPages,
		Results:    r.movieViews(ctx, catalog, result.Results),
	}
	if cmd.Bool("json") {
		return r.writeJSON(view, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("%s • page %d of %d", category.Label(), view.Page, view.TotalPages))
	r.writeMovies(view.Results)
	return nil
}

// MoviesSearch prints the first page of title matches.
func (r *Runner) MoviesSearch(ctx context.Context, cmd *cli.Command) error {
	query := strings.TrimSpace(cmd.StringArg("query"))
	if query == "" {
		return fmt.Errorf("%w: search query", shared.ErrMissingArgument)
	}

	catalog, err := r.catalogService()
	if err != nil {
		return err
	}

	result, err := catalog.Search(ctx, query)
	if err != nil {
		return err
	}

	view := server.PageView{
		Query:      query,
		Page:       result.Page,
		TotalPages: result.TotalPages,
		Results:    r.movieViews(ctx, catalog, result.Results),
	}
	if cmd.Bool("json") {
		return r.writeJSON(view, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Results for %q (%d)", query, len(view.Results)))
	if len(view.Results) == 0 {
		return r.writePlain("No movies found\n")
	}
	r.writeMovies(view.Results)
	return nil
}

// MoviesShow prints a detail record with up to [models.MaxCast] cast members.
func (r *Runner) MoviesShow(ctx context.Context, cmd *cli.Command) error {
	id, err := parseMovieID(cmd.StringArg("id"))
	if err != nil {
		return err
	}

	catalog, err := r.catalogService()
	if err != nil {
		return err
	}

	detail, err := catalog.GetDetail(ctx, id)
	if err != nil {
		return err
	}

	cast := make([]server.CastView, len(detail.Cast))
	for i, c := range detail.Cast {
		cast[i] = server.CastView{CastMember: c, ProfileURL: catalog.ImageURL(c.ProfilePath)}
	}
	view := server.DetailView{MovieView: r.movieViews(ctx, catalog, []models.Movie{detail.Movie})[0], Cast: cast}
	if cmd.Bool("json") {
		return r.writeJSON(view, cmd.Bool("pretty"))
	}

	title := view.Title
	if year := view.Year(); year != "" {
		title = fmt.Sprintf("%s (%s)", title, year)
	}
	r.writePlainHeader(title)
	if view.Tagline != "" {
		r.writePlain("%s\n\n", view.Tagline)
	}
	r.writePlain("Rating:    ★ %.1f (%d votes)\n", view.VoteAverage, view.VoteCount)
	if view.Runtime > 0 {
		r.writePlain("Runtime:   %d min\n", view.Runtime)
	}
	if genres := view.GenreNames(); genres != "" {
		r.writePlain("Genres:    %s\n", genres)
	}
	r.writePlain("Poster:    %s\n", view.PosterURL)
	if view.InWatchlist {
		r.writePlain("Watchlist: ✓ saved\n")
	}
	if view.Overview != "" {
		r.writePlainln("%s", view.Overview)
	}

	r.writePlainln("Cast:")
	if len(view.Cast) == 0 {
		r.writePlain("  (no cast information)\n")
	}
	for _, c := range view.Cast {
		if c.Character != "" {
			r.writePlain("  • %s as %s\n", c.Name, c.Character)
		} else {
			r.writePlain("  • %s\n", c.Name)
		}
	}
	return nil
}

// movieViews decorates movies with poster URLs and, for a signed in session, watchlist membership.
func (r *Runner) movieViews(ctx context.Context, catalog services.Catalog, movies []models.Movie) []server.MovieView {
	saved := func(int) bool { return false }
	if err := r.state(ctx); err != nil {
		r.logger.Debug("watchlist unavailable", "error", err)
	} else if r.session.IsAuthenticated() {
		saved = r.watchlist.Contains
	}

	views := make([]server.MovieView, len(movies))
	for i, m := range movies {
		views[i] = server.MovieView{Movie: m, PosterURL: catalog.ImageURL(m.PosterPath), InWatchlist: saved(m.ID)}
	}
	return views
}

func (r *Runner) writeMovies(movies []server.MovieView) {
	for _, m := range movies {
		mark := " "
		if m.InWatchlist {
			mark = "♥"
		}
		year := m.Year()
		if year == "" {
			year = "----"
		}
		r.writePlain("%s %8d  %s  ★ %.1f  %s\n", mark, m.ID, year, m.VoteAverage, m.Title)
	}
}

func parseMovieID(raw string) (int, error) {
	if strings.TrimSpace(raw) == "" {
		return 0, fmt.Errorf("%w: movie id", shared.ErrMissingArgument)
	}
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: movie id %q", shared.ErrInvalidArgument, raw)
	}
	return id, nil
}

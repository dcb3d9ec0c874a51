package server

import (
	"context"
	"fmt"

	"github.com/desertthunder/flickx/internal/models"
	"github.com/desertthunder/flickx/internal/storage"
)

// Dashboard is the administrator overview.
type Dashboard struct {
	User          models.Identity   `json:"user"`
	Directory     []models.Identity `json:"directory"`
	WatchlistSize int               `json:"watchlist_size"`
	PopularCount  int               `json:"popular_count"`
	PopularError  string            `json:"popular_error,omitempty"`
	Entries       []storage.Entry   `json:"entries"`
}

// BuildDashboard gathers the administrator overview. The caller must already be an administrator.
//
// A failed popular-movies fetch is reported on the dashboard rather than failing it.
func BuildDashboard(ctx context.Context, deps Deps) (*Dashboard, error) {
	user, err := deps.Session.RequireAdmin()
	if err != nil {
		return nil, err
	}

	d := &Dashboard{
		User:      user,
		Directory: deps.Session.Directory().Identities(),
		Entries:   []storage.Entry{},
	}
	if deps.Watchlist != nil {
		d.WatchlistSize = deps.Watchlist.Len()
	}

	if deps.Catalog != nil {
		page, err := deps.Catalog.ListByCategory(ctx, models.CategoryPopular, 1)
		if err != nil {
			d.PopularError = err.Error()
		} else {
			d.PopularCount = len(page.Results)
		}
	}

	for _, area := range deps.Areas {
		entries, err := area.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list storage: %w", err)
		}
		for _, e := range entries {
			e.Value = summarize(e.Value)
			d.Entries = append(d.Entries, e)
		}
	}
	return d, nil
}

// summarize shortens stored values so tokens and lists stay readable.
func summarize(v string) string {
	const limit = 48
	if r := []rune(v); len(r) > limit {
		return string(r[:limit]) + "…"
	}
	return v
}

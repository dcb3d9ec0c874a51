package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/flickx/internal/models"
)

var (
	_ list.Item = movieItem{}
)

// movieItem wraps [models.Movie] to implement [list.Item].
//
// saved marks movies already on the watchlist.
type movieItem struct {
	movie models.Movie
	saved bool
}

func (i movieItem) FilterValue() string { return i.movie.Title }
func (i movieItem) Title() string {
	if i.saved {
		return "♥ " + i.movie.Title
	}
	return i.movie.Title
}

func (i movieItem) Description() string {
	parts := []string{}
	if year := i.movie.Year(); year != "" {
		parts = append(parts, year)
	}
	parts = append(parts, fmt.Sprintf("★ %.1f", i.movie.VoteAverage))
	if i.movie.Overview != "" {
		parts = append(parts, i.movie.Overview)
	}
	return strings.Join(parts, " • ")
}

func movieItems(movies []models.Movie, saved func(int) bool) []list.Item {
	items := make([]list.Item, len(movies))
	for i, movie := range movies {
		items[i] = movieItem{movie: movie, saved: saved(movie.ID)}
	}
	return items
}

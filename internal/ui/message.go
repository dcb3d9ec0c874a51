package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/flickx/internal/models"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgMoviesFetched MsgKind = iota
	MsgDetailFetched
	MsgWatchlistToggled
	MsgSessionChanged
)

type moviesFetched struct {
	page  *models.MoviePage
	query string
	err   error
}

type detailFetched struct {
	detail *models.MovieDetail
	err    error
}

type watchlistToggled struct {
	movie models.Movie
	added bool
	err   error
}

type sessionChanged struct {
	identity  models.Identity
	loggedOut bool
	err       error
}

// moviesFetchedMsg is the constructor for [MsgMoviesFetched]. query is empty for category listings.
func moviesFetchedMsg(page *models.MoviePage, query string, err error) Msg {
	return Msg{kind: MsgMoviesFetched, data: moviesFetched{page, query, err}}
}

// detailFetchedMsg is the constructor for [MsgDetailFetched]
func detailFetchedMsg(detail *models.MovieDetail, err error) Msg {
	return Msg{kind: MsgDetailFetched, data: detailFetched{detail, err}}
}

// watchlistToggledMsg is the constructor for [MsgWatchlistToggled]
func watchlistToggledMsg(movie models.Movie, added bool, err error) Msg {
	return Msg{kind: MsgWatchlistToggled, data: watchlistToggled{movie, added, err}}
}

// sessionChangedMsg is the constructor for [MsgSessionChanged]
func sessionChangedMsg(identity models.Identity, loggedOut bool, err error) Msg {
	return Msg{kind: MsgSessionChanged, data: sessionChanged{identity, loggedOut, err}}
}

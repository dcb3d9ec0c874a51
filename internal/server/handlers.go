package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/flickx/internal/models"
	"github.com/desertthunder/flickx/internal/shared"
)

// MovieView is a catalog record decorated for display.
type MovieView struct {
	models.Movie
	PosterURL   string `json:"poster_url"`
	InWatchlist bool   `json:"in_watchlist"`
}

// CastView is a cast member with a resolved profile image.
type CastView struct {
	models.CastMember
	ProfileURL string `json:"profile_url"`
}

// PageView is one page of movies.
type PageView struct {
	Category   models.Category `json:"category,omitempty"`
	Query      string          `json:"query,omitempty"`
	Page       int             `json:"page"`
	TotalPages int             `json:"total_pages"`
	Results    []MovieView     `json:"results"`
}

// DetailView is a detail record with cast.
type DetailView struct {
	MovieView
	Cast []CastView `json:"cast"`
}

// WatchlistView is the watchlist with its version.
type WatchlistView struct {
	Count   int         `json:"count"`
	Version uint64      `json:"version"`
	Items   []MovieView `json:"items"`
}

// SessionView describes the current session.
type SessionView struct {
	Authenticated bool             `json:"authenticated"`
	State         string           `json:"state"`
	User          *models.Identity `json:"user,omitempty"`
	ExpiresAt     *time.Time       `json:"expires_at,omitempty"`
	Redirect      string           `json:"redirect,omitempty"`
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
}

func (s *Server) view(m models.Movie) MovieView {
	in := false
	if s.deps.Watchlist != nil {
		in = s.deps.Watchlist.Contains(m.ID)
	}
	return MovieView{Movie: m, PosterURL: s.deps.Catalog.ImageURL(m.PosterPath), InWatchlist: in}
}

func (s *Server) views(movies []models.Movie) []MovieView {
	out := make([]MovieView, len(movies))
	for i, m := range movies {
		out[i] = s.view(m)
	}
	return out
}

func (s *Server) handleListMovies(w http.ResponseWriter, r *http.Request) {
	category := models.CategoryPopular
	if raw := r.URL.Query().Get("category"); raw != "" {
		c, err := models.ParseCategory(raw)
		if err != nil {
			s.fail(w, r, fmt.Errorf("%w: %v", shared.ErrInvalidCategory, err))
			return
		}
		category = c
	}

	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.fail(w, r, fmt.Errorf("%w: page %q", shared.ErrInvalidArgument, raw))
			return
		}
		page = n
	}

	result, err := s.deps.Catalog.ListByCategory(r.Context(), category, page)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, PageView{
		Category:   category,
		Page:       result.Page,
		TotalPages: result.TotalPages,
		Results:    s.views(result.Results),
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	result, err := s.deps.Catalog.Search(r.Context(), query)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, PageView{
		Query:      strings.TrimSpace(query),
		Page:       result.Page,
		TotalPages: result.TotalPages,
		Results:    s.views(result.Results),
	})
}

func (s *Server) handleMovieDetail(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	detail, err := s.deps.Catalog.GetDetail(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	cast := make([]CastView, len(detail.Cast))
	for i, c := range detail.Cast {
		cast[i] = CastView{CastMember: c, ProfileURL: s.deps.Catalog.ImageURL(c.ProfilePath)}
	}
	writeJSON(w, http.StatusOK, DetailView{MovieView: s.view(detail.Movie), Cast: cast})
}

func (s *Server) sessionView() SessionView {
	v := SessionView{State: s.deps.Session.State().String()}
	if id, ok := s.deps.Session.Identity(); ok {
		v.Authenticated = true
		v.User = &id
	}
	if claims, ok := s.deps.Session.Claims(); ok {
		exp := claims.Expiry()
		v.ExpiresAt = &exp
	}
	return v
}

// handleLoginPage describes where a successful login will return to.
func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	v := s.sessionView()
	v.Redirect = safeRedirect(r.URL.Query().Get("from"))
	writeJSON(w, http.StatusOK, v)
}

func decodeCredentials(r *http.Request) (credentials, error) {
	var c credentials
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		return c, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	return c, nil
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	c, err := decodeCredentials(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if _, err := s.deps.Session.Login(r.Context(), c.Email, c.Password); err != nil {
		s.fail(w, r, err)
		return
	}

	v := s.sessionView()
	v.Redirect = safeRedirect(r.URL.Query().Get("from"))
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	c, err := decodeCredentials(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if _, err := s.deps.Session.Register(r.Context(), c.Email, c.Password, c.Username); err != nil {
		s.fail(w, r, err)
		return
	}

	v := s.sessionView()
	v.Redirect = "/"
	writeJSON(w, http.StatusCreated, v)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Session.Logout(r.Context()); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.sessionView())
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sessionView())
}

func (s *Server) watchlistView() WatchlistView {
	snap := s.deps.Watchlist.Snapshot()
	return WatchlistView{Count: len(snap.Items), Version: snap.Version, Items: s.views(snap.Items)}
}

func (s *Server) handleWatchlist(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.watchlistView())
}

// handleWatchlistAdd fetches the detail record for the posted id and stores it.
func (s *Server) handleWatchlistAdd(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID int `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.fail(w, r, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err))
		return
	}
	if body.ID <= 0 {
		s.fail(w, r, fmt.Errorf("%w: movie id %d", shared.ErrInvalidArgument, body.ID))
		return
	}

	detail, err := s.deps.Catalog.GetDetail(r.Context(), body.ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.deps.Watchlist.Add(r.Context(), detail.Movie); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.watchlistView())
}

func (s *Server) handleWatchlistRemove(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.deps.Watchlist.Remove(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.watchlistView())
}

func (s *Server) handleAdmin(w http.ResponseWriter, r *http.Request) {
	d, err := BuildDashboard(r.Context(), s.deps)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func pathID(r *http.Request) (int, error) {
	raw := r.PathValue("id")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: movie id %q", shared.ErrInvalidArgument, raw)
	}
	return id, nil
}

// safeRedirect only allows local absolute paths, defaulting to "/".
func safeRedirect(from string) string {
	if !strings.HasPrefix(from, "/") || strings.HasPrefix(from, "//") {
		return "/"
	}
	return from
}

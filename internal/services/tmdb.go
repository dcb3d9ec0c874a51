// TMDB API implementation of [Catalog]
//
// Response types based on https://developer.themoviedb.org/reference
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"

	"github.com/desertthunder/flickx/internal/models"
	"github.com/desertthunder/flickx/internal/shared"
)

const (
	DefaultTMDBBaseURL  = "https://api.themoviedb.org/3"
	DefaultImageBaseURL = "https://image.tmdb.org/t/p/w500"
	PlaceholderImageURL = "https://via.placeholder.com/500x750?text=No+Image"
)

// TMDBPage is the envelope of paginated TMDB list endpoints.
type TMDBPage struct {
	Page         int            `json:"page"`
	Results      []models.Movie `json:"results"`
	TotalPages   int            `json:"total_pages"`
	TotalResults int            `json:"total_results"`
}

// TMDBCredits is the response of /movie/{id}/credits.
type TMDBCredits struct {
	ID   int                 `json:"id"`
	Cast []models.CastMember `json:"cast"`
}

type tmdbError struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
}

// TMDBOpts configures a [TMDBService].
type TMDBOpts struct {
	APIKey       string
	AccessToken  string
	BaseURL      string
	ImageBaseURL string

	// Client is the base HTTP client. When AccessToken is set its transport is wrapped by oauth2.
	Client *http.Client
	Logger *log.Logger
}

// TMDBService implements [Catalog] for TMDB.
type TMDBService struct {
	baseURL      string
	imageBaseURL string
	apiKey       string
	httpClient   *http.Client
	logger       *log.Logger
}

// NewTMDBService creates a TMDB client. Either APIKey or AccessToken is required.
func NewTMDBService(opts TMDBOpts) (*TMDBService, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	accessToken := strings.TrimSpace(opts.AccessToken)
	if apiKey == "" && accessToken == "" {
		return nil, fmt.Errorf("%w: No API key found", shared.ErrMissingCredentials)
	}

	s := &TMDBService{
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		imageBaseURL: strings.TrimRight(opts.ImageBaseURL, "/"),
		apiKey:       apiKey,
		httpClient:   opts.Client,
		logger:       opts.Logger,
	}

	if s.baseURL == "" {
		s.baseURL = DefaultTMDBBaseURL
	}
	if s.imageBaseURL == "" {
		s.imageBaseURL = DefaultImageBaseURL
	}
	if s.httpClient == nil {
		s.httpClient = http.DefaultClient
	}
	if s.logger == nil {
		s.logger = shared.NewDiscardLogger()
	}

	if accessToken != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, s.httpClient)
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
		bearer := oauth2.NewClient(ctx, ts)
		bearer.Timeout = s.httpClient.Timeout
		s.httpClient = bearer
	}

	return s, nil
}

// NewTMDBServiceFromConfig builds a [TMDBService] from the [shared.TMDBConfig] section.
func NewTMDBServiceFromConfig(cfg shared.TMDBConfig, logger *log.Logger) (*TMDBService, error) {
	return NewTMDBService(TMDBOpts{
		APIKey:       cfg.APIKey,
		AccessToken:  cfg.AccessToken,
		BaseURL:      cfg.BaseURL,
		ImageBaseURL: cfg.ImageBaseURL,
		Client:       &http.Client{Timeout: cfg.Timeout()},
		Logger:       logger,
	})
}

// Name returns the service name.
func (s *TMDBService) Name() string {
	return "TMDB"
}

// doRequest performs a GET against endpoint and decodes a 2xx JSON body into result.
func (s *TMDBService) doRequest(ctx context.Context, endpoint string, query url.Values, result any) error {
	if query == nil {
		query = url.Values{}
	}
	if s.apiKey != "" {
		query.Set("api_key", s.apiKey)
	}

	apiURL := s.baseURL + endpoint
	if encoded := query.Encode(); encoded != "" {
		apiURL += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: request failed: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr tmdbError
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.StatusMessage != "" {
			return fmt.Errorf("%w: status %d: %s", shared.ErrAPIRequest, resp.StatusCode, apiErr.StatusMessage)
		}
		return fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// ListByCategory fetches /movie/{category}. Pages above [models.MaxPages] are rejected.
func (s *TMDBService) ListByCategory(ctx context.Context, category models.Category, page int) (*models.MoviePage, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("%w: %q", shared.ErrInvalidCategory, category)
	}
	if page < 1 {
		page = 1
	}
	if page > models.MaxPages {
		return nil, fmt.Errorf("%w: page %d exceeds %d", shared.ErrInvalidArgument, page, models.MaxPages)
	}

	var result TMDBPage
	query := url.Values{"page": {strconv.Itoa(page)}}
	if err := s.doRequest(ctx, "/movie/"+string(category), query, &result); err != nil {
		s.logger.Error("error fetching movies", "category", category, "page", page, "error", err)
		return nil, fmt.Errorf("%w: %v", shared.ErrFetchMovies, err)
	}
	return toPage(result), nil
}

// Search fetches /search/movie for query.
func (s *TMDBService) Search(ctx context.Context, query string) (*models.MoviePage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return &models.MoviePage{Results: []models.Movie{}, Page: 1}, nil
	}

	var result TMDBPage
	if err := s.doRequest(ctx, "/search/movie", url.Values{"query": {query}}, &result); err != nil {
		s.logger.Error("search error", "query", query, "error", err)
		return nil, fmt.Errorf("%w: %v", shared.ErrSearchFailed, err)
	}
	return toPage(result), nil
}

// GetDetail fetches /movie/{id} and /movie/{id}/credits in parallel.
func (s *TMDBService) GetDetail(ctx context.Context, id int) (*models.MovieDetail, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: movie id %d", shared.ErrInvalidArgument, id)
	}

	var (
		movie   models.Movie
		credits TMDBCredits
	)
	endpoint := "/movie/" + strconv.Itoa(id)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.doRequest(gctx, endpoint, nil, &movie)
	})
	g.Go(func() error {
		if err := s.doRequest(gctx, endpoint+"/credits", nil, &credits); err != nil {
			s.logger.Warn("credits unavailable", "id", id, "error", err)
			credits.Cast = nil
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.Error("error fetching movie details", "id", id, "error", err)
		return nil, fmt.Errorf("%w: %v", shared.ErrMovieNotFound, err)
	}

	cast := credits.Cast
	if len(cast) > models.MaxCast {
		cast = cast[:models.MaxCast]
	}
	if cast == nil {
		cast = []models.CastMember{}
	}
	return &models.MovieDetail{Movie: movie, Cast: cast}, nil
}

// ImageURL joins path onto the image base URL, or returns [PlaceholderImageURL] when path is empty.
func (s *TMDBService) ImageURL(path string) string {
	if path == "" {
		return PlaceholderImageURL
	}
	return s.imageBaseURL + path
}

func toPage(p TMDBPage) *models.MoviePage {
	results := p.Results
	if results == nil {
		results = []models.Movie{}
	}
	return &models.MoviePage{
		Results:      results,
		Page:         p.Page,
		TotalPages:   min(p.TotalPages, models.MaxPages),
		TotalResults: p.TotalResults,
	}
}

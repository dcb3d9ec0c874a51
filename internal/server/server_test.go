package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/flickx/internal/models"
	"github.com/desertthunder/flickx/internal/session"
	"github.com/desertthunder/flickx/internal/shared"
	"github.com/desertthunder/flickx/internal/storage"
	tu "github.com/desertthunder/flickx/internal/testing"
	"github.com/desertthunder/flickx/internal/watchlist"
)

type harness struct {
	srv     *Server
	session *session.Manager
	list    *watchlist.Store
	catalog *tu.MockCatalog
	local   *storage.MemoryStore
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	short := storage.NewMemoryStore(storage.ScopeSession)
	local := storage.NewMemoryStore(storage.ScopeLocal)

	h := &harness{
		session: session.NewManager(short, local, session.ManagerOpts{LoginDelay: -1}),
		list:    watchlist.New(local, nil),
		catalog: tu.NewMockCatalog(
			models.Movie{ID: 603, Title: "The Matrix", PosterPath: "/matrix.jpg"},
			models.Movie{ID: 78, Title: "Blade Runner"},
		),
		local: local,
	}
	h.catalog.Cast[603] = []models.CastMember{{ID: 6384, Name: "Keanu Reeves", ProfilePath: "/keanu.jpg"}}
	h.srv = New(Deps{
		Session:   h.session,
		Watchlist: h.list,
		Catalog:   h.catalog,
		Areas:     []Lister{short, local},
	})
	return h
}

func (h *harness) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(data)
	}
	rec := httptest.NewRecorder()
	h.srv.ServeHTTP(rec, httptest.NewRequest(method, target, r))
	return rec
}

func (h *harness) login(t *testing.T, email string) {
	t.Helper()
	if _, err := h.session.Login(context.Background(), email, "secret1"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestCatalogRoutes(t *testing.T) {
	t.Run("List Movies", func(t *testing.T) {
		h := newHarness(t)
		rec := h.do(t, http.MethodGet, "/api/movies?category=top_rated&page=2", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
		}

		page := decode[PageView](t, rec)
		if page.Category != models.CategoryTopRated || page.Page != 2 || len(page.Results) != 2 {
			t.Errorf("unexpected page %+v", page)
		}
		if page.Results[0].PosterURL != "https://images.test/matrix.jpg" {
			t.Errorf("unexpected poster URL %q", page.Results[0].PosterURL)
		}
		if page.Results[1].PosterURL != "placeholder" {
			t.Errorf("expected placeholder for missing poster, got %q", page.Results[1].PosterURL)
		}
	})

	t.Run("Bad Input", func(t *testing.T) {
		h := newHarness(t)
		for _, target := range []string{"/api/movies?category=trending", "/api/movies?page=abc", "/api/movies/abc"} {
			if rec := h.do(t, http.MethodGet, target, nil); rec.Code != http.StatusBadRequest {
				t.Errorf("%s: expected 400, got %d", target, rec.Code)
			}
		}
		if h.catalog.CallCount("ListByCategory") != 0 {
			t.Error("expected no catalog calls for rejected input")
		}
	})

	t.Run("Upstream Failure", func(t *testing.T) {
		h := newHarness(t)
		h.catalog.Err = errors.Join(shared.ErrFetchMovies, errors.New("status 500"))

		rec := h.do(t, http.MethodGet, "/api/movies", nil)
		if rec.Code != http.StatusBadGateway {
			t.Fatalf("expected 502, got %d", rec.Code)
		}
		if body := decode[errorBody](t, rec); body.Error != "failed to fetch movies" {
			t.Errorf("unexpected error message %q", body.Error)
		}
	})

	t.Run("Search", func(t *testing.T) {
		h := newHarness(t)
		rec := h.do(t, http.MethodGet, "/api/search?q=matrix", nil)
		page := decode[PageView](t, rec)
		if len(page.Results) != 1 || page.Results[0].ID != 603 || page.Query != "matrix" {
			t.Errorf("unexpected search page %+v", page)
		}
	})

	t.Run("Detail", func(t *testing.T) {
		h := newHarness(t)
		rec := h.do(t, http.MethodGet, "/api/movies/603", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		detail := decode[DetailView](t, rec)
		if detail.Title != "The Matrix" || len(detail.Cast) != 1 || detail.Cast[0].ProfileURL != "https://images.test/keanu.jpg" {
			t.Errorf("unexpected detail %+v", detail)
		}

		if rec := h.do(t, http.MethodGet, "/api/movies/1", nil); rec.Code != http.StatusNotFound {
			t.Errorf("expected 404 for unknown movie, got %d", rec.Code)
		}
	})
}

func TestAuthRoutes(t *testing.T) {
	t.Run("Login Success With Redirect", func(t *testing.T) {
		h := newHarness(t)
		rec := h.do(t, http.MethodPost, "/api/auth/login?from=/api/watchlist", map[string]string{
			"email": "admin@example.com", "password": "secret1",
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
		}
		v := decode[SessionView](t, rec)
		if !v.Authenticated || v.User.Role != models.RoleAdmin || v.Redirect != "/api/watchlist" {
			t.Errorf("unexpected session view %+v", v)
		}
		if v.ExpiresAt == nil {
			t.Error("expected token expiry")
		}
	})

	t.Run("Login Failure", func(t *testing.T) {
		h := newHarness(t)
		rec := h.do(t, http.MethodPost, "/api/auth/login", map[string]string{
			"email": "admin@example.com", "password": "abc",
		})
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		if body := decode[errorBody](t, rec); body.Error != session.ReasonInvalidCredentials {
			t.Errorf("unexpected error %q", body.Error)
		}
	})

	t.Run("Register Validation", func(t *testing.T) {
		h := newHarness(t)
		rec := h.do(t, http.MethodPost, "/api/auth/register", map[string]string{
			"email": "nouser", "password": "abc123", "username": "Name",
		})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		if body := decode[errorBody](t, rec); body.Error != session.ReasonInvalidEmail {
			t.Errorf("unexpected error %q", body.Error)
		}
	})

	t.Run("Register Success", func(t *testing.T) {
		h := newHarness(t)
		rec := h.do(t, http.MethodPost, "/api/auth/register", map[string]string{
			"email": "new@example.com", "password": "abc123", "username": "New",
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", rec.Code)
		}
		if v := decode[SessionView](t, rec); v.User == nil || v.User.Name != "New" || v.User.Role != models.RoleUser {
			t.Errorf("unexpected session view %+v", v)
		}
	})

	t.Run("Malformed Body", func(t *testing.T) {
		h := newHarness(t)
		rec := httptest.NewRecorder()
		h.srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader("{")))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("Logout And Me", func(t *testing.T) {
		h := newHarness(t)
		h.login(t, "user@example.com")

		if v := decode[SessionView](t, h.do(t, http.MethodGet, "/api/auth/me", nil)); !v.Authenticated {
			t.Error("expected authenticated before logout")
		}
		if rec := h.do(t, http.MethodPost, "/api/auth/logout", nil); rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if v := decode[SessionView](t, h.do(t, http.MethodGet, "/api/auth/me", nil)); v.Authenticated || v.State != "unauthenticated" {
			t.Errorf("expected unauthenticated after logout, got %+v", v)
		}
	})

	t.Run("Login Page Rejects Foreign Redirect", func(t *testing.T) {
		h := newHarness(t)
		v := decode[SessionView](t, h.do(t, http.MethodGet, "/login?from=//evil.example", nil))
		if v.Redirect != "/" {
			t.Errorf("expected redirect /, got %q", v.Redirect)
		}
	})
}

func TestGuards(t *testing.T) {
	t.Run("Unauthenticated Redirects With Destination", func(t *testing.T) {
		h := newHarness(t)
		for _, target := range []string{"/api/watchlist", "/api/admin?tab=users"} {
			rec := h.do(t, http.MethodGet, target, nil)
			if rec.Code != http.StatusSeeOther {
				t.Fatalf("%s: expected 303, got %d", target, rec.Code)
			}
			want := "/login?from=" + url.QueryEscape(target)
			if got := rec.Header().Get("Location"); got != want {
				t.Errorf("%s: expected Location %q, got %q", target, want, got)
			}
		}
	})

	t.Run("Non Admin Gets Access Denied", func(t *testing.T) {
		h := newHarness(t)
		h.login(t, "user@example.com")

		rec := h.do(t, http.MethodGet, "/api/admin", nil)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
		body := decode[map[string]string](t, rec)
		if body["error"] != "Access Denied" || body["message"] != AccessDeniedMessage {
			t.Errorf("unexpected body %v", body)
		}

		if rec := h.do(t, http.MethodGet, "/api/watchlist", nil); rec.Code != http.StatusOK {
			t.Errorf("standard user should reach the watchlist, got %d", rec.Code)
		}
	})

	t.Run("Loading Session", func(t *testing.T) {
		blocked := &blockingStore{release: make(chan struct{}), entered: make(chan struct{})}
		m := session.NewManager(blocked, storage.NewMemoryStore(storage.ScopeLocal), session.ManagerOpts{LoginDelay: -1})
		srv := New(Deps{Session: m, Catalog: tu.NewMockCatalog()})

		done := make(chan error, 1)
		go func() { done <- m.Rehydrate(context.Background()) }()
		<-blocked.entered

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/watchlist", nil))
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("expected 503 while loading, got %d", rec.Code)
		}

		close(blocked.release)
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("rehydrate did not finish")
		}
		rec = httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/watchlist", nil))
		if rec.Code != http.StatusSeeOther {
			t.Errorf("expected redirect after loading, got %d", rec.Code)
		}
	})
}

// blockingStore blocks Get until release is closed.
type blockingStore struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingStore) Get(ctx context.Context, key string) (string, bool, error) {
	close(b.entered)
	<-b.release
	return "", false, nil
}

func (b *blockingStore) Set(context.Context, string, string) error { return nil }
func (b *blockingStore) Remove(context.Context, string) error      { return nil }

func TestWatchlistRoutes(t *testing.T) {
	h := newHarness(t)
	h.login(t, "user@example.com")

	rec := h.do(t, http.MethodPost, "/api/watchlist", map[string]int{"id": 603})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body)
	}
	_ = h.do(t, http.MethodPost, "/api/watchlist", map[string]int{"id": 603})

	v := decode[WatchlistView](t, h.do(t, http.MethodGet, "/api/watchlist", nil))
	if v.Count != 1 || v.Items[0].ID != 603 || !v.Items[0].InWatchlist {
		t.Errorf("unexpected watchlist %+v", v)
	}

	if rec := h.do(t, http.MethodPost, "/api/watchlist", map[string]int{"id": 0}); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for id 0, got %d", rec.Code)
	}
	if rec := h.do(t, http.MethodPost, "/api/watchlist", map[string]int{"id": 42}); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown movie, got %d", rec.Code)
	}

	rec = h.do(t, http.MethodDelete, "/api/watchlist/603", nil)
	if v := decode[WatchlistView](t, rec); rec.Code != http.StatusOK || v.Count != 0 {
		t.Errorf("expected empty watchlist after delete, got %d %+v", rec.Code, v)
	}
}

func TestAdminRoute(t *testing.T) {
	h := newHarness(t)
	h.login(t, "admin@example.com")
	_ = h.list.Add(context.Background(), models.Movie{ID: 78, Title: "Blade Runner"})

	rec := h.do(t, http.MethodGet, "/api/admin", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}

	d := decode[Dashboard](t, rec)
	if d.User.Email != "admin@example.com" || len(d.Directory) != 2 {
		t.Errorf("unexpected dashboard identity data %+v", d)
	}
	if d.WatchlistSize != 1 || d.PopularCount != 2 {
		t.Errorf("expected watchlist 1 and popular 2, got %d and %d", d.WatchlistSize, d.PopularCount)
	}

	keys := map[string]bool{}
	for _, e := range d.Entries {
		keys[string(e.Scope)+"/"+e.Key] = true
		if len([]rune(e.Value)) > 49 {
			t.Errorf("expected summarized value for %s", e.Key)
		}
	}
	for _, want := range []string{"session/authToken", "local/user", "local/watchlist"} {
		if !keys[want] {
			t.Errorf("expected entry %s, got %v", want, keys)
		}
	}
}

func TestMetricsRoute(t *testing.T) {
	h := newHarness(t)
	_ = h.do(t, http.MethodGet, "/api/movies", nil)

	rec := h.do(t, http.MethodGet, "/metrics", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `flickx_http_requests_total{method="GET",route="GET /api/movies",status="200"} 1`) {
		t.Errorf("expected request counter in metrics output:\n%s", body)
	}
}

func TestRecover(t *testing.T) {
	r := NewBasicRouter()
	r.Use(Recover(shared.NewDiscardLogger()))
	r.HandleFunc(http.MethodGet, "/boom", func(http.ResponseWriter, *http.Request) { panic("boom") })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}

func TestListenAndServe(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan string, 1)
	done := make(chan error, 1)

	go func() { done <- h.srv.ListenAndServe(ctx, "127.0.0.1:0", ready) }()

	addr := <-ready
	resp, err := http.Get("http://" + addr + "/api/auth/me")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenAndServe() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

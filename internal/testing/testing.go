// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/flickx/internal/models"
	"github.com/desertthunder/flickx/internal/shared"
)

// MockCatalog is a test double for [services.Catalog] backed by fixed records.
//
// Err, when set, is returned by every call. Calls counts requests per method.
type MockCatalog struct {
	mu     sync.Mutex
	Movies []models.Movie
	Cast   map[int][]models.CastMember
	Err    error
	Calls  map[string]int
}

// NewMockCatalog creates a [MockCatalog] serving movies.
func NewMockCatalog(movies ...models.Movie) *MockCatalog {
	return &MockCatalog{Movies: movies, Cast: map[int][]models.CastMember{}, Calls: map[string]int{}}
}

func (m *MockCatalog) record(method string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Calls == nil {
		m.Calls = map[string]int{}
	}
	m.Calls[method]++
	return m.Err
}

// CallCount returns how many times method was called.
func (m *MockCatalog) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls[method]
}

func (m *MockCatalog) ListByCategory(ctx context.Context, category models.Category, page int) (*models.MoviePage, error) {
	if err := m.record("ListByCategory"); err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	return &models.MoviePage{Results: m.Movies, Page: page, TotalPages: 1, TotalResults: len(m.Movies)}, nil
}

func (m *MockCatalog) Search(ctx context.Context, query string) (*models.MoviePage, error) {
	if err := m.record("Search"); err != nil {
		return nil, err
	}
	results := []models.Movie{}
	for _, movie := range m.Movies {
		if strings.Contains(strings.ToLower(movie.Title), strings.ToLower(strings.TrimSpace(query))) {
			results = append(results, movie)
		}
	}
	return &models.MoviePage{Results: results, Page: 1, TotalPages: 1, TotalResults: len(results)}, nil
}

func (m *MockCatalog) GetDetail(ctx context.Context, id int) (*models.MovieDetail, error) {
	if err := m.record("GetDetail"); err != nil {
		return nil, err
	}
	for _, movie := range m.Movies {
		if movie.ID == id {
			return &models.MovieDetail{Movie: movie, Cast: m.Cast[id]}, nil
		}
	}
	return nil, fmt.Errorf("%w: id %d", shared.ErrMovieNotFound, id)
}

func (m *MockCatalog) ImageURL(path string) string {
	if path == "" {
		return "placeholder"
	}
	return "https://images.test" + path
}

// FailingStore is a storage double whose operations fail with Err for the listed keys (all keys when empty).
type FailingStore struct {
	Err  error
	Keys []string
	mu   sync.Mutex
	data map[string]string
}

func NewFailingStore(err error, keys ...string) *FailingStore {
	return &FailingStore{Err: err, Keys: keys, data: map[string]string{}}
}

func (f *FailingStore) fails(key string) bool {
	if len(f.Keys) == 0 {
		return true
	}
	for _, k := range f.Keys {
		if k == key {
			return true
		}
	}
	return false
}

func (f *FailingStore) Get(_ context.Context, key string) (string, bool, error) {
	if f.fails(key) {
		return "", false, f.Err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *FailingStore) Set(_ context.Context, key, value string) error {
	if f.fails(key) {
		return f.Err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value
	return nil
}

func (f *FailingStore) Remove(_ context.Context, key string) error {
	if f.fails(key) {
		return f.Err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, key)
	return nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

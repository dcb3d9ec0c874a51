// Package watchlist keeps the ordered, de-duplicated list of movies the user wants to watch.
//
// Readers see immutable [Snapshot] values. Every mutation that changes the list publishes a new snapshot
// with a higher version, so observers can compare versions to know when to redraw.
package watchlist

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/flickx/internal/models"
	"github.com/desertthunder/flickx/internal/shared"
	"github.com/desertthunder/flickx/internal/storage"
)

// Key is the long-lived storage key holding the JSON encoded list.
const Key = "watchlist"

// Snapshot is one published state of the list. Its Items must not be modified.
type Snapshot struct {
	Version uint64
	Items   []models.Movie
}

// Contains reports whether a movie with id is in the snapshot.
func (s *Snapshot) Contains(id int) bool {
	return slices.ContainsFunc(s.Items, func(m models.Movie) bool { return m.ID == id })
}

// Store is the watchlist. Mutations are serialized and persisted to a [storage.Store] before they are published.
type Store struct {
	backend storage.Store
	logger  *log.Logger

	mu      sync.Mutex
	current atomic.Pointer[Snapshot]
}

// New creates an empty [Store] writing to backend. Call [Store.Hydrate] to load the persisted list.
func New(backend storage.Store, logger *log.Logger) *Store {
	if logger == nil {
		logger = shared.NewDiscardLogger()
	}
	s := &Store{backend: backend, logger: logger}
	s.current.Store(&Snapshot{Items: []models.Movie{}})
	return s
}

// Hydrate replaces the list with the persisted one.
//
// Missing or unparsable data yields an empty list rather than an error; only a failed read is returned.
func (s *Store) Hydrate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok, err := s.backend.Get(ctx, Key)
	if err != nil {
		s.publish([]models.Movie{})
		return fmt.Errorf("failed to read watchlist: %w", err)
	}

	items := []models.Movie{}
	if ok {
		var decoded []models.Movie
		if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
			s.logger.Warn("stored watchlist unreadable, starting empty", "error", err)
		} else {
			items = dedupe(decoded)
		}
	}

	s.publish(items)
	s.logger.Debug("watchlist hydrated", "size", len(items))
	return nil
}

// Add appends movie unless an entry with the same id exists. The resulting list is persisted either way.
func (s *Store) Add(ctx context.Context, movie models.Movie) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.current.Load()
	if cur.Contains(movie.ID) {
		return s.persist(ctx, cur.Items)
	}

	next := make([]models.Movie, len(cur.Items), len(cur.Items)+1)
	copy(next, cur.Items)
	next = append(next, movie)

	if err := s.persist(ctx, next); err != nil {
		return err
	}
	s.publish(next)
	s.logger.Info("added to watchlist", "id", movie.ID, "title", movie.Title)
	return nil
}

// Remove drops the entry with id, if any. The resulting list is persisted either way.
func (s *Store) Remove(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.current.Load()
	next := make([]models.Movie, 0, len(cur.Items))
	for _, m := range cur.Items {
		if m.ID != id {
			next = append(next, m)
		}
	}

	if len(next) == len(cur.Items) {
		return s.persist(ctx, cur.Items)
	}

	if err := s.persist(ctx, next); err != nil {
		return err
	}
	s.publish(next)
	s.logger.Info("removed from watchlist", "id", id)
	return nil
}

// Toggle adds movie when absent and removes it when present, reporting whether it is now in the list.
func (s *Store) Toggle(ctx context.Context, movie models.Movie) (bool, error) {
	if s.Contains(movie.ID) {
		return false, s.Remove(ctx, movie.ID)
	}
	return true, s.Add(ctx, movie)
}

// Contains reports whether a movie with id is in the list.
func (s *Store) Contains(id int) bool {
	return s.current.Load().Contains(id)
}

// Snapshot returns the current published state.
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// Items returns a copy of the entries in insertion order.
func (s *Store) Items() []models.Movie {
	return slices.Clone(s.current.Load().Items)
}

// Len returns the number of entries.
func (s *Store) Len() int {
	return len(s.current.Load().Items)
}

// Version increases each time the list changes.
func (s *Store) Version() uint64 {
	return s.current.Load().Version
}

func (s *Store) persist(ctx context.Context, items []models.Movie) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode watchlist: %w", err)
	}
	if err := s.backend.Set(ctx, Key, string(raw)); err != nil {
		return fmt.Errorf("failed to store watchlist: %w", err)
	}
	return nil
}

// publish must be called with mu held.
func (s *Store) publish(items []models.Movie) {
	prev := s.current.Load()
	s.current.Store(&Snapshot{Version: prev.Version + 1, Items: items})
}

// dedupe keeps the first entry per id.
func dedupe(items []models.Movie) []models.Movie {
	seen := make(map[int]struct{}, len(items))
	out := make([]models.Movie, 0, len(items))
	for _, m := range items {
		if _, ok := seen[m.ID]; ok {
			continue
		}
		seen[m.ID] = struct{}{}
		out = append(out, m)
	}
	return out
}

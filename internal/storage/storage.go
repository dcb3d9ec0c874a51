package storage

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Scope names a persistence area within the storage table.
type Scope string

const (
	ScopeSession Scope = "session" // short-lived
	ScopeLocal   Scope = "local"   // long-lived
)

// Store is a string key-value area.
//
// Get reports ok=false for absent keys. Removing an absent key is not an error.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Entry is a stored key with its value, as listed by [SQLiteStore.List] and [MemoryStore.List].
type Entry struct {
	Scope     Scope     `json:"scope"`
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MemoryStore is a [Store] held in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	scope   Scope
	entries map[string]Entry
}

// NewMemoryStore creates an empty [MemoryStore] labelled with scope.
func NewMemoryStore(scope Scope) *MemoryStore {
	return &MemoryStore{scope: scope, entries: make(map[string]Entry)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	return e.Value, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = Entry{Scope: s.scope, Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// List returns every entry ordered by key.
func (s *MemoryStore) List(_ context.Context) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries, nil
}

// Clear removes every entry.
func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.entries)
	return nil
}

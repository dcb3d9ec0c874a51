package watchlist

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/desertthunder/flickx/internal/models"
	"github.com/desertthunder/flickx/internal/storage"
	tu "github.com/desertthunder/flickx/internal/testing"
)

func movie(id int, title string) models.Movie {
	return models.Movie{ID: id, Title: title, PosterPath: "/p.jpg", VoteAverage: 7.5}
}

func ids(items []models.Movie) []int {
	out := make([]int, len(items))
	for i, m := range items {
		out[i] = m.ID
	}
	return out
}

func persistedLen(t *testing.T, backend storage.Store) int {
	t.Helper()
	s := New(backend, nil)
	if err := s.Hydrate(context.Background()); err != nil {
		t.Fatalf("Hydrate() error = %v", err)
	}
	return s.Len()
}

func TestStore(t *testing.T) {
	ctx := context.Background()

	t.Run("Add Is Idempotent", func(t *testing.T) {
		s := New(storage.NewMemoryStore(storage.ScopeLocal), nil)

		if err := s.Add(ctx, movie(5, "Five")); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
		v := s.Version()
		if err := s.Add(ctx, movie(5, "Five again")); err != nil {
			t.Fatalf("Add() error = %v", err)
		}

		if !s.Contains(5) || s.Len() != 1 {
			t.Fatalf("expected one entry for id 5, got %v", ids(s.Items()))
		}
		if s.Items()[0].Title != "Five" {
			t.Error("first insertion should win")
		}
		if s.Version() != v {
			t.Error("duplicate add should not publish a new snapshot")
		}

		if err := s.Remove(ctx, 5); err != nil {
			t.Fatalf("Remove() error = %v", err)
		}
		if s.Contains(5) {
			t.Error("expected id 5 to be removed")
		}
	})

	t.Run("Insertion Order", func(t *testing.T) {
		s := New(storage.NewMemoryStore(storage.ScopeLocal), nil)
		for _, id := range []int{3, 1, 2} {
			_ = s.Add(ctx, movie(id, ""))
		}
		if got := ids(s.Items()); got[0] != 3 || got[1] != 1 || got[2] != 2 {
			t.Errorf("expected insertion order [3 1 2], got %v", got)
		}
	})

	t.Run("Remove Missing Is No-op", func(t *testing.T) {
		backend := storage.NewMemoryStore(storage.ScopeLocal)
		s := New(backend, nil)

		if err := s.Remove(ctx, 42); err != nil {
			t.Fatalf("Remove() error = %v", err)
		}
		if persistedLen(t, backend) != 0 {
			t.Error("expected empty persisted list")
		}

		_ = s.Add(ctx, movie(1, "One"))
		v := s.Version()
		if err := s.Remove(ctx, 42); err != nil {
			t.Fatalf("Remove() error = %v", err)
		}
		if s.Version() != v || persistedLen(t, backend) != 1 {
			t.Error("removing an absent id should change nothing")
		}
	})

	t.Run("Round Trip Across Restart", func(t *testing.T) {
		backend := storage.NewMemoryStore(storage.ScopeLocal)
		s := New(backend, nil)
		_ = s.Add(ctx, movie(10, "A"))
		_ = s.Add(ctx, movie(20, "B"))

		restarted := New(backend, nil)
		if err := restarted.Hydrate(ctx); err != nil {
			t.Fatalf("Hydrate() error = %v", err)
		}

		items := restarted.Items()
		if len(items) != 2 || items[0].ID != 10 || items[1].ID != 20 {
			t.Fatalf("expected [10 20], got %v", ids(items))
		}
		if items[0].Title != "A" || items[0].PosterPath != "/p.jpg" || items[0].VoteAverage != 7.5 {
			t.Errorf("expected record to be stored verbatim, got %+v", items[0])
		}
	})

	t.Run("Hydrate Missing Or Malformed", func(t *testing.T) {
		tc := []struct {
			name  string
			value string
			set   bool
		}{
			{name: "missing"},
			{name: "malformed", value: "{oops", set: true},
			{name: "wrong shape", value: `{"id":1}`, set: true},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				backend := storage.NewMemoryStore(storage.ScopeLocal)
				if tt.set {
					_ = backend.Set(ctx, Key, tt.value)
				}
				s := New(backend, nil)
				if err := s.Hydrate(ctx); err != nil {
					t.Fatalf("Hydrate() error = %v", err)
				}
				if s.Len() != 0 {
					t.Errorf("expected empty list, got %d", s.Len())
				}
			})
		}
	})

	t.Run("Hydrate Drops Duplicate IDs", func(t *testing.T) {
		backend := storage.NewMemoryStore(storage.ScopeLocal)
		_ = backend.Set(ctx, Key, `[{"id":1,"title":"first"},{"id":1,"title":"second"},{"id":2}]`)
		s := New(backend, nil)
		_ = s.Hydrate(ctx)
		if got := ids(s.Items()); len(got) != 2 || s.Items()[0].Title != "first" {
			t.Errorf("expected first occurrence kept, got %v", s.Items())
		}
	})

	t.Run("Hydrate Read Error", func(t *testing.T) {
		s := New(tu.NewFailingStore(errors.New("io")), nil)
		if err := s.Hydrate(ctx); err == nil {
			t.Error("expected read error")
		}
		if s.Len() != 0 {
			t.Error("expected empty list after failed read")
		}
	})

	t.Run("Persist Failure Does Not Publish", func(t *testing.T) {
		s := New(tu.NewFailingStore(errors.New("disk full")), nil)
		v := s.Version()

		if err := s.Add(ctx, movie(1, "One")); err == nil {
			t.Fatal("expected persist error")
		}
		if s.Contains(1) || s.Version() != v {
			t.Error("failed add must not be visible")
		}
	})

	t.Run("Snapshots Are Immutable", func(t *testing.T) {
		s := New(storage.NewMemoryStore(storage.ScopeLocal), nil)
		_ = s.Add(ctx, movie(1, "One"))
		before := s.Snapshot()

		_ = s.Add(ctx, movie(2, "Two"))
		_ = s.Remove(ctx, 1)

		if len(before.Items) != 1 || before.Items[0].ID != 1 {
			t.Errorf("old snapshot changed: %v", ids(before.Items))
		}
		if after := s.Snapshot(); after == before || after.Version <= before.Version {
			t.Error("expected a new snapshot with a higher version")
		}

		items := s.Items()
		items[0].Title = "mutated"
		if s.Items()[0].Title == "mutated" {
			t.Error("Items should return a copy")
		}
	})

	t.Run("Toggle", func(t *testing.T) {
		s := New(storage.NewMemoryStore(storage.ScopeLocal), nil)
		in, err := s.Toggle(ctx, movie(7, "Seven"))
		if err != nil || !in {
			t.Fatalf("expected toggle to add, got %v %v", in, err)
		}
		in, err = s.Toggle(ctx, movie(7, "Seven"))
		if err != nil || in {
			t.Fatalf("expected toggle to remove, got %v %v", in, err)
		}
	})

	t.Run("Concurrent Adds", func(t *testing.T) {
		s := New(storage.NewMemoryStore(storage.ScopeLocal), nil)
		var wg sync.WaitGroup
		for i := range 50 {
			wg.Add(1)
			go func(id int) {
				defer wg.Done()
				_ = s.Add(ctx, movie(id%10, ""))
			}(i)
		}
		wg.Wait()

		if s.Len() != 10 {
			t.Errorf("expected 10 unique entries, got %d", s.Len())
		}
		if s.Version() != 10 {
			t.Errorf("expected one version per distinct add, got %d", s.Version())
		}
	})
}

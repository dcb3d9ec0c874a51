package session

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/flickx/internal/models"
	"github.com/desertthunder/flickx/internal/shared"
	"github.com/desertthunder/flickx/internal/storage"
	tu "github.com/desertthunder/flickx/internal/testing"
)

type fixture struct {
	short *storage.MemoryStore
	long  *storage.MemoryStore
	now   time.Time
	m     *Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		short: storage.NewMemoryStore(storage.ScopeSession),
		long:  storage.NewMemoryStore(storage.ScopeLocal),
		now:   time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC),
	}
	f.m = f.manager()
	return f
}

func (f *fixture) manager() *Manager {
	return NewManager(f.short, f.long, ManagerOpts{
		LoginDelay: -1,
		Now:        func() time.Time { return f.now },
		NewID:      func() string { return "generated-id" },
	})
}

func (f *fixture) snapshot(t *testing.T) [2][]storage.Entry {
	t.Helper()
	ctx := context.Background()
	s, err := f.short.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	l, err := f.long.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	return [2][]storage.Entry{s, l}
}

func TestManagerLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("Admin Succeeds", func(t *testing.T) {
		f := newFixture(t)

		id, err := f.m.Login(ctx, "admin@example.com", "secret1")
		if err != nil {
			t.Fatalf("Login() error = %v", err)
		}
		if id.Role != models.RoleAdmin {
			t.Errorf("expected admin role, got %s", id.Role)
		}
		if !f.m.IsAuthenticated() || !f.m.IsAdmin() {
			t.Error("expected authenticated admin")
		}
		if !f.m.HasRole(models.RoleAdmin) || f.m.HasRole(models.RoleUser) {
			t.Error("HasRole mismatch for admin")
		}

		token, ok, _ := f.short.Get(ctx, TokenKey)
		if !ok {
			t.Fatal("expected token in short-lived store")
		}
		claims, err := DecodeToken(token)
		if err != nil || claims.Subject != "1" {
			t.Errorf("unexpected stored token claims %+v, err %v", claims, err)
		}

		raw, ok, _ := f.long.Get(ctx, IdentityKey)
		if !ok {
			t.Fatal("expected identity in long-lived store")
		}
		var stored models.Identity
		if err := json.Unmarshal([]byte(raw), &stored); err != nil || stored != id {
			t.Errorf("stored identity %+v does not match %+v (err %v)", stored, id, err)
		}
	})

	t.Run("Standard User Is Not Admin", func(t *testing.T) {
		f := newFixture(t)
		if _, err := f.m.Login(ctx, "user@example.com", "password"); err != nil {
			t.Fatalf("Login() error = %v", err)
		}
		if f.m.IsAdmin() {
			t.Error("standard user should not be admin")
		}
		if !f.m.HasRole(models.RoleUser) {
			t.Error("expected user role")
		}
	})

	t.Run("Rejections", func(t *testing.T) {
		tc := []struct {
			name     string
			email    string
			password string
		}{
			{name: "short secret", email: "admin@example.com", password: "abc"},
			{name: "five characters", email: "user@example.com", password: "12345"},
			{name: "unknown email", email: "nobody@example.com", password: "secret1"},
			{name: "case differs", email: "Admin@example.com", password: "secret1"},
			{name: "five runes multibyte", email: "admin@example.com", password: "ééééé"},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				f := newFixture(t)
				before := f.snapshot(t)

				_, err := f.m.Login(ctx, tt.email, tt.password)

				var serr *Error
				if !errors.As(err, &serr) {
					t.Fatalf("expected *Error, got %v", err)
				}
				if serr.Reason != ReasonInvalidCredentials {
					t.Errorf("expected %q, got %q", ReasonInvalidCredentials, serr.Reason)
				}
				if !errors.Is(err, shared.ErrInvalidCredentials) {
					t.Error("expected error to unwrap to ErrInvalidCredentials")
				}
				if f.m.IsAuthenticated() {
					t.Error("failed login must not authenticate")
				}
				if got := f.m.LastError(); got == nil || got.Reason != ReasonInvalidCredentials {
					t.Errorf("expected last error to be recorded, got %v", got)
				}
				if after := f.snapshot(t); !reflect.DeepEqual(before, after) {
					t.Error("failed login must not touch storage")
				}
			})
		}
	})

	t.Run("Six Runes Accepted", func(t *testing.T) {
		f := newFixture(t)
		if _, err := f.m.Login(ctx, "admin@example.com", "éééééé"); err != nil {
			t.Errorf("expected six multibyte characters to pass, got %v", err)
		}
	})

	t.Run("Success Clears Last Error", func(t *testing.T) {
		f := newFixture(t)
		_, _ = f.m.Login(ctx, "admin@example.com", "abc")
		if f.m.LastError() == nil {
			t.Fatal("expected last error")
		}
		if _, err := f.m.Login(ctx, "admin@example.com", "secret1"); err != nil {
			t.Fatalf("Login() error = %v", err)
		}
		if f.m.LastError() != nil {
			t.Error("expected last error to be cleared")
		}
	})

	t.Run("Failure Keeps Prior Session", func(t *testing.T) {
		f := newFixture(t)
		if _, err := f.m.Login(ctx, "user@example.com", "password"); err != nil {
			t.Fatalf("Login() error = %v", err)
		}
		_, _ = f.m.Login(ctx, "admin@example.com", "abc")

		id, ok := f.m.Identity()
		if !ok || id.Email != "user@example.com" {
			t.Errorf("expected prior identity to survive, got %+v ok=%v", id, ok)
		}
	})

	t.Run("ClearError", func(t *testing.T) {
		f := newFixture(t)
		_, _ = f.m.Login(ctx, "admin@example.com", "abc")
		f.m.ClearError()
		if f.m.LastError() != nil {
			t.Error("expected ClearError to empty the slot")
		}
	})
}

func TestManagerLoginDelay(t *testing.T) {
	t.Run("Cancelled Wait Fails Without Persisting", func(t *testing.T) {
		short := storage.NewMemoryStore(storage.ScopeSession)
		long := storage.NewMemoryStore(storage.ScopeLocal)
		m := NewManager(short, long, ManagerOpts{LoginDelay: time.Hour})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := m.Login(ctx, "admin@example.com", "secret1")
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if m.IsAuthenticated() {
			t.Error("cancelled login must not authenticate")
		}
		if _, ok, _ := short.Get(context.Background(), TokenKey); ok {
			t.Error("cancelled login must not persist a token")
		}
	})

	t.Run("Default Delay Applied", func(t *testing.T) {
		m := NewManager(storage.NewMemoryStore(storage.ScopeSession), storage.NewMemoryStore(storage.ScopeLocal), ManagerOpts{})
		if m.delay != DefaultLoginDelay {
			t.Errorf("expected default delay %v, got %v", DefaultLoginDelay, m.delay)
		}
	})

	t.Run("Short Delay Completes", func(t *testing.T) {
		m := NewManager(storage.NewMemoryStore(storage.ScopeSession), storage.NewMemoryStore(storage.ScopeLocal), ManagerOpts{LoginDelay: time.Millisecond})
		if _, err := m.Login(context.Background(), "user@example.com", "password"); err != nil {
			t.Errorf("Login() error = %v", err)
		}
	})
}

func TestManagerRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("Succeeds", func(t *testing.T) {
		f := newFixture(t)
		id, err := f.m.Register(ctx, "new@example.com", "abc123", "Name")
		if err != nil {
			t.Fatalf("Register() error = %v", err)
		}

		want := models.Identity{ID: "generated-id", Email: "new@example.com", Name: "Name", Role: models.RoleUser}
		if id != want {
			t.Errorf("got %+v, want %+v", id, want)
		}
		if !f.m.IsAuthenticated() || f.m.IsAdmin() {
			t.Error("expected authenticated standard user")
		}
		if _, ok, _ := f.short.Get(ctx, TokenKey); !ok {
			t.Error("expected token to be persisted")
		}
	})

	t.Run("Default IDs Are Unique", func(t *testing.T) {
		m := NewManager(storage.NewMemoryStore(storage.ScopeSession), storage.NewMemoryStore(storage.ScopeLocal), ManagerOpts{LoginDelay: -1})
		a, _ := m.Register(ctx, "a@example.com", "abc123", "A")
		b, _ := m.Register(ctx, "b@example.com", "abc123", "B")
		if a.ID == "" || a.ID == b.ID {
			t.Errorf("expected distinct ids, got %q and %q", a.ID, b.ID)
		}
	})

	t.Run("Rejections", func(t *testing.T) {
		tc := []struct {
			name     string
			email    string
			password string
			reason   string
			sentinel error
		}{
			{name: "no at sign", email: "nouser", password: "abc123", reason: ReasonInvalidEmail, sentinel: shared.ErrInvalidEmail},
			{name: "short password", email: "a@b", password: "abc", reason: ReasonPasswordTooShort, sentinel: shared.ErrPasswordTooShort},
			{name: "email checked first", email: "nouser", password: "abc", reason: ReasonInvalidEmail, sentinel: shared.ErrInvalidEmail},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				f := newFixture(t)
				if _, err := f.m.Login(ctx, "user@example.com", "password"); err != nil {
					t.Fatalf("Login() error = %v", err)
				}
				before := f.snapshot(t)

				_, err := f.m.Register(ctx, tt.email, tt.password, "Name")
				if err == nil || err.Error() != tt.reason {
					t.Errorf("expected reason %q, got %v", tt.reason, err)
				}
				if !errors.Is(err, tt.sentinel) {
					t.Errorf("expected %v, got %v", tt.sentinel, err)
				}
				if after := f.snapshot(t); !reflect.DeepEqual(before, after) {
					t.Error("failed registration must leave storage byte-identical")
				}
			})
		}
	})

	t.Run("Storage Failure Rolls Back Token", func(t *testing.T) {
		short := storage.NewMemoryStore(storage.ScopeSession)
		long := tu.NewFailingStore(errors.New("disk full"), IdentityKey)
		m := NewManager(short, long, ManagerOpts{LoginDelay: -1})

		if _, err := m.Register(ctx, "new@example.com", "abc123", "Name"); err == nil {
			t.Fatal("expected storage error")
		}
		if _, ok, _ := short.Get(ctx, TokenKey); ok {
			t.Error("token should be removed when the identity cannot be stored")
		}
		if m.IsAuthenticated() {
			t.Error("manager should stay unauthenticated")
		}
	})
}

func TestManagerLogout(t *testing.T) {
	ctx := context.Background()

	t.Run("Clears Everything", func(t *testing.T) {
		f := newFixture(t)
		_, _ = f.m.Login(ctx, "admin@example.com", "secret1")
		_, _ = f.m.Register(ctx, "bad", "abc123", "x")

		if err := f.m.Logout(ctx); err != nil {
			t.Fatalf("Logout() error = %v", err)
		}
		if f.m.IsAuthenticated() || f.m.State() != StateUnauthenticated {
			t.Error("expected unauthenticated after logout")
		}
		if f.m.LastError() != nil {
			t.Error("expected logout to clear the last error")
		}
		if _, ok := f.m.Identity(); ok {
			t.Error("expected no identity after logout")
		}
		for _, entries := range f.snapshot(t) {
			if len(entries) != 0 {
				t.Errorf("expected empty storage, got %v", entries)
			}
		}
	})

	t.Run("Idempotent", func(t *testing.T) {
		f := newFixture(t)
		for range 3 {
			if err := f.m.Logout(ctx); err != nil {
				t.Fatalf("Logout() error = %v", err)
			}
		}
	})

	t.Run("Storage Errors Still Clear Memory", func(t *testing.T) {
		fail := tu.NewFailingStore(errors.New("boom"), TokenKey)
		m := NewManager(fail, storage.NewMemoryStore(storage.ScopeLocal), ManagerOpts{LoginDelay: -1})
		m.state = StateAuthenticated
		m.identity = &models.Identity{ID: "1", Email: "admin@example.com", Role: models.RoleAdmin}

		if err := m.Logout(ctx); err == nil {
			t.Error("expected storage error to be returned")
		}
		if m.IsAuthenticated() {
			t.Error("expected in-memory session to be cleared")
		}
	})
}

func TestManagerRehydrate(t *testing.T) {
	ctx := context.Background()

	t.Run("Restores Valid Session", func(t *testing.T) {
		f := newFixture(t)
		if _, err := f.m.Login(ctx, "admin@example.com", "secret1"); err != nil {
			t.Fatalf("Login() error = %v", err)
		}

		restarted := f.manager()
		if err := restarted.Rehydrate(ctx); err != nil {
			t.Fatalf("Rehydrate() error = %v", err)
		}
		if !restarted.IsAdmin() {
			t.Error("expected admin session to be restored")
		}
		if _, ok := restarted.Claims(); !ok {
			t.Error("expected claims to be available")
		}
	})

	t.Run("Nothing Stored", func(t *testing.T) {
		f := newFixture(t)
		if err := f.m.Rehydrate(ctx); err != nil {
			t.Fatalf("Rehydrate() error = %v", err)
		}
		if f.m.State() != StateUnauthenticated {
			t.Errorf("expected unauthenticated, got %s", f.m.State())
		}
	})

	t.Run("Only Identity Stored Is Left Alone", func(t *testing.T) {
		f := newFixture(t)
		_ = f.long.Set(ctx, IdentityKey, `{"id":"2","email":"user@example.com","username":"Regular User","role":"user"}`)

		if err := f.m.Rehydrate(ctx); err != nil {
			t.Fatalf("Rehydrate() error = %v", err)
		}
		if f.m.IsAuthenticated() {
			t.Error("expected unauthenticated without a token")
		}
		if _, ok, _ := f.long.Get(ctx, IdentityKey); !ok {
			t.Error("identity without token should not be removed")
		}
	})

	t.Run("Expired Token Logs Out", func(t *testing.T) {
		f := newFixture(t)
		_, _ = f.m.Login(ctx, "user@example.com", "password")

		f.now = f.now.Add(TokenTTL)
		restarted := f.manager()
		if err := restarted.Rehydrate(ctx); err != nil {
			t.Fatalf("Rehydrate() error = %v", err)
		}
		if restarted.IsAuthenticated() {
			t.Error("expired token must not authenticate")
		}
		for _, entries := range f.snapshot(t) {
			if len(entries) != 0 {
				t.Errorf("expected both mirrors cleared, got %v", entries)
			}
		}
	})

	t.Run("Malformed Token Logs Out", func(t *testing.T) {
		f := newFixture(t)
		_ = f.short.Set(ctx, TokenKey, "not-a-token")
		_ = f.long.Set(ctx, IdentityKey, `{"id":"2","email":"user@example.com","username":"Regular User","role":"user"}`)

		if err := f.m.Rehydrate(ctx); err != nil {
			t.Fatalf("Rehydrate() error = %v", err)
		}
		if f.m.IsAuthenticated() {
			t.Error("malformed token must not authenticate")
		}
		if _, ok, _ := f.long.Get(ctx, IdentityKey); ok {
			t.Error("expected identity mirror to be cleared")
		}
	})

	t.Run("Malformed Identity Logs Out", func(t *testing.T) {
		f := newFixture(t)
		token, _ := IssueToken(models.Identity{ID: "2", Email: "user@example.com", Role: models.RoleUser}, f.now)
		_ = f.short.Set(ctx, TokenKey, token)
		_ = f.long.Set(ctx, IdentityKey, "{not json")

		if err := f.m.Rehydrate(ctx); err != nil {
			t.Fatalf("Rehydrate() error = %v", err)
		}
		if f.m.IsAuthenticated() {
			t.Error("malformed identity must not authenticate")
		}
		if _, ok, _ := f.short.Get(ctx, TokenKey); ok {
			t.Error("expected token mirror to be cleared")
		}
	})

	t.Run("Read Error Leaves Loading", func(t *testing.T) {
		m := NewManager(tu.NewFailingStore(errors.New("io")), storage.NewMemoryStore(storage.ScopeLocal), ManagerOpts{LoginDelay: -1})
		if err := m.Rehydrate(ctx); err == nil {
			t.Error("expected read error")
		}
		if m.State() != StateUnauthenticated {
			t.Errorf("expected unauthenticated, got %s", m.State())
		}
	})
}

func TestManagerRequire(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	if _, err := f.m.Require(); !errors.Is(err, shared.ErrNotAuthenticated) {
		t.Errorf("expected ErrNotAuthenticated, got %v", err)
	}
	if _, err := f.m.RequireAdmin(); !errors.Is(err, shared.ErrNotAuthenticated) {
		t.Errorf("expected ErrNotAuthenticated, got %v", err)
	}

	_, _ = f.m.Login(ctx, "user@example.com", "password")
	if _, err := f.m.RequireAdmin(); !errors.Is(err, shared.ErrAccessDenied) {
		t.Errorf("expected ErrAccessDenied, got %v", err)
	}

	_, _ = f.m.Login(ctx, "admin@example.com", "password")
	if _, err := f.m.RequireAdmin(); err != nil {
		t.Errorf("RequireAdmin() error = %v", err)
	}
}

func TestManagerConcurrentLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for _, email := range []string{"admin@example.com", "user@example.com"} {
		wg.Add(1)
		go func(email string) {
			defer wg.Done()
			_, _ = f.m.Login(ctx, email, "secret1")
		}(email)
	}
	wg.Wait()

	id, ok := f.m.Identity()
	if !ok {
		t.Fatal("expected one of the logins to win")
	}
	raw, _, _ := f.long.Get(ctx, IdentityKey)
	var stored models.Identity
	_ = json.Unmarshal([]byte(raw), &stored)
	if stored != id {
		t.Errorf("memory (%s) and storage (%s) disagree", id.Email, stored.Email)
	}
}

func TestStateString(t *testing.T) {
	if StateLoading.String() != "loading" || StateAuthenticated.String() != "authenticated" || StateUnauthenticated.String() != "unauthenticated" {
		t.Error("unexpected state names")
	}
}

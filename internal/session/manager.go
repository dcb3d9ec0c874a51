package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/flickx/internal/models"
	"github.com/desertthunder/flickx/internal/shared"
	"github.com/desertthunder/flickx/internal/storage"
)

// Persisted keys.
const (
	TokenKey    = "authToken" // short-lived area
	IdentityKey = "user"      // long-lived area
)

// DefaultLoginDelay is the simulated latency of Login and Register.
const DefaultLoginDelay = 500 * time.Millisecond

// State is the lifecycle position of a [Manager].
type State int

const (
	StateUnauthenticated State = iota
	StateLoading
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateLoading:
		return "loading"
	case StateAuthenticated:
		return "authenticated"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ManagerOpts configures a [Manager]. Zero values select the defaults.
type ManagerOpts struct {
	Directory  *Directory
	LoginDelay time.Duration
	Logger     *log.Logger
	Now        func() time.Time
	NewID      func() string
}

// Manager owns the current identity and its local session token.
//
// Overlapping Login and Register calls are not coordinated: whichever finishes its delay last wins.
type Manager struct {
	short storage.Store
	long  storage.Store

	dir    *Directory
	delay  time.Duration
	logger *log.Logger
	now    func() time.Time
	newID  func() string

	mu       sync.RWMutex
	state    State
	identity *models.Identity
	claims   *Claims
	lastErr  *Error
}

// NewManager creates an unauthenticated [Manager] persisting the token to short and the identity to long.
//
// A negative LoginDelay disables the delay.
func NewManager(short, long storage.Store, opts ManagerOpts) *Manager {
	m := &Manager{
		short:  short,
		long:   long,
		dir:    opts.Directory,
		delay:  opts.LoginDelay,
		logger: opts.Logger,
		now:    opts.Now,
		newID:  opts.NewID,
	}

	if m.dir == nil {
		m.dir = DefaultDirectory()
	}
	if m.delay == 0 {
		m.delay = DefaultLoginDelay
	} else if m.delay < 0 {
		m.delay = 0
	}
	if m.logger == nil {
		m.logger = shared.NewDiscardLogger()
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.newID == nil {
		m.newID = shared.GenerateID
	}
	return m
}

// Directory returns the identities Login accepts.
func (m *Manager) Directory() *Directory {
	return m.dir
}

// Rehydrate restores a previous session from storage.
//
// Nothing happens unless both the token and the identity are stored. A token that does not decode,
// has expired, or is paired with an unreadable identity triggers [Manager.Logout]. The manager always
// leaves the loading state; a storage read error is returned after doing so.
func (m *Manager) Rehydrate(ctx context.Context) error {
	m.mu.Lock()
	m.state = StateLoading
	m.mu.Unlock()

	token, hasToken, err := m.short.Get(ctx, TokenKey)
	if err != nil {
		m.settle()
		return fmt.Errorf("failed to read session token: %w", err)
	}
	raw, hasIdentity, err := m.long.Get(ctx, IdentityKey)
	if err != nil {
		m.settle()
		return fmt.Errorf("failed to read stored identity: %w", err)
	}

	if !hasToken || !hasIdentity {
		m.settle()
		m.logger.Debug("no stored session")
		return nil
	}

	var id models.Identity
	if err := json.Unmarshal([]byte(raw), &id); err != nil || id.Validate() != nil {
		m.logger.Warn("stored identity unreadable, logging out")
		return m.Logout(ctx)
	}

	claims, err := DecodeToken(token)
	if err != nil {
		m.logger.Warn("stored session token malformed, logging out", "error", err)
		return m.Logout(ctx)
	}
	if !claims.ValidAt(m.now()) {
		m.logger.Info("stored session expired, logging out", "email", id.Email, "expired_at", claims.Expiry())
		return m.Logout(ctx)
	}

	m.mu.Lock()
	m.state = StateAuthenticated
	m.identity = &id
	m.claims = claims
	m.mu.Unlock()

	m.logger.Info("session restored", "email", id.Email, "role", id.Role)
	return nil
}

// settle leaves the loading state without touching storage.
func (m *Manager) settle() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateLoading {
		m.state = StateUnauthenticated
	}
}

// Login signs in as the directory identity registered under email.
//
// Only the secret's length is checked. A validation failure is returned as an [*Error] with
// [ReasonInvalidCredentials], is recorded as the last error, and leaves storage untouched.
func (m *Manager) Login(ctx context.Context, email, password string) (models.Identity, error) {
	if err := m.wait(ctx); err != nil {
		return models.Identity{}, err
	}

	id, ok := m.dir.Lookup(email)
	if !ok || utf8.RuneCountInString(password) < MinPasswordLength {
		m.logger.Info("login rejected", "email", email)
		return models.Identity{}, m.fail(errInvalidCredentials())
	}

	if err := m.establish(ctx, id); err != nil {
		return models.Identity{}, err
	}
	m.logger.Info("login succeeded", "email", id.Email, "role", id.Role)
	return id, nil
}

// Register creates a standard identity with a fresh id and signs in as it.
//
// The email must contain "@" and the secret must be at least [MinPasswordLength] characters,
// checked in that order. Failures persist nothing.
func (m *Manager) Register(ctx context.Context, email, password, name string) (models.Identity, error) {
	if err := m.wait(ctx); err != nil {
		return models.Identity{}, err
	}

	if !strings.Contains(email, "@") {
		m.logger.Info("registration rejected", "reason", ReasonInvalidEmail)
		return models.Identity{}, m.fail(errInvalidEmail())
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		m.logger.Info("registration rejected", "email", email, "reason", ReasonPasswordTooShort)
		return models.Identity{}, m.fail(errPasswordTooShort())
	}

	id := models.Identity{ID: m.newID(), Email: email, Name: name, Role: models.RoleUser}
	if err := m.establish(ctx, id); err != nil {
		return models.Identity{}, err
	}
	m.logger.Info("registration succeeded", "email", id.Email, "id", id.ID)
	return id, nil
}

// wait sleeps for the login delay, returning early with the context error if ctx ends first.
func (m *Manager) wait(ctx context.Context) error {
	if m.delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(m.delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("login aborted: %w", ctx.Err())
	}
}

func (m *Manager) fail(e *Error) *Error {
	m.mu.Lock()
	m.lastErr = e
	m.mu.Unlock()
	return e
}

// establish issues a token for id, persists both mirrors and marks the manager authenticated.
func (m *Manager) establish(ctx context.Context, id models.Identity) error {
	token, err := IssueToken(id, m.now())
	if err != nil {
		return err
	}
	claims, err := DecodeToken(token)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("failed to encode identity: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.short.Set(ctx, TokenKey, token); err != nil {
		return fmt.Errorf("failed to store session token: %w", err)
	}
	if err := m.long.Set(ctx, IdentityKey, string(raw)); err != nil {
		if rmErr := m.short.Remove(ctx, TokenKey); rmErr != nil {
			m.logger.Error("failed to roll back session token", "error", rmErr)
		}
		return fmt.Errorf("failed to store identity: %w", err)
	}

	m.state = StateAuthenticated
	m.identity = &id
	m.claims = claims
	m.lastErr = nil
	return nil
}

// Logout removes both persisted mirrors and forgets the identity and last error. It is safe from any state.
//
// In-memory state is always cleared; storage errors are joined and returned.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	errs := []error{}
	if err := m.short.Remove(ctx, TokenKey); err != nil {
		errs = append(errs, fmt.Errorf("failed to remove session token: %w", err))
	}
	if err := m.long.Remove(ctx, IdentityKey); err != nil {
		errs = append(errs, fmt.Errorf("failed to remove identity: %w", err))
	}

	if m.identity != nil {
		m.logger.Info("logged out", "email", m.identity.Email)
	}
	m.state = StateUnauthenticated
	m.identity = nil
	m.claims = nil
	m.lastErr = nil
	return errors.Join(errs...)
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Loading reports whether Rehydrate is in progress.
func (m *Manager) Loading() bool {
	return m.State() == StateLoading
}

// IsAuthenticated reports whether an identity is signed in.
func (m *Manager) IsAuthenticated() bool {
	return m.State() == StateAuthenticated
}

// IsAdmin reports whether the signed-in identity is an administrator.
func (m *Manager) IsAdmin() bool {
	return m.HasRole(models.RoleAdmin)
}

// HasRole reports whether an identity is signed in with role r.
func (m *Manager) HasRole(r models.Role) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state == StateAuthenticated && m.identity != nil && m.identity.Role == r
}

// Identity returns the signed-in identity.
func (m *Manager) Identity() (models.Identity, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.state != StateAuthenticated || m.identity == nil {
		return models.Identity{}, false
	}
	return *m.identity, true
}

// Claims returns the decoded payload of the current token.
func (m *Manager) Claims() (Claims, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.state != StateAuthenticated || m.claims == nil {
		return Claims{}, false
	}
	return *m.claims, true
}

// LastError returns the most recent Login or Register failure, or nil.
func (m *Manager) LastError() *Error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}

// ClearError empties the last error slot.
func (m *Manager) ClearError() {
	m.mu.Lock()
	m.lastErr = nil
	m.mu.Unlock()
}

// Require returns [shared.ErrNotAuthenticated] unless an identity is signed in.
func (m *Manager) Require() (models.Identity, error) {
	id, ok := m.Identity()
	if !ok {
		return models.Identity{}, shared.ErrNotAuthenticated
	}
	return id, nil
}

// RequireAdmin is [Manager.Require] plus [shared.ErrAccessDenied] for non-administrators.
func (m *Manager) RequireAdmin() (models.Identity, error) {
	id, err := m.Require()
	if err != nil {
		return id, err
	}
	if !id.IsAdmin() {
		return id, shared.ErrAccessDenied
	}
	return id, nil
}

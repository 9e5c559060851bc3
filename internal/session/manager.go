// Package session owns the authenticated-user lifecycle: identity storage,
// token-issuance bookkeeping, expiry detection, and periodic re-validation.
//
// The manager is a single authoritative state machine:
//
//	Uninitialized → Loading → {Authenticated | Anonymous}
//
// Authenticated drops back to Anonymous on explicit logout or when the
// periodic expiry check finds the token too old. The identity record and its
// issuance timestamp live in the durable store under the "user" and
// "token_issued_at" keys; the pair is written and cleared atomically, never
// one without the other.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/stuverflow/stuverflow-go/internal/common"
	"github.com/stuverflow/stuverflow-go/internal/dbx"
	"github.com/stuverflow/stuverflow-go/internal/logging"
	"github.com/stuverflow/stuverflow-go/internal/models"
	"github.com/stuverflow/stuverflow-go/internal/storage"
)

// State is the lifecycle state of the session manager.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateLoading       State = "loading"
	StateAuthenticated State = "authenticated"
	StateAnonymous     State = "anonymous"
)

const (
	// DefaultTTL is the session expiry threshold. The reference behavior is
	// "until explicit logout or token rejection", so the default is a long
	// soft bound; deployments override it via configuration.
	DefaultTTL = 720 * time.Hour

	// DefaultCheckInterval is how often the expiry watcher re-checks an
	// authenticated session.
	DefaultCheckInterval = 60 * time.Second
)

// Expired reports whether a token issued at issuedAt has outlived ttl as of
// now. Pure function; the manager and its tests share it.
func Expired(now, issuedAt time.Time, ttl time.Duration) bool {
	return now.Sub(issuedAt) > ttl
}

// Options tunes a Manager. Zero values fall back to defaults.
type Options struct {
	// TTL is the expiry threshold for the session token.
	TTL time.Duration
	// CheckInterval is the expiry watcher's polling period.
	CheckInterval time.Duration
	// OnExpire is invoked after an expiry-triggered logout. The UI layer uses
	// it to surface a "session expired" notice; the manager itself only flips
	// state and clears storage.
	OnExpire func()
	// Logger defaults to a discard logger.
	Logger logging.Logger
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Manager is the session/auth lifecycle manager. All methods are safe for
// concurrent use.
type Manager struct {
	db            *sql.DB
	ttl           time.Duration
	checkInterval time.Duration
	onExpire      func()
	log           logging.Logger
	now           func() time.Time

	mu       sync.Mutex
	state    State
	identity *models.Identity
	issuedAt time.Time
}

// NewManager builds a manager over the client database. Call Initialize
// before anything else.
func NewManager(db *sql.DB, opts Options) *Manager {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.CheckInterval <= 0 {
		opts.CheckInterval = DefaultCheckInterval
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewDiscard()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Manager{
		db:            db,
		ttl:           opts.TTL,
		checkInterval: opts.CheckInterval,
		onExpire:      opts.OnExpire,
		log:           opts.Logger,
		now:           opts.Now,
		state:         StateUninitialized,
	}
}

func (m *Manager) repo(tx dbx.DBTX) storage.Repository {
	return storage.NewSQLiteRepository(tx)
}

// Initialize reads the durable store and settles into Authenticated or
// Anonymous. A malformed record (bad JSON, missing or unparseable timestamp)
// is treated as "no identity": both keys are cleared together and the manager
// proceeds as Anonymous. Initialize never fails; storage errors are logged
// and swallowed so startup cannot be blocked by a corrupt local state file.
func (m *Manager) Initialize(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateLoading

	repo := m.repo(m.db)

	rawUser, err := repo.Get(ctx, storage.KeyUser)
	if err != nil {
		m.log.Warn(ctx, "failed to read stored identity", "error", err)
		m.state = StateAnonymous
		return
	}
	rawIssued, err := repo.Get(ctx, storage.KeyTokenIssuedAt)
	if err != nil {
		m.log.Warn(ctx, "failed to read token issuance timestamp", "error", err)
		m.state = StateAnonymous
		return
	}

	if rawUser == nil && rawIssued == nil {
		m.state = StateAnonymous
		return
	}

	identity, issuedAt, ok := parseStored(rawUser, rawIssued)
	if !ok {
		m.log.Warn(ctx, "stored session invalid, clearing", "have_user", rawUser != nil, "have_issued_at", rawIssued != nil)
		m.clearStoredLocked(ctx)
		m.state = StateAnonymous
		return
	}

	if Expired(m.now(), issuedAt, m.ttl) {
		m.log.Info(ctx, "stored session expired, clearing", "issued_at", issuedAt)
		m.clearStoredLocked(ctx)
		m.state = StateAnonymous
		return
	}

	m.identity = identity
	m.issuedAt = issuedAt
	m.state = StateAuthenticated
	m.log.Info(ctx, "session restored", "user", identity.Handle)
}

// parseStored validates the invariant that both keys must be present and
// parseable together.
func parseStored(rawUser, rawIssued []byte) (*models.Identity, time.Time, bool) {
	if rawUser == nil || rawIssued == nil {
		return nil, time.Time{}, false
	}
	var identity models.Identity
	if err := json.Unmarshal(rawUser, &identity); err != nil {
		return nil, time.Time{}, false
	}
	ms, err := strconv.ParseInt(string(rawIssued), 10, 64)
	if err != nil {
		return nil, time.Time{}, false
	}
	return &identity, time.UnixMilli(ms), true
}

// Login stores the identity verbatim, stamps the issuance timestamp, and
// transitions to Authenticated. The token format is not validated: the
// backend already authenticated the credentials. A missing token is tolerated
// but logged. An identity without an ID is rejected, as is calling Login
// before Initialize.
func (m *Manager) Login(ctx context.Context, identity models.Identity) error {
	if identity.ID == "" {
		return fmt.Errorf("login: identity has no id")
	}
	if identity.Token == "" {
		m.log.Warn(ctx, "login identity has no token", "user", identity.Handle)
	}

	raw, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == StateUninitialized || m.state == StateLoading {
		return fmt.Errorf("login: %w", common.ErrNotInitialized)
	}

	issuedAt := m.now()
	err = dbx.WithTx(ctx, m.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := m.repo(tx)
		if err := repo.Set(ctx, storage.KeyUser, raw); err != nil {
			return err
		}
		return repo.Set(ctx, storage.KeyTokenIssuedAt, []byte(strconv.FormatInt(issuedAt.UnixMilli(), 10)))
	})
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}

	m.identity = &identity
	m.issuedAt = issuedAt
	m.state = StateAuthenticated
	m.log.Info(ctx, "logged in", "user", identity.Handle)
	return nil
}

// Logout clears the identity from memory and durable storage. Idempotent:
// calling it while Anonymous is a no-op.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateAuthenticated {
		m.state = StateAnonymous
		return nil
	}

	if err := m.clearStoredLocked(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	m.identity = nil
	m.issuedAt = time.Time{}
	m.state = StateAnonymous
	m.log.Info(ctx, "logged out")
	return nil
}

// UpdateUser shallow-merges the patch into the current identity and
// re-persists it. The issuance timestamp is deliberately untouched: a profile
// edit must not silently extend session life. Calling while Anonymous is a
// silent no-op; no component should reach that state.
func (m *Manager) UpdateUser(ctx context.Context, patch models.IdentityPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateAuthenticated || m.identity == nil {
		m.log.Debug(ctx, "update ignored while anonymous")
		return nil
	}

	merged := patch.Apply(*m.identity)
	raw, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if err := m.repo(m.db).Set(ctx, storage.KeyUser, raw); err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	m.identity = &merged
	return nil
}

// clearStoredLocked removes both session keys in one transaction.
func (m *Manager) clearStoredLocked(ctx context.Context) error {
	return dbx.WithTx(ctx, m.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := m.repo(tx)
		if err := repo.Delete(ctx, storage.KeyUser); err != nil {
			return err
		}
		return repo.Delete(ctx, storage.KeyTokenIssuedAt)
	})
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// CurrentUser returns a copy of the authenticated identity, or nil.
func (m *Manager) CurrentUser() *models.Identity {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.identity == nil {
		return nil
	}
	cp := *m.identity
	return &cp
}

// Token implements api.TokenProvider. Returns "" while Anonymous.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.identity == nil {
		return ""
	}
	return m.identity.Token
}

// IsExpired reports whether the current session has outlived the TTL.
// Always true while Anonymous is not the convention here: an absent session
// is simply not expired, it does not exist.
func (m *Manager) IsExpired() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateAuthenticated {
		return false
	}
	return Expired(m.now(), m.issuedAt, m.ttl)
}

// checkExpiry performs one expiry re-check, flipping to Anonymous and
// clearing storage when the token has outlived the TTL.
func (m *Manager) checkExpiry(ctx context.Context) {
	m.mu.Lock()
	if m.state != StateAuthenticated || !Expired(m.now(), m.issuedAt, m.ttl) {
		m.mu.Unlock()
		return
	}

	if err := m.clearStoredLocked(ctx); err != nil {
		m.log.Error(ctx, "failed to clear expired session", "error", err)
	}
	m.identity = nil
	m.issuedAt = time.Time{}
	m.state = StateAnonymous
	onExpire := m.onExpire
	m.mu.Unlock()

	m.log.Info(ctx, "session expired")
	if onExpire != nil {
		onExpire()
	}
}

// StartExpiryWatcher blocks, re-checking expiry every CheckInterval until ctx
// is cancelled. Run it in a goroutine after Initialize.
func (m *Manager) StartExpiryWatcher(ctx context.Context) {
	ticker := time.NewTicker(m.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.checkExpiry(ctx)
		case <-ctx.Done():
			return
		}
	}
}

package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stuverflow/stuverflow-go/internal/common"
	"github.com/stuverflow/stuverflow-go/internal/models"
	"github.com/stuverflow/stuverflow-go/internal/storage"

	_ "modernc.org/sqlite"
)

// ---- helpers ----

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE state (
  key   TEXT PRIMARY KEY,
  value BLOB NOT NULL
);
`)
	require.NoError(t, err)
	return db
}

func insertState(t *testing.T, db *sql.DB, k string, v []byte) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO state(key,value) VALUES(?,?)`, k, v)
	require.NoError(t, err)
}

func stateValue(t *testing.T, db *sql.DB, k string) []byte {
	t.Helper()
	var v []byte
	err := db.QueryRow(`SELECT value FROM state WHERE key=?`, k).Scan(&v)
	if err == sql.ErrNoRows {
		return nil
	}
	require.NoError(t, err)
	return v
}

func testIdentity() models.Identity {
	return models.Identity{
		ID:          "u1",
		Name:        "Ada Lovelace",
		Handle:      "ada",
		Token:       "tok-abc",
		Institution: "Analytical Engine U",
		Interests:   []string{"mathematics"},
	}
}

// fixed clock helper; returns the clock func and a setter to advance it
func testClock(start time.Time) (func() time.Time, func(time.Duration)) {
	now := start
	return func() time.Time { return now }, func(d time.Duration) { now = now.Add(d) }
}

// ---- pure expiry ----

func TestExpired(t *testing.T) {
	base := time.Unix(1_700_000_000, 0)
	ttl := time.Hour

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{name: "fresh", now: base.Add(time.Minute), want: false},
		{name: "at threshold", now: base.Add(ttl), want: false},
		{name: "just past threshold", now: base.Add(ttl + time.Second), want: true},
		{name: "long past threshold", now: base.Add(48 * time.Hour), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Expired(tt.now, base, ttl))
		})
	}
}

// ---- lifecycle ----

func TestManager_InitializeEmptyStore(t *testing.T) {
	m := NewManager(setupDB(t), Options{})
	require.Equal(t, StateUninitialized, m.State())

	m.Initialize(context.Background())
	assert.Equal(t, StateAnonymous, m.State())
	assert.Nil(t, m.CurrentUser())
}

func TestManager_LoginRoundTrip(t *testing.T) {
	db := setupDB(t)
	m := NewManager(db, Options{})
	ctx := context.Background()
	m.Initialize(ctx)

	id := testIdentity()
	require.NoError(t, m.Login(ctx, id))

	assert.Equal(t, StateAuthenticated, m.State())
	got := m.CurrentUser()
	require.NotNil(t, got)
	if diff := cmp.Diff(id, *got); diff != "" {
		t.Fatalf("identity mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "tok-abc", m.Token())

	// both keys persisted together
	assert.NotNil(t, stateValue(t, db, storage.KeyUser))
	assert.NotNil(t, stateValue(t, db, storage.KeyTokenIssuedAt))
}

func TestManager_LoginBeforeInitializeRejected(t *testing.T) {
	m := NewManager(setupDB(t), Options{})

	err := m.Login(context.Background(), testIdentity())
	require.ErrorIs(t, err, common.ErrNotInitialized)
}

func TestManager_LoginRejectsMissingID(t *testing.T) {
	m := NewManager(setupDB(t), Options{})
	m.Initialize(context.Background())

	err := m.Login(context.Background(), models.Identity{Name: "nobody"})
	require.Error(t, err)
	assert.Equal(t, StateAnonymous, m.State())
}

func TestManager_LoginToleratesMissingToken(t *testing.T) {
	m := NewManager(setupDB(t), Options{})
	ctx := context.Background()
	m.Initialize(ctx)

	id := testIdentity()
	id.Token = ""
	require.NoError(t, m.Login(ctx, id))
	assert.Equal(t, StateAuthenticated, m.State())
	assert.Empty(t, m.Token())
}

func TestManager_LogoutClearsBothKeys(t *testing.T) {
	db := setupDB(t)
	m := NewManager(db, Options{})
	ctx := context.Background()
	m.Initialize(ctx)
	require.NoError(t, m.Login(ctx, testIdentity()))

	require.NoError(t, m.Logout(ctx))

	assert.Equal(t, StateAnonymous, m.State())
	assert.Nil(t, m.CurrentUser())
	assert.Nil(t, stateValue(t, db, storage.KeyUser))
	assert.Nil(t, stateValue(t, db, storage.KeyTokenIssuedAt))

	// idempotent
	require.NoError(t, m.Logout(ctx))
	assert.Equal(t, StateAnonymous, m.State())
}

func TestManager_UpdateUserMergeSemantics(t *testing.T) {
	db := setupDB(t)
	m := NewManager(db, Options{})
	ctx := context.Background()
	m.Initialize(ctx)
	require.NoError(t, m.Login(ctx, testIdentity()))

	issuedBefore := stateValue(t, db, storage.KeyTokenIssuedAt)

	name := "B"
	require.NoError(t, m.UpdateUser(ctx, models.IdentityPatch{Name: &name}))

	got := m.CurrentUser()
	require.NotNil(t, got)
	assert.Equal(t, "u1", got.ID, "unpatched fields preserved")
	assert.Equal(t, "B", got.Name)
	assert.Equal(t, "ada", got.Handle)
	assert.Equal(t, "tok-abc", got.Token)

	issuedAfter := stateValue(t, db, storage.KeyTokenIssuedAt)
	assert.Equal(t, issuedBefore, issuedAfter, "profile edit must not extend session life")
}

func TestManager_UpdateUserNoOpWhileAnonymous(t *testing.T) {
	db := setupDB(t)
	m := NewManager(db, Options{})
	ctx := context.Background()
	m.Initialize(ctx)

	name := "B"
	require.NoError(t, m.UpdateUser(ctx, models.IdentityPatch{Name: &name}))
	assert.Nil(t, m.CurrentUser())
	assert.Nil(t, stateValue(t, db, storage.KeyUser))
}

// ---- restore paths ----

func TestManager_InitializeRestoresValidSession(t *testing.T) {
	db := setupDB(t)
	id := testIdentity()
	insertState(t, db, storage.KeyUser, mustJSON(t, id))
	insertState(t, db, storage.KeyTokenIssuedAt, []byte(strconv.FormatInt(time.Now().UnixMilli(), 10)))

	m := NewManager(db, Options{})
	m.Initialize(context.Background())

	assert.Equal(t, StateAuthenticated, m.State())
	got := m.CurrentUser()
	require.NotNil(t, got)
	assert.Equal(t, "ada", got.Handle)
}

func TestManager_InitializeClearsMalformedRecord(t *testing.T) {
	tests := []struct {
		name string
		seed func(t *testing.T, db *sql.DB)
	}{
		{
			name: "invalid user JSON",
			seed: func(t *testing.T, db *sql.DB) {
				insertState(t, db, storage.KeyUser, []byte(`{not json`))
				insertState(t, db, storage.KeyTokenIssuedAt, []byte("1700000000000"))
			},
		},
		{
			name: "missing timestamp",
			seed: func(t *testing.T, db *sql.DB) {
				insertState(t, db, storage.KeyUser, mustJSON(t, testIdentity()))
			},
		},
		{
			name: "missing user",
			seed: func(t *testing.T, db *sql.DB) {
				insertState(t, db, storage.KeyTokenIssuedAt, []byte("1700000000000"))
			},
		},
		{
			name: "unparseable timestamp",
			seed: func(t *testing.T, db *sql.DB) {
				insertState(t, db, storage.KeyUser, mustJSON(t, testIdentity()))
				insertState(t, db, storage.KeyTokenIssuedAt, []byte("yesterday"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setupDB(t)
			tt.seed(t, db)

			m := NewManager(db, Options{})
			m.Initialize(context.Background())

			assert.Equal(t, StateAnonymous, m.State())
			assert.Nil(t, stateValue(t, db, storage.KeyUser), "both keys cleared together")
			assert.Nil(t, stateValue(t, db, storage.KeyTokenIssuedAt), "both keys cleared together")
		})
	}
}

func TestManager_InitializeClearsExpiredSession(t *testing.T) {
	db := setupDB(t)
	now, _ := testClock(time.Unix(1_700_000_000, 0))

	issued := time.Unix(1_700_000_000, 0).Add(-2 * time.Hour)
	insertState(t, db, storage.KeyUser, mustJSON(t, testIdentity()))
	insertState(t, db, storage.KeyTokenIssuedAt, []byte(strconv.FormatInt(issued.UnixMilli(), 10)))

	m := NewManager(db, Options{TTL: time.Hour, Now: now})
	m.Initialize(context.Background())

	assert.Equal(t, StateAnonymous, m.State())
	assert.Nil(t, stateValue(t, db, storage.KeyUser))
	assert.Nil(t, stateValue(t, db, storage.KeyTokenIssuedAt))
}

// ---- expiry watcher ----

func TestManager_CheckExpiryFlipsStateAndNotifies(t *testing.T) {
	db := setupDB(t)
	now, advance := testClock(time.Unix(1_700_000_000, 0))

	var notified bool
	m := NewManager(db, Options{
		TTL:      time.Hour,
		Now:      now,
		OnExpire: func() { notified = true },
	})
	ctx := context.Background()
	m.Initialize(ctx)
	require.NoError(t, m.Login(ctx, testIdentity()))

	// still fresh: no transition
	m.checkExpiry(ctx)
	assert.Equal(t, StateAuthenticated, m.State())
	assert.False(t, notified)
	assert.False(t, m.IsExpired())

	advance(2 * time.Hour)
	assert.True(t, m.IsExpired())

	m.checkExpiry(ctx)
	assert.Equal(t, StateAnonymous, m.State())
	assert.True(t, notified, "OnExpire must fire on expiry-triggered logout")
	assert.Nil(t, m.CurrentUser())
	assert.Nil(t, stateValue(t, db, storage.KeyUser))
	assert.Nil(t, stateValue(t, db, storage.KeyTokenIssuedAt))
}

func TestManager_TokenEmptyWhileAnonymous(t *testing.T) {
	m := NewManager(setupDB(t), Options{})
	m.Initialize(context.Background())
	assert.Empty(t, m.Token())
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}

// Package session manages the single persisted authentication session. The
// store is the one piece of mutable shared state in the app: it is read by
// every authenticated request and written only by login, token renewal, and
// 401-triggered clearing.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"arena_companion/internal/models"
	"arena_companion/internal/pkg/logger"
	"arena_companion/internal/pkg/querycache"
	"arena_companion/internal/storage"
)

const (
	// RenewalThreshold is the remaining lifetime below which a proactive token
	// renewal is requested while the old token is still valid.
	RenewalThreshold = time.Hour

	// storageKey is the sole device-storage key holding the serialized session.
	storageKey = "session"
)

// State is the externally visible state of the session store.
type State int

const (
	// StateAbsent means no persisted session exists (fresh install or logout).
	StateAbsent State = iota
	// StateValid means a token is present and not expired.
	StateValid
	// StateStale means a token is present but expired. Stale is treated like
	// Absent for auth purposes but kept distinct so renewal logic can degrade
	// gracefully before outright expiry.
	StateStale
)

func (s State) String() string {
	switch s {
	case StateValid:
		return "valid"
	case StateStale:
		return "stale"
	default:
		return "absent"
	}
}

// Store holds the in-memory view of the persisted session.
type Store struct {
	storage storage.Storage
	cache   *querycache.Cache
	log     *logger.Logger
	clock   func() time.Time

	mu         sync.RWMutex
	session    *models.Session
	hydrated   bool
	generation uint64
}

// NewStore creates a session store over the given device storage. Call Load
// once before reading any derived state.
func NewStore(st storage.Storage, cache *querycache.Cache, l *logger.Logger) *Store {
	return &Store{storage: st, cache: cache, log: l, clock: time.Now}
}

// Load hydrates the store from device storage. A malformed persisted record is
// treated as absence, never surfaced to callers; the corrupt blob is removed
// best-effort. An expired persisted session hydrates to the Stale state.
func (store *Store) Load(ctx context.Context) error {
	raw, err := store.storage.Get(ctx, storageKey)
	if errors.Is(err, storage.ErrNotFound) {
		store.finishLoad(nil)
		return nil
	}
	if err != nil {
		return err
	}

	var session models.Session
	if err := json.Unmarshal(raw, &session); err != nil || session.EntityToken == "" {
		store.log.Warn("discarding malformed persisted session")
		if err := store.storage.Delete(ctx, storageKey); err != nil {
			store.log.Sugar().Errorf("Failed to remove malformed session record: %s", err)
		}
		store.finishLoad(nil)
		return nil
	}

	store.finishLoad(&session)
	return nil
}

func (store *Store) finishLoad(session *models.Session) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.session = session
	store.hydrated = true
}

// Hydrated reports whether the one-shot read from device storage has
// completed. Until then, consumers must show a loading state rather than a
// false "logged out".
func (store *Store) Hydrated() bool {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return store.hydrated
}

// SetSession validates and persists a freshly issued session, replacing any
// previous one wholesale. A session whose expiry is already in the past is
// silently dropped: this guards against a slow network response landing after
// the token it carries has already expired.
func (store *Store) SetSession(ctx context.Context, session models.Session) error {
	if !session.ValidAt(store.clock()) {
		store.log.Warn("rejecting already expired session")
		return nil
	}

	raw, err := json.Marshal(session)
	if err != nil {
		return err
	}
	if err := store.storage.Set(ctx, storageKey, raw); err != nil {
		return err
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	store.session = &session
	store.hydrated = true
	return nil
}

// Clear removes the persisted session and purges all cached query data, since
// cached responses are no longer attributable to any authenticated identity.
// The generation counter is bumped so in-flight renewal results can be
// discarded.
func (store *Store) Clear(ctx context.Context) error {
	store.mu.Lock()
	store.session = nil
	store.generation++
	store.mu.Unlock()

	store.cache.Purge()
	return store.storage.Delete(ctx, storageKey)
}

// Session returns the in-memory session, valid or stale.
func (store *Store) Session() (models.Session, bool) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	if store.session == nil {
		return models.Session{}, false
	}
	return *store.session, true
}

// State reports the current store state, re-evaluated against the wall clock.
func (store *Store) State() State {
	session, ok := store.Session()
	switch {
	case !ok:
		return StateAbsent
	case session.ValidAt(store.clock()):
		return StateValid
	default:
		return StateStale
	}
}

// IsValid reports whether a non-expired session is present.
func (store *Store) IsValid() bool {
	return store.State() == StateValid
}

// ShouldRenew reports whether the session is valid but close enough to expiry
// that a proactive renewal is due.
func (store *Store) ShouldRenew() bool {
	session, ok := store.Session()
	return ok && session.ShouldRenewAt(store.clock(), RenewalThreshold)
}

// Generation returns the logout generation counter. It changes every time the
// session is cleared.
func (store *Store) Generation() uint64 {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return store.generation
}

// Token implements game.TokenSource. It returns the entity token only while
// the session is valid.
func (store *Store) Token() (string, bool) {
	session, ok := store.Session()
	if !ok || !session.ValidAt(store.clock()) {
		return "", false
	}
	return session.EntityToken, true
}

// Invalidate implements game.TokenSource by clearing the session after the
// backend reported the token as revoked.
func (store *Store) Invalidate(ctx context.Context) error {
	return store.Clear(ctx)
}

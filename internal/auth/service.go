// Package auth composes the session store with the game backend's login and
// token-renewal operations into one login/logout/auto-renew contract.
package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"arena_companion/internal/models"
	"arena_companion/internal/pkg/logger"
	"arena_companion/internal/session"

	"go.uber.org/zap"
)

// ErrMissingEmailOrPassword indicates that either the email or password is not provided.
var ErrMissingEmailOrPassword = errors.New("auth: missing email or password")

// renewCheckInterval is how often the auto-renew loop consults the store.
const renewCheckInterval = time.Minute

// Backend is the subset of the game platform client used for authentication.
type Backend interface {
	LoginWithEmail(ctx context.Context, email, password string) (models.Session, error)
	RenewEntityToken(ctx context.Context) (models.Session, error)
}

// Service orchestrates login, logout, and proactive token renewal.
type Service struct {
	store   *session.Store
	backend Backend
	log     *logger.Logger

	// The renewal latch is owned by the service itself, independent of any
	// caller lifecycle: at most one renewal is fired per login session.
	mu              sync.Mutex
	renewalInFlight bool
	renewAttempted  bool
}

// NewService creates an auth service over the given store and backend.
func NewService(store *session.Store, backend Backend, l *logger.Logger) *Service {
	return &Service{store: store, backend: backend, log: l}
}

// Login authenticates with the backend and, on success, feeds the resulting
// session into the session store.
func (service *Service) Login(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return ErrMissingEmailOrPassword
	}

	newSession, err := service.backend.LoginWithEmail(ctx, email, password)
	if err != nil {
		return err
	}
	if err := service.store.SetSession(ctx, newSession); err != nil {
		return err
	}

	service.resetLatch()
	return nil
}

// Logout clears the persisted session and all downstream cached data.
func (service *Service) Logout(ctx context.Context) error {
	return service.store.Clear(ctx)
}

// Run drives proactive token renewal until ctx is cancelled.
func (service *Service) Run(ctx context.Context) {
	ticker := time.NewTicker(renewCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			service.renewIfDue(ctx)
		}
	}
}

func (service *Service) resetLatch() {
	service.mu.Lock()
	defer service.mu.Unlock()
	service.renewalInFlight = false
	service.renewAttempted = false
}

// renewIfDue fires the renewal call when the store reports the session is
// close to expiry. The latch guarantees at most one renewal attempt per login
// session; a failed renewal is not retried, the user simply re-authenticates
// once the session truly expires. A renewal result arriving after an
// intervening logout is discarded: the store generation recorded before the
// request must still match when the response lands.
func (service *Service) renewIfDue(ctx context.Context) {
	if !service.store.ShouldRenew() {
		return
	}
	service.mu.Lock()
	if service.renewalInFlight || service.renewAttempted {
		service.mu.Unlock()
		return
	}
	service.renewalInFlight = true
	service.renewAttempted = true
	service.mu.Unlock()
	defer func() {
		service.mu.Lock()
		service.renewalInFlight = false
		service.mu.Unlock()
	}()

	generation := service.store.Generation()

	renewed, err := service.backend.RenewEntityToken(ctx)
	if err != nil {
		service.log.Warn("token renewal failed", zap.Error(err))
		return
	}
	if service.store.Generation() != generation {
		service.log.Info("discarding renewal result, session was cleared mid-flight")
		return
	}
	if err := service.store.SetSession(ctx, renewed); err != nil {
		service.log.Warn("failed to persist renewed session", zap.Error(err))
	}
}

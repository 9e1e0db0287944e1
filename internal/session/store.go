package session

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/dash-ai/backend/internal/models"
	"go.uber.org/zap"
)

// Store is the single source of truth for who is signed in. It wraps the
// identity provider, gates requests behind the one-time Restore, and fans
// provider change notifications out to registered listeners.
type Store struct {
	provider Provider
	log      *zap.Logger
	ready    atomic.Bool

	mu        sync.RWMutex
	listeners map[int]func(models.SessionChange)
	nextID    int
}

func NewStore(provider Provider, log *zap.Logger) *Store {
	return &Store{
		provider:  provider,
		log:       log,
		listeners: make(map[int]func(models.SessionChange)),
	}
}

// Restore is called once at process start. It confirms the identity backend
// can answer for previously issued tokens; until it succeeds the route
// guard reports Pending.
func (s *Store) Restore(ctx context.Context) error {
	if err := s.provider.Ping(ctx); err != nil {
		return err
	}
	s.ready.Store(true)
	return nil
}

func (s *Store) Ready() bool {
	return s.ready.Load()
}

// Start wires the provider's change feed to the listener registry. Changes
// interleave arbitrarily with direct sign-in/out calls; delivery order wins.
func (s *Store) Start(ctx context.Context) error {
	return s.provider.Changes(ctx, s.dispatch)
}

func (s *Store) dispatch(change models.SessionChange) {
	s.mu.RLock()
	fns := make([]func(models.SessionChange), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(change)
	}
}

// Subscribe registers a listener for session changes. The returned
// unsubscribe releases the registration; calling it more than once is a
// no-op.
func (s *Store) Subscribe(fn func(models.SessionChange)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// SignIn authenticates credentials. Failures come back as errors (AuthError
// for user-visible ones), never panics; the session stays absent on failure.
func (s *Store) SignIn(ctx context.Context, email, password string) (*models.Session, string, error) {
	return s.provider.SignIn(ctx, email, password)
}

func (s *Store) SignUp(ctx context.Context, email, password string, attrs SignUpAttributes) (*models.Session, string, error) {
	return s.provider.SignUp(ctx, email, password, attrs)
}

// SignOut is fire-and-forget: the caller navigates away regardless, so
// failures are logged, not surfaced.
func (s *Store) SignOut(ctx context.Context, token string) {
	if err := s.provider.SignOut(ctx, token); err != nil {
		s.log.Warn("sign-out failed", zap.Error(err))
	}
}

// Current resolves the live session for a bearer token, or nil when absent.
func (s *Store) Current(ctx context.Context, token string) (*models.Session, error) {
	return s.provider.CurrentSession(ctx, token)
}

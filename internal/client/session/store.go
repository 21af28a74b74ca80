// Package session tracks the backend's authenticated-user state for the
// rest of the application.
//
// The store is created and owned by main, passed by reference to its
// consumers, and torn down with Close at process end. Exactly one store
// exists per running process. Its state mutates exclusively through the
// backend's auth-change stream: Login, Register and Logout only delegate,
// and consumers observe the result through the stream (fire-and-observe).
package session

import (
	"context"
	"sync"

	"github.com/fitly/fitly/internal/backend"
	"github.com/fitly/fitly/internal/logging"
)

// AuthAPI is the slice of the backend auth client the store depends on.
type AuthAPI interface {
	GetSession(ctx context.Context) (*backend.Session, error)
	OnAuthStateChange(fn func(event backend.AuthEvent, s *backend.Session)) *backend.Subscription
	SignInWithPassword(ctx context.Context, email, password string) (*backend.User, error)
	SignUp(ctx context.Context, email, password string) (*backend.User, error)
	SignOut(ctx context.Context) error
}

// Store holds the current user and the initial-resolution loading flag.
//
// Ordering: every write carries a generation. Auth-change events always
// advance it; the initial fetch's write is discarded when an event landed
// first, so a slow fetch can never clobber newer state with stale data.
type Store struct {
	auth AuthAPI
	log  logging.Logger

	mu        sync.Mutex
	user      *backend.User
	loading   bool
	gen       uint64
	closed    bool
	listeners []func()

	sub       *backend.Subscription
	ready     chan struct{}
	readyOnce sync.Once
}

// New builds an unstarted store. Loading is true until the first
// resolution after Start.
func New(auth AuthAPI, log logging.Logger) *Store {
	return &Store{
		auth:    auth,
		log:     log,
		loading: true,
		ready:   make(chan struct{}),
	}
}

// Start subscribes to the auth-change stream, then kicks the one-time
// initial session fetch in the background. It must be called exactly once.
func (s *Store) Start(ctx context.Context) {
	s.sub = s.auth.OnAuthStateChange(func(_ backend.AuthEvent, sess *backend.Session) {
		s.applyEvent(sess)
	})
	go s.initialFetch(ctx)
}

func (s *Store) initialFetch(ctx context.Context) {
	s.mu.Lock()
	startGen := s.gen
	s.mu.Unlock()

	sess, err := s.auth.GetSession(ctx)
	if err != nil {
		// An unresolvable session means "signed out" for the UI; the
		// cause is diagnostic only.
		s.log.Warn(ctx, "initial session fetch failed", "error", err)
		sess = nil
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if s.gen != startGen {
		// An auth-change event won the race; this result is stale.
		s.mu.Unlock()
		s.log.Debug(ctx, "initial session fetch superseded by auth event")
		return
	}
	s.setLocked(sess)
	fns := s.notifyTargetsLocked()
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// applyEvent is the auth-change callback. Each delivery unconditionally
// overwrites the user and forces loading to false.
func (s *Store) applyEvent(sess *backend.Session) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.gen++
	s.setLocked(sess)
	fns := s.notifyTargetsLocked()
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

func (s *Store) setLocked(sess *backend.Session) {
	if sess != nil {
		s.user = sess.User
	} else {
		s.user = nil
	}
	s.loading = false
	s.readyOnce.Do(func() { close(s.ready) })
}

func (s *Store) notifyTargetsLocked() []func() {
	fns := make([]func(), len(s.listeners))
	copy(fns, s.listeners)
	return fns
}

// User returns the current user, nil when unauthenticated.
func (s *Store) User() *backend.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Loading reports whether the initial session resolution is still
// outstanding. It is true only between Start and the first resolution.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Ready is closed at the first resolution (fetch or event, whichever comes
// first). Dependent UI waits on it instead of polling Loading.
func (s *Store) Ready() <-chan struct{} {
	return s.ready
}

// OnChange registers fn to run after every state write. Listeners live for
// the store's lifetime.
func (s *Store) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Login delegates to the backend. It does not mutate the store: the user
// lands via the subscription side-channel.
func (s *Store) Login(ctx context.Context, email, password string) (*backend.User, error) {
	return s.auth.SignInWithPassword(ctx, email, password)
}

// Register delegates to the backend. Like Login it leaves the store
// untouched; a registered account signs in afterwards.
func (s *Store) Register(ctx context.Context, email, password string) (*backend.User, error) {
	return s.auth.SignUp(ctx, email, password)
}

// Logout delegates to the backend; the SignedOut event clears the store.
func (s *Store) Logout(ctx context.Context) error {
	return s.auth.SignOut(ctx)
}

// Close unsubscribes from the auth-change stream and drops any callback
// that is still in flight. Mandatory on teardown.
func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	sub := s.sub
	s.mu.Unlock()

	if sub != nil {
		sub.Unsubscribe()
	}
}

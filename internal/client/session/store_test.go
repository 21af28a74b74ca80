package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitly/fitly/internal/backend"
	"github.com/fitly/fitly/internal/logging"
)

// fakeAuth drives the store by hand: tests release the initial fetch and
// fire auth-change events in whatever order the scenario needs.
type fakeAuth struct {
	mu sync.Mutex
	cb func(backend.AuthEvent, *backend.Session)

	fetchGate    chan struct{} // closed to release GetSession
	fetchSession *backend.Session
	fetchErr     error

	signInUser *backend.User
	signInErr  error
	signUpUser *backend.User
	signUpErr  error
	signOutErr error

	signInCalled  bool
	signOutCalled bool
	unsubscribed  bool
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{fetchGate: make(chan struct{})}
}

func (f *fakeAuth) GetSession(ctx context.Context) (*backend.Session, error) {
	<-f.fetchGate
	return f.fetchSession, f.fetchErr
}

func (f *fakeAuth) OnAuthStateChange(fn func(backend.AuthEvent, *backend.Session)) *backend.Subscription {
	f.mu.Lock()
	f.cb = fn
	f.mu.Unlock()
	return backend.NewSubscription(func() {
		f.mu.Lock()
		f.unsubscribed = true
		f.cb = nil
		f.mu.Unlock()
	})
}

func (f *fakeAuth) fire(event backend.AuthEvent, s *backend.Session) {
	f.mu.Lock()
	cb := f.cb
	f.mu.Unlock()
	if cb != nil {
		cb(event, s)
	}
}

func (f *fakeAuth) SignInWithPassword(ctx context.Context, email, password string) (*backend.User, error) {
	f.signInCalled = true
	return f.signInUser, f.signInErr
}

func (f *fakeAuth) SignUp(ctx context.Context, email, password string) (*backend.User, error) {
	return f.signUpUser, f.signUpErr
}

func (f *fakeAuth) SignOut(ctx context.Context) error {
	f.signOutCalled = true
	return f.signOutErr
}

func newStore(f *fakeAuth) *Store {
	return New(f, logging.NewDefault("error"))
}

func waitReady(t *testing.T, s *Store) {
	t.Helper()
	select {
	case <-s.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("store never resolved")
	}
}

func TestStore_LoadingUntilFirstResolution(t *testing.T) {
	f := newFakeAuth()
	s := newStore(f)
	s.Start(context.Background())
	defer s.Close()

	assert.True(t, s.Loading())
	assert.Nil(t, s.User())

	f.fetchSession = &backend.Session{User: &backend.User{ID: "u1", Email: "a@b.c"}}
	close(f.fetchGate)

	waitReady(t, s)
	assert.False(t, s.Loading())
	require.NotNil(t, s.User())
	assert.Equal(t, "u1", s.User().ID)
}

func TestStore_FetchErrorResolvesToSignedOut(t *testing.T) {
	f := newFakeAuth()
	f.fetchErr = assert.AnError
	s := newStore(f)
	s.Start(context.Background())
	defer s.Close()

	close(f.fetchGate)
	waitReady(t, s)

	assert.False(t, s.Loading())
	assert.Nil(t, s.User())
}

func TestStore_UserTracksLastDeliveredEvent(t *testing.T) {
	f := newFakeAuth()
	s := newStore(f)
	s.Start(context.Background())
	defer s.Close()

	f.fire(backend.SignedIn, &backend.Session{User: &backend.User{ID: "u1"}})
	assert.False(t, s.Loading(), "an event also ends loading")
	require.NotNil(t, s.User())
	assert.Equal(t, "u1", s.User().ID)

	f.fire(backend.TokenRefreshed, &backend.Session{User: &backend.User{ID: "u1", Email: "a@b.c"}})
	assert.Equal(t, "a@b.c", s.User().Email)

	f.fire(backend.SignedOut, nil)
	assert.Nil(t, s.User())

	// Loading never turns true again after the first resolution.
	assert.False(t, s.Loading())
}

func TestStore_StaleInitialFetchDiscarded(t *testing.T) {
	f := newFakeAuth()
	f.fetchSession = &backend.Session{User: &backend.User{ID: "stale"}}
	s := newStore(f)
	s.Start(context.Background())
	defer s.Close()

	// A subscription event lands while the fetch is still outstanding.
	f.fire(backend.SignedIn, &backend.Session{User: &backend.User{ID: "fresh"}})
	require.NotNil(t, s.User())
	assert.Equal(t, "fresh", s.User().ID)

	// The slow fetch resolves afterwards; its result must be dropped.
	close(f.fetchGate)
	time.Sleep(50 * time.Millisecond)
	require.NotNil(t, s.User())
	assert.Equal(t, "fresh", s.User().ID)
}

func TestStore_CloseDropsLateCallbacks(t *testing.T) {
	f := newFakeAuth()
	s := newStore(f)
	s.Start(context.Background())

	f.fire(backend.SignedIn, &backend.Session{User: &backend.User{ID: "u1"}})
	s.Close()
	assert.True(t, f.unsubscribed)

	// Unsubscribing removed the callback; even a direct late apply is a no-op.
	s.applyEvent(&backend.Session{User: &backend.User{ID: "late"}})
	require.NotNil(t, s.User())
	assert.Equal(t, "u1", s.User().ID)

	// The discarded initial fetch must not resurrect state either.
	f.fetchSession = &backend.Session{User: &backend.User{ID: "later"}}
	close(f.fetchGate)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, "u1", s.User().ID)
}

func TestStore_LoginIsFireAndObserve(t *testing.T) {
	f := newFakeAuth()
	f.signInUser = &backend.User{ID: "u1"}
	s := newStore(f)
	s.Start(context.Background())
	defer s.Close()

	u, err := s.Login(context.Background(), "a@b.c", "pw")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.True(t, f.signInCalled)

	// The direct call result does not mutate the store.
	assert.Nil(t, s.User())

	// Only the stream does.
	f.fire(backend.SignedIn, &backend.Session{User: f.signInUser})
	require.NotNil(t, s.User())
}

func TestStore_LogoutDelegates(t *testing.T) {
	f := newFakeAuth()
	s := newStore(f)
	s.Start(context.Background())
	defer s.Close()

	f.fire(backend.SignedIn, &backend.Session{User: &backend.User{ID: "u1"}})
	require.NoError(t, s.Logout(context.Background()))
	assert.True(t, f.signOutCalled)

	// Still signed in until the stream says otherwise.
	assert.NotNil(t, s.User())
	f.fire(backend.SignedOut, nil)
	assert.Nil(t, s.User())
}

func TestStore_OnChangeNotifies(t *testing.T) {
	f := newFakeAuth()
	s := newStore(f)
	s.Start(context.Background())
	defer s.Close()

	var mu sync.Mutex
	calls := 0
	s.OnChange(func() {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	f.fire(backend.SignedIn, &backend.Session{User: &backend.User{ID: "u1"}})
	f.fire(backend.SignedOut, nil)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, calls)
}

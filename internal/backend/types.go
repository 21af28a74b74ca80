package backend

import (
	"sync"
	"time"
)

// User is the backend-owned identity record. Read-only from the client.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is the client-side reflection of the backend's authenticated-user
// state. The backend client caches it internally (memory + session file);
// nothing else in the application persists it.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         *User     `json:"user"`
}

// Expired reports whether the access token is past (or within skew of) its
// expiry and needs a refresh before use.
func (s *Session) Expired(now time.Time, skew time.Duration) bool {
	if s.ExpiresAt.IsZero() {
		return false
	}
	return !now.Add(skew).Before(s.ExpiresAt)
}

func (s *Session) clone() *Session {
	if s == nil {
		return nil
	}
	cp := *s
	if s.User != nil {
		u := *s.User
		cp.User = &u
	}
	return &cp
}

// AuthEvent names a change on the auth-state stream.
type AuthEvent string

const (
	SignedIn       AuthEvent = "SIGNED_IN"
	SignedOut      AuthEvent = "SIGNED_OUT"
	TokenRefreshed AuthEvent = "TOKEN_REFRESHED"
)

// Subscription is a handle on an auth-state subscription.
// Unsubscribe is idempotent and safe to call from any goroutine.
type Subscription struct {
	once   sync.Once
	remove func()
}

// NewSubscription wraps a removal function. Exposed so consumers can fake
// the auth client in tests.
func NewSubscription(remove func()) *Subscription {
	return &Subscription{remove: remove}
}

// Unsubscribe detaches the callback from the stream. After it returns, the
// callback will not be invoked again.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		if s.remove != nil {
			s.remove()
		}
	})
}

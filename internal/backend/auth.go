package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fitly/fitly/internal/common"
)

// refreshSkew is how long before expiry a token is already treated as
// expired, and how early the background loop refreshes it.
const refreshSkew = time.Minute

// Auth is the authentication sub-client. It owns the cached session and the
// auth-state change stream; every session mutation flows through setSession
// or clearSession so subscribers always observe it.
type Auth struct {
	c           *Client
	sessionFile string
	autoRefresh bool

	mu           sync.Mutex
	session      *Session
	loaded       bool
	subs         map[int]func(AuthEvent, *Session)
	nextSub      int
	refreshTimer *time.Timer
	closed       bool
}

func newAuth(c *Client, sessionFile string, autoRefresh bool) *Auth {
	return &Auth{
		c:           c,
		sessionFile: sessionFile,
		autoRefresh: autoRefresh,
		subs:        make(map[int]func(AuthEvent, *Session)),
	}
}

// tokenResponse is the token grant payload shared by the password and
// refresh-token grants.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
	User         *User  `json:"user"`
}

func (tr *tokenResponse) session() *Session {
	return &Session{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		ExpiresAt:    tokenExpiry(tr.AccessToken, tr.ExpiresIn, tr.ExpiresAt),
		User:         tr.User,
	}
}

// tokenExpiry resolves the access token expiry from, in order of
// preference: the explicit expires_at, expires_in relative to now, or the
// token's own exp claim.
func tokenExpiry(token string, expiresIn, expiresAt int64) time.Time {
	if expiresAt > 0 {
		return time.Unix(expiresAt, 0)
	}
	if expiresIn > 0 {
		return time.Now().Add(time.Duration(expiresIn) * time.Second)
	}
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err == nil && claims.ExpiresAt != nil {
		return claims.ExpiresAt.Time
	}
	return time.Time{}
}

// GetSession resolves the current session: the in-memory one, or the one
// cached in the session file on first call. An expired access token is
// refreshed over the network before the session is returned. (nil, nil)
// means no session exists.
func (a *Auth) GetSession(ctx context.Context) (*Session, error) {
	a.ensureLoaded()

	a.mu.Lock()
	s := a.session.clone()
	a.mu.Unlock()

	if s == nil {
		return nil, nil
	}
	if s.Expired(time.Now(), refreshSkew) {
		if err := a.refresh(ctx); err != nil {
			return nil, err
		}
		a.mu.Lock()
		s = a.session.clone()
		a.mu.Unlock()
	}
	return s, nil
}

// OnAuthStateChange registers fn on the auth-state stream. fn is invoked
// synchronously with each session mutation until Unsubscribe is called.
func (a *Auth) OnAuthStateChange(fn func(event AuthEvent, s *Session)) *Subscription {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := a.nextSub
	a.nextSub++
	a.subs[id] = fn
	return NewSubscription(func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		delete(a.subs, id)
	})
}

// SignInWithPassword exchanges credentials for a session. The new session
// is cached, persisted, and announced on the stream as SignedIn.
func (a *Auth) SignInWithPassword(ctx context.Context, email, password string) (*User, error) {
	var tr tokenResponse
	q := url.Values{"grant_type": {"password"}}
	body := map[string]string{"email": email, "password": password}

	if err := a.c.doJSON(ctx, http.MethodPost, "/auth/v1/token", q, nil, body, &tr); err != nil {
		return nil, err
	}
	if tr.AccessToken == "" {
		return nil, common.NewError(common.KindBackend, "token grant returned no access token", nil)
	}

	s := tr.session()
	a.setSession(s, SignedIn)
	return s.User, nil
}

// SignUp creates a new account. It does not establish a session: the user
// signs in afterwards (the service may require confirmation first).
func (a *Auth) SignUp(ctx context.Context, email, password string) (*User, error) {
	var out struct {
		tokenResponse
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	body := map[string]string{"email": email, "password": password}

	if err := a.c.doJSON(ctx, http.MethodPost, "/auth/v1/signup", nil, nil, body, &out); err != nil {
		return nil, err
	}
	if out.User != nil {
		return out.User, nil
	}
	if out.ID != "" {
		return &User{ID: out.ID, Email: out.Email}, nil
	}
	return nil, common.NewError(common.KindBackend, "signup returned no user", nil)
}

// SignOut revokes the session server-side and always clears the local one,
// announcing SignedOut. The revocation error, if any, is returned after the
// local state is already gone.
func (a *Auth) SignOut(ctx context.Context) error {
	a.mu.Lock()
	hasSession := a.session != nil
	a.mu.Unlock()
	if !hasSession {
		return nil
	}

	err := a.c.doJSON(ctx, http.MethodPost, "/auth/v1/logout", nil, nil, nil, nil)
	a.clearSession(SignedOut)
	return err
}

// refresh exchanges the refresh token for a new session. A backend
// rejection invalidates the local session (SignedOut); a transport failure
// keeps it so a later call can try again.
func (a *Auth) refresh(ctx context.Context) error {
	a.mu.Lock()
	var rt string
	if a.session != nil {
		rt = a.session.RefreshToken
	}
	a.mu.Unlock()

	if rt == "" {
		a.clearSession(SignedOut)
		return common.NewError(common.KindBackend, "session has no refresh token", nil)
	}

	var tr tokenResponse
	q := url.Values{"grant_type": {"refresh_token"}}
	body := map[string]string{"refresh_token": rt}

	err := a.c.doJSON(ctx, http.MethodPost, "/auth/v1/token", q, nil, body, &tr)
	if err != nil {
		if common.IsKind(err, common.KindBackend) {
			a.clearSession(SignedOut)
		}
		return err
	}

	s := tr.session()
	if s.User == nil {
		// The refresh grant may omit the user; keep the one we had.
		a.mu.Lock()
		if a.session != nil {
			s.User = a.session.User
		}
		a.mu.Unlock()
	}
	a.setSession(s, TokenRefreshed)
	return nil
}

// AccessToken returns the cached access token, or "" when signed out.
// The storage drivers use it to authorize uploads as the current user.
func (a *Auth) AccessToken() string {
	a.ensureLoaded()
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session == nil {
		return ""
	}
	return a.session.AccessToken
}

func (a *Auth) setSession(s *Session, event AuthEvent) {
	a.mu.Lock()
	a.session = s
	a.loaded = true
	a.persistLocked()
	a.scheduleRefreshLocked()
	fns := a.snapshotSubsLocked()
	a.mu.Unlock()

	for _, fn := range fns {
		fn(event, s.clone())
	}
}

func (a *Auth) clearSession(event AuthEvent) {
	a.mu.Lock()
	a.session = nil
	a.loaded = true
	if a.refreshTimer != nil {
		a.refreshTimer.Stop()
		a.refreshTimer = nil
	}
	a.persistLocked()
	fns := a.snapshotSubsLocked()
	a.mu.Unlock()

	for _, fn := range fns {
		fn(event, nil)
	}
}

func (a *Auth) snapshotSubsLocked() []func(AuthEvent, *Session) {
	fns := make([]func(AuthEvent, *Session), 0, len(a.subs))
	for _, fn := range a.subs {
		fns = append(fns, fn)
	}
	return fns
}

func (a *Auth) scheduleRefreshLocked() {
	if !a.autoRefresh || a.closed || a.session == nil || a.session.ExpiresAt.IsZero() {
		return
	}
	if a.refreshTimer != nil {
		a.refreshTimer.Stop()
	}
	d := time.Until(a.session.ExpiresAt.Add(-refreshSkew))
	if d < 5*time.Second {
		d = 5 * time.Second
	}
	a.refreshTimer = time.AfterFunc(d, func() {
		if err := a.refresh(context.Background()); err != nil {
			a.c.log.Warn(context.Background(), "token refresh failed", "error", err)
		}
	})
}

func (a *Auth) ensureLoaded() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.loaded {
		return
	}
	a.loaded = true
	if a.sessionFile == "" {
		return
	}

	data, err := os.ReadFile(a.sessionFile)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			a.c.log.Warn(context.Background(), "session file unreadable", "path", a.sessionFile, "error", err)
		}
		return
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		a.c.log.Warn(context.Background(), "session file corrupt, ignoring", "path", a.sessionFile)
		return
	}
	if s.AccessToken == "" {
		return
	}
	a.session = &s
	a.scheduleRefreshLocked()
}

func (a *Auth) persistLocked() {
	if a.sessionFile == "" {
		return
	}
	if a.session == nil {
		if err := os.Remove(a.sessionFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			a.c.log.Warn(context.Background(), "session file removal failed", "error", err)
		}
		return
	}
	data, err := json.Marshal(a.session)
	if err != nil {
		a.c.log.Warn(context.Background(), "session encode failed", "error", err)
		return
	}
	if err := os.MkdirAll(filepath.Dir(a.sessionFile), 0o700); err != nil {
		a.c.log.Warn(context.Background(), "session dir creation failed", "error", err)
		return
	}
	if err := os.WriteFile(a.sessionFile, data, 0o600); err != nil {
		a.c.log.Warn(context.Background(), "session file write failed", "error", fmt.Errorf("write %s: %w", a.sessionFile, err))
	}
}

func (a *Auth) close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	if a.refreshTimer != nil {
		a.refreshTimer.Stop()
		a.refreshTimer = nil
	}
}

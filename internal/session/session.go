// Package session holds the process's auth state: the bearer tokens and the
// logout subscribers. It is constructed once at startup and injected into the
// API client; there is no package-level singleton.
package session

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LogoutHandler is invoked once when the session terminates, whether by user
// action or by the server rejecting the credentials.
type LogoutHandler func()

// Session is the mutable auth state. All methods are safe for concurrent use.
// Lifecycle: zero state at app start, populated on login, torn down on logout.
type Session struct {
	mu           sync.Mutex
	accessToken  string
	refreshToken string
	handlers     map[int]LogoutHandler
	nextHandler  int
	loggedOut    bool
}

// New returns an empty, logged-out session.
func New() *Session {
	return &Session{handlers: make(map[int]LogoutHandler)}
}

// SetTokens stores fresh credentials, e.g. after login or refresh, and
// re-arms the logout broadcast.
func (s *Session) SetTokens(access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = access
	if refresh != "" {
		s.refreshToken = refresh
	}
	s.loggedOut = false
}

// AccessToken returns the current bearer token, or "" when logged out.
func (s *Session) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken
}

// RefreshToken returns the stored refresh token, or "".
func (s *Session) RefreshToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshToken
}

// Authenticated reports whether an access token is present.
func (s *Session) Authenticated() bool {
	return s.AccessToken() != ""
}

// OnLogout registers a handler fired when the session terminates and returns
// an unsubscribe function.
func (s *Session) OnLogout(h LogoutHandler) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextHandler
	s.nextHandler++
	s.handlers[id] = h
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.handlers, id)
	}
}

// Logout clears the tokens and fires every logout handler exactly once, even
// when several request goroutines hit a 401 at the same time.
func (s *Session) Logout() {
	s.mu.Lock()
	if s.loggedOut {
		s.mu.Unlock()
		return
	}
	s.loggedOut = true
	s.accessToken = ""
	s.refreshToken = ""
	fire := make([]LogoutHandler, 0, len(s.handlers))
	for _, h := range s.handlers {
		fire = append(fire, h)
	}
	s.mu.Unlock()

	for _, h := range fire {
		h()
	}
}

// ExpiresSoon reports whether the access token's exp claim falls within the
// given window. The claim is read without signature verification; the server
// remains the authority, this only lets the UI warn before a long edit is
// lost to an expired session. Tokens without a readable exp claim report
// false.
func (s *Session) ExpiresSoon(within time.Duration) bool {
	token := s.AccessToken()
	if token == "" {
		return false
	}
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return time.Until(exp.Time) < within
}

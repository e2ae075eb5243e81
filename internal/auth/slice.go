// Package auth holds the client session and the only transitions allowed to change it.
package auth

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/qamarabbas408/booknstay/pkg/domain"
)

// ErrInvalidCredentials is returned by SetCredentials when user or token is missing.
var ErrInvalidCredentials = errors.New("auth: user and token are both required")

// Listener is called with the new session after every transition.
type Listener func(domain.Session)

// Slice owns the Session. Transitions are serialized; the last one applied wins.
type Slice struct {
	mu        sync.RWMutex
	state     domain.Session
	listeners map[uuid.UUID]Listener
}

// New returns a slice in the anonymous state.
func New() *Slice {
	return &Slice{
		state:     domain.AnonymousSession(),
		listeners: make(map[uuid.UUID]Listener),
	}
}

// State returns a copy of the current session.
func (s *Slice) State() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Token returns the current bearer token, or "" when logged out.
func (s *Slice) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Token
}

// IsAuthenticated reports whether a user is logged in.
func (s *Slice) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.IsAuthenticated
}

// SetCredentials replaces the session with user and token in one step.
func (s *Slice) SetCredentials(user *domain.User, token string) error {
	if user == nil || token == "" {
		return ErrInvalidCredentials
	}
	u := *user
	s.apply(domain.NewSession(&u, token))
	return nil
}

// Logout resets the session to anonymous. It is the only way a session ends.
func (s *Slice) Logout() {
	s.apply(domain.AnonymousSession())
}

// Subscribe registers fn for every transition and returns a function that removes it.
func (s *Slice) Subscribe(fn Listener) (unsubscribe func()) {
	id := uuid.New()
	s.mu.Lock()
	s.listeners[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Slice) apply(next domain.Session) {
	s.mu.Lock()
	s.state = next
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(next.Clone())
	}
}

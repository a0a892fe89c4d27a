// Package client is a Go client for the chat API and relay. It keeps the
// state a frontend needs: the signed-in session, the open thread and a
// per-partner insight cache.
package client

import (
	"sync"

	"github.com/pliu/chatsight/internal/models"
)

// Session holds the bearer token of the signed-in user. It starts on login
// and ends on logout or when the server rejects the token.
type Session struct {
	mu    sync.RWMutex
	token string
	user  *models.PublicUser
}

func (s *Session) Begin(token string, user models.PublicUser) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.user = &user
}

func (s *Session) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = nil
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the signed-in user, or false when signed out.
func (s *Session) User() (models.PublicUser, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return models.PublicUser{}, false
	}
	return *s.user, true
}

func (s *Session) Active() bool {
	return s.Token() != ""
}

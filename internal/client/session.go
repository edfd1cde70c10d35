package client

import (
	"sync"

	"tareas/internal/models"

	"golang.org/x/oauth2"
)

// Session is the bearer token and profile of the signed-in user. It is the
// oauth2.TokenSource behind every authenticated request.
type Session struct {
	mu    sync.RWMutex
	token string
	user  *models.Profile
}

var _ oauth2.TokenSource = (*Session)(nil)

func NewSession() *Session {
	return &Session{}
}

func (s *Session) Token() (*oauth2.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return nil, &APIError{Kind: KindUnauthenticated, Message: "not logged in"}
	}
	return &oauth2.Token{AccessToken: s.token, TokenType: "Bearer"}, nil
}

func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) SetToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

func (s *Session) User() (models.Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return models.Profile{}, false
	}
	return *s.user, true
}

func (s *Session) SetUser(user models.Profile) {
	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()
}

func (s *Session) Authenticated() bool {
	return s.AccessToken() != ""
}

func (s *Session) Clear() {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()
}

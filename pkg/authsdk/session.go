package authsdk

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrNoRefreshToken is returned when a session needs to refresh but has
// already been revoked.
var ErrNoRefreshToken = errors.New("access token expired and no refresh token available")

// Session represents an authenticated user session with automatic token
// refresh. Sessions are safe for concurrent use.
type Session struct {
	client *SDKClient

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	expiresAt    time.Time
}

// newSession creates a new authenticated session from a token pair.
func newSession(client *SDKClient, pair *TokenPair) *Session {
	s := &Session{client: client}
	s.store(pair)
	return s
}

// store must be called with mu held for writing, or before the session is shared.
func (s *Session) store(pair *TokenPair) {
	s.accessToken = pair.AccessToken
	s.refreshToken = pair.RefreshToken
	// Refresh a little before the server would reject the token.
	s.expiresAt = pair.AccessTokenExpiresAt.Add(-s.client.RefreshLeeway)
}

// getValidToken returns a valid access token, automatically refreshing if expired.
func (s *Session) getValidToken(ctx context.Context) (string, error) {
	s.mu.RLock()
	if time.Now().Before(s.expiresAt) {
		token := s.accessToken
		s.mu.RUnlock()
		return token, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another goroutine may have refreshed while we waited for the lock.
	if time.Now().Before(s.expiresAt) {
		return s.accessToken, nil
	}

	if s.refreshToken == "" {
		return "", ErrNoRefreshToken
	}

	pair, err := s.client.Refresh(ctx, s.refreshToken)
	if err != nil {
		return "", fmt.Errorf("failed to refresh token: %w", err)
	}
	s.store(pair)

	return s.accessToken, nil
}

// Me returns the session's user, refreshing the access token if needed.
func (s *Session) Me(ctx context.Context) (*User, error) {
	token, err := s.getValidToken(ctx)
	if err != nil {
		return nil, err
	}

	return s.client.Me(ctx, token)
}

// Revoke revokes the current refresh token, invalidating this session.
func (s *Session) Revoke(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.refreshToken == "" {
		return ErrNoRefreshToken
	}

	if err := s.client.Revoke(ctx, s.refreshToken); err != nil {
		return err
	}
	s.refreshToken = ""
	return nil
}

// AccessToken returns the current access token without checking expiration.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// RefreshToken returns the current refresh token.
func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

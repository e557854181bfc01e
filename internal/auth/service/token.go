package service

import (
	"fmt"
	"time"

	"github.com/aussiebroadwan/jwtauth/internal/auth/domain"
	"github.com/aussiebroadwan/jwtauth/pkg/cryptox"
	"github.com/aussiebroadwan/jwtauth/pkg/jwtx"
)

// TokenService builds token material. It never touches the store; persisting
// the refresh token is the caller's job.
type TokenService struct {
	Signer     jwtx.Signer
	Issuer     string
	Audience   []string
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// Now defaults to time.Now.
	Now func() time.Time
}

// now is truncated to whole seconds so the expiries returned to callers match
// the JWT "exp" claim exactly.
func (s *TokenService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC().Truncate(time.Second)
	}
	return time.Now().UTC().Truncate(time.Second)
}

// CreateUserToken signs an access token for u and generates a fresh opaque
// refresh token.
func (s *TokenService) CreateUserToken(u domain.User) (domain.TokenPair, error) {
	now := s.now()

	claims := jwtx.NewUserClaims(
		u.ID,        // subject
		u.Email,     // email
		u.UserName,  // name
		u.Roles,     // roles
		s.AccessTTL, // token lifetime
		s.Issuer,    // issuer
		s.Audience,  // audience
		now,         // current time
	)
	access, err := s.Signer.Sign(claims)
	if err != nil {
		return domain.TokenPair{}, err
	}

	refresh, err := cryptox.NewRefreshToken()
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("generate refresh token: %w", err)
	}

	return domain.TokenPair{
		AccessToken:           access,
		AccessTokenExpiresAt:  now.Add(s.AccessTTL),
		RefreshToken:          refresh,
		RefreshTokenExpiresAt: now.Add(s.RefreshTTL),
	}, nil
}

// CreateClientToken signs an access token for a machine client using the
// client's own lifetime. No refresh token is produced.
func (s *TokenService) CreateClientToken(c domain.Client) (domain.ClientToken, error) {
	now := s.now()
	ttl := c.Lifetime()

	access, err := s.Signer.Sign(jwtx.NewClientClaims(c.ID, ttl, s.Issuer, s.Audience, now))
	if err != nil {
		return domain.ClientToken{}, err
	}

	return domain.ClientToken{
		AccessToken:          access,
		AccessTokenExpiresAt: now.Add(ttl),
	}, nil
}

package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token types carried in the "token_type" claim so resource servers can tell
// a user session apart from a machine client.
const (
	TokenTypeUser   = "user"
	TokenTypeClient = "client"
)

// Claims are the access-token claims shared by the issuer and any service
// verifying our tokens.
type Claims struct {
	jwt.RegisteredClaims

	// Email of the authenticated user (user tokens only).
	Email string `json:"email,omitempty"`

	// Name is the user's display name (user tokens only).
	Name string `json:"name,omitempty"`

	// Roles granted to the user, e.g. ["user", "admin"].
	Roles []string `json:"roles,omitempty"`

	// ClientID of the machine client (client tokens only).
	ClientID string `json:"client_id,omitempty"`

	// TokenType is either TokenTypeUser or TokenTypeClient.
	TokenType string `json:"token_type,omitempty"`
}

// NewUserClaims builds the claims for a user access token.
func NewUserClaims(
	userID, email, name string,
	roles []string,
	ttl time.Duration,
	issuer string,
	audience []string,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: registered(userID, ttl, issuer, audience, now),
		Email:            email,
		Name:             name,
		Roles:            roles,
		TokenType:        TokenTypeUser,
	}
}

// NewClientClaims builds the claims for a client-credentials access token.
func NewClientClaims(
	clientID string,
	ttl time.Duration,
	issuer string,
	audience []string,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: registered(clientID, ttl, issuer, audience, now),
		ClientID:         clientID,
		TokenType:        TokenTypeClient,
	}
}

func registered(subject string, ttl time.Duration, issuer string, audience []string, now time.Time) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   subject,
		Audience:  jwt.ClaimStrings(audience),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        NewJTI(),
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// IsUser reports whether the token was issued to an end-user.
func (c *Claims) IsUser() bool { return c.TokenType == TokenTypeUser }

// HasRole reports whether the claims carry the given role.
func (c *Claims) HasRole(role string) bool { return slices.Contains(c.Roles, role) }

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}

	if c.Issuer != expected {
		return ErrIssuer
	}

	return nil
}

// ValidateAudience checks if at least one expected audience is present.
func (c *Claims) ValidateAudience(expected []string) error {
	if len(expected) == 0 {
		return nil // nothing to enforce
	}

	for _, want := range expected {
		if slices.Contains(c.Audience, want) {
			return nil
		}
	}

	return ErrAudience
}

// ValidateExpiry ensures the token hasn't expired (exp) and isn't before nbf.
func (c *Claims) ValidateExpiry() error {
	return c.ValidateExpiryWithLeeway(0)
}

// ValidateExpiryWithLeeway adds a grace period for clock skew.
func (c *Claims) ValidateExpiryWithLeeway(leeway time.Duration) error {
	now := time.Now().UTC()

	if c.ExpiresAt != nil && !now.Before(c.ExpiresAt.Add(leeway)) {
		return ErrExpired
	}

	if c.NotBefore != nil && now.Before(c.NotBefore.Add(-leeway)) {
		return ErrNotYetValid
	}

	return nil
}

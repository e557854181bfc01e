package domain

import "time"

// TokenPair is what a user receives on login or refresh: a signed access
// token and an opaque refresh token.
type TokenPair struct {
	AccessToken           string    `json:"access_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshToken          string    `json:"refresh_token"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
}

// ClientToken is issued to machine clients. There is no refresh token.
type ClientToken struct {
	AccessToken          string    `json:"access_token"`
	AccessTokenExpiresAt time.Time `json:"access_token_expires_at"`
}

// RefreshToken is the stored refresh record. There is at most one per user;
// CodeHash is the fingerprint of the opaque value handed to the caller.
type RefreshToken struct {
	UserID    string
	CodeHash  string
	ExpiresAt time.Time
}

// Expired reports whether the record can no longer be redeemed.
func (t RefreshToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

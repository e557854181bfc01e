package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
)

// RefreshTokenBytes is the entropy of an opaque refresh token, 256 bits.
// Encoded it is 43 base64url characters.
const RefreshTokenBytes = 32

// NewRefreshToken returns a fresh opaque refresh token. Callers hand the
// token to the user and persist only FingerprintToken of it.
func NewRefreshToken() (string, error) {
	return randomToken(RefreshTokenBytes)
}

func randomToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// FingerprintToken is the lookup key stored for a refresh token: the SHA-256
// of the token, base64url encoded without padding. Refresh tokens carry full
// entropy so an unsalted hash is enough to make a leaked table useless.
func FingerprintToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// ConstantTimeEqual compares two secrets without leaking where they differ.
// A length mismatch still returns early, which only reveals the length.
func ConstantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

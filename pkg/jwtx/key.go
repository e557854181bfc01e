package jwtx

import (
	"errors"
	"fmt"
)

// MinHMACKeySize is the smallest secret we accept for HS256. Anything shorter
// than the SHA-256 digest weakens the MAC.
const MinHMACKeySize = 32

var (
	ErrConfiguration = errors.New("jwtx: invalid key configuration")
	ErrSigning       = errors.New("jwtx: signing failed")
)

// SymmetricKey is the shared secret used to sign and verify HS256 tokens.
type SymmetricKey []byte

// NewSymmetricKey derives the signing key from the configured secret. The key
// is the UTF-8 encoding of the secret, so the same secret always yields the
// same key across restarts and replicas.
func NewSymmetricKey(secret string) (SymmetricKey, error) {
	if secret == "" {
		return nil, fmt.Errorf("%w: security key is empty", ErrConfiguration)
	}
	if len(secret) < MinHMACKeySize {
		return nil, fmt.Errorf("%w: security key must be at least %d bytes, got %d",
			ErrConfiguration, MinHMACKeySize, len(secret))
	}
	return SymmetricKey(secret), nil
}

// Validate reports whether the key material can be used for signing.
func (k SymmetricKey) Validate() error {
	if len(k) < MinHMACKeySize {
		return fmt.Errorf("%w: key too short (%d bytes)", ErrSigning, len(k))
	}
	return nil
}

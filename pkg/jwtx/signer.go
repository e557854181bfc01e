package jwtx

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Signer is our interface for anything that can sign JWTs.
type Signer interface {
	Alg() string
	Sign(Claims) (string, error)
	Validate() error
}

// HS256Signer signs tokens with HMAC-SHA256 using a shared secret.
type HS256Signer struct {
	key SymmetricKey
}

// NewSignerHS256 creates an HS256 signer from a symmetric key.
func NewSignerHS256(key SymmetricKey) (*HS256Signer, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	return &HS256Signer{key: key}, nil
}

func (s *HS256Signer) Alg() string { return jwt.SigningMethodHS256.Alg() }

// Sign takes your claims and turns them into a signed JWT string.
func (s *HS256Signer) Sign(claims Claims) (string, error) {
	if err := s.Validate(); err != nil {
		return "", err
	}

	// jwt only accepts a plain []byte for HMAC keys, not named byte types.
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.key))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSigning, err)
	}
	return token, nil
}

// Validate does a quick sanity check to make sure we actually have a key.
func (s *HS256Signer) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: nil signer", ErrSigning)
	}
	return s.key.Validate()
}

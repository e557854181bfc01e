package app

import (
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/jwtauth/pkg/jwtx"
)

// InitAuthKeys derives the HS256 signing key from the configured secret and
// builds the signer used by the token service and the verifier used by the
// bearer middleware. Both share the same key, so every replica configured
// with the same secret accepts tokens minted by any other.
//
// The verifier enforces the configured issuer and audience, so tokens minted
// for another deployment with a reused secret are still rejected.
func InitAuthKeys(cfg TokenConfig, logger *slog.Logger) (*jwtx.HS256Signer, *jwtx.HS256Verifier, error) {
	key, err := jwtx.NewSymmetricKey(cfg.SecurityKey)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	signer, err := jwtx.NewSignerHS256(key)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	verifier := jwtx.NewVerifierHS256(key, jwtx.VerifyOptions{
		Issuer:   cfg.Issuer,
		Audience: cfg.Audience,
	})

	logger.Info("signing key loaded", "alg", signer.Alg(), "issuer", cfg.Issuer, "audience", cfg.Audience)
	return signer, verifier, nil
}

package service

import (
	"errors"
	"fmt"

	"github.com/aussiebroadwan/jwtauth/internal/auth/domain"
	"github.com/aussiebroadwan/jwtauth/pkg/cryptox"
)

var ErrInvalidClientConfig = errors.New("invalid client configuration")

// ClientRegistry holds the trusted machine clients loaded at startup. It is
// never mutated after construction, so concurrent lookups need no locking.
type ClientRegistry struct {
	clients []domain.Client
}

// NewClientRegistry copies clients into a registry. Every client needs an id,
// a secret and a positive lifetime, and ids must be unique.
func NewClientRegistry(clients []domain.Client) (*ClientRegistry, error) {
	seen := make(map[string]struct{}, len(clients))
	out := make([]domain.Client, 0, len(clients))

	for i, c := range clients {
		switch {
		case c.ID == "":
			return nil, fmt.Errorf("%w: client %d has no id", ErrInvalidClientConfig, i)
		case c.Secret == "":
			return nil, fmt.Errorf("%w: client %q has no secret", ErrInvalidClientConfig, c.ID)
		case c.AllowedLifetimeMinutes <= 0:
			return nil, fmt.Errorf("%w: client %q lifetime must be positive", ErrInvalidClientConfig, c.ID)
		}
		if _, dup := seen[c.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate client id %q", ErrInvalidClientConfig, c.ID)
		}
		seen[c.ID] = struct{}{}
		out = append(out, c)
	}

	return &ClientRegistry{clients: out}, nil
}

// Find returns the client matching both id and secret. Every entry is
// checked so the time taken does not depend on which one matched.
func (r *ClientRegistry) Find(id, secret string) (domain.Client, bool) {
	var (
		found domain.Client
		ok    bool
	)
	for _, c := range r.clients {
		idMatch := cryptox.ConstantTimeEqual(c.ID, id)
		secretMatch := cryptox.ConstantTimeEqual(c.Secret, secret)
		if idMatch && secretMatch && !ok {
			found, ok = c, true
		}
	}
	return found, ok
}

func (r *ClientRegistry) Len() int { return len(r.clients) }

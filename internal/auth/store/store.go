package store

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/jwtauth/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
	ErrMultipleRows  = errors.New("store: more than one row matched")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this. Repositories are exposed as methods so a Tx can hand out
// the same repositories bound to the transaction, which stops anyone from
// opening a transaction inside another one.
type Store interface {
	Users() Users
	RefreshTokens() RefreshTokens

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// Use it for multi-step operations that must be atomic (e.g., refresh rotation).
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is the unit of work for one auth flow. Repositories obtained from it
// only become durable on Commit. Rollback after Commit is a no-op.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail is used by the login flow. The email must already be
	// normalised.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	// Returns ErrAlreadyExists when the email is taken.
	CreateUser(ctx context.Context, u domain.User) error
}

type RefreshTokens interface {
	// GetRefreshTokenByUserID returns the single record owned by a user.
	GetRefreshTokenByUserID(ctx context.Context, userID string) (domain.RefreshToken, error)

	// GetRefreshTokenByCode looks a record up by the fingerprint of the opaque
	// code. Returns ErrMultipleRows if the uniqueness invariant is broken.
	GetRefreshTokenByCode(ctx context.Context, codeHash string) (domain.RefreshToken, error)

	// CreateRefreshToken inserts a record for a user that has none.
	// Returns ErrAlreadyExists on a user or code collision.
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error

	// UpdateRefreshToken replaces the code and expiry of the user's record,
	// inserting it when missing.
	UpdateRefreshToken(ctx context.Context, t domain.RefreshToken) error

	// DeleteRefreshToken removes the user's record.
	DeleteRefreshToken(ctx context.Context, userID string) error

	// DeleteExpiredRefreshTokens is housekeeping and returns the rows removed.
	DeleteExpiredRefreshTokens(ctx context.Context) (int64, error)
}

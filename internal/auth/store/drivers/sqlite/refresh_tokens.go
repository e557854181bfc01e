package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/jwtauth/internal/auth/domain"
	"github.com/aussiebroadwan/jwtauth/internal/auth/store"
)

type refreshTokensRepo struct {
	q *queries
}

func (r *refreshTokensRepo) GetRefreshTokenByUserID(ctx context.Context, userID string) (domain.RefreshToken, error) {
	row, err := r.q.getRefreshTokenByUserID(ctx, userID)
	if err != nil {
		return domain.RefreshToken{}, mapNotFound(err)
	}
	return mapRefreshToken(row), nil
}

func (r *refreshTokensRepo) GetRefreshTokenByCode(ctx context.Context, codeHash string) (domain.RefreshToken, error) {
	rows, err := r.q.getRefreshTokensByCode(ctx, codeHash)
	if err != nil {
		return domain.RefreshToken{}, err
	}
	switch len(rows) {
	case 0:
		return domain.RefreshToken{}, store.ErrNotFound
	case 1:
		return mapRefreshToken(rows[0]), nil
	default:
		return domain.RefreshToken{}, store.ErrMultipleRows
	}
}

func (r *refreshTokensRepo) CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error {
	err := r.q.createRefreshToken(ctx, refreshTokenRow{
		UserID:    t.UserID,
		CodeHash:  t.CodeHash,
		ExpiresAt: toMillis(t.ExpiresAt),
	})
	return mapConstraint(err)
}

func (r *refreshTokensRepo) UpdateRefreshToken(ctx context.Context, t domain.RefreshToken) error {
	err := r.q.upsertRefreshToken(ctx, refreshTokenRow{
		UserID:    t.UserID,
		CodeHash:  t.CodeHash,
		ExpiresAt: toMillis(t.ExpiresAt),
	})
	return mapConstraint(err)
}

func (r *refreshTokensRepo) DeleteRefreshToken(ctx context.Context, userID string) error {
	n, err := r.q.deleteRefreshToken(ctx, userID)
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *refreshTokensRepo) DeleteExpiredRefreshTokens(ctx context.Context) (int64, error) {
	return r.q.deleteExpiredRefreshTokens(ctx, toMillis(time.Now()))
}

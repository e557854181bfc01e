package postgres

import (
	"context"

	"github.com/aussiebroadwan/jwtauth/internal/auth/domain"
	"github.com/aussiebroadwan/jwtauth/internal/auth/store"
	"github.com/jackc/pgx/v5"
)

type queries struct {
	db dbtx
	// lock is set inside transactions, where code lookups take a row lock
	// so two redemptions of the same code serialise.
	lock bool
}

const (
	qUserByID = `
SELECT id, email, user_name, password_hash, roles, created_at, updated_at
FROM users
WHERE id = $1;
`
	qUserByEmail = `
SELECT id, email, user_name, password_hash, roles, created_at, updated_at
FROM users
WHERE email = $1;
`
	qUserCreate = `
INSERT INTO users (id, email, user_name, password_hash, roles, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7);
`

	qRTByUser = `
SELECT user_id, code_hash, expires_at
FROM refresh_tokens
WHERE user_id = $1;
`
	qRTByCode = `
SELECT user_id, code_hash, expires_at
FROM refresh_tokens
WHERE code_hash = $1
LIMIT 2;
`
	qRTByCodeForUpdate = `
SELECT user_id, code_hash, expires_at
FROM refresh_tokens
WHERE code_hash = $1
LIMIT 2
FOR UPDATE;
`
	qRTCreate = `
INSERT INTO refresh_tokens (user_id, code_hash, expires_at)
VALUES ($1, $2, $3);
`
	qRTUpsert = `
INSERT INTO refresh_tokens (user_id, code_hash, expires_at)
VALUES ($1, $2, $3)
ON CONFLICT (user_id) DO UPDATE SET
    code_hash  = EXCLUDED.code_hash,
    expires_at = EXCLUDED.expires_at;
`
	qRTDelete        = `DELETE FROM refresh_tokens WHERE user_id = $1;`
	qRTDeleteExpired = `DELETE FROM refresh_tokens WHERE expires_at <= NOW();`
)

func scanUser(row pgx.Row) (domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Email, &u.UserName, &u.PasswordHash, &u.Roles, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return domain.User{}, mapNotFound(err)
	}
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return u, nil
}

type usersRepo struct {
	q *queries
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return scanUser(r.q.db.QueryRow(ctx, qUserByID, id))
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return scanUser(r.q.db.QueryRow(ctx, qUserByEmail, email))
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	roles := u.Roles
	if roles == nil {
		roles = []string{}
	}
	_, err := r.q.db.Exec(ctx, qUserCreate, u.ID, u.Email, u.UserName, u.PasswordHash, roles, u.CreatedAt, u.UpdatedAt)
	return mapConstraint(err)
}

type refreshTokensRepo struct {
	q *queries
}

func scanRefreshToken(row pgx.Row) (domain.RefreshToken, error) {
	var t domain.RefreshToken
	if err := row.Scan(&t.UserID, &t.CodeHash, &t.ExpiresAt); err != nil {
		return domain.RefreshToken{}, mapNotFound(err)
	}
	t.ExpiresAt = t.ExpiresAt.UTC()
	return t, nil
}

func (r *refreshTokensRepo) GetRefreshTokenByUserID(ctx context.Context, userID string) (domain.RefreshToken, error) {
	return scanRefreshToken(r.q.db.QueryRow(ctx, qRTByUser, userID))
}

func (r *refreshTokensRepo) GetRefreshTokenByCode(ctx context.Context, codeHash string) (domain.RefreshToken, error) {
	query := qRTByCode
	if r.q.lock {
		query = qRTByCodeForUpdate
	}
	rows, err := r.q.db.Query(ctx, query, codeHash)
	if err != nil {
		return domain.RefreshToken{}, err
	}
	defer rows.Close()

	var found []domain.RefreshToken
	for rows.Next() {
		t, err := scanRefreshToken(rows)
		if err != nil {
			return domain.RefreshToken{}, err
		}
		found = append(found, t)
	}
	if err := rows.Err(); err != nil {
		return domain.RefreshToken{}, err
	}

	switch len(found) {
	case 0:
		return domain.RefreshToken{}, store.ErrNotFound
	case 1:
		return found[0], nil
	default:
		return domain.RefreshToken{}, store.ErrMultipleRows
	}
}

func (r *refreshTokensRepo) CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error {
	_, err := r.q.db.Exec(ctx, qRTCreate, t.UserID, t.CodeHash, t.ExpiresAt)
	return mapConstraint(err)
}

func (r *refreshTokensRepo) UpdateRefreshToken(ctx context.Context, t domain.RefreshToken) error {
	_, err := r.q.db.Exec(ctx, qRTUpsert, t.UserID, t.CodeHash, t.ExpiresAt)
	return mapConstraint(err)
}

func (r *refreshTokensRepo) DeleteRefreshToken(ctx context.Context, userID string) error {
	tag, err := r.q.db.Exec(ctx, qRTDelete, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *refreshTokensRepo) DeleteExpiredRefreshTokens(ctx context.Context) (int64, error) {
	tag, err := r.q.db.Exec(ctx, qRTDeleteExpired)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

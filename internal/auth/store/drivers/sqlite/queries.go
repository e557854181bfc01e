package sqlite

import (
	"context"
	"database/sql"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx so the same queries run
// inside and outside a transaction.
type dbtx interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

type queries struct {
	db dbtx
}

func newQueries(db dbtx) *queries {
	return &queries{db: db}
}

const getUserByID = `
SELECT id, email, user_name, password_hash, roles, created_at, updated_at
FROM users
WHERE id = ?`

const getUserByEmail = `
SELECT id, email, user_name, password_hash, roles, created_at, updated_at
FROM users
WHERE email = ?`

const createUser = `
INSERT INTO users (id, email, user_name, password_hash, roles, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`

type userRow struct {
	ID           string
	Email        string
	UserName     string
	PasswordHash string
	Roles        string
	CreatedAt    int64
	UpdatedAt    int64
}

func (q *queries) getUser(ctx context.Context, query, arg string) (userRow, error) {
	var r userRow
	err := q.db.QueryRowContext(ctx, query, arg).Scan(
		&r.ID, &r.Email, &r.UserName, &r.PasswordHash, &r.Roles, &r.CreatedAt, &r.UpdatedAt,
	)
	return r, err
}

func (q *queries) createUser(ctx context.Context, r userRow) error {
	_, err := q.db.ExecContext(ctx, createUser,
		r.ID, r.Email, r.UserName, r.PasswordHash, r.Roles, r.CreatedAt, r.UpdatedAt,
	)
	return err
}

const getRefreshTokenByUserID = `
SELECT user_id, code_hash, expires_at
FROM refresh_tokens
WHERE user_id = ?`

// LIMIT 2 is enough to detect a broken uniqueness invariant.
const getRefreshTokensByCode = `
SELECT user_id, code_hash, expires_at
FROM refresh_tokens
WHERE code_hash = ?
LIMIT 2`

const createRefreshToken = `
INSERT INTO refresh_tokens (user_id, code_hash, expires_at)
VALUES (?, ?, ?)`

const upsertRefreshToken = `
INSERT INTO refresh_tokens (user_id, code_hash, expires_at)
VALUES (?, ?, ?)
ON CONFLICT (user_id) DO UPDATE SET
    code_hash  = excluded.code_hash,
    expires_at = excluded.expires_at`

const deleteRefreshToken = `DELETE FROM refresh_tokens WHERE user_id = ?`

const deleteExpiredRefreshTokens = `DELETE FROM refresh_tokens WHERE expires_at <= ?`

type refreshTokenRow struct {
	UserID    string
	CodeHash  string
	ExpiresAt int64
}

func (q *queries) getRefreshTokenByUserID(ctx context.Context, userID string) (refreshTokenRow, error) {
	var r refreshTokenRow
	err := q.db.QueryRowContext(ctx, getRefreshTokenByUserID, userID).Scan(&r.UserID, &r.CodeHash, &r.ExpiresAt)
	return r, err
}

func (q *queries) getRefreshTokensByCode(ctx context.Context, codeHash string) ([]refreshTokenRow, error) {
	rows, err := q.db.QueryContext(ctx, getRefreshTokensByCode, codeHash)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []refreshTokenRow
	for rows.Next() {
		var r refreshTokenRow
		if err := rows.Scan(&r.UserID, &r.CodeHash, &r.ExpiresAt); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (q *queries) createRefreshToken(ctx context.Context, r refreshTokenRow) error {
	_, err := q.db.ExecContext(ctx, createRefreshToken, r.UserID, r.CodeHash, r.ExpiresAt)
	return err
}

func (q *queries) upsertRefreshToken(ctx context.Context, r refreshTokenRow) error {
	_, err := q.db.ExecContext(ctx, upsertRefreshToken, r.UserID, r.CodeHash, r.ExpiresAt)
	return err
}

func (q *queries) deleteRefreshToken(ctx context.Context, userID string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteRefreshToken, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *queries) deleteExpiredRefreshTokens(ctx context.Context, nowMillis int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteExpiredRefreshTokens, nowMillis)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

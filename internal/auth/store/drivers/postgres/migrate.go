package postgres

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/jwtauth/internal/auth/store/drivers/postgres/migrations"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// ApplyMigrations runs the embedded goose migrations over a short-lived
// database/sql connection so the pool is left untouched.
func (s *Store) ApplyMigrations() error {
	db, err := sql.Open("pgx", s.url)
	if err != nil {
		return err
	}
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.Migrations)
	if err != nil {
		return err
	}

	_, err = provider.Up(context.Background())
	return err
}

// Package postgres is the Postgres payment store.
package postgres

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"

	"github.com/fitstack/reepay-payments/migrations"
)

// RunMigrations applies all pending migrations. An empty dir means the
// migrations embedded in the binary.
func RunMigrations(connStr, dir string) error {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return errors.Wrap(err, "open database")
	}
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Wrap(err, "set goose dialect")
	}
	if dir == "" {
		goose.SetBaseFS(migrations.FS)
		defer goose.SetBaseFS(nil)
		dir = "."
	}

	if err := goose.Up(db, dir); err != nil {
		return errors.Wrap(err, "run migrations")
	}
	return nil
}

// GetPool opens a connection pool.
func GetPool(ctx context.Context, connStr string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, errors.Wrap(err, "create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "ping database")
	}
	return pool, nil
}

// Package database wraps the Postgres pool with the application's
// queries.
package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/matt-dz/tidyplan/internal/sql"
)

// Pool is the subset of pgxpool.Pool the queries need. Narrowing it
// keeps the wrapper testable.
type Pool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Database struct {
	Pool Pool
}

func NewDatabase(pool *pgxpool.Pool) *Database {
	return &Database{Pool: pool}
}

// EnsureSchema applies the embedded schema. Every statement is
// IF NOT EXISTS, so reapplying on startup is safe.
func (db *Database) EnsureSchema(ctx context.Context) error {
	if _, err := db.Pool.Exec(ctx, sql.Schema()); err != nil {
		return fmt.Errorf("applying database schema: %w", err)
	}
	return nil
}

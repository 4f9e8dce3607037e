// Package store implements the credential store: persistence for OAuth
// clients, authorization codes, access/refresh tokens, API keys, and
// rate-limit counters. Operations that gate security decisions (code
// consumption, refresh rotation, counter increments) are single atomic
// statements so concurrent requests can never double-redeem a credential.
package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when a credential does not exist or is no longer
// valid. Callers must not conflate it with infrastructure errors.
var ErrNotFound = errors.New("not found")

// DB is the subset of pgxpool.Pool the store needs.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store persists access-control state in the core database.
type Store struct {
	db DB
}

// New creates a Store backed by the given database.
func New(db DB) *Store {
	return &Store{db: db}
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

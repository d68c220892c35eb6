// Package repo contains all database access logic for the event catalog.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here, only SQL and type mapping.
package repo

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, and unit
// tests to pass a pgxmock pool.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// txBeginner is a db that can also open a transaction.
// *pgxpool.Pool, pgx.Tx (as a savepoint) and pgxmock pools all qualify.
type txBeginner interface {
	db
	Begin(ctx context.Context) (pgx.Tx, error)
}

// psql renders squirrel builders with Postgres $n placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing the scan
// helpers to be reused for QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// Repos groups the repositories bound to one connection or transaction.
type Repos struct {
	Events EventRepo
	Tags   TagRepo
	Users  UserRepo
}

// NewRepos binds every repository to the same db handle.
func NewRepos(db db) Repos {
	return Repos{
		Events: NewEventRepo(db),
		Tags:   NewTagRepo(db),
		Users:  NewUserRepo(db),
	}
}

// Store hands out repositories for reads and scopes writes to a transaction.
type Store interface {
	// Repos returns repositories bound to the pool. Use for reads.
	Repos() Repos

	// WithTx runs fn with repositories bound to a fresh transaction.
	// The transaction commits if fn returns nil and rolls back on every other
	// exit path, including a panic inside fn. fn's error is returned as is.
	WithTx(ctx context.Context, fn func(Repos) error) error
}

// PgStore is the Postgres implementation of Store.
type PgStore struct {
	db    txBeginner
	repos Repos
}

// NewStore constructs a Store backed by the provided pool.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx or a pgxmock pool.
func NewStore(db txBeginner) *PgStore {
	return &PgStore{db: db, repos: NewRepos(db)}
}

// Repos returns the pool-bound repositories.
func (s *PgStore) Repos() Repos { return s.repos }

// WithTx runs fn inside a transaction.
func (s *PgStore) WithTx(ctx context.Context, fn func(Repos) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repo.Store.WithTx: begin: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	if err := fn(NewRepos(tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("repo.Store.WithTx: commit: %w", err)
	}
	committed = true
	return nil
}

// Package testutil holds the helpers shared by the integration tests.
// Everything that needs a database reads TEST_DATABASE_URL and skips the test
// when it is unset, so a plain go test never needs Postgres.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
)

// EnvDSN names the variable holding the test database connection string.
const EnvDSN = "TEST_DATABASE_URL"

// DSN returns the test database connection string, skipping t when it is unset.
func DSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv(EnvDSN)
	if dsn == "" {
		t.Skip(EnvDSN + " not set; skipping integration test")
	}
	return dsn
}

// OpenSQLDB opens and pings a *sql.DB over the pgx driver, for goose.
// It takes a plain DSN so TestMain, which has no *testing.T, can use it.
func OpenSQLDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("testutil.OpenSQLDB: open: %w", err)
	}
	if err := db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("testutil.OpenSQLDB: ping: %w", err)
	}
	return db, nil
}

// BeginTx opens a transaction on a fresh pool. The transaction is rolled back
// and the pool closed when t finishes, so every catalog row a test writes,
// users and tags included, disappears with it.
//
// Pass the transaction to repo.NewStore or the repo constructors; they accept
// a pgx.Tx wherever they accept a pool.
func BeginTx(t *testing.T) pgx.Tx {
	t.Helper()
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, DSN(t))
	if err != nil {
		t.Fatalf("testutil.BeginTx: open pool: %v", err)
	}
	t.Cleanup(pool.Close)

	tx, err := pool.Begin(ctx)
	if err != nil {
		t.Fatalf("testutil.BeginTx: begin: %v", err)
	}
	t.Cleanup(func() { _ = tx.Rollback(ctx) })
	return tx
}

// SeedUser inserts an author with a unique username and returns its id.
func SeedUser(t *testing.T, tx pgx.Tx) int64 {
	t.Helper()
	var id int64
	err := tx.QueryRow(context.Background(),
		`INSERT INTO users (username) VALUES ($1) RETURNING id`, "user-"+uuid.NewString()).Scan(&id)
	if err != nil {
		t.Fatalf("testutil.SeedUser: %v", err)
	}
	return id
}

// SeedTag inserts a tag named prefix plus a random suffix and returns its id
// and name. Tag names are unique, so parallel runs must not share them.
func SeedTag(t *testing.T, tx pgx.Tx, prefix string) (int64, string) {
	t.Helper()
	name := prefix + "-" + uuid.NewString()[:8]
	var id int64
	err := tx.QueryRow(context.Background(),
		`INSERT INTO tags (name) VALUES ($1) RETURNING id`, name).Scan(&id)
	if err != nil {
		t.Fatalf("testutil.SeedTag: %v", err)
	}
	return id, name
}

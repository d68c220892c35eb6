package repo

import (
	"context"
	"fmt"
)

// UserRepo is the catalog's only window onto user accounts.
type UserRepo interface {
	// Exists reports whether a user with the given id exists.
	Exists(ctx context.Context, id int64) (bool, error)
}

type pgUserRepo struct {
	db db
}

// NewUserRepo constructs a UserRepo backed by the provided db connection.
func NewUserRepo(db db) UserRepo {
	return &pgUserRepo{db: db}
}

func (r *pgUserRepo) Exists(ctx context.Context, id int64) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`

	var exists bool
	if err := r.db.QueryRow(ctx, q, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("repo.UserRepo.Exists: %w", err)
	}
	return exists, nil
}

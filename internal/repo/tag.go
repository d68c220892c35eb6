package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/pkordes/event-catalog/internal/domain"
)

// TagRepo defines the read operations the catalog needs on Tags.
// Tags are created and deleted by a separate collaborator.
type TagRepo interface {
	// GetByName looks a tag up by exact, case-sensitive name.
	// Returns domain.ErrNotFound if no tag has that name.
	GetByName(ctx context.Context, name string) (domain.Tag, error)
}

// pgTagRepo is the Postgres implementation of TagRepo.
type pgTagRepo struct {
	db db
}

// NewTagRepo constructs a TagRepo backed by the provided db connection.
func NewTagRepo(db db) TagRepo {
	return &pgTagRepo{db: db}
}

// GetByName retrieves a tag by its unique name.
func (r *pgTagRepo) GetByName(ctx context.Context, name string) (domain.Tag, error) {
	const q = `SELECT id, name FROM tags WHERE name = $1`

	result, err := scanTag(r.db.QueryRow(ctx, q, name))
	if err != nil {
		return domain.Tag{}, fmt.Errorf("repo.TagRepo.GetByName: %w", err)
	}
	return result, nil
}

// scanTag maps a single database row into a domain.Tag.
func scanTag(s scanner) (domain.Tag, error) {
	var t domain.Tag
	err := s.Scan(&t.ID, &t.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Tag{}, domain.ErrNotFound
		}
		return domain.Tag{}, err
	}
	return t, nil
}

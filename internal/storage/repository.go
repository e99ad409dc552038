// Package storage is the narrow query/command interface over the relational
// store. All SQL lives here; callers see models and pgx.ErrNoRows via
// IsNotFound only.
package storage

import (
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/bzbookit/bzbookit-backend/libs/db"
)

type Repository struct {
	pool *db.Pool
}

func NewRepository(pool *db.Pool) *Repository {
	return &Repository{pool: pool}
}

func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

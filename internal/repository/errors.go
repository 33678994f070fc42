package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"

	"botdash/internal/domain"
)

// notFound maps pgx.ErrNoRows to domain.ErrNotFound
func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

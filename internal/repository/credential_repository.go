package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"botdash/internal/domain"
)

// CredentialRepositoryImpl implements the CredentialRepository interface
type CredentialRepositoryImpl struct {
	db *pgxpool.Pool
}

// NewCredentialRepository creates a new CredentialRepository
func NewCredentialRepository(db *pgxpool.Pool) domain.CredentialRepository {
	return &CredentialRepositoryImpl{db: db}
}

// Save stores a credential with its sealed secret
func (r *CredentialRepositoryImpl) Save(ctx context.Context, c *domain.APICredential) error {
	query := `
		INSERT INTO api_credentials (id, user_id, exchange, label, key_id, sealed_secret, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query, c.ID, c.UserID, c.Exchange, c.Label, c.KeyID, c.SealedSecret, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save credential: %w", err)
	}
	return nil
}

// GetByID retrieves a credential by ID
func (r *CredentialRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*domain.APICredential, error) {
	query := `
		SELECT id, user_id, exchange, label, key_id, sealed_secret, created_at
		FROM api_credentials
		WHERE id = $1
	`

	c := &domain.APICredential{}
	err := r.db.QueryRow(ctx, query, id).Scan(&c.ID, &c.UserID, &c.Exchange, &c.Label, &c.KeyID, &c.SealedSecret, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get credential: %w", notFound(err))
	}
	return c, nil
}

// GetByUserID retrieves all credentials of a user
func (r *CredentialRepositoryImpl) GetByUserID(ctx context.Context, userID string) ([]*domain.APICredential, error) {
	query := `
		SELECT id, user_id, exchange, label, key_id, sealed_secret, created_at
		FROM api_credentials
		WHERE user_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query credentials: %w", err)
	}
	defer rows.Close()

	creds := make([]*domain.APICredential, 0)
	for rows.Next() {
		c := &domain.APICredential{}
		if err := rows.Scan(&c.ID, &c.UserID, &c.Exchange, &c.Label, &c.KeyID, &c.SealedSecret, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan credential: %w", err)
		}
		creds = append(creds, c)
	}

	return creds, rows.Err()
}

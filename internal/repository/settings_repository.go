package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"botdash/internal/domain"
)

// SettingsRepositoryImpl stores each user's settings as one JSONB blob
type SettingsRepositoryImpl struct {
	db *pgxpool.Pool
}

// NewSettingsRepository creates a new SettingsRepository
func NewSettingsRepository(db *pgxpool.Pool) domain.SettingsRepository {
	return &SettingsRepositoryImpl{db: db}
}

// Get retrieves the settings blob of a user
func (r *SettingsRepositoryImpl) Get(ctx context.Context, userID string) (*domain.UserSettings, error) {
	var raw []byte
	err := r.db.QueryRow(ctx, `SELECT data FROM user_settings WHERE user_id = $1`, userID).Scan(&raw)
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", notFound(err))
	}

	var settings domain.UserSettings
	if err := json.Unmarshal(raw, &settings); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	return &settings, nil
}

// Put replaces the settings blob of a user
func (r *SettingsRepositoryImpl) Put(ctx context.Context, userID string, settings *domain.UserSettings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO user_settings (user_id, data, updated_at)
		VALUES ($1, $2, CURRENT_TIMESTAMP)
		ON CONFLICT (user_id) DO UPDATE SET
			data = EXCLUDED.data,
			updated_at = CURRENT_TIMESTAMP
	`, userID, raw)
	if err != nil {
		return fmt.Errorf("failed to set settings for %s: %w", userID, err)
	}

	return nil
}

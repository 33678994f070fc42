package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"botdash/internal/domain"
)

var (
	themes    = []string{"light", "dark", "system"}
	languages = []string{"en", "es", "de", "fr", "pt", "id"}
)

// SettingsService reads and writes user settings
type SettingsService struct {
	repo domain.SettingsRepository
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(repo domain.SettingsRepository) *SettingsService {
	return &SettingsService{repo: repo}
}

// Get returns the stored settings or the defaults
func (s *SettingsService) Get(ctx context.Context, user *domain.User) (domain.UserSettings, error) {
	settings, err := s.repo.Get(ctx, user.ID.String())
	if errors.Is(err, domain.ErrNotFound) {
		return domain.DefaultUserSettings(), nil
	}
	if err != nil {
		return domain.UserSettings{}, err
	}
	return *settings, nil
}

// Replace stores settings as given
func (s *SettingsService) Replace(ctx context.Context, user *domain.User, settings domain.UserSettings) (domain.UserSettings, error) {
	if err := validateSettings(settings); err != nil {
		return domain.UserSettings{}, err
	}
	if err := s.repo.Put(ctx, user.ID.String(), &settings); err != nil {
		return domain.UserSettings{}, err
	}
	return settings, nil
}

// Patch merges a partial JSON document into the current settings
func (s *SettingsService) Patch(ctx context.Context, user *domain.User, patch []byte) (domain.UserSettings, error) {
	current, err := s.Get(ctx, user)
	if err != nil {
		return domain.UserSettings{}, err
	}
	if err := json.Unmarshal(patch, &current); err != nil {
		return domain.UserSettings{}, fmt.Errorf("%w: %v", domain.ErrInvalid, err)
	}
	return s.Replace(ctx, user, current)
}

func validateSettings(settings domain.UserSettings) error {
	if !slices.Contains(themes, settings.Theme) {
		return fmt.Errorf("%w: unknown theme %q", domain.ErrInvalid, settings.Theme)
	}
	if !slices.Contains(languages, settings.Language) {
		return fmt.Errorf("%w: unsupported language %q", domain.ErrInvalid, settings.Language)
	}
	return nil
}

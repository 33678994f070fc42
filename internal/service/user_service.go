package service

import (
	"context"
	"time"

	"botdash/internal/domain"
)

// UserService mirrors identity-provider users into local storage
type UserService struct {
	repo domain.UserRepository
	now  func() time.Time
}

// NewUserService creates a new UserService
func NewUserService(repo domain.UserRepository) *UserService {
	return &UserService{repo: repo, now: time.Now}
}

// Touch records the session user so admin screens can list them
func (s *UserService) Touch(ctx context.Context, user *domain.User) error {
	u := *user
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now()
	}
	return s.repo.Upsert(ctx, &u)
}

// List returns every known user. Admin only.
func (s *UserService) List(ctx context.Context, user *domain.User) ([]*domain.User, error) {
	if !user.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	return s.repo.GetAll(ctx)
}

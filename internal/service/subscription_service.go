package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"botdash/internal/domain"
)

// SubscriptionService manages billing-plan subscriptions
type SubscriptionService struct {
	repo     domain.SubscriptionRepository
	settings domain.SettingsRepository
	notifier domain.Notifier
	log      *logrus.Entry
	now      func() time.Time
}

// NewSubscriptionService creates a new SubscriptionService. notifier may be nil.
func NewSubscriptionService(
	repo domain.SubscriptionRepository,
	settings domain.SettingsRepository,
	notifier domain.Notifier,
	log *logrus.Entry,
) *SubscriptionService {
	return &SubscriptionService{
		repo:     repo,
		settings: settings,
		notifier: notifier,
		log:      log.WithField("component", "subscriptions"),
		now:      time.Now,
	}
}

// SubscriptionView is a subscription with its computed remaining days
type SubscriptionView struct {
	*domain.Subscription
	DaysRemaining int `json:"days_remaining"`
}

// SubscriptionInput creates a subscription for a user
type SubscriptionInput struct {
	UserID    string     `json:"user_id"`
	PackageID uuid.UUID  `json:"package_id"`
	StartDate *time.Time `json:"start_date,omitempty"`
}

func (s *SubscriptionService) view(sub *domain.Subscription) SubscriptionView {
	return SubscriptionView{Subscription: sub, DaysRemaining: sub.DaysRemaining(s.now())}
}

// Current returns the user's current subscription
func (s *SubscriptionService) Current(ctx context.Context, user *domain.User) (SubscriptionView, error) {
	sub, err := s.repo.GetCurrentForUser(ctx, user.ID.String())
	if err != nil {
		return SubscriptionView{}, err
	}
	return s.view(sub), nil
}

// Packages lists the billing packages
func (s *SubscriptionService) Packages(ctx context.Context) ([]*domain.Package, error) {
	return s.repo.GetPackages(ctx)
}

// List returns every subscription. Admin only.
func (s *SubscriptionService) List(ctx context.Context, user *domain.User, status string) ([]SubscriptionView, error) {
	if !user.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	subs, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	out := make([]SubscriptionView, 0, len(subs))
	for _, sub := range subs {
		if status != "" && sub.Status != status {
			continue
		}
		out = append(out, s.view(sub))
	}
	return out, nil
}

// Create starts a subscription for a user. Admin only.
func (s *SubscriptionService) Create(ctx context.Context, user *domain.User, in SubscriptionInput) (SubscriptionView, error) {
	if !user.IsAdmin() {
		return SubscriptionView{}, domain.ErrForbidden
	}
	if in.UserID == "" {
		return SubscriptionView{}, fmt.Errorf("%w: user_id is required", domain.ErrInvalid)
	}

	pkg, err := s.repo.GetPackageByID(ctx, in.PackageID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return SubscriptionView{}, fmt.Errorf("%w: unknown package", domain.ErrInvalid)
		}
		return SubscriptionView{}, err
	}

	now := s.now()
	start := now
	if in.StartDate != nil {
		start = *in.StartDate
	}
	status := domain.SubscriptionActive
	if start.After(now) {
		status = domain.SubscriptionPending
	}

	sub := &domain.Subscription{
		ID:          uuid.New(),
		UserID:      in.UserID,
		PackageID:   pkg.ID,
		PackageName: pkg.Name,
		StartDate:   start,
		EndDate:     start.AddDate(0, 0, pkg.DurationDays),
		Status:      status,
		CreatedAt:   now,
	}
	if err := s.repo.Create(ctx, sub); err != nil {
		return SubscriptionView{}, err
	}

	s.log.WithFields(logrus.Fields{"subscription_id": sub.ID, "user_id": sub.UserID, "package": pkg.Name}).Info("Subscription created")
	return s.view(sub), nil
}

// Cancel marks a subscription cancelled. Admin only.
func (s *SubscriptionService) Cancel(ctx context.Context, user *domain.User, id uuid.UUID) (SubscriptionView, error) {
	if !user.IsAdmin() {
		return SubscriptionView{}, domain.ErrForbidden
	}
	sub, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return SubscriptionView{}, err
	}
	if sub.Status == domain.SubscriptionCancelled {
		return SubscriptionView{}, fmt.Errorf("%w: subscription already cancelled", domain.ErrConflict)
	}
	if err := s.repo.UpdateStatus(ctx, id, domain.SubscriptionCancelled); err != nil {
		return SubscriptionView{}, err
	}
	sub.Status = domain.SubscriptionCancelled
	return s.view(sub), nil
}

// ExpireDue activates pending subscriptions whose start date has come, then
// marks subscriptions past their end date as expired. It returns how many
// expired.
func (s *SubscriptionService) ExpireDue(ctx context.Context) (int, error) {
	now := s.now()
	expired, err := s.startPending(ctx, now)
	if err != nil {
		return 0, err
	}

	due, err := s.repo.GetActiveEndingBefore(ctx, now.Add(time.Nanosecond))
	if err != nil {
		return 0, fmt.Errorf("failed to load due subscriptions: %w", err)
	}

	for _, sub := range due {
		if !sub.IsDue(now) {
			continue
		}
		if err := s.repo.UpdateStatus(ctx, sub.ID, domain.SubscriptionExpired); err != nil {
			s.log.WithError(err).WithField("subscription_id", sub.ID).Error("Failed to expire subscription")
			continue
		}
		expired++
	}

	if expired > 0 {
		s.log.WithField("expired", expired).Info("Expired due subscriptions")
	}
	return expired, nil
}

// startPending activates started pending subscriptions. Ones that already
// ended go straight to expired and are counted.
func (s *SubscriptionService) startPending(ctx context.Context, now time.Time) (int, error) {
	pending, err := s.repo.GetPendingStartingBefore(ctx, now.Add(time.Nanosecond))
	if err != nil {
		return 0, fmt.Errorf("failed to load pending subscriptions: %w", err)
	}

	expired, activated := 0, 0
	for _, sub := range pending {
		if !sub.HasStarted(now) {
			continue
		}
		status := domain.SubscriptionActive
		if !now.Before(sub.EndDate) {
			status = domain.SubscriptionExpired
		}
		if err := s.repo.UpdateStatus(ctx, sub.ID, status); err != nil {
			s.log.WithError(err).WithField("subscription_id", sub.ID).Error("Failed to start pending subscription")
			continue
		}
		if status == domain.SubscriptionExpired {
			expired++
		} else {
			activated++
		}
	}

	if activated > 0 {
		s.log.WithField("activated", activated).Info("Activated pending subscriptions")
	}
	return expired, nil
}

// RemindExpiring notifies about active subscriptions ending within days,
// skipping users who turned reminders off. It returns the number sent.
func (s *SubscriptionService) RemindExpiring(ctx context.Context, days int) (int, error) {
	if s.notifier == nil {
		return 0, nil
	}
	now := s.now()
	subs, err := s.repo.GetActiveEndingBefore(ctx, now.AddDate(0, 0, days))
	if err != nil {
		return 0, fmt.Errorf("failed to load expiring subscriptions: %w", err)
	}

	sent := 0
	for _, sub := range subs {
		left := sub.DaysRemaining(now)
		if left == 0 {
			continue
		}
		if !s.wantsReminder(ctx, sub.UserID) {
			continue
		}
		if err := s.notifier.SendSubscriptionReminder(*sub, left); err != nil {
			s.log.WithError(err).WithField("subscription_id", sub.ID).Error("Failed to send reminder")
			continue
		}
		sent++
	}
	return sent, nil
}

func (s *SubscriptionService) wantsReminder(ctx context.Context, userID string) bool {
	if s.settings == nil {
		return true
	}
	settings, err := s.settings.Get(ctx, userID)
	if err != nil {
		return domain.DefaultUserSettings().Notifications.SubscriptionReminders
	}
	return settings.Notifications.SubscriptionReminders
}

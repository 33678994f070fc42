package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	// Upsert stores the user as last seen from the identity provider
	Upsert(ctx context.Context, user *User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)

	// GetAll retrieves all users
	GetAll(ctx context.Context) ([]*User, error)
}

// AccountRepository defines the interface for account data operations
type AccountRepository interface {
	Create(ctx context.Context, account *Account) error
	Update(ctx context.Context, account *Account) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)

	// GetByUserID retrieves accounts owned by a user in creation order
	GetByUserID(ctx context.Context, userID string) ([]*Account, error)

	// GetAll retrieves every account in creation order
	GetAll(ctx context.Context) ([]*Account, error)

	// UpdateConnectionStatus sets the connection status of one account
	UpdateConnectionStatus(ctx context.Context, id uuid.UUID, status string) error
}

// CredentialRepository stores API credentials
type CredentialRepository interface {
	Save(ctx context.Context, cred *APICredential) error
	GetByID(ctx context.Context, id uuid.UUID) (*APICredential, error)
	GetByUserID(ctx context.Context, userID string) ([]*APICredential, error)
}

// BotRepository defines the interface for bot data operations
type BotRepository interface {
	Create(ctx context.Context, bot *Bot) error
	Update(ctx context.Context, bot *Bot) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*Bot, error)

	// GetAll retrieves all bots, optionally restricted to one tier
	GetAll(ctx context.Context, tier string) ([]*Bot, error)
}

// SignalRepository defines the interface for signal log operations
type SignalRepository interface {
	// Save stores a signal together with its outcomes
	Save(ctx context.Context, signal *Signal) error

	// GetByID retrieves a signal by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*Signal, error)

	// GetRecent retrieves the most recent signals, optionally for one source
	GetRecent(ctx context.Context, source string, limit int) ([]*Signal, error)

	// DeleteOlderThan removes signals older than the cutoff and returns the count
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// SubscriptionRepository defines the interface for subscription and package data
type SubscriptionRepository interface {
	Create(ctx context.Context, sub *Subscription) error
	GetByID(ctx context.Context, id uuid.UUID) (*Subscription, error)

	// GetCurrentForUser returns the most recent non-cancelled subscription
	GetCurrentForUser(ctx context.Context, userID string) (*Subscription, error)

	GetAll(ctx context.Context) ([]*Subscription, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error

	// GetActiveEndingBefore returns active subscriptions whose end date is before t
	GetActiveEndingBefore(ctx context.Context, t time.Time) ([]*Subscription, error)

	// GetPendingStartingBefore returns pending subscriptions whose start date is before t
	GetPendingStartingBefore(ctx context.Context, t time.Time) ([]*Subscription, error)

	GetPackages(ctx context.Context) ([]*Package, error)
	GetPackageByID(ctx context.Context, id uuid.UUID) (*Package, error)
}

// SettingsRepository stores per-user settings blobs
type SettingsRepository interface {
	// Get returns ErrNotFound when the user has no stored settings
	Get(ctx context.Context, userID string) (*UserSettings, error)
	Put(ctx context.Context, userID string, settings *UserSettings) error
}

// Notifier delivers operator-facing notifications
type Notifier interface {
	SendSubscriptionReminder(sub Subscription, daysLeft int) error
	SendSignalFailures(signal Signal) error
}

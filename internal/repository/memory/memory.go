// Package memory holds in-process implementations of the repository
// interfaces. The server falls back to them when no database is configured;
// tests use them directly.
package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"botdash/internal/domain"
)

// Store bundles one of each repository
type Store struct {
	Users         *UserRepository
	Accounts      *AccountRepository
	Credentials   *CredentialRepository
	Bots          *BotRepository
	Signals       *SignalRepository
	Subscriptions *SubscriptionRepository
	Settings      *SettingsRepository
}

// NewStore creates an empty Store
func NewStore() *Store {
	return &Store{
		Users:         &UserRepository{},
		Accounts:      &AccountRepository{},
		Credentials:   &CredentialRepository{},
		Bots:          &BotRepository{},
		Signals:       &SignalRepository{},
		Subscriptions: &SubscriptionRepository{},
		Settings:      &SettingsRepository{data: make(map[string]domain.UserSettings)},
	}
}

// UserRepository is an in-memory domain.UserRepository
type UserRepository struct {
	mu    sync.RWMutex
	users []*domain.User
}

func (r *UserRepository) Upsert(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *user
	for i, u := range r.users {
		if u.ID == user.ID {
			cp.CreatedAt = u.CreatedAt
			cp.UpdatedAt = time.Now()
			r.users[i] = &cp
			return nil
		}
	}
	r.users = append(r.users, &cp)
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *UserRepository) GetAll(_ context.Context) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

// AccountRepository is an in-memory domain.AccountRepository
type AccountRepository struct {
	mu       sync.RWMutex
	accounts []*domain.Account
}

func (r *AccountRepository) Create(_ context.Context, a *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *a
	r.accounts = append(r.accounts, &cp)
	return nil
}

func (r *AccountRepository) Update(_ context.Context, a *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.accounts {
		if existing.ID == a.ID {
			cp := *a
			cp.UserID = existing.UserID
			cp.CreatedAt = existing.CreatedAt
			cp.UpdatedAt = time.Now()
			r.accounts[i] = &cp
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *AccountRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, a := range r.accounts {
		if a.ID == id {
			r.accounts = slices.Delete(r.accounts, i, i+1)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *AccountRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.accounts {
		if a.ID == id {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *AccountRepository) GetByUserID(_ context.Context, userID string) ([]*domain.Account, error) {
	return r.filter(func(a *domain.Account) bool { return a.UserID == userID }), nil
}

func (r *AccountRepository) GetAll(_ context.Context) ([]*domain.Account, error) {
	return r.filter(func(*domain.Account) bool { return true }), nil
}

func (r *AccountRepository) UpdateConnectionStatus(_ context.Context, id uuid.UUID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.ID == id {
			a.ConnectionStatus = status
			a.UpdatedAt = time.Now()
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *AccountRepository) filter(keep func(*domain.Account) bool) []*domain.Account {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Account, 0)
	for _, a := range r.accounts {
		if keep(a) {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out
}

// CredentialRepository is an in-memory domain.CredentialRepository
type CredentialRepository struct {
	mu    sync.RWMutex
	creds []*domain.APICredential
}

func (r *CredentialRepository) Save(_ context.Context, c *domain.APICredential) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.creds = append(r.creds, &cp)
	return nil
}

func (r *CredentialRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.APICredential, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.creds {
		if c.ID == id {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *CredentialRepository) GetByUserID(_ context.Context, userID string) ([]*domain.APICredential, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.APICredential, 0)
	for _, c := range r.creds {
		if c.UserID == userID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

// BotRepository is an in-memory domain.BotRepository
type BotRepository struct {
	mu   sync.RWMutex
	bots []*domain.Bot
}

func (r *BotRepository) Create(_ context.Context, b *domain.Bot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *b
	r.bots = append(r.bots, &cp)
	return nil
}

func (r *BotRepository) Update(_ context.Context, b *domain.Bot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.bots {
		if existing.ID == b.ID {
			cp := *b
			cp.Tier = existing.Tier
			cp.OwnerID = existing.OwnerID
			cp.CreatedAt = existing.CreatedAt
			cp.UpdatedAt = time.Now()
			r.bots[i] = &cp
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *BotRepository) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bots {
		if b.ID == id {
			b.Status = status
			b.UpdatedAt = time.Now()
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *BotRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, b := range r.bots {
		if b.ID == id {
			r.bots = slices.Delete(r.bots, i, i+1)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *BotRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Bot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, b := range r.bots {
		if b.ID == id {
			cp := *b
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *BotRepository) GetAll(_ context.Context, tier string) ([]*domain.Bot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Bot, 0, len(r.bots))
	for _, b := range r.bots {
		if tier == "" || b.Tier == tier {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

// SignalRepository is an in-memory domain.SignalRepository
type SignalRepository struct {
	mu      sync.RWMutex
	signals []*domain.Signal
}

func (r *SignalRepository) Save(_ context.Context, s *domain.Signal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.signals = append(r.signals, copySignal(s))
	return nil
}

func (r *SignalRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Signal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.signals {
		if s.ID == id {
			return copySignal(s), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *SignalRepository) GetRecent(_ context.Context, source string, limit int) ([]*domain.Signal, error) {
	r.mu.RLock()
	out := make([]*domain.Signal, 0, len(r.signals))
	for _, s := range r.signals {
		if source == "" || s.Source == source {
			out = append(out, copySignal(s))
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *SignalRepository) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	before := len(r.signals)
	r.signals = slices.DeleteFunc(r.signals, func(s *domain.Signal) bool { return s.Timestamp.Before(cutoff) })
	return int64(before - len(r.signals)), nil
}

func copySignal(s *domain.Signal) *domain.Signal {
	cp := *s
	cp.Outcomes = append(make([]domain.SignalOutcome, 0, len(s.Outcomes)), s.Outcomes...)
	return &cp
}

// SubscriptionRepository is an in-memory domain.SubscriptionRepository
type SubscriptionRepository struct {
	mu       sync.RWMutex
	subs     []*domain.Subscription
	packages []*domain.Package
}

// AddPackage registers a billing package
func (r *SubscriptionRepository) AddPackage(p *domain.Package) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.packages = append(r.packages, &cp)
}

func (r *SubscriptionRepository) Create(_ context.Context, s *domain.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	for _, p := range r.packages {
		if p.ID == s.PackageID {
			cp.PackageName = p.Name
		}
	}
	r.subs = append(r.subs, &cp)
	return nil
}

func (r *SubscriptionRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.subs {
		if s.ID == id {
			cp := *s
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *SubscriptionRepository) GetCurrentForUser(_ context.Context, userID string) (*domain.Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var best *domain.Subscription
	for _, s := range r.subs {
		if s.UserID != userID || s.Status == domain.SubscriptionCancelled {
			continue
		}
		if best == nil || !s.CreatedAt.Before(best.CreatedAt) {
			best = s
		}
	}
	if best == nil {
		return nil, domain.ErrNotFound
	}
	cp := *best
	return &cp, nil
}

func (r *SubscriptionRepository) GetAll(_ context.Context) ([]*domain.Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Subscription, 0, len(r.subs))
	for i := len(r.subs) - 1; i >= 0; i-- {
		cp := *r.subs[i]
		out = append(out, &cp)
	}
	return out, nil
}

func (r *SubscriptionRepository) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.subs {
		if s.ID == id {
			s.Status = status
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *SubscriptionRepository) GetActiveEndingBefore(_ context.Context, t time.Time) ([]*domain.Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Subscription, 0)
	for _, s := range r.subs {
		if s.Status == domain.SubscriptionActive && s.EndDate.Before(t) {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].EndDate.Before(out[j].EndDate) })
	return out, nil
}

func (r *SubscriptionRepository) GetPendingStartingBefore(_ context.Context, t time.Time) ([]*domain.Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Subscription, 0)
	for _, s := range r.subs {
		if s.Status == domain.SubscriptionPending && s.StartDate.Before(t) {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (r *SubscriptionRepository) GetPackages(_ context.Context) ([]*domain.Package, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Package, 0, len(r.packages))
	for _, p := range r.packages {
		cp := *p
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	return out, nil
}

func (r *SubscriptionRepository) GetPackageByID(_ context.Context, id uuid.UUID) (*domain.Package, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.packages {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

// SettingsRepository is an in-memory domain.SettingsRepository
type SettingsRepository struct {
	mu   sync.RWMutex
	data map[string]domain.UserSettings
}

func (r *SettingsRepository) Get(_ context.Context, userID string) (*domain.UserSettings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.data[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}

func (r *SettingsRepository) Put(_ context.Context, userID string, settings *domain.UserSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[userID] = *settings
	return nil
}

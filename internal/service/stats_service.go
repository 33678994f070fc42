package service

import (
	"context"
	"fmt"

	"botdash/internal/domain"
)

// Statistics feeds the admin overview cards
type Statistics struct {
	TotalUsers    int            `json:"total_users"`
	BotsByTier    map[string]int `json:"bots_by_tier"`
	BotsByStatus  map[string]int `json:"bots_by_status"`
	Accounts      AccountStats   `json:"accounts"`
	Signals       SignalSummary  `json:"signals"`
	Subscriptions map[string]int `json:"subscriptions"`
}

// AccountStats counts accounts by type and connection
type AccountStats struct {
	Total        int            `json:"total"`
	Live         int            `json:"live"`
	Demo         int            `json:"demo"`
	TotalBalance float64        `json:"total_balance"`
	ByConnection map[string]int `json:"by_connection"`
}

// StatsService aggregates counts across repositories
type StatsService struct {
	users         domain.UserRepository
	bots          domain.BotRepository
	accounts      domain.AccountRepository
	signals       domain.SignalRepository
	subscriptions domain.SubscriptionRepository
}

// NewStatsService creates a new StatsService
func NewStatsService(
	users domain.UserRepository,
	bots domain.BotRepository,
	accounts domain.AccountRepository,
	signals domain.SignalRepository,
	subscriptions domain.SubscriptionRepository,
) *StatsService {
	return &StatsService{
		users:         users,
		bots:          bots,
		accounts:      accounts,
		signals:       signals,
		subscriptions: subscriptions,
	}
}

// Collect builds the statistics. Admin only.
func (s *StatsService) Collect(ctx context.Context, user *domain.User) (*Statistics, error) {
	if !user.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	stats := &Statistics{
		BotsByTier:    make(map[string]int),
		BotsByStatus:  make(map[string]int),
		Subscriptions: make(map[string]int),
		Accounts:      AccountStats{ByConnection: make(map[string]int)},
	}

	users, err := s.users.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	stats.TotalUsers = len(users)

	bots, err := s.bots.GetAll(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to count bots: %w", err)
	}
	for _, b := range bots {
		stats.BotsByTier[b.Tier]++
		stats.BotsByStatus[b.Status]++
	}

	accounts, err := s.accounts.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count accounts: %w", err)
	}
	for _, a := range accounts {
		stats.Accounts.Total++
		if a.IsLive {
			stats.Accounts.Live++
		} else {
			stats.Accounts.Demo++
		}
		stats.Accounts.TotalBalance += a.Balance
		stats.Accounts.ByConnection[a.ConnectionStatus]++
	}

	signals, err := s.signals.GetRecent(ctx, "", signalWindow)
	if err != nil {
		return nil, fmt.Errorf("failed to count signals: %w", err)
	}
	stats.Signals.Signals = len(signals)
	for _, sig := range signals {
		p, f := sig.Counts()
		stats.Signals.Processed += p
		stats.Signals.Failed += f
	}

	subs, err := s.subscriptions.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count subscriptions: %w", err)
	}
	for _, sub := range subs {
		stats.Subscriptions[sub.Status]++
	}

	return stats, nil
}

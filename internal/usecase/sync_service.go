package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"botdash/internal/domain"
	"botdash/internal/loading"
)

// ConnectionChecker decides the connection status of one account
type ConnectionChecker interface {
	Check(ctx context.Context, account *domain.Account) string
}

// SubscriptionSweeper expires subscriptions past their end date
type SubscriptionSweeper interface {
	ExpireDue(ctx context.Context) (int, error)
}

// SyncReport summarises one account refresh
type SyncReport struct {
	Checked int            `json:"checked"`
	Changed int            `json:"changed"`
	Status  map[string]int `json:"status"`
}

// SyncStatus is what the dashboard polls while a job runs
type SyncStatus struct {
	Accounts      loading.Status `json:"accounts"`
	Subscriptions loading.Status `json:"subscriptions"`
	LastReport    *SyncReport    `json:"last_report,omitempty"`
}

// SyncService runs background refresh jobs behind loading guards so the
// dashboard never shows a stuck "syncing" flag
type SyncService struct {
	accounts domain.AccountRepository
	checker  ConnectionChecker
	sweeper  SubscriptionSweeper
	accGuard *loading.Guard
	subGuard *loading.Guard
	log      *logrus.Entry
	jobLimit time.Duration

	mu         sync.Mutex
	running    bool
	lastReport *SyncReport
}

// NewSyncService creates a new SyncService. opts.Timeout also bounds each
// background job's context.
func NewSyncService(
	accounts domain.AccountRepository,
	checker ConnectionChecker,
	sweeper SubscriptionSweeper,
	opts loading.Options,
	log *logrus.Entry,
) *SyncService {
	log = log.WithField("component", "sync")
	accOpts, subOpts := opts, opts
	accOpts.Log = log.WithField("job", "accounts")
	subOpts.Log = log.WithField("job", "subscriptions")

	return &SyncService{
		accounts: accounts,
		checker:  checker,
		sweeper:  sweeper,
		accGuard: loading.NewGuard(accOpts),
		subGuard: loading.NewGuard(subOpts),
		log:      log,
		jobLimit: opts.Timeout,
	}
}

// RefreshAccounts re-checks every account's connection status
func (s *SyncService) RefreshAccounts(ctx context.Context) (*SyncReport, error) {
	var report *SyncReport
	err := s.accGuard.Track(func() error {
		accounts, err := s.accounts.GetAll(ctx)
		if err != nil {
			return fmt.Errorf("failed to load accounts: %w", err)
		}

		r := &SyncReport{Status: make(map[string]int)}
		for _, a := range accounts {
			if err := ctx.Err(); err != nil {
				return err
			}
			status := s.checker.Check(ctx, a)
			r.Checked++
			r.Status[status]++
			if status == a.ConnectionStatus {
				continue
			}
			if err := s.accounts.UpdateConnectionStatus(ctx, a.ID, status); err != nil {
				s.log.WithError(err).WithField("account_id", a.ID).Error("Failed to update connection status")
				continue
			}
			r.Changed++
		}
		report = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.lastReport = report
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{"checked": report.Checked, "changed": report.Changed}).Info("Account refresh finished")
	return report, nil
}

// TriggerAccountRefresh starts a refresh in the background. It returns false
// when one is already running.
func (s *SyncService) TriggerAccountRefresh() bool {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return false
	}
	s.running = true
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			s.running = false
			s.mu.Unlock()
		}()

		ctx := context.Background()
		if s.jobLimit > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.jobLimit)
			defer cancel()
		}
		if _, err := s.RefreshAccounts(ctx); err != nil {
			s.log.WithError(err).Error("Account refresh failed")
		}
	}()
	return true
}

// SweepSubscriptions expires due subscriptions
func (s *SyncService) SweepSubscriptions(ctx context.Context) (int, error) {
	var expired int
	err := s.subGuard.Track(func() error {
		n, err := s.sweeper.ExpireDue(ctx)
		expired = n
		return err
	})
	return expired, err
}

// Status reports both guards and the last refresh report
func (s *SyncService) Status() SyncStatus {
	s.mu.Lock()
	last := s.lastReport
	s.mu.Unlock()

	return SyncStatus{
		Accounts:      s.accGuard.Status(),
		Subscriptions: s.subGuard.Status(),
		LastReport:    last,
	}
}

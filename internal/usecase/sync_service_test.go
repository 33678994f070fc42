package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"botdash/internal/domain"
	"botdash/internal/loading"
	"botdash/internal/logger"
	"botdash/internal/repository/memory"
)

type mapChecker map[string]string

func (m mapChecker) Check(ctx context.Context, a *domain.Account) string {
	return m[a.TradingAccountID]
}

type blockingChecker struct {
	release chan struct{}
	once    sync.Once
	started chan struct{}
}

func (b *blockingChecker) Check(ctx context.Context, a *domain.Account) string {
	b.once.Do(func() { close(b.started) })
	<-b.release
	return domain.ConnectionConnected
}

type countingSweeper struct {
	n   int
	err error
}

func (s *countingSweeper) ExpireDue(ctx context.Context) (int, error) {
	return s.n, s.err
}

func seedAccounts(t *testing.T, store *memory.Store) {
	t.Helper()
	for _, id := range []string{"T1", "T2", "T3"} {
		require.NoError(t, store.Accounts.Create(context.Background(), &domain.Account{
			ID: uuid.New(), UserID: "u", CSPAccountID: "C", TradingAccountID: id, ConnectionStatus: domain.ConnectionDisconnected,
		}))
	}
}

func TestRefreshAccountsUpdatesChangedStatuses(t *testing.T) {
	store := memory.NewStore()
	seedAccounts(t, store)
	checker := mapChecker{"T1": domain.ConnectionConnected, "T2": domain.ConnectionDisconnected, "T3": domain.ConnectionError}
	svc := NewSyncService(store.Accounts, checker, &countingSweeper{}, loading.Options{Timeout: time.Second}, logger.Discard().Entry())

	report, err := svc.RefreshAccounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, report.Checked)
	assert.Equal(t, 2, report.Changed)
	assert.Equal(t, map[string]int{
		domain.ConnectionConnected:    1,
		domain.ConnectionDisconnected: 1,
		domain.ConnectionError:        1,
	}, report.Status)

	accounts, err := store.Accounts.GetAll(context.Background())
	require.NoError(t, err)
	got := make(map[string]string)
	for _, a := range accounts {
		got[a.TradingAccountID] = a.ConnectionStatus
	}
	assert.Equal(t, map[string]string(checker), got)

	status := svc.Status()
	assert.False(t, status.Accounts.Loading)
	require.NotNil(t, status.LastReport)
	assert.Equal(t, 2, status.LastReport.Changed)
	require.NotNil(t, status.Accounts.LastRun)
}

func TestTriggerAccountRefreshRunsOnce(t *testing.T) {
	store := memory.NewStore()
	seedAccounts(t, store)
	checker := &blockingChecker{release: make(chan struct{}), started: make(chan struct{})}
	svc := NewSyncService(store.Accounts, checker, &countingSweeper{}, loading.Options{Timeout: time.Minute}, logger.Discard().Entry())

	require.True(t, svc.TriggerAccountRefresh())
	<-checker.started

	assert.True(t, svc.Status().Accounts.Loading)
	assert.False(t, svc.TriggerAccountRefresh(), "second trigger is refused while running")

	close(checker.release)
	assert.Eventually(t, func() bool {
		st := svc.Status()
		return !st.Accounts.Loading && st.LastReport != nil
	}, time.Second, 5*time.Millisecond)

	assert.Eventually(t, svc.TriggerAccountRefresh, time.Second, 5*time.Millisecond)
}

func TestSweepSubscriptions(t *testing.T) {
	sweeper := &countingSweeper{n: 4}
	svc := NewSyncService(memory.NewStore().Accounts, mapChecker{}, sweeper, loading.Options{}, logger.Discard().Entry())

	n, err := svc.SweepSubscriptions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.False(t, svc.Status().Subscriptions.Loading)

	sweeper.err = errors.New("db down")
	_, err = svc.SweepSubscriptions(context.Background())
	assert.Error(t, err)
	assert.False(t, svc.Status().Subscriptions.Loading, "a failed sweep still clears the flag")
}

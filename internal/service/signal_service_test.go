package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"botdash/internal/domain"
	"botdash/internal/repository/memory"
)

func TestSignalRecordAndScope(t *testing.T) {
	store := memory.NewStore()
	notifier := newFakeNotifier()
	svc := NewSignalService(store.Signals, store.Accounts, notifier, testLog)
	svc.now = fixedTime
	admin, ann := newAdmin(), newUser(domain.PlanFree)

	require.NoError(t, store.Accounts.Create(ctx, &domain.Account{ID: uuidFor(1), UserID: ann.ID.String(), CSPAccountID: "C1", TradingAccountID: "T-ann"}))
	annAccount := uuidFor(1).String()

	_, err := svc.Record(ctx, ann, SignalInput{Source: domain.SourceTradingView, Action: domain.ActionEnterLong, Instrument: "BTCUSDT"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.Record(ctx, admin, SignalInput{Source: "discord", Action: domain.ActionEnterLong, Instrument: "BTCUSDT"})
	assert.ErrorIs(t, err, domain.ErrInvalid)

	_, err = svc.Record(ctx, admin, SignalInput{Source: domain.SourceCoinstrat, Action: domain.ActionExitShort, Instrument: "ETHUSDT",
		Outcomes: []domain.SignalOutcome{{AccountID: annAccount, Status: "pending"}}})
	assert.ErrorIs(t, err, domain.ErrInvalid)

	older := fixedNow.Add(-time.Hour)
	sig, err := svc.Record(ctx, admin, SignalInput{
		Source: domain.SourceTradingView, Action: domain.ActionEnterLong, Instrument: "BTCUSDT", Timestamp: &older,
		Outcomes: []domain.SignalOutcome{
			{AccountID: annAccount, Status: domain.OutcomeProcessed},
			{AccountID: "T-other", Status: domain.OutcomeFailed, Error: "rejected"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, fixedNow, sig.Outcomes[0].ProcessedAt)
	require.Len(t, notifier.failures, 1)

	_, err = svc.Record(ctx, admin, SignalInput{Source: domain.SourceCoinstrat, Action: domain.ActionExitLong, Instrument: "ETHUSDT",
		Message: "take profit hit"})
	require.NoError(t, err)
	assert.Len(t, notifier.failures, 1, "no notification without failures")

	list, info, summary, err := svc.List(ctx, admin, SignalQuery{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "ETHUSDT", list[0].Instrument, "newest first by default")
	assert.Equal(t, 2, info.Total)
	assert.Equal(t, SignalSummary{Signals: 2, Processed: 1, Failed: 1}, summary)

	list, _, summary, err = svc.List(ctx, ann, SignalQuery{Instrument: "btcusdt"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Len(t, list[0].Outcomes, 1, "only outcomes for the user's own accounts")
	assert.Equal(t, annAccount, list[0].Outcomes[0].AccountID)
	assert.Equal(t, 0, summary.Failed)

	list, _, _, err = svc.List(ctx, admin, SignalQuery{Outcome: domain.OutcomeFailed})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, _, _, err = svc.List(ctx, admin, SignalQuery{Search: "profit"})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	got, err := svc.Get(ctx, admin, sig.ID)
	require.NoError(t, err)
	assert.Len(t, got.Outcomes, 2, "scoping a list must not alter stored outcomes")
}

func TestSignalScopeIgnoresSharedTradingID(t *testing.T) {
	store := memory.NewStore()
	svc := NewSignalService(store.Signals, store.Accounts, nil, testLog)
	svc.now = fixedTime
	admin, ann, bob := newAdmin(), newUser(domain.PlanFree), newUser(domain.PlanFree)

	require.NoError(t, store.Accounts.Create(ctx, &domain.Account{ID: uuidFor(1), UserID: ann.ID.String(), CSPAccountID: "C1", TradingAccountID: "T-100"}))
	require.NoError(t, store.Accounts.Create(ctx, &domain.Account{ID: uuidFor(2), UserID: bob.ID.String(), CSPAccountID: "C2", TradingAccountID: "T-100"}))

	_, err := svc.Record(ctx, admin, SignalInput{
		Source: domain.SourceTradingView, Action: domain.ActionEnterLong, Instrument: "BTCUSDT",
		Outcomes: []domain.SignalOutcome{
			{AccountID: uuidFor(1).String(), Status: domain.OutcomeFailed, Error: "margin"},
			{AccountID: "T-100", Status: domain.OutcomeProcessed},
		},
	})
	require.NoError(t, err)

	list, _, summary, err := svc.List(ctx, bob, SignalQuery{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Empty(t, list[0].Outcomes)
	assert.Equal(t, SignalSummary{Signals: 1}, summary)

	list, _, _, err = svc.List(ctx, ann, SignalQuery{})
	require.NoError(t, err)
	require.Len(t, list[0].Outcomes, 1)
	assert.Equal(t, uuidFor(1).String(), list[0].Outcomes[0].AccountID)
}

func TestSignalPrune(t *testing.T) {
	store := memory.NewStore()
	svc := NewSignalService(store.Signals, store.Accounts, nil, testLog)
	svc.now = fixedTime

	for _, age := range []time.Duration{time.Hour, 48 * time.Hour, 72 * time.Hour} {
		require.NoError(t, store.Signals.Save(ctx, &domain.Signal{ID: uuidFor(int(age.Hours())), Timestamp: fixedNow.Add(-age)}))
	}

	n, err := svc.Prune(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

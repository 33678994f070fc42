package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"botdash/internal/domain"
)

func TestAccountsAreCopied(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	a := &domain.Account{ID: uuid.New(), UserID: "u1", CSPAccountID: "C1", ConnectionStatus: domain.ConnectionDisconnected}
	require.NoError(t, store.Accounts.Create(ctx, a))

	a.CSPAccountID = "mutated"
	got, err := store.Accounts.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "C1", got.CSPAccountID)

	got.UserID = "someone-else"
	require.NoError(t, store.Accounts.Update(ctx, got))
	again, err := store.Accounts.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "u1", again.UserID, "owner is not changed by update")

	require.NoError(t, store.Accounts.UpdateConnectionStatus(ctx, a.ID, domain.ConnectionConnected))
	mine, err := store.Accounts.GetByUserID(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, domain.ConnectionConnected, mine[0].ConnectionStatus)

	require.NoError(t, store.Accounts.Delete(ctx, a.ID))
	_, err = store.Accounts.GetByID(ctx, a.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, store.Accounts.Delete(ctx, a.ID), domain.ErrNotFound)
}

func TestSignalsRecentAndPrune(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	for i, src := range []string{"tradingview", "coinstrat", "tradingview"} {
		require.NoError(t, store.Signals.Save(ctx, &domain.Signal{
			ID: uuid.New(), Source: src, Timestamp: base.Add(time.Duration(i) * time.Hour),
			Outcomes: []domain.SignalOutcome{{Status: "processed"}},
		}))
	}

	recent, err := store.Signals.GetRecent(ctx, "tradingview", 0)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.True(t, recent[0].Timestamp.After(recent[1].Timestamp), "newest first")

	recent[0].Outcomes[0].Status = "failed"
	fresh, err := store.Signals.GetByID(ctx, recent[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "processed", fresh.Outcomes[0].Status)

	limited, err := store.Signals.GetRecent(ctx, "", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	n, err := store.Signals.DeleteOlderThan(ctx, base.Add(90*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	all, err := store.Signals.GetRecent(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

package accounttree

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"botdash/internal/domain"
)

func quietOpts(policy ConflictPolicy) Options {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return Options{Policy: policy, Log: logrus.NewEntry(l)}
}

func TestTransformGroupsUsersAndCSPAccounts(t *testing.T) {
	rows := []Row{
		{UserID: "U1", CSPAccountID: "C1", TradingAccountID: "T1"},
		{UserID: "U1", CSPAccountID: "C1", TradingAccountID: "T2"},
		{UserID: "U2", CSPAccountID: "C2", TradingAccountID: "T3"},
	}

	res := Transform(rows, quietOpts(FirstWins))

	assert.Equal(t, Totals{Users: 2, CSPAccounts: 2, TradingAccounts: 3}, res.Totals)
	require.Len(t, res.Users, 2)
	assert.Equal(t, "U1", res.Users[0].ID)
	assert.Equal(t, "U2", res.Users[1].ID)

	require.Len(t, res.Users[0].CSPAccounts, 1)
	c1 := res.Users[0].CSPAccounts[0]
	assert.Equal(t, "C1", c1.ID)
	require.Len(t, c1.TradingAccounts, 2)
	assert.Equal(t, "T1", c1.TradingAccounts[0].ID)
	assert.Equal(t, "T2", c1.TradingAccounts[1].ID)
	assert.Empty(t, res.Skipped)
	assert.Empty(t, res.Conflicts)
}

func TestTransformSkipsRowsMissingIDs(t *testing.T) {
	rows := []Row{
		{UserID: "", CSPAccountID: "C1", TradingAccountID: "T1"},
		{UserID: "U1", CSPAccountID: "", TradingAccountID: "T2"},
		{UserID: "U1", CSPAccountID: "C1", TradingAccountID: "T3"},
	}

	res := Transform(rows, quietOpts(FirstWins))

	assert.Equal(t, Totals{Users: 1, CSPAccounts: 1, TradingAccounts: 1}, res.Totals)
	assert.Equal(t, []Skipped{
		{Index: 0, Reason: ReasonMissingUser},
		{Index: 1, Reason: ReasonMissingCSP},
	}, res.Skipped)

	for _, u := range res.Users {
		for _, c := range u.CSPAccounts {
			for _, ta := range c.TradingAccounts {
				assert.NotEqual(t, "T1", ta.ID)
				assert.NotEqual(t, "T2", ta.ID)
			}
		}
	}
}

func TestTransformTradingCountMatchesRowsWithTradingID(t *testing.T) {
	rows := []Row{
		{UserID: "U1", CSPAccountID: "C1"},
		{UserID: "U1", CSPAccountID: "C1", TradingAccountID: "T1"},
		{UserID: "U1", CSPAccountID: "C2", TradingAccountID: "T2"},
		{UserID: "U2", CSPAccountID: "C3"},
		{UserID: "U3", CSPAccountID: "C4", TradingAccountID: "T3"},
		{UserID: "U3", CSPAccountID: "C4", TradingAccountID: "T3"},
	}

	res := Transform(rows, quietOpts(FirstWins))

	want := 0
	for _, r := range rows {
		if r.TradingAccountID != "" {
			want++
		}
	}
	assert.Equal(t, want, res.Totals.TradingAccounts)

	leaves := 0
	for _, u := range res.Users {
		for _, c := range u.CSPAccounts {
			leaves += len(c.TradingAccounts)
		}
	}
	assert.Equal(t, want, leaves)
	assert.Equal(t, 4, res.Totals.CSPAccounts)
}

func TestTransformEmptyInput(t *testing.T) {
	res := Transform(nil, quietOpts(FirstWins))
	assert.NotNil(t, res.Users)
	assert.Empty(t, res.Users)
	assert.Equal(t, Totals{}, res.Totals)
}

func TestTransformConflictPolicies(t *testing.T) {
	rows := []Row{
		{UserID: "U1", CSPAccountID: "C1", CSPAccountName: "Main", TradingAccountID: "T1"},
		{UserID: "U1", CSPAccountID: "C1", CSPAccountName: "Renamed", TradingAccountID: "T2"},
	}

	t.Run("first wins", func(t *testing.T) {
		res := Transform(rows, quietOpts(FirstWins))
		c := res.Users[0].CSPAccounts[0]
		assert.Equal(t, "Main", c.Name)
		assert.Len(t, c.TradingAccounts, 2)
		require.Len(t, res.Conflicts, 1)
		assert.Equal(t, Conflict{Index: 1, Key: "C1", Field: "csp_account_name", Kept: "Main", Incoming: "Renamed"}, res.Conflicts[0])
	})

	t.Run("last wins", func(t *testing.T) {
		res := Transform(rows, quietOpts(LastWins))
		c := res.Users[0].CSPAccounts[0]
		assert.Equal(t, "Renamed", c.Name)
		assert.Len(t, c.TradingAccounts, 2)
		assert.Len(t, res.Conflicts, 1)
	})

	t.Run("reject", func(t *testing.T) {
		res := Transform(rows, quietOpts(Reject))
		c := res.Users[0].CSPAccounts[0]
		assert.Equal(t, "Main", c.Name)
		require.Len(t, c.TradingAccounts, 1)
		assert.Equal(t, "T1", c.TradingAccounts[0].ID)
		assert.Equal(t, 1, res.Totals.TradingAccounts)
		assert.Equal(t, []Skipped{{Index: 1, Reason: ReasonConflictRejected}}, res.Skipped)
	})
}

func TestTransformCSPOwnerConflict(t *testing.T) {
	rows := []Row{
		{UserID: "U1", CSPAccountID: "C1", TradingAccountID: "T1"},
		{UserID: "U2", CSPAccountID: "C1", TradingAccountID: "T2"},
	}

	first := Transform(rows, quietOpts(FirstWins))
	require.Len(t, first.Conflicts, 1)
	assert.Equal(t, "owner", first.Conflicts[0].Field)
	require.Len(t, first.Users, 1, "no empty node for the conflicting user")
	require.Len(t, first.Users[0].CSPAccounts, 1)
	assert.Equal(t, []TradingAccount{{ID: "T1"}}, first.Users[0].CSPAccounts[0].TradingAccounts)
	assert.Equal(t, Totals{Users: 1, CSPAccounts: 1, TradingAccounts: 1}, first.Totals)
	assert.Equal(t, []Skipped{{Index: 1, Reason: ReasonOwnerConflict}}, first.Skipped)

	rejected := Transform(rows, quietOpts(Reject))
	require.Len(t, rejected.Users, 1)
	assert.Equal(t, Totals{Users: 1, CSPAccounts: 1, TradingAccounts: 1}, rejected.Totals)
	assert.Equal(t, []Skipped{{Index: 1, Reason: ReasonConflictRejected}}, rejected.Skipped)

	last := Transform(rows, quietOpts(LastWins))
	assert.Empty(t, last.Users[0].CSPAccounts)
	require.Len(t, last.Users[1].CSPAccounts, 1)
	assert.Equal(t, "U2", last.Users[1].CSPAccounts[0].UserID)
	assert.Equal(t, 1, last.Totals.CSPAccounts)
}

func TestFromAccounts(t *testing.T) {
	accounts := []*domain.Account{
		{UserID: "U1", UserName: "Ada", CSPAccountID: "C1", TradingAccountID: "T1", Balance: 10, IsLive: true},
		nil,
	}

	rows := FromAccounts(accounts)
	require.Len(t, rows, 1)
	assert.Equal(t, Row{UserID: "U1", UserName: "Ada", CSPAccountID: "C1", TradingAccountID: "T1", Balance: 10, IsLive: true}, rows[0])
}

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"botdash/internal/accounttree"
	"botdash/internal/domain"
	"botdash/internal/repository/memory"
)

func newAccountService(sealer Sealer) (*AccountService, *memory.Store) {
	store := memory.NewStore()
	return NewAccountService(store.Accounts, store.Credentials, sealer, accounttree.FirstWins, testLog), store
}

func ptr[T any](v T) *T { return &v }

type failingCredentials struct {
	domain.CredentialRepository
}

func (failingCredentials) GetByID(context.Context, uuid.UUID) (*domain.APICredential, error) {
	return nil, errors.New("connection reset")
}

func TestAccountListScopesToOwner(t *testing.T) {
	svc, _ := newAccountService(nil)
	admin, ann, bob := newAdmin(), newUser(domain.PlanFree), newUser(domain.PlanFree)

	_, err := svc.Create(ctx, ann, AccountInput{CSPAccountID: "C1", TradingAccountID: "T1", Balance: ptr(100.0), IsLive: ptr(true)})
	require.NoError(t, err)
	_, err = svc.Create(ctx, ann, AccountInput{CSPAccountID: "C1", TradingAccountID: "T2", Balance: ptr(50.0)})
	require.NoError(t, err)
	bobs, err := svc.Create(ctx, bob, AccountInput{CSPAccountID: "C2", TradingAccountID: "T3"})
	require.NoError(t, err)

	list, _, err := svc.List(ctx, ann, AccountQuery{})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	list, _, err = svc.List(ctx, admin, AccountQuery{})
	require.NoError(t, err)
	assert.Len(t, list, 3)

	list, _, err = svc.List(ctx, ann, AccountQuery{Type: "live"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "T1", list[0].TradingAccountID)

	list, _, err = svc.List(ctx, ann, AccountQuery{Sort: "balance", Dir: "asc"})
	require.NoError(t, err)
	assert.Equal(t, "T2", list[0].TradingAccountID)

	_, err = svc.Get(ctx, ann, bobs.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, ann, bobs.ID), domain.ErrNotFound)
}

func TestAccountCreateValidation(t *testing.T) {
	svc, _ := newAccountService(nil)
	user := newUser(domain.PlanFree)

	_, err := svc.Create(ctx, user, AccountInput{})
	assert.ErrorIs(t, err, domain.ErrInvalid)

	_, err = svc.Create(ctx, user, AccountInput{CSPAccountID: "C1", ConnectionStatus: "flaky"})
	assert.ErrorIs(t, err, domain.ErrInvalid)

	acc, err := svc.Create(ctx, user, AccountInput{CSPAccountID: "C1"})
	require.NoError(t, err)
	assert.Equal(t, domain.ConnectionDisconnected, acc.ConnectionStatus)
	assert.Equal(t, user.Name, acc.UserName)
}

func TestAccountTrees(t *testing.T) {
	svc, _ := newAccountService(nil)
	admin, ann, bob := newAdmin(), newUser(domain.PlanFree), newUser(domain.PlanFree)

	for _, in := range []AccountInput{
		{CSPAccountID: "C1", CSPAccountName: "Main", TradingAccountID: "T1"},
		{CSPAccountID: "C1", CSPAccountName: "Renamed", TradingAccountID: "T2"},
		{CSPAccountID: "C3"},
	} {
		_, err := svc.Create(ctx, ann, in)
		require.NoError(t, err)
	}
	_, err := svc.Create(ctx, bob, AccountInput{CSPAccountID: "C2", TradingAccountID: "T9"})
	require.NoError(t, err)

	own, err := svc.Tree(ctx, ann)
	require.NoError(t, err)
	assert.Equal(t, accounttree.Totals{Users: 1, CSPAccounts: 2, TradingAccounts: 2}, own.Totals)
	require.Len(t, own.Conflicts, 1)
	assert.Equal(t, "Main", own.Users[0].CSPAccounts[0].Name)

	_, err = svc.TreeAll(ctx, ann)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	all, err := svc.TreeAll(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, accounttree.Totals{Users: 2, CSPAccounts: 3, TradingAccounts: 3}, all.Totals)
}

func TestAddCredential(t *testing.T) {
	svc, store := newAccountService(nil)
	user := newUser(domain.PlanFree)

	_, err := svc.AddCredential(ctx, user, CredentialInput{Exchange: "binance", KeyID: "k", Secret: "s"})
	assert.ErrorIs(t, err, domain.ErrInvalid, "no sealer configured")

	svc, store = newAccountService(upperSealer{})
	_, err = svc.AddCredential(ctx, user, CredentialInput{Exchange: "binance"})
	assert.ErrorIs(t, err, domain.ErrInvalid)

	cred, err := svc.AddCredential(ctx, user, CredentialInput{Exchange: "binance", KeyID: "k", Secret: "s3cret"})
	require.NoError(t, err)
	stored, err := store.Credentials.GetByID(ctx, cred.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("sealed:s3cret"), stored.SealedSecret)

	acc, err := svc.Create(ctx, user, AccountInput{CSPAccountID: "C1", CredentialID: &cred.ID})
	require.NoError(t, err)
	assert.Equal(t, cred.ID, *acc.CredentialID)

	_, err = svc.Create(ctx, newUser(domain.PlanFree), AccountInput{CSPAccountID: "C2", CredentialID: &cred.ID})
	assert.ErrorIs(t, err, domain.ErrInvalid, "credential of another user")
}

func TestAccountCredentialMustBelongToOwner(t *testing.T) {
	svc, _ := newAccountService(upperSealer{})
	admin, ann, bob := newAdmin(), newUser(domain.PlanFree), newUser(domain.PlanFree)

	annCred, err := svc.AddCredential(ctx, ann, CredentialInput{Exchange: "binance", KeyID: "a", Secret: "s"})
	require.NoError(t, err)
	bobCred, err := svc.AddCredential(ctx, bob, CredentialInput{Exchange: "binance", KeyID: "b", Secret: "s"})
	require.NoError(t, err)

	acc, err := svc.Create(ctx, ann, AccountInput{CSPAccountID: "C1"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, admin, acc.ID, AccountInput{CredentialID: &bobCred.ID})
	assert.ErrorIs(t, err, domain.ErrInvalid, "admin cannot link another user's credential")

	_, err = svc.Create(ctx, admin, AccountInput{CSPAccountID: "C2", CredentialID: &annCred.ID})
	assert.ErrorIs(t, err, domain.ErrInvalid, "the new account belongs to the admin")

	updated, err := svc.Update(ctx, admin, acc.ID, AccountInput{CredentialID: &annCred.ID})
	require.NoError(t, err)
	assert.Equal(t, annCred.ID, *updated.CredentialID)
}

func TestAccountCredentialLookupFailureIsNotInvalid(t *testing.T) {
	store := memory.NewStore()
	svc := NewAccountService(store.Accounts, failingCredentials{}, upperSealer{}, accounttree.FirstWins, testLog)
	user := newUser(domain.PlanFree)

	_, err := svc.Create(ctx, user, AccountInput{CSPAccountID: "C1", CredentialID: ptr(uuid.New())})
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrInvalid)
	assert.ErrorContains(t, err, "connection reset")
}

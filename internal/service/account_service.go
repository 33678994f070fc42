package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"botdash/internal/accounttree"
	"botdash/internal/domain"
	"botdash/internal/filter"
)

// Sealer encrypts credential secrets before storage
type Sealer interface {
	Seal(plaintext []byte) ([]byte, error)
}

// AccountService manages trading accounts and their API credentials
type AccountService struct {
	accounts    domain.AccountRepository
	credentials domain.CredentialRepository
	sealer      Sealer
	policy      accounttree.ConflictPolicy
	log         *logrus.Entry
	now         func() time.Time
}

// NewAccountService creates a new AccountService. A nil sealer disables
// credential storage.
func NewAccountService(
	accounts domain.AccountRepository,
	credentials domain.CredentialRepository,
	sealer Sealer,
	policy accounttree.ConflictPolicy,
	log *logrus.Entry,
) *AccountService {
	return &AccountService{
		accounts:    accounts,
		credentials: credentials,
		sealer:      sealer,
		policy:      policy,
		log:         log.WithField("component", "accounts"),
		now:         time.Now,
	}
}

// AccountQuery holds list filters
type AccountQuery struct {
	Status  string
	Type    string
	Search  string
	Sort    string
	Dir     string
	Page    int
	PerPage int
}

// AccountInput is the editable part of an account
type AccountInput struct {
	CSPAccountID       string     `json:"csp_account_id"`
	CSPAccountName     string     `json:"csp_account_name"`
	TradingAccountID   string     `json:"trading_account_id"`
	TradingAccountName string     `json:"trading_account_name"`
	CredentialID       *uuid.UUID `json:"credential_id,omitempty"`
	Balance            *float64   `json:"balance,omitempty"`
	ConnectionStatus   string     `json:"connection_status"`
	IsLive             *bool      `json:"is_live,omitempty"`
}

// CredentialInput carries a new API key pair. The secret is sealed and then
// dropped.
type CredentialInput struct {
	Exchange string `json:"exchange"`
	Label    string `json:"label"`
	KeyID    string `json:"key_id"`
	Secret   string `json:"secret"`
}

var accountSortKeys = filter.Keys[*domain.Account]{
	"balance": filter.ByNumber(func(a *domain.Account) float64 { return a.Balance }),
	"csp":     filter.ByString(func(a *domain.Account) string { return a.CSPAccountName }),
	"name":    filter.ByString(func(a *domain.Account) string { return a.TradingAccountName }),
	"status":  filter.ByString(func(a *domain.Account) string { return a.ConnectionStatus }),
	"created": filter.ByTime(func(a *domain.Account) time.Time { return a.CreatedAt }),
}

// List returns the user's accounts, or every account for admins
func (s *AccountService) List(ctx context.Context, user *domain.User, q AccountQuery) ([]*domain.Account, filter.PageInfo, error) {
	accounts, err := s.visible(ctx, user)
	if err != nil {
		return nil, filter.PageInfo{}, err
	}

	accounts = filter.Apply(accounts,
		filter.Equals(q.Status, func(a *domain.Account) string { return a.ConnectionStatus }),
		filter.Equals(q.Type, func(a *domain.Account) string { return a.AccountType() }),
		filter.Search(q.Search, func(a *domain.Account) []string {
			return []string{a.UserName, a.CSPAccountID, a.CSPAccountName, a.TradingAccountID, a.TradingAccountName}
		}),
	)
	accounts = filter.Sort(accounts, q.Sort, filter.ParseDirection(q.Dir), accountSortKeys)

	page, info := filter.Paginate(accounts, q.Page, q.PerPage)
	return page, info, nil
}

// Tree groups the user's own accounts into the user → CSP → trading hierarchy
func (s *AccountService) Tree(ctx context.Context, user *domain.User) (accounttree.Result, error) {
	accounts, err := s.accounts.GetByUserID(ctx, user.ID.String())
	if err != nil {
		return accounttree.Result{}, fmt.Errorf("failed to list accounts: %w", err)
	}
	return s.tree(accounts), nil
}

// TreeAll groups every account regardless of owner. Admin only.
func (s *AccountService) TreeAll(ctx context.Context, user *domain.User) (accounttree.Result, error) {
	if !user.IsAdmin() {
		return accounttree.Result{}, domain.ErrForbidden
	}
	accounts, err := s.accounts.GetAll(ctx)
	if err != nil {
		return accounttree.Result{}, fmt.Errorf("failed to list accounts: %w", err)
	}
	return s.tree(accounts), nil
}

func (s *AccountService) tree(accounts []*domain.Account) accounttree.Result {
	return accounttree.Transform(accounttree.FromAccounts(accounts), accounttree.Options{
		Policy: s.policy,
		Log:    s.log,
	})
}

// Get returns an account the user owns (any account for admins)
func (s *AccountService) Get(ctx context.Context, user *domain.User, id uuid.UUID) (*domain.Account, error) {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !user.IsAdmin() && account.UserID != user.ID.String() {
		return nil, domain.ErrNotFound
	}
	return account, nil
}

// Create adds an account owned by user
func (s *AccountService) Create(ctx context.Context, user *domain.User, in AccountInput) (*domain.Account, error) {
	if strings.TrimSpace(in.CSPAccountID) == "" {
		return nil, fmt.Errorf("%w: csp_account_id is required", domain.ErrInvalid)
	}
	if in.ConnectionStatus == "" {
		in.ConnectionStatus = domain.ConnectionDisconnected
	}
	if !domain.ValidConnectionStatus(in.ConnectionStatus) {
		return nil, fmt.Errorf("%w: unknown connection status %q", domain.ErrInvalid, in.ConnectionStatus)
	}
	if err := s.checkCredential(ctx, user.ID.String(), in.CredentialID); err != nil {
		return nil, err
	}

	now := s.now()
	account := &domain.Account{
		ID:                 uuid.New(),
		UserID:             user.ID.String(),
		UserName:           user.Name,
		CSPAccountID:       in.CSPAccountID,
		CSPAccountName:     in.CSPAccountName,
		TradingAccountID:   in.TradingAccountID,
		TradingAccountName: in.TradingAccountName,
		CredentialID:       in.CredentialID,
		ConnectionStatus:   in.ConnectionStatus,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if in.Balance != nil {
		account.Balance = *in.Balance
	}
	if in.IsLive != nil {
		account.IsLive = *in.IsLive
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// Update applies the non-empty fields of in
func (s *AccountService) Update(ctx context.Context, user *domain.User, id uuid.UUID, in AccountInput) (*domain.Account, error) {
	account, err := s.Get(ctx, user, id)
	if err != nil {
		return nil, err
	}

	if in.CSPAccountID != "" {
		account.CSPAccountID = in.CSPAccountID
	}
	if in.CSPAccountName != "" {
		account.CSPAccountName = in.CSPAccountName
	}
	if in.TradingAccountID != "" {
		account.TradingAccountID = in.TradingAccountID
	}
	if in.TradingAccountName != "" {
		account.TradingAccountName = in.TradingAccountName
	}
	if in.CredentialID != nil {
		if err := s.checkCredential(ctx, account.UserID, in.CredentialID); err != nil {
			return nil, err
		}
		account.CredentialID = in.CredentialID
	}
	if in.Balance != nil {
		account.Balance = *in.Balance
	}
	if in.ConnectionStatus != "" {
		if !domain.ValidConnectionStatus(in.ConnectionStatus) {
			return nil, fmt.Errorf("%w: unknown connection status %q", domain.ErrInvalid, in.ConnectionStatus)
		}
		account.ConnectionStatus = in.ConnectionStatus
	}
	if in.IsLive != nil {
		account.IsLive = *in.IsLive
	}

	account.UpdatedAt = s.now()
	if err := s.accounts.Update(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// Delete removes an account the user owns
func (s *AccountService) Delete(ctx context.Context, user *domain.User, id uuid.UUID) error {
	if _, err := s.Get(ctx, user, id); err != nil {
		return err
	}
	return s.accounts.Delete(ctx, id)
}

// AddCredential seals and stores an API credential for user
func (s *AccountService) AddCredential(ctx context.Context, user *domain.User, in CredentialInput) (*domain.APICredential, error) {
	if s.sealer == nil {
		return nil, fmt.Errorf("%w: credential storage is not configured", domain.ErrInvalid)
	}
	if in.Exchange == "" || in.KeyID == "" || in.Secret == "" {
		return nil, fmt.Errorf("%w: exchange, key_id and secret are required", domain.ErrInvalid)
	}

	sealed, err := s.sealer.Seal([]byte(in.Secret))
	if err != nil {
		return nil, fmt.Errorf("failed to seal credential: %w", err)
	}

	cred := &domain.APICredential{
		ID:           uuid.New(),
		UserID:       user.ID.String(),
		Exchange:     in.Exchange,
		Label:        in.Label,
		KeyID:        in.KeyID,
		SealedSecret: sealed,
		CreatedAt:    s.now(),
	}
	if err := s.credentials.Save(ctx, cred); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"credential_id": cred.ID, "exchange": cred.Exchange}).Info("API credential stored")
	return cred, nil
}

// Credentials lists the user's stored credentials
func (s *AccountService) Credentials(ctx context.Context, user *domain.User) ([]*domain.APICredential, error) {
	return s.credentials.GetByUserID(ctx, user.ID.String())
}

// checkCredential verifies that the credential exists and belongs to the
// account owner, whoever is making the change
func (s *AccountService) checkCredential(ctx context.Context, ownerID string, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	cred, err := s.credentials.GetByID(ctx, *id)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%w: unknown credential", domain.ErrInvalid)
	}
	if err != nil {
		return fmt.Errorf("failed to load credential: %w", err)
	}
	if cred.UserID != ownerID {
		return fmt.Errorf("%w: unknown credential", domain.ErrInvalid)
	}
	return nil
}

func (s *AccountService) visible(ctx context.Context, user *domain.User) ([]*domain.Account, error) {
	var (
		accounts []*domain.Account
		err      error
	)
	if user.IsAdmin() {
		accounts, err = s.accounts.GetAll(ctx)
	} else {
		accounts, err = s.accounts.GetByUserID(ctx, user.ID.String())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"botdash/internal/domain"
)

// AccountRepositoryImpl implements the AccountRepository interface
type AccountRepositoryImpl struct {
	db *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository
func NewAccountRepository(db *pgxpool.Pool) domain.AccountRepository {
	return &AccountRepositoryImpl{db: db}
}

const accountColumns = `
	id, user_id, user_name, csp_account_id, csp_account_name,
	trading_account_id, trading_account_name, credential_id, balance,
	connection_status, is_live, created_at, updated_at
`

func scanAccount(row pgx.Row) (*domain.Account, error) {
	a := &domain.Account{}
	err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.UserName,
		&a.CSPAccountID,
		&a.CSPAccountName,
		&a.TradingAccountID,
		&a.TradingAccountName,
		&a.CredentialID,
		&a.Balance,
		&a.ConnectionStatus,
		&a.IsLive,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	return a, err
}

// Create inserts a new account
func (r *AccountRepositoryImpl) Create(ctx context.Context, a *domain.Account) error {
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.Exec(ctx, query,
		a.ID,
		a.UserID,
		a.UserName,
		a.CSPAccountID,
		a.CSPAccountName,
		a.TradingAccountID,
		a.TradingAccountName,
		a.CredentialID,
		a.Balance,
		a.ConnectionStatus,
		a.IsLive,
		a.CreatedAt,
		a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

// Update replaces the mutable fields of an account
func (r *AccountRepositoryImpl) Update(ctx context.Context, a *domain.Account) error {
	query := `
		UPDATE accounts
		SET user_name = $1, csp_account_id = $2, csp_account_name = $3,
		    trading_account_id = $4, trading_account_name = $5, credential_id = $6,
		    balance = $7, connection_status = $8, is_live = $9, updated_at = NOW()
		WHERE id = $10
	`

	tag, err := r.db.Exec(ctx, query,
		a.UserName,
		a.CSPAccountID,
		a.CSPAccountName,
		a.TradingAccountID,
		a.TradingAccountName,
		a.CredentialID,
		a.Balance,
		a.ConnectionStatus,
		a.IsLive,
		a.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// Delete removes an account
func (r *AccountRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID retrieves an account by ID
func (r *AccountRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	a, err := scanAccount(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get account by ID: %w", notFound(err))
	}

	return a, nil
}

// GetByUserID retrieves accounts owned by a user
func (r *AccountRepositoryImpl) GetByUserID(ctx context.Context, userID string) ([]*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1 ORDER BY created_at ASC`
	return r.list(ctx, query, userID)
}

// GetAll retrieves every account
func (r *AccountRepositoryImpl) GetAll(ctx context.Context) ([]*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY created_at ASC`
	return r.list(ctx, query)
}

// UpdateConnectionStatus sets the connection status of one account
func (r *AccountRepositoryImpl) UpdateConnectionStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `
		UPDATE accounts
		SET connection_status = $1, updated_at = NOW()
		WHERE id = $2
	`

	if _, err := r.db.Exec(ctx, query, status, id); err != nil {
		return fmt.Errorf("failed to update connection status: %w", err)
	}
	return nil
}

func (r *AccountRepositoryImpl) list(ctx context.Context, query string, args ...any) ([]*domain.Account, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	accounts := make([]*domain.Account, 0)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}

	return accounts, nil
}

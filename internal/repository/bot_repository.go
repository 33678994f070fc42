package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"botdash/internal/domain"
)

// BotRepositoryImpl implements the BotRepository interface
type BotRepositoryImpl struct {
	db *pgxpool.Pool
}

// NewBotRepository creates a new BotRepository
func NewBotRepository(db *pgxpool.Pool) domain.BotRepository {
	return &BotRepositoryImpl{db: db}
}

const botColumns = `
	id, tier, name, description, owner_id, status, risk_level,
	win_rate, profit_factor, total_trades, total_pnl, max_drawdown,
	created_at, updated_at
`

func scanBot(row pgx.Row) (*domain.Bot, error) {
	b := &domain.Bot{}
	err := row.Scan(
		&b.ID,
		&b.Tier,
		&b.Name,
		&b.Description,
		&b.OwnerID,
		&b.Status,
		&b.RiskLevel,
		&b.Metrics.WinRate,
		&b.Metrics.ProfitFactor,
		&b.Metrics.TotalTrades,
		&b.Metrics.TotalPnL,
		&b.Metrics.MaxDrawdown,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	return b, err
}

// Create inserts a new bot
func (r *BotRepositoryImpl) Create(ctx context.Context, b *domain.Bot) error {
	query := `
		INSERT INTO bots (` + botColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.db.Exec(ctx, query,
		b.ID,
		b.Tier,
		b.Name,
		b.Description,
		b.OwnerID,
		b.Status,
		b.RiskLevel,
		b.Metrics.WinRate,
		b.Metrics.ProfitFactor,
		b.Metrics.TotalTrades,
		b.Metrics.TotalPnL,
		b.Metrics.MaxDrawdown,
		b.CreatedAt,
		b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create bot: %w", err)
	}

	return nil
}

// Update replaces the editable fields of a bot
func (r *BotRepositoryImpl) Update(ctx context.Context, b *domain.Bot) error {
	query := `
		UPDATE bots
		SET name = $1, description = $2, status = $3, risk_level = $4,
		    win_rate = $5, profit_factor = $6, total_trades = $7, total_pnl = $8,
		    max_drawdown = $9, updated_at = NOW()
		WHERE id = $10
	`

	tag, err := r.db.Exec(ctx, query,
		b.Name,
		b.Description,
		b.Status,
		b.RiskLevel,
		b.Metrics.WinRate,
		b.Metrics.ProfitFactor,
		b.Metrics.TotalTrades,
		b.Metrics.TotalPnL,
		b.Metrics.MaxDrawdown,
		b.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update bot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// UpdateStatus sets the bot status
func (r *BotRepositoryImpl) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.db.Exec(ctx, `UPDATE bots SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update bot status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes a bot
func (r *BotRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM bots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete bot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID retrieves a bot by ID
func (r *BotRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*domain.Bot, error) {
	b, err := scanBot(r.db.QueryRow(ctx, `SELECT `+botColumns+` FROM bots WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get bot by ID: %w", notFound(err))
	}
	return b, nil
}

// GetAll retrieves bots, optionally restricted to one tier
func (r *BotRepositoryImpl) GetAll(ctx context.Context, tier string) ([]*domain.Bot, error) {
	query := `SELECT ` + botColumns + ` FROM bots WHERE ($1 = '' OR tier = $1) ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, query, tier)
	if err != nil {
		return nil, fmt.Errorf("failed to query bots: %w", err)
	}
	defer rows.Close()

	bots := make([]*domain.Bot, 0)
	for rows.Next() {
		b, err := scanBot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bot: %w", err)
		}
		bots = append(bots, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bots: %w", err)
	}

	return bots, nil
}

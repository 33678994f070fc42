package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"botdash/internal/domain"
)

// SignalRepositoryImpl implements the SignalRepository interface
type SignalRepositoryImpl struct {
	db *pgxpool.Pool
}

// NewSignalRepository creates a new SignalRepository
func NewSignalRepository(db *pgxpool.Pool) domain.SignalRepository {
	return &SignalRepositoryImpl{db: db}
}

// Save stores a signal and its outcomes in one transaction
func (r *SignalRepositoryImpl) Save(ctx context.Context, signal *domain.Signal) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO signals (id, source, action, instrument, bot_id, message, ts)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		signal.ID,
		signal.Source,
		signal.Action,
		signal.Instrument,
		signal.BotID,
		signal.Message,
		signal.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to save signal: %w", err)
	}

	if len(signal.Outcomes) > 0 {
		batch := &pgx.Batch{}
		for i, o := range signal.Outcomes {
			batch.Queue(`
				INSERT INTO signal_outcomes (signal_id, position, account_id, status, error, processed_at)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, signal.ID, i, o.AccountID, o.Status, o.Error, o.ProcessedAt)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to save signal outcomes: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit signal: %w", err)
	}

	return nil
}

// GetByID retrieves a signal with its outcomes
func (r *SignalRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*domain.Signal, error) {
	signal := &domain.Signal{}
	err := r.db.QueryRow(ctx, `
		SELECT id, source, action, instrument, bot_id, message, ts
		FROM signals
		WHERE id = $1
	`, id).Scan(
		&signal.ID,
		&signal.Source,
		&signal.Action,
		&signal.Instrument,
		&signal.BotID,
		&signal.Message,
		&signal.Timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get signal: %w", notFound(err))
	}

	byID := map[uuid.UUID]*domain.Signal{signal.ID: signal}
	if err := r.loadOutcomes(ctx, byID); err != nil {
		return nil, err
	}

	return signal, nil
}

// GetRecent retrieves the most recent signals with their outcomes
func (r *SignalRepositoryImpl) GetRecent(ctx context.Context, source string, limit int) ([]*domain.Signal, error) {
	query := `
		SELECT id, source, action, instrument, bot_id, message, ts
		FROM signals
		WHERE ($1 = '' OR source = $1)
		ORDER BY ts DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, source, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent signals: %w", err)
	}
	defer rows.Close()

	signals := make([]*domain.Signal, 0)
	byID := make(map[uuid.UUID]*domain.Signal)
	for rows.Next() {
		signal := &domain.Signal{}
		err := rows.Scan(
			&signal.ID,
			&signal.Source,
			&signal.Action,
			&signal.Instrument,
			&signal.BotID,
			&signal.Message,
			&signal.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan signal: %w", err)
		}
		signals = append(signals, signal)
		byID[signal.ID] = signal
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating signals: %w", err)
	}

	if err := r.loadOutcomes(ctx, byID); err != nil {
		return nil, err
	}

	return signals, nil
}

// DeleteOlderThan removes signals older than the cutoff
func (r *SignalRepositoryImpl) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM signals WHERE ts < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune signals: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *SignalRepositoryImpl) loadOutcomes(ctx context.Context, byID map[uuid.UUID]*domain.Signal) error {
	if len(byID) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(byID))
	for id, s := range byID {
		ids = append(ids, id)
		s.Outcomes = make([]domain.SignalOutcome, 0)
	}

	rows, err := r.db.Query(ctx, `
		SELECT signal_id, account_id, status, error, processed_at
		FROM signal_outcomes
		WHERE signal_id = ANY($1)
		ORDER BY signal_id, position
	`, ids)
	if err != nil {
		return fmt.Errorf("failed to query signal outcomes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		var o domain.SignalOutcome
		if err := rows.Scan(&id, &o.AccountID, &o.Status, &o.Error, &o.ProcessedAt); err != nil {
			return fmt.Errorf("failed to scan signal outcome: %w", err)
		}
		if s, ok := byID[id]; ok {
			s.Outcomes = append(s.Outcomes, o)
		}
	}

	return rows.Err()
}

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

// SubscriptionRepositoryImpl implements the SubscriptionRepository interface
type SubscriptionRepositoryImpl struct {
	db *pgxpool.Pool
}

// NewSubscriptionRepository creates a new SubscriptionRepository
func NewSubscriptionRepository(db *pgxpool.Pool) domain.SubscriptionRepository {
	return &SubscriptionRepositoryImpl{db: db}
}

const subscriptionSelect = `
	SELECT s.id, s.user_id, s.package_id, p.name, s.start_date, s.end_date, s.status, s.created_at
	FROM subscriptions s
	JOIN packages p ON p.id = s.package_id
`

func scanSubscription(row pgx.Row) (*domain.Subscription, error) {
	s := &domain.Subscription{}
	err := row.Scan(&s.ID, &s.UserID, &s.PackageID, &s.PackageName, &s.StartDate, &s.EndDate, &s.Status, &s.CreatedAt)
	return s, err
}

// Create inserts a new subscription
func (r *SubscriptionRepositoryImpl) Create(ctx context.Context, s *domain.Subscription) error {
	query := `
		INSERT INTO subscriptions (id, user_id, package_id, start_date, end_date, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query, s.ID, s.UserID, s.PackageID, s.StartDate, s.EndDate, s.Status, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	return nil
}

// GetByID retrieves a subscription by ID
func (r *SubscriptionRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*domain.Subscription, error) {
	s, err := scanSubscription(r.db.QueryRow(ctx, subscriptionSelect+` WHERE s.id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription: %w", notFound(err))
	}
	return s, nil
}

// GetCurrentForUser returns the newest non-cancelled subscription of a user
func (r *SubscriptionRepositoryImpl) GetCurrentForUser(ctx context.Context, userID string) (*domain.Subscription, error) {
	query := subscriptionSelect + `
		WHERE s.user_id = $1 AND s.status <> 'cancelled'
		ORDER BY s.created_at DESC
		LIMIT 1
	`

	s, err := scanSubscription(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		return nil, fmt.Errorf("failed to get current subscription: %w", notFound(err))
	}
	return s, nil
}

// GetAll retrieves every subscription, newest first
func (r *SubscriptionRepositoryImpl) GetAll(ctx context.Context) ([]*domain.Subscription, error) {
	return r.list(ctx, subscriptionSelect+` ORDER BY s.created_at DESC`)
}

// UpdateStatus sets a subscription status
func (r *SubscriptionRepositoryImpl) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.db.Exec(ctx, `UPDATE subscriptions SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update subscription status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetActiveEndingBefore returns active subscriptions ending before t
func (r *SubscriptionRepositoryImpl) GetActiveEndingBefore(ctx context.Context, t time.Time) ([]*domain.Subscription, error) {
	query := subscriptionSelect + `
		WHERE s.status = 'active' AND s.end_date < $1
		ORDER BY s.end_date ASC
	`
	return r.list(ctx, query, t)
}

// GetPendingStartingBefore returns pending subscriptions starting before t
func (r *SubscriptionRepositoryImpl) GetPendingStartingBefore(ctx context.Context, t time.Time) ([]*domain.Subscription, error) {
	query := subscriptionSelect + `
		WHERE s.status = 'pending' AND s.start_date < $1
		ORDER BY s.start_date ASC
	`
	return r.list(ctx, query, t)
}

// GetPackages retrieves all packages
func (r *SubscriptionRepositoryImpl) GetPackages(ctx context.Context) ([]*domain.Package, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, price, duration_days, plan, created_at
		FROM packages
		ORDER BY price ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query packages: %w", err)
	}
	defer rows.Close()

	packages := make([]*domain.Package, 0)
	for rows.Next() {
		p := &domain.Package{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.DurationDays, &p.Plan, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan package: %w", err)
		}
		packages = append(packages, p)
	}

	return packages, rows.Err()
}

// GetPackageByID retrieves one package
func (r *SubscriptionRepositoryImpl) GetPackageByID(ctx context.Context, id uuid.UUID) (*domain.Package, error) {
	p := &domain.Package{}
	err := r.db.QueryRow(ctx, `
		SELECT id, name, price, duration_days, plan, created_at
		FROM packages
		WHERE id = $1
	`, id).Scan(&p.ID, &p.Name, &p.Price, &p.DurationDays, &p.Plan, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get package: %w", notFound(err))
	}
	return p, nil
}

func (r *SubscriptionRepositoryImpl) list(ctx context.Context, query string, args ...any) ([]*domain.Subscription, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query subscriptions: %w", err)
	}
	defer rows.Close()

	subs := make([]*domain.Subscription, 0)
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		subs = append(subs, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subscriptions: %w", err)
	}

	return subs, nil
}

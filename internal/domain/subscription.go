package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Package is a billing plan a user can subscribe to
type Package struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Price        float64   `json:"price"`
	DurationDays int       `json:"duration_days"`
	Plan         string    `json:"plan"`
	CreatedAt    time.Time `json:"created_at"`
}

// Subscription associates a user with a package for a period
type Subscription struct {
	ID          uuid.UUID `json:"id"`
	UserID      string    `json:"user_id"`
	PackageID   uuid.UUID `json:"package_id"`
	PackageName string    `json:"package_name"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// Subscription status values
const (
	SubscriptionActive    = "active"
	SubscriptionExpired   = "expired"
	SubscriptionCancelled = "cancelled"
	SubscriptionPending   = "pending"
)

// DaysRemaining returns whole days until the end date, rounded up.
// It never goes below zero.
func (s *Subscription) DaysRemaining(now time.Time) int {
	left := s.EndDate.Sub(now)
	if left <= 0 {
		return 0
	}
	return int(math.Ceil(left.Hours() / 24))
}

// HasStarted reports whether a pending subscription's start date has been reached
func (s *Subscription) HasStarted(now time.Time) bool {
	return s.Status == SubscriptionPending && !now.Before(s.StartDate)
}

// IsDue reports whether an active subscription has passed its end date
func (s *Subscription) IsDue(now time.Time) bool {
	return s.Status == SubscriptionActive && !now.Before(s.EndDate)
}

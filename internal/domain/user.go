package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents a dashboard user as known from the identity provider
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Plan      string    `json:"plan"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserRole constants
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// Plan constants
const (
	PlanFree    = "FREE"
	PlanPremium = "PREMIUM"
	PlanProp    = "PROP"
)

// IsAdmin reports whether the user has the ADMIN role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsPremiumUser reports whether the user may see premium content.
// Admins always can.
func (u *User) IsPremiumUser() bool {
	return u.IsAdmin() || u.Plan == PlanPremium || u.Plan == PlanProp
}

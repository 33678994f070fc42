package domain

import (
	"time"

	"github.com/google/uuid"
)

// Bot is an automated strategy subscription. The three tiers share mechanics
// and differ only in ownership and administration rules.
type Bot struct {
	ID          uuid.UUID  `json:"id"`
	Tier        string     `json:"tier"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	OwnerID     string     `json:"owner_id,omitempty"`
	Status      string     `json:"status"`
	RiskLevel   string     `json:"risk_level"`
	Metrics     BotMetrics `json:"metrics"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// BotMetrics holds performance figures shown on bot cards
type BotMetrics struct {
	WinRate      float64 `json:"win_rate"`
	ProfitFactor float64 `json:"profit_factor"`
	TotalTrades  int     `json:"total_trades"`
	TotalPnL     float64 `json:"total_pnl"`
	MaxDrawdown  float64 `json:"max_drawdown"`
}

// Bot tiers
const (
	TierUser    = "user"
	TierPremium = "premium"
	TierProp    = "prop"
)

// Bot status values. Any status may follow any other.
const (
	BotStatusActive      = "active"
	BotStatusInactive    = "inactive"
	BotStatusMaintenance = "maintenance"
	BotStatusError       = "error"
	BotStatusSuspended   = "suspended"
)

// Risk levels
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// ValidTier reports whether t is a known bot tier
func ValidTier(t string) bool {
	switch t {
	case TierUser, TierPremium, TierProp:
		return true
	}
	return false
}

// ValidBotStatus reports whether s is a member of the bot status enum
func ValidBotStatus(s string) bool {
	switch s {
	case BotStatusActive, BotStatusInactive, BotStatusMaintenance, BotStatusError, BotStatusSuspended:
		return true
	}
	return false
}

// ValidRiskLevel reports whether r is a known risk level
func ValidRiskLevel(r string) bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigh:
		return true
	}
	return false
}

// CanView reports whether u may see the bot
func (b *Bot) CanView(u *User) bool {
	if u.IsAdmin() {
		return true
	}
	switch b.Tier {
	case TierUser:
		return b.OwnerID == u.ID.String()
	case TierPremium:
		return u.IsPremiumUser()
	case TierProp:
		return true
	}
	return false
}

// CanManage reports whether u may modify or delete the bot.
// Premium and prop bots are administered by admins only.
func (b *Bot) CanManage(u *User) bool {
	if u.IsAdmin() {
		return true
	}
	return b.Tier == TierUser && b.OwnerID == u.ID.String()
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

// Account is one trading account row. A row belongs to a user and a CSP
// (broker) account; the trading account fields are optional.
type Account struct {
	ID                 uuid.UUID  `json:"id"`
	UserID             string     `json:"user_id"`
	UserName           string     `json:"user_name,omitempty"`
	CSPAccountID       string     `json:"csp_account_id"`
	CSPAccountName     string     `json:"csp_account_name,omitempty"`
	TradingAccountID   string     `json:"trading_account_id,omitempty"`
	TradingAccountName string     `json:"trading_account_name,omitempty"`
	CredentialID       *uuid.UUID `json:"credential_id,omitempty"`
	Balance            float64    `json:"balance"`
	ConnectionStatus   string     `json:"connection_status"`
	IsLive             bool       `json:"is_live"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// Connection status constants
const (
	ConnectionConnected    = "connected"
	ConnectionDisconnected = "disconnected"
	ConnectionError        = "error"
)

// ValidConnectionStatus reports whether s is a known connection status
func ValidConnectionStatus(s string) bool {
	switch s {
	case ConnectionConnected, ConnectionDisconnected, ConnectionError:
		return true
	}
	return false
}

// AccountType returns "live" or "demo"
func (a *Account) AccountType() string {
	if a.IsLive {
		return "live"
	}
	return "demo"
}

// APICredential links an exchange API key to a user. The secret is sealed
// before it reaches storage and is never serialized.
type APICredential struct {
	ID           uuid.UUID `json:"id"`
	UserID       string    `json:"user_id"`
	Exchange     string    `json:"exchange"`
	Label        string    `json:"label"`
	KeyID        string    `json:"key_id"`
	SealedSecret []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

package usecase

import (
	"context"

	"github.com/sirupsen/logrus"

	"botdash/internal/domain"
)

// Opener decrypts sealed credential secrets
type Opener interface {
	Open(sealed []byte) ([]byte, error)
}

// CredentialChecker treats an account as connected when its linked API
// credential exists and its secret can be opened
type CredentialChecker struct {
	credentials domain.CredentialRepository
	opener      Opener
	log         *logrus.Entry
}

// NewCredentialChecker creates a CredentialChecker. A nil opener only checks
// that the credential exists.
func NewCredentialChecker(credentials domain.CredentialRepository, opener Opener, log *logrus.Entry) *CredentialChecker {
	return &CredentialChecker{credentials: credentials, opener: opener, log: log}
}

// Check returns the connection status for account
func (c *CredentialChecker) Check(ctx context.Context, account *domain.Account) string {
	if account.CredentialID == nil {
		return domain.ConnectionDisconnected
	}

	cred, err := c.credentials.GetByID(ctx, *account.CredentialID)
	if err != nil {
		c.log.WithError(err).WithField("account_id", account.ID).Warn("Linked credential missing")
		return domain.ConnectionError
	}
	if cred.UserID != account.UserID {
		c.log.WithField("account_id", account.ID).Warn("Linked credential belongs to another user")
		return domain.ConnectionError
	}
	if c.opener != nil {
		if _, err := c.opener.Open(cred.SealedSecret); err != nil {
			c.log.WithError(err).WithField("account_id", account.ID).Warn("Linked credential cannot be opened")
			return domain.ConnectionError
		}
	}
	return domain.ConnectionConnected
}

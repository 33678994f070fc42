package client

import (
	"net/url"
	"strings"
)

// API paths. Templates with :id are expanded by Path.
const (
	EndpointHealth = "/health"

	EndpointAuthMe = "/api/auth/me"

	EndpointBots      = "/api/bots"
	EndpointBot       = "/api/bots/:id"
	EndpointBotStatus = "/api/bots/:id/status"

	EndpointAccounts           = "/api/accounts"
	EndpointAccount            = "/api/accounts/:id"
	EndpointAccountTree        = "/api/accounts/tree"
	EndpointAccountCredentials = "/api/accounts/credentials"

	EndpointSignals = "/api/signals"
	EndpointSignal  = "/api/signals/:id"

	EndpointSubscriptionMe = "/api/subscriptions/me"
	EndpointPackages       = "/api/packages"

	EndpointSettings = "/api/settings"

	EndpointAdminUsers              = "/api/admin/users"
	EndpointAdminStatistics         = "/api/admin/statistics"
	EndpointAdminAccountTree        = "/api/admin/accounts/tree"
	EndpointAdminSignals            = "/api/admin/signals"
	EndpointAdminSubscriptions      = "/api/admin/subscriptions"
	EndpointAdminSubscriptionCancel = "/api/admin/subscriptions/:id/cancel"
	EndpointAdminSyncAccounts       = "/api/admin/sync/accounts"
	EndpointAdminSyncStatus         = "/api/admin/sync/status"
)

// Path expands the :id placeholder of template
func Path(template, id string) string {
	return strings.Replace(template, ":id", url.PathEscape(id), 1)
}

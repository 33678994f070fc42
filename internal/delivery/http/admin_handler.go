package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"botdash/internal/delivery/http/dto"
	"botdash/internal/service"
	"botdash/internal/usecase"
)

// SyncController runs and reports the background sync jobs
type SyncController interface {
	TriggerAccountRefresh() bool
	Status() usecase.SyncStatus
}

// AdminHandler handles admin-related requests
type AdminHandler struct {
	users         *service.UserService
	stats         *service.StatsService
	accounts      *service.AccountService
	signals       *service.SignalService
	subscriptions *service.SubscriptionService
	sync          SyncController
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	users *service.UserService,
	stats *service.StatsService,
	accounts *service.AccountService,
	signals *service.SignalService,
	subscriptions *service.SubscriptionService,
	sync SyncController,
) *AdminHandler {
	return &AdminHandler{
		users:         users,
		stats:         stats,
		accounts:      accounts,
		signals:       signals,
		subscriptions: subscriptions,
		sync:          sync,
	}
}

// GetUsers lists the users seen so far
// GET /api/admin/users
func (h *AdminHandler) GetUsers(c echo.Context) error {
	user, err := sessionUser(c)
	if err != nil {
		return err
	}

	users, err := h.users.List(c.Request().Context(), user)
	if err != nil {
		return DomainErrorResponse(c, "Failed to fetch users", err)
	}
	return SuccessResponse(c, map[string]interface{}{
		"users": dto.NewUserOutputs(users),
		"count": len(users),
	})
}

// GetStatistics returns the overview counters
// GET /api/admin/statistics
func (h *AdminHandler) GetStatistics(c echo.Context) error {
	user, err := sessionUser(c)
	if err != nil {
		return err
	}

	stats, err := h.stats.Collect(c.Request().Context(), user)
	if err != nil {
		return DomainErrorResponse(c, "Failed to collect statistics", err)
	}
	return SuccessResponse(c, stats)
}

// GetAccountTree returns every account grouped by user and CSP account
// GET /api/admin/accounts/tree
func (h *AdminHandler) GetAccountTree(c echo.Context) error {
	user, err := sessionUser(c)
	if err != nil {
		return err
	}

	tree, err := h.accounts.TreeAll(c.Request().Context(), user)
	if err != nil {
		return DomainErrorResponse(c, "Failed to build account tree", err)
	}
	return SuccessResponse(c, tree)
}

// RecordSignal ingests a signal with its per-account outcomes
// POST /api/admin/signals
func (h *AdminHandler) RecordSignal(c echo.Context) error {
	user, err := sessionUser(c)
	if err != nil {
		return err
	}
	var in service.SignalInput
	if err := c.Bind(&in); err != nil {
		return BadRequestResponse(c, "Invalid request payload")
	}

	signal, err := h.signals.Record(c.Request().Context(), user, in)
	if err != nil {
		return DomainErrorResponse(c, "Failed to record signal", err)
	}
	return CreatedResponse(c, signal)
}

// GetSubscriptions lists subscriptions, optionally by status
// GET /api/admin/subscriptions?status=
func (h *AdminHandler) GetSubscriptions(c echo.Context) error {
	user, err := sessionUser(c)
	if err != nil {
		return err
	}

	subs, err := h.subscriptions.List(c.Request().Context(), user, c.QueryParam("status"))
	if err != nil {
		return DomainErrorResponse(c, "Failed to fetch subscriptions", err)
	}
	if subs == nil {
		subs = []service.SubscriptionView{}
	}
	return SuccessResponse(c, subs)
}

// CreateSubscription assigns a package to a user
// POST /api/admin/subscriptions
func (h *AdminHandler) CreateSubscription(c echo.Context) error {
	user, err := sessionUser(c)
	if err != nil {
		return err
	}
	var in service.SubscriptionInput
	if err := c.Bind(&in); err != nil {
		return BadRequestResponse(c, "Invalid request payload")
	}

	sub, err := h.subscriptions.Create(c.Request().Context(), user, in)
	if err != nil {
		return DomainErrorResponse(c, "Failed to create subscription", err)
	}
	return CreatedResponse(c, sub)
}

// CancelSubscription cancels a subscription
// POST /api/admin/subscriptions/:id/cancel
func (h *AdminHandler) CancelSubscription(c echo.Context) error {
	user, err := sessionUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return DomainErrorResponse(c, "Invalid subscription id", err)
	}

	sub, err := h.subscriptions.Cancel(c.Request().Context(), user, id)
	if err != nil {
		return DomainErrorResponse(c, "Failed to cancel subscription", err)
	}
	return SuccessMessageResponse(c, "Subscription cancelled", sub)
}

// TriggerAccountSync starts a background account connection refresh
// POST /api/admin/sync/accounts
func (h *AdminHandler) TriggerAccountSync(c echo.Context) error {
	if !h.sync.TriggerAccountRefresh() {
		return ErrorResponse(c, http.StatusConflict, "Account refresh already running", nil)
	}
	return c.JSON(http.StatusAccepted, Response{
		Status:  "success",
		Message: "Account refresh started",
		Data:    dto.TriggerOutput{Started: true},
	})
}

// GetSyncStatus reports the loading flags of the sync jobs
// GET /api/admin/sync/status
func (h *AdminHandler) GetSyncStatus(c echo.Context) error {
	return SuccessResponse(c, h.sync.Status())
}

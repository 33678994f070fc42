package http

import (
	"github.com/labstack/echo/v4"

	"botdash/internal/service"
)

// SubscriptionHandler handles subscription and package requests
type SubscriptionHandler struct {
	subscriptions *service.SubscriptionService
}

// NewSubscriptionHandler creates a new subscription handler
func NewSubscriptionHandler(subscriptions *service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptions: subscriptions}
}

// Me returns the current user's subscription with days remaining
// GET /api/subscriptions/me
func (h *SubscriptionHandler) Me(c echo.Context) error {
	user, err := sessionUser(c)
	if err != nil {
		return err
	}

	sub, err := h.subscriptions.Current(c.Request().Context(), user)
	if err != nil {
		return DomainErrorResponse(c, "No subscription found", err)
	}
	return SuccessResponse(c, sub)
}

// Packages lists the billing packages
// GET /api/packages
func (h *SubscriptionHandler) Packages(c echo.Context) error {
	packages, err := h.subscriptions.Packages(c.Request().Context())
	if err != nil {
		return DomainErrorResponse(c, "Failed to fetch packages", err)
	}
	return SuccessResponse(c, packages)
}

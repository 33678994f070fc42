package http

import (
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"botdash/internal/delivery/http/dto"
	"botdash/internal/service"
)

// AuthHandler exposes the session derived from the identity provider token
type AuthHandler struct {
	users *service.UserService
	log   *logrus.Entry
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(users *service.UserService, log *logrus.Entry) *AuthHandler {
	return &AuthHandler{users: users, log: log}
}

// Me returns the current user with its derived flags
// GET /api/auth/me
func (h *AuthHandler) Me(c echo.Context) error {
	user, err := sessionUser(c)
	if err != nil {
		return err
	}

	// Keep a local copy of identity provider users for admin views
	if err := h.users.Touch(c.Request().Context(), user); err != nil {
		h.log.WithError(err).WithField("user_id", user.ID).Warn("Failed to record user")
	}

	return SuccessResponse(c, dto.NewUserOutput(user))
}

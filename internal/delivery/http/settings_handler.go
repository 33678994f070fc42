package http

import (
	"io"

	"github.com/labstack/echo/v4"

	"botdash/internal/domain"
	"botdash/internal/service"
)

// maxSettingsBody caps the size of a settings document
const maxSettingsBody = 64 << 10

// SettingsHandler handles per-user settings
type SettingsHandler struct {
	settings *service.SettingsService
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(settings *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// Get returns the user's settings, defaults when none are stored
// GET /api/settings
func (h *SettingsHandler) Get(c echo.Context) error {
	user, err := sessionUser(c)
	if err != nil {
		return err
	}

	settings, err := h.settings.Get(c.Request().Context(), user)
	if err != nil {
		return DomainErrorResponse(c, "Failed to fetch settings", err)
	}
	return SuccessResponse(c, settings)
}

// Replace stores a whole settings document
// PUT /api/settings
func (h *SettingsHandler) Replace(c echo.Context) error {
	user, err := sessionUser(c)
	if err != nil {
		return err
	}
	var in domain.UserSettings
	if err := c.Bind(&in); err != nil {
		return BadRequestResponse(c, "Invalid request payload")
	}

	settings, err := h.settings.Replace(c.Request().Context(), user, in)
	if err != nil {
		return DomainErrorResponse(c, "Failed to save settings", err)
	}
	return SuccessMessageResponse(c, "Settings saved", settings)
}

// Patch merges a partial settings document into the stored one
// PATCH /api/settings
func (h *SettingsHandler) Patch(c echo.Context) error {
	user, err := sessionUser(c)
	if err != nil {
		return err
	}
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxSettingsBody))
	if err != nil {
		return BadRequestResponse(c, "Invalid request payload")
	}

	settings, err := h.settings.Patch(c.Request().Context(), user, body)
	if err != nil {
		return DomainErrorResponse(c, "Failed to save settings", err)
	}
	return SuccessMessageResponse(c, "Settings saved", settings)
}

package http

import (
	"github.com/labstack/echo/v4"

	"botdash/internal/delivery/http/dto"
	"botdash/internal/service"
)

// BotHandler handles bot requests
type BotHandler struct {
	bots *service.BotService
}

// NewBotHandler creates a new bot handler
func NewBotHandler(bots *service.BotService) *BotHandler {
	return &BotHandler{bots: bots}
}

// List returns the visible bots
// GET /api/bots?tier=&status=&risk=&q=&sort=&dir=&page=&per_page=
func (h *BotHandler) List(c echo.Context) error {
	user, err := sessionUser(c)
	if err != nil {
		return err
	}

	bots, info, err := h.bots.List(c.Request().Context(), user, service.BotQuery{
		Tier:    c.QueryParam("tier"),
		Status:  c.QueryParam("status"),
		Risk:    c.QueryParam("risk"),
		Search:  c.QueryParam("q"),
		Sort:    c.QueryParam("sort"),
		Dir:     c.QueryParam("dir"),
		Page:    queryInt(c, "page"),
		PerPage: queryInt(c, "per_page"),
	})
	if err != nil {
		return DomainErrorResponse(c, "Failed to fetch bots", err)
	}
	return PageResponse(c, bots, info)
}

// Get returns one bot
// GET /api/bots/:id
func (h *BotHandler) Get(c echo.Context) error {
	user, err := sessionUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return DomainErrorResponse(c, "Invalid bot id", err)
	}

	bot, err := h.bots.Get(c.Request().Context(), user, id)
	if err != nil {
		return DomainErrorResponse(c, "Failed to fetch bot", err)
	}
	return SuccessResponse(c, bot)
}

// Create creates a bot
// POST /api/bots
func (h *BotHandler) Create(c echo.Context) error {
	user, err := sessionUser(c)
	if err != nil {
		return err
	}
	var in service.BotInput
	if err := c.Bind(&in); err != nil {
		return BadRequestResponse(c, "Invalid request payload")
	}

	bot, err := h.bots.Create(c.Request().Context(), user, in)
	if err != nil {
		return DomainErrorResponse(c, "Failed to create bot", err)
	}
	return CreatedResponse(c, bot)
}

// Update replaces the editable fields of a bot
// PUT /api/bots/:id
func (h *BotHandler) Update(c echo.Context) error {
	user, err := sessionUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return DomainErrorResponse(c, "Invalid bot id", err)
	}
	var in service.BotInput
	if err := c.Bind(&in); err != nil {
		return BadRequestResponse(c, "Invalid request payload")
	}

	bot, err := h.bots.Update(c.Request().Context(), user, id, in)
	if err != nil {
		return DomainErrorResponse(c, "Failed to update bot", err)
	}
	return SuccessResponse(c, bot)
}

// SetStatus sets any status from the bot status enum
// PUT /api/bots/:id/status
func (h *BotHandler) SetStatus(c echo.Context) error {
	user, err := sessionUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return DomainErrorResponse(c, "Invalid bot id", err)
	}
	var req dto.SetStatusRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "Invalid request payload")
	}

	bot, err := h.bots.SetStatus(c.Request().Context(), user, id, req.Status)
	if err != nil {
		return DomainErrorResponse(c, "Failed to update bot status", err)
	}
	return SuccessMessageResponse(c, "Bot status updated", bot)
}

// Delete removes a bot
// DELETE /api/bots/:id
func (h *BotHandler) Delete(c echo.Context) error {
	user, err := sessionUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return DomainErrorResponse(c, "Invalid bot id", err)
	}

	if err := h.bots.Delete(c.Request().Context(), user, id); err != nil {
		return DomainErrorResponse(c, "Failed to delete bot", err)
	}
	return SuccessMessageResponse(c, "Bot deleted", nil)
}

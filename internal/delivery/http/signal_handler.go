package http

import (
	"github.com/labstack/echo/v4"

	"botdash/internal/delivery/http/dto"
	"botdash/internal/domain"
	"botdash/internal/service"
)

// SignalHandler handles signal log requests
type SignalHandler struct {
	signals *service.SignalService
}

// NewSignalHandler creates a new signal handler
func NewSignalHandler(signals *service.SignalService) *SignalHandler {
	return &SignalHandler{signals: signals}
}

// List returns recent signals, newest first unless sort is given
// GET /api/signals?source=&action=&instrument=&outcome=&q=&sort=&dir=&page=&per_page=
func (h *SignalHandler) List(c echo.Context) error {
	user, err := sessionUser(c)
	if err != nil {
		return err
	}

	signals, info, summary, err := h.signals.List(c.Request().Context(), user, service.SignalQuery{
		Source:     c.QueryParam("source"),
		Action:     c.QueryParam("action"),
		Instrument: c.QueryParam("instrument"),
		Outcome:    c.QueryParam("outcome"),
		Search:     c.QueryParam("q"),
		Sort:       c.QueryParam("sort"),
		Dir:        c.QueryParam("dir"),
		Page:       queryInt(c, "page"),
		PerPage:    queryInt(c, "per_page"),
	})
	if err != nil {
		return DomainErrorResponse(c, "Failed to fetch signals", err)
	}
	if signals == nil {
		signals = []*domain.Signal{}
	}

	return SuccessResponse(c, dto.SignalListOutput{
		Items:    signals,
		PageInfo: info,
		Summary:  summary,
	})
}

// Get returns one signal with its outcomes
// GET /api/signals/:id
func (h *SignalHandler) Get(c echo.Context) error {
	user, err := sessionUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return DomainErrorResponse(c, "Invalid signal id", err)
	}

	signal, err := h.signals.Get(c.Request().Context(), user, id)
	if err != nil {
		return DomainErrorResponse(c, "Failed to fetch signal", err)
	}
	return SuccessResponse(c, signal)
}

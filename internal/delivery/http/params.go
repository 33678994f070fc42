package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"botdash/internal/domain"
	custommiddleware "botdash/internal/middleware"
)

func sessionUser(c echo.Context) (*domain.User, error) {
	user, err := custommiddleware.GetUser(c)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}
	return user, nil
}

func pathID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid id %q", domain.ErrInvalid, c.Param("id"))
	}
	return id, nil
}

// queryInt reads an optional integer query parameter; bad values read as 0
// so pagination falls back to its defaults
func queryInt(c echo.Context, name string) int {
	n, err := strconv.Atoi(c.QueryParam(name))
	if err != nil {
		return 0
	}
	return n
}

package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"botdash/internal/domain"
	"botdash/internal/filter"
)

// Response represents a standardized API response
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   interface{} `json:"error,omitempty"`
}

// PaginatedResponse is the data payload of list endpoints
type PaginatedResponse[T any] struct {
	Items    []T             `json:"items"`
	PageInfo filter.PageInfo `json:"page_info"`
}

// SuccessResponse sends a success response
func SuccessResponse(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, Response{
		Status: "success",
		Data:   data,
	})
}

// SuccessMessageResponse sends a success response with a message
func SuccessMessageResponse(c echo.Context, message string, data interface{}) error {
	return c.JSON(http.StatusOK, Response{
		Status:  "success",
		Message: message,
		Data:    data,
	})
}

// CreatedResponse sends a 201 Created response
func CreatedResponse(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusCreated, Response{
		Status: "success",
		Data:   data,
	})
}

// PageResponse sends one page of items with its page info
func PageResponse[T any](c echo.Context, items []T, info filter.PageInfo) error {
	if items == nil {
		items = []T{}
	}
	return SuccessResponse(c, PaginatedResponse[T]{Items: items, PageInfo: info})
}

// ErrorResponse sends an error response
func ErrorResponse(c echo.Context, statusCode int, message string, err interface{}) error {
	return c.JSON(statusCode, Response{
		Status:  "error",
		Message: message,
		Error:   err,
	})
}

// BadRequestResponse sends a 400 Bad Request response
func BadRequestResponse(c echo.Context, message string) error {
	return ErrorResponse(c, http.StatusBadRequest, message, nil)
}

// UnauthorizedResponse sends a 401 Unauthorized response
func UnauthorizedResponse(c echo.Context, message string) error {
	return ErrorResponse(c, http.StatusUnauthorized, message, nil)
}

// ForbiddenResponse sends a 403 Forbidden response
func ForbiddenResponse(c echo.Context, message string) error {
	return ErrorResponse(c, http.StatusForbidden, message, nil)
}

// NotFoundResponse sends a 404 Not Found response
func NotFoundResponse(c echo.Context, message string) error {
	return ErrorResponse(c, http.StatusNotFound, message, nil)
}

// InternalServerErrorResponse sends a 500 Internal Server Error response.
// A nil err leaves the error field out.
func InternalServerErrorResponse(c echo.Context, message string, err error) error {
	if err == nil {
		return ErrorResponse(c, http.StatusInternalServerError, message, nil)
	}
	return ErrorResponse(c, http.StatusInternalServerError, message, err.Error())
}

// sendError writes a detail-free error envelope; internal errors never reach
// the client
func sendError(c echo.Context, code int, message string) error {
	if c.Request().Method == http.MethodHead {
		return c.NoContent(code)
	}
	switch {
	case code == http.StatusBadRequest:
		return BadRequestResponse(c, message)
	case code == http.StatusUnauthorized:
		return UnauthorizedResponse(c, message)
	case code == http.StatusForbidden:
		return ForbiddenResponse(c, message)
	case code == http.StatusNotFound:
		return NotFoundResponse(c, message)
	case code >= http.StatusInternalServerError:
		return InternalServerErrorResponse(c, message, nil)
	}
	return ErrorResponse(c, code, message, nil)
}

// statusFor maps domain sentinel errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// DomainErrorResponse sends the envelope matching a service error. Internal
// errors are handed to the HTTP error handler, which logs them and replies
// without detail.
func DomainErrorResponse(c echo.Context, message string, err error) error {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		return fmt.Errorf("%s: %w", message, err)
	}
	return ErrorResponse(c, code, message, err.Error())
}

// NewHTTPErrorHandler renders every unhandled error, including middleware
// rejections and recovered panics, as an error envelope
func NewHTTPErrorHandler(log *logrus.Entry) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		message := http.StatusText(code)

		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if m, ok := he.Message.(string); ok {
				message = m
			} else {
				message = http.StatusText(code)
			}
		} else if sc := statusFor(err); sc != http.StatusInternalServerError {
			code, message = sc, err.Error()
		}

		if code >= http.StatusInternalServerError {
			log.WithError(err).WithFields(logrus.Fields{
				"method": c.Request().Method,
				"path":   c.Path(),
			}).Error("Request failed")
		}

		if sendErr := sendError(c, code, message); sendErr != nil {
			log.WithError(sendErr).Warn("Failed to write error response")
		}
	}
}

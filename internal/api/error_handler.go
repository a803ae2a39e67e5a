package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/harvestchurch/content-platform/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler maps domain error kinds to status codes and renders
// {"error": "<message>"}. Unexpected errors are logged and answered with a
// generic message.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, reason(err, domain.ErrValidation)
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid email or password"
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, "authentication required"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "access forbidden"
	case errors.Is(err, domain.ErrContentNotFound):
		return http.StatusNotFound, "content not found"
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, "an account with this email already exists"
	case errors.Is(err, domain.ErrPinConflict):
		return http.StatusConflict, domain.ErrPinConflict.Error()
	case errors.Is(err, domain.ErrPinLimitExceeded):
		return http.StatusUnprocessableEntity, reason(err, domain.ErrPinLimitExceeded) + "; unpin one first"
	case errors.Is(err, domain.ErrNetwork):
		return http.StatusServiceUnavailable, "service temporarily unavailable"
	}

	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}

// reason strips the trailing kind from a wrapped error message, leaving
// the part written for humans.
func reason(err, kind error) string {
	msg := strings.TrimSuffix(err.Error(), ": "+kind.Error())
	if msg == "" {
		return kind.Error()
	}
	return msg
}

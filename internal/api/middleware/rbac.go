package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/harvestchurch/content-platform/internal/core/authority"
)

// Require allows the request through only when the current actor may
// perform action regardless of category or ownership. It must run after Auth.
func Require(action authority.Action) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor := ActorFrom(c)
			if actor == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			if !authority.CanPerform(actor, action, "") {
				return echo.NewHTTPError(http.StatusForbidden, "access forbidden")
			}
			return next(c)
		}
	}
}

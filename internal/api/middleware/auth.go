package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/harvestchurch/content-platform/internal/core/domain"
)

// Context keys set by Auth.
const (
	ActorKey = "actor"
	TokenKey = "token"
)

// Verifier resolves a raw bearer token to the actor it belongs to.
type Verifier interface {
	Verify(ctx context.Context, rawToken string) (*domain.Actor, error)
}

// Auth requires a bearer token, resolves it through v and injects the
// current actor into the echo context. The actor is re-read on every
// request, so role changes and deactivation apply on the next call.
func Auth(v Verifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, err := bearerToken(c)
			if err != nil {
				return err
			}

			actor, err := v.Verify(c.Request().Context(), raw)
			if err != nil {
				if errors.Is(err, domain.ErrUnauthenticated) {
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
				}
				return err
			}

			c.Set(ActorKey, actor)
			c.Set(TokenKey, raw)
			return next(c)
		}
	}
}

// ActorFrom returns the actor injected by Auth, or nil.
func ActorFrom(c echo.Context) *domain.Actor {
	actor, _ := c.Get(ActorKey).(*domain.Actor)
	return actor
}

// TokenFrom returns the raw bearer token injected by Auth.
func TokenFrom(c echo.Context) string {
	raw, _ := c.Get(TokenKey).(string)
	return raw
}

func bearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
	}
	return strings.TrimSpace(parts[1]), nil
}

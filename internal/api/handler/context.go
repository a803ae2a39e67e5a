package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/harvestchurch/content-platform/internal/api/middleware"
	"github.com/harvestchurch/content-platform/internal/core/domain"
)

// ctxActor returns the actor injected by the Auth middleware. A missing
// actor means the route was registered without Auth; reject with 401.
func ctxActor(c echo.Context) (*domain.Actor, error) {
	actor := middleware.ActorFrom(c)
	if actor == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
	}
	return actor, nil
}

// pathKind maps the :kind path segment (posts, sermons) to a content kind.
func pathKind(c echo.Context) (domain.ContentKind, error) {
	kind := domain.ContentKind(strings.TrimSuffix(c.Param("kind"), "s"))
	if !kind.Valid() {
		return "", echo.NewHTTPError(http.StatusNotFound, "unknown content collection")
	}
	return kind, nil
}

package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/harvestchurch/content-platform/internal/core/authority"
	"github.com/harvestchurch/content-platform/internal/core/domain"
	"github.com/harvestchurch/content-platform/internal/core/ports"
)

// UserHandler serves the current actor's profile and admin user management.
type UserHandler struct {
	service ports.UserAdminService
}

func NewUserHandler(service ports.UserAdminService) *UserHandler {
	return &UserHandler{service: service}
}

// Me handles GET /v1/me.
//
// @Summary      Current actor and capabilities
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  meResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	caps := authority.Capabilities(actor)
	names := make([]string, len(caps))
	for i, a := range caps {
		names[i] = string(a)
	}

	return c.JSON(http.StatusOK, meResponse{
		Actor:             actor,
		AllowedCategories: authority.AllowedCategories(actor),
		Capabilities:      names,
		IsAdmin:           authority.IsAdmin(actor),
	})
}

// ChangeRole handles PUT /v1/users/:id/role.
//
// @Summary      Change a user's role
// @Description  Takes effect on the user's next request.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string       true  "User id"
// @Param        body  body      roleRequest  true  "New role"
// @Success      200   {object}  actorResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/users/{id}/role [put]
func (h *UserHandler) ChangeRole(c echo.Context) error {
	caller, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req roleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	actor, err := h.service.ChangeRole(c.Request().Context(), caller, c.Param("id"), domain.Role(req.Role))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, actorResponse{Actor: actor})
}

// SetActive handles PUT /v1/users/:id/active.
//
// @Summary      Activate or deactivate a user
// @Description  Deactivated users keep their data but can no longer authenticate.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string         true  "User id"
// @Param        body  body      activeRequest  true  "Desired state"
// @Success      200   {object}  actorResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/users/{id}/active [put]
func (h *UserHandler) SetActive(c echo.Context) error {
	caller, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req activeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	actor, err := h.service.SetActive(c.Request().Context(), caller, c.Param("id"), *req.Active)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, actorResponse{Actor: actor})
}

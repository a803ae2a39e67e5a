package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/harvestchurch/content-platform/internal/api/metrics"
	"github.com/harvestchurch/content-platform/internal/api/middleware"
	"github.com/harvestchurch/content-platform/internal/core/domain"
	"github.com/harvestchurch/content-platform/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type signupRequest struct {
	Identifier  string `json:"identifier"   validate:"required,email"`
	Secret      string `json:"secret"       validate:"required,min=8,max=72"`
	DisplayName string `json:"display_name" validate:"required,max=80"`
}

type loginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Secret     string `json:"secret"     validate:"required"`
}

type tokenResponse struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	Actor     *domain.Actor `json:"actor"`
}

type actorResponse struct {
	Actor *domain.Actor `json:"actor"`
}

func toTokenResponse(t *ports.IssuedToken) tokenResponse {
	return tokenResponse{Token: t.Token, ExpiresAt: t.ExpiresAt.UTC(), Actor: t.Actor}
}

// Signup creates a member account and issues its first credential.
//
// @Summary      Create an account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signupRequest  true  "Registration details"
// @Success      201   {object}  tokenResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /auth/signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	issued, err := h.authService.Signup(c.Request().Context(), ports.Registration{
		Email:       req.Identifier,
		Secret:      req.Secret,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("signup", "rejected").Inc()
		return err
	}

	metrics.AuthAttemptsTotal.WithLabelValues("signup", "ok").Inc()
	return c.JSON(http.StatusCreated, toTokenResponse(issued))
}

// Login exchanges an email and secret for a credential.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  tokenResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	issued, err := h.authService.Login(c.Request().Context(), req.Identifier, req.Secret)
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("login", "rejected").Inc()
		if errors.Is(err, domain.ErrUnauthenticated) {
			return echo.NewHTTPError(http.StatusForbidden, "account is deactivated")
		}
		return err
	}

	metrics.AuthAttemptsTotal.WithLabelValues("login", "ok").Inc()
	return c.JSON(http.StatusOK, toTokenResponse(issued))
}

// Verify returns the actor behind the bearer token.
//
// @Summary      Verify the current credential
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  actorResponse
// @Failure      401  {object}  errorResponse
// @Router       /auth/verify [get]
func (h *AuthHandler) Verify(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, actorResponse{Actor: actor})
}

// Refresh issues a fresh credential and revokes the presented one.
//
// @Summary      Refresh the current credential
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  tokenResponse
// @Failure      401  {object}  errorResponse
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	issued, err := h.authService.Refresh(c.Request().Context(), middleware.TokenFrom(c))
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("refresh", "rejected").Inc()
		return err
	}

	metrics.AuthAttemptsTotal.WithLabelValues("refresh", "ok").Inc()
	return c.JSON(http.StatusOK, toTokenResponse(issued))
}

// Logout revokes the presented credential.
//
// @Summary      Logout
// @Tags         auth
// @Security     BearerAuth
// @Success      204
// @Failure      401  {object}  errorResponse
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.authService.Logout(c.Request().Context(), middleware.TokenFrom(c)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

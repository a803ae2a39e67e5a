package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	_ "github.com/harvestchurch/content-platform/docs"
	"github.com/harvestchurch/content-platform/internal/api/handler"
	"github.com/harvestchurch/content-platform/internal/api/middleware"
	"github.com/harvestchurch/content-platform/internal/core/authority"
	"github.com/harvestchurch/content-platform/internal/core/ports"
)

const defaultAuthRate = 5

// Services are the use cases the router exposes.
type Services struct {
	Auth    ports.AuthService
	Content ports.ContentService
	Pins    ports.PinService
	Users   ports.UserAdminService
}

// Options tune the router.
type Options struct {
	Log          zerolog.Logger
	PreviewLimit int
	// AuthRate is the sustained requests per second allowed per client IP on
	// /auth routes.
	AuthRate float64
	Checks   map[string]handler.Check
	// Swagger mounts /swagger/* when true.
	Swagger bool
}

// NewRouter builds the Echo instance with all routes registered.
func NewRouter(svc Services, opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(opts.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(opts.Log))
	e.Use(echoprometheus.NewMiddleware("content_api"))
	e.Use(echomiddleware.BodyLimit("1M"))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(svc.Auth)
	contentHandler := handler.NewContentHandler(svc.Content, svc.Pins, opts.PreviewLimit)
	userHandler := handler.NewUserHandler(svc.Users)
	toolsHandler := handler.NewToolsHandler(opts.PreviewLimit)
	healthHandler := handler.NewHealthHandler(opts.Checks)

	requireAuth := middleware.Auth(svc.Auth)

	// --- Credential issuer ---
	authRate := opts.AuthRate
	if authRate <= 0 {
		authRate = defaultAuthRate
	}
	auth := e.Group("/auth", authLimiter(authRate))
	auth.POST("/signup", authHandler.Signup)
	auth.POST("/login", authHandler.Login)
	auth.GET("/verify", authHandler.Verify, requireAuth)
	auth.POST("/refresh", authHandler.Refresh, requireAuth)
	auth.POST("/logout", authHandler.Logout, requireAuth)

	// --- API v1 ---
	v1 := e.Group("/v1")

	v1.GET("/me", userHandler.Me, requireAuth)
	users := v1.Group("/users", requireAuth, middleware.Require(authority.ActionManageUsers))
	users.PUT("/:id/role", userHandler.ChangeRole)
	users.PUT("/:id/active", userHandler.SetActive)

	v1.POST("/tools/embed", toolsHandler.Embed)
	v1.POST("/tools/preview", toolsHandler.Preview)

	// Static routes above take precedence over :kind.
	v1.GET("/:kind", contentHandler.List)
	v1.GET("/:kind/:id", contentHandler.Get)
	v1.POST("/:kind", contentHandler.Create, requireAuth)
	v1.PUT("/:kind/:id", contentHandler.Update, requireAuth)
	v1.DELETE("/:kind/:id", contentHandler.Delete, requireAuth)
	v1.PUT("/:kind/:id/pin", contentHandler.SetPinned, requireAuth, middleware.Require(authority.ActionPinContent))

	// --- Operations ---
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	if opts.Swagger {
		e.GET("/swagger/*", echoSwagger.WrapHandler)
	}

	return e
}

func authLimiter(perSecond float64) echo.MiddlewareFunc {
	store := echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(perSecond),
		Burst:     int(perSecond * 2),
		ExpiresIn: 3 * time.Minute,
	})
	return echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Store: store,
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many attempts, try again shortly")
		},
	})
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}

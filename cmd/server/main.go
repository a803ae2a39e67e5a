// @title						Content Platform API
// @version					1.0
// @description				Role-gated posts and sermons with sanitized rich text, video embeds and pinning.
// @BasePath					/
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/harvestchurch/content-platform/internal/api"
	"github.com/harvestchurch/content-platform/internal/api/handler"
	"github.com/harvestchurch/content-platform/internal/api/metrics"
	"github.com/harvestchurch/content-platform/internal/core/domain"
	"github.com/harvestchurch/content-platform/internal/core/service"
	mongodb "github.com/harvestchurch/content-platform/internal/infrastructure/db/mongo"
	redisdb "github.com/harvestchurch/content-platform/internal/infrastructure/db/redis"
	"github.com/harvestchurch/content-platform/internal/infrastructure/queue"
	"github.com/harvestchurch/content-platform/internal/pkg/config"
	"github.com/harvestchurch/content-platform/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		boot := logger.New(logger.Options{Output: os.Stderr})
		boot.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "content-api",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		Timeout:  cfg.Mongo.Timeout,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect")
		}
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		Timeout:  cfg.Redis.Timeout,
	})
	if err != nil {
		return err
	}
	defer rdb.Close()

	// --- Repositories ---
	userRepo := mongodb.NewUserRepository(db)
	contentRepo := mongodb.NewContentRepository(db)
	auditRepo := mongodb.NewAuditRepository(db)
	if err := mongodb.EnsureIndexes(ctx, userRepo, contentRepo); err != nil {
		return err
	}

	if cfg.Auth.AdminEmail != "" {
		promoteAdmin(ctx, userRepo, cfg.Auth.AdminEmail, log)
	}

	// --- Audit workers ---
	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	dispatcher := queue.NewDispatcher(cfg.Content.AuditWorkers, auditRepo, log)
	dispatcher.OnDrop(func(domain.AuditEvent) { metrics.AuditDroppedTotal.Inc() })
	dispatcher.Start(workerCtx)
	defer func() {
		cancelWorkers()
		dispatcher.Wait()
	}()

	// --- Services ---
	authSvc := service.NewAuthService(userRepo, redisdb.NewRevocationList(rdb), cfg.JWTSecret, cfg.Auth.TokenTTL, log)
	contentSvc := service.NewContentService(contentRepo, dispatcher, log)
	pinSvc := service.NewPinService(contentRepo, redisdb.NewLocker(rdb), dispatcher, cfg.Content.PinLimit, log)
	userSvc := service.NewUserAdminService(userRepo, log)

	e := api.NewRouter(api.Services{
		Auth:    authSvc,
		Content: contentSvc,
		Pins:    pinSvc,
		Users:   userSvc,
	}, api.Options{
		Log:          log,
		PreviewLimit: cfg.Content.PreviewLimit,
		AuthRate:     cfg.Auth.Rate,
		Checks: map[string]handler.Check{
			"mongo": handler.MongoCheck(db),
			"redis": handler.RedisCheck(rdb),
		},
		Swagger: cfg.IsDevelopment(),
	})

	server := &http.Server{
		Addr:              ":" + strings.TrimPrefix(cfg.Port, ":"),
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Str("env", cfg.Env).Msg("content api listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
	return nil
}

func promoteAdmin(ctx context.Context, repo *mongodb.UserRepository, email string, log zerolog.Logger) {
	user, err := repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		log.Warn().Err(err).Str("email", email).Msg("admin account not promoted")
		return
	}
	if user.Role == domain.RoleAdmin {
		return
	}
	if _, err := repo.UpdateRole(ctx, user.ID, domain.RoleAdmin); err != nil {
		log.Warn().Err(err).Str("user_id", user.ID).Msg("admin account not promoted")
		return
	}
	log.Info().Str("user_id", user.ID).Msg("account promoted to admin")
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/madunda/task-manager-api/internal/api"
	"github.com/madunda/task-manager-api/internal/core/ports"
	"github.com/madunda/task-manager-api/internal/infrastructure/config"
	mongodb "github.com/madunda/task-manager-api/internal/infrastructure/db/mongo"
	redisdb "github.com/madunda/task-manager-api/internal/infrastructure/db/redis"
	"github.com/madunda/task-manager-api/internal/infrastructure/notify"
	"github.com/madunda/task-manager-api/internal/infrastructure/queue"
	"github.com/madunda/task-manager-api/pkg/logger"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET must be set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- MongoDB ---
	client, db, err := mongodb.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(disconnectCtx)
	}()

	userRepo := mongodb.NewUserRepository(db)
	taskRepo := mongodb.NewTaskRepository(db)
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("user index bootstrap failed")
	}
	if err := taskRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("task index bootstrap failed")
	}

	// --- Redis (optional) ---
	rdb := connectRedis(ctx, cfg, log)
	if rdb != nil {
		defer rdb.Close()
	}

	// --- Mail dispatcher ---
	var notifier ports.Notifier
	if cfg.Mail.APIKey != "" {
		notifier = notify.NewSendGridNotifier(cfg.Mail.APIKey, cfg.Mail.From, log)
	} else {
		log.Warn().Msg("SENDGRID_API_KEY not set, mail delivery is log-only")
		notifier = notify.NewLogNotifier(log)
	}
	dispatcher := queue.NewDispatcher(cfg.Mail.Workers, notifier, log)
	dispatcher.Start(ctx)

	// --- HTTP server ---
	e := api.NewRouter(api.Deps{
		DB:        db,
		Redis:     rdb,
		Mail:      dispatcher,
		JWTSecret: cfg.JWTSecret,
		TokenTTL:  cfg.TokenTTL,
		Logger:    log,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server start failed")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server listening")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
}

func connectRedis(ctx context.Context, cfg *config.Config, log zerolog.Logger) *redis.Client {
	if cfg.Redis.Addr == "" {
		log.Warn().Msg("REDIS_ADDR not set, login throttle disabled")
		return nil
	}
	rdb, err := redisdb.Connect(ctx, cfg.Redis.Addr, cfg.Redis.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	return rdb
}

package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskboard/internal/config"
	"taskboard/internal/database"
	"taskboard/internal/logging"
	"taskboard/internal/middleware"
	"taskboard/internal/ratelimit"
	"taskboard/internal/services"
	"taskboard/pkg/rabbitmq"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// --- Configuration ---
	cfg, err := config.Load(viper.New())
	if err != nil {
		return err
	}

	logger := logging.Setup(cfg.Log.Level, cfg.Log.Format)
	if cfg.JWT.EphemeralKey {
		logger.Warn("JWT_KEY is not set; using a random signing key, tokens will not survive a restart")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Database ---
	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			logger.Error("error closing database", "error", err)
		}
	}()
	logger.Info("database ready", "driver", cfg.Database.Driver)

	// --- RabbitMQ (optional) ---
	var events services.EventPublisher
	if cfg.RabbitMQ.URL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQ.URL}, logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := mqClient.Close(); err != nil {
				logger.Error("error closing rabbitmq client", "error", err)
			}
		}()
		events = mqClient

		if err := mqClient.Consume(rabbitmq.AuditHandler(logger.With("component", "audit"))); err != nil {
			logger.Error("failed to start event consumer", "error", err)
		}
	} else {
		logger.Info("RABBITMQ_URL is not set; domain events are disabled")
	}

	// --- Redis (optional) ---
	var limiter middleware.Allower
	if cfg.Redis.Addr != "" {
		rdb, err := ratelimit.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer func(rdb *redis.Client) {
			if err := rdb.Close(); err != nil {
				logger.Error("error closing redis client", "error", err)
			}
		}(rdb)
		limiter = ratelimit.NewLimiter(rdb, "taskboard:ratelimit", cfg.Redis.LoginRateLimit, cfg.Redis.LoginRateWindow)
	} else {
		logger.Info("REDIS_ADDR is not set; login throttling is disabled")
	}

	app := NewApp(Dependencies{
		Config:    cfg,
		DB:        db,
		Events:    events,
		Limiter:   limiter,
		AccessLog: true,
	})

	// --- Start HTTP Server ---
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", "port", cfg.Port, "env", cfg.Env)
		serverErr <- app.Listen(cfg.Port)
	}()

	// Wait for interrupt signal to gracefully shut down the server
	select {
	case err := <-serverErr:
		if err != nil {
			return err
		}
		return errors.New("server exited unexpectedly")
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("error during fiber shutdown", "error", err)
	}
	logger.Info("server gracefully stopped")
	return nil
}

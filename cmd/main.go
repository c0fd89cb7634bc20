package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/oksasatya/account-rest-service/config"
	"github.com/oksasatya/account-rest-service/internal/container"
	pginfra "github.com/oksasatya/account-rest-service/internal/infrastructure/postgres"
	"github.com/oksasatya/account-rest-service/internal/router"
	"github.com/oksasatya/account-rest-service/pkg/helpers"
	"github.com/oksasatya/account-rest-service/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()
	var backends container.Backends

	// Postgres, unless the in-memory store is selected
	if !cfg.UseMemoryStore() {
		pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), pginfra.PoolOptions{
			MaxConns:        cfg.DBMaxConns,
			MinConns:        cfg.DBMinConns,
			MaxConnLifetime: cfg.DBMaxConnLife,
		})
		if err != nil {
			logger.WithError(err).Fatal("failed to connect to postgres")
		}
		defer pool.Close()

		if cfg.AutoMigrate {
			if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
				logger.WithError(err).Fatal("migration failed")
			}
		}
		backends.PGPool = pool
	} else {
		logger.Warn("DB_DRIVER=memory; accounts are not persisted")
	}

	// Redis (rate limiting)
	rdb, err := helpers.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		helpers.LogError(logger, "redis unavailable; rate limiting disabled", err, nil)
	}
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
		backends.Redis = rdb
	}

	// RabbitMQ (account events)
	if cfg.RabbitMQURL != "" {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQAccountQueue)
		if err != nil {
			helpers.LogError(logger, "rabbitmq unavailable; account events disabled", err, nil)
		} else {
			defer pub.Close()
			backends.Rabbit = pub
		}
	}

	// Elasticsearch (account search)
	es, err := helpers.NewESClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass)
	if err != nil {
		helpers.LogError(logger, "elasticsearch client init failed; search disabled", err, nil)
	}
	backends.ES = es

	c := container.New(cfg, logger, backends)
	r := router.NewEngine(c)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Fatalf("server forced to shutdown: %v", err)
	}
	logger.Info("server exited properly")
}

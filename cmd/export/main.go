package main

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"

	"github.com/oksasatya/account-rest-service/config"
	"github.com/oksasatya/account-rest-service/internal/application"
	pginfra "github.com/oksasatya/account-rest-service/internal/infrastructure/postgres"
	"github.com/oksasatya/account-rest-service/pkg/helpers"
)

// export uploads a JSON snapshot of every account to GCS_BUCKET.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-export", cfg.Env)

	if cfg.GCSBucket == "" {
		logger.Fatal("GCS_BUCKET not configured")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), pginfra.PoolOptions{MaxConns: 2})
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to postgres")
	}
	defer pool.Close()

	svc := application.NewService(pginfra.NewAccountRepository(pool), nil, nil, logger)

	var buf bytes.Buffer
	n, err := svc.Export(ctx, &buf)
	if err != nil {
		logger.WithError(err).Fatal("export failed")
	}

	gcs, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
	if err != nil {
		logger.WithError(err).Fatal("failed to init GCS client")
	}
	defer func() { _ = gcs.Close() }()

	object := fmt.Sprintf("exports/accounts-%s.json", time.Now().UTC().Format("20060102T150405Z"))
	url, err := helpers.UploadObject(ctx, gcs, cfg.GCSBucket, object, "application/json", &buf)
	if err != nil {
		logger.WithError(err).Fatal("upload failed")
	}
	logger.WithField("accounts", n).WithField("url", url).Info("export uploaded")
}

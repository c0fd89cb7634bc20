package main

import (
	"context"
	"errors"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/account-rest-service/config"
	"github.com/oksasatya/account-rest-service/internal/domain/entity"
	pginfra "github.com/oksasatya/account-rest-service/internal/infrastructure/postgres"
	"github.com/oksasatya/account-rest-service/pkg/helpers"
)

func strPtr(s string) *string { return &s }

var demoAccounts = []entity.Account{
	{Name: "Demo User", Email: "demo@example.com", PhoneNumber: strPtr("+1-555-0100"), Address: strPtr("1 Demo Street")},
	{Name: "Second Demo", Email: "second@example.com"},
	{Name: "Disabled Demo", Email: "disabled@example.com", Disabled: true},
}

// seed creates the schema and inserts demo accounts that are not there yet.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)
	ctx := context.Background()

	if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		logger.WithError(err).Fatal("schema bootstrap failed")
	}

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), pginfra.PoolOptions{MaxConns: 2})
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to postgres")
	}
	defer pool.Close()

	repo := pginfra.NewAccountRepository(pool)
	for _, demo := range demoAccounts {
		a := demo
		if err := repo.Create(ctx, &a); err != nil {
			if errors.Is(err, entity.ErrDuplicateEmail) {
				logger.WithField("email", a.Email).Info("already seeded")
				continue
			}
			logger.WithError(err).WithField("email", a.Email).Fatal("failed to seed account")
		}
		logger.WithFields(logrus.Fields{"id": a.ID, "email": a.Email}).Info("seeded account")
	}
}

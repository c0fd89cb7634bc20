package container

import (
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/account-rest-service/config"
	"github.com/oksasatya/account-rest-service/internal/application"
	"github.com/oksasatya/account-rest-service/internal/domain/repository"
	"github.com/oksasatya/account-rest-service/internal/infrastructure/memory"
	"github.com/oksasatya/account-rest-service/internal/infrastructure/messaging"
	pginfra "github.com/oksasatya/account-rest-service/internal/infrastructure/postgres"
	"github.com/oksasatya/account-rest-service/internal/infrastructure/search"
	"github.com/oksasatya/account-rest-service/pkg/helpers"
)

// Backends are the already-connected infrastructure clients. Any of them may
// be nil; the matching feature is then disabled. A nil PGPool selects the
// in-memory account store.
type Backends struct {
	PGPool *pgxpool.Pool
	Redis  *redis.Client
	ES     *elasticsearch.Client
	Rabbit *helpers.RabbitPublisher
}

// Container holds the components shared by the router modules and executables.
type Container struct {
	Config *config.Config
	Logger *logrus.Logger
	Backends

	Accounts repository.AccountRepository
	Service  *application.Service
}

func New(cfg *config.Config, logger *logrus.Logger, b Backends) *Container {
	c := &Container{Config: cfg, Logger: logger, Backends: b}

	if b.PGPool != nil {
		c.Accounts = pginfra.NewAccountRepository(b.PGPool)
	} else {
		c.Accounts = memory.NewAccountRepository()
	}

	var events application.EventPublisher
	if b.Rabbit != nil {
		events = messaging.NewAccountEvents(b.Rabbit)
	}
	var index repository.AccountSearch
	if b.ES != nil {
		index = search.NewAccountIndex(b.ES, cfg.ESAccountsIndex)
	}

	c.Service = application.NewService(c.Accounts, events, index, logger)
	return c
}

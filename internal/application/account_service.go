package application

import (
	"context"
	"encoding/json"
	"errors"
	"expvar"
	"io"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/account-rest-service/internal/domain/entity"
	repo "github.com/oksasatya/account-rest-service/internal/domain/repository"
	"github.com/oksasatya/account-rest-service/pkg/validation"
)

// operations is published on /debug/vars.
var operations = expvar.NewMap("account_operations")

// EventPublisher delivers committed account changes to downstream consumers.
type EventPublisher interface {
	PublishAccountEvent(ctx context.Context, evt entity.AccountEvent) error
}

type Service struct {
	Repo   repo.AccountRepository
	Events EventPublisher
	Search repo.AccountSearch
	Logger *logrus.Logger
}

func NewService(repo repo.AccountRepository, events EventPublisher, search repo.AccountSearch, logger *logrus.Logger) *Service {
	return &Service{
		Repo:   repo,
		Events: events,
		Search: search,
		Logger: logger,
	}
}

// apply deserializes in onto a. Missing fields are reported before
// constraint violations; a is only touched when both checks pass.
// email is trimmed before any check.
func apply(a *entity.Account, in entity.AccountInput) error {
	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		in.Email = &email
	}
	var scratch entity.Account
	if err := scratch.Deserialize(in); err != nil {
		return err
	}
	if err := validation.Validate(in); err != nil {
		first := validation.Fields(err)[0]
		return &entity.ValidationError{
			Field:   first.Field,
			Message: first.Field + " " + first.Message,
			Details: validation.ToDetails(err),
		}
	}
	return a.Deserialize(in)
}

func (s *Service) Create(ctx context.Context, in entity.AccountInput) (*entity.Account, error) {
	a := &entity.Account{}
	if err := apply(a, in); err != nil {
		return nil, err
	}
	if err := s.Repo.Create(ctx, a); err != nil {
		return nil, err
	}
	operations.Add("created", 1)
	s.publish(ctx, entity.NewAccountEvent(entity.AccountCreated, a))
	return a, nil
}

func (s *Service) List(ctx context.Context) ([]*entity.Account, error) {
	accounts, err := s.Repo.All(ctx)
	if err != nil {
		return nil, err
	}
	if accounts == nil {
		accounts = []*entity.Account{}
	}
	return accounts, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*entity.Account, error) {
	a, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(id, err)
	}
	return a, nil
}

// Update fully replaces the mutable fields of account id. A validation
// failure leaves the stored record unchanged.
func (s *Service) Update(ctx context.Context, id int64, in entity.AccountInput) (*entity.Account, error) {
	a, err := s.Repo.Update(ctx, id, func(a *entity.Account) error {
		return apply(a, in)
	})
	if err != nil {
		return nil, notFound(id, err)
	}
	operations.Add("updated", 1)
	s.publish(ctx, entity.NewAccountEvent(entity.AccountUpdated, a))
	return a, nil
}

// Delete is idempotent: deleting an unknown id succeeds without side effects.
func (s *Service) Delete(ctx context.Context, id int64) error {
	removed, err := s.Repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		return nil
	}
	operations.Add("deleted", 1)
	s.publish(ctx, entity.NewAccountEvent(entity.AccountDeleted, &entity.Account{ID: id}))
	return nil
}

// SearchAccounts queries the account index. Without an index it finds nothing.
func (s *Service) SearchAccounts(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.Search == nil {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	return s.Search.Search(ctx, q, size)
}

// Export writes every account, serialized, as one JSON array.
func (s *Service) Export(ctx context.Context, w io.Writer) (int, error) {
	accounts, err := s.List(ctx)
	if err != nil {
		return 0, err
	}
	out := make([]map[string]any, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, a.Serialize())
	}
	if err := json.NewEncoder(w).Encode(out); err != nil {
		return 0, err
	}
	return len(out), nil
}

func (s *Service) publish(ctx context.Context, evt entity.AccountEvent) {
	if s.Events == nil {
		return
	}
	if err := s.Events.PublishAccountEvent(ctx, evt); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithFields(logrus.Fields{
			"event":      evt.Type,
			"account_id": evt.AccountID,
		}).Warn("publish account event failed")
	}
}

func notFound(id int64, err error) error {
	if errors.Is(err, entity.ErrNotFound) {
		return &entity.NotFoundError{ID: strconv.FormatInt(id, 10)}
	}
	return err
}

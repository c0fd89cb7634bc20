package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/oksasatya/account-rest-service/internal/domain/entity"
	"github.com/oksasatya/account-rest-service/internal/domain/repository"
)

// AccountRepository is a process-local account store with the same
// semantics as the postgres repository. Used for local runs and tests.
type AccountRepository struct {
	mu       sync.Mutex
	nextID   int64
	accounts map[int64]entity.Account
}

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{nextID: 1, accounts: make(map[int64]entity.Account)}
}

func clone(a entity.Account) *entity.Account {
	c := a
	if a.PhoneNumber != nil {
		p := *a.PhoneNumber
		c.PhoneNumber = &p
	}
	if a.Address != nil {
		addr := *a.Address
		c.Address = &addr
	}
	return &c
}

func (r *AccountRepository) emailTaken(email string, except int64) bool {
	for id, a := range r.accounts {
		if id != except && a.Email == email {
			return true
		}
	}
	return false
}

func (r *AccountRepository) Create(_ context.Context, a *entity.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.emailTaken(a.Email, 0) {
		return entity.ErrDuplicateEmail
	}
	a.ID = r.nextID
	r.nextID++
	if a.DateJoined.IsZero() {
		a.DateJoined = time.Now().UTC()
	}
	r.accounts[a.ID] = *clone(*a)
	return nil
}

func (r *AccountRepository) FindByID(_ context.Context, id int64) (*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.accounts[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return clone(a), nil
}

func (r *AccountRepository) FindByEmail(_ context.Context, email string) (*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range r.accounts {
		if a.Email == email {
			return clone(a), nil
		}
	}
	return nil, entity.ErrNotFound
}

func (r *AccountRepository) All(_ context.Context) ([]*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*entity.Account, 0, len(r.accounts))
	for _, a := range r.accounts {
		out = append(out, clone(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *AccountRepository) Update(_ context.Context, id int64, mutate func(a *entity.Account) error) (*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.accounts[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	working := clone(stored)
	if err := mutate(working); err != nil {
		return nil, err
	}
	if r.emailTaken(working.Email, id) {
		return nil, entity.ErrDuplicateEmail
	}
	working.ID = id
	r.accounts[id] = *clone(*working)
	return working, nil
}

func (r *AccountRepository) Delete(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[id]; !ok {
		return false, nil
	}
	delete(r.accounts, id)
	return true, nil
}

var _ repository.AccountRepository = (*AccountRepository)(nil)

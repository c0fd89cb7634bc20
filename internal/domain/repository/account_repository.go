package repository

import (
	"context"

	"github.com/oksasatya/account-rest-service/internal/domain/entity"
)

// AccountRepository defines the interface for account persistence.
// Lookups return entity.ErrNotFound when no row matches.
type AccountRepository interface {
	Create(ctx context.Context, a *entity.Account) error
	FindByID(ctx context.Context, id int64) (*entity.Account, error)
	FindByEmail(ctx context.Context, email string) (*entity.Account, error)
	All(ctx context.Context) ([]*entity.Account, error)
	// Update loads the row for update, applies mutate and persists the result in one
	// transaction. An error from mutate rolls back and is returned unchanged.
	Update(ctx context.Context, id int64, mutate func(a *entity.Account) error) (*entity.Account, error)
	// Delete removes the row if it exists; a missing row is not an error.
	// Delete reports whether a row was removed; a missing row is not an error.
	Delete(ctx context.Context, id int64) (bool, error)
}

// AccountSearch is the full-text search collaborator backed by the account index.
type AccountSearch interface {
	Search(ctx context.Context, q string, size int) ([]map[string]any, error)
}

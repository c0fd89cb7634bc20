package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/account-rest-service/internal/domain/entity"
	"github.com/oksasatya/account-rest-service/internal/domain/repository"
)

const uniqueViolation = "23505"

const selectAccount = `
	SELECT id, name, email, phone_number, address, disabled, date_joined
	FROM accounts`

type AccountRepository struct {
	pool *pgxpool.Pool
}

func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*entity.Account, error) {
	a := &entity.Account{}
	if err := row.Scan(&a.ID, &a.Name, &a.Email, &a.PhoneNumber, &a.Address, &a.Disabled, &a.DateJoined); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

// writeErr maps a unique violation on email to entity.ErrDuplicateEmail.
func writeErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return entity.ErrDuplicateEmail
	}
	return err
}

func (r *AccountRepository) Create(ctx context.Context, a *entity.Account) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE email = $1)`, a.Email).Scan(&exists); err != nil {
			return err
		}
		if exists {
			return entity.ErrDuplicateEmail
		}
		row := tx.QueryRow(ctx, `
			INSERT INTO accounts (name, email, phone_number, address, disabled)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, date_joined
		`, a.Name, a.Email, a.PhoneNumber, a.Address, a.Disabled)
		return writeErr(row.Scan(&a.ID, &a.DateJoined))
	})
}

func (r *AccountRepository) FindByID(ctx context.Context, id int64) (*entity.Account, error) {
	return scanAccount(r.pool.QueryRow(ctx, selectAccount+` WHERE id = $1`, id))
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*entity.Account, error) {
	return scanAccount(r.pool.QueryRow(ctx, selectAccount+` WHERE email = $1`, email))
}

func (r *AccountRepository) All(ctx context.Context) ([]*entity.Account, error) {
	rows, err := r.pool.Query(ctx, selectAccount+` ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*entity.Account, 0)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *AccountRepository) Update(ctx context.Context, id int64, mutate func(a *entity.Account) error) (*entity.Account, error) {
	var updated *entity.Account
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		a, err := scanAccount(tx.QueryRow(ctx, selectAccount+` WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return err
		}
		if err := mutate(a); err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
			UPDATE accounts
			SET name = $1, email = $2, phone_number = $3, address = $4, disabled = $5
			WHERE id = $6
		`, a.Name, a.Email, a.PhoneNumber, a.Address, a.Disabled, a.ID)
		if err != nil {
			return writeErr(err)
		}
		updated = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *AccountRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

var _ repository.AccountRepository = (*AccountRepository)(nil)

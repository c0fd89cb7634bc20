//go:build integration

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/oksasatya/account-rest-service/internal/domain/entity"
)

func newTestRepository(t *testing.T) *AccountRepository {
	t.Helper()
	ctx := context.Background()

	ctr, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("accounts_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ctr.Terminate(context.Background()) })

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	require.NoError(t, RunMigrations(dsn, "../../../db/migrations", logger))

	pool, err := NewPool(ctx, dsn, PoolOptions{MaxConns: 4})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return NewAccountRepository(pool)
}

func newAccount(name, email string) *entity.Account {
	return &entity.Account{Name: name, Email: email}
}

func TestAccountRepository_CRUD(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	all, err := repo.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	a := newAccount("John Doe", "john@example.com")
	require.NoError(t, repo.Create(ctx, a))
	assert.NotZero(t, a.ID)
	assert.False(t, a.DateJoined.IsZero())

	got, err := repo.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "John Doe", got.Name)
	assert.Nil(t, got.PhoneNumber)

	byEmail, err := repo.FindByEmail(ctx, "john@example.com")
	require.NoError(t, err)
	assert.Equal(t, a.ID, byEmail.ID)

	phone := "555-0100"
	updated, err := repo.Update(ctx, a.ID, func(acc *entity.Account) error {
		acc.Name = "John Smith"
		acc.PhoneNumber = &phone
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "John Smith", updated.Name)

	removed, err := repo.Delete(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.Delete(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	_, err = repo.FindByID(ctx, a.ID)
	assert.True(t, errors.Is(err, entity.ErrNotFound))
}

func TestAccountRepository_DuplicateEmail(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	first := newAccount("First", "dup@example.com")
	require.NoError(t, repo.Create(ctx, first))

	err := repo.Create(ctx, newAccount("Second", "dup@example.com"))
	assert.True(t, errors.Is(err, entity.ErrDuplicateEmail))

	other := newAccount("Other", "other@example.com")
	require.NoError(t, repo.Create(ctx, other))
	_, err = repo.Update(ctx, other.ID, func(acc *entity.Account) error {
		acc.Email = "dup@example.com"
		return nil
	})
	assert.True(t, errors.Is(err, entity.ErrDuplicateEmail))

	all, err := repo.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, first.ID, all[0].ID)
	assert.Equal(t, "other@example.com", all[1].Email)
}

func TestAccountRepository_UpdateRollsBackOnMutateError(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	a := newAccount("Kept", "kept@example.com")
	require.NoError(t, repo.Create(ctx, a))

	boom := errors.New("boom")
	_, err := repo.Update(ctx, a.ID, func(acc *entity.Account) error {
		acc.Name = "Changed"
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := repo.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kept", got.Name)

	_, err = repo.Update(ctx, a.ID+1000, func(*entity.Account) error { return nil })
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

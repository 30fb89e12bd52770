package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fsanano/stockroom/internal/model"
	"fsanano/stockroom/internal/repository"
)

func TestMapError(t *testing.T) {
	assert.NoError(t, mapError("op", nil))
	assert.ErrorIs(t, mapError("op", pgx.ErrNoRows), repository.ErrNotFound)

	dup := &pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"}
	err := mapError("create user", fmt.Errorf("exec: %w", dup))
	assert.ErrorIs(t, err, repository.ErrConflict)
	assert.Contains(t, err.Error(), "users_username_key")

	other := &pgconn.PgError{Code: "23514"}
	err = mapError("create item", other)
	assert.ErrorIs(t, err, repository.ErrStorage)
	assert.NotErrorIs(t, err, repository.ErrConflict)

	err = mapError("get item", errors.New("conn closed"))
	assert.ErrorIs(t, err, repository.ErrStorage)
}

func TestExpectOne(t *testing.T) {
	assert.ErrorIs(t, expectOne("op", pgconn.NewCommandTag("DELETE 0"), nil), repository.ErrNotFound)
	assert.NoError(t, expectOne("op", pgconn.NewCommandTag("DELETE 1"), nil))
	assert.ErrorIs(t, expectOne("op", pgconn.CommandTag{}, errors.New("boom")), repository.ErrStorage)
}

func setupTestDB(t *testing.T) *Store {
	t.Helper()
	_ = godotenv.Load("../../../.env")

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set")
	}

	ctx := context.Background()
	store, err := New(ctx, dbURL)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	require.NoError(t, store.Migrate(ctx))

	// Order matters due to FK
	for _, table := range []string{"items", "users"} {
		_, err := store.pool.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		require.NoError(t, err, "truncate %s", table)
	}
	return store
}

func newUser(name string) *model.User {
	return &model.User{
		ID:           uuid.NewString(),
		Username:     name,
		Email:        name + "@x.com",
		PasswordHash: "hash",
		CreatedAt:    time.Now().UTC(),
	}
}

func TestUsers_Integration(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	alice := newUser("alice")
	require.NoError(t, store.CreateUser(ctx, alice))

	dup := newUser("alice")
	assert.ErrorIs(t, store.CreateUser(ctx, dup), repository.ErrConflict)

	sameEmail := newUser("alice2")
	sameEmail.Email = alice.Email
	assert.ErrorIs(t, store.CreateUser(ctx, sameEmail), repository.ErrConflict)

	got, err := store.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)
	assert.Nil(t, got.UpdatedAt)

	require.NoError(t, store.UpdateUserEmail(ctx, alice.ID, "new@x.com", time.Now()))
	got, err = store.GetUserByEmail(ctx, "new@x.com")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)
	assert.NotNil(t, got.UpdatedAt)

	_, err = store.GetUserByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, store.UpdateUserEmail(ctx, uuid.NewString(), "z@x.com", time.Now()), repository.ErrNotFound)
}

func TestItems_Integration(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	alice := newUser("alice")
	require.NoError(t, store.CreateUser(ctx, alice))

	base := time.Now().UTC().Truncate(time.Microsecond)
	bolt := &model.Item{ID: uuid.NewString(), Name: "Bolt", Description: "M6", Quantity: 10, UserID: alice.ID, CreatedAt: base}
	widget := &model.Item{ID: uuid.NewString(), Name: "widget-7", Quantity: 2, UserID: alice.ID, CreatedAt: base.Add(time.Second)}
	pct := &model.Item{ID: uuid.NewString(), Name: "50% off", Quantity: 1, UserID: alice.ID, CreatedAt: base.Add(2 * time.Second)}
	for _, it := range []*model.Item{bolt, widget, pct} {
		require.NoError(t, store.CreateItem(ctx, it))
	}

	items, err := store.ListItemsByOwner(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, bolt.ID, items[0].ID)

	all, err := store.SearchItemsByOwner(ctx, alice.ID, "")
	require.NoError(t, err)
	assert.Equal(t, items, all)

	found, err := store.SearchItemsByOwner(ctx, alice.ID, "WIDGET")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, widget.ID, found[0].ID)

	found, err = store.SearchItemsByOwner(ctx, alice.ID, "%")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, pct.ID, found[0].ID)

	now := time.Now().UTC()
	require.NoError(t, store.UpdateItem(ctx, &model.Item{ID: bolt.ID, Name: "Bolt", Description: "M6", Quantity: 7, UpdatedAt: &now}))
	got, err := store.GetItem(ctx, bolt.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, got.Quantity)
	assert.Equal(t, alice.ID, got.UserID)
	assert.NotNil(t, got.UpdatedAt)

	require.NoError(t, store.DeleteItem(ctx, bolt.ID))
	assert.ErrorIs(t, store.DeleteItem(ctx, bolt.ID), repository.ErrNotFound)
	_, err = store.GetItem(ctx, bolt.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	empty, err := store.ListItemsByOwner(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.Empty(t, empty)
}

package storage

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spent/internal/common"
	"github.com/Veraticus/spent/internal/model"
)

func TestUsers(t *testing.T) {
	ctx := context.Background()

	t.Run("create and fetch", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		user := model.User{ID: uuid.New(), Name: "Alice", Email: "  Alice@Example.com "}
		require.NoError(t, store.CreateUser(ctx, &user))
		assert.Equal(t, "alice@example.com", user.Email)
		assert.False(t, user.CreatedAt.IsZero())

		byID, err := store.GetUser(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, user.ID, byID.ID)
		assert.Equal(t, "Alice", byID.Name)

		byEmail, err := store.GetUserByEmail(ctx, "ALICE@example.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, byEmail.ID)
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		first := model.User{ID: uuid.New(), Name: "One", Email: "same@example.com"}
		require.NoError(t, store.CreateUser(ctx, &first))

		second := model.User{ID: uuid.New(), Name: "Two", Email: "same@example.com"}
		err := store.CreateUser(ctx, &second)
		require.ErrorIs(t, err, common.ErrConflict)
	})

	t.Run("missing user", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		_, err := store.GetUser(ctx, uuid.New())
		require.ErrorIs(t, err, common.ErrNotFound)

		_, err = store.GetUserByEmail(ctx, "nobody@example.com")
		require.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("list", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		for _, email := range []string{"a@example.com", "b@example.com"} {
			u := model.User{ID: uuid.New(), Name: email, Email: email}
			require.NoError(t, store.CreateUser(ctx, &u))
		}

		users, err := store.ListUsers(ctx)
		require.NoError(t, err)
		assert.Len(t, users, 2)
	})

	t.Run("validation", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		require.ErrorIs(t, store.CreateUser(ctx, nil), ErrNilParameter)
		require.ErrorIs(t, store.CreateUser(ctx, &model.User{Name: "x", Email: "x@example.com"}), ErrNilUserID)
		require.ErrorIs(t, store.CreateUser(ctx, &model.User{ID: uuid.New(), Email: "x@example.com"}), ErrEmptyString)
	})
}

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagekeep/doclink/domain/access"
	"github.com/pagekeep/doclink/internal/domain"
)

func TestUsers_Create(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	u, err := env.users.Create(ctx, "alice")
	require.NoError(t, err)
	assert.NotZero(t, u.ID())
	assert.True(t, u.IsActive())
	assert.False(t, u.IsSuperuser())

	t.Run("duplicate username", func(t *testing.T) {
		_, err := env.users.Create(ctx, "alice")
		assert.True(t, errors.Is(err, domain.ErrConflict))
	})

	t.Run("system username reserved", func(t *testing.T) {
		_, err := env.users.Create(ctx, access.SystemUsername)
		assert.True(t, errors.Is(err, domain.ErrValidation))
	})

	t.Run("blank username", func(t *testing.T) {
		_, err := env.users.Create(ctx, "  ")
		assert.True(t, errors.Is(err, domain.ErrValidation))
	})
}

func TestUsers_ByUsername(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	created := env.member(t, "bob")

	u, err := env.users.ByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, created.ID(), u.ID())

	_, err = env.users.ByUsername(ctx, "nobody")
	assert.Error(t, err)
}

func TestUsers_SetFlags(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.member(t, "carol")

	promoted, err := env.users.SetSuperuser(ctx, u.ID(), true)
	require.NoError(t, err)
	assert.True(t, promoted.IsSuperuser())

	disabled, err := env.users.SetActive(ctx, u.ID(), false)
	require.NoError(t, err)
	assert.False(t, disabled.IsActive())

	// Setting the same value again is a no-op.
	again, err := env.users.SetActive(ctx, u.ID(), false)
	require.NoError(t, err)
	assert.False(t, again.IsActive())
}

func TestUsers_Delete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.member(t, "dave")

	_, err := env.authorizer.Grant(ctx, GrantParams{
		UserID:     u.ID(),
		Permission: access.PermissionDocumentView,
	})
	require.NoError(t, err)

	require.NoError(t, env.users.Delete(ctx, u.ID()))

	_, err = env.users.ByUsername(ctx, "dave")
	assert.Error(t, err)

	count, err := env.authorizer.Count(ctx, access.WithUserID(u.ID()))
	require.NoError(t, err)
	assert.Equal(t, int64(0), count, "entries go with the user")

	err = env.users.Delete(ctx, u.ID())
	assert.Error(t, err)
}

func TestUsers_EnsureAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.users.EnsureAdmin(ctx, "root")
	require.NoError(t, err)
	assert.True(t, first.IsSuperuser())
	assert.True(t, first.IsActive())

	t.Run("idempotent", func(t *testing.T) {
		second, err := env.users.EnsureAdmin(ctx, "root")
		require.NoError(t, err)
		assert.Equal(t, first.ID(), second.ID())
	})

	t.Run("promotes existing account", func(t *testing.T) {
		plain := env.member(t, "ops")
		promoted, err := env.users.EnsureAdmin(ctx, "ops")
		require.NoError(t, err)
		assert.Equal(t, plain.ID(), promoted.ID())
		assert.True(t, promoted.IsSuperuser())
	})
}

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

func TestAuthorizer_SuperuserBypassesChecks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.admin(t)

	err := env.authorizer.CheckAccess(ctx, admin, access.PermissionDocumentView,
		access.NewResource(access.TargetDocument, 42),
	)
	assert.NoError(t, err)
}

func TestAuthorizer_FailsClosed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t.Run("no grant", func(t *testing.T) {
		user := env.member(t, "nogrant")
		err := env.authorizer.CheckAccess(ctx, user, access.PermissionDocumentView, access.Resource{})
		assert.True(t, errors.Is(err, domain.ErrPermissionDenied))
	})

	t.Run("anonymous", func(t *testing.T) {
		err := env.authorizer.CheckAccess(ctx, access.User{}, access.PermissionDocumentView, access.Resource{})
		assert.True(t, errors.Is(err, domain.ErrPermissionDenied))
	})

	t.Run("inactive despite grant", func(t *testing.T) {
		user := env.member(t, "inactive")
		_, err := env.authorizer.Grant(ctx, GrantParams{
			UserID:     user.ID(),
			Permission: access.PermissionDocumentView,
		})
		require.NoError(t, err)

		disabled, err := env.users.SetActive(ctx, user.ID(), false)
		require.NoError(t, err)

		err = env.authorizer.CheckAccess(ctx, disabled, access.PermissionDocumentView, access.Resource{})
		assert.True(t, errors.Is(err, domain.ErrPermissionDenied))
	})
}

func TestAuthorizer_GlobalGrantCoversEveryObject(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.member(t, "alice")

	_, err := env.authorizer.Grant(ctx, GrantParams{
		UserID:     user.ID(),
		Permission: access.PermissionDocumentView,
	})
	require.NoError(t, err)

	assert.NoError(t, env.authorizer.CheckAccess(ctx, user, access.PermissionDocumentView,
		access.NewResource(access.TargetDocument, 1)))
	assert.NoError(t, env.authorizer.CheckAccess(ctx, user, access.PermissionDocumentView,
		access.NewResource(access.TargetDocument, 2)))

	err = env.authorizer.CheckAccess(ctx, user, access.PermissionDocumentEdit,
		access.NewResource(access.TargetDocument, 1))
	assert.True(t, errors.Is(err, domain.ErrPermissionDenied), "other permissions stay denied")
}

func TestAuthorizer_ScopedGrantCoversOneObject(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.member(t, "bob")

	_, err := env.authorizer.Grant(ctx, GrantParams{
		UserID:     user.ID(),
		Permission: access.PermissionSmartLinkEdit,
		ObjectKind: access.TargetSmartLink,
		ObjectID:   7,
	})
	require.NoError(t, err)

	assert.NoError(t, env.authorizer.CheckAccess(ctx, user, access.PermissionSmartLinkEdit,
		access.NewResource(access.TargetSmartLink, 7)))

	err = env.authorizer.CheckAccess(ctx, user, access.PermissionSmartLinkEdit,
		access.NewResource(access.TargetSmartLink, 8))
	assert.True(t, errors.Is(err, domain.ErrPermissionDenied))
}

func TestAuthorizer_GrantIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.member(t, "carol")

	params := GrantParams{UserID: user.ID(), Permission: access.PermissionEventView}
	first, err := env.authorizer.Grant(ctx, params)
	require.NoError(t, err)
	second, err := env.authorizer.Grant(ctx, params)
	require.NoError(t, err)
	assert.Equal(t, first.ID(), second.ID())

	count, err := env.authorizer.Count(ctx, access.WithUserID(user.ID()))
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestAuthorizer_RevokeTakesEffectImmediately(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.member(t, "dave")

	entry, err := env.authorizer.Grant(ctx, GrantParams{
		UserID:     user.ID(),
		Permission: access.PermissionDocumentView,
	})
	require.NoError(t, err)

	// Prime the decision cache with an allow.
	require.NoError(t, env.authorizer.CheckAccess(ctx, user, access.PermissionDocumentView,
		access.NewResource(access.TargetDocument, 1)))

	require.NoError(t, env.authorizer.Revoke(ctx, entry.ID()))

	err = env.authorizer.CheckAccess(ctx, user, access.PermissionDocumentView,
		access.NewResource(access.TargetDocument, 1))
	assert.True(t, errors.Is(err, domain.ErrPermissionDenied))
}

func TestAuthorizer_FilterAuthorized(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.member(t, "erin")

	for _, id := range []int64{2, 5} {
		_, err := env.authorizer.Grant(ctx, GrantParams{
			UserID:     user.ID(),
			Permission: access.PermissionSmartLinkView,
			ObjectKind: access.TargetSmartLink,
			ObjectID:   id,
		})
		require.NoError(t, err)
	}

	allowed, err := env.authorizer.FilterAuthorized(ctx, user,
		access.PermissionSmartLinkView, access.TargetSmartLink, []int64{1, 2, 3, 5},
	)
	require.NoError(t, err)
	assert.Equal(t, 2, allowed.Cardinality())
	assert.True(t, allowed.Contains(2))
	assert.True(t, allowed.Contains(5))

	t.Run("superuser sees everything", func(t *testing.T) {
		admin := env.admin(t)
		allowed, err := env.authorizer.FilterAuthorized(ctx, admin,
			access.PermissionSmartLinkView, access.TargetSmartLink, []int64{1, 2, 3},
		)
		require.NoError(t, err)
		assert.Equal(t, 3, allowed.Cardinality())
	})

	t.Run("inactive sees nothing", func(t *testing.T) {
		disabled, err := env.users.SetActive(ctx, user.ID(), false)
		require.NoError(t, err)
		allowed, err := env.authorizer.FilterAuthorized(ctx, disabled,
			access.PermissionSmartLinkView, access.TargetSmartLink, []int64{2, 5},
		)
		require.NoError(t, err)
		assert.Equal(t, 0, allowed.Cardinality())
	})
}

func TestAuthorizer_CachesDecisions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.member(t, "frank")

	_, err := env.authorizer.Grant(ctx, GrantParams{
		UserID:     user.ID(),
		Permission: access.PermissionDocumentView,
	})
	require.NoError(t, err)

	resource := access.NewResource(access.TargetDocument, 1)
	require.NoError(t, env.authorizer.CheckAccess(ctx, user, access.PermissionDocumentView, resource))
	require.NoError(t, env.authorizer.CheckAccess(ctx, user, access.PermissionDocumentView, resource))

	stats := env.authorizer.CacheMetrics()
	assert.GreaterOrEqual(t, stats.Hits, uint64(1))
}

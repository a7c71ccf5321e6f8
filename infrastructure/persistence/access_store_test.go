package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagekeep/doclink/domain/access"
	"github.com/pagekeep/doclink/internal/database"
)

func mustSaveUser(t *testing.T, db database.Database, username string) access.User {
	t.Helper()
	u, err := access.NewUser(username)
	require.NoError(t, err)
	saved, err := NewUserStore(db).Save(context.Background(), u)
	require.NoError(t, err)
	return saved
}

func TestUserStore_SaveAndGetByUsername(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	store := NewUserStore(db)

	saved := mustSaveUser(t, db, "alice")

	loaded, err := store.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, saved.ID(), loaded.ID())
	assert.True(t, loaded.IsActive())
	assert.False(t, loaded.IsSuperuser())

	_, err = store.GetByUsername(ctx, "nobody")
	assert.True(t, errors.Is(err, database.ErrNotFound))
}

func TestUserStore_UniqueUsername(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	store := NewUserStore(db)

	mustSaveUser(t, db, "alice")
	dup, err := access.NewUser("alice")
	require.NoError(t, err)
	_, err = store.Save(ctx, dup)
	assert.Error(t, err)
}

func TestUserStore_DeactivatedRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	store := NewUserStore(db)

	u := mustSaveUser(t, db, "alice")
	_, err := store.Save(ctx, u.WithActive(false))
	require.NoError(t, err)

	loaded, err := store.Get(ctx, u.ID())
	require.NoError(t, err)
	assert.False(t, loaded.IsActive())
}

func TestUserStore_Delete_RemovesEntries(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	userStore := NewUserStore(db)
	entryStore := NewAccessEntryStore(db)

	u := mustSaveUser(t, db, "alice")
	entry, err := access.NewGlobalEntry(u.ID(), access.PermissionDocumentView)
	require.NoError(t, err)
	_, err = entryStore.Save(ctx, entry)
	require.NoError(t, err)

	require.NoError(t, userStore.Delete(ctx, u.ID()))

	entries, err := entryStore.Find(ctx, access.WithUserID(u.ID()))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestAccessEntryStore_GlobalRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	store := NewAccessEntryStore(db)

	u := mustSaveUser(t, db, "alice")
	entry, err := access.NewGlobalEntry(u.ID(), access.PermissionSmartLinkView)
	require.NoError(t, err)
	saved, err := store.Save(ctx, entry)
	require.NoError(t, err)

	loaded, err := store.Get(ctx, saved.ID())
	require.NoError(t, err)
	assert.True(t, loaded.IsGlobal())
	assert.Equal(t, access.PermissionSmartLinkView, loaded.Permission())
}

func TestAccessEntryStore_ScopedRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	store := NewAccessEntryStore(db)

	u := mustSaveUser(t, db, "alice")
	entry, err := access.NewEntry(u.ID(), access.PermissionDocumentEdit, access.TargetDocument, 7)
	require.NoError(t, err)
	saved, err := store.Save(ctx, entry)
	require.NoError(t, err)

	loaded, err := store.Get(ctx, saved.ID())
	require.NoError(t, err)
	assert.False(t, loaded.IsGlobal())
	assert.Equal(t, access.TargetDocument, loaded.ObjectKind())
	assert.Equal(t, int64(7), loaded.ObjectID())
	assert.True(t, loaded.Covers(access.NewResource(access.TargetDocument, 7)))
	assert.False(t, loaded.Covers(access.NewResource(access.TargetDocument, 8)))
}

func TestAccessEntryStore_GlobalScopeFilter(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	store := NewAccessEntryStore(db)

	u := mustSaveUser(t, db, "alice")
	global, err := access.NewGlobalEntry(u.ID(), access.PermissionDocumentView)
	require.NoError(t, err)
	_, err = store.Save(ctx, global)
	require.NoError(t, err)
	scoped, err := access.NewEntry(u.ID(), access.PermissionDocumentView, access.TargetDocument, 3)
	require.NoError(t, err)
	_, err = store.Save(ctx, scoped)
	require.NoError(t, err)

	globals, err := store.Find(ctx, access.WithUserID(u.ID()), access.WithGlobalScope())
	require.NoError(t, err)
	require.Len(t, globals, 1)
	assert.True(t, globals[0].IsGlobal())

	all, err := store.Find(ctx, access.WithUserID(u.ID()))
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

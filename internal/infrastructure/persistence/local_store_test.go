package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupStore(t *testing.T) *LocalStore {
	t.Helper()
	db, err := Open(":memory:", zap.NewNop())
	require.NoError(t, err)
	return NewLocalStore(db)
}

func TestLocalStoreRoundTrip(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	_, found, err := store.Get(ctx, "ifconnect:user")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Put(ctx, "ifconnect:user", `{"id":1}`))

	value, found, err := store.Get(ctx, "ifconnect:user")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `{"id":1}`, value)
}

func TestLocalStorePutReplaces(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "k", "v1"))
	require.NoError(t, store.Put(ctx, "k", "v2"))

	value, found, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v2", value)
}

func TestLocalStoreDelete(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "k", "v"))
	require.NoError(t, store.Delete(ctx, "k"))
	require.NoError(t, store.Delete(ctx, "k")) // idempotent

	_, found, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
}

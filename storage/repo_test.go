package storage_test

import (
	"context"
	"testing"

	"github.com/jrsteele09/go-qa-web/storage"
	"github.com/stretchr/testify/require"
)

// runRepoSuite checks the behaviour every Repo implementation shares
func runRepoSuite(t *testing.T, newRepo func(t *testing.T) storage.Repo) {
	ctx := context.Background()

	t.Run("set then get", func(t *testing.T) {
		r := newRepo(t)
		require.NoError(t, r.SetItem(ctx, "browser-1", storage.KeyAccessToken, "a1"))

		v, err := r.GetItem(ctx, "browser-1", storage.KeyAccessToken)
		require.NoError(t, err)
		require.Equal(t, "a1", v)
	})

	t.Run("overwrite", func(t *testing.T) {
		r := newRepo(t)
		require.NoError(t, r.SetItem(ctx, "browser-1", storage.KeyAccessToken, "a1"))
		require.NoError(t, r.SetItem(ctx, "browser-1", storage.KeyAccessToken, "a2"))

		v, err := r.GetItem(ctx, "browser-1", storage.KeyAccessToken)
		require.NoError(t, err)
		require.Equal(t, "a2", v)
	})

	t.Run("missing key", func(t *testing.T) {
		r := newRepo(t)
		_, err := r.GetItem(ctx, "browser-1", storage.KeyRefreshToken)
		require.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("keys are independent", func(t *testing.T) {
		r := newRepo(t)
		require.NoError(t, r.SetItem(ctx, "browser-1", storage.KeyAccessToken, "a1"))
		require.NoError(t, r.SetItem(ctx, "browser-1", storage.KeyRefreshToken, "r1"))
		require.NoError(t, r.RemoveItem(ctx, "browser-1", storage.KeyAccessToken))

		v, err := r.GetItem(ctx, "browser-1", storage.KeyRefreshToken)
		require.NoError(t, err)
		require.Equal(t, "r1", v)
	})

	t.Run("namespaces are isolated", func(t *testing.T) {
		r := newRepo(t)
		require.NoError(t, r.SetItem(ctx, "browser-1", storage.KeyAccessToken, "a1"))

		_, err := r.GetItem(ctx, "browser-2", storage.KeyAccessToken)
		require.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("remove", func(t *testing.T) {
		r := newRepo(t)
		require.NoError(t, r.SetItem(ctx, "browser-1", storage.KeyAccessToken, "a1"))
		require.NoError(t, r.RemoveItem(ctx, "browser-1", storage.KeyAccessToken))
		require.NoError(t, r.RemoveItem(ctx, "browser-1", storage.KeyAccessToken))

		_, err := r.GetItem(ctx, "browser-1", storage.KeyAccessToken)
		require.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("namespace and key required", func(t *testing.T) {
		r := newRepo(t)
		require.Error(t, r.SetItem(ctx, "", storage.KeyAccessToken, "a1"))
		require.Error(t, r.SetItem(ctx, "browser-1", "", "a1"))
		_, err := r.GetItem(ctx, "", storage.KeyAccessToken)
		require.Error(t, err)
		require.Error(t, r.RemoveItem(ctx, "browser-1", ""))
	})
}

func TestScoped(t *testing.T) {
	ctx := context.Background()
	r := storage.NewInMemoryRepo()
	kv := storage.Scoped(r, "browser-1")

	require.NoError(t, kv.SetItem(ctx, storage.KeyRefreshToken, "r1"))

	v, err := r.GetItem(ctx, "browser-1", storage.KeyRefreshToken)
	require.NoError(t, err)
	require.Equal(t, "r1", v)

	require.NoError(t, kv.RemoveItem(ctx, storage.KeyRefreshToken))
	_, err = kv.GetItem(ctx, storage.KeyRefreshToken)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

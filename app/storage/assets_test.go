package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorePutDelete(t *testing.T) {
	root := t.TempDir()
	store := NewLocalStore(root)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "variants/v1/front.png", []byte("data")))

	got, err := os.ReadFile(filepath.Join(root, "variants", "v1", "front.png"))
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), got)

	require.NoError(t, store.Delete(ctx, "variants/v1/front.png"))
	_, err = os.Stat(filepath.Join(root, "variants", "v1", "front.png"))
	assert.True(t, os.IsNotExist(err))

	// deleting twice is fine
	assert.NoError(t, store.Delete(ctx, "variants/v1/front.png"))
}

func TestLocalStoreUnavailable(t *testing.T) {
	store := NewLocalStore(filepath.Join(t.TempDir(), "missing"))

	err := store.Put(context.Background(), "a.png", []byte("x"))
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, store.Ping(context.Background()), ErrUnavailable)
}

func TestLocalStoreRejectsTraversal(t *testing.T) {
	store := NewLocalStore(t.TempDir())

	err := store.Put(context.Background(), "../escape.png", []byte("x"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnavailable)
}

package images

import (
	"context"
	"os"
	"testing"

	"gameshelf/internal/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocalStore(t *testing.T) *LocalStore {
	t.Helper()
	return NewLocalStore(&config.Config{DataDir: t.TempDir()}, zerolog.Nop())
}

func TestLocalSaveAndDelete(t *testing.T) {
	store := newLocalStore(t)
	ctx := context.Background()

	path, err := store.Save(ctx, []byte("jpeg-bytes"), "u1", "")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))

	require.NoError(t, store.Delete(ctx, path))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestLocalSaveReplacesExisting(t *testing.T) {
	store := newLocalStore(t)
	ctx := context.Background()

	old, err := store.Save(ctx, []byte("old"), "u1", "")
	require.NoError(t, err)

	updated, err := store.Save(ctx, []byte("new"), "u1", old)
	require.NoError(t, err)
	assert.NotEqual(t, old, updated)

	_, err = os.Stat(old)
	assert.True(t, os.IsNotExist(err), "replaced blob is removed")

	data, err := os.ReadFile(updated)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestLocalDeleteMissingIsNoOp(t *testing.T) {
	store := newLocalStore(t)
	assert.NoError(t, store.Delete(context.Background(), "/nowhere/cover.jpg"))
}

// A stale existingPath must never abort the save of the new blob.
func TestLocalSaveWithStaleExistingPath(t *testing.T) {
	store := newLocalStore(t)

	path, err := store.Save(context.Background(), []byte("fresh"), "u1", "/nowhere/gone.jpg")
	require.NoError(t, err)
	assert.FileExists(t, path)
}

package objectstore

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorePutGetRoundTrip(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()

	key, err := store.Put(ctx, "punches/2026-07-30/42.jpg", "image/jpeg", []byte("selfie-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "punches/2026-07-30/42.jpg", key)

	data, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("selfie-bytes"), data)
}

func TestLocalStorePutCreatesIntermediateDirectories(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(dir)

	_, err := store.Put(context.Background(), "a/b/c/face.jpg", "image/jpeg", []byte("x"))
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "a", "b", "c", "face.jpg"))
	assert.NoError(t, err)
}

func TestLocalStoreStreamCopiesContent(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()

	_, err := store.Put(ctx, "img.jpg", "image/jpeg", []byte("streamed-bytes"))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, store.Stream(ctx, "img.jpg", &buf))
	assert.Equal(t, "streamed-bytes", buf.String())
}

func TestLocalStoreGetMissingKeyErrors(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	_, err := store.Get(context.Background(), "does/not/exist.jpg")
	assert.Error(t, err)
}

func TestLocalStoreDeleteRemovesObject(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()

	_, err := store.Put(ctx, "img.jpg", "image/jpeg", []byte("x"))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, "img.jpg"))

	_, err = store.Get(ctx, "img.jpg")
	assert.Error(t, err)
}

func TestLocalStoreDeleteMissingKeyIsNoop(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	err := store.Delete(context.Background(), "never-existed.jpg")
	assert.NoError(t, err)
}

package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *BoltStore {
	t.Helper()
	store, err := OpenBolt(filepath.Join(t.TempDir(), "blobs", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestUploadGetDelete(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	token, expiresAt, err := store.CreateUploadToken(ctx, time.Minute)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, expiresAt.After(time.Now()))

	id, err := store.Upload(ctx, token, "application/pdf", []byte("%PDF-1.7"))
	require.NoError(t, err)

	blob, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", blob.ContentType)
	assert.Equal(t, int64(8), blob.Size)
	assert.Equal(t, []byte("%PDF-1.7"), blob.Data)

	meta, err := store.Stat(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, meta.ID)

	require.NoError(t, store.Delete(ctx, id))
	_, err = store.Get(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, id), ErrNotFound)
}

func TestUploadTokenIsSingleUse(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	token, _, err := store.CreateUploadToken(ctx, time.Minute)
	require.NoError(t, err)

	_, err = store.Upload(ctx, token, "text/plain", []byte("one"))
	require.NoError(t, err)

	_, err = store.Upload(ctx, token, "text/plain", []byte("two"))
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = store.Upload(ctx, "not-a-token", "text/plain", []byte("three"))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExpiredUploadToken(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	now := time.Now()
	store.now = func() time.Time { return now }

	token, _, err := store.CreateUploadToken(ctx, time.Minute)
	require.NoError(t, err)
	stale, _, err := store.CreateUploadToken(ctx, time.Minute)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)

	_, err = store.Upload(ctx, token, "text/plain", []byte("late"))
	assert.ErrorIs(t, err, ErrTokenExpired)

	// expired token was consumed, the stale one is left for the purge
	purged, err := store.PurgeExpiredTokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, purged)

	_, err = store.Upload(ctx, stale, "text/plain", []byte("late"))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

package services_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/localnerve/storefront-data/internal/services"
	"github.com/localnerve/storefront-data/internal/storage"
	"github.com/localnerve/storefront-data/internal/testutil"
	"github.com/localnerve/storefront-data/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uploadBlob(t *testing.T, store storage.BlobStore, body string) string {
	t.Helper()
	ctx := context.Background()
	opts := services.StorageOptions{PublicBaseURL: "http://localhost:3000", UploadURLTTL: time.Minute}

	uploadURL, err := services.GenerateUploadURL(ctx, store, opts)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(uploadURL, "http://localhost:3000/api/storage/upload/"))

	id, err := services.UploadBlob(ctx, store, uploadURL[strings.LastIndex(uploadURL, "/")+1:], "application/pdf", []byte(body))
	require.NoError(t, err)
	return id
}

func TestRemoveDigitalFileDeletesBlob(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	store := testutil.NewStore(t)
	f := newFixture(t, db)

	storageID := uploadBlob(t, store, "planner")
	fileID, err := services.CreateDigitalFile(ctx, db, services.DigitalFileInput{
		ProductID: f.digitalID, Name: "Planner.pdf", StorageID: &storageID, FileSize: 7,
	})
	require.NoError(t, err)

	require.NoError(t, services.RemoveDigitalFile(ctx, db, store, fileID))

	_, err = services.GetDigitalFileByID(ctx, db, fileID)
	assert.ErrorIs(t, err, services.ErrNotFound)
	_, err = store.Get(ctx, storageID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	pending, err := services.ListBlobCleanups(ctx, db)
	require.NoError(t, err)
	assert.Empty(t, pending)

	assert.ErrorIs(t, services.RemoveDigitalFile(ctx, db, store, fileID), services.ErrNotFound)
}

func TestDigitalFilesOnlyOnDigitalProducts(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	f := newFixture(t, db)

	_, err := services.CreateDigitalFile(ctx, db, services.DigitalFileInput{ProductID: f.physicalID, Name: "x.pdf"})
	assert.ErrorIs(t, err, services.ErrInvalidArgument)

	_, err = services.CreateDigitalFile(ctx, db, services.DigitalFileInput{ProductID: "missing", Name: "x.pdf"})
	assert.ErrorIs(t, err, services.ErrNotFound)

	_, err = services.CreateDigitalFile(ctx, db, services.DigitalFileInput{ProductID: f.digitalID, Name: "x.pdf", FileSize: -1})
	assert.ErrorIs(t, err, services.ErrInvalidArgument)
}

func TestFailedBlobDeletesAreSwept(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	store := testutil.NewFlakyStore(testutil.NewStore(t))
	f := newFixture(t, db)

	first := uploadBlob(t, store, "v1")
	second := uploadBlob(t, store, "v2")
	fileID, err := services.CreateDigitalFile(ctx, db, services.DigitalFileInput{
		ProductID: f.digitalID, Name: "Planner.pdf", StorageID: &first, FileSize: 2,
	})
	require.NoError(t, err)

	// replacing the blob queues the old one
	require.NoError(t, services.UpdateDigitalFile(ctx, db, fileID, services.DigitalFilePatch{StorageID: types.Some(second)}))

	store.SetFailing(true)
	require.NoError(t, services.RemoveDigitalFile(ctx, db, store, fileID))

	_, err = services.GetDigitalFileByID(ctx, db, fileID)
	assert.ErrorIs(t, err, services.ErrNotFound)

	pending, err := services.ListBlobCleanups(ctx, db)
	require.NoError(t, err)
	require.Len(t, pending, 2)

	result, err := services.SweepBlobCleanups(ctx, db, store)
	require.NoError(t, err)
	assert.Equal(t, services.CleanupResult{Deleted: 0, Failed: 2, Pending: 2}, result)

	pending, err = services.ListBlobCleanups(ctx, db)
	require.NoError(t, err)
	for _, item := range pending {
		assert.GreaterOrEqual(t, item.Attempts, 1)
		assert.Contains(t, item.LastError, testutil.ErrStoreDown.Error())
	}

	store.SetFailing(false)
	result, err = services.SweepBlobCleanups(ctx, db, store)
	require.NoError(t, err)
	assert.Equal(t, services.CleanupResult{Deleted: 2, Failed: 0, Pending: 0}, result)

	for _, id := range []string{first, second} {
		_, err := store.Get(ctx, id)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	}
}

func TestReattachedBlobIsNotSwept(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	store := testutil.NewStore(t)
	f := newFixture(t, db)

	x := uploadBlob(t, store, "x")
	y := uploadBlob(t, store, "y")
	fileID, err := services.CreateDigitalFile(ctx, db, services.DigitalFileInput{
		ProductID: f.digitalID, Name: "Planner.pdf", StorageID: &x, FileSize: 1,
	})
	require.NoError(t, err)

	t.Run("swap back on update", func(t *testing.T) {
		require.NoError(t, services.UpdateDigitalFile(ctx, db, fileID, services.DigitalFilePatch{StorageID: types.Some(y)}))
		require.NoError(t, services.UpdateDigitalFile(ctx, db, fileID, services.DigitalFilePatch{StorageID: types.Some(x)}))

		pending, err := services.ListBlobCleanups(ctx, db)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, y, pending[0].StorageID)

		result, err := services.SweepBlobCleanups(ctx, db, store)
		require.NoError(t, err)
		assert.Equal(t, services.CleanupResult{Deleted: 1, Failed: 0, Pending: 0}, result)

		_, err = store.Get(ctx, x)
		assert.NoError(t, err)
		file, err := services.GetDigitalFileByID(ctx, db, fileID)
		require.NoError(t, err)
		require.NotNil(t, file.StorageID)
		assert.Equal(t, x, *file.StorageID)
	})

	t.Run("attach on create", func(t *testing.T) {
		z := uploadBlob(t, store, "z")
		other, err := services.CreateDigitalFile(ctx, db, services.DigitalFileInput{
			ProductID: f.digitalID, Name: "Extra.pdf", StorageID: &z, FileSize: 1,
		})
		require.NoError(t, err)
		require.NoError(t, services.UpdateDigitalFile(ctx, db, other, services.DigitalFilePatch{StorageID: types.Null[string]()}))

		pending, err := services.ListBlobCleanups(ctx, db)
		require.NoError(t, err)
		require.Len(t, pending, 1)

		_, err = services.CreateDigitalFile(ctx, db, services.DigitalFileInput{
			ProductID: f.digitalID, Name: "Extra v2.pdf", StorageID: &z, FileSize: 1,
		})
		require.NoError(t, err)

		pending, err = services.ListBlobCleanups(ctx, db)
		require.NoError(t, err)
		assert.Empty(t, pending)

		result, err := services.SweepBlobCleanups(ctx, db, store)
		require.NoError(t, err)
		assert.Equal(t, services.CleanupResult{}, result)
		_, err = store.Get(ctx, z)
		assert.NoError(t, err)
	})
}

package jobs_test

import (
	"context"
	"testing"
	"time"

	"github.com/localnerve/storefront-data/internal/jobs"
	"github.com/localnerve/storefront-data/internal/models"
	"github.com/localnerve/storefront-data/internal/services"
	"github.com/localnerve/storefront-data/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsBadSchedule(t *testing.T) {
	db := testutil.NewDB(t)
	store := testutil.NewStore(t)

	_, err := jobs.New(db, store, "every now and then")
	assert.Error(t, err)

	s, err := jobs.New(db, store, "*/30 * * * * *")
	require.NoError(t, err)
	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}

func TestMaintenanceJobs(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	store := testutil.NewStore(t)

	s, err := jobs.New(db, store, "@every 1h")
	require.NoError(t, err)

	t.Run("sweep removes missing blobs from the queue", func(t *testing.T) {
		require.NoError(t, db.Create(&models.BlobCleanup{StorageID: "gone"}).Error)
		require.NoError(t, s.SweepBlobs(ctx))

		var count int64
		require.NoError(t, db.Model(&models.BlobCleanup{}).Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("download links are purged after the retention window", func(t *testing.T) {
		now := time.Now().UTC()
		require.NoError(t, db.Create(&models.DownloadLink{
			OrderID: "order-1", FileID: "file-1", Token: "stale", ExpiresAt: now.Add(-jobs.ExpiredLinkRetention - time.Hour), DownloadsRemaining: 1,
		}).Error)
		require.NoError(t, db.Create(&models.DownloadLink{
			OrderID: "order-1", FileID: "file-2", Token: "recent", ExpiresAt: now.Add(-time.Hour), DownloadsRemaining: 1,
		}).Error)
		require.NoError(t, db.Create(&models.DownloadLink{
			OrderID: "order-1", FileID: "file-3", Token: "fresh", ExpiresAt: now.Add(time.Hour), DownloadsRemaining: 1,
		}).Error)

		require.NoError(t, s.PurgeDownloadLinks(ctx))

		var tokens []string
		require.NoError(t, db.Model(&models.DownloadLink{}).Order("token").Pluck("token", &tokens).Error)
		assert.Equal(t, []string{"fresh", "recent"}, tokens)

		opts := services.StorageOptions{PublicBaseURL: "http://localhost:3000", UploadURLTTL: time.Minute}
		_, err := services.RedeemDownloadLink(ctx, db, store, opts, "recent")
		assert.ErrorIs(t, err, services.ErrExpired)
		assert.EqualError(t, err, "Download link expired")

		_, err = services.RedeemDownloadLink(ctx, db, store, opts, "stale")
		assert.ErrorIs(t, err, services.ErrNotFound)
	})

	t.Run("upload tokens", func(t *testing.T) {
		_, _, err := store.CreateUploadToken(ctx, -time.Minute)
		require.NoError(t, err)
		require.NoError(t, s.PurgeUploadTokens(ctx))

		n, err := store.PurgeExpiredTokens(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

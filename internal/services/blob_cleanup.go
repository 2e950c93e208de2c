package services

import (
	"context"
	"errors"

	"github.com/localnerve/storefront-data/internal/metrics"
	"github.com/localnerve/storefront-data/internal/models"
	"github.com/localnerve/storefront-data/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// cleanupBatchSize caps how many queued blobs one sweep attempts
const cleanupBatchSize = 100

// CleanupResult summarizes a sweep of the blob cleanup queue
type CleanupResult struct {
	Deleted int `json:"deleted"`
	Failed  int `json:"failed"`
	Pending int `json:"pending"`
}

// queueBlobCleanup records storageID for deletion within tx. Queuing the same id twice is a no-op.
func queueBlobCleanup(tx *gorm.DB, storageID string) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "storage_id"}},
		DoNothing: true,
	}).Create(&models.BlobCleanup{StorageID: storageID}).Error
}

// unqueueBlobCleanup drops a pending deletion for a blob that is attached again
func unqueueBlobCleanup(tx *gorm.DB, storageID string) error {
	return tx.Where("storage_id = ?", storageID).Delete(&models.BlobCleanup{}).Error
}

// deleteQueuedBlob tries to delete one queued blob. A missing blob counts as deleted.
// On failure the queue row keeps the attempt count and error for the next sweep.
func deleteQueuedBlob(ctx context.Context, db *gorm.DB, store storage.BlobStore, storageID string) error {
	err := store.Delete(ctx, storageID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		metrics.BlobCleanups.WithLabelValues("failed").Inc()
		updateErr := db.WithContext(ctx).Model(&models.BlobCleanup{}).
			Where("storage_id = ?", storageID).
			Updates(map[string]interface{}{
				"attempts":   gorm.Expr("attempts + 1"),
				"last_error": err.Error(),
			}).Error
		if updateErr != nil {
			zap.S().Errorf("Failed to record blob cleanup failure for %s: %v", storageID, updateErr)
		}
		return err
	}

	if errors.Is(err, storage.ErrNotFound) {
		metrics.BlobCleanups.WithLabelValues("missing").Inc()
	} else {
		metrics.BlobCleanups.WithLabelValues("deleted").Inc()
	}
	return db.WithContext(ctx).Where("storage_id = ?", storageID).Delete(&models.BlobCleanup{}).Error
}

// ListBlobCleanups returns the queued blobs, oldest first
func ListBlobCleanups(ctx context.Context, db *gorm.DB) ([]models.BlobCleanup, error) {
	pending := []models.BlobCleanup{}
	err := quiet(ctx, db).Order("created_at ASC").Find(&pending).Error
	return pending, err
}

// SweepBlobCleanups retries deletion of queued blobs
func SweepBlobCleanups(ctx context.Context, db *gorm.DB, store storage.BlobStore) (CleanupResult, error) {
	var result CleanupResult

	var queued []models.BlobCleanup
	if err := quiet(ctx, db).Order("updated_at ASC").Limit(cleanupBatchSize).Find(&queued).Error; err != nil {
		return result, err
	}

	for _, item := range queued {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := deleteQueuedBlob(ctx, db, store, item.StorageID); err != nil {
			result.Failed++
			zap.S().Warnf("Blob %s still not deleted after %d attempts: %v", item.StorageID, item.Attempts+1, err)
			continue
		}
		result.Deleted++
	}

	var pending int64
	if err := db.WithContext(ctx).Model(&models.BlobCleanup{}).Count(&pending).Error; err != nil {
		return result, err
	}
	result.Pending = int(pending)
	metrics.BlobCleanupPending.Set(float64(pending))

	return result, nil
}

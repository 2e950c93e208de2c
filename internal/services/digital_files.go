// digital_files.go
//
// Storefront data service for catalog, orders and digital delivery
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of storefront-data.
// storefront-data is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// storefront-data is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with storefront-data.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package services

import (
	"context"

	"github.com/localnerve/storefront-data/internal/models"
	"github.com/localnerve/storefront-data/internal/storage"
	"github.com/localnerve/storefront-data/internal/types"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DigitalFileInput is the payload for creating a digital file.
// StorageID may be nil for a placeholder whose blob is uploaded later.
type DigitalFileInput struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	StorageID *string `json:"storageId"`
	FileSize  int64   `json:"fileSize"`
}

// DigitalFilePatch is a partial digital file update. A null storageId detaches the blob.
type DigitalFilePatch struct {
	Name      types.Optional[string] `json:"name"`
	StorageID types.Optional[string] `json:"storageId"`
	FileSize  types.Optional[int64]  `json:"fileSize"`
}

// ListDigitalFilesByProduct returns the files of a product
func ListDigitalFilesByProduct(ctx context.Context, db *gorm.DB, productID string) ([]models.DigitalFile, error) {
	files := []models.DigitalFile{}
	err := quiet(ctx, db).Where("product_id = ?", productID).Order("name ASC").Find(&files).Error
	return files, err
}

// GetDigitalFileByID finds a digital file by id
func GetDigitalFileByID(ctx context.Context, db *gorm.DB, id string) (*models.DigitalFile, error) {
	var file models.DigitalFile
	if err := quiet(ctx, db).Where("id = ?", id).First(&file).Error; err != nil {
		return nil, lookupError(err, "Digital file")
	}
	return &file, nil
}

// CreateDigitalFile attaches a file to a digital product
func CreateDigitalFile(ctx context.Context, db *gorm.DB, input DigitalFileInput) (string, error) {
	if err := requireText("name", input.Name); err != nil {
		return "", err
	}
	if input.FileSize < 0 {
		return "", invalid("fileSize must not be negative")
	}

	file := models.DigitalFile{
		ProductID: input.ProductID,
		Name:      input.Name,
		StorageID: input.StorageID,
		FileSize:  input.FileSize,
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.Select("id", "type").Where("id = ?", input.ProductID).First(&product).Error; err != nil {
			return lookupError(err, "Product")
		}
		if product.Type != models.ProductTypeDigital {
			return invalid("Can only add digital files to digital products")
		}
		if input.StorageID != nil {
			if err := unqueueBlobCleanup(tx, *input.StorageID); err != nil {
				return err
			}
		}
		return tx.Create(&file).Error
	})
	if err != nil {
		return "", err
	}
	return file.ID, nil
}

// UpdateDigitalFile applies a partial update. A replaced or detached blob is queued for deletion.
func UpdateDigitalFile(ctx context.Context, db *gorm.DB, id string, patch DigitalFilePatch) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var file models.DigitalFile
		if err := forUpdate(tx).Where("id = ?", id).First(&file).Error; err != nil {
			return lookupError(err, "Digital file")
		}

		updates := map[string]interface{}{}
		if patch.Name.Set {
			if patch.Name.Null || requireText("name", patch.Name.Value) != nil {
				return invalid("name is required")
			}
			updates["name"] = patch.Name.Value
		}
		if patch.FileSize.Set {
			if patch.FileSize.Null || patch.FileSize.Value < 0 {
				return invalid("fileSize must not be negative")
			}
			updates["file_size"] = patch.FileSize.Value
		}
		if patch.StorageID.Set {
			next := patch.StorageID.Ptr()
			if file.StorageID != nil && (next == nil || *next != *file.StorageID) {
				if err := queueBlobCleanup(tx, *file.StorageID); err != nil {
					return err
				}
			}
			if next != nil {
				if err := unqueueBlobCleanup(tx, *next); err != nil {
					return err
				}
			}
			updates["storage_id"] = next
		}

		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&models.DigitalFile{}).Where("id = ?", id).Updates(updates).Error
	})
}

// RemoveDigitalFile deletes the record and then its blob.
// The record delete and the cleanup entry commit together; the blob delete runs
// after commit and a failure leaves the entry for the cleanup sweep.
func RemoveDigitalFile(ctx context.Context, db *gorm.DB, store storage.BlobStore, id string) error {
	var storageID *string
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var file models.DigitalFile
		if err := forUpdate(tx).Where("id = ?", id).First(&file).Error; err != nil {
			return lookupError(err, "Digital file")
		}
		if err := tx.Where("file_id = ?", id).Delete(&models.DownloadLink{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&file).Error; err != nil {
			return err
		}
		storageID = file.StorageID
		if storageID == nil {
			return nil
		}
		return queueBlobCleanup(tx, *storageID)
	})
	if err != nil || storageID == nil {
		return err
	}

	if err := deleteQueuedBlob(ctx, db, store, *storageID); err != nil {
		zap.S().Errorf("Failed to delete blob %s of digital file %s, queued for cleanup: %v", *storageID, id, err)
	}
	return nil
}

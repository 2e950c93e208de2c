// download_links.go
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
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/localnerve/storefront-data/internal/metrics"
	"github.com/localnerve/storefront-data/internal/models"
	"github.com/localnerve/storefront-data/internal/storage"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DownloadOptions sets the lifetime and budget of issued links
type DownloadOptions struct {
	TTL   time.Duration
	Limit int
}

// IssueDownloadLinks creates the missing links for a paid order's digital files
func IssueDownloadLinks(ctx context.Context, db *gorm.DB, opts DownloadOptions, orderID string) ([]models.DownloadLink, error) {
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Where("id = ?", orderID).First(&order).Error; err != nil {
			return lookupError(err, "Order")
		}
		if order.Status == models.OrderStatusPendingPayment {
			return newError(ErrConflict, "Order %s has not been paid", order.OrderNumber)
		}
		return issueDownloadLinksTx(tx, &order, opts)
	})
	if err != nil {
		return nil, err
	}
	return ListDownloadLinksByOrder(ctx, db, orderID)
}

// issueDownloadLinksTx creates one link per file of each digital item. Existing links are kept.
func issueDownloadLinksTx(tx *gorm.DB, order *models.Order, opts DownloadOptions) error {
	var productIDs []string
	for _, item := range order.Items {
		if item.Type == models.ProductTypeDigital {
			productIDs = append(productIDs, item.ProductID)
		}
	}
	if len(productIDs) == 0 {
		return nil
	}

	var files []models.DigitalFile
	if err := tx.Where("product_id IN ?", productIDs).Find(&files).Error; err != nil {
		return err
	}

	expiresAt := time.Now().UTC().Add(opts.TTL)
	for _, file := range files {
		link := models.DownloadLink{
			OrderID:            order.ID,
			FileID:             file.ID,
			Token:              uuid.NewString(),
			ExpiresAt:          expiresAt,
			DownloadsRemaining: opts.Limit,
		}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}, {Name: "file_id"}},
			DoNothing: true,
		}).Create(&link).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// ListDownloadLinksByOrder returns the links issued for an order
func ListDownloadLinksByOrder(ctx context.Context, db *gorm.DB, orderID string) ([]models.DownloadLink, error) {
	links := []models.DownloadLink{}
	err := quiet(ctx, db).Where("order_id = ?", orderID).Order("created_at ASC").Order("file_id ASC").Find(&links).Error
	return links, err
}

// RedeemDownloadLink spends one download of token and returns the file URL
func RedeemDownloadLink(ctx context.Context, db *gorm.DB, store storage.BlobStore, opts StorageOptions, token string) (string, error) {
	url, err := redeemDownloadLink(ctx, db, store, opts, token)
	result := "ok"
	switch {
	case errors.Is(err, ErrExpired):
		result = "expired"
	case errors.Is(err, ErrNotFound):
		result = "not_found"
	case err != nil:
		result = "error"
	}
	metrics.DownloadsRedeemed.WithLabelValues(result).Inc()
	return url, err
}

func redeemDownloadLink(ctx context.Context, db *gorm.DB, store storage.BlobStore, opts StorageOptions, token string) (string, error) {
	var link models.DownloadLink
	if err := quiet(ctx, db).Where("token = ?", token).First(&link).Error; err != nil {
		return "", lookupError(err, "Download link")
	}

	now := time.Now().UTC()
	if link.Expired(now) {
		return "", newError(ErrExpired, "Download link expired")
	}
	if link.DownloadsRemaining <= 0 {
		return "", newError(ErrExpired, "Download limit reached")
	}

	var file models.DigitalFile
	if err := quiet(ctx, db).Where("id = ?", link.FileID).First(&file).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", newError(ErrNotFound, "File not available")
		}
		return "", err
	}
	if file.StorageID == nil {
		return "", newError(ErrNotFound, "File not available")
	}
	url, err := GetFileURL(ctx, store, opts, *file.StorageID)
	if err != nil {
		return "", err
	}
	if url == nil {
		return "", newError(ErrNotFound, "File not available")
	}

	result := db.WithContext(ctx).Model(&models.DownloadLink{}).
		Where("id = ? AND downloads_remaining > 0 AND expires_at > ?", link.ID, now).
		Update("downloads_remaining", gorm.Expr("downloads_remaining - 1"))
	if result.Error != nil {
		return "", result.Error
	}
	if result.RowsAffected == 0 {
		return "", newError(ErrExpired, "Download limit reached")
	}
	return *url, nil
}

// PurgeExpiredDownloadLinks deletes links that expired before cutoff
func PurgeExpiredDownloadLinks(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	result := db.WithContext(ctx).Where("expires_at < ?", cutoff).Delete(&models.DownloadLink{})
	return result.RowsAffected, result.Error
}

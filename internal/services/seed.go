// seed.go
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
	"encoding/json"
	"errors"
	"fmt"

	"github.com/localnerve/storefront-data/data"
	"github.com/localnerve/storefront-data/internal/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// SeedCatalog is the demo data set, keyed by slugs and SKUs
type SeedCatalog struct {
	Categories []struct {
		Name  string  `json:"name"`
		Slug  string  `json:"slug"`
		Order int     `json:"order"`
		Image *string `json:"image"`
	} `json:"categories"`
	Collections []struct {
		Name        string  `json:"name"`
		Slug        string  `json:"slug"`
		Description *string `json:"description"`
		Image       *string `json:"image"`
		IsActive    bool    `json:"isActive"`
	} `json:"collections"`
	Products []struct {
		Name            string             `json:"name"`
		Slug            string             `json:"slug"`
		Description     string             `json:"description"`
		BasePrice       decimal.Decimal    `json:"basePrice"`
		Type            models.ProductType `json:"type"`
		PreparationDays *int               `json:"preparationDays"`
		Images          []string           `json:"images"`
		Category        string             `json:"category"`
		Collections     []string           `json:"collections"`
	} `json:"products"`
	Variants []struct {
		Product    string                   `json:"product"`
		Name       string                   `json:"name"`
		Attributes models.VariantAttributes `json:"attributes"`
		Price      decimal.NullDecimal      `json:"price"`
		Stock      int                      `json:"stock"`
		SKU        string                   `json:"sku"`
	} `json:"variants"`
	DigitalFiles []struct {
		Product  string `json:"product"`
		Name     string `json:"name"`
		FileSize int64  `json:"fileSize"`
	} `json:"digitalFiles"`
}

// SeedResult counts the records a seed run created
type SeedResult struct {
	Settings     int `json:"settings"`
	Categories   int `json:"categories"`
	Collections  int `json:"collections"`
	Products     int `json:"products"`
	Variants     int `json:"variants"`
	DigitalFiles int `json:"digitalFiles"`
}

// Total is the number of records created
func (r SeedResult) Total() int {
	return r.Settings + r.Categories + r.Collections + r.Products + r.Variants + r.DigitalFiles
}

// LoadSeedCatalog parses the embedded demo catalog
func LoadSeedCatalog() (*SeedCatalog, error) {
	var catalog SeedCatalog
	if err := json.Unmarshal(data.SeedCatalog, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse seed catalog: %w", err)
	}
	return &catalog, nil
}

// SeedAll populates the demo catalog. Every record is looked up by its natural key
// first, so running it again creates nothing.
func SeedAll(ctx context.Context, db *gorm.DB, defaults StoreDefaults) (SeedResult, error) {
	var result SeedResult

	catalog, err := LoadSeedCatalog()
	if err != nil {
		return result, err
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result = SeedResult{}

		found, err := exists(tx, &models.StoreSettings{}, "id = ?", models.StoreSettingsID)
		if err != nil {
			return err
		}
		if !found {
			if err := tx.Create(&models.StoreSettings{
				ID:                    models.StoreSettingsID,
				ShippingRate:          defaults.ShippingRate,
				FreeShippingThreshold: defaults.FreeShippingThreshold,
				ContactEmail:          defaults.ContactEmail,
				LastOrderNumber:       defaults.LastOrderNumber,
			}).Error; err != nil {
				return err
			}
			result.Settings++
		}

		categoryIDs := map[string]string{}
		for _, c := range catalog.Categories {
			category := models.Category{Name: c.Name, Slug: c.Slug, Order: c.Order, Image: c.Image}
			created, err := firstOrCreate(tx, &category, "slug = ?", c.Slug)
			if err != nil {
				return err
			}
			categoryIDs[c.Slug] = category.ID
			if created {
				result.Categories++
			}
		}

		collectionIDs := map[string]string{}
		for _, c := range catalog.Collections {
			collection := models.Collection{
				Name:        c.Name,
				Slug:        c.Slug,
				Description: c.Description,
				Image:       c.Image,
				IsActive:    c.IsActive,
			}
			created, err := firstOrCreate(tx, &collection, "slug = ?", c.Slug)
			if err != nil {
				return err
			}
			collectionIDs[c.Slug] = collection.ID
			if created {
				result.Collections++
			}
		}

		productIDs := map[string]string{}
		for _, p := range catalog.Products {
			categoryID, ok := categoryIDs[p.Category]
			if !ok {
				return fmt.Errorf("seed product %s references unknown category %s", p.Slug, p.Category)
			}
			images := p.Images
			if images == nil {
				images = []string{}
			}
			product := models.Product{
				Name:            p.Name,
				Slug:            p.Slug,
				Description:     p.Description,
				BasePrice:       p.BasePrice,
				Type:            p.Type,
				PreparationDays: p.PreparationDays,
				Images:          images,
				CategoryID:      categoryID,
				IsActive:        true,
			}
			created, err := firstOrCreate(tx, &product, "slug = ?", p.Slug)
			if err != nil {
				return err
			}
			productIDs[p.Slug] = product.ID
			if !created {
				continue
			}
			result.Products++

			ids := make([]string, 0, len(p.Collections))
			for _, slug := range p.Collections {
				id, ok := collectionIDs[slug]
				if !ok {
					return fmt.Errorf("seed product %s references unknown collection %s", p.Slug, slug)
				}
				ids = append(ids, id)
			}
			if err := linkCollections(tx, product.ID, ids); err != nil {
				return err
			}
		}

		for _, v := range catalog.Variants {
			productID, ok := productIDs[v.Product]
			if !ok {
				continue
			}
			variant := models.Variant{
				ProductID:  productID,
				Name:       v.Name,
				Attributes: models.NewJSON(v.Attributes),
				Price:      v.Price,
				Stock:      v.Stock,
				SKU:        v.SKU,
			}
			created, err := firstOrCreate(tx, &variant, "sku = ?", v.SKU)
			if err != nil {
				return err
			}
			if created {
				result.Variants++
			}
		}

		for _, f := range catalog.DigitalFiles {
			productID, ok := productIDs[f.Product]
			if !ok {
				continue
			}
			file := models.DigitalFile{ProductID: productID, Name: f.Name, FileSize: f.FileSize}
			created, err := firstOrCreate(tx, &file, "product_id = ? AND name = ?", productID, f.Name)
			if err != nil {
				return err
			}
			if created {
				result.DigitalFiles++
			}
		}

		return nil
	})
	if err != nil {
		return SeedResult{}, err
	}

	zap.S().Infof("Seed completed: %+v", result)
	return result, nil
}

// firstOrCreate loads the row matching the natural key into model, inserting model when none exists
func firstOrCreate(tx *gorm.DB, model interface{}, query string, args ...interface{}) (bool, error) {
	err := tx.Session(&gorm.Session{Logger: tx.Logger.LogMode(logger.Silent)}).Where(query, args...).First(model).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	if err := tx.Omit(clause.Associations).Create(model).Error; err != nil {
		return false, err
	}
	return true, nil
}

// ClearAll deletes every record in dependency order in one transaction
func ClearAll(ctx context.Context, db *gorm.DB) error {
	tables := []interface{}{
		&models.DownloadLink{},
		&models.DigitalFile{},
		&models.Variant{},
		&models.Order{},
		&models.ProductCollection{},
		&models.Product{},
		&models.Category{},
		&models.Collection{},
		&models.AdminUser{},
		&models.StoreSettings{},
		&models.BlobCleanup{},
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range tables {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(table).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	zap.S().Info("All data cleared")
	return nil
}

// product.go
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

package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ProductType distinguishes shipped goods from downloads
type ProductType string

const (
	ProductTypePhysical ProductType = "physical"
	ProductTypeDigital  ProductType = "digital"
)

// Valid reports whether t is a known product type
func (t ProductType) Valid() bool {
	return t == ProductTypePhysical || t == ProductTypeDigital
}

// Product is a catalog entry. Collections are linked through product_collections.
type Product struct {
	ID              string                      `gorm:"primaryKey;size:36" json:"id"`
	Name            string                      `gorm:"size:255;not null" json:"name"`
	Slug            string                      `gorm:"size:255;not null;uniqueIndex" json:"slug"`
	Description     string                      `gorm:"type:text;not null" json:"description"`
	BasePrice       decimal.Decimal             `gorm:"type:decimal(12,2);not null" json:"basePrice"`
	Type            ProductType                 `gorm:"size:16;not null;index;index:idx_products_active_type,priority:2" json:"type"`
	PreparationDays *int                        `json:"preparationDays,omitempty"`
	Images          datatypes.JSONSlice[string] `gorm:"not null" json:"images"`
	CategoryID      string                      `gorm:"size:36;not null;index" json:"categoryId"`
	Category        *Category                   `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Collections     []Collection                `gorm:"many2many:product_collections" json:"-"`
	CollectionIDs   []string                    `gorm:"-" json:"collectionIds"`
	IsActive        bool                        `gorm:"not null;index;index:idx_products_active_type,priority:1" json:"isActive"`
	CreatedAt       time.Time                   `json:"createdAt"`
	UpdatedAt       time.Time                   `json:"updatedAt"`
}

// ProductCollection links a product to one of its collections
type ProductCollection struct {
	ProductID    string `gorm:"primaryKey;size:36"`
	CollectionID string `gorm:"primaryKey;size:36;index"`
}

// TableName overrides the table name for ProductCollection
func (ProductCollection) TableName() string {
	return "product_collections"
}

// TableName overrides the table name for Product
func (Product) TableName() string {
	return "products"
}

// BeforeCreate assigns the id and normalizes the image list
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	ensureID(&p.ID)
	if p.Images == nil {
		p.Images = datatypes.JSONSlice[string]{}
	}
	return nil
}

// AfterFind flattens preloaded collections into CollectionIDs
func (p *Product) AfterFind(tx *gorm.DB) error {
	p.CollectionIDs = make([]string, 0, len(p.Collections))
	for _, c := range p.Collections {
		p.CollectionIDs = append(p.CollectionIDs, c.ID)
	}
	if p.Images == nil {
		p.Images = datatypes.JSONSlice[string]{}
	}
	return nil
}

package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// VariantAttributes are the optional descriptive options of a variant
type VariantAttributes struct {
	Size  *string `json:"size,omitempty"`
	Color *string `json:"color,omitempty"`
}

// Variant is a stock-keeping unit of a product. A null Price falls back to the product base price.
type Variant struct {
	ID         string                  `gorm:"primaryKey;size:36" json:"id"`
	ProductID  string                  `gorm:"size:36;not null;index" json:"productId"`
	Name       string                  `gorm:"size:255;not null" json:"name"`
	Attributes JSON[VariantAttributes] `gorm:"not null" json:"attributes"`
	Price      decimal.NullDecimal     `gorm:"type:decimal(12,2)" json:"price"`
	Stock      int                     `gorm:"not null;check:chk_variants_stock,stock >= 0" json:"stock"`
	SKU        string                  `gorm:"column:sku;size:64;not null;uniqueIndex" json:"sku"`
}

// TableName overrides the table name for Variant
func (Variant) TableName() string {
	return "variants"
}

// BeforeCreate assigns the id
func (v *Variant) BeforeCreate(tx *gorm.DB) error {
	ensureID(&v.ID)
	return nil
}

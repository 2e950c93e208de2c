package models

import (
	"github.com/shopspring/decimal"
)

// StoreSettingsID is the primary key of the only settings row
const StoreSettingsID = 1

// StoreSettings holds store-wide values and the order number counter
type StoreSettings struct {
	ID                    uint            `gorm:"primaryKey;autoIncrement:false" json:"id"`
	ShippingRate          decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"shippingRate"`
	FreeShippingThreshold decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"freeShippingThreshold"`
	ContactEmail          string          `gorm:"size:255;not null" json:"contactEmail"`
	LastOrderNumber       int64           `gorm:"not null" json:"lastOrderNumber"`
}

// TableName overrides the table name for StoreSettings
func (StoreSettings) TableName() string {
	return "store_settings"
}

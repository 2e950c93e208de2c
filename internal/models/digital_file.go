package models

import (
	"gorm.io/gorm"
)

// DigitalFile is a downloadable asset of a digital product.
// StorageID is nil until the blob has been uploaded.
type DigitalFile struct {
	ID        string  `gorm:"primaryKey;size:36" json:"id"`
	ProductID string  `gorm:"size:36;not null;index" json:"productId"`
	Name      string  `gorm:"size:255;not null" json:"name"`
	StorageID *string `gorm:"size:64;index" json:"storageId"`
	FileSize  int64   `gorm:"not null" json:"fileSize"`
}

// TableName overrides the table name for DigitalFile
func (DigitalFile) TableName() string {
	return "digital_files"
}

// BeforeCreate assigns the id
func (f *DigitalFile) BeforeCreate(tx *gorm.DB) error {
	ensureID(&f.ID)
	return nil
}

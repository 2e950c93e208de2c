package models

import (
	"time"
)

// BlobCleanup queues a blob for deletion until the blob store confirms it
type BlobCleanup struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	StorageID string    `gorm:"size:64;not null;uniqueIndex" json:"storageId"`
	Attempts  int       `gorm:"not null" json:"attempts"`
	LastError string    `gorm:"type:text" json:"lastError,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName overrides the table name for BlobCleanup
func (BlobCleanup) TableName() string {
	return "blob_cleanups"
}

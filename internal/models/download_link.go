package models

import (
	"time"

	"gorm.io/gorm"
)

// DownloadLink grants a limited number of downloads of one file of a paid order
type DownloadLink struct {
	ID                 string    `gorm:"primaryKey;size:36" json:"id"`
	OrderID            string    `gorm:"size:36;not null;index;uniqueIndex:idx_download_links_order_file" json:"orderId"`
	FileID             string    `gorm:"size:36;not null;uniqueIndex:idx_download_links_order_file" json:"fileId"`
	Token              string    `gorm:"size:64;not null;uniqueIndex" json:"token"`
	ExpiresAt          time.Time `gorm:"not null;index" json:"expiresAt"`
	DownloadsRemaining int       `gorm:"not null;check:chk_download_links_remaining,downloads_remaining >= 0" json:"downloadsRemaining"`
	CreatedAt          time.Time `json:"createdAt"`
}

// TableName overrides the table name for DownloadLink
func (DownloadLink) TableName() string {
	return "download_links"
}

// BeforeCreate assigns the id
func (l *DownloadLink) BeforeCreate(tx *gorm.DB) error {
	ensureID(&l.ID)
	return nil
}

// Expired reports whether the link is no longer valid at now
func (l *DownloadLink) Expired(now time.Time) bool {
	return !now.Before(l.ExpiresAt)
}

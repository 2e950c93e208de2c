package models

import (
	"time"

	"gorm.io/gorm"
)

// Collection is a curated, optionally seasonal, grouping of products
type Collection struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Slug        string    `gorm:"size:255;not null;uniqueIndex" json:"slug"`
	Description *string   `gorm:"type:text" json:"description,omitempty"`
	Image       *string   `gorm:"size:1024" json:"image,omitempty"`
	IsActive    bool      `gorm:"not null;index" json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
}

// TableName overrides the table name for Collection
func (Collection) TableName() string {
	return "collections"
}

// BeforeCreate assigns the id
func (c *Collection) BeforeCreate(tx *gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

package models

import (
	"gorm.io/gorm"
)

// Category groups products for navigation, shown in ascending Order
type Category struct {
	ID    string  `gorm:"primaryKey;size:36" json:"id"`
	Name  string  `gorm:"size:255;not null" json:"name"`
	Slug  string  `gorm:"size:255;not null;uniqueIndex" json:"slug"`
	Order int     `gorm:"column:position;not null;index" json:"order"`
	Image *string `gorm:"size:1024" json:"image,omitempty"`
}

// TableName overrides the table name for Category
func (Category) TableName() string {
	return "categories"
}

// BeforeCreate assigns the id
func (c *Category) BeforeCreate(tx *gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

package models

import (
	"time"

	"gorm.io/gorm"
)

// AdminUser is an operator allowed to call privileged routes
type AdminUser struct {
	ID           string     `gorm:"primaryKey;size:36" json:"id"`
	Username     string     `gorm:"size:128;not null;uniqueIndex" json:"username"`
	PasswordHash string     `gorm:"size:255;not null" json:"-"`
	LastLoginAt  *time.Time `json:"lastLoginAt"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// TableName overrides the table name for AdminUser
func (AdminUser) TableName() string {
	return "admin_users"
}

// BeforeCreate assigns the id
func (u *AdminUser) BeforeCreate(tx *gorm.DB) error {
	ensureID(&u.ID)
	return nil
}

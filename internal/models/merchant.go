package models

import (
	"time"

	"gorm.io/gorm"
)

// Merchant is a platform account that owns one or more stores.
type Merchant struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"type:varchar(200);not null" json:"-"`
	Name         string         `json:"name"`
	IsActive     bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	Stores []Store `gorm:"foreignKey:MerchantID" json:"stores,omitempty"`
}

// TableName sets the table name.
func (Merchant) TableName() string {
	return "merchants"
}

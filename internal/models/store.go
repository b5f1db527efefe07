package models

import (
	"time"

	"gorm.io/gorm"
)

// Store is a merchant storefront; every catalog, coupon, and cart row is
// scoped to one store.
type Store struct {
	ID         uint           `gorm:"primarykey" json:"id"`
	MerchantID uint           `gorm:"index;not null" json:"merchant_id"`
	Name       string         `gorm:"not null" json:"name"`
	Slug       string         `gorm:"uniqueIndex;not null" json:"slug"`
	Status     string         `gorm:"index;not null;default:'active'" json:"status"`
	Currency   string         `gorm:"type:varchar(8);not null;default:'INR'" json:"currency"`
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName sets the table name.
func (Store) TableName() string {
	return "stores"
}

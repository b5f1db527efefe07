package models

import (
	"time"

	"gorm.io/gorm"
)

// Product is a catalog item. Price and stock here are the authoritative
// values; client-submitted prices are never trusted.
type Product struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	StoreID       uint           `gorm:"not null;index;uniqueIndex:idx_product_store_slug" json:"store_id"`
	Slug          string         `gorm:"not null;uniqueIndex:idx_product_store_slug" json:"slug"`
	Title         string         `gorm:"not null" json:"title"`
	Description   string         `gorm:"type:text" json:"description"`
	PriceAmount   Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price_amount"`
	Images        StringArray    `gorm:"type:json" json:"images"`
	Status        string         `gorm:"index;not null;default:'draft'" json:"status"`
	TrackQuantity bool           `gorm:"not null;default:false" json:"track_quantity"`
	StockQuantity int            `gorm:"not null;default:0" json:"stock_quantity"`
	SortOrder     int            `gorm:"default:0;index" json:"sort_order"`
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	Variants []ProductVariant `gorm:"foreignKey:ProductID" json:"variants,omitempty"`
}

// TableName sets the table name.
func (Product) TableName() string {
	return "products"
}

// ProductVariant is an optional per-variant price/stock override.
type ProductVariant struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	ProductID     uint           `gorm:"not null;index" json:"product_id"`
	Title         string         `gorm:"not null" json:"title"`
	PriceAmount   Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price_amount"`
	TrackQuantity bool           `gorm:"not null;default:false" json:"track_quantity"`
	StockQuantity int            `gorm:"not null;default:0" json:"stock_quantity"`
	IsActive      bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName sets the table name.
func (ProductVariant) TableName() string {
	return "product_variants"
}

package models

import (
	"time"

	"gorm.io/gorm"
)

// Coupon grants a percentage, fixed-amount, or free-shipping discount.
// Codes are stored uppercase and unique per store. Invariants: usage_count
// never exceeds usage_limit when the limit is set; discount_value >= 0 and,
// for percentage coupons, 0 < value <= 100.
type Coupon struct {
	ID               uint           `gorm:"primarykey" json:"id"`
	StoreID          uint           `gorm:"not null;index;uniqueIndex:idx_coupon_store_code" json:"store_id"`
	Code             string         `gorm:"not null;uniqueIndex:idx_coupon_store_code" json:"code"`
	DiscountType     string         `gorm:"type:varchar(20);not null" json:"discount_type"`
	DiscountValue    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"discount_value"`
	MinOrderValue    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"min_order_value"`
	UsageLimit       int            `gorm:"not null;default:0" json:"usage_limit"`
	UsageCount       int            `gorm:"not null;default:0" json:"usage_count"`
	PerCustomerLimit int            `gorm:"not null;default:0" json:"per_customer_limit"`
	ExpiresAt        *time.Time     `gorm:"index" json:"expires_at"`
	IsActive         bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt        time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName sets the table name.
func (Coupon) TableName() string {
	return "coupons"
}

// CouponUsage records one redemption, written when an order completes.
type CouponUsage struct {
	ID             uint           `gorm:"primarykey" json:"id"`
	CouponID       uint           `gorm:"index;not null" json:"coupon_id"`
	StoreID        uint           `gorm:"index;not null" json:"store_id"`
	CustomerEmail  string         `gorm:"index" json:"customer_email"`
	OrderNo        string         `gorm:"index" json:"order_no"`
	DiscountAmount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"discount_amount"`
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName sets the table name.
func (CouponUsage) TableName() string {
	return "coupon_usages"
}

package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// CartItemSnapshot is one line of the items snapshot frozen into an
// abandoned-cart record at save time.
type CartItemSnapshot struct {
	ProductID uint   `json:"product_id"`
	VariantID uint   `json:"variant_id,omitempty"`
	Title     string `json:"title"`
	UnitPrice Money  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

// CartItemSnapshots is a JSON array column of snapshot lines.
type CartItemSnapshots []CartItemSnapshot

// Value serializes the snapshot for database writes.
func (s CartItemSnapshots) Value() (driver.Value, error) {
	if s == nil {
		return json.Marshal([]CartItemSnapshot{})
	}
	return json.Marshal([]CartItemSnapshot(s))
}

// Scan deserializes a database JSON array column.
func (s *CartItemSnapshots) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("unsupported CartItemSnapshots column type: %T", value)
	}
}

// AbandonedCart tracks a saved-but-unconverted cart through the bounded
// reminder sequence. Lifecycle is monotonic: active -> recovered|expired,
// both terminal. Rows are never hard-deleted; they are retained for
// reporting.
type AbandonedCart struct {
	ID                 uint              `gorm:"primarykey" json:"id"`
	StoreID            uint              `gorm:"not null;index:idx_abandoned_store_status" json:"store_id"`
	CustomerID         *uint             `gorm:"index" json:"customer_id,omitempty"`
	Email              string            `gorm:"index" json:"email,omitempty"`
	Phone              string            `json:"phone,omitempty"`
	Items              CartItemSnapshots `gorm:"type:json" json:"items"`
	Subtotal           Money             `gorm:"type:decimal(20,2);not null;default:0" json:"subtotal"`
	ItemCount          int               `gorm:"not null;default:0" json:"item_count"`
	RecoveryStatus     string            `gorm:"type:varchar(20);not null;default:'active';index:idx_abandoned_store_status" json:"recovery_status"`
	RecoveryEmailsSent int               `gorm:"not null;default:0" json:"recovery_emails_sent"`
	RecoveryToken      string            `gorm:"type:varchar(64);uniqueIndex;not null" json:"recovery_token"`
	AbandonedAt        time.Time         `gorm:"index" json:"abandoned_at"`
	LastReminderAt     *time.Time        `json:"last_reminder_at,omitempty"`
	CreatedAt          time.Time         `gorm:"index" json:"created_at"`
	UpdatedAt          time.Time         `gorm:"index" json:"updated_at"`
}

// TableName sets the table name.
func (AbandonedCart) TableName() string {
	return "abandoned_carts"
}

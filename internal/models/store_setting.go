package models

import "time"

// StoreSetting is a per-store key/value settings row. Values are loose JSON
// blobs; defaults are merged exactly once by the settings resolver, never at
// call sites.
type StoreSetting struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	StoreID   uint      `gorm:"not null;uniqueIndex:idx_store_setting_key" json:"store_id"`
	Key       string    `gorm:"not null;uniqueIndex:idx_store_setting_key" json:"key"`
	ValueJSON JSON      `gorm:"type:json" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName sets the table name.
func (StoreSetting) TableName() string {
	return "store_settings"
}

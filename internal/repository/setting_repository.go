package repository

import (
	"errors"

	"github.com/storekart/storekart/internal/models"

	"gorm.io/gorm"
)

// SettingRepository is the per-store settings data-access interface.
type SettingRepository interface {
	GetByStoreAndKey(storeID uint, key string) (*models.StoreSetting, error)
	Upsert(storeID uint, key string, value models.JSON) (*models.StoreSetting, error)
}

// GormSettingRepository is the GORM implementation.
type GormSettingRepository struct {
	db *gorm.DB
}

// NewSettingRepository creates a settings repository.
func NewSettingRepository(db *gorm.DB) *GormSettingRepository {
	return &GormSettingRepository{db: db}
}

// GetByStoreAndKey fetches a settings row, nil when missing.
func (r *GormSettingRepository) GetByStoreAndKey(storeID uint, key string) (*models.StoreSetting, error) {
	var setting models.StoreSetting
	err := r.db.Where("store_id = ? AND key = ?", storeID, key).First(&setting).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &setting, nil
}

// Upsert creates or replaces a settings row.
func (r *GormSettingRepository) Upsert(storeID uint, key string, value models.JSON) (*models.StoreSetting, error) {
	var setting models.StoreSetting
	err := r.db.Where("store_id = ? AND key = ?", storeID, key).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		setting = models.StoreSetting{StoreID: storeID, Key: key, ValueJSON: value}
		if err := r.db.Create(&setting).Error; err != nil {
			return nil, err
		}
		return &setting, nil
	}
	if err != nil {
		return nil, err
	}
	setting.ValueJSON = value
	if err := r.db.Save(&setting).Error; err != nil {
		return nil, err
	}
	return &setting, nil
}

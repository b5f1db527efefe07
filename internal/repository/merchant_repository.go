package repository

import (
	"errors"

	"github.com/storekart/storekart/internal/models"

	"gorm.io/gorm"
)

// MerchantRepository is the merchant data-access interface.
type MerchantRepository interface {
	GetByID(id uint) (*models.Merchant, error)
	GetByEmail(email string) (*models.Merchant, error)
	Create(merchant *models.Merchant) error
}

// GormMerchantRepository is the GORM implementation.
type GormMerchantRepository struct {
	db *gorm.DB
}

// NewMerchantRepository creates a merchant repository.
func NewMerchantRepository(db *gorm.DB) *GormMerchantRepository {
	return &GormMerchantRepository{db: db}
}

// GetByID fetches a merchant, nil when missing.
func (r *GormMerchantRepository) GetByID(id uint) (*models.Merchant, error) {
	var merchant models.Merchant
	if err := r.db.First(&merchant, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &merchant, nil
}

// GetByEmail fetches a merchant by login email, nil when missing.
func (r *GormMerchantRepository) GetByEmail(email string) (*models.Merchant, error) {
	var merchant models.Merchant
	if err := r.db.Where("email = ?", email).First(&merchant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &merchant, nil
}

// Create inserts a merchant.
func (r *GormMerchantRepository) Create(merchant *models.Merchant) error {
	return r.db.Create(merchant).Error
}

package repository

import (
	"github.com/storekart/storekart/internal/models"

	"gorm.io/gorm"
)

// CouponUsageRepository is the redemption-record data-access interface.
type CouponUsageRepository interface {
	Create(usage *models.CouponUsage) error
	CountByCustomer(couponID uint, customerEmail string) (int64, error)
	WithTx(tx *gorm.DB) *GormCouponUsageRepository
}

// GormCouponUsageRepository is the GORM implementation.
type GormCouponUsageRepository struct {
	db *gorm.DB
}

// NewCouponUsageRepository creates a coupon-usage repository.
func NewCouponUsageRepository(db *gorm.DB) *GormCouponUsageRepository {
	return &GormCouponUsageRepository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *GormCouponUsageRepository) WithTx(tx *gorm.DB) *GormCouponUsageRepository {
	if tx == nil {
		return r
	}
	return &GormCouponUsageRepository{db: tx}
}

// Create inserts a redemption record.
func (r *GormCouponUsageRepository) Create(usage *models.CouponUsage) error {
	return r.db.Create(usage).Error
}

// CountByCustomer counts redemptions of one coupon by one customer email.
func (r *GormCouponUsageRepository) CountByCustomer(couponID uint, customerEmail string) (int64, error) {
	var count int64
	err := r.db.Model(&models.CouponUsage{}).
		Where("coupon_id = ? AND customer_email = ?", couponID, customerEmail).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

package repository

import (
	"errors"
	"time"

	"github.com/storekart/storekart/internal/constants"
	"github.com/storekart/storekart/internal/models"

	"gorm.io/gorm"
)

// AbandonedCartRepository is the recovery-record data-access interface.
// Every status mutation is conditional on the row's current state so a
// concurrent sweep and order-completion event cannot both win.
type AbandonedCartRepository interface {
	GetByID(id uint) (*models.AbandonedCart, error)
	GetByToken(token string) (*models.AbandonedCart, error)
	FindActiveByContact(storeID uint, customerID *uint, email string) (*models.AbandonedCart, error)
	Create(cart *models.AbandonedCart) error
	MergeActive(id uint, items models.CartItemSnapshots, subtotal models.Money, itemCount int, now time.Time) (bool, error)
	ListActiveAbandonedBefore(cutoff time.Time, limit int) ([]models.AbandonedCart, error)
	TransitionStatus(id uint, from, to string) (bool, error)
	RecoverActiveByContact(storeID uint, customerID *uint, email string) (int64, error)
	MarkReminderSent(id uint, expectedSent int, at time.Time) (bool, error)
	List(filter AbandonedCartListFilter) ([]models.AbandonedCart, int64, error)
}

// AbandonedCartListFilter filters the merchant-facing listing.
type AbandonedCartListFilter struct {
	StoreID  uint
	Status   string
	Page     int
	PageSize int
}

// GormAbandonedCartRepository is the GORM implementation.
type GormAbandonedCartRepository struct {
	db *gorm.DB
}

// NewAbandonedCartRepository creates an abandoned-cart repository.
func NewAbandonedCartRepository(db *gorm.DB) *GormAbandonedCartRepository {
	return &GormAbandonedCartRepository{db: db}
}

// GetByID fetches a record, nil when missing.
func (r *GormAbandonedCartRepository) GetByID(id uint) (*models.AbandonedCart, error) {
	var cart models.AbandonedCart
	if err := r.db.First(&cart, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cart, nil
}

// GetByToken fetches a record by its recovery token, nil when missing.
func (r *GormAbandonedCartRepository) GetByToken(token string) (*models.AbandonedCart, error) {
	var cart models.AbandonedCart
	if err := r.db.Where("recovery_token = ?", token).First(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cart, nil
}

// FindActiveByContact fetches the active record for a store contact,
// matched by customer id when present, otherwise by email.
func (r *GormAbandonedCartRepository) FindActiveByContact(storeID uint, customerID *uint, email string) (*models.AbandonedCart, error) {
	query := r.db.Where("store_id = ? AND recovery_status = ?", storeID, constants.RecoveryStatusActive)
	if customerID != nil && *customerID > 0 {
		query = query.Where("customer_id = ?", *customerID)
	} else {
		query = query.Where("email = ?", email)
	}
	var cart models.AbandonedCart
	if err := query.Order("id desc").First(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cart, nil
}

// Create inserts a record.
func (r *GormAbandonedCartRepository) Create(cart *models.AbandonedCart) error {
	return r.db.Create(cart).Error
}

// MergeActive replaces the items snapshot of a still-active record.
// recovery_emails_sent is deliberately untouched: renewed browsing does not
// restart an in-progress reminder sequence. A false return means the record
// left the active state concurrently.
func (r *GormAbandonedCartRepository) MergeActive(id uint, items models.CartItemSnapshots, subtotal models.Money, itemCount int, now time.Time) (bool, error) {
	result := r.db.Model(&models.AbandonedCart{}).
		Where("id = ? AND recovery_status = ?", id, constants.RecoveryStatusActive).
		Updates(map[string]interface{}{
			"items":      items,
			"subtotal":   subtotal,
			"item_count": itemCount,
			"updated_at": now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListActiveAbandonedBefore fetches a bounded batch of active records
// abandoned before the cutoff, oldest first. The limit keeps one sweep
// invocation to a bounded row budget.
func (r *GormAbandonedCartRepository) ListActiveAbandonedBefore(cutoff time.Time, limit int) ([]models.AbandonedCart, error) {
	if limit <= 0 {
		limit = 100
	}
	var carts []models.AbandonedCart
	err := r.db.Where("recovery_status = ? AND abandoned_at <= ?", constants.RecoveryStatusActive, cutoff).
		Order("abandoned_at asc").
		Limit(limit).
		Find(&carts).Error
	if err != nil {
		return nil, err
	}
	return carts, nil
}

// TransitionStatus moves a record from one status to another, guarded by
// the expected prior status. A false return means the guard failed.
func (r *GormAbandonedCartRepository) TransitionStatus(id uint, from, to string) (bool, error) {
	result := r.db.Model(&models.AbandonedCart{}).
		Where("id = ? AND recovery_status = ?", id, from).
		Update("recovery_status", to)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// RecoverActiveByContact transitions every active record for a store
// contact to recovered. Returns the number of rows recovered. An empty
// email never participates in matching: guest carts saved with only a
// customer id also carry an empty email, and a blank match arm would
// recover every one of them.
func (r *GormAbandonedCartRepository) RecoverActiveByContact(storeID uint, customerID *uint, email string) (int64, error) {
	hasCustomer := customerID != nil && *customerID > 0
	if !hasCustomer && email == "" {
		return 0, nil
	}
	query := r.db.Model(&models.AbandonedCart{}).
		Where("store_id = ? AND recovery_status = ?", storeID, constants.RecoveryStatusActive)
	switch {
	case hasCustomer && email != "":
		query = query.Where("customer_id = ? OR email = ?", *customerID, email)
	case hasCustomer:
		query = query.Where("customer_id = ?", *customerID)
	default:
		query = query.Where("email = ?", email)
	}
	result := query.Update("recovery_status", constants.RecoveryStatusRecovered)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// MarkReminderSent advances the reminder counter after a confirmed send.
// The update is guarded on the active status and the counter value read
// before sending, so a concurrent transition or a duplicate worker cannot
// double-count. A false return means the guard failed.
func (r *GormAbandonedCartRepository) MarkReminderSent(id uint, expectedSent int, at time.Time) (bool, error) {
	result := r.db.Model(&models.AbandonedCart{}).
		Where("id = ? AND recovery_status = ? AND recovery_emails_sent = ?", id, constants.RecoveryStatusActive, expectedSent).
		Updates(map[string]interface{}{
			"recovery_emails_sent": gorm.Expr("recovery_emails_sent + 1"),
			"last_reminder_at":     at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// List fetches records for a store, newest first. Terminal records are
// included; they are retained for reporting.
func (r *GormAbandonedCartRepository) List(filter AbandonedCartListFilter) ([]models.AbandonedCart, int64, error) {
	var carts []models.AbandonedCart
	query := r.db.Model(&models.AbandonedCart{})

	if filter.StoreID > 0 {
		query = query.Where("store_id = ?", filter.StoreID)
	}
	if filter.Status != "" {
		query = query.Where("recovery_status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	if err := query.Order("abandoned_at desc").Find(&carts).Error; err != nil {
		return nil, 0, err
	}
	return carts, total, nil
}

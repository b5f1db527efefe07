package repository

import (
	"errors"

	"github.com/storekart/storekart/internal/models"

	"gorm.io/gorm"
)

// StoreRepository is the store data-access interface.
type StoreRepository interface {
	GetByID(id uint) (*models.Store, error)
	GetBySlug(slug string) (*models.Store, error)
	Create(store *models.Store) error
	Update(store *models.Store) error
}

// GormStoreRepository is the GORM implementation.
type GormStoreRepository struct {
	db *gorm.DB
}

// NewStoreRepository creates a store repository.
func NewStoreRepository(db *gorm.DB) *GormStoreRepository {
	return &GormStoreRepository{db: db}
}

// GetByID fetches a store, nil when missing.
func (r *GormStoreRepository) GetByID(id uint) (*models.Store, error) {
	var store models.Store
	if err := r.db.First(&store, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &store, nil
}

// GetBySlug fetches a store by slug, nil when missing.
func (r *GormStoreRepository) GetBySlug(slug string) (*models.Store, error) {
	var store models.Store
	if err := r.db.Where("slug = ?", slug).First(&store).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &store, nil
}

// Create inserts a store.
func (r *GormStoreRepository) Create(store *models.Store) error {
	return r.db.Create(store).Error
}

// Update saves a store.
func (r *GormStoreRepository) Update(store *models.Store) error {
	return r.db.Save(store).Error
}

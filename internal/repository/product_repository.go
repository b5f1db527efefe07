package repository

import (
	"errors"

	"github.com/storekart/storekart/internal/models"

	"gorm.io/gorm"
)

// ProductRepository is the catalog data-access interface. Checkout reads
// only ever go through ListByIDs so one validation call costs one query.
type ProductRepository interface {
	GetByID(storeID, id uint) (*models.Product, error)
	ListByIDs(storeID uint, ids []uint) ([]models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
}

// GormProductRepository is the GORM implementation.
type GormProductRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a product repository.
func NewProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// GetByID fetches one product with variants, nil when missing.
func (r *GormProductRepository) GetByID(storeID, id uint) (*models.Product, error) {
	var product models.Product
	err := r.db.Preload("Variants").
		Where("store_id = ?", storeID).
		First(&product, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// ListByIDs batch-fetches products with variants for a store.
func (r *GormProductRepository) ListByIDs(storeID uint, ids []uint) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	var products []models.Product
	err := r.db.Preload("Variants").
		Where("store_id = ? AND id IN ?", storeID, ids).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

// Create inserts a product.
func (r *GormProductRepository) Create(product *models.Product) error {
	return r.db.Create(product).Error
}

// Update saves a product.
func (r *GormProductRepository) Update(product *models.Product) error {
	return r.db.Save(product).Error
}

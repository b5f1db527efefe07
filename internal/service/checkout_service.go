package service

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/storekart/storekart/internal/constants"
	"github.com/storekart/storekart/internal/models"
	"github.com/storekart/storekart/internal/repository"
)

// Item-level validation error codes.
const (
	ItemErrorNotFound          = "not_found"
	ItemErrorUnavailable       = "unavailable"
	ItemErrorInvalidQuantity   = "invalid_quantity"
	ItemErrorInsufficientStock = "insufficient_stock"
)

// CartItemRequest is a client-submitted cart line. Any client-supplied
// price is discarded; only the id pair and quantity are read.
type CartItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	VariantID uint `json:"variant_id"`
	Quantity  int  `json:"quantity" binding:"required"`
}

// ValidatedCartItem is one cart line priced from the catalog snapshot.
type ValidatedCartItem struct {
	ProductID uint         `json:"product_id"`
	VariantID uint         `json:"variant_id,omitempty"`
	Title     string       `json:"title"`
	UnitPrice models.Money `json:"unit_price"`
	Quantity  int          `json:"quantity"`
	LineTotal models.Money `json:"line_total"`
	Available bool         `json:"available"`
}

// CartItemError reports why one requested line was excluded.
type CartItemError struct {
	ProductID uint   `json:"product_id"`
	VariantID uint   `json:"variant_id,omitempty"`
	Code      string `json:"code"`
	Message   string `json:"message"`
}

// InventoryCheckItem is one line of a stock availability answer.
type InventoryCheckItem struct {
	ProductID         uint `json:"product_id"`
	AvailableQuantity int  `json:"available_quantity"`
	RequestedQuantity int  `json:"requested_quantity"`
	InStock           bool `json:"in_stock"`
}

// CheckoutService validates client-submitted carts against the catalog.
type CheckoutService struct {
	storeRepo   repository.StoreRepository
	productRepo repository.ProductRepository
}

// NewCheckoutService creates a checkout service.
func NewCheckoutService(storeRepo repository.StoreRepository, productRepo repository.ProductRepository) *CheckoutService {
	return &CheckoutService{storeRepo: storeRepo, productRepo: productRepo}
}

// ValidateItems reconciles requested lines against the catalog. Lines that
// fail are excluded and reported, never silently clamped; a caller seeing a
// smaller total than expected would be worse than seeing an explicit error.
// Returns ErrStoreNotFound when the store is missing or not active.
func (s *CheckoutService) ValidateItems(storeID uint, requests []CartItemRequest) ([]ValidatedCartItem, []CartItemError, error) {
	store, err := s.storeRepo.GetByID(storeID)
	if err != nil {
		return nil, nil, err
	}
	if store == nil || store.Status != constants.StoreStatusActive {
		return nil, nil, ErrStoreNotFound
	}

	products, err := s.loadProducts(storeID, requests)
	if err != nil {
		return nil, nil, err
	}

	validated := make([]ValidatedCartItem, 0, len(requests))
	itemErrors := make([]CartItemError, 0)

	for _, req := range requests {
		if req.Quantity <= 0 {
			itemErrors = append(itemErrors, CartItemError{
				ProductID: req.ProductID,
				VariantID: req.VariantID,
				Code:      ItemErrorInvalidQuantity,
				Message:   "quantity must be at least 1",
			})
			continue
		}

		product, ok := products[req.ProductID]
		if !ok {
			itemErrors = append(itemErrors, CartItemError{
				ProductID: req.ProductID,
				VariantID: req.VariantID,
				Code:      ItemErrorNotFound,
				Message:   "product not found",
			})
			continue
		}
		if product.Status != constants.ProductStatusPublished {
			itemErrors = append(itemErrors, CartItemError{
				ProductID: req.ProductID,
				VariantID: req.VariantID,
				Code:      ItemErrorUnavailable,
				Message:   "product is not available",
			})
			continue
		}

		title := product.Title
		unitPrice := product.PriceAmount
		trackQuantity := product.TrackQuantity
		stock := product.StockQuantity

		if req.VariantID > 0 {
			variant := findVariant(product, req.VariantID)
			if variant == nil {
				itemErrors = append(itemErrors, CartItemError{
					ProductID: req.ProductID,
					VariantID: req.VariantID,
					Code:      ItemErrorNotFound,
					Message:   "variant not found",
				})
				continue
			}
			if !variant.IsActive {
				itemErrors = append(itemErrors, CartItemError{
					ProductID: req.ProductID,
					VariantID: req.VariantID,
					Code:      ItemErrorUnavailable,
					Message:   "variant is not available",
				})
				continue
			}
			if variant.Title != "" {
				title = product.Title + " - " + variant.Title
			}
			unitPrice = variant.PriceAmount
			trackQuantity = variant.TrackQuantity
			stock = variant.StockQuantity
		}

		if trackQuantity && req.Quantity > stock {
			itemErrors = append(itemErrors, CartItemError{
				ProductID: req.ProductID,
				VariantID: req.VariantID,
				Code:      ItemErrorInsufficientStock,
				Message:   "insufficient stock",
			})
			continue
		}

		lineTotal := models.NewMoneyFromDecimal(
			unitPrice.Mul(decimal.NewFromInt(int64(req.Quantity))))
		validated = append(validated, ValidatedCartItem{
			ProductID: req.ProductID,
			VariantID: req.VariantID,
			Title:     strings.TrimSpace(title),
			UnitPrice: unitPrice,
			Quantity:  req.Quantity,
			LineTotal: lineTotal,
			Available: true,
		})
	}

	return validated, itemErrors, nil
}

// CheckInventory answers current availability per line without validating
// the rest of the cart. Untracked products report as in stock.
func (s *CheckoutService) CheckInventory(storeID uint, requests []CartItemRequest) ([]InventoryCheckItem, bool, error) {
	products, err := s.loadProducts(storeID, requests)
	if err != nil {
		return nil, false, err
	}

	results := make([]InventoryCheckItem, 0, len(requests))
	allInStock := true
	for _, req := range requests {
		item := InventoryCheckItem{
			ProductID:         req.ProductID,
			RequestedQuantity: req.Quantity,
		}
		product, ok := products[req.ProductID]
		switch {
		case !ok || product.Status != constants.ProductStatusPublished:
			item.InStock = false
		case !product.TrackQuantity:
			item.AvailableQuantity = req.Quantity
			item.InStock = true
		default:
			item.AvailableQuantity = product.StockQuantity
			item.InStock = req.Quantity > 0 && req.Quantity <= product.StockQuantity
		}
		if !item.InStock {
			allInStock = false
		}
		results = append(results, item)
	}
	return results, allInStock, nil
}

func (s *CheckoutService) loadProducts(storeID uint, requests []CartItemRequest) (map[uint]*models.Product, error) {
	ids := make([]uint, 0, len(requests))
	seen := make(map[uint]bool, len(requests))
	for _, req := range requests {
		if req.ProductID > 0 && !seen[req.ProductID] {
			seen[req.ProductID] = true
			ids = append(ids, req.ProductID)
		}
	}
	products, err := s.productRepo.ListByIDs(storeID, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]*models.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	return byID, nil
}

func findVariant(product *models.Product, variantID uint) *models.ProductVariant {
	for i := range product.Variants {
		if product.Variants[i].ID == variantID {
			return &product.Variants[i]
		}
	}
	return nil
}

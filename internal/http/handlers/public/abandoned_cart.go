package public

import (
	"github.com/storekart/storekart/internal/http/response"
	"github.com/storekart/storekart/internal/logger"
	"github.com/storekart/storekart/internal/service"

	"github.com/gin-gonic/gin"
)

// SaveCartRequest is the storefront cart snapshot body.
type SaveCartRequest struct {
	StoreID    uint                      `json:"storeId" binding:"required"`
	CustomerID *uint                     `json:"customerId"`
	Email      string                    `json:"email"`
	Phone      string                    `json:"phone"`
	Items      []service.CartItemRequest `json:"items"`
}

// SaveCart records a cart for abandonment tracking. An empty item list or a
// missing contact is answered as success with saved=false; the storefront
// fires this on every cart change and must never surface an error for it.
func (h *Handler) SaveCart(c *gin.Context) {
	var req SaveCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	cart, err := h.AbandonedCartService.SaveCart(service.SaveCartInput{
		StoreID:    req.StoreID,
		CustomerID: req.CustomerID,
		Email:      req.Email,
		Phone:      req.Phone,
		Items:      req.Items,
	})
	if err != nil {
		logger.Errorw("cart_save_failed", "store_id", req.StoreID, "error", err)
		response.Internal(c, "cart save failed")
		return
	}
	if cart == nil {
		response.Success(c, gin.H{"saved": false})
		return
	}
	response.Success(c, gin.H{"saved": true, "cart_id": cart.ID})
}

// RecoverCart resolves a recovery-link token back into its cart snapshot so
// the storefront can rebuild the cart.
func (h *Handler) RecoverCart(c *gin.Context) {
	token := c.Param("token")
	cart, err := h.AbandonedCartService.GetByToken(token)
	if err != nil {
		logger.Errorw("cart_recover_lookup_failed", "error", err)
		response.Internal(c, "cart lookup failed")
		return
	}
	if cart == nil {
		response.NotFound(c, "cart not found")
		return
	}
	response.Success(c, gin.H{
		"store_id":   cart.StoreID,
		"items":      cart.Items,
		"subtotal":   cart.Subtotal,
		"item_count": cart.ItemCount,
		"status":     cart.RecoveryStatus,
	})
}
